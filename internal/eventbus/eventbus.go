package eventbus

import (
	evbus "github.com/asaskevich/EventBus"
)

// Topics published on the bus. The transport layer announces auth
// expiry here instead of driving navigation itself; a single top-level
// subscriber owns the clear-and-redirect reaction.
const (
	TopicAuthExpired = "auth:expired"
	TopicNotify      = "notify:message"
)

// Notification is a transient user-facing message (the toast analogue).
type Notification struct {
	Level   string
	Message string
}

const (
	LevelSuccess = "success"
	LevelError   = "error"
	LevelInfo    = "info"
)

// Bus is a thin wrapper around EventBus exposing only the typed
// operations the app needs.
type Bus struct {
	inner evbus.Bus
}

func New() *Bus {
	return &Bus{inner: evbus.New()}
}

// PublishAuthExpired announces that a request was rejected with 401.
func (b *Bus) PublishAuthExpired() {
	b.inner.Publish(TopicAuthExpired)
}

// SubscribeAuthExpired registers the handler for auth expiry events.
func (b *Bus) SubscribeAuthExpired(fn func()) error {
	return b.inner.Subscribe(TopicAuthExpired, fn)
}

// Notify publishes a transient notification.
func (b *Bus) Notify(level, message string) {
	b.inner.Publish(TopicNotify, Notification{Level: level, Message: message})
}

// SubscribeNotify registers the handler for transient notifications.
func (b *Bus) SubscribeNotify(fn func(Notification)) error {
	return b.inner.Subscribe(TopicNotify, fn)
}

// WaitAsync blocks until all async callbacks complete. Used on shutdown.
func (b *Bus) WaitAsync() {
	b.inner.WaitAsync()
}
