package notify

import (
	"sync"

	"github.com/workhive/desk/internal/eventbus"
)

const defaultCapacity = 16

// Center collects transient notifications published on the event bus
// and hands them to the next page render (flash semantics). When the
// queue overflows the oldest entries are dropped; notifications are
// best-effort by design.
type Center struct {
	mu      sync.Mutex
	pending []eventbus.Notification
	cap     int
}

func NewCenter() *Center {
	return &Center{cap: defaultCapacity}
}

// Attach subscribes the center to the bus's notification topic.
func (c *Center) Attach(bus *eventbus.Bus) error {
	return bus.SubscribeNotify(c.push)
}

func (c *Center) push(n eventbus.Notification) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if len(c.pending) >= c.cap {
		c.pending = c.pending[1:]
	}
	c.pending = append(c.pending, n)
}

// Drain returns and clears all pending notifications.
func (c *Center) Drain() []eventbus.Notification {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := c.pending
	c.pending = nil
	return out
}
