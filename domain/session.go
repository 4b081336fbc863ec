package domain

// SessionState is the lifecycle state of the single client session.
type SessionState string

const (
	// StateInitializing covers the window between process start and the
	// first read of the credential store.
	StateInitializing  SessionState = "initializing"
	StateAnonymous     SessionState = "anonymous"
	StateAuthenticated SessionState = "authenticated"
)

// Session is an immutable snapshot of the client's auth state. Identity
// is non-nil exactly when the state is authenticated.
type Session struct {
	State    SessionState
	Identity *Identity
}

func (s Session) IsAuthenticated() bool {
	return s.State == StateAuthenticated && s.Identity != nil
}

func (s Session) IsInitializing() bool {
	return s.State == StateInitializing
}

// Credentials is the pair persisted to durable storage. Token is opaque
// to the client; it is replayed verbatim on every request. Token and
// Identity are written together and cleared together.
type Credentials struct {
	Token    string
	Identity *Identity
}

func (c Credentials) Complete() bool {
	return c.Token != "" && c.Identity != nil
}
