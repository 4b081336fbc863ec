package session

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"github.com/workhive/desk/account"
	"github.com/workhive/desk/domain"
	"github.com/workhive/desk/internal/credstore"
)

// Authenticator is the slice of the account service the store drives.
type Authenticator interface {
	Login(ctx context.Context, email, password string) (*account.AuthResult, error)
	Register(ctx context.Context, in account.RegisterInput) (*account.AuthResult, error)
	SocialAuth(ctx context.Context, social account.SocialIdentity) (*account.AuthResult, error)
	GetProfile(ctx context.Context) (*domain.Identity, error)
}

// Store owns the single client session: the authenticated identity, the
// credential token, and the {initializing, anonymous, authenticated}
// state machine. Every mutation replaces the whole session under one
// lock, so overlapping operations race benignly: the last write wins.
// The store does not serialize concurrent auth attempts; the view layer
// disables triggering controls while a request is outstanding.
type Store struct {
	creds  *credstore.Store
	svc    Authenticator
	logger *zap.Logger

	mu       sync.RWMutex
	state    domain.SessionState
	identity *domain.Identity
	token    string
}

// NewStore builds a Store in the initializing state. Call Initialize
// before routing traffic.
func NewStore(creds *credstore.Store, svc Authenticator, logger *zap.Logger) *Store {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Store{
		creds:  creds,
		svc:    svc,
		logger: logger,
		state:  domain.StateInitializing,
	}
}

// Token returns the current credential token, or "" when anonymous.
// Safe on a nil receiver so the transport can be wired before the
// store exists.
func (s *Store) Token() string {
	if s == nil {
		return ""
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token
}

// Snapshot returns an immutable view of the session.
func (s *Store) Snapshot() domain.Session {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return domain.Session{State: s.state, Identity: s.identity}
}

// Initialize restores the persisted session. With a complete cached
// pair the store turns authenticated optimistically using the cached
// identity; the caller should then revalidate (asynchronously) via
// Revalidate. Without cached credentials the session is anonymous.
func (s *Store) Initialize() {
	cached, err := s.creds.Load()
	if err != nil {
		s.logger.Warn("credential store unreadable, starting anonymous", zap.Error(err))
		s.replace(domain.StateAnonymous, nil, "")
		return
	}
	if !cached.Complete() {
		s.replace(domain.StateAnonymous, nil, "")
		return
	}
	s.replace(domain.StateAuthenticated, cached.Identity, cached.Token)
	s.logger.Info("session restored from cache", zap.String("user_id", cached.Identity.ID))
}

// Revalidate re-fetches the profile for an optimistically restored
// session. On failure the cached credentials are discarded and the
// session turns anonymous.
func (s *Store) Revalidate(ctx context.Context) {
	if !s.Snapshot().IsAuthenticated() {
		return
	}
	if err := s.RefreshProfile(ctx); err != nil {
		s.logger.Info("cached session rejected by server", zap.Error(err))
	}
}

// Login authenticates with email credentials. On success the token and
// identity are persisted and the session turns authenticated; on
// failure the session stays unauthenticated and the error propagates
// to the calling form.
func (s *Store) Login(ctx context.Context, email, password string) error {
	result, err := s.svc.Login(ctx, email, password)
	if err != nil {
		return err
	}
	s.adopt(result)
	return nil
}

// Register creates the account and signs in.
func (s *Store) Register(ctx context.Context, in account.RegisterInput) error {
	result, err := s.svc.Register(ctx, in)
	if err != nil {
		return err
	}
	s.adopt(result)
	return nil
}

// SocialAuth signs in with a normalized provider assertion.
func (s *Store) SocialAuth(ctx context.Context, social account.SocialIdentity) error {
	result, err := s.svc.SocialAuth(ctx, social)
	if err != nil {
		return err
	}
	s.adopt(result)
	return nil
}

// Logout clears durable storage and turns the session anonymous. It is
// unconditional and idempotent; no network call is involved.
func (s *Store) Logout() {
	if err := s.creds.Clear(); err != nil {
		s.logger.Warn("failed to clear credential store", zap.Error(err))
	}
	s.replace(domain.StateAnonymous, nil, "")
}

// Expire is the auth-expired reaction: identical to Logout, reached via
// the event bus when any request comes back 401.
func (s *Store) Expire() {
	s.Logout()
}

// RefreshProfile re-fetches the identity. On failure the session is
// cleared exactly like a failed startup revalidation.
func (s *Store) RefreshProfile(ctx context.Context) error {
	identity, err := s.svc.GetProfile(ctx)
	if err != nil {
		s.Logout()
		return err
	}
	s.mu.Lock()
	token := s.token
	s.mu.Unlock()
	s.persist(domain.Credentials{Token: token, Identity: identity})
	s.replace(domain.StateAuthenticated, identity, token)
	return nil
}

// UpdateIdentity replaces the cached identity after a profile
// operation, keeping the current token. Ignored when the session is
// not authenticated (the write would have no token to pair with).
func (s *Store) UpdateIdentity(identity *domain.Identity) {
	if identity == nil {
		return
	}
	s.mu.Lock()
	if s.state != domain.StateAuthenticated {
		s.mu.Unlock()
		return
	}
	token := s.token
	s.mu.Unlock()

	s.persist(domain.Credentials{Token: token, Identity: identity})
	s.replace(domain.StateAuthenticated, identity, token)
}

func (s *Store) adopt(result *account.AuthResult) {
	s.persist(domain.Credentials{Token: result.Token, Identity: result.Identity})
	s.replace(domain.StateAuthenticated, result.Identity, result.Token)
}

// persist writes the pair; a write failure is logged but does not block
// the in-memory transition, the session just won't survive a restart.
func (s *Store) persist(creds domain.Credentials) {
	if err := s.creds.Save(creds); err != nil {
		s.logger.Warn("failed to persist credentials", zap.Error(err))
	}
}

func (s *Store) replace(state domain.SessionState, identity *domain.Identity, token string) {
	s.mu.Lock()
	s.state = state
	s.identity = identity
	s.token = token
	s.mu.Unlock()
}
