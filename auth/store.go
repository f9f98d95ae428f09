// Package auth holds the client's session state: the current user, the
// session token, and its durable persistence across runs.
package auth

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/c360studio/boardctl/api"
	"github.com/c360studio/boardctl/model"
)

// State is the auth store's lifecycle state.
type State string

const (
	StateUninitialized   State = "uninitialized"
	StateUnauthenticated State = "unauthenticated"
	StateAuthenticating  State = "authenticating"
	StateAuthenticated   State = "authenticated"
)

// Store manages session state. All durable auth decisions belong to the
// server; the store caches its answers and trusts a locally persisted,
// unexpired token until the server says otherwise with a 401.
type Store struct {
	mu     sync.Mutex
	client *api.Client
	creds  *CredentialsFile
	logger *slog.Logger
	now    func() time.Time

	state State
	token string
	user  *model.User
	err   string
}

// StoreOption configures a Store.
type StoreOption func(*Store)

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) StoreOption {
	return func(s *Store) {
		s.logger = logger
	}
}

// WithClock sets the time source used for token expiry checks.
func WithClock(now func() time.Time) StoreOption {
	return func(s *Store) {
		s.now = now
	}
}

// NewStore creates an auth store. It wires itself into the client as both
// the token source and the 401 handler, so session expiry anywhere in the
// API invalidates local state.
func NewStore(client *api.Client, creds *CredentialsFile, opts ...StoreOption) *Store {
	s := &Store{
		client: client,
		creds:  creds,
		logger: slog.Default(),
		now:    time.Now,
		state:  StateUninitialized,
	}

	for _, opt := range opts {
		opt(s)
	}

	client.SetTokenSource(s)
	client.OnUnauthorized(s.Invalidate)

	return s
}

// Init restores session state from disk. Expired or undecodable tokens are
// discarded along with the cached user record; a valid token restores the
// session optimistically without asking the server.
func (s *Store) Init() {
	s.mu.Lock()
	defer s.mu.Unlock()

	creds, err := s.creds.Load()
	if err != nil {
		s.logger.Warn("Failed to load credentials", "error", err)
		s.clearLocked()
		return
	}
	if creds == nil || creds.Token == "" {
		s.state = StateUnauthenticated
		return
	}

	claims, err := DecodeToken(creds.Token)
	if err != nil || claims.Expired(s.now()) {
		s.logger.Debug("Discarding persisted token",
			"expired", err == nil,
			"path", s.creds.Path())
		s.clearLocked()
		return
	}

	user := creds.User
	s.token = creds.Token
	s.user = &user
	s.state = StateAuthenticated
	s.logger.Debug("Restored session", "username", user.Username)
}

// Login exchanges credentials for a session token, derives the user record
// from the token's claims, and persists both. On failure the error message
// is recorded and the store stays unauthenticated. No retry.
func (s *Store) Login(ctx context.Context, username, password string) error {
	s.mu.Lock()
	s.state = StateAuthenticating
	s.err = ""
	s.mu.Unlock()

	resp, err := s.client.Login(ctx, api.Credentials{Username: username, Password: password})
	if err != nil {
		s.fail(api.ErrorMessage(err, "Failed to login"))
		return err
	}

	claims, err := DecodeToken(resp.Token)
	if err != nil {
		s.fail("Failed to login")
		return err
	}

	user := model.User{
		ID:        claims.UserID,
		Username:  claims.Username,
		CreatedAt: s.now(),
	}

	if err := s.creds.Save(&Credentials{Token: resp.Token, User: user}); err != nil {
		// The session is still valid in memory; it just won't survive
		// this process.
		s.logger.Warn("Failed to persist credentials", "error", err)
	}

	s.mu.Lock()
	s.token = resp.Token
	s.user = &user
	s.state = StateAuthenticated
	s.mu.Unlock()

	s.logger.Info("Logged in", "username", user.Username)
	return nil
}

// Register creates an account and then logs in with the same credentials.
// A registration failure surfaces its own error and skips the login.
func (s *Store) Register(ctx context.Context, username, password string) error {
	s.mu.Lock()
	s.state = StateAuthenticating
	s.err = ""
	s.mu.Unlock()

	if _, err := s.client.Register(ctx, api.Credentials{Username: username, Password: password}); err != nil {
		s.fail(api.ErrorMessage(err, "Failed to register"))
		return err
	}

	return s.Login(ctx, username, password)
}

// Logout ends the session. The server call is best-effort: its failure is
// logged and never blocks clearing local state.
func (s *Store) Logout(ctx context.Context) {
	if err := s.client.Logout(ctx); err != nil {
		s.logger.Warn("Logout request failed", "error", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.clearLocked()
}

// Invalidate drops the session in response to a 401 from any API call.
func (s *Store) Invalidate() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state == StateAuthenticated || s.state == StateAuthenticating {
		s.logger.Info("Session expired, logging out")
	}
	s.clearLocked()
}

// clearLocked wipes token, user, and the credentials file together.
// Callers must hold mu.
func (s *Store) clearLocked() {
	if err := s.creds.Clear(); err != nil {
		s.logger.Warn("Failed to clear credentials", "error", err)
	}
	s.token = ""
	s.user = nil
	s.state = StateUnauthenticated
}

func (s *Store) fail(msg string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.err = msg
	s.state = StateUnauthenticated
}

// Token implements api.TokenSource.
func (s *Store) Token() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.token
}

// State returns the current lifecycle state.
func (s *Store) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// IsAuthenticated reports whether a session is active.
func (s *Store) IsAuthenticated() bool {
	return s.State() == StateAuthenticated
}

// User returns a copy of the current user, or nil when logged out.
func (s *Store) User() *model.User {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.user == nil {
		return nil
	}
	user := *s.user
	return &user
}

// Err returns the last recorded error message, empty when the most recent
// operation succeeded.
func (s *Store) Err() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.err
}
