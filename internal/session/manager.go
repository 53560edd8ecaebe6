package session

import (
	"context"
	"sync"

	greenhouse "greenhouse_console"
	"greenhouse_console/internal/api"
	"greenhouse_console/internal/logger"
)

const minPasswordLength = 6

// API is the slice of the REST surface the session manager needs.
type API interface {
	Login(ctx context.Context, username, password string) (string, *greenhouse.User, error)
	Register(ctx context.Context, username, email, password string) (string, *greenhouse.User, error)
	Logout(ctx context.Context) error
	GetIdentity(ctx context.Context) (*greenhouse.User, error)
}

// Manager owns the token and identity. It is the only writer of the durable
// token; every token change is announced synchronously through the
// OnTokenChange hook so the previous realtime channel is invalidated before
// anyone can use the new token.
type Manager struct {
	api   API
	store Store
	log   *logger.Logger

	systemPrefersDark func() bool
	onToken           func(token string)
	onTerminate       func(reason string)

	mu    sync.Mutex
	token string
	user  *greenhouse.User
	theme string
}

func NewManager(apiClient API, store Store, log *logger.Logger) *Manager {
	return &Manager{
		api:   apiClient,
		store: store,
		log:   log,
		theme: greenhouse.ThemeDark,
	}
}

// OnTokenChange registers the hook fired synchronously on every token
// transition, including the transition to "" on logout.
func (m *Manager) OnTokenChange(fn func(token string)) { m.onToken = fn }

// OnTerminate registers the navigation hook fired when the session is
// killed without a user gesture (force_disconnect, expired token).
func (m *Manager) OnTerminate(fn func(reason string)) { m.onTerminate = fn }

// SetSystemThemeProbe injects the system light/dark preference used when
// the stored theme is "auto".
func (m *Manager) SetSystemThemeProbe(fn func() bool) { m.systemPrefersDark = fn }

// Init restores a persisted token and validates it by fetching the
// identity. An invalid stored token resolves to a clean logged-out state.
func (m *Manager) Init(ctx context.Context) {
	token, err := m.store.Load()
	if err != nil {
		m.log.Errorw("token_store_load_failed", "err", err)
		return
	}
	if token == "" {
		return
	}
	m.setToken(token, nil)
	m.FetchIdentity(ctx)
}

// Login exchanges credentials for a session. On failure the token remains
// absent and no channel is opened.
func (m *Manager) Login(ctx context.Context, username, password string) error {
	token, user, err := m.api.Login(ctx, username, password)
	if err != nil {
		m.log.Infow("login_failed", "username", username, "err", err)
		return err
	}
	m.persist(token)
	m.setToken(token, user)
	m.log.Infow("login_ok", "username", username)
	return nil
}

// Register creates an account; post-conditions match Login.
func (m *Manager) Register(ctx context.Context, username, email, password string) error {
	token, user, err := m.api.Register(ctx, username, email, password)
	if err != nil {
		m.log.Infow("register_failed", "username", username, "err", err)
		return err
	}
	m.persist(token)
	m.setToken(token, user)
	return nil
}

// FetchIdentity refreshes the identity behind the current token. Any
// failure, whatever the cause, means the session is invalid: no retry,
// immediate logout.
func (m *Manager) FetchIdentity(ctx context.Context) {
	user, err := m.api.GetIdentity(ctx)
	if err != nil {
		m.log.Infow("identity_fetch_failed", "err", err)
		m.Logout(ctx)
		return
	}
	m.mu.Lock()
	m.user = user
	m.theme = ResolveTheme(user.Theme, m.systemPrefersDark)
	m.mu.Unlock()
}

// Logout invalidates the session remotely on a best-effort basis and clears
// local state unconditionally.
func (m *Manager) Logout(ctx context.Context) {
	if m.Authenticated() {
		if err := m.api.Logout(ctx); err != nil {
			m.log.Infow("remote_logout_failed", "err", err)
		}
	}
	m.clear()
}

// ForceLogout tears the session down without any further authenticated
// call, then fires the navigation hook. Used for force_disconnect pushes
// and unauthorized responses.
func (m *Manager) ForceLogout(reason string) {
	if !m.clear() {
		return
	}
	m.log.Infow("session_terminated", "reason", reason)
	if m.onTerminate != nil {
		m.onTerminate(reason)
	}
}

// Token returns the current token, or "" when logged out.
func (m *Manager) Token() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.token
}

// Authenticated reports whether a token is present.
func (m *Manager) Authenticated() bool { return m.Token() != "" }

// User returns a copy of the current identity, if any.
func (m *Manager) User() (greenhouse.User, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.user == nil {
		return greenhouse.User{}, false
	}
	return *m.user, true
}

// Theme returns the resolved (never "auto") theme for the session.
func (m *Manager) Theme() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.theme
}

// ValidateNewPassword applies the client-side checks a password change
// form performs before touching the server.
func ValidateNewPassword(newPassword, confirm string) error {
	if len(newPassword) < minPasswordLength {
		return &api.ValidationError{Field: "newPassword", Reason: "must be at least 6 characters"}
	}
	if newPassword != confirm {
		return &api.ValidationError{Field: "confirmPassword", Reason: "passwords do not match"}
	}
	return nil
}

func (m *Manager) persist(token string) {
	if err := m.store.Save(token); err != nil {
		// The live session still works; only restarts lose it.
		m.log.Errorw("token_store_save_failed", "err", err)
	}
}

// setToken installs a new token and identity, then announces the change.
func (m *Manager) setToken(token string, user *greenhouse.User) {
	m.mu.Lock()
	m.token = token
	m.user = user
	if user != nil {
		m.theme = ResolveTheme(user.Theme, m.systemPrefersDark)
	}
	m.mu.Unlock()
	if m.onToken != nil {
		m.onToken(token)
	}
}

// clear wipes local state. Returns false when there was nothing to clear,
// which keeps teardown idempotent under re-entrant unauthorized callbacks.
func (m *Manager) clear() bool {
	m.mu.Lock()
	if m.token == "" && m.user == nil {
		m.mu.Unlock()
		return false
	}
	m.token = ""
	m.user = nil
	m.mu.Unlock()

	if err := m.store.Clear(); err != nil {
		m.log.Errorw("token_store_clear_failed", "err", err)
	}
	if m.onToken != nil {
		m.onToken("")
	}
	return true
}
