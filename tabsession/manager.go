// Package tabsession binds a client tab to a logged in FitCamp user.
//
// Each tab owns a private storage scope holding its identity and session
// record, and shares one scope with every other tab holding the directory of
// known tabs. Public methods never panic and never return storage errors:
// unreadable or corrupt state reads as "not logged in".
package tabsession

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/jrsteele09/fitcamp-session/internal/config"
	"github.com/jrsteele09/fitcamp-session/storage"
	"github.com/jrsteele09/fitcamp-session/users"
)

const (
	DefaultActivityInterval = 30 * time.Second
	DefaultTabExpiry        = time.Hour
	DefaultUserInfoURL      = "http://localhost:7001/user/userInfo"
	DefaultRequestTimeout   = 10 * time.Second
)

// Manager is the session manager of one tab. Construct one per tab and pass
// it to whatever needs the current user; it is safe for concurrent use.
type Manager struct {
	tabStore storage.Store // Private to this tab
	shared   storage.Store // Shared by every tab of the origin
	tabID    string

	activityInterval time.Duration
	tabExpiry        time.Duration
	userInfoURL      string
	requestTimeout   time.Duration
	httpClient       *http.Client
	nowTime          func() time.Time
	logger           zerolog.Logger

	mu       sync.Mutex
	restored bool // A stored session was found at construction and not yet announced

	logins  hub[LoginEvent]
	logouts hub[LogoutEvent]
}

// Option defines a function type to modify the Manager instance.
type Option func(*Manager)

// WithNowTime sets the now time function (primarily for testing)
func WithNowTime(nowFunc func() time.Time) Option {
	return func(m *Manager) {
		m.nowTime = nowFunc
	}
}

// WithActivityInterval sets how often Run stamps activity and sweeps the directory.
func WithActivityInterval(d time.Duration) Option {
	return func(m *Manager) {
		if d > 0 {
			m.activityInterval = d
		}
	}
}

// WithTabExpiry sets how long a directory entry may stay idle before it is swept.
func WithTabExpiry(d time.Duration) Option {
	return func(m *Manager) {
		if d > 0 {
			m.tabExpiry = d
		}
	}
}

// WithUserInfoURL sets the endpoint ValidateToken probes.
func WithUserInfoURL(url string) Option {
	return func(m *Manager) {
		m.userInfoURL = url
	}
}

// WithHTTPClient sets the client ValidateToken uses.
func WithHTTPClient(c *http.Client) Option {
	return func(m *Manager) {
		if c != nil {
			m.httpClient = c
		}
	}
}

// WithRequestTimeout bounds ValidateToken's probe. Zero disables the bound.
func WithRequestTimeout(d time.Duration) Option {
	return func(m *Manager) {
		m.requestTimeout = d
	}
}

func WithLogger(l zerolog.Logger) Option {
	return func(m *Manager) {
		m.logger = l
	}
}

// WithConfig applies the API and session settings from c.
func WithConfig(c interface {
	config.APIConfig
	config.SessionConfig
}) Option {
	return func(m *Manager) {
		WithActivityInterval(c.GetActivityInterval())(m)
		WithTabExpiry(c.GetTabExpiry())(m)
		WithRequestTimeout(c.GetRequestTimeout())(m)
		m.userInfoURL = c.GetAPIBaseURL() + "/user/userInfo"
	}
}

// New creates the manager for the tab whose private scope is tabStore. It
// reuses the identity stored there or creates one, registers the tab in the
// shared directory and restores any stored session. Call Run to announce a
// restored session and start the activity timer.
func New(tabStore, shared storage.Store, options ...Option) (*Manager, error) {
	if tabStore == nil {
		return nil, errors.New("[tabsession.New] tab store is required")
	}
	if shared == nil {
		return nil, errors.New("[tabsession.New] shared store is required")
	}

	m := &Manager{
		tabStore:         tabStore,
		shared:           shared,
		activityInterval: DefaultActivityInterval,
		tabExpiry:        DefaultTabExpiry,
		userInfoURL:      DefaultUserInfoURL,
		requestTimeout:   DefaultRequestTimeout,
		httpClient:       &http.Client{},
		nowTime:          time.Now,
		logger:           log.With().Str("component", "tabsession").Logger(),
	}
	for _, opt := range options {
		opt(m)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	m.tabID = m.loadOrCreateTabID()
	m.logger = m.logger.With().Str("tab_id", m.tabID).Logger()

	rec := m.readRecordLocked()
	m.restored = isComplete(rec)
	m.upsertTabEntryLocked(rec)
	if m.restored {
		m.logger.Info().Str("user", rec.User.Name).Msg("Restored session")
	}
	return m, nil
}

// TabID returns this tab's identity. It never changes for the life of the tab.
func (m *Manager) TabID() string {
	return m.tabID
}

// OnLogin subscribes handler to login events and returns its unsubscribe func.
func (m *Manager) OnLogin(handler func(LoginEvent)) func() {
	return m.logins.subscribe(handler)
}

// OnLogout subscribes handler to logout events and returns its unsubscribe func.
func (m *Manager) OnLogout(handler func(LogoutEvent)) func() {
	return m.logouts.subscribe(handler)
}

// Login stores user and token as this tab's session. It returns false when
// either is missing or the record cannot be written and read back intact; the
// previous session, if any, is then left as it was.
func (m *Manager) Login(user *users.UserProfile, token string) bool {
	if !user.Valid() || strings.TrimSpace(token) == "" {
		m.logger.Warn().Msg("Login rejected: user or token is empty")
		return false
	}

	now := m.nowTime()
	profile := *user
	rec := &SessionRecord{User: &profile, Token: token, LoginTime: now, LastActive: now}
	raw, err := encodeRecord(rec)
	if err != nil {
		m.logger.Err(err).Msg("Login: failed to encode session")
		return false
	}

	m.mu.Lock()
	key := sessionKey(m.tabID)
	previous, previousErr := m.tabStore.Get(key)

	if err := m.tabStore.Set(key, raw); err != nil {
		m.mu.Unlock()
		m.logger.Err(err).Msg("Login: failed to store session")
		return false
	}
	if saved, err := m.tabStore.Get(key); err != nil || saved != raw {
		m.rollbackLocked(key, previous, previousErr)
		m.mu.Unlock()
		m.logger.Error().AnErr("read_err", err).Msg("Login: stored session could not be read back")
		return false
	}
	m.restored = false
	m.upsertTabEntryLocked(rec)
	m.mu.Unlock()

	m.logger.Info().Str("user_id", profile.ID.String()).Str("user", profile.Name).Msg("Logged in")
	m.logins.publish(m.logger, LoginEvent{User: profile, TabID: m.tabID})
	return true
}

// Logout deletes this tab's session and marks the tab logged out in the
// directory. Logging out while logged out succeeds.
func (m *Manager) Logout() bool {
	m.mu.Lock()
	key := sessionKey(m.tabID)
	if err := m.tabStore.Delete(key); err != nil {
		m.mu.Unlock()
		m.logger.Err(err).Msg("Logout: failed to delete session")
		return false
	}
	if _, err := m.tabStore.Get(key); err == nil {
		m.mu.Unlock()
		m.logger.Error().Msg("Logout: session still present after delete")
		return false
	}
	m.restored = false
	m.upsertTabEntryLocked(nil)
	m.mu.Unlock()

	m.logger.Info().Msg("Logged out")
	m.logouts.publish(m.logger, LogoutEvent{TabID: m.tabID})
	return true
}

// CurrentUser returns a copy of the logged in user, or nil.
func (m *Manager) CurrentUser() *users.UserProfile {
	m.mu.Lock()
	defer m.mu.Unlock()

	rec := m.readRecordLocked()
	if rec == nil || rec.User == nil {
		return nil
	}
	u := *rec.User
	return &u
}

// CurrentToken returns the stored bearer token, or "" when there is none.
func (m *Manager) CurrentToken() string {
	m.mu.Lock()
	defer m.mu.Unlock()

	rec := m.readRecordLocked()
	if rec == nil {
		return ""
	}
	return rec.Token
}

// IsLoggedIn reports whether both a user and a token are stored. A record
// holding only one of them is treated as a failed write, not a session.
func (m *Manager) IsLoggedIn() bool {
	return m.CurrentUser() != nil && m.CurrentToken() != ""
}

// UpdateTabActivity stamps this tab's directory entry, re-creating it if a
// sweep in another tab removed it. Login state is not changed.
func (m *Manager) UpdateTabActivity() {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.nowTime()
	rec := m.readRecordLocked()
	if isComplete(rec) {
		rec.LastActive = now
		if raw, err := encodeRecord(rec); err == nil {
			if err := m.tabStore.Set(sessionKey(m.tabID), raw); err != nil {
				m.logger.Debug().Err(err).Msg("Could not stamp session activity")
			}
		}
	}

	dir := m.loadDirectoryLocked()
	e, ok := dir[m.tabID]
	if !ok {
		m.upsertTabEntryLocked(rec)
		return
	}
	e.LastActive = now
	dir[m.tabID] = e
	m.saveDirectoryLocked(dir)
}

// CleanupExpiredTabs removes directory entries idle for longer than the tab
// expiry and returns how many were removed. This tab's entry is never removed.
func (m *Manager) CleanupExpiredTabs() int {
	m.mu.Lock()
	defer m.mu.Unlock()

	dir := m.loadDirectoryLocked()
	removed := dir.Sweep(m.nowTime(), m.tabExpiry, m.tabID)
	if len(removed) == 0 {
		return 0
	}
	m.saveDirectoryLocked(dir)
	for _, tabID := range removed {
		m.logger.Debug().Str("expired_tab", tabID).Msg("Removed expired tab")
	}
	return len(removed)
}

// LoginStats summarises every tab in the directory.
func (m *Manager) LoginStats() LoginStats {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.loadDirectoryLocked().Stats(m.tabID)
}

// LoggedInUsers lists the users logged in in any tab.
func (m *Manager) LoggedInUsers() []LoggedInUser {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.loadDirectoryLocked().LoggedInUsers()
}

// Directory returns a snapshot of the shared directory.
func (m *Manager) Directory() Directory {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.loadDirectoryLocked()
}

func (m *Manager) loadOrCreateTabID() string {
	if id, err := m.tabStore.Get(tabIDKey); err == nil && id != "" {
		return id
	} else if err != nil && !errors.Is(err, storage.ErrNotFound) {
		m.logger.Warn().Err(err).Msg("Could not read tab id, creating a new one")
	}

	id := newTabID(m.nowTime())
	if err := m.tabStore.Set(tabIDKey, id); err != nil {
		m.logger.Err(err).Msg("Failed to store tab id")
		return id
	}
	if saved, err := m.tabStore.Get(tabIDKey); err != nil || saved != id {
		m.logger.Error().Msg("Stored tab id could not be read back")
	}
	return id
}

func newTabID(now time.Time) string {
	random := strings.ReplaceAll(uuid.NewString(), "-", "")
	return fmt.Sprintf("tab_%d_%s", now.UnixMilli(), random[:9])
}

func (m *Manager) readRecordLocked() *SessionRecord {
	raw, err := m.tabStore.Get(sessionKey(m.tabID))
	if err != nil {
		if !errors.Is(err, storage.ErrNotFound) {
			m.logger.Warn().Err(err).Msg("Could not read session")
		}
		return nil
	}
	rec := decodeRecord(raw)
	if rec == nil {
		m.logger.Warn().Msg("Stored session is malformed")
	}
	return rec
}

func (m *Manager) rollbackLocked(key, previous string, previousErr error) {
	var err error
	if previousErr == nil {
		err = m.tabStore.Set(key, previous)
	} else {
		err = m.tabStore.Delete(key)
	}
	if err != nil {
		m.logger.Err(err).Msg("Failed to roll back session write")
	}
}

// upsertTabEntryLocked writes this tab's directory entry from rec, keeping
// its creation time.
func (m *Manager) upsertTabEntryLocked(rec *SessionRecord) {
	now := m.nowTime()
	dir := m.loadDirectoryLocked()
	e, ok := dir[m.tabID]
	if !ok {
		e = TabEntry{ID: m.tabID, CreateTime: now}
	}
	e.LastActive = now
	e.IsLoggedIn = isComplete(rec)
	e.User = nil
	if e.IsLoggedIn {
		u := *rec.User
		e.User = &u
	}
	dir[m.tabID] = e
	m.saveDirectoryLocked(dir)
}

func (m *Manager) loadDirectoryLocked() Directory {
	raw, err := m.shared.Get(directoryKey)
	if err != nil {
		if !errors.Is(err, storage.ErrNotFound) {
			m.logger.Warn().Err(err).Msg("Could not read tab directory")
		}
		return make(Directory)
	}
	return decodeDirectory(raw)
}

func (m *Manager) saveDirectoryLocked(dir Directory) {
	raw, err := dir.encode()
	if err != nil {
		m.logger.Err(err).Msg("Failed to encode tab directory")
		return
	}
	if err := m.shared.Set(directoryKey, raw); err != nil {
		m.logger.Warn().Err(err).Msg("Failed to store tab directory")
	}
}

func isComplete(rec *SessionRecord) bool {
	return rec != nil && rec.User.Valid() && rec.Token != ""
}
