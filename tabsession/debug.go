package tabsession

import (
	"github.com/jrsteele09/fitcamp-session/storage"
	"github.com/jrsteele09/fitcamp-session/token"
	"github.com/jrsteele09/fitcamp-session/users"
)

// DebugInfo is a snapshot of the tab's session state for troubleshooting.
// The raw token is never included.
type DebugInfo struct {
	TabID       string             `json:"tabId"`
	LoggedIn    bool               `json:"loggedIn"`
	CurrentUser *users.UserProfile `json:"currentUser"`
	Token       *token.Info        `json:"token,omitempty"`
	TokenError  string             `json:"tokenError,omitempty"`
	Stats       LoginStats         `json:"loginStats"`
	Directory   Directory          `json:"globalTabs"`
	TabKeys     []string           `json:"tabStorageKeys"`    // Keys in this tab's private scope
	SharedKeys  []string           `json:"sharedStorageKeys"` // Keys in the shared scope
}

func (m *Manager) DebugInfo() DebugInfo {
	info := DebugInfo{
		TabID:       m.tabID,
		CurrentUser: m.CurrentUser(),
		Stats:       m.LoginStats(),
		Directory:   m.Directory(),
	}
	m.mu.Lock()
	info.TabKeys = m.keysLocked(m.tabStore, "tab")
	info.SharedKeys = m.keysLocked(m.shared, "shared")
	m.mu.Unlock()

	t := m.CurrentToken()
	info.LoggedIn = info.CurrentUser != nil && t != ""
	if t != "" {
		ti, err := token.Inspect(t)
		if err != nil {
			info.TokenError = err.Error()
		}
		info.Token = ti
	}
	return info
}

func (m *Manager) keysLocked(s storage.Store, scope string) []string {
	keys, err := s.Keys()
	if err != nil {
		m.logger.Err(err).Str("scope", scope).Msg("DebugInfo: failed to list keys")
		return nil
	}
	return keys
}

// ClearAll drops this tab's session and the whole shared directory, then
// registers this tab again. The tab keeps its identity.
func (m *Manager) ClearAll() {
	m.mu.Lock()
	wasLoggedIn := isComplete(m.readRecordLocked())
	if err := m.tabStore.Delete(sessionKey(m.tabID)); err != nil {
		m.logger.Err(err).Msg("ClearAll: failed to delete session")
	}
	if err := m.shared.Delete(directoryKey); err != nil {
		m.logger.Err(err).Msg("ClearAll: failed to delete tab directory")
	}
	m.restored = false
	m.upsertTabEntryLocked(nil)
	m.mu.Unlock()

	m.logger.Info().Msg("Cleared all session data")
	if wasLoggedIn {
		m.logouts.publish(m.logger, LogoutEvent{TabID: m.tabID})
	}
}
