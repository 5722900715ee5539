package tabsession

import (
	"context"
	"time"
)

// Run announces a session restored by New to the login subscribers, then
// stamps activity and sweeps expired tabs every activity interval until ctx
// is done. Activity is stamped once more on the way out so other tabs can
// tell a closed tab from an idle one for a while longer.
func (m *Manager) Run(ctx context.Context) {
	m.announceRestored()

	ticker := time.NewTicker(m.activityInterval)
	defer ticker.Stop()
	defer m.UpdateTabActivity()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			m.UpdateTabActivity()
			m.CleanupExpiredTabs()
		}
	}
}

func (m *Manager) announceRestored() {
	m.mu.Lock()
	pending := m.restored
	m.restored = false
	rec := m.readRecordLocked()
	m.mu.Unlock()

	if !pending || !isComplete(rec) {
		return
	}
	m.logins.publish(m.logger, LoginEvent{User: *rec.User, TabID: m.tabID, Restored: true})
}
