package tabsession

import (
	"encoding/json"
	"sort"
	"time"

	"github.com/jrsteele09/fitcamp-session/internal/utils"
	"github.com/jrsteele09/fitcamp-session/users"
)

// TabEntry is one tab's row in the directory shared by every tab.
type TabEntry struct {
	ID         string             `json:"id"`
	IsLoggedIn bool               `json:"isLoggedIn"`
	User       *users.UserProfile `json:"user"`
	LastActive time.Time          `json:"lastActive"`
	CreateTime time.Time          `json:"createTime"`
}

// Directory maps tab ids to their entries. It is advisory: concurrent
// writers overwrite each other and the next activity tick repairs the loss.
type Directory map[string]TabEntry

// decodeDirectory parses the shared directory. A corrupt blob reads as an
// empty directory and a malformed entry is dropped on its own.
func decodeDirectory(raw string) Directory {
	dir := make(Directory)
	if raw == "" {
		return dir
	}
	var entries map[string]json.RawMessage
	if err := json.Unmarshal([]byte(raw), &entries); err != nil {
		return dir
	}
	for tabID, rawEntry := range entries {
		var e TabEntry
		if err := json.Unmarshal(rawEntry, &e); err != nil {
			continue
		}
		if tabID == "" || e.LastActive.IsZero() {
			continue
		}
		if e.ID == "" {
			e.ID = tabID
		}
		if e.User != nil && !e.User.Valid() {
			e.User = nil
		}
		dir[tabID] = e
	}
	return dir
}

func (d Directory) encode() (string, error) {
	b, err := json.Marshal(d)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// Sweep removes entries idle for longer than expiry, except keep. It
// returns the removed tab ids.
func (d Directory) Sweep(now time.Time, expiry time.Duration, keep string) []string {
	removed := make([]string, 0)
	for tabID, e := range d {
		if tabID == keep {
			continue
		}
		if now.Sub(e.LastActive) > expiry {
			delete(d, tabID)
			removed = append(removed, tabID)
		}
	}
	sort.Strings(removed)
	return removed
}

// TabStatus is a directory entry as seen from one tab.
type TabStatus struct {
	TabEntry
	IsCurrent bool `json:"isCurrent"`
}

// LoginStats summarises the directory for the multi-tab indicator. It is
// informational and must not be used for access decisions.
type LoginStats struct {
	TotalTabs    int         `json:"totalTabs"`
	LoggedInTabs int         `json:"loggedInTabs"`
	UniqueUsers  int         `json:"uniqueUsers"`
	CurrentTab   *TabEntry   `json:"currentTab,omitempty"`
	Tabs         []TabStatus `json:"tabs"`
}

// Stats derives the login summary, deduplicating users by id.
func (d Directory) Stats(currentTab string) LoginStats {
	stats := LoginStats{Tabs: make([]TabStatus, 0, len(d))}
	seen := make(map[users.UserID]struct{})
	for _, e := range d.sorted() {
		stats.TotalTabs++
		if e.IsLoggedIn {
			stats.LoggedInTabs++
			if e.User.Valid() {
				seen[e.User.ID] = struct{}{}
			}
		}
		if e.ID == currentTab {
			stats.CurrentTab = utils.Ptr(e)
		}
		stats.Tabs = append(stats.Tabs, TabStatus{TabEntry: e, IsCurrent: e.ID == currentTab})
	}
	stats.UniqueUsers = len(seen)
	return stats
}

// LoggedInUser is a user logged in somewhere in the origin.
type LoggedInUser struct {
	User       users.UserProfile `json:"user"`
	Tabs       []string          `json:"tabs"`
	LastActive time.Time         `json:"lastActive"`
}

// LoggedInUsers groups logged in tabs by user, keeping each user's most
// recent activity.
func (d Directory) LoggedInUsers() []LoggedInUser {
	result := make([]LoggedInUser, 0)
	index := make(map[users.UserID]int)
	for _, e := range d.sorted() {
		if !e.IsLoggedIn || !e.User.Valid() {
			continue
		}
		i, ok := index[e.User.ID]
		if !ok {
			index[e.User.ID] = len(result)
			result = append(result, LoggedInUser{
				User:       *e.User,
				Tabs:       []string{e.ID},
				LastActive: e.LastActive,
			})
			continue
		}
		result[i].Tabs = append(result[i].Tabs, e.ID)
		if e.LastActive.After(result[i].LastActive) {
			result[i].LastActive = e.LastActive
		}
	}
	return result
}

func (d Directory) sorted() []TabEntry {
	entries := make([]TabEntry, 0, len(d))
	for _, e := range d {
		entries = append(entries, e)
	}
	sort.Slice(entries, func(i, j int) bool {
		if !entries[i].CreateTime.Equal(entries[j].CreateTime) {
			return entries[i].CreateTime.Before(entries[j].CreateTime)
		}
		return entries[i].ID < entries[j].ID
	})
	return entries
}
