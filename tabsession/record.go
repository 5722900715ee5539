package tabsession

import (
	"encoding/json"
	"strings"
	"time"

	"github.com/jrsteele09/fitcamp-session/users"
)

const (
	tabIDKey         = "fitcamp_tab_id"
	sessionKeyPrefix = "fitcamp_user_"
	directoryKey     = "fitcamp_global_tabs"
)

func sessionKey(tabID string) string {
	return sessionKeyPrefix + tabID
}

// SessionRecord is the login held in a tab's private storage. Only the tab
// that owns it ever writes it.
type SessionRecord struct {
	User       *users.UserProfile `json:"user"`
	Token      string             `json:"token"`
	LoginTime  time.Time          `json:"loginTime"`
	LastActive time.Time          `json:"lastActive"`
}

// decodeRecord parses a stored record. It never fails: anything that is not
// a JSON object of the expected shape reads as nil. A record missing only
// its user or only its token is returned as is; IsLoggedIn rejects it.
func decodeRecord(raw string) *SessionRecord {
	if strings.TrimSpace(raw) == "" {
		return nil
	}
	var rec SessionRecord
	if err := json.Unmarshal([]byte(raw), &rec); err != nil {
		return nil
	}
	if rec.User != nil && !rec.User.Valid() {
		rec.User = nil
	}
	if rec.User == nil && rec.Token == "" {
		return nil
	}
	return &rec
}

func encodeRecord(rec *SessionRecord) (string, error) {
	b, err := json.Marshal(rec)
	if err != nil {
		return "", err
	}
	return string(b), nil
}
