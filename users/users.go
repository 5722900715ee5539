package users

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"unicode/utf8"

	apperrors "github.com/jrsteele09/fitcamp-session/internal/errors"
)

const (
	minAccountLength  = 3
	minPasswordLength = 6
)

// UserID identifies a backend user. The backend sends numeric ids; strings
// are accepted too so that ids survive a round trip through storage.
type UserID string

func (id *UserID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*id = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*id = UserID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("user id must be a number or string: %w", err)
	}
	*id = UserID(n.String())
	return nil
}

// MarshalJSON writes ids that are plain integers as JSON numbers, the form
// the backend uses, and anything else as a string.
func (id UserID) MarshalJSON() ([]byte, error) {
	if n, err := strconv.ParseInt(string(id), 10, 64); err == nil && strconv.FormatInt(n, 10) == string(id) {
		return []byte(string(id)), nil
	}
	return json.Marshal(string(id))
}

func (id UserID) String() string {
	return string(id)
}

// UserProfile is the user payload returned by the backend at login. The
// session layer passes it through without interpreting it: fields without a
// typed home are kept in Extra and written back unchanged.
type UserProfile struct {
	ID      UserID                     `json:"id"`                // Backend user id
	Account string                     `json:"account,omitempty"` // Login account name
	Name    string                     `json:"name,omitempty"`    // Display name
	Avatar  string                     `json:"avatar,omitempty"`  // Avatar image URL
	Profile string                     `json:"profile,omitempty"` // Free-text self description
	Extra   map[string]json.RawMessage `json:"-"`                 // Any other backend fields
}

var profileFields = []string{"id", "account", "name", "avatar", "profile"}

func (u *UserProfile) UnmarshalJSON(data []byte) error {
	type plain UserProfile
	var p plain
	if err := json.Unmarshal(data, &p); err != nil {
		return err
	}
	var all map[string]json.RawMessage
	if err := json.Unmarshal(data, &all); err != nil {
		return err
	}
	for _, k := range profileFields {
		delete(all, k)
	}
	p.Extra = nil
	if len(all) > 0 {
		p.Extra = all
	}
	*u = UserProfile(p)
	return nil
}

func (u UserProfile) MarshalJSON() ([]byte, error) {
	type plain UserProfile
	b, err := json.Marshal(plain(u))
	if err != nil || len(u.Extra) == 0 {
		return b, err
	}
	merged := make(map[string]json.RawMessage, len(u.Extra)+len(profileFields))
	for k, v := range u.Extra {
		merged[k] = v
	}
	var known map[string]json.RawMessage
	if err := json.Unmarshal(b, &known); err != nil {
		return nil, err
	}
	for k, v := range known {
		merged[k] = v
	}
	return json.Marshal(merged)
}

// Valid reports whether the profile carries an id.
func (u *UserProfile) Valid() bool {
	return u != nil && u.ID != ""
}

// ValidateRegistration checks the register form before it is submitted:
// - account and name are required, account at least 3 characters
// - password at least 6 characters and equal to its confirmation
func ValidateRegistration(account, name, password, confirm string) error {
	if strings.TrimSpace(account) == "" {
		return apperrors.Wrapf(apperrors.ErrValidation, "account is required")
	}
	if utf8.RuneCountInString(account) < minAccountLength {
		return apperrors.Wrapf(apperrors.ErrValidation, "account must be at least %d characters", minAccountLength)
	}
	if strings.TrimSpace(name) == "" {
		return apperrors.Wrapf(apperrors.ErrValidation, "name is required")
	}
	if strings.TrimSpace(password) == "" {
		return apperrors.Wrapf(apperrors.ErrValidation, "password is required")
	}
	if utf8.RuneCountInString(password) < minPasswordLength {
		return apperrors.Wrapf(apperrors.ErrValidation, "password must be at least %d characters", minPasswordLength)
	}
	if password != confirm {
		return apperrors.Wrapf(apperrors.ErrValidation, "passwords do not match")
	}
	return nil
}

// ValidateLogin checks that both login fields are filled in.
func ValidateLogin(account, password string) error {
	if strings.TrimSpace(account) == "" || strings.TrimSpace(password) == "" {
		return apperrors.Wrapf(apperrors.ErrValidation, "account and password are required")
	}
	return nil
}
