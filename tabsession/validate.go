package tabsession

import (
	"context"
	"io"
	"net/http"

	"golang.org/x/oauth2"

	apperrors "github.com/jrsteele09/fitcamp-session/internal/errors"
)

var _ oauth2.TokenSource = (*Manager)(nil)

// Token implements oauth2.TokenSource so HTTP clients can attach the tab's
// bearer token. It fails with ErrNotLoggedIn when no token is stored.
func (m *Manager) Token() (*oauth2.Token, error) {
	t := m.CurrentToken()
	if t == "" {
		return nil, apperrors.ErrNotLoggedIn
	}
	return &oauth2.Token{AccessToken: t, TokenType: "Bearer"}, nil
}

type tokenStatus int

const (
	tokenMissing tokenStatus = iota
	tokenValid
	tokenExpired
	tokenUnknown
)

// ValidateToken probes the user info endpoint with the stored token.
//
// Only an explicit 401 Unauthorized returns false. Network errors, server
// errors and any other status return true: a transient failure must never
// end a session. Without a stored token there is nothing to validate and the
// result is false.
func (m *Manager) ValidateToken(ctx context.Context) bool {
	status := m.checkToken(ctx)
	return status == tokenValid || status == tokenUnknown
}

// ValidateAndLogoutIfExpired returns true only when the backend accepted the
// token. It logs the tab out when there is no token or the backend answered
// 401; any other failure returns false and keeps the session.
func (m *Manager) ValidateAndLogoutIfExpired(ctx context.Context) bool {
	switch m.checkToken(ctx) {
	case tokenValid:
		return true
	case tokenMissing, tokenExpired:
		m.Logout()
	}
	return false
}

func (m *Manager) checkToken(ctx context.Context) tokenStatus {
	t := m.CurrentToken()
	if t == "" {
		return tokenMissing
	}

	if m.requestTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, m.requestTimeout)
		defer cancel()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, m.userInfoURL, nil)
	if err != nil {
		m.logger.Err(err).Msg("ValidateToken: failed to build request")
		return tokenUnknown
	}
	req.Header.Set("Authorization", "Bearer "+t)
	req.Header.Set("Content-Type", "application/json")

	resp, err := m.httpClient.Do(req)
	if err != nil {
		m.logger.Warn().Err(err).Msg("ValidateToken: request failed, keeping session")
		return tokenUnknown
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 64<<10))

	switch {
	case resp.StatusCode >= 200 && resp.StatusCode < 300:
		m.UpdateTabActivity()
		return tokenValid
	case resp.StatusCode == http.StatusUnauthorized:
		m.logger.Info().Msg("Token expired")
		return tokenExpired
	default:
		m.logger.Warn().Int("status", resp.StatusCode).Msg("ValidateToken: unexpected status, keeping session")
		return tokenUnknown
	}
}
