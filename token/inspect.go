package token

import (
	"strconv"
	"strings"
	"time"

	jwtlib "github.com/golang-jwt/jwt/v5"
	apperrors "github.com/jrsteele09/fitcamp-session/internal/errors"
	"github.com/jrsteele09/fitcamp-session/internal/utils"
)

// NowTimeFunc returns the current time. It can be overridden in tests.
var NowTimeFunc = time.Now

// Info describes what can be read from a bearer token without the signing key.
// The signature is never checked; the backend remains the only authority on
// whether a token is valid.
type Info struct {
	Subject   string     `json:"sub,omitempty"` // Subject claim, usually the user id
	IssuedAt  *time.Time `json:"iat,omitempty"` // Issued at time
	ExpiresAt *time.Time `json:"exp,omitempty"` // Expiration
	Expired   bool       `json:"expired"`       // ExpiresAt is in the past
	Length    int        `json:"length"`        // Length of the raw token
}

// Inspect decodes a three-part JWT payload for debugging output.
func Inspect(rawToken string) (*Info, error) {
	rawToken = strings.TrimSpace(rawToken)
	if strings.Count(rawToken, ".") != 2 {
		return nil, apperrors.Wrapf(apperrors.ErrInvalidToken, "expected three dot separated parts")
	}

	parsed, _, err := jwtlib.NewParser().ParseUnverified(rawToken, jwtlib.MapClaims{})
	if err != nil {
		return nil, apperrors.Wrapf(apperrors.ErrInvalidToken, "parse: %s", err.Error())
	}

	claims, ok := parsed.Claims.(jwtlib.MapClaims)
	if !ok {
		return nil, apperrors.Wrapf(apperrors.ErrInvalidToken, "error extracting claims")
	}

	info := &Info{Length: len(rawToken)}
	info.Subject = subject(claims)
	if iat, err := claims.GetIssuedAt(); err == nil && iat != nil {
		info.IssuedAt = utils.Ptr(iat.Time)
	}
	if exp, err := claims.GetExpirationTime(); err == nil && exp != nil {
		info.ExpiresAt = utils.Ptr(exp.Time)
		info.Expired = NowTimeFunc().After(exp.Time)
	}
	return info, nil
}

// subject prefers the registered sub claim and falls back to an id claim,
// which is how the FitCamp backend identifies the user.
func subject(claims jwtlib.MapClaims) string {
	if sub, err := claims.GetSubject(); err == nil && sub != "" {
		return sub
	}
	switch id := claims["id"].(type) {
	case string:
		return id
	case float64:
		return strconv.FormatFloat(id, 'f', -1, 64)
	}
	return ""
}
