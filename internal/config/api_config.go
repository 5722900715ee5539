package config

import (
	"strings"
	"time"
)

const (
	apiURLVar         = "FITCAMP_API_URL"
	requestTimeoutVar = "FITCAMP_REQUEST_TIMEOUT"
)

type API struct{}

var _ APIConfig = API{}

// GetAPIBaseURL returns the FitCamp backend base URL without a trailing slash.
func (API) GetAPIBaseURL() string {
	return strings.TrimRight(GetEnv(apiURLVar, "http://localhost:7001"), "/")
}

func (API) GetRequestTimeout() time.Duration {
	return GetDurationEnv(requestTimeoutVar, 10*time.Second)
}
