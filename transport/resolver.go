package transport

import (
	"errors"
	"os"
	"strings"
)

// BaseURLResolver returns the API base address for a single request. It is
// invoked once per attempt so the resolved address can follow the serving
// origin at runtime instead of being frozen at construction.
type BaseURLResolver func() (string, error)

var errNoBaseURL = errors.New("no base url available")

// StaticBaseURL describes the staticbaseurl operation and its observable behavior.
//
// StaticBaseURL may return an error when input validation, dependency calls, or security checks fail.
// StaticBaseURL does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func StaticBaseURL(raw string) BaseURLResolver {
	raw = strings.TrimSuffix(raw, "/")
	return func() (string, error) {
		if raw == "" {
			return "", errNoBaseURL
		}
		return raw, nil
	}
}

// BaseURLFromEnv describes the baseurlfromenv operation and its observable behavior.
//
// BaseURLFromEnv may return an error when input validation, dependency calls, or security checks fail.
// BaseURLFromEnv does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func BaseURLFromEnv(key string) BaseURLResolver {
	return func() (string, error) {
		raw := strings.TrimSuffix(os.Getenv(key), "/")
		if raw == "" {
			return "", errNoBaseURL
		}
		return raw, nil
	}
}

// OriginBaseURL derives the base address from the caller's current origin on
// every call, appending apiPath. origin is expected to return something like
// "http://192.168.1.20:3000"; the scheme and host are kept as-is so the
// client keeps working when the application is reached through a different
// host or port than the one assumed at start-up.
func OriginBaseURL(origin func() string, apiPath string) BaseURLResolver {
	apiPath = strings.TrimSuffix(apiPath, "/")
	if apiPath != "" && !strings.HasPrefix(apiPath, "/") {
		apiPath = "/" + apiPath
	}
	return func() (string, error) {
		if origin == nil {
			return "", errNoBaseURL
		}
		base := strings.TrimSuffix(origin(), "/")
		if base == "" {
			return "", errNoBaseURL
		}
		return base + apiPath, nil
	}
}

// Override wraps next so that an explicit non-empty override always wins.
func Override(override string, next BaseURLResolver) BaseURLResolver {
	override = strings.TrimSuffix(override, "/")
	return func() (string, error) {
		if override != "" {
			return override, nil
		}
		if next == nil {
			return "", errNoBaseURL
		}
		return next()
	}
}
