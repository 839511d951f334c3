package youtube

import (
	"errors"
	"fmt"
	"net/http"

	"google.golang.org/api/googleapi"
)

// ErrQuotaThreshold is returned without calling the API when a request would push the
// estimated quota usage past the configured threshold.
var ErrQuotaThreshold = errors.New("estimated quota threshold reached")

// UpstreamError wraps a failed Data API call.
//
//nolint:govet // fieldalignment: Accept minor memory overhead for better readability
type UpstreamError struct {
	Method     string // e.g. "videos.list"
	StatusCode int    // HTTP status when the API answered, 0 for transport failures
	Reason     string // first googleapi error reason, e.g. "commentsDisabled"
	Err        error
}

func (e *UpstreamError) Error() string {
	if e.StatusCode == 0 {
		return fmt.Sprintf("youtube %s failed: %v", e.Method, e.Err)
	}
	return fmt.Sprintf("youtube %s failed (status %d): %v", e.Method, e.StatusCode, e.Err)
}

func (e *UpstreamError) Unwrap() error {
	return e.Err
}

// IsForbidden reports whether err is an API answer with HTTP 403, which is what the
// commentThreads endpoint returns for videos with comments disabled.
func IsForbidden(err error) bool {
	var upstream *UpstreamError
	if errors.As(err, &upstream) {
		return upstream.StatusCode == http.StatusForbidden
	}
	var gerr *googleapi.Error
	if errors.As(err, &gerr) {
		return gerr.Code == http.StatusForbidden
	}
	return false
}

// IsQuotaExceeded reports whether err is the API rejecting a call because the project ran
// out of quota. These answers also carry HTTP 403.
func IsQuotaExceeded(err error) bool {
	var upstream *UpstreamError
	if errors.As(err, &upstream) {
		return isQuotaReason(upstream.Reason)
	}
	var gerr *googleapi.Error
	if errors.As(err, &gerr) && len(gerr.Errors) > 0 {
		return isQuotaReason(gerr.Errors[0].Reason)
	}
	return false
}

func isQuotaReason(reason string) bool {
	return reason == "quotaExceeded" || reason == "dailyLimitExceeded"
}

func wrapAPIError(method string, err error) error {
	upstream := &UpstreamError{Method: method, Err: err}

	var gerr *googleapi.Error
	if errors.As(err, &gerr) {
		upstream.StatusCode = gerr.Code
		if len(gerr.Errors) > 0 {
			upstream.Reason = gerr.Errors[0].Reason
		}
	}

	return upstream
}
