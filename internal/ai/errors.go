package ai

import (
	"errors"
	"fmt"
)

// Error taxonomy shared by every backend-facing component.
var (
	ErrEmptyResponse   = errors.New("backend returned no usable response")
	ErrQuotaExhausted  = errors.New("request quota exhausted")
	ErrRateLimited     = errors.New("backend rate limit reached")
	ErrBackendInternal = errors.New("backend internal error")
	ErrTranscription   = errors.New("audio transcription failed")
)

// Kind groups errors by what the operator should do about them.
type Kind int

const (
	KindOther Kind = iota
	// KindQuota means wait for the quota or rate limit window.
	KindQuota
	// KindBackend means the backend failed and a retry may succeed.
	KindBackend
)

func (k Kind) String() string {
	switch k {
	case KindQuota:
		return "quota"
	case KindBackend:
		return "backend"
	default:
		return "other"
	}
}

// Classify maps an error to its Kind.
func Classify(err error) Kind {
	switch {
	case err == nil:
		return KindOther
	case errors.Is(err, ErrQuotaExhausted), errors.Is(err, ErrRateLimited):
		return KindQuota
	case errors.Is(err, ErrBackendInternal), errors.Is(err, ErrEmptyResponse):
		return KindBackend
	default:
		return KindOther
	}
}

// Describe returns a short human-readable message for the operator.
func Describe(err error) string {
	if err == nil {
		return ""
	}

	switch Classify(err) {
	case KindQuota:
		return fmt.Sprintf("quota or rate limit reached, wait before retrying or check your plan (%v)", err)
	case KindBackend:
		return fmt.Sprintf("the backend failed internally, retry in a moment (%v)", err)
	default:
		return fmt.Sprintf("request failed (%v)", err)
	}
}
