package gemini

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"google.golang.org/genai"

	"github.com/spigell/skillbuddy/internal/ai"
)

// classifyError wraps Gemini API errors with the matching ai sentinel so callers
// can branch on errors.Is without importing genai.
func classifyError(err error) error {
	apiErr, ok := asAPIError(err)
	if !ok {
		return fmt.Errorf("generate content: %w", err)
	}

	status := strings.ToUpper(apiErr.Status)
	switch {
	case apiErr.Code == http.StatusTooManyRequests || status == "RESOURCE_EXHAUSTED":
		if strings.Contains(strings.ToLower(apiErr.Message), "quota") {
			return fmt.Errorf("generate content: %w: %w", ai.ErrQuotaExhausted, err)
		}
		return fmt.Errorf("generate content: %w: %w", ai.ErrRateLimited, err)
	case apiErr.Code >= http.StatusInternalServerError || status == "INTERNAL" || status == "UNAVAILABLE":
		return fmt.Errorf("generate content: %w: %w", ai.ErrBackendInternal, err)
	default:
		return fmt.Errorf("generate content: %w", err)
	}
}

func asAPIError(err error) (genai.APIError, bool) {
	var value genai.APIError
	if errors.As(err, &value) {
		return value, true
	}

	var ptr *genai.APIError
	if errors.As(err, &ptr) && ptr != nil {
		return *ptr, true
	}

	return genai.APIError{}, false
}
