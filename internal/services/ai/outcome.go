package ai

import (
	"errors"
	"fmt"

	"github.com/sakhi-safety/sakhi-relay/internal/i18n"
	"github.com/sakhi-safety/sakhi-relay/internal/resources"
)

// Outcome tags how a completion call ended
type Outcome int

const (
	OutcomeOK Outcome = iota
	OutcomeRateLimited
	OutcomeAPIError
	OutcomeTransportError
)

func (o Outcome) String() string {
	switch o {
	case OutcomeOK:
		return "ok"
	case OutcomeRateLimited:
		return "rate_limited"
	case OutcomeAPIError:
		return "api_error"
	case OutcomeTransportError:
		return "transport_error"
	default:
		return fmt.Sprintf("outcome(%d)", int(o))
	}
}

// Result is the tagged result of Gateway.Complete. Text is only set for
// OutcomeOK; Err carries the cause of every other outcome.
type Result struct {
	Outcome Outcome
	Text    string
	Err     error
}

func (r Result) OK() bool {
	return r.Outcome == OutcomeOK
}

var (
	ErrRateLimited = errors.New("provider rate limit reached")
	ErrInvalidCall = errors.New("invalid completion request")
)

// APIError is a non-success answer from the provider
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("provider returned status %d: %s", e.StatusCode, e.Message)
}

func ok(text string) Result {
	return Result{Outcome: OutcomeOK, Text: text}
}

func rateLimited(err error) Result {
	return Result{Outcome: OutcomeRateLimited, Err: err}
}

func apiError(err error) Result {
	return Result{Outcome: OutcomeAPIError, Err: err}
}

func transportError(err error) Result {
	return Result{Outcome: OutcomeTransportError, Err: err}
}

// FallbackText returns the text to show the user for r. Every failed outcome
// degrades to an apology carrying an actionable helpline number.
func FallbackText(r Result, catalog *resources.Catalog, localizer *i18n.Localizer) string {
	switch r.Outcome {
	case OutcomeOK:
		return r.Text
	case OutcomeRateLimited:
		return localizer.T(i18n.MsgFallbackRateLimited, map[string]interface{}{
			"Number": catalog.Helpline(resources.NationalEmergency),
		})
	case OutcomeAPIError:
		return localizer.T(i18n.MsgFallbackAPIError, map[string]interface{}{
			"Number": catalog.Helpline(resources.WomenHelpline),
		})
	default:
		return localizer.T(i18n.MsgFallbackUnexpected, map[string]interface{}{
			"Number": catalog.Helpline(resources.NationalEmergency),
		})
	}
}
