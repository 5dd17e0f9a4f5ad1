package ollama

import (
	"context"
	"errors"
	"net"
	"net/http"

	"github.com/dkozyrev/corpusqa/internal/infrastructure/resilience"
)

// classifyInferenceError decides which failures are worth retrying and
// which should count against the circuit breaker. Caller cancellation is
// neither: the model is fine, the caller went away.
func classifyInferenceError(err error) resilience.Verdict {
	if err == nil {
		return resilience.Verdict{}
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return resilience.Verdict{Retryable: false, CountsAsFailure: false}
	}

	var statusErr *HTTPStatusError
	if errors.As(err, &statusErr) {
		switch statusErr.StatusCode {
		case http.StatusRequestTimeout, http.StatusTooManyRequests:
			return resilience.Verdict{Retryable: true, CountsAsFailure: true}
		}
		if statusErr.StatusCode >= 500 {
			return resilience.Verdict{Retryable: true, CountsAsFailure: true}
		}
		return resilience.Verdict{Retryable: false, CountsAsFailure: true}
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		return resilience.Verdict{Retryable: true, CountsAsFailure: true}
	}
	return resilience.Verdict{Retryable: false, CountsAsFailure: true}
}
