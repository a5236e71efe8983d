package retry

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog/log"
	"google.golang.org/api/googleapi"
)

// Retryable reports whether err is a transient upstream condition worth
// retrying: a rate limit (429) or a server error (5xx). Anything else,
// including other 4xx API errors, is permanent from our point of view.
func Retryable(err error) bool {
	var apiErr *googleapi.Error
	if !errors.As(err, &apiErr) {
		return false
	}
	return apiErr.Code == 429 || (apiErr.Code >= 500 && apiErr.Code < 600)
}

// Do invokes fn, retrying up to maxRetries additional times on retryable
// errors with a doubling delay starting at baseDelay. The last error is
// returned unchanged once retries are exhausted. No jitter: the caller
// population is a single server process.
func Do(ctx context.Context, maxRetries int, baseDelay time.Duration, fn func() error) error {
	delay := baseDelay
	var err error
	for attempt := 0; ; attempt++ {
		err = fn()
		if err == nil {
			return nil
		}
		if attempt >= maxRetries || !Retryable(err) {
			return err
		}

		log.Warn().Err(err).Dur("delay", delay).Int("retries_left", maxRetries-attempt).
			Msg("Transient upstream error, backing off")

		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return ctx.Err()
		}
		delay *= 2
	}
}
