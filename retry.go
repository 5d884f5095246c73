package dynastream

import (
	"context"
	"errors"
	"time"

	"github.com/sirupsen/logrus"
)

const (
	retryBaseDelay = time.Second
	retryMaxDelay  = 30 * time.Second
)

// retryableKinds are the TypedError kinds spec.md classifies as
// transient: retried indefinitely with backoff rather than surfaced.
var retryableKinds = map[string]bool{
	"ProvisionedThroughputExceededException": true,
	"ThrottlingException":                    true,
	"InternalServerError":                    true,
	"InternalFailure":                        true,
	"LimitExceededException":                 true,
	"RequestLimitExceeded":                   true,
}

func isRetryable(err error) bool {
	var te *TypedError
	if errors.As(err, &te) {
		if retryableKinds[te.Kind] {
			return true
		}
		return te.HTTPStatus >= 500
	}

	var xe *transportError
	return errors.As(err, &xe)
}

func isIteratorExpired(err error) bool {
	var te *TypedError
	return errors.As(err, &te) && te.Kind == "ExpiredIteratorException"
}

func isStreamNotFound(err error) bool {
	var e *StreamNotFoundError
	return errors.As(err, &e)
}

// withRetry retries fn indefinitely, with capped exponential backoff,
// while its error is retryable. A non-retryable error or a canceled
// context returns immediately.
func withRetry(ctx context.Context, log *logrus.Entry, fn func() error) error {
	delay := retryBaseDelay
	for attempt := 1; ; attempt++ {
		err := fn()
		if err == nil {
			return nil
		}
		if !isRetryable(err) {
			return err
		}

		log.WithError(err).WithField("attempt", attempt).Warn("retrying transient error")

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(delay):
		}

		delay *= 2
		if delay > retryMaxDelay {
			delay = retryMaxDelay
		}
	}
}
