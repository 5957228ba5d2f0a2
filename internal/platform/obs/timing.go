package obs

import (
	"context"
	"time"

	"noor-service/internal/platform/logging"
)

type ctxKey string

const RequestIDKey ctxKey = "req_id"

// RequestID returns the request id stored in ctx, if any.
func RequestID(ctx context.Context) string {
	id, _ := ctx.Value(RequestIDKey).(string)
	return id
}

// Time logs the duration of an operation; call the returned func with the
// operation's error pointer, usually via defer.
func Time(ctx context.Context, name string) func(errp *error) {
	start := time.Now()
	reqID := RequestID(ctx)
	logger := logging.FromContext(ctx)

	return func(errp *error) {
		dur := time.Since(start)

		if errp != nil && *errp != nil {
			logger.Warnw("op failed", "req_id", reqID, "op", name, "dur", dur, "err", *errp)
			return
		}
		logger.Debugw("op", "req_id", reqID, "op", name, "dur", dur)
	}
}
