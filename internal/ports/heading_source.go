package ports

import (
	"context"

	"noor-service/internal/domain"
)

// HeadingSource delivers raw compass samples in arrival order.
// Next blocks until a sample is available and returns io.EOF when the
// stream ends. The source owns the underlying sensor subscription.
type HeadingSource interface {
	Next(ctx context.Context) (domain.HeadingSample, error)
}
