package device

import "context"

type Repository interface {
	Get(ctx context.Context, id string) (*Device, error)

	// NextSequence atomically increments the device counter and returns
	// the new value. Concurrent callers never observe the same value.
	NextSequence(ctx context.Context, id string) (int64, error)
}
