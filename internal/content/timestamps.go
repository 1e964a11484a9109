package content

import (
	"context"
	"errors"
	"time"
)

// Timestamps are the creation and last modification times of a file.
type Timestamps struct {
	Created  time.Time
	Modified time.Time
}

// TimestampProvider looks up timestamps for a content file. Errors are not
// fatal: discovery falls back to the current time.
type TimestampProvider interface {
	Lookup(ctx context.Context, path string) (Timestamps, error)
}

// TimestampFunc adapts a function to TimestampProvider.
type TimestampFunc func(ctx context.Context, path string) (Timestamps, error)

func (f TimestampFunc) Lookup(ctx context.Context, path string) (Timestamps, error) {
	return f(ctx, path)
}

// StaticTimestamps returns the same timestamps for every file.
type StaticTimestamps Timestamps

func (s StaticTimestamps) Lookup(context.Context, string) (Timestamps, error) {
	return Timestamps(s), nil
}

// ErrNoTimestamps is returned by NoTimestamps.
var ErrNoTimestamps = errors.New("timestamps disabled")

// NoTimestamps never knows a file's timestamps.
type NoTimestamps struct{}

func (NoTimestamps) Lookup(context.Context, string) (Timestamps, error) {
	return Timestamps{}, ErrNoTimestamps
}
