package eventstore

import (
	"context"
	"time"
)

// Store is an append-only event log keyed by build ID. Events are only
// removed in whole builds by Prune.
type Store interface {
	Append(ctx context.Context, buildID, eventType string, payload []byte, metadata map[string]string) error

	// GetByBuildID and GetRange return events in append order.
	GetByBuildID(ctx context.Context, buildID string) ([]Event, error)
	GetRange(ctx context.Context, start, end time.Time) ([]Event, error)

	// LatestBuildID returns the build of the most recent event of eventType,
	// or "" when there is none.
	LatestBuildID(ctx context.Context, eventType string) (string, error)

	// Prune deletes every build whose first event is older than before and
	// returns the number of builds removed.
	Prune(ctx context.Context, before time.Time) (int, error)

	Close() error
}

// AppendEvent stores a typed event.
func AppendEvent(ctx context.Context, s Store, e Event) error {
	return s.Append(ctx, e.BuildID(), e.Type(), e.Payload(), e.Metadata())
}
