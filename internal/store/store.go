// Package store persists the watchdog's configuration and attempt history.
package store

import (
	"context"

	"github.com/me/sourcewatch/pkg/host"
	"github.com/me/sourcewatch/pkg/model"
)

// Store is the persistence layer: the host-style settings surface plus the
// reactivation attempt history.
type Store interface {
	host.Settings

	// RecordAttempt inserts one attempt record.
	RecordAttempt(ctx context.Context, rec model.AttemptRecord) error

	// ListAttempts returns attempts newest-first with the total count.
	ListAttempts(ctx context.Context, opts model.ListOptions) ([]model.AttemptRecord, int, error)

	// AttemptStats aggregates the attempt history by control.
	AttemptStats(ctx context.Context) (model.AttemptStats, error)

	// Lifecycle
	Close() error
	Migrate(ctx context.Context) error
}
