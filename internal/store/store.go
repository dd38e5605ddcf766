// Package store provides the sources a channel table is loaded from and the
// process-wide cache that serves the loaded table.
package store

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/voyagen/tubestats/internal/models"
)

// Source loads a complete channel table.
type Source interface {
	// Load reads the whole table. It fails with a *loader.LoadError when the
	// source is unreachable, malformed, or missing required columns.
	Load(ctx context.Context) (*models.ChannelTable, error)
	// Info describes the source for logs and API responses.
	Info() models.SourceInfo
}

// Snapshot is one loaded, immutable version of the table.
type Snapshot struct {
	ID       uuid.UUID
	Table    *models.ChannelTable
	Source   models.SourceInfo
	LoadedAt time.Time
}
