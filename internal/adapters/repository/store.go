// Package repository keeps the audit trail of finished alert episodes.
package repository

import (
	"context"

	"github.com/ridershield/ridershield/internal/domain/model"
)

// Store provides write-once, newest-first access to episode records.
type Store interface {
	// Record appends a finished episode.
	Record(ctx context.Context, rec model.EpisodeRecord) error

	// Recent returns up to n records, newest first.
	// Returns ErrInvalidLimit if n < 1.
	Recent(ctx context.Context, n int) ([]model.EpisodeRecord, error)

	// Count returns the number of retained records.
	Count(ctx context.Context) (int, error)
}
