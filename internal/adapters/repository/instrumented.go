package repository

import (
	"context"

	"github.com/ridershield/ridershield/internal/domain/model"
	"github.com/ridershield/ridershield/pkg/metrics"
)

// Instrumented counts writes of the wrapped store.
type Instrumented struct {
	Store
}

// Record forwards to the wrapped store and records the outcome.
func (s Instrumented) Record(ctx context.Context, rec model.EpisodeRecord) error { //nolint:gocritic // hugeParam: forwarded
	if err := s.Store.Record(ctx, rec); err != nil {
		metrics.RecordAuditWrite("error")
		metrics.RecordErrorByComponent("repository", "write")
		return err
	}
	metrics.RecordAuditWrite("ok")
	return nil
}
