package etl

import (
	"context"

	"github.com/jackc/pgx/v5"

	"github.com/datakettle/superstore-etl/internal/db"
)

// flushBatch sends a queued batch and checks every statement's result.
func flushBatch(ctx context.Context, q db.Queryer, batch *pgx.Batch) error {
	if batch.Len() == 0 {
		return nil
	}
	br := q.SendBatch(ctx, batch)
	for i := 0; i < batch.Len(); i++ {
		if _, err := br.Exec(); err != nil {
			br.Close()
			return err
		}
	}
	return br.Close()
}
