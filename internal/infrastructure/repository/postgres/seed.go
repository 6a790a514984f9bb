package postgres

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/riskibarqy/pl-lineup-bot/internal/infrastructure/repository/memory"
)

// BootstrapSeed loads the sample week into an empty database.
func BootstrapSeed(ctx context.Context, db *sqlx.DB) error {
	var count int
	if err := db.GetContext(ctx, &count, `SELECT COUNT(1) FROM players`); err != nil {
		return fmt.Errorf("count players for bootstrap seed: %w", err)
	}
	if count > 0 {
		return nil
	}

	if err := NewLiveWriter(db).ReplaceLive(ctx, memory.SeedTables()); err != nil {
		return fmt.Errorf("seed live tables: %w", err)
	}
	return nil
}
