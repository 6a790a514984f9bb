package player

import "context"

// Repository reads the latest-only player table.
type Repository interface {
	GetByIDs(ctx context.Context, playerIDs []int64) ([]Player, error)
	ListByMinOwnership(ctx context.Context, minPct float64) ([]Player, error)
}
