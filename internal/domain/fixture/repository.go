package fixture

import "context"

type Repository interface {
	GetByID(ctx context.Context, fixtureID int64) (Fixture, bool, error)
	ListByGameweek(ctx context.Context, gameweek int) ([]Fixture, error)
}
