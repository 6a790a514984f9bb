package lineup

import "context"

type Repository interface {
	ListByMatch(ctx context.Context, matchID int64) ([]Entry, error)
}
