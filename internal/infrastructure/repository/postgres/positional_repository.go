package postgres

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/riskibarqy/pl-lineup-bot/internal/domain/positional"
	qb "github.com/riskibarqy/pl-lineup-bot/internal/platform/querybuilder"
)

// positionalIncrementSuffix adds to the stored counter inside the database, so
// concurrent runs incrementing the same row never lose updates.
const positionalIncrementSuffix = `ON CONFLICT (player_name, position)
DO UPDATE SET
    observed_count = positional_baselines.observed_count + EXCLUDED.observed_count,
    updated_at = NOW()`

type PositionalRepository struct {
	db *sqlx.DB
}

func NewPositionalRepository(db *sqlx.DB) *PositionalRepository {
	return &PositionalRepository{db: db}
}

const positionalInsertColumns = 3

type boundQuery struct {
	sql  string
	args []any
}

// buildIncrementQueries folds duplicate keys and orders rows by key so that
// concurrent transactions lock rows in the same order. Rows are split so no
// statement exceeds the bind parameter cap.
func buildIncrementQueries(increments []positional.Increment) ([]boundQuery, error) {
	type key struct{ name, position string }
	merged := make(map[key]int64, len(increments))
	for _, inc := range increments {
		if err := inc.Validate(); err != nil {
			return nil, err
		}
		merged[key{inc.Name, inc.Position}] += inc.Delta
	}

	keys := make([]key, 0, len(merged))
	for k := range merged {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].name != keys[j].name {
			return keys[i].name < keys[j].name
		}
		return keys[i].position < keys[j].position
	})

	rows := make([]any, 0, len(keys))
	for _, k := range keys {
		rows = append(rows, positionalInsertModel{
			PlayerName:    k.name,
			Position:      k.position,
			ObservedCount: merged[k],
		})
	}

	chunks := chunkRows(rows, positionalInsertColumns)
	out := make([]boundQuery, 0, len(chunks))
	for _, chunk := range chunks {
		query, args, err := qb.InsertModels("positional_baselines", chunk, positionalIncrementSuffix)
		if err != nil {
			return nil, err
		}
		out = append(out, boundQuery{sql: query, args: args})
	}
	return out, nil
}

func (r *PositionalRepository) Increment(ctx context.Context, increments []positional.Increment) error {
	if len(increments) == 0 {
		return nil
	}

	queries, err := buildIncrementQueries(increments)
	if err != nil {
		return fmt.Errorf("build increment positional baselines query: %w", err)
	}

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx for positional increment: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	for _, q := range queries {
		if _, err := tx.ExecContext(ctx, q.sql, q.args...); err != nil {
			return fmt.Errorf("increment positional baselines: %w", err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit positional increment: %w", err)
	}
	return nil
}

func (r *PositionalRepository) GetByName(ctx context.Context, name string) (positional.Baseline, bool, error) {
	query, args, err := qb.Select("player_name", "position", "observed_count", "updated_at").
		From("positional_baselines").
		Where(qb.Eq("player_name", name)).
		OrderBy("position").
		ToSQL()
	if err != nil {
		return positional.Baseline{}, false, fmt.Errorf("build get positional baseline query: %w", err)
	}

	var rows []positionalTableModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return positional.Baseline{}, false, fmt.Errorf("select positional baseline: %w", err)
	}
	if len(rows) == 0 {
		return positional.Baseline{}, false, nil
	}

	out := positional.Baseline{
		PlayerName: name,
		Positions:  make(map[string]int64, len(rows)),
	}
	var updated time.Time
	for _, row := range rows {
		out.Positions[row.Position] = row.ObservedCount
		if row.UpdatedAt.After(updated) {
			updated = row.UpdatedAt
		}
	}
	out.UpdatedAt = updated.UTC()
	return out, true, nil
}
