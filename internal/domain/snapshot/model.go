package snapshot

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/riskibarqy/pl-lineup-bot/internal/domain/gameweek"
	"github.com/riskibarqy/pl-lineup-bot/internal/domain/player"
)

// Key identifies at most one snapshot per season and week.
type Key struct {
	Season   string
	Gameweek int
}

func (k Key) Validate() error {
	if strings.TrimSpace(k.Season) == "" {
		return fmt.Errorf("season is required")
	}
	return gameweek.ValidateWeek(k.Gameweek)
}

func (k Key) String() string {
	return fmt.Sprintf("%s/gw%d", k.Season, k.Gameweek)
}

// Snapshot is a frozen copy of the live tables for one week.
type Snapshot struct {
	Key
	Tables     gameweek.Tables
	CapturedAt time.Time
}

type Repository interface {
	// Upsert replaces any snapshot stored under the same key.
	Upsert(ctx context.Context, s Snapshot) error
	Get(ctx context.Context, key Key) (Snapshot, bool, error)
	ListKeys(ctx context.Context, season string) ([]Key, error)
}

// Exporter writes the human-inspectable per-week player dump.
type Exporter interface {
	ExportPlayers(ctx context.Context, gameweek int, players []player.Player) (string, error)
}
