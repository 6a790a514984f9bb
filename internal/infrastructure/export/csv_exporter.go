package export

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	crerr "github.com/cockroachdb/errors"
	"github.com/riskibarqy/pl-lineup-bot/internal/domain/gameweek"
	"github.com/riskibarqy/pl-lineup-bot/internal/domain/player"
	"github.com/valyala/bytebufferpool"
)

var csvHeader = []string{"id", "name", "position", "minutes", "goals", "assists", "total_points", "ownership_pct"}

// CSVExporter writes one gameweek_<N>.csv per exported week into Dir.
type CSVExporter struct {
	dir string
}

func NewCSVExporter(dir string) *CSVExporter {
	return &CSVExporter{dir: strings.TrimSpace(dir)}
}

func FileName(week int) string {
	return "gameweek_" + strconv.Itoa(week) + ".csv"
}

// ExportPlayers replaces the week's file atomically and returns its path.
func (e *CSVExporter) ExportPlayers(ctx context.Context, week int, players []player.Player) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if e.dir == "" {
		return "", crerr.New("export directory is required")
	}
	if err := gameweek.ValidateWeek(week); err != nil {
		return "", err
	}
	if err := os.MkdirAll(e.dir, 0o755); err != nil {
		return "", crerr.Wrapf(err, "create export directory %s", e.dir)
	}

	buf := bytebufferpool.Get()
	defer bytebufferpool.Put(buf)

	if err := encodePlayers(buf, players); err != nil {
		return "", crerr.Wrap(err, "encode players csv")
	}

	target := filepath.Join(e.dir, FileName(week))
	tmp, err := os.CreateTemp(e.dir, "."+FileName(week)+".*")
	if err != nil {
		return "", crerr.Wrap(err, "create temp export file")
	}
	tmpName := tmp.Name()
	cleanup := func() { _ = os.Remove(tmpName) }

	if _, err := tmp.Write(buf.B); err != nil {
		_ = tmp.Close()
		cleanup()
		return "", crerr.Wrapf(err, "write %s", tmpName)
	}
	if err := tmp.Close(); err != nil {
		cleanup()
		return "", crerr.Wrapf(err, "close %s", tmpName)
	}
	if err := os.Rename(tmpName, target); err != nil {
		cleanup()
		return "", crerr.Wrapf(err, "rename export to %s", target)
	}
	return target, nil
}

func encodePlayers(buf *bytebufferpool.ByteBuffer, players []player.Player) error {
	w := csv.NewWriter(buf)
	if err := w.Write(csvHeader); err != nil {
		return err
	}
	for _, p := range players {
		record := []string{
			strconv.FormatInt(p.ID, 10),
			p.Name,
			string(p.Position),
			strconv.Itoa(p.Minutes),
			strconv.Itoa(p.Goals),
			strconv.Itoa(p.Assists),
			strconv.Itoa(p.TotalPoints),
			strconv.FormatFloat(p.OwnershipPct, 'f', -1, 64),
		}
		if err := w.Write(record); err != nil {
			return fmt.Errorf("player %d: %w", p.ID, err)
		}
	}
	w.Flush()
	return w.Error()
}
