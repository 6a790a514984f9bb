package fixture

import (
	"fmt"
	"time"
)

// Fixture is one match in a competition week.
type Fixture struct {
	ID           int64
	Gameweek     int
	HomeTeamID   int64
	AwayTeamID   int64
	HomeTeamName string
	AwayTeamName string
	KickoffAt    time.Time
	Started      bool
	Finished     bool
}

func (f Fixture) Validate() error {
	if f.ID <= 0 {
		return fmt.Errorf("fixture id must be greater than zero")
	}
	if f.Gameweek < 0 {
		return fmt.Errorf("fixture %d gameweek must not be negative", f.ID)
	}
	if f.HomeTeamID > 0 && f.HomeTeamID == f.AwayTeamID {
		return fmt.Errorf("fixture %d home and away team are the same", f.ID)
	}
	return nil
}

func (f Fixture) Label() string {
	if f.HomeTeamName == "" && f.AwayTeamName == "" {
		return fmt.Sprintf("match %d", f.ID)
	}
	return f.HomeTeamName + " vs " + f.AwayTeamName
}
