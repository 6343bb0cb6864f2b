package game

import (
	"strings"
	"time"

	"github.com/bytedance/sonic"
	"github.com/wielerspel/peloton-api/internal/domain/result"
	"github.com/wielerspel/peloton-api/internal/domain/scoring"
)

type Type string

const (
	// TypeAuction is the bidding game family scored by the fan-out pipeline.
	TypeAuction Type = "auction"
	// TypeMarginalGains is the differential game family scored against a
	// season baseline snapshot.
	TypeMarginalGains Type = "marginal-gains"
)

type Status string

const (
	StatusRegistration Status = "registration"
	StatusBidding      Status = "bidding"
	StatusActive       Status = "active"
	StatusFinished     Status = "finished"
)

type RaceType string

const (
	// RaceTypeSeason games count every race and score from the raw scraped
	// points column.
	RaceTypeSeason RaceType = "season"
	RaceTypeRace   RaceType = "race"
)

// CountingRace is one race in a game's configuration. Stored either as a bare
// race slug string or as an object with per-race multiplier overrides; both
// shapes decode into this struct.
type CountingRace struct {
	Race     string  `json:"race"`
	Sprint   float64 `json:"sprintMultiplier,omitempty"`
	Mountain float64 `json:"mountainMultiplier,omitempty"`
	RestDays []int   `json:"restDays,omitempty"`
}

func (c *CountingRace) UnmarshalJSON(data []byte) error {
	trimmed := strings.TrimSpace(string(data))
	if strings.HasPrefix(trimmed, `"`) {
		var slug string
		if err := sonic.Unmarshal(data, &slug); err != nil {
			return err
		}
		*c = CountingRace{Race: slug}
		return nil
	}
	type alias CountingRace
	var full alias
	if err := sonic.Unmarshal(data, &full); err != nil {
		return err
	}
	*c = CountingRace(full)
	return nil
}

// Multipliers resolves the race's scoring overrides, falling back to the
// engine defaults for anything unset.
func (c CountingRace) Multipliers() scoring.MultiplierConfig {
	cfg := scoring.DefaultMultipliers()
	if c.Sprint > 0 {
		cfg.Sprint = c.Sprint
	}
	if c.Mountain > 0 {
		cfg.Mountain = c.Mountain
	}
	if len(c.RestDays) > 0 {
		cfg.RestDays = c.RestDays
	}
	return cfg
}

type Config struct {
	CountingRaces []CountingRace `json:"countingRaces"`
	TotalStages   int            `json:"totalStages,omitempty"`
}

type Game struct {
	ID         string
	Name       string
	Type       Type
	Status     Status
	RaceType   RaceType
	SeasonYear int
	Config     Config
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// CountsRace decides whether a result for the given race feeds this game, and
// with which multiplier overrides. Season games count every race; race-scoped
// games consult the configured counting list, matching race slugs with the
// year suffix ignored.
func (g *Game) CountsRace(raceName string) (scoring.MultiplierConfig, bool) {
	target := result.RaceName(raceName)
	for _, cr := range g.Config.CountingRaces {
		if result.RaceName(cr.Race) == target {
			return cr.Multipliers(), true
		}
	}
	if g.RaceType == RaceTypeSeason {
		return scoring.DefaultMultipliers(), true
	}
	return scoring.MultiplierConfig{}, false
}

// UsesDirectPoints reports whether the game scores from the raw scraped
// points column instead of the fixed table.
func (g *Game) UsesDirectPoints() bool {
	return g.RaceType == RaceTypeSeason
}
