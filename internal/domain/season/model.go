package season

import (
	"time"

	"github.com/wielerspel/peloton-api/internal/domain/scoring"
)

// RaceBreakdown is one race's contribution to a rider's season total.
type RaceBreakdown struct {
	RaceName    string                       `json:"raceName"`
	TotalPoints int                          `json:"totalPoints"`
	Stages      map[string]scoring.Breakdown `json:"stages"`
}

// Record is a rider's season-long point accumulation, one per (rider, year),
// independent of any fantasy game.
type Record struct {
	RiderID     string
	Year        int
	TotalPoints int
	Races       map[string]RaceBreakdown
	UpdatedAt   time.Time
}

// SetStage overwrites one stage's breakdown under a race, then recomputes the
// race total from its stages and the season total from all races.
func (r *Record) SetStage(raceKey, raceName, stageKey string, b scoring.Breakdown) {
	if r.Races == nil {
		r.Races = map[string]RaceBreakdown{}
	}
	race := r.Races[raceKey]
	if race.Stages == nil {
		race.Stages = map[string]scoring.Breakdown{}
	}
	race.RaceName = raceName
	race.Stages[stageKey] = b

	raceTotal := 0
	for _, stage := range race.Stages {
		raceTotal += stage.Total
	}
	race.TotalPoints = raceTotal
	r.Races[raceKey] = race

	seasonTotal := 0
	for _, br := range r.Races {
		seasonTotal += br.TotalPoints
	}
	r.TotalPoints = seasonTotal
}
