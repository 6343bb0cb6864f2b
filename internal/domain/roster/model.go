package roster

import (
	"time"

	"github.com/wielerspel/peloton-api/internal/domain/scoring"
)

// RaceScore tracks one rider's points within one race of one game: a
// per-stage breakdown map plus a total that is always recomputed from it.
type RaceScore struct {
	RaceName    string                       `json:"raceName,omitempty"`
	TotalPoints int                          `json:"totalPoints"`
	StagePoints map[string]scoring.Breakdown `json:"stagePoints"`
}

// RacePoints maps race key to that race's score.
type RacePoints map[string]RaceScore

// SetStage overwrites one stage's breakdown and recomputes the race total
// from all stored stages. The full recompute, not an increment, is what makes
// re-running the same stage idempotent.
func (rp RacePoints) SetStage(raceKey, raceName, stageKey string, b scoring.Breakdown) {
	score := rp[raceKey]
	if score.StagePoints == nil {
		score.StagePoints = map[string]scoring.Breakdown{}
	}
	score.RaceName = raceName
	score.StagePoints[stageKey] = b

	total := 0
	for _, stage := range score.StagePoints {
		total += stage.Total
	}
	score.TotalPoints = total
	rp[raceKey] = score
}

// TotalPoints sums every race's total.
func (rp RacePoints) TotalPoints() int {
	total := 0
	for _, score := range rp {
		total += score.TotalPoints
	}
	return total
}

// StageCount counts stored stage entries across all races.
func (rp RacePoints) StageCount() int {
	count := 0
	for _, score := range rp {
		count += len(score.StagePoints)
	}
	return count
}

type Status string

const (
	StatusActive   Status = "active"
	StatusInactive Status = "inactive"
)

// Entry is one rider on one participant's roster.
type Entry struct {
	ID                 string
	GameID             string
	UserID             string
	RiderID            string
	Status             Status
	PointsScored       int
	StagesParticipated int
	RacePoints         RacePoints
	UpdatedAt          time.Time
}

// ApplyStage records a stage breakdown and refreshes the derived totals.
func (e *Entry) ApplyStage(raceKey, raceName, stageKey string, b scoring.Breakdown) {
	if e.RacePoints == nil {
		e.RacePoints = RacePoints{}
	}
	e.RacePoints.SetStage(raceKey, raceName, stageKey, b)
	e.PointsScored = e.RacePoints.TotalPoints()
	e.StagesParticipated = e.RacePoints.StageCount()
}
