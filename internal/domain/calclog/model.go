package calclog

import "time"

type Status string

const (
	StatusSuccess Status = "success"
	StatusFailed  Status = "failed"
	StatusPartial Status = "partial"
)

// ValidationSummary is the validation gate outcome stored with every attempt.
type ValidationSummary struct {
	Valid    bool     `json:"valid"`
	Errors   []string `json:"errors,omitempty"`
	Warnings []string `json:"warnings,omitempty"`
}

// Entry records one calculation attempt. For a given (race, stage, year,
// hash) at most one success entry is authoritative for idempotency.
type Entry struct {
	ID                 string
	RaceName           string
	Stage              string
	Year               int
	InputHash          string
	Status             Status
	GamesAffected      []string
	TotalPointsAwarded int
	Validation         ValidationSummary
	Errors             []string
	Duration           time.Duration
	CreatedAt          time.Time
}
