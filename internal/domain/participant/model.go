package participant

import "time"

type Status string

const (
	StatusActive   Status = "active"
	StatusInactive Status = "inactive"
)

// Participant is one user's entry in one game. TotalPoints and Placing are
// recomputed after every scoring pass, never incremented.
type Participant struct {
	ID          string
	GameID      string
	UserID      string
	Status      Status
	TotalPoints int
	Placing     int
	UpdatedAt   time.Time
}

func (p *Participant) IsActive() bool {
	return p.Status == StatusActive
}
