package activity

import "time"

// Entry is one audit-trail record of a pipeline invocation.
type Entry struct {
	ID        string
	Action    string
	Actor     string
	Detail    map[string]any
	CreatedAt time.Time
}

const (
	ActionCalculationTriggered = "calculation.triggered"
	ActionCalculationSkipped   = "calculation.skipped"
	ActionCalculationFailed    = "calculation.failed"
)
