package baseline

import "time"

// Baseline is a rider's starting-points snapshot for one season, captured
// once when the differential games open and immutable afterwards.
type Baseline struct {
	RiderID        string
	Year           int
	StartingPoints int
	CapturedAt     time.Time
}
