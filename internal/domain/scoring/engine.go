package scoring

import (
	"math"
	"strings"

	"github.com/wielerspel/peloton-api/internal/domain/result"
)

// stagePointsTable awards the top 20 finish places. Places beyond the table
// score zero.
var stagePointsTable = [...]int{50, 44, 40, 36, 32, 30, 28, 26, 24, 22, 20, 18, 16, 14, 12, 10, 8, 6, 4, 2}

// StagePoints maps a 1-based finish place to its fixed point value. Zero,
// negative, and out-of-table places score 0.
func StagePoints(place int) int {
	if place < 1 || place > len(stagePointsTable) {
		return 0
	}
	return stagePointsTable[place-1]
}

// ClassificationKind names the secondary classifications awarded on the
// final stage of a multi-day race.
type ClassificationKind string

const (
	KindPoints    ClassificationKind = "points"
	KindMountains ClassificationKind = "mountains"
	KindYouth     ClassificationKind = "youth"
)

// MultiplierConfig carries per-race scoring overrides. Sprint applies to the
// points classification, Mountain to the mountains classification, RestDays
// lists stage numbers on which GC points are awarded mid-race.
type MultiplierConfig struct {
	Sprint   float64
	Mountain float64
	RestDays []int
}

func DefaultMultipliers() MultiplierConfig {
	return MultiplierConfig{Sprint: 1, Mountain: 1}
}

func (c MultiplierConfig) isRestDay(stageNumber int) bool {
	for _, day := range c.RestDays {
		if day == stageNumber {
			return true
		}
	}
	return false
}

var grandTours = []string{"tour-de-france", "giro-d-italia", "vuelta-a-espana"}

// IsGrandTour reports whether a race name (year suffix already stripped)
// denotes one of the three Grand Tours, which always score from the fixed
// table.
func IsGrandTour(raceName string) bool {
	name := strings.ToLower(strings.TrimSpace(raceName))
	for _, gt := range grandTours {
		if strings.HasPrefix(name, gt) {
			return true
		}
	}
	return false
}

// GCMultiplier returns the multiplier applied to general-classification
// points for a stage: 1 on the synthetic tour-GC stage, on rest days, and on
// the final stage; 0 on ordinary stages.
func GCMultiplier(stage result.Stage, totalStages int, cfg MultiplierConfig) float64 {
	switch stage.Kind {
	case result.StageTourGC:
		return 1
	case result.StageFinalResult:
		return 1
	default:
		if cfg.isRestDay(stage.Number) {
			return 1
		}
		if totalStages > 0 && stage.Number == totalStages {
			return 1
		}
		return 0
	}
}

// ClassificationMultiplier returns the multiplier for a secondary
// classification on a given stage. Secondary classifications are awarded once
// on the final stage, never cumulatively.
func ClassificationMultiplier(kind ClassificationKind, stage result.Stage, totalStages int, cfg MultiplierConfig) float64 {
	final := stage.Kind == result.StageFinalResult ||
		(stage.Kind == result.StageNumbered && totalStages > 0 && stage.Number == totalStages)
	if !final {
		return 0
	}
	switch kind {
	case KindPoints:
		return cfg.Sprint
	case KindMountains:
		return cfg.Mountain
	case KindYouth:
		return 1
	default:
		return 0
	}
}

// Breakdown is the per-category point split for one rider on one stage.
type Breakdown struct {
	Stage     int `json:"stage,omitempty"`
	GC        int `json:"gc,omitempty"`
	Points    int `json:"points,omitempty"`
	Mountains int `json:"mountains,omitempty"`
	Youth     int `json:"youth,omitempty"`
	Total     int `json:"total"`
}

// Input is the stage context a scoring pass runs under. DirectPoints selects
// the raw scraped "Pnt" column instead of the fixed table; Grand Tours ignore
// it and always use the table.
type Input struct {
	RaceName     string
	Stage        result.Stage
	TotalStages  int
	Multipliers  MultiplierConfig
	DirectPoints bool
}

func (in Input) usesRawPoints() bool {
	return in.DirectPoints && !IsGrandTour(in.RaceName)
}

func findRow(list result.RiderList, riderID string) (result.RiderRow, bool) {
	for _, row := range list {
		if MatchesRider(row, riderID) {
			return row, true
		}
	}
	return result.RiderRow{}, false
}

func scale(points int, multiplier float64) int {
	if multiplier == 0 || points <= 0 {
		return 0
	}
	return int(math.Round(float64(points) * multiplier))
}

// ScoreRider computes the point breakdown one rider earns from a result
// document under the given stage context. Pure: no lookups outside doc.
func ScoreRider(doc *result.Document, riderID string, in Input) Breakdown {
	var b Breakdown

	// The tour-GC pseudo stage awards only general classification.
	if in.Stage.Kind != result.StageTourGC {
		if row, ok := findRow(doc.StageResults, riderID); ok {
			if in.usesRawPoints() {
				b.Stage = row.Points.Int()
			} else {
				b.Stage = StagePoints(row.Place.Int())
			}
		}
	}

	if mult := GCMultiplier(in.Stage, in.TotalStages, in.Multipliers); mult > 0 {
		if row, ok := findRow(doc.GeneralClassification, riderID); ok {
			if in.usesRawPoints() {
				b.GC = scale(row.Points.Int(), mult)
			} else {
				b.GC = scale(StagePoints(row.Place.Int()), mult)
			}
		}
	}

	classifications := []struct {
		kind ClassificationKind
		list result.RiderList
		dst  *int
	}{
		{KindPoints, doc.PointsClassification, &b.Points},
		{KindMountains, doc.MountainsClassification, &b.Mountains},
		{KindYouth, doc.YouthClassification, &b.Youth},
	}
	for _, c := range classifications {
		mult := ClassificationMultiplier(c.kind, in.Stage, in.TotalStages, in.Multipliers)
		if mult == 0 {
			continue
		}
		if row, ok := findRow(c.list, riderID); ok {
			*c.dst = scale(StagePoints(row.Place.Int()), mult)
		}
	}

	b.Total = b.Stage + b.GC + b.Points + b.Mountains + b.Youth
	return b
}

// ScoreAllRiders scores every rider appearing in any list of the document and
// returns the breakdowns for those with a positive total, keyed by canonical
// rider identifier.
func ScoreAllRiders(doc *result.Document, in Input) map[string]Breakdown {
	seen := map[string]struct{}{}
	for _, list := range []result.RiderList{
		doc.StageResults,
		doc.GeneralClassification,
		doc.PointsClassification,
		doc.MountainsClassification,
		doc.YouthClassification,
	} {
		for _, row := range list {
			id := CanonicalID(row)
			if id == "" {
				continue
			}
			seen[id] = struct{}{}
		}
	}

	out := make(map[string]Breakdown, len(seen))
	for id := range seen {
		if b := ScoreRider(doc, id, in); b.Total > 0 {
			out[id] = b
		}
	}
	return out
}
