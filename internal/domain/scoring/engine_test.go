package scoring

import (
	"testing"

	"github.com/wielerspel/peloton-api/internal/domain/result"
)

func TestStagePointsBoundaries(t *testing.T) {
	t.Parallel()

	if got := StagePoints(0); got != 0 {
		t.Fatalf("StagePoints(0) = %d, want 0", got)
	}
	if got := StagePoints(-1); got != 0 {
		t.Fatalf("StagePoints(-1) = %d, want 0", got)
	}
	if StagePoints(1) <= StagePoints(2) || StagePoints(2) <= 0 {
		t.Fatalf("table not strictly decreasing at the top: %d, %d", StagePoints(1), StagePoints(2))
	}
	if got := StagePoints(21); got != 0 {
		t.Fatalf("StagePoints beyond table = %d, want 0", got)
	}
}

func TestClassificationMultiplierGating(t *testing.T) {
	t.Parallel()

	cfg := DefaultMultipliers()
	if got := ClassificationMultiplier(KindPoints, result.Numbered(10), 21, cfg); got != 0 {
		t.Fatalf("mid-race points multiplier = %v, want 0", got)
	}
	if got := ClassificationMultiplier(KindPoints, result.Numbered(21), 21, cfg); got <= 0 {
		t.Fatalf("final-stage points multiplier = %v, want > 0", got)
	}
	if got := ClassificationMultiplier(KindMountains, result.TourGC(), 21, cfg); got != 0 {
		t.Fatalf("tour-gc mountains multiplier = %v, want 0", got)
	}
}

func TestGCMultiplier(t *testing.T) {
	t.Parallel()

	cfg := MultiplierConfig{Sprint: 1, Mountain: 1, RestDays: []int{10, 16}}
	if got := GCMultiplier(result.TourGC(), 21, cfg); got != 1 {
		t.Fatalf("tour-gc multiplier = %v, want 1", got)
	}
	if got := GCMultiplier(result.TourGC(), 21, DefaultMultipliers()); got != 1 {
		t.Fatalf("tour-gc multiplier without rest days = %v, want 1", got)
	}
	if got := GCMultiplier(result.Numbered(10), 21, cfg); got != 1 {
		t.Fatalf("rest-day multiplier = %v, want 1", got)
	}
	if got := GCMultiplier(result.Numbered(21), 21, cfg); got != 1 {
		t.Fatalf("final-stage multiplier = %v, want 1", got)
	}
	if got := GCMultiplier(result.Numbered(5), 21, cfg); got != 0 {
		t.Fatalf("ordinary-stage multiplier = %v, want 0", got)
	}
}

func TestScoreRiderStageOnly(t *testing.T) {
	t.Parallel()

	doc := &result.Document{
		StageResults: result.RiderList{
			{NameID: "rider-a", Place: 1, Points: 50},
			{NameID: "rider-b", Place: 2, Points: 30},
		},
	}
	in := Input{RaceName: "tour-de-france", Stage: result.Numbered(5), TotalStages: 21, Multipliers: DefaultMultipliers()}

	got := ScoreRider(doc, "rider-a", in)
	if got.Stage != StagePoints(1) || got.Total != StagePoints(1) {
		t.Fatalf("rider-a breakdown = %+v", got)
	}
	if got := ScoreRider(doc, "rider-c", in); got.Total != 0 {
		t.Fatalf("unknown rider breakdown = %+v, want zero", got)
	}
}

func TestScoreRiderDirectPointsForNonGrandTour(t *testing.T) {
	t.Parallel()

	doc := &result.Document{
		StageResults: result.RiderList{{NameID: "rider-a", Place: 1, Points: 125}},
	}
	direct := Input{RaceName: "paris-nice", Stage: result.Numbered(3), TotalStages: 8, Multipliers: DefaultMultipliers(), DirectPoints: true}
	if got := ScoreRider(doc, "rider-a", direct); got.Stage != 125 {
		t.Fatalf("direct stage points = %d, want 125", got.Stage)
	}

	// Grand Tours always use the fixed table, even in direct mode.
	gt := direct
	gt.RaceName = "tour-de-france"
	gt.TotalStages = 21
	if got := ScoreRider(doc, "rider-a", gt); got.Stage != StagePoints(1) {
		t.Fatalf("grand-tour stage points = %d, want %d", got.Stage, StagePoints(1))
	}
}

func TestScoreRiderTourGCOnlyAwardsGC(t *testing.T) {
	t.Parallel()

	doc := &result.Document{
		StageResults:          result.RiderList{{NameID: "rider-a", Place: 1}},
		GeneralClassification: result.RiderList{{NameID: "rider-a", Place: 2}},
	}
	in := Input{RaceName: "tour-de-france", Stage: result.TourGC(), TotalStages: 21, Multipliers: DefaultMultipliers()}

	got := ScoreRider(doc, "rider-a", in)
	if got.Stage != 0 {
		t.Fatalf("tour-gc stage component = %d, want 0", got.Stage)
	}
	if got.GC != StagePoints(2) || got.Total != StagePoints(2) {
		t.Fatalf("tour-gc breakdown = %+v", got)
	}
}

func TestScoreRiderFinalStageClassifications(t *testing.T) {
	t.Parallel()

	doc := &result.Document{
		StageResults:            result.RiderList{{NameID: "rider-a", Place: 5}},
		GeneralClassification:   result.RiderList{{NameID: "rider-a", Place: 1}},
		PointsClassification:    result.RiderList{{NameID: "rider-a", Place: 1}},
		MountainsClassification: result.RiderList{{NameID: "rider-a", Place: 2}},
		YouthClassification:     result.RiderList{{NameID: "rider-a", Place: 1}},
	}
	cfg := MultiplierConfig{Sprint: 0.5, Mountain: 2}
	in := Input{RaceName: "tour-de-france", Stage: result.Numbered(21), TotalStages: 21, Multipliers: cfg}

	got := ScoreRider(doc, "rider-a", in)
	if got.Stage != StagePoints(5) {
		t.Errorf("stage = %d", got.Stage)
	}
	if got.GC != StagePoints(1) {
		t.Errorf("gc = %d", got.GC)
	}
	if got.Points != 25 {
		t.Errorf("points classification = %d, want 25", got.Points)
	}
	if got.Mountains != 2*StagePoints(2) {
		t.Errorf("mountains classification = %d", got.Mountains)
	}
	if got.Youth != StagePoints(1) {
		t.Errorf("youth classification = %d", got.Youth)
	}
	wantTotal := got.Stage + got.GC + got.Points + got.Mountains + got.Youth
	if got.Total != wantTotal {
		t.Errorf("total = %d, want %d", got.Total, wantTotal)
	}
}

func TestScoreAllRiders(t *testing.T) {
	t.Parallel()

	doc := &result.Document{
		StageResults: result.RiderList{
			{NameID: "rider-a", Place: 1},
			{ShortName: "Rider B", Place: 2},
			{Rider: "-", Place: 3},
			{Place: 25},
		},
	}
	in := Input{RaceName: "tour-de-france", Stage: result.Numbered(5), TotalStages: 21, Multipliers: DefaultMultipliers()}

	got := ScoreAllRiders(doc, in)
	if len(got) != 2 {
		t.Fatalf("scored %d riders, want 2: %+v", len(got), got)
	}
	if got["rider-a"].Total != StagePoints(1) {
		t.Errorf("rider-a total = %d", got["rider-a"].Total)
	}
	if got["rider-b"].Total != StagePoints(2) {
		t.Errorf("rider-b total = %d", got["rider-b"].Total)
	}
}
