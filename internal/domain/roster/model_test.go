package roster

import (
	"testing"

	"github.com/wielerspel/peloton-api/internal/domain/scoring"
)

func TestSetStageRecomputesRaceTotal(t *testing.T) {
	t.Parallel()

	rp := RacePoints{}
	rp.SetStage("tour-de-france", "Tour de France", "stage-1", scoring.Breakdown{Stage: 50, Total: 50})
	rp.SetStage("tour-de-france", "Tour de France", "stage-2", scoring.Breakdown{Stage: 30, Total: 30})

	if got := rp["tour-de-france"].TotalPoints; got != 80 {
		t.Fatalf("race total = %d, want 80", got)
	}

	// Overwriting a stage replaces it, it never accumulates.
	rp.SetStage("tour-de-france", "Tour de France", "stage-2", scoring.Breakdown{Stage: 30, Total: 30})
	if got := rp["tour-de-france"].TotalPoints; got != 80 {
		t.Fatalf("race total after rewrite = %d, want 80", got)
	}

	rp.SetStage("tour-de-france", "Tour de France", "stage-2", scoring.Breakdown{Stage: 44, Total: 44})
	if got := rp["tour-de-france"].TotalPoints; got != 94 {
		t.Fatalf("race total after correction = %d, want 94", got)
	}
}

func TestRaceTotalEqualsStageSum(t *testing.T) {
	t.Parallel()

	rp := RacePoints{}
	if got := rp.TotalPoints(); got != 0 {
		t.Fatalf("empty total = %d", got)
	}

	rp.SetStage("giro-d-italia", "Giro d'Italia", "prologue", scoring.Breakdown{Stage: 20, Total: 20})
	rp.SetStage("giro-d-italia", "Giro d'Italia", "stage-1", scoring.Breakdown{Stage: 10, GC: 5, Total: 15})
	rp.SetStage("paris-roubaix", "Paris-Roubaix", "result", scoring.Breakdown{Stage: 50, Total: 50})

	for race, score := range rp {
		sum := 0
		for _, stage := range score.StagePoints {
			sum += stage.Total
		}
		if score.TotalPoints != sum {
			t.Errorf("%s: totalPoints %d != stage sum %d", race, score.TotalPoints, sum)
		}
	}
	if got := rp.TotalPoints(); got != 85 {
		t.Fatalf("grand total = %d, want 85", got)
	}
	if got := rp.StageCount(); got != 3 {
		t.Fatalf("stage count = %d, want 3", got)
	}
}

func TestApplyStageRefreshesEntry(t *testing.T) {
	t.Parallel()

	e := &Entry{RiderID: "rider-a"}
	e.ApplyStage("tour-de-france", "Tour de France", "stage-5", scoring.Breakdown{Stage: 50, Total: 50})

	if e.PointsScored != 50 {
		t.Fatalf("pointsScored = %d, want 50", e.PointsScored)
	}
	if e.StagesParticipated != 1 {
		t.Fatalf("stagesParticipated = %d, want 1", e.StagesParticipated)
	}
}
