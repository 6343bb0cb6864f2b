package season

import (
	"testing"

	"github.com/wielerspel/peloton-api/internal/domain/scoring"
)

func TestSetStageRecomputesTotals(t *testing.T) {
	t.Parallel()

	r := &Record{RiderID: "rider-a", Year: 2026}
	r.SetStage("tour-de-france", "Tour de France", "stage-1", scoring.Breakdown{Stage: 50, Total: 50})
	r.SetStage("tour-de-france", "Tour de France", "stage-2", scoring.Breakdown{Stage: 30, Total: 30})
	r.SetStage("paris-roubaix", "Paris-Roubaix", "result", scoring.Breakdown{Stage: 44, Total: 44})

	if got := r.Races["tour-de-france"].TotalPoints; got != 80 {
		t.Fatalf("race total = %d, want 80", got)
	}
	if r.TotalPoints != 124 {
		t.Fatalf("season total = %d, want 124", r.TotalPoints)
	}

	// Re-applying an identical stage must not change anything.
	r.SetStage("tour-de-france", "Tour de France", "stage-2", scoring.Breakdown{Stage: 30, Total: 30})
	if r.TotalPoints != 124 {
		t.Fatalf("season total after rewrite = %d, want 124", r.TotalPoints)
	}

	// A corrected rescrape replaces the old breakdown outright.
	r.SetStage("tour-de-france", "Tour de France", "stage-2", scoring.Breakdown{Stage: 44, Total: 44})
	if r.TotalPoints != 138 {
		t.Fatalf("season total after correction = %d, want 138", r.TotalPoints)
	}
}
