package usecase

import (
	"context"
	"testing"

	"github.com/wielerspel/peloton-api/internal/domain/baseline"
	"github.com/wielerspel/peloton-api/internal/domain/game"
	"github.com/wielerspel/peloton-api/internal/domain/participant"
	"github.com/wielerspel/peloton-api/internal/domain/roster"
	"github.com/wielerspel/peloton-api/internal/domain/scoring"
	"github.com/wielerspel/peloton-api/internal/domain/season"
	"github.com/wielerspel/peloton-api/internal/infrastructure/repository/memory"
)

func TestMarginalGainsRecalculate(t *testing.T) {
	t.Parallel()

	games := memory.NewGameRepository([]game.Game{{
		ID:         "mg-1",
		Type:       game.TypeMarginalGains,
		Status:     game.StatusActive,
		RaceType:   game.RaceTypeSeason,
		SeasonYear: 2026,
	}})
	participants := memory.NewParticipantRepository([]participant.Participant{
		{ID: "part-1", GameID: "mg-1", UserID: "user-1", Status: participant.StatusActive},
		{ID: "part-2", GameID: "mg-1", UserID: "user-2", Status: participant.StatusActive},
	})
	rosters := memory.NewRosterRepository([]roster.Entry{
		{ID: "team-1", GameID: "mg-1", UserID: "user-1", RiderID: "rider-a", Status: roster.StatusActive},
		{ID: "team-2", GameID: "mg-1", UserID: "user-2", RiderID: "rider-b", Status: roster.StatusActive},
	})
	baselines := memory.NewBaselineRepository([]baseline.Baseline{
		{RiderID: "rider-a", Year: 2026, StartingPoints: 100},
	})

	seasons := memory.NewSeasonRepository()
	ctx := context.Background()
	recA := &season.Record{RiderID: "rider-a", Year: 2026}
	recA.SetStage("tour-de-france", "Tour de France", "stage-1", scoring.Breakdown{Stage: 130, Total: 130})
	if err := seasons.Upsert(ctx, recA); err != nil {
		t.Fatal(err)
	}
	recB := &season.Record{RiderID: "rider-b", Year: 2026}
	recB.SetStage("tour-de-france", "Tour de France", "stage-1", scoring.Breakdown{Stage: 80, Total: 80})
	if err := seasons.Upsert(ctx, recB); err != nil {
		t.Fatal(err)
	}

	svc := NewMarginalGainsService(games, participants, rosters, baselines, NewSeasonService(seasons, nil, nil), nil)
	if err := svc.Recalculate(ctx, 2026); err != nil {
		t.Fatalf("Recalculate: %v", err)
	}

	// rider-a gained 130-100=30; rider-b has no baseline, full 80 counts.
	entryA, _ := rosters.Get("team-1")
	if entryA.PointsScored != 30 {
		t.Fatalf("rider-a gain = %d, want 30", entryA.PointsScored)
	}
	entryB, _ := rosters.Get("team-2")
	if entryB.PointsScored != 80 {
		t.Fatalf("rider-b gain = %d, want 80", entryB.PointsScored)
	}

	p1, _ := participants.Get("part-1")
	p2, _ := participants.Get("part-2")
	if p1.TotalPoints != 30 || p2.TotalPoints != 80 {
		t.Fatalf("totals = %d, %d", p1.TotalPoints, p2.TotalPoints)
	}
	if p2.Placing != 1 || p1.Placing != 2 {
		t.Fatalf("placings = %d, %d, want sequential by descending points", p1.Placing, p2.Placing)
	}
}

func TestMarginalGainsSkipsOtherYears(t *testing.T) {
	t.Parallel()

	games := memory.NewGameRepository([]game.Game{{
		ID:         "mg-old",
		Type:       game.TypeMarginalGains,
		Status:     game.StatusActive,
		SeasonYear: 2025,
	}})
	participants := memory.NewParticipantRepository([]participant.Participant{
		{ID: "part-1", GameID: "mg-old", UserID: "user-1", Status: participant.StatusActive, TotalPoints: 12},
	})
	rosters := memory.NewRosterRepository(nil)
	seasons := memory.NewSeasonRepository()

	svc := NewMarginalGainsService(games, participants, rosters, memory.NewBaselineRepository(nil), NewSeasonService(seasons, nil, nil), nil)
	if err := svc.Recalculate(context.Background(), 2026); err != nil {
		t.Fatalf("Recalculate: %v", err)
	}

	p, _ := participants.Get("part-1")
	if p.TotalPoints != 12 {
		t.Fatal("a previous season's game must not be touched")
	}
}

func TestMarginalGainsOverwritesStaleGain(t *testing.T) {
	t.Parallel()

	games := memory.NewGameRepository([]game.Game{{
		ID: "mg-1", Type: game.TypeMarginalGains, Status: game.StatusActive, SeasonYear: 2026,
	}})
	participants := memory.NewParticipantRepository([]participant.Participant{
		{ID: "part-1", GameID: "mg-1", UserID: "user-1", Status: participant.StatusActive},
	})
	rosters := memory.NewRosterRepository([]roster.Entry{
		{ID: "team-1", GameID: "mg-1", UserID: "user-1", RiderID: "rider-a", Status: roster.StatusActive, PointsScored: 999},
	})
	baselines := memory.NewBaselineRepository([]baseline.Baseline{{RiderID: "rider-a", Year: 2026, StartingPoints: 10}})

	seasons := memory.NewSeasonRepository()
	rec := &season.Record{RiderID: "rider-a", Year: 2026}
	rec.SetStage("paris-nice", "Paris-Nice", "stage-1", scoring.Breakdown{Stage: 25, Total: 25})
	if err := seasons.Upsert(context.Background(), rec); err != nil {
		t.Fatal(err)
	}

	svc := NewMarginalGainsService(games, participants, rosters, baselines, NewSeasonService(seasons, nil, nil), nil)
	if err := svc.Recalculate(context.Background(), 2026); err != nil {
		t.Fatalf("Recalculate: %v", err)
	}

	entry, _ := rosters.Get("team-1")
	if entry.PointsScored != 15 {
		t.Fatalf("gain = %d, want overwrite to 15", entry.PointsScored)
	}
}
