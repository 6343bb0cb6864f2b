package httpapi

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	sonic "github.com/bytedance/sonic"
	"github.com/wielerspel/peloton-api/internal/domain/game"
	"github.com/wielerspel/peloton-api/internal/domain/participant"
	"github.com/wielerspel/peloton-api/internal/domain/result"
	"github.com/wielerspel/peloton-api/internal/domain/roster"
	"github.com/wielerspel/peloton-api/internal/infrastructure/repository/memory"
	"github.com/wielerspel/peloton-api/internal/usecase"
)

func newTestHandler(t *testing.T, docs []result.Document) *Handler {
	t.Helper()

	games := memory.NewGameRepository([]game.Game{{
		ID:       "game-1",
		Name:     "Tour pool",
		Type:     game.TypeAuction,
		Status:   game.StatusActive,
		RaceType: game.RaceTypeRace,
		Config: game.Config{
			CountingRaces: []game.CountingRace{{Race: "tour-de-france"}},
			TotalStages:   21,
		},
	}})
	participants := memory.NewParticipantRepository([]participant.Participant{
		{ID: "part-1", GameID: "game-1", UserID: "user-1", Status: participant.StatusActive},
	})
	rosters := memory.NewRosterRepository([]roster.Entry{
		{ID: "team-1", GameID: "game-1", UserID: "user-1", RiderID: "rider-a", Status: roster.StatusActive},
	})
	seasons := memory.NewSeasonRepository()

	seasonSvc := usecase.NewSeasonService(seasons, nil, nil)
	marginalSvc := usecase.NewMarginalGainsService(
		games, participants, rosters,
		memory.NewBaselineRepository(nil), seasonSvc, nil,
	)
	calcSvc := usecase.NewCalculationService(usecase.CalculationServiceDeps{
		Results:      memory.NewResultRepository(docs),
		Games:        games,
		Participants: participants,
		Rosters:      rosters,
		Logs:         memory.NewCalcLogRepository(),
		Activities:   memory.NewActivityRepository(),
		Season:       seasonSvc,
		Marginal:     marginalSvc,
	})
	gameSvc := usecase.NewGameService(games, participants, rosters, nil)

	return NewHandler(calcSvc, gameSvc, seasonSvc, nil)
}

func stageDoc() result.Document {
	return result.Document{
		Key: "tour-de-france-2026-stage-5",
		StageResults: result.RiderList{
			{NameID: "rider-a", Place: 1, Points: 50},
		},
		GeneralClassification: result.RiderList{
			{NameID: "rider-a", Place: 1},
		},
		UpdatedAt: time.Now().Add(-time.Hour),
	}
}

func postTrigger(t *testing.T, h *Handler, body string) *httptest.ResponseRecorder {
	t.Helper()

	req := httptest.NewRequest(http.MethodPost, "/v1/internal/calculations/stage", strings.NewReader(body))
	rec := httptest.NewRecorder()
	h.TriggerStageCalculation(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()

	var body map[string]any
	if err := sonic.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("unmarshal response body: %v", err)
	}
	return body
}

func TestTriggerStageCalculation_MissingFields(t *testing.T) {
	h := newTestHandler(t, nil)

	for _, body := range []string{
		`{}`,
		`{"stage": 5, "year": 2026}`,
		`{"raceSlug": "tour-de-france_2026", "year": 2026}`,
		`{"raceSlug": "tour-de-france_2026", "stage": 5}`,
	} {
		rec := postTrigger(t, h, body)
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("body %s: expected status 400, got %d", body, rec.Code)
		}
	}
}

func TestTriggerStageCalculation_PrologueStageZeroIsValid(t *testing.T) {
	h := newTestHandler(t, nil)

	// Stage 0 means the prologue; it must not be treated as missing. The
	// document is absent so the request reaches the 404 path.
	rec := postTrigger(t, h, `{"raceSlug": "tour-de-france_2026", "stage": 0, "year": 2026}`)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected status 404, got %d: %s", rec.Code, rec.Body.String())
	}
}

func TestTriggerStageCalculation_DocumentNotFound(t *testing.T) {
	h := newTestHandler(t, nil)

	rec := postTrigger(t, h, `{"raceSlug": "tour-de-france_2026", "stage": 5, "year": 2026}`)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected status 404, got %d", rec.Code)
	}
	if _, ok := decodeBody(t, rec)["error"]; !ok {
		t.Fatalf("expected error key in 404 response")
	}
}

func TestTriggerStageCalculation_Success(t *testing.T) {
	h := newTestHandler(t, []result.Document{stageDoc()})

	rec := postTrigger(t, h, `{"raceSlug": "tour-de-france_2026", "stage": 5, "year": "2026"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", rec.Code, rec.Body.String())
	}

	body := decodeBody(t, rec)
	if success, _ := body["success"].(bool); !success {
		t.Fatalf("expected success=true, got %v", body)
	}
	results, ok := body["results"].(map[string]any)
	if !ok {
		t.Fatalf("expected results object, got %v", body)
	}
	if got, _ := results["gamesProcessed"].(float64); got != 1 {
		t.Fatalf("expected gamesProcessed=1, got %v", results["gamesProcessed"])
	}
	if got, _ := results["pointsAwarded"].(float64); got != 50 {
		t.Fatalf("expected pointsAwarded=50, got %v", results["pointsAwarded"])
	}
}

func TestTriggerStageCalculation_ValidationFailure(t *testing.T) {
	empty := result.Document{
		Key:       "tour-de-france-2026-stage-5",
		UpdatedAt: time.Now().Add(-time.Hour),
	}
	h := newTestHandler(t, []result.Document{empty})

	rec := postTrigger(t, h, `{"raceSlug": "tour-de-france_2026", "stage": 5, "year": 2026}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400, got %d: %s", rec.Code, rec.Body.String())
	}

	body := decodeBody(t, rec)
	errs, ok := body["validationErrors"].([]any)
	if !ok || len(errs) == 0 {
		t.Fatalf("expected non-empty validationErrors, got %v", body)
	}
	if _, ok := body["validationWarnings"]; !ok {
		t.Fatalf("expected validationWarnings key, got %v", body)
	}
}

func TestTriggerStageCalculation_CooldownSkip(t *testing.T) {
	fresh := stageDoc()
	fresh.UpdatedAt = time.Now()
	h := newTestHandler(t, []result.Document{fresh})

	rec := postTrigger(t, h, `{"raceSlug": "tour-de-france_2026", "stage": 5, "year": 2026}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", rec.Code, rec.Body.String())
	}

	body := decodeBody(t, rec)
	if skipped, _ := body["skipped"].(bool); !skipped {
		t.Fatalf("expected skipped=true, got %v", body)
	}
}
