package httpapi

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestListGames_StatusFilter(t *testing.T) {
	h := newTestHandler(t, nil)

	cases := []struct {
		name  string
		query string
		want  int
	}{
		{name: "unfiltered", query: "", want: 1},
		{name: "matching status", query: "?status=active", want: 1},
		{name: "non-matching status", query: "?status=finished", want: 0},
		{name: "matching type", query: "?type=auction", want: 1},
		{name: "non-matching type", query: "?type=classics", want: 0},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/v1/games"+tc.query, nil)
			rec := httptest.NewRecorder()
			h.ListGames(rec, req)

			if rec.Code != http.StatusOK {
				t.Fatalf("expected status 200, got %d: %s", rec.Code, rec.Body.String())
			}
			body := decodeBody(t, rec)
			data, ok := body["data"].([]any)
			if !ok {
				t.Fatalf("expected data array, got %T", body["data"])
			}
			if len(data) != tc.want {
				t.Fatalf("expected %d games, got %d", tc.want, len(data))
			}
		})
	}
}

func TestGetGameStandings(t *testing.T) {
	h := newTestHandler(t, nil)

	req := httptest.NewRequest(http.MethodGet, "/v1/games/game-1/standings", nil)
	req.SetPathValue("gameID", "game-1")
	rec := httptest.NewRecorder()
	h.GetGameStandings(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", rec.Code, rec.Body.String())
	}
	body := decodeBody(t, rec)
	data, ok := body["data"].(map[string]any)
	if !ok {
		t.Fatalf("expected data object, got %T", body["data"])
	}
	g, ok := data["game"].(map[string]any)
	if !ok || g["id"] != "game-1" {
		t.Fatalf("expected game game-1 in response, got %v", data["game"])
	}
	standings, ok := data["standings"].([]any)
	if !ok || len(standings) != 1 {
		t.Fatalf("expected one standing entry, got %v", data["standings"])
	}
}

func TestGetGameStandings_UnknownGame(t *testing.T) {
	h := newTestHandler(t, nil)

	req := httptest.NewRequest(http.MethodGet, "/v1/games/nope/standings", nil)
	req.SetPathValue("gameID", "nope")
	rec := httptest.NewRecorder()
	h.GetGameStandings(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected status 404, got %d: %s", rec.Code, rec.Body.String())
	}
}
