package httpapi

import (
	"net/http"
	"time"

	"github.com/wielerspel/peloton-api/internal/domain/calclog"
	"github.com/wielerspel/peloton-api/internal/domain/game"
	"github.com/wielerspel/peloton-api/internal/domain/participant"
	"github.com/wielerspel/peloton-api/internal/domain/roster"
)

type gameDTO struct {
	ID         string      `json:"id"`
	Name       string      `json:"name"`
	Type       string      `json:"type"`
	Status     string      `json:"status"`
	RaceType   string      `json:"raceType"`
	SeasonYear int         `json:"seasonYear"`
	Config     game.Config `json:"config"`
}

type standingDTO struct {
	ParticipantID string `json:"participantId"`
	UserID        string `json:"userId"`
	TotalPoints   int    `json:"totalPoints"`
	Placing       int    `json:"placing"`
}

type standingsDTO struct {
	Game      gameDTO       `json:"game"`
	Standings []standingDTO `json:"standings"`
}

type rosterEntryDTO struct {
	RiderID            string            `json:"riderId"`
	Status             string            `json:"status"`
	PointsScored       int               `json:"pointsScored"`
	StagesParticipated int               `json:"stagesParticipated"`
	RacePoints         roster.RacePoints `json:"racePoints"`
}

type calcLogDTO struct {
	ID                 string   `json:"id"`
	RaceName           string   `json:"raceName"`
	Stage              string   `json:"stage"`
	Year               int      `json:"year"`
	InputHash          string   `json:"inputHash"`
	Status             string   `json:"status"`
	GamesAffected      []string `json:"gamesAffected"`
	TotalPointsAwarded int      `json:"totalPointsAwarded"`
	Errors             []string `json:"errors,omitempty"`
	DurationMs         int64    `json:"durationMs"`
	CreatedAt          string   `json:"createdAt"`
}

func gameToDTO(g game.Game) gameDTO {
	return gameDTO{
		ID:         g.ID,
		Name:       g.Name,
		Type:       string(g.Type),
		Status:     string(g.Status),
		RaceType:   string(g.RaceType),
		SeasonYear: g.SeasonYear,
		Config:     g.Config,
	}
}

func participantToStandingDTO(p participant.Participant) standingDTO {
	return standingDTO{
		ParticipantID: p.ID,
		UserID:        p.UserID,
		TotalPoints:   p.TotalPoints,
		Placing:       p.Placing,
	}
}

func calcLogToDTO(entry calclog.Entry) calcLogDTO {
	return calcLogDTO{
		ID:                 entry.ID,
		RaceName:           entry.RaceName,
		Stage:              entry.Stage,
		Year:               entry.Year,
		InputHash:          entry.InputHash,
		Status:             string(entry.Status),
		GamesAffected:      entry.GamesAffected,
		TotalPointsAwarded: entry.TotalPointsAwarded,
		Errors:             entry.Errors,
		DurationMs:         entry.Duration.Milliseconds(),
		CreatedAt:          entry.CreatedAt.UTC().Format(time.RFC3339),
	}
}

func (h *Handler) ListGames(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ListGames")
	defer span.End()

	games, err := h.gameService.List(ctx)
	if err != nil {
		h.logger.ErrorContext(ctx, "list games failed", "error", err)
		writeError(ctx, w, err)
		return
	}

	statusFilter := r.URL.Query().Get("status")
	typeFilter := r.URL.Query().Get("type")

	items := make([]gameDTO, 0, len(games))
	for _, g := range games {
		if statusFilter != "" && string(g.Status) != statusFilter {
			continue
		}
		if typeFilter != "" && string(g.Type) != typeFilter {
			continue
		}
		items = append(items, gameToDTO(g))
	}

	writeSuccess(ctx, w, http.StatusOK, items)
}

func (h *Handler) GetGameStandings(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetGameStandings")
	defer span.End()

	gameID := r.PathValue("gameID")
	g, participants, err := h.gameService.Standings(ctx, gameID)
	if err != nil {
		h.logger.WarnContext(ctx, "get standings failed", "game_id", gameID, "error", err)
		writeError(ctx, w, err)
		return
	}

	standings := make([]standingDTO, 0, len(participants))
	for _, p := range participants {
		standings = append(standings, participantToStandingDTO(p))
	}

	writeSuccess(ctx, w, http.StatusOK, standingsDTO{
		Game:      gameToDTO(*g),
		Standings: standings,
	})
}

func (h *Handler) GetTeam(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetTeam")
	defer span.End()

	gameID := r.PathValue("gameID")
	userID := r.PathValue("userID")
	entries, err := h.gameService.Team(ctx, gameID, userID)
	if err != nil {
		h.logger.WarnContext(ctx, "get team failed", "game_id", gameID, "user_id", userID, "error", err)
		writeError(ctx, w, err)
		return
	}

	items := make([]rosterEntryDTO, 0, len(entries))
	for _, entry := range entries {
		items = append(items, rosterEntryDTO{
			RiderID:            entry.RiderID,
			Status:             string(entry.Status),
			PointsScored:       entry.PointsScored,
			StagesParticipated: entry.StagesParticipated,
			RacePoints:         entry.RacePoints,
		})
	}

	writeSuccess(ctx, w, http.StatusOK, items)
}
