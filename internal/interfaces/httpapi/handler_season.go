package httpapi

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/wielerspel/peloton-api/internal/domain/season"
	"github.com/wielerspel/peloton-api/internal/usecase"
)

type seasonRecordDTO struct {
	RiderID     string                          `json:"riderId"`
	Year        int                             `json:"year"`
	TotalPoints int                             `json:"totalPoints"`
	Races       map[string]season.RaceBreakdown `json:"races,omitempty"`
}

func seasonRecordToDTO(rec season.Record, includeRaces bool) seasonRecordDTO {
	dto := seasonRecordDTO{
		RiderID:     rec.RiderID,
		Year:        rec.Year,
		TotalPoints: rec.TotalPoints,
	}
	if includeRaces {
		dto.Races = rec.Races
	}
	return dto
}

func (h *Handler) GetRiderSeasonPoints(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetRiderSeasonPoints")
	defer span.End()

	year, err := parsePathYear(r.PathValue("year"))
	if err != nil {
		writeError(ctx, w, err)
		return
	}
	riderID := r.PathValue("riderID")

	record, err := h.seasonService.RiderPoints(ctx, riderID, year)
	if err != nil {
		h.logger.WarnContext(ctx, "get rider season points failed", "rider_id", riderID, "year", year, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, seasonRecordToDTO(*record, true))
}

func (h *Handler) ListTopSeasonRiders(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ListTopSeasonRiders")
	defer span.End()

	year, err := parsePathYear(r.PathValue("year"))
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	limit := 0
	if raw := strings.TrimSpace(r.URL.Query().Get("limit")); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 {
			writeError(ctx, w, fmt.Errorf("%w: limit must be a positive integer", usecase.ErrInvalidInput))
			return
		}
		limit = parsed
	}

	records, err := h.seasonService.TopRiders(ctx, year, limit)
	if err != nil {
		h.logger.ErrorContext(ctx, "list top season riders failed", "year", year, "error", err)
		writeError(ctx, w, err)
		return
	}

	items := make([]seasonRecordDTO, 0, len(records))
	for _, rec := range records {
		items = append(items, seasonRecordToDTO(rec, false))
	}

	writeSuccess(ctx, w, http.StatusOK, items)
}

func parsePathYear(raw string) (int, error) {
	year, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil || year <= 0 {
		return 0, fmt.Errorf("%w: year %q is not a positive integer", usecase.ErrInvalidInput, raw)
	}
	return year, nil
}
