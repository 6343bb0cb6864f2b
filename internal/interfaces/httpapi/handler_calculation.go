package httpapi

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	sonic "github.com/bytedance/sonic"
	"github.com/wielerspel/peloton-api/internal/domain/result"
	"github.com/wielerspel/peloton-api/internal/usecase"
)

// triggerStageRequest is the scraper-facing trigger body. Stage and Year keep
// loose types because the caller sends numbers or strings interchangeably.
type triggerStageRequest struct {
	RaceSlug string `json:"raceSlug" validate:"required"`
	Stage    any    `json:"stage"`
	Year     any    `json:"year"`
}

// triggerResponse shapes mirror what the scraping system already consumes, so
// the trigger endpoint answers raw JSON instead of the envelope the public
// routes use.
type triggerSkippedResponse struct {
	Success    bool   `json:"success"`
	Skipped    bool   `json:"skipped"`
	Idempotent bool   `json:"idempotent,omitempty"`
	Message    string `json:"message"`
}

type triggerResultsResponse struct {
	Success bool                   `json:"success"`
	Message string                 `json:"message"`
	Results *usecase.FanOutResults `json:"results"`
}

type triggerErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

type triggerValidationResponse struct {
	Error              string   `json:"error"`
	ValidationErrors   []string `json:"validationErrors"`
	ValidationWarnings []string `json:"validationWarnings"`
}

func (h *Handler) TriggerStageCalculation(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.TriggerStageCalculation")
	defer span.End()

	var req triggerStageRequest
	if err := sonic.ConfigDefault.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(ctx, w, http.StatusBadRequest, triggerErrorResponse{Error: "invalid JSON body"})
		return
	}

	req.RaceSlug = strings.TrimSpace(req.RaceSlug)
	if err := h.validateRequest(ctx, req); err != nil {
		writeJSON(ctx, w, http.StatusBadRequest, triggerErrorResponse{Error: "raceSlug is required"})
		return
	}
	if req.Stage == nil {
		writeJSON(ctx, w, http.StatusBadRequest, triggerErrorResponse{Error: "stage is required"})
		return
	}
	if req.Year == nil {
		writeJSON(ctx, w, http.StatusBadRequest, triggerErrorResponse{Error: "year is required"})
		return
	}

	stage, err := result.ParseStage(req.Stage)
	if err != nil {
		writeJSON(ctx, w, http.StatusBadRequest, triggerErrorResponse{Error: fmt.Sprintf("invalid stage: %v", err)})
		return
	}
	year, err := parseYear(req.Year)
	if err != nil {
		writeJSON(ctx, w, http.StatusBadRequest, triggerErrorResponse{Error: fmt.Sprintf("invalid year: %v", err)})
		return
	}

	outcome, err := h.calculationService.ProcessStage(ctx, usecase.CalculationRequest{
		RaceSlug: req.RaceSlug,
		Stage:    stage,
		Year:     year,
		Actor:    "scraper",
	})
	if err != nil {
		switch {
		case errors.Is(err, usecase.ErrNotFound):
			writeJSON(ctx, w, http.StatusNotFound, triggerErrorResponse{Error: err.Error()})
		case errors.Is(err, usecase.ErrValidationFailed):
			resp := triggerValidationResponse{
				Error:              "result validation failed",
				ValidationErrors:   []string{},
				ValidationWarnings: []string{},
			}
			if outcome != nil && outcome.Validation != nil {
				resp.ValidationErrors = outcome.Validation.Errors
				resp.ValidationWarnings = outcome.Validation.Warnings
			}
			writeJSON(ctx, w, http.StatusBadRequest, resp)
		default:
			h.logger.ErrorContext(ctx, "stage calculation failed",
				"race_slug", req.RaceSlug, "stage", stage.String(), "year", year, "error", err)
			writeJSON(ctx, w, http.StatusInternalServerError, triggerErrorResponse{
				Error:   "points calculation failed",
				Details: err.Error(),
			})
		}
		return
	}

	if outcome.Skipped {
		writeJSON(ctx, w, http.StatusOK, triggerSkippedResponse{
			Success:    true,
			Skipped:    true,
			Idempotent: outcome.Idempotent,
			Message:    outcome.Message,
		})
		return
	}

	writeJSON(ctx, w, http.StatusOK, triggerResultsResponse{
		Success: true,
		Message: outcome.Message,
		Results: outcome.Results,
	})
}

func (h *Handler) ListCalculationLogs(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ListCalculationLogs")
	defer span.End()

	limit := 20
	if raw := strings.TrimSpace(r.URL.Query().Get("limit")); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 {
			writeError(ctx, w, fmt.Errorf("%w: limit must be a positive integer", usecase.ErrInvalidInput))
			return
		}
		limit = parsed
	}

	entries, err := h.calculationService.RecentLogs(ctx, limit)
	if err != nil {
		h.logger.ErrorContext(ctx, "list calculation logs failed", "error", err)
		writeError(ctx, w, err)
		return
	}

	items := make([]calcLogDTO, 0, len(entries))
	for _, entry := range entries {
		items = append(items, calcLogToDTO(entry))
	}

	writeSuccess(ctx, w, http.StatusOK, items)
}

func parseYear(raw any) (int, error) {
	switch v := raw.(type) {
	case float64:
		year := int(v)
		if float64(year) != v || year <= 0 {
			return 0, fmt.Errorf("year %v is not a positive integer", v)
		}
		return year, nil
	case int:
		if v <= 0 {
			return 0, fmt.Errorf("year %d is not positive", v)
		}
		return v, nil
	case string:
		trimmed := strings.TrimSpace(v)
		if trimmed == "" {
			return 0, fmt.Errorf("year is empty")
		}
		year, err := strconv.Atoi(trimmed)
		if err != nil || year <= 0 {
			return 0, fmt.Errorf("year %q is not a positive integer", v)
		}
		return year, nil
	default:
		return 0, fmt.Errorf("unsupported year type %T", raw)
	}
}
