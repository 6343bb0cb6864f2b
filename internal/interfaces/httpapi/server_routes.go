package httpapi

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func registerSystemRoutes(mux *http.ServeMux, handler *Handler, metricsEnabled bool) {
	mux.HandleFunc("GET /healthz", handler.Healthz)
	if metricsEnabled {
		mux.Handle("GET /metrics", promhttp.Handler())
	}
}

func registerPublicDomainRoutes(mux *http.ServeMux, handler *Handler) {
	mux.HandleFunc("GET /v1/games", handler.ListGames)
	mux.HandleFunc("GET /v1/games/{gameID}/standings", handler.GetGameStandings)
	mux.HandleFunc("GET /v1/games/{gameID}/teams/{userID}", handler.GetTeam)
	mux.HandleFunc("GET /v1/season/{year}/riders", handler.ListTopSeasonRiders)
	mux.HandleFunc("GET /v1/season/{year}/riders/{riderID}", handler.GetRiderSeasonPoints)
}

func registerInternalJobRoutes(mux *http.ServeMux, handler *Handler, internalJobToken string) {
	mux.Handle("POST /v1/internal/calculations/stage", RequireInternalJobToken(internalJobToken, http.HandlerFunc(handler.TriggerStageCalculation)))
	mux.Handle("GET /v1/internal/calculations/logs", RequireInternalJobToken(internalJobToken, http.HandlerFunc(handler.ListCalculationLogs)))
}
