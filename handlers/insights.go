package handlers

import (
	"net/http"

	"github.com/camden-git/seeds/services"
	"go.uber.org/zap"
)

type InsightsHandler struct {
	Insights *services.InsightsService
	Logger   *zap.Logger
}

func (ih *InsightsHandler) Pings(w http.ResponseWriter, r *http.Request) {
	pings, err := ih.Insights.Pings(r.Context(), ownerID(r), queryInt(r, "n", services.DefaultPingCount))
	if err != nil {
		writeServiceError(w, ih.Logger, err)
		return
	}
	if pings == nil {
		pings = []services.Ping{}
	}
	writeJSON(w, http.StatusOK, pings)
}

func (ih *InsightsHandler) Orbit(w http.ResponseWriter, r *http.Request) {
	orbit, err := ih.Insights.Orbit(r.Context(), ownerID(r))
	if err != nil {
		writeServiceError(w, ih.Logger, err)
		return
	}
	writeJSON(w, http.StatusOK, orbit)
}

// Trend serves ?period=week (the default) or ?period=month.
func (ih *InsightsHandler) Trend(w http.ResponseWriter, r *http.Request) {
	period := r.URL.Query().Get("period")
	if period == "" {
		period = "week"
	}
	series, err := ih.Insights.Trend(r.Context(), ownerID(r), period)
	if err != nil {
		writeServiceError(w, ih.Logger, err)
		return
	}
	writeJSON(w, http.StatusOK, series)
}

func (ih *InsightsHandler) Dashboard(w http.ResponseWriter, r *http.Request) {
	dash, err := ih.Insights.Dashboard(r.Context(), ownerID(r))
	if err != nil {
		writeServiceError(w, ih.Logger, err)
		return
	}
	writeJSON(w, http.StatusOK, dash)
}
