// Package dashboard serves the admin sales overview.
package dashboard

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/vmcandles/commerce-api/internal/http/response"
	"github.com/vmcandles/commerce-api/internal/lib/sl"
	"github.com/vmcandles/commerce-api/internal/models"
)

type Service interface {
	Dashboard(ctx context.Context, days int) (*models.Dashboard, error)
}

type Handler struct {
	log       *slog.Logger
	analytics Service
}

func New(log *slog.Logger, analytics Service) *Handler {
	return &Handler{log: log, analytics: analytics}
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.analytics.dashboard"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	days := 30
	if raw := r.URL.Query().Get("days"); raw != "" {
		if v, err := strconv.Atoi(raw); err == nil && v > 0 {
			days = v
		}
	}

	dash, err := h.analytics.Dashboard(r.Context(), days)
	if err != nil {
		log.Error("failed to build dashboard", sl.Err(err))
		status, resp := response.ServiceError(err)
		render.Status(r, status)
		render.JSON(w, r, resp)
		return
	}

	render.JSON(w, r, response.OKWithData(dash))
}
