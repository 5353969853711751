// Package cancel stops a subscription. Access runs until the paid
// period ends.
package cancel

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/vmcandles/commerce-api/internal/http/middlewarectx"
	"github.com/vmcandles/commerce-api/internal/http/response"
	"github.com/vmcandles/commerce-api/internal/lib/sl"
	"github.com/vmcandles/commerce-api/internal/models"
)

type Service interface {
	Cancel(ctx context.Context, id, userID string) (*models.Subscription, error)
}

type Handler struct {
	log           *slog.Logger
	subscriptions Service
}

func New(log *slog.Logger, subscriptions Service) *Handler {
	return &Handler{log: log, subscriptions: subscriptions}
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.subscription.cancel"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	userID, _ := middlewarectx.UserIDFromContext(r.Context())
	sub, err := h.subscriptions.Cancel(r.Context(), chi.URLParam(r, "id"), userID)
	if err != nil {
		log.Warn("failed to cancel subscription", sl.Err(err))
		status, resp := response.ServiceError(err)
		render.Status(r, status)
		render.JSON(w, r, resp)
		return
	}

	log.Info("cancelled subscription", slog.String("subscription_id", sub.ID))
	render.JSON(w, r, response.OKWithData(sub))
}
