// Package update toggles auto renewal or schedules a plan change on
// the caller's subscription.
package update

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator"

	"github.com/vmcandles/commerce-api/internal/http/middlewarectx"
	"github.com/vmcandles/commerce-api/internal/http/response"
	"github.com/vmcandles/commerce-api/internal/lib/sl"
	"github.com/vmcandles/commerce-api/internal/models"
	"github.com/vmcandles/commerce-api/internal/services"
)

type Service interface {
	SetAutoRenew(ctx context.Context, id, userID string, autoRenew bool) (*models.Subscription, error)
	ChangePlan(ctx context.Context, id, userID string, req models.ChangePlanRequest) (*services.UpgradeQuote, error)
}

type Handler struct {
	log           *slog.Logger
	subscriptions Service
	validate      *validator.Validate
}

func New(log *slog.Logger, subscriptions Service) *Handler {
	return &Handler{log: log, subscriptions: subscriptions, validate: validator.New()}
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.subscription.update"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	var req models.UpdateSubscriptionRequest
	if err := render.DecodeJSON(r.Body, &req); err != nil {
		log.Error("failed to decode request body", sl.Err(err))
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, response.Error(response.CodeInvalidInput, "invalid request body"))
		return
	}
	if err := h.validate.Struct(req); err != nil {
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, response.ValidationError(err.(validator.ValidationErrors)))
		return
	}
	if req.AutoRenew == nil && req.PlanID == nil {
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, response.Error(response.CodeInvalidInput, "nothing to update"))
		return
	}

	id := chi.URLParam(r, "id")
	userID, _ := middlewarectx.UserIDFromContext(r.Context())

	if req.PlanID != nil {
		quote, err := h.subscriptions.ChangePlan(r.Context(), id, userID,
			models.ChangePlanRequest{NewPlanID: *req.PlanID})
		if err != nil {
			log.Warn("failed to change plan", sl.Err(err))
			status, resp := response.ServiceError(err)
			render.Status(r, status)
			render.JSON(w, r, resp)
			return
		}
		render.JSON(w, r, response.OKWithData(quote))
		return
	}

	sub, err := h.subscriptions.SetAutoRenew(r.Context(), id, userID, *req.AutoRenew)
	if err != nil {
		log.Warn("failed to toggle auto renew", sl.Err(err))
		status, resp := response.ServiceError(err)
		render.Status(r, status)
		render.JSON(w, r, resp)
		return
	}

	render.JSON(w, r, response.OKWithData(sub))
}
