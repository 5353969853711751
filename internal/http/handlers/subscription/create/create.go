// Package create opens a pending subscription on one of the fixed
// plans. It activates only after the gateway confirms payment.
package create

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator"

	"github.com/vmcandles/commerce-api/internal/http/middlewarectx"
	"github.com/vmcandles/commerce-api/internal/http/response"
	"github.com/vmcandles/commerce-api/internal/lib/sl"
	"github.com/vmcandles/commerce-api/internal/models"
)

type Service interface {
	Create(ctx context.Context, userID string, req models.CreateSubscriptionRequest) (*models.Subscription, error)
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
	const op = "handlers.subscription.create"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	var req models.CreateSubscriptionRequest
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

	userID, _ := middlewarectx.UserIDFromContext(r.Context())
	sub, err := h.subscriptions.Create(r.Context(), userID, req)
	if err != nil {
		log.Warn("failed to create subscription", sl.Err(err))
		status, resp := response.ServiceError(err)
		render.Status(r, status)
		render.JSON(w, r, resp)
		return
	}

	log.Info("created pending subscription",
		slog.String("subscription_id", sub.ID), slog.String("plan", sub.PlanID))
	render.Status(r, http.StatusCreated)
	render.JSON(w, r, response.OKWithData(sub))
}
