// Package upgrade quotes and applies a plan change. Upgrades to a
// pricier plan credit the unused part of the current period; if
// anything is still owed the response asks the client to start an
// upgrade payment.
package upgrade

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
	const op = "handlers.subscription.upgrade"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	var req models.ChangePlanRequest
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
	quote, err := h.subscriptions.ChangePlan(r.Context(), chi.URLParam(r, "id"), userID, req)
	if err != nil {
		log.Warn("failed to change plan", sl.Err(err))
		status, resp := response.ServiceError(err)
		render.Status(r, status)
		render.JSON(w, r, resp)
		return
	}

	log.Info("quoted plan change",
		slog.String("subscription_id", quote.SubscriptionID),
		slog.String("new_plan", quote.NewPlanID),
		slog.Bool("requires_payment", quote.RequiresPayment))
	render.JSON(w, r, response.OKWithData(quote))
}
