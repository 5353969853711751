// Package initpayment starts the Webpay transaction that activates a
// pending subscription.
package initpayment

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
	"github.com/vmcandles/commerce-api/internal/services"
)

type Service interface {
	InitSubscriptionPayment(ctx context.Context, userID, subscriptionID string) (*services.InitResponse, error)
}

type Handler struct {
	log      *slog.Logger
	payments Service
}

func New(log *slog.Logger, payments Service) *Handler {
	return &Handler{log: log, payments: payments}
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.subscription.initpayment"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	userID, _ := middlewarectx.UserIDFromContext(r.Context())
	id := chi.URLParam(r, "id")

	init, err := h.payments.InitSubscriptionPayment(r.Context(), userID, id)
	if err != nil {
		log.Error("failed to init subscription payment", sl.Err(err))
		status, resp := response.ServiceError(err)
		render.Status(r, status)
		render.JSON(w, r, resp)
		return
	}

	log.Info("initialized subscription payment", slog.String("subscription_id", id))
	render.JSON(w, r, response.OKWithData(init))
}
