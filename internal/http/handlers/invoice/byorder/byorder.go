// Package byorder looks up the invoice issued for an order.
package byorder

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
	GetByOrder(ctx context.Context, orderID, userID string, isAdmin bool) (*models.Invoice, error)
}

type Handler struct {
	log      *slog.Logger
	invoices Service
}

func New(log *slog.Logger, invoices Service) *Handler {
	return &Handler{log: log, invoices: invoices}
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.invoice.byorder"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	userID, _ := middlewarectx.UserIDFromContext(r.Context())
	role, _ := middlewarectx.RoleFromContext(r.Context())

	inv, err := h.invoices.GetByOrder(r.Context(), chi.URLParam(r, "orderId"), userID, role == models.RoleAdmin)
	if err != nil {
		log.Warn("failed to get invoice by order", sl.Err(err))
		status, resp := response.ServiceError(err)
		render.Status(r, status)
		render.JSON(w, r, resp)
		return
	}

	render.JSON(w, r, response.OKWithData(inv))
}
