// Package pdf streams the rendered invoice document.
package pdf

import (
	"context"
	"fmt"
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
	PDFPath(ctx context.Context, id, userID string, isAdmin bool) (string, error)
}

type Handler struct {
	log      *slog.Logger
	invoices Service
}

func New(log *slog.Logger, invoices Service) *Handler {
	return &Handler{log: log, invoices: invoices}
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.invoice.pdf"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	id := chi.URLParam(r, "id")
	userID, _ := middlewarectx.UserIDFromContext(r.Context())
	role, _ := middlewarectx.RoleFromContext(r.Context())

	path, err := h.invoices.PDFPath(r.Context(), id, userID, role == models.RoleAdmin)
	if err != nil {
		log.Warn("failed to render invoice pdf", sl.Err(err))
		status, resp := response.ServiceError(err)
		render.Status(r, status)
		render.JSON(w, r, resp)
		return
	}

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", fmt.Sprintf("inline; filename=%q", id+".pdf"))
	http.ServeFile(w, r, path)
}
