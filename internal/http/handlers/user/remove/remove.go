// Package remove deletes a user account. An admin cannot delete
// themselves.
package remove

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
)

const CodeCannotDeleteSelf = "CANNOT_DELETE_SELF"

type Service interface {
	Delete(ctx context.Context, id string) error
}

type Handler struct {
	log   *slog.Logger
	users Service
}

func New(log *slog.Logger, users Service) *Handler {
	return &Handler{log: log, users: users}
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.user.remove"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	id := chi.URLParam(r, "id")
	callerID, _ := middlewarectx.UserIDFromContext(r.Context())
	if id == callerID {
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, response.Error(CodeCannotDeleteSelf, "cannot delete your own account"))
		return
	}

	if err := h.users.Delete(r.Context(), id); err != nil {
		log.Error("failed to delete user", sl.Err(err))
		status, resp := response.ServiceError(err)
		render.Status(r, status)
		render.JSON(w, r, resp)
		return
	}

	log.Info("deleted user", slog.String("user_id", id))
	render.JSON(w, r, response.OK())
}
