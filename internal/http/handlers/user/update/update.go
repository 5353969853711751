// Package update is the admin user update. An admin cannot demote
// their own account.
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
)

const CodeCannotDemoteSelf = "CANNOT_DEMOTE_SELF"

type Service interface {
	Update(ctx context.Context, id string, req models.AdminUserRequest) (*models.User, error)
}

type Handler struct {
	log      *slog.Logger
	users    Service
	validate *validator.Validate
}

func New(log *slog.Logger, users Service) *Handler {
	return &Handler{log: log, users: users, validate: validator.New()}
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.user.update"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	id := chi.URLParam(r, "id")

	var req models.AdminUserRequest
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

	callerID, _ := middlewarectx.UserIDFromContext(r.Context())
	if id == callerID && req.Role == models.RoleUser {
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, response.Error(CodeCannotDemoteSelf, "cannot remove your own admin role"))
		return
	}

	user, err := h.users.Update(r.Context(), id, req)
	if err != nil {
		log.Error("failed to update user", sl.Err(err))
		status, resp := response.ServiceError(err)
		render.Status(r, status)
		render.JSON(w, r, resp)
		return
	}

	log.Info("updated user", slog.String("user_id", id))
	render.JSON(w, r, response.OKWithData(user))
}
