// Package logout acknowledges logout. Tokens are stateless, so the
// client simply discards its copy.
package logout

import (
	"net/http"

	"github.com/go-chi/render"

	"github.com/vmcandles/commerce-api/internal/http/response"
)

type Handler struct{}

func New() *Handler {
	return &Handler{}
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	render.JSON(w, r, response.OKWithData(map[string]string{
		"message": "logged out",
	}))
}
