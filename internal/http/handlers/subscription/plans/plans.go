// Package plans lists the fixed membership tiers.
package plans

import (
	"net/http"

	"github.com/go-chi/render"

	"github.com/vmcandles/commerce-api/internal/http/response"
	libplans "github.com/vmcandles/commerce-api/internal/lib/plans"
)

type Service interface {
	Plans() []libplans.Plan
}

type Handler struct {
	subscriptions Service
}

func New(subscriptions Service) *Handler {
	return &Handler{subscriptions: subscriptions}
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	render.JSON(w, r, response.OKWithData(h.subscriptions.Plans()))
}
