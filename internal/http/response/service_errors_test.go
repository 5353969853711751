package response

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/vmcandles/commerce-api/internal/services"
)

func TestServiceError(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   string
	}{
		{"product not found beats generic not found", services.ErrProductNotFound, http.StatusNotFound, CodeProductNotFound},
		{"duplicate product", services.ErrProductExists, http.StatusConflict, CodeProductExists},
		{"duplicate review", services.ErrReviewExists, http.StatusConflict, CodeReviewExists},
		{"duplicate wishlist item", services.ErrAlreadyInWishlist, http.StatusConflict, CodeAlreadyInWishlist},
		{"generic not found", services.ErrNotFound, http.StatusNotFound, CodeNotFound},
		{"generic duplicate", services.ErrAlreadyExists, http.StatusConflict, CodeAlreadyExists},
		{"wrapped sentinel still matches", fmt.Errorf("create: %w", services.ErrReviewExists), http.StatusConflict, CodeReviewExists},
		{"unknown error is a 500", errors.New("boom"), http.StatusInternalServerError, CodeServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, resp := ServiceError(tt.err)
			assert.Equal(t, tt.wantStatus, status)
			assert.False(t, resp.Success)
			assert.Equal(t, tt.wantCode, resp.Error.Code)
		})
	}
}
