package apperr

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStatusByKind(t *testing.T) {
	assert.Equal(t, http.StatusBadRequest, RequiredFields("name").Status())
	assert.Equal(t, http.StatusBadRequest, AlreadyExists("Material type", "material_type", "Gold").Status())
	assert.Equal(t, http.StatusBadRequest, InvalidReference("country_id", 9).Status())
	assert.Equal(t, http.StatusBadRequest, InvalidInput("bad id").Status())
	assert.Equal(t, http.StatusNotFound, NotFound("Vendor").Status())
	assert.Equal(t, http.StatusNotFound, Deleted("Vendor").Status())
	assert.Equal(t, http.StatusUnauthorized, Unauthorized("no").Status())
	assert.Equal(t, http.StatusInternalServerError, Internal(errors.New("boom")).Status())
}

func TestMessages(t *testing.T) {
	assert.Equal(t, "Required fields missing: name, mobile", RequiredFields("name", "mobile").Message)
	assert.Equal(t, "Material type with material_type 'Gold' already exists",
		AlreadyExists("Material type", "material_type", "Gold").Message)
	assert.Equal(t, "Vendor has been deleted", Deleted("Vendor").Message)
}

func TestAsWrapsUnknownErrors(t *testing.T) {
	cause := errors.New("connection refused")
	appErr := As(fmt.Errorf("query: %w", cause))
	assert.Equal(t, KindInternal, appErr.Kind)
	assert.ErrorIs(t, appErr, cause)

	nf := NotFound("Country")
	assert.Same(t, nf, As(fmt.Errorf("wrapped: %w", nf)))
	assert.True(t, Is(fmt.Errorf("wrapped: %w", nf), KindNotFound))
	assert.False(t, Is(cause, KindNotFound))
}
