package validation_test

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domainerrors "github.com/bookshelfapp/bookshelf-server/internal/errors"
	"github.com/bookshelfapp/bookshelf-server/internal/validation"
)

type registerRequest struct {
	Name     string `json:"name" validate:"notblank"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
	Rating   int    `json:"rating" validate:"gte=0,lte=5"`
}

func TestValidator_Valid(t *testing.T) {
	v := validation.New()
	err := v.Validate(registerRequest{Name: "Ann", Email: "ann@example.com", Password: "secret", Rating: 3})
	assert.NoError(t, err)
}

func TestValidator_Errors(t *testing.T) {
	v := validation.New()

	tests := []struct {
		name      string
		req       registerRequest
		wantField string
		wantMsg   string
	}{
		{
			name:      "blank name",
			req:       registerRequest{Name: "   ", Email: "a@b.co", Password: "secret"},
			wantField: "name",
			wantMsg:   "name is required",
		},
		{
			name:      "invalid email",
			req:       registerRequest{Name: "Ann", Email: "nope", Password: "secret"},
			wantField: "email",
			wantMsg:   "email must be a valid email address",
		},
		{
			name:      "short password",
			req:       registerRequest{Name: "Ann", Email: "a@b.co", Password: "abc"},
			wantField: "password",
			wantMsg:   "password must be at least 6 characters",
		},
		{
			name:      "rating out of range",
			req:       registerRequest{Name: "Ann", Email: "a@b.co", Password: "secret", Rating: 9},
			wantField: "rating",
			wantMsg:   "rating must be less than or equal to 5",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := v.Validate(tt.req)
			require.Error(t, err)

			var domainErr *domainerrors.Error
			require.ErrorAs(t, err, &domainErr)
			assert.Equal(t, http.StatusBadRequest, domainErr.HTTPStatus())
			assert.Equal(t, tt.wantMsg, domainErr.Message)

			details, ok := domainErr.Details.(map[string]string)
			require.True(t, ok)
			assert.Contains(t, details, tt.wantField)
		})
	}
}

func TestValidator_Var(t *testing.T) {
	v := validation.New()

	assert.NoError(t, v.Var("target", 24, "gte=1,lte=365"))

	err := v.Var("target", 500, "gte=1,lte=365")
	require.Error(t, err)
	assert.True(t, domainerrors.Is(err, domainerrors.ErrValidation))
	assert.Equal(t, "target must be less than or equal to 365", err.Error())
}
