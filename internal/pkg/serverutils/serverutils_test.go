package serverutils

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"viralizaai-be/internal/entity"
	"viralizaai-be/pkg/pix"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret"

func signToken(t *testing.T, claims jwt.MapClaims) string {
	t.Helper()
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testSecret))
	require.NoError(t, err)
	return token
}

func TestStatusFor(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"not found", &entity.NotFoundError{Resource: "payment", Id: "x"}, 404},
		{"wrapped not found", fmt.Errorf("load: %w", &entity.NotFoundError{}), 404},
		{"invalid transition", &entity.InvalidTransitionError{From: entity.PaymentStatusCompleted, To: entity.PaymentStatusFailed}, 409},
		{"validation", &entity.ValidationError{Field: "amount", Message: "bad"}, 400},
		{"encoding", &pix.EncodingError{Tag: "59", Reason: "empty"}, 400},
		{"fiber", fiber.NewError(fiber.StatusUnauthorized, "no"), 401},
		{"other", errors.New("db down"), 500},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, StatusFor(tt.err))
		})
	}
}

func TestValidateRequest(t *testing.T) {
	type req struct {
		ItemName string `validate:"required"`
		Method   string `validate:"required,oneof=card pix"`
	}

	assert.NoError(t, ValidateRequest(req{ItemName: "x", Method: "pix"}))

	err := ValidateRequest(req{Method: "pix"})
	var verr *entity.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "item_name", verr.Field)

	err = ValidateRequest(req{ItemName: "x", Method: "boleto"})
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "method", verr.Field)
}

func TestJwtMiddleware(t *testing.T) {
	app := fiber.New()
	app.Use(ErrorHandlerMiddleware())
	app.Get("/me", JwtMiddleware(testSecret), func(c *fiber.Ctx) error {
		p, _ := PrincipalFrom(c)
		return c.JSON(fiber.Map{"id": p.UserId.String(), "admin": p.IsAdmin()})
	})
	app.Get("/admin", JwtMiddleware(testSecret), RequireAdmin, func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusNoContent)
	})

	userId := uuid.New()
	userToken := signToken(t, jwt.MapClaims{"user_id": userId.String(), "role": "user", "exp": time.Now().Add(time.Hour).Unix()})
	adminToken := signToken(t, jwt.MapClaims{"user_id": uuid.NewString(), "role": "admin", "exp": time.Now().Add(time.Hour).Unix()})
	expired := signToken(t, jwt.MapClaims{"user_id": userId.String(), "exp": time.Now().Add(-time.Hour).Unix()})

	tests := []struct {
		name  string
		path  string
		token string
		want  int
	}{
		{"missing token", "/me", "", http.StatusUnauthorized},
		{"valid user", "/me", userToken, http.StatusOK},
		{"expired", "/me", expired, http.StatusUnauthorized},
		{"user on admin route", "/admin", userToken, http.StatusForbidden},
		{"admin on admin route", "/admin", adminToken, http.StatusNoContent},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, tt.path, nil)
			if tt.token != "" {
				req.Header.Set("Authorization", "Bearer "+tt.token)
			}
			resp, err := app.Test(req)
			require.NoError(t, err)
			assert.Equal(t, tt.want, resp.StatusCode)
		})
	}
}

func TestErrorHandlerMiddleware_HidesInternalErrors(t *testing.T) {
	app := fiber.New()
	app.Use(ErrorHandlerMiddleware())
	app.Get("/boom", func(c *fiber.Ctx) error { return errors.New("secret dsn leaked") })

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/boom", nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
}
