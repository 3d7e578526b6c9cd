package serverutils

import (
	"strings"

	"viralizaai-be/internal/entity"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const principalKey = "principal"

// ParseToken validates an HS256 token and extracts the caller.
func ParseToken(tokenStr, secret string) (entity.Principal, error) {
	token, err := jwt.Parse(tokenStr, func(t *jwt.Token) (interface{}, error) {
		return []byte(secret), nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil || !token.Valid {
		return entity.Principal{}, fiber.NewError(fiber.StatusUnauthorized, "Invalid token")
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return entity.Principal{}, fiber.NewError(fiber.StatusUnauthorized, "Invalid claims")
	}

	userIdStr, _ := claims["user_id"].(string)
	userId, err := uuid.Parse(userIdStr)
	if err != nil {
		return entity.Principal{}, fiber.NewError(fiber.StatusUnauthorized, "Invalid claims")
	}

	role := entity.UserRoleUser
	if r, _ := claims["role"].(string); r == string(entity.UserRoleAdmin) {
		role = entity.UserRoleAdmin
	}
	return entity.Principal{UserId: userId, Role: role}, nil
}

// JwtMiddleware requires a bearer token and stores the principal in Locals.
func JwtMiddleware(secret string) fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		authHeader := ctx.Get("Authorization")
		if !strings.HasPrefix(authHeader, "Bearer ") {
			return ctx.Status(fiber.StatusUnauthorized).JSON(ErrorResponse(fiber.StatusUnauthorized, "Missing token"))
		}

		principal, err := ParseToken(authHeader[len("Bearer "):], secret)
		if err != nil {
			return ctx.Status(fiber.StatusUnauthorized).JSON(ErrorResponse(fiber.StatusUnauthorized, err.Error()))
		}

		ctx.Locals(principalKey, principal)
		ctx.Locals("user_id", principal.UserId.String())
		return ctx.Next()
	}
}

// RequireAdmin must run after JwtMiddleware.
func RequireAdmin(ctx *fiber.Ctx) error {
	principal, ok := PrincipalFrom(ctx)
	if !ok || !principal.IsAdmin() {
		return ctx.Status(fiber.StatusForbidden).JSON(ErrorResponse(fiber.StatusForbidden, "Admin access required"))
	}
	return ctx.Next()
}

func PrincipalFrom(ctx *fiber.Ctx) (entity.Principal, bool) {
	principal, ok := ctx.Locals(principalKey).(entity.Principal)
	return principal, ok
}
