package serverutils

import (
	"strings"

	"healthbridge-be/internal/apperror"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// JwtMiddleware validates the Bearer token and stores the subject as
// "user_id" (uuid.UUID) in fiber locals.
func JwtMiddleware(secret string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		authHeader := c.Get("Authorization")
		if authHeader == "" {
			return apperror.Authentication("missing authorization header", nil)
		}

		tokenString := strings.TrimPrefix(authHeader, "Bearer ")
		if tokenString == authHeader {
			return apperror.Authentication("invalid authorization header format", nil)
		}

		userID, err := ParseUserID(tokenString, secret)
		if err != nil {
			return err
		}

		c.Locals("user_id", userID)
		return c.Next()
	}
}

// ParseUserID verifies an HS256 token and returns the subject claim as a
// UUID. The websocket relay calls this directly because its token arrives
// as a query parameter, not a header.
func ParseUserID(tokenString, secret string) (uuid.UUID, error) {
	token, err := jwt.Parse(tokenString, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, apperror.Authentication("unexpected signing method", nil)
		}
		return []byte(secret), nil
	})
	if err != nil || !token.Valid {
		return uuid.Nil, apperror.Authentication("invalid or expired token", err)
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return uuid.Nil, apperror.Authentication("invalid token claims", nil)
	}

	sub, err := claims.GetSubject()
	if err != nil || sub == "" {
		return uuid.Nil, apperror.Authentication("token has no subject", err)
	}

	userID, err := uuid.Parse(sub)
	if err != nil {
		return uuid.Nil, apperror.Authentication("token subject is not a valid id", err)
	}

	return userID, nil
}
