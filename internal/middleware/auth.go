package middleware

import (
	"strings"

	"forum/internal/auth"

	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
)

// AuthRequired validates the bearer token and stores the caller in locals
// as "userID" and "username". Tokens whose jti is on the Redis blacklist are
// rejected; a nil or unreachable Redis skips that check.
func AuthRequired(secret string, rdb *redis.Client) fiber.Handler {
	return func(c *fiber.Ctx) error {
		tokenString, ok := bearerToken(c.Get("Authorization"))
		if !ok {
			return unauthorized(c, "Authorization header required")
		}
		return authenticate(c, secret, rdb, tokenString)
	}
}

// WebSocketAuthRequired is AuthRequired that also accepts the token in the
// "token" query parameter, since browsers cannot set headers on upgrades.
func WebSocketAuthRequired(secret string, rdb *redis.Client) fiber.Handler {
	return func(c *fiber.Ctx) error {
		tokenString := c.Query("token")
		if tokenString == "" {
			var ok bool
			if tokenString, ok = bearerToken(c.Get("Authorization")); !ok {
				return unauthorized(c, "Token required")
			}
		}
		return authenticate(c, secret, rdb, tokenString)
	}
}

func authenticate(c *fiber.Ctx, secret string, rdb *redis.Client, tokenString string) error {
	claims, err := auth.ParseToken(secret, tokenString)
	if err != nil {
		return unauthorized(c, "Invalid or expired token")
	}

	if rdb != nil && claims.JTI != "" {
		n, err := rdb.Exists(c.UserContext(), auth.RevocationKey(claims.JTI)).Result()
		if err != nil {
			Logger.WarnContext(c.UserContext(), "token revocation check failed", "error", err)
		} else if n > 0 {
			return unauthorized(c, "Token has been revoked")
		}
	}

	c.Locals("userID", claims.UserID)
	c.Locals("username", claims.Username)
	c.SetUserContext(WithUserID(c.UserContext(), claims.UserID))
	return c.Next()
}

func bearerToken(header string) (string, bool) {
	scheme, token, found := strings.Cut(header, " ")
	if !found || scheme != "Bearer" || token == "" {
		return "", false
	}
	return token, true
}

func unauthorized(c *fiber.Ctx, message string) error {
	return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
		"error":   "UNAUTHORIZED",
		"message": message,
	})
}
