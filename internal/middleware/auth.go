package middleware

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/example/orchid/internal/config"
	"github.com/example/orchid/internal/models"
	"github.com/example/orchid/internal/utils"
)

const userContextKey = "currentUserID"

// AuthMiddleware validates JWT tokens and loads the authenticated user ID
// into context. Requests without a valid token are rejected.
func AuthMiddleware(cfg *config.Config) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, err := bearerUserID(c, cfg.JWTSecret)
		if err != nil {
			return fiber.NewError(fiber.StatusUnauthorized, err.Error())
		}

		c.Locals(userContextKey, userID)
		return c.Next()
	}
}

// OptionalAuthMiddleware loads the user ID when a valid token is present and
// lets the request through as a guest otherwise.
func OptionalAuthMiddleware(cfg *config.Config) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if userID, err := bearerUserID(c, cfg.JWTSecret); err == nil {
			c.Locals(userContextKey, userID)
		}
		return c.Next()
	}
}

// RequireRole rejects authenticated users whose account role does not
// match. Must run after AuthMiddleware.
func RequireRole(db *gorm.DB, role string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, ok := GetCurrentUserID(c)
		if !ok {
			return fiber.NewError(fiber.StatusUnauthorized, "unauthorized")
		}

		var user models.User
		if err := db.First(&user, "id = ?", userID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fiber.NewError(fiber.StatusUnauthorized, "unauthorized")
			}
			return err
		}

		if user.Role != role {
			return fiber.NewError(fiber.StatusForbidden, "insufficient permissions")
		}

		return c.Next()
	}
}

// GetCurrentUserID extracts the authenticated user ID from context.
func GetCurrentUserID(c *fiber.Ctx) (uuid.UUID, bool) {
	value := c.Locals(userContextKey)
	if value == nil {
		return uuid.Nil, false
	}

	if id, ok := value.(uuid.UUID); ok {
		return id, true
	}

	return uuid.Nil, false
}

func bearerUserID(c *fiber.Ctx, secret string) (uuid.UUID, error) {
	authHeader := c.Get("Authorization")
	if authHeader == "" {
		return uuid.Nil, errors.New("missing authorization header")
	}

	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return uuid.Nil, errors.New("invalid authorization header")
	}

	userID, err := utils.ParseToken(secret, parts[1])
	if err != nil {
		return uuid.Nil, errors.New("invalid token")
	}

	return userID, nil
}
