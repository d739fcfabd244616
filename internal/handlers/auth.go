package handlers

import (
	"errors"
	"fmt"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/example/orchid/internal/config"
	"github.com/example/orchid/internal/models"
	"github.com/example/orchid/internal/services"
	"github.com/example/orchid/internal/utils"
)

// AuthHandler bundles dependencies for authentication endpoints. Register
// and login are also the merge trigger points: guest shopping data is folded
// into the account before the token leaves the handler.
type AuthHandler struct {
	db    *gorm.DB
	cfg   *config.Config
	merge *services.MergeService
}

// NewAuthHandler constructs an AuthHandler.
func NewAuthHandler(db *gorm.DB, cfg *config.Config, merge *services.MergeService) *AuthHandler {
	return &AuthHandler{db: db, cfg: cfg, merge: merge}
}

type registerRequest struct {
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Phone     string `json:"phone"`
	Password  string `json:"password"`
	SessionID string `json:"session_id"`
}

// Register creates a new user account and merges any guest session data.
func (h *AuthHandler) Register(c *fiber.Ctx) error {
	var req registerRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	if req.Phone == "" || req.Password == "" || req.FirstName == "" {
		return fiber.NewError(fiber.StatusBadRequest, "missing required fields")
	}

	var existing models.User
	if err := h.db.Where("phone = ?", req.Phone).First(&existing).Error; err == nil {
		return fiber.NewError(fiber.StatusConflict, "user already exists")
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}

	passwordHash, err := utils.HashPassword(req.Password)
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "failed to hash password")
	}

	user := models.User{
		FirstName:    req.FirstName,
		LastName:     req.LastName,
		Phone:        req.Phone,
		DisplayName:  fmt.Sprintf("%s %s", req.FirstName, req.LastName),
		PasswordHash: passwordHash,
		Role:         models.RoleCustomer,
	}

	if err := h.db.Create(&user).Error; err != nil {
		return err
	}

	if err := h.merge.Merge(c.Context(), user.ID, guestSession(c, req.SessionID)); err != nil {
		return err
	}

	token, err := utils.GenerateToken(h.cfg.JWTSecret, user.ID, h.cfg.TokenExpires)
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "failed to generate token")
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"success": true,
		"user": fiber.Map{
			"id":           user.ID,
			"first_name":   user.FirstName,
			"last_name":    user.LastName,
			"phone":        user.Phone,
			"display_name": user.DisplayName,
		},
		"token": token,
	})
}

type loginRequest struct {
	Phone     string `json:"phone"`
	Password  string `json:"password"`
	SessionID string `json:"session_id"`
}

// Login authenticates an existing user and merges any guest session data.
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req loginRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	var user models.User
	if err := h.db.Where("phone = ?", req.Phone).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fiber.NewError(fiber.StatusUnauthorized, "invalid credentials")
		}
		return err
	}

	if !utils.CheckPassword(user.PasswordHash, req.Password) {
		return fiber.NewError(fiber.StatusUnauthorized, "invalid credentials")
	}

	if err := h.merge.Merge(c.Context(), user.ID, guestSession(c, req.SessionID)); err != nil {
		return err
	}

	token, err := utils.GenerateToken(h.cfg.JWTSecret, user.ID, h.cfg.TokenExpires)
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "failed to generate token")
	}

	return c.JSON(fiber.Map{
		"success": true,
		"user": fiber.Map{
			"id":           user.ID,
			"display_name": user.DisplayName,
			"phone":        user.Phone,
			"role":         user.Role,
		},
		"token": token,
	})
}

// Session resolves the acting principal, minting a guest session token when
// the caller has none.
func (h *AuthHandler) Session(c *fiber.Ctx) error {
	owner, err := resolveOwner(c, true)
	if err != nil {
		return err
	}

	if accountID, ok := owner.AccountID(); ok {
		return c.JSON(fiber.Map{
			"success": true,
			"data":    fiber.Map{"kind": "account", "account_id": accountID},
		})
	}

	sessionID, _ := owner.SessionID()
	return c.JSON(fiber.Map{
		"success": true,
		"data":    fiber.Map{"kind": "guest", "session_id": sessionID},
	})
}

func guestSession(c *fiber.Ctx, bodySession string) string {
	if v := c.Get(SessionHeader); v != "" {
		return v
	}
	if bodySession != "" {
		return bodySession
	}
	return c.Query("session_id")
}
