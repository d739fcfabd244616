package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/example/orchid/internal/services"
)

// RecentlyViewedHandler exposes the view-history endpoints.
type RecentlyViewedHandler struct {
	recent *services.RecentlyViewedService
}

// NewRecentlyViewedHandler constructs RecentlyViewedHandler.
func NewRecentlyViewedHandler(recent *services.RecentlyViewedService) *RecentlyViewedHandler {
	return &RecentlyViewedHandler{recent: recent}
}

type recordViewRequest struct {
	ProductID string `json:"product_id"`
	SessionID string `json:"session_id"`
}

// Record registers a product view for the owner.
func (h *RecentlyViewedHandler) Record(c *fiber.Ctx) error {
	var req recordViewRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	productID, err := uuid.Parse(req.ProductID)
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid product id")
	}

	owner, err := resolveOwner(c, true)
	if err != nil {
		return err
	}

	if err := h.recent.Record(c.Context(), owner, productID); err != nil {
		return httpError(err)
	}

	return c.JSON(fiber.Map{"success": true, "message": "view recorded"})
}

// List returns the owner's view history, most recent first.
func (h *RecentlyViewedHandler) List(c *fiber.Ctx) error {
	owner, err := resolveOwner(c, true)
	if err != nil {
		return err
	}

	items, err := h.recent.List(c.Context(), owner)
	if err != nil {
		return httpError(err)
	}

	return c.JSON(fiber.Map{"success": true, "data": items})
}
