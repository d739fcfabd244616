package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/example/orchid/internal/services"
)

// CartHandler exposes cart endpoints for accounts and guests.
type CartHandler struct {
	cart *services.CartService
}

// NewCartHandler constructs CartHandler.
func NewCartHandler(cart *services.CartService) *CartHandler {
	return &CartHandler{cart: cart}
}

type cartAddRequest struct {
	ProductID   string `json:"product_id"`
	VariationID string `json:"variation_id"`
	Quantity    int    `json:"quantity"`
	SessionID   string `json:"session_id"`
}

// Add puts a product line in the cart.
func (h *CartHandler) Add(c *fiber.Ctx) error {
	var req cartAddRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	productID, err := uuid.Parse(req.ProductID)
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid product id")
	}

	in := services.AddInput{ProductID: productID, Quantity: req.Quantity}
	if req.VariationID != "" {
		variationID, err := uuid.Parse(req.VariationID)
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "invalid variation id")
		}
		in.VariationID = &variationID
	}

	owner, err := resolveOwner(c, true)
	if err != nil {
		return err
	}

	item, err := h.cart.Add(c.Context(), owner, in)
	if err != nil {
		return httpError(err)
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"success": true, "data": item})
}

type cartUpdateRequest struct {
	Quantity  int    `json:"quantity"`
	SessionID string `json:"session_id"`
}

// Update sets the quantity of a cart line.
func (h *CartHandler) Update(c *fiber.Ctx) error {
	itemID, err := parseUUIDParam(c, "id")
	if err != nil {
		return err
	}

	var req cartUpdateRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	owner, err := resolveOwner(c, true)
	if err != nil {
		return err
	}

	if err := h.cart.UpdateQuantity(c.Context(), owner, itemID, req.Quantity); err != nil {
		return httpError(err)
	}

	return c.JSON(fiber.Map{"success": true, "message": "cart updated"})
}

// Remove deletes a cart line.
func (h *CartHandler) Remove(c *fiber.Ctx) error {
	itemID, err := parseUUIDParam(c, "id")
	if err != nil {
		return err
	}

	owner, err := resolveOwner(c, true)
	if err != nil {
		return err
	}

	if err := h.cart.Remove(c.Context(), owner, itemID); err != nil {
		return httpError(err)
	}

	return c.JSON(fiber.Map{"success": true, "message": "removed from cart"})
}

// List returns the owner's cart.
func (h *CartHandler) List(c *fiber.Ctx) error {
	owner, err := resolveOwner(c, true)
	if err != nil {
		return err
	}

	items, err := h.cart.List(c.Context(), owner)
	if err != nil {
		return httpError(err)
	}

	return c.JSON(fiber.Map{"success": true, "data": items})
}

// Clear empties the owner's cart.
func (h *CartHandler) Clear(c *fiber.Ctx) error {
	owner, err := resolveOwner(c, true)
	if err != nil {
		return err
	}

	if err := h.cart.Clear(c.Context(), owner); err != nil {
		return httpError(err)
	}

	return c.JSON(fiber.Map{"success": true, "message": "cart cleared"})
}
