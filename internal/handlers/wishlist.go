package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/example/orchid/internal/services"
)

// WishlistHandler exposes wishlist endpoints for accounts and guests.
type WishlistHandler struct {
	wishlist *services.WishlistService
}

// NewWishlistHandler constructs WishlistHandler.
func NewWishlistHandler(wishlist *services.WishlistService) *WishlistHandler {
	return &WishlistHandler{wishlist: wishlist}
}

type wishlistRequest struct {
	ProductID string `json:"product_id"`
	SessionID string `json:"session_id"`
}

// Add puts a product on the wishlist.
func (h *WishlistHandler) Add(c *fiber.Ctx) error {
	var req wishlistRequest
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

	item, err := h.wishlist.Add(c.Context(), owner, productID)
	if err != nil {
		return httpError(err)
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"success": true, "data": item})
}

// Remove deletes a wishlist entry.
func (h *WishlistHandler) Remove(c *fiber.Ctx) error {
	productID, err := parseUUIDParam(c, "productId")
	if err != nil {
		return err
	}

	owner, err := resolveOwner(c, true)
	if err != nil {
		return err
	}

	if err := h.wishlist.Remove(c.Context(), owner, productID); err != nil {
		return httpError(err)
	}

	return c.JSON(fiber.Map{"success": true, "message": "removed from wishlist"})
}

// Check reports whether a product is wished.
func (h *WishlistHandler) Check(c *fiber.Ctx) error {
	productID, err := parseUUIDParam(c, "productId")
	if err != nil {
		return err
	}

	owner, err := resolveOwner(c, true)
	if err != nil {
		return err
	}

	wished, err := h.wishlist.Check(c.Context(), owner, productID)
	if err != nil {
		return httpError(err)
	}

	return c.JSON(fiber.Map{"success": true, "data": fiber.Map{"wished": wished}})
}

// List returns the owner's wishlist.
func (h *WishlistHandler) List(c *fiber.Ctx) error {
	owner, err := resolveOwner(c, true)
	if err != nil {
		return err
	}

	items, err := h.wishlist.List(c.Context(), owner)
	if err != nil {
		return httpError(err)
	}

	return c.JSON(fiber.Map{"success": true, "data": items})
}

// Clear empties the owner's wishlist.
func (h *WishlistHandler) Clear(c *fiber.Ctx) error {
	owner, err := resolveOwner(c, true)
	if err != nil {
		return err
	}

	if err := h.wishlist.Clear(c.Context(), owner); err != nil {
		return httpError(err)
	}

	return c.JSON(fiber.Map{"success": true, "message": "wishlist cleared"})
}

// Count returns the number of wishlist entries.
func (h *WishlistHandler) Count(c *fiber.Ctx) error {
	owner, err := resolveOwner(c, true)
	if err != nil {
		return err
	}

	count, err := h.wishlist.Count(c.Context(), owner)
	if err != nil {
		return httpError(err)
	}

	return c.JSON(fiber.Map{"success": true, "data": fiber.Map{"count": count}})
}
