package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/example/orchid/internal/middleware"
	"github.com/example/orchid/internal/services"
)

// AddressHandler exposes the account address book.
type AddressHandler struct {
	addresses *services.AddressService
}

// NewAddressHandler constructs AddressHandler.
func NewAddressHandler(addresses *services.AddressService) *AddressHandler {
	return &AddressHandler{addresses: addresses}
}

type addressRequest struct {
	Label       string `json:"label"`
	FullName    string `json:"full_name"`
	Phone       string `json:"phone"`
	AddressLine string `json:"address_line"`
	Apartment   string `json:"apartment"`
	City        string `json:"city"`
	District    string `json:"district"`
	Country     string `json:"country"`
	PostalCode  string `json:"postal_code"`
	IsDefault   bool   `json:"is_default"`
}

func (r addressRequest) toInput() services.AddressInput {
	return services.AddressInput{
		Label:       r.Label,
		FullName:    r.FullName,
		Phone:       r.Phone,
		AddressLine: r.AddressLine,
		Apartment:   r.Apartment,
		City:        r.City,
		District:    r.District,
		Country:     r.Country,
		PostalCode:  r.PostalCode,
		IsDefault:   r.IsDefault,
	}
}

// List returns the account's addresses.
func (h *AddressHandler) List(c *fiber.Ctx) error {
	userID, ok := middleware.GetCurrentUserID(c)
	if !ok {
		return fiber.NewError(fiber.StatusUnauthorized, "unauthorized")
	}

	addresses, err := h.addresses.List(c.Context(), userID)
	if err != nil {
		return httpError(err)
	}

	return c.JSON(fiber.Map{"success": true, "data": addresses})
}

// Create adds an address.
func (h *AddressHandler) Create(c *fiber.Ctx) error {
	userID, ok := middleware.GetCurrentUserID(c)
	if !ok {
		return fiber.NewError(fiber.StatusUnauthorized, "unauthorized")
	}

	var req addressRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	address, err := h.addresses.Create(c.Context(), userID, req.toInput())
	if err != nil {
		return httpError(err)
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"success": true, "data": address})
}

// Update modifies an address.
func (h *AddressHandler) Update(c *fiber.Ctx) error {
	userID, ok := middleware.GetCurrentUserID(c)
	if !ok {
		return fiber.NewError(fiber.StatusUnauthorized, "unauthorized")
	}

	addressID, err := parseUUIDParam(c, "id")
	if err != nil {
		return err
	}

	var req addressRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	if err := h.addresses.Update(c.Context(), userID, addressID, req.toInput()); err != nil {
		return httpError(err)
	}

	return c.JSON(fiber.Map{"success": true, "message": "address updated"})
}

// Delete removes an address.
func (h *AddressHandler) Delete(c *fiber.Ctx) error {
	userID, ok := middleware.GetCurrentUserID(c)
	if !ok {
		return fiber.NewError(fiber.StatusUnauthorized, "unauthorized")
	}

	addressID, err := parseUUIDParam(c, "id")
	if err != nil {
		return err
	}

	if err := h.addresses.Delete(c.Context(), userID, addressID); err != nil {
		return httpError(err)
	}

	return c.JSON(fiber.Map{"success": true, "message": "address deleted"})
}

// SetDefault makes an address the account's only default.
func (h *AddressHandler) SetDefault(c *fiber.Ctx) error {
	userID, ok := middleware.GetCurrentUserID(c)
	if !ok {
		return fiber.NewError(fiber.StatusUnauthorized, "unauthorized")
	}

	addressID, err := parseUUIDParam(c, "id")
	if err != nil {
		return err
	}

	if err := h.addresses.SetDefault(c.Context(), userID, addressID); err != nil {
		return httpError(err)
	}

	return c.JSON(fiber.Map{"success": true, "message": "default address updated"})
}
