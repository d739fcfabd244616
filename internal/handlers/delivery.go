package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/example/orchid/internal/middleware"
	"github.com/example/orchid/internal/services"
)

// DeliveryHandler exposes the OTP endpoints used by delivery agents.
type DeliveryHandler struct {
	otp *services.OTPService
}

// NewDeliveryHandler constructs DeliveryHandler.
func NewDeliveryHandler(otp *services.OTPService) *DeliveryHandler {
	return &DeliveryHandler{otp: otp}
}

// GenerateOTP issues a fresh delivery code for an out-for-delivery order.
// The code reaches the customer through the notification collaborator; it is
// returned here for that handoff, not for the agent.
func (h *DeliveryHandler) GenerateOTP(c *fiber.Ctx) error {
	orderID, err := parseUUIDParam(c, "id")
	if err != nil {
		return err
	}

	code, err := h.otp.Generate(c.Context(), orderID)
	if err != nil {
		return httpError(err)
	}

	return c.JSON(fiber.Map{"success": true, "data": fiber.Map{"otp_code": code}})
}

type verifyOTPRequest struct {
	Code string `json:"code"`
}

// VerifyOTP confirms delivery. Only the agent assigned to the order may
// verify.
func (h *DeliveryHandler) VerifyOTP(c *fiber.Ctx) error {
	agentID, ok := middleware.GetCurrentUserID(c)
	if !ok {
		return fiber.NewError(fiber.StatusUnauthorized, "unauthorized")
	}

	orderID, err := parseUUIDParam(c, "id")
	if err != nil {
		return err
	}

	var req verifyOTPRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	if err := h.otp.Verify(c.Context(), orderID, req.Code, agentID); err != nil {
		return httpError(err)
	}

	return c.JSON(fiber.Map{"success": true, "message": "delivery confirmed"})
}
