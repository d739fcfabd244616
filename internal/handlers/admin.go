package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/example/orchid/internal/services"
)

// AdminOrderHandler exposes back-office fulfillment operations.
type AdminOrderHandler struct {
	orders *services.OrderService
}

// NewAdminOrderHandler constructs AdminOrderHandler.
func NewAdminOrderHandler(orders *services.OrderService) *AdminOrderHandler {
	return &AdminOrderHandler{orders: orders}
}

// Advance moves an order one step along the fulfillment chain.
func (h *AdminOrderHandler) Advance(c *fiber.Ctx) error {
	orderID, err := parseUUIDParam(c, "id")
	if err != nil {
		return err
	}

	order, err := h.orders.AdvanceStatus(c.Context(), orderID)
	if err != nil {
		return httpError(err)
	}

	return c.JSON(fiber.Map{"success": true, "data": fiber.Map{
		"id":     order.ID,
		"status": order.Status,
	}})
}

type assignAgentRequest struct {
	AgentID string `json:"agent_id"`
}

// AssignAgent attaches a delivery agent to an order.
func (h *AdminOrderHandler) AssignAgent(c *fiber.Ctx) error {
	orderID, err := parseUUIDParam(c, "id")
	if err != nil {
		return err
	}

	var req assignAgentRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	agentID, err := uuid.Parse(req.AgentID)
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid agent id")
	}

	if err := h.orders.AssignAgent(c.Context(), orderID, agentID); err != nil {
		return httpError(err)
	}

	return c.JSON(fiber.Map{"success": true, "message": "delivery agent assigned"})
}

type resolveRequest struct {
	Outcome string `json:"outcome"`
}

// ResolveReturn advances an open return request to its outcome.
func (h *AdminOrderHandler) ResolveReturn(c *fiber.Ctx) error {
	orderID, err := parseUUIDParam(c, "id")
	if err != nil {
		return err
	}

	var req resolveRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	if err := h.orders.ResolveReturn(c.Context(), orderID, req.Outcome); err != nil {
		return httpError(err)
	}

	return c.JSON(fiber.Map{"success": true, "message": "return request resolved"})
}

// ResolveReplacement advances an open replacement request to its outcome.
func (h *AdminOrderHandler) ResolveReplacement(c *fiber.Ctx) error {
	orderID, err := parseUUIDParam(c, "id")
	if err != nil {
		return err
	}

	var req resolveRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	if err := h.orders.ResolveReplacement(c.Context(), orderID, req.Outcome); err != nil {
		return httpError(err)
	}

	return c.JSON(fiber.Map{"success": true, "message": "replacement request resolved"})
}
