package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/example/orchid/internal/middleware"
	"github.com/example/orchid/internal/services"
	"github.com/example/orchid/internal/utils"
)

// OrderHandler exposes customer-facing order endpoints.
type OrderHandler struct {
	orders *services.OrderService
}

// NewOrderHandler constructs OrderHandler.
func NewOrderHandler(orders *services.OrderService) *OrderHandler {
	return &OrderHandler{orders: orders}
}

type orderLineRequest struct {
	ProductID   string `json:"product_id"`
	VariationID string `json:"variation_id"`
	Quantity    int    `json:"quantity"`
}

type createOrderRequest struct {
	AddressID  string             `json:"address_id"`
	Items      []orderLineRequest `json:"items"`
	CouponCode string             `json:"coupon_code"`
	Notes      string             `json:"notes"`
}

// Create places an order for the authenticated user.
func (h *OrderHandler) Create(c *fiber.Ctx) error {
	userID, ok := middleware.GetCurrentUserID(c)
	if !ok {
		return fiber.NewError(fiber.StatusUnauthorized, "unauthorized")
	}

	var req createOrderRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	addressID, err := uuid.Parse(req.AddressID)
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid address id")
	}

	in := services.CreateOrderInput{
		AddressID:  addressID,
		CouponCode: req.CouponCode,
		Notes:      req.Notes,
	}

	for _, line := range req.Items {
		productID, err := uuid.Parse(line.ProductID)
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "invalid product id")
		}

		item := services.OrderLineInput{ProductID: productID, Quantity: line.Quantity}
		if line.VariationID != "" {
			variationID, err := uuid.Parse(line.VariationID)
			if err != nil {
				return fiber.NewError(fiber.StatusBadRequest, "invalid variation id")
			}
			item.VariationID = &variationID
		}
		in.Items = append(in.Items, item)
	}

	order, err := h.orders.Create(c.Context(), userID, in)
	if err != nil {
		return httpError(err)
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"success": true,
		"data": fiber.Map{
			"id":           order.ID,
			"order_number": order.OrderNumber,
			"status":       order.Status,
			"placed_at":    order.PlacedAt,
			"subtotal":     order.Subtotal,
			"discount":     order.Discount,
			"total":        order.Total,
			"currency":     order.Currency,
		},
	})
}

// List returns orders for the authenticated user.
func (h *OrderHandler) List(c *fiber.Ctx) error {
	userID, ok := middleware.GetCurrentUserID(c)
	if !ok {
		return fiber.NewError(fiber.StatusUnauthorized, "unauthorized")
	}

	pg := utils.ParsePagination(c)
	orders, total, err := h.orders.List(c.Context(), userID, c.Query("status"), pg.Limit, pg.Offset)
	if err != nil {
		return httpError(err)
	}

	return c.JSON(fiber.Map{
		"success": true,
		"data":    orders,
		"pagination": fiber.Map{
			"current_page":   pg.Page,
			"items_per_page": pg.Limit,
			"total_items":    total,
		},
	})
}

// Show returns a single order for the authenticated user.
func (h *OrderHandler) Show(c *fiber.Ctx) error {
	userID, ok := middleware.GetCurrentUserID(c)
	if !ok {
		return fiber.NewError(fiber.StatusUnauthorized, "unauthorized")
	}

	orderID, err := parseUUIDParam(c, "id")
	if err != nil {
		return err
	}

	order, err := h.orders.Show(c.Context(), userID, orderID)
	if err != nil {
		return httpError(err)
	}

	return c.JSON(fiber.Map{"success": true, "data": order})
}

type cancelOrderRequest struct {
	Reason string `json:"reason"`
	Note   string `json:"note"`
}

// Cancel cancels a pending order.
func (h *OrderHandler) Cancel(c *fiber.Ctx) error {
	userID, ok := middleware.GetCurrentUserID(c)
	if !ok {
		return fiber.NewError(fiber.StatusUnauthorized, "unauthorized")
	}

	orderID, err := parseUUIDParam(c, "id")
	if err != nil {
		return err
	}

	var req cancelOrderRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	if err := h.orders.Cancel(c.Context(), userID, orderID, req.Reason, req.Note); err != nil {
		return httpError(err)
	}

	return c.JSON(fiber.Map{"success": true, "message": "order cancelled"})
}

type itemFlowRequest struct {
	ItemIDs []string `json:"item_ids"`
	Reason  string   `json:"reason"`
}

// RequestReturn opens the return sub-flow.
func (h *OrderHandler) RequestReturn(c *fiber.Ctx) error {
	return h.requestItemFlow(c, false)
}

// RequestReplacement opens the replacement sub-flow.
func (h *OrderHandler) RequestReplacement(c *fiber.Ctx) error {
	return h.requestItemFlow(c, true)
}

func (h *OrderHandler) requestItemFlow(c *fiber.Ctx, replacement bool) error {
	userID, ok := middleware.GetCurrentUserID(c)
	if !ok {
		return fiber.NewError(fiber.StatusUnauthorized, "unauthorized")
	}

	orderID, err := parseUUIDParam(c, "id")
	if err != nil {
		return err
	}

	var req itemFlowRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	itemIDs := make([]uuid.UUID, 0, len(req.ItemIDs))
	for _, raw := range req.ItemIDs {
		id, err := uuid.Parse(raw)
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "invalid item id")
		}
		itemIDs = append(itemIDs, id)
	}

	if replacement {
		err = h.orders.RequestReplacement(c.Context(), userID, orderID, itemIDs, req.Reason)
	} else {
		err = h.orders.RequestReturn(c.Context(), userID, orderID, itemIDs, req.Reason)
	}
	if err != nil {
		return httpError(err)
	}

	message := "return requested"
	if replacement {
		message = "replacement requested"
	}
	return c.JSON(fiber.Map{"success": true, "message": message})
}
