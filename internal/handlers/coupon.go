package handlers

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/example/orchid/internal/middleware"
	"github.com/example/orchid/internal/services"
)

// CouponHandler exposes coupon validation plus admin CRUD.
type CouponHandler struct {
	coupons *services.CouponService
}

// NewCouponHandler constructs CouponHandler.
func NewCouponHandler(coupons *services.CouponService) *CouponHandler {
	return &CouponHandler{coupons: coupons}
}

type validateCouponRequest struct {
	Code     string  `json:"code"`
	Subtotal float64 `json:"subtotal"`
}

// Validate prices a coupon against a subtotal without committing anything.
func (h *CouponHandler) Validate(c *fiber.Ctx) error {
	var req validateCouponRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	var accountID *uuid.UUID
	if id, ok := middleware.GetCurrentUserID(c); ok {
		accountID = &id
	}

	quote, err := h.coupons.Validate(c.Context(), req.Code, req.Subtotal, accountID)
	if err != nil {
		return httpError(err)
	}

	return c.JSON(fiber.Map{
		"success": true,
		"data": fiber.Map{
			"code":     quote.Coupon.Code,
			"kind":     quote.Coupon.Kind,
			"discount": quote.Discount,
		},
	})
}

type couponRequest struct {
	Code              string     `json:"code"`
	Kind              string     `json:"kind"`
	Value             float64    `json:"value"`
	StartDate         *time.Time `json:"start_date"`
	EndDate           *time.Time `json:"end_date"`
	MinPurchase       *float64   `json:"min_purchase"`
	MaxDiscount       *float64   `json:"max_discount"`
	UsageLimit        *int       `json:"usage_limit"`
	UsageLimitPerUser *int       `json:"usage_limit_per_user"`
	IsActive          *bool      `json:"is_active"`
}

// Create registers a coupon (admin).
func (h *CouponHandler) Create(c *fiber.Ctx) error {
	var req couponRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	active := true
	if req.IsActive != nil {
		active = *req.IsActive
	}

	coupon, err := h.coupons.CreateCoupon(c.Context(), services.CouponInput{
		Code:              req.Code,
		Kind:              req.Kind,
		Value:             req.Value,
		StartDate:         req.StartDate,
		EndDate:           req.EndDate,
		MinPurchase:       req.MinPurchase,
		MaxDiscount:       req.MaxDiscount,
		UsageLimit:        req.UsageLimit,
		UsageLimitPerUser: req.UsageLimitPerUser,
		IsActive:          active,
	})
	if err != nil {
		return httpError(err)
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"success": true, "data": coupon})
}

// List returns all coupons (admin).
func (h *CouponHandler) List(c *fiber.Ctx) error {
	coupons, err := h.coupons.ListCoupons(c.Context())
	if err != nil {
		return httpError(err)
	}

	return c.JSON(fiber.Map{"success": true, "data": coupons})
}

type couponActiveRequest struct {
	IsActive bool `json:"is_active"`
}

// SetActive enables or disables a coupon (admin).
func (h *CouponHandler) SetActive(c *fiber.Ctx) error {
	couponID, err := parseUUIDParam(c, "id")
	if err != nil {
		return err
	}

	var req couponActiveRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	if err := h.coupons.SetCouponActive(c.Context(), couponID, req.IsActive); err != nil {
		return httpError(err)
	}

	return c.JSON(fiber.Map{"success": true, "message": "coupon updated"})
}
