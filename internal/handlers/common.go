package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/example/orchid/internal/middleware"
	"github.com/example/orchid/internal/models"
	"github.com/example/orchid/internal/services"
)

// SessionHeader carries the guest session token in both directions: clients
// supply it on requests, and a freshly minted token is echoed back on it.
const SessionHeader = "X-Session-ID"

// sessionHint extracts the caller-supplied guest session identifier,
// checking header, body field and query parameter in that priority order.
func sessionHint(c *fiber.Ctx) string {
	if v := c.Get(SessionHeader); v != "" {
		return v
	}

	var body struct {
		SessionID string `json:"session_id"`
	}
	if err := c.BodyParser(&body); err == nil && body.SessionID != "" {
		return body.SessionID
	}

	return c.Query("session_id")
}

// resolveOwner determines the acting principal for the request. When a new
// guest session is minted its token is set on the response header so the
// client can persist it.
func resolveOwner(c *fiber.Ctx, required bool) (models.Owner, error) {
	var accountID *uuid.UUID
	if id, ok := middleware.GetCurrentUserID(c); ok {
		accountID = &id
	}

	resolved, err := services.ResolveOwner(accountID, sessionHint(c), required)
	if err != nil {
		return models.Owner{}, err
	}

	if resolved.MintedSession != "" {
		c.Set(SessionHeader, resolved.MintedSession)
	}

	return resolved.Owner, nil
}

// httpError translates expected service failures into fiber errors with the
// right status-code category. Unknown errors pass through and surface as
// server errors via the fiber error handler.
func httpError(err error) error {
	var eligibility *services.EligibilityError
	if errors.As(err, &eligibility) {
		return fiber.NewError(fiber.StatusUnprocessableEntity, eligibility.Reason)
	}

	switch {
	case errors.Is(err, services.ErrValidation),
		errors.Is(err, services.ErrInvalidOTP):
		return fiber.NewError(fiber.StatusBadRequest, err.Error())

	case errors.Is(err, services.ErrAddressNotFound),
		errors.Is(err, services.ErrOrderNotFound),
		errors.Is(err, services.ErrEntryNotFound),
		errors.Is(err, services.ErrCouponNotFound):
		return fiber.NewError(fiber.StatusNotFound, err.Error())

	case errors.Is(err, services.ErrDuplicateEntry),
		errors.Is(err, services.ErrAlreadyCancelled),
		errors.Is(err, services.ErrRequestOpen),
		errors.Is(err, services.ErrOTPAlreadyVerified),
		errors.Is(err, services.ErrAgentAssigned),
		errors.Is(err, services.ErrCancelNotAllowed),
		errors.Is(err, services.ErrStateNotAllowed):
		return fiber.NewError(fiber.StatusConflict, err.Error())

	case errors.Is(err, services.ErrNotAssignedAgent),
		errors.Is(err, services.ErrItemsNotEligible):
		return fiber.NewError(fiber.StatusForbidden, err.Error())

	case errors.Is(err, services.ErrProductUnavailable),
		errors.Is(err, services.ErrVariationOutOfStock):
		return fiber.NewError(fiber.StatusUnprocessableEntity, err.Error())
	}

	return err
}

func parseUUIDParam(c *fiber.Ctx, name string) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Params(name))
	if err != nil {
		return uuid.Nil, fiber.NewError(fiber.StatusBadRequest, "invalid id")
	}
	return id, nil
}
