package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/example/orchid/internal/catalog"
	"github.com/example/orchid/internal/models"
)

// OrderService drives the order lifecycle state machine from placement
// through cancellation and the return/replacement sub-flows. Delivery
// confirmation lives in OTPService.
type OrderService struct {
	db      *gorm.DB
	catalog catalog.Provider
	coupons *CouponService
	log     *zap.Logger
	now     func() time.Time
}

// NewOrderService constructs OrderService.
func NewOrderService(db *gorm.DB, provider catalog.Provider, coupons *CouponService, log *zap.Logger) *OrderService {
	return &OrderService{
		db:      db,
		catalog: provider,
		coupons: coupons,
		log:     log,
		now:     time.Now,
	}
}

// OrderLineInput is one requested order line. Prices are never accepted from
// the client; every line is re-priced from the catalog.
type OrderLineInput struct {
	ProductID   uuid.UUID
	VariationID *uuid.UUID
	Quantity    int
}

// CreateOrderInput describes a placement request.
type CreateOrderInput struct {
	AddressID  uuid.UUID
	Items      []OrderLineInput
	CouponCode string
	Notes      string
}

// Create places an order: validates and re-prices every line from the
// catalog, snapshots the shipping address, and, when a coupon code is
// supplied, re-validates it and commits the redemption in the same
// transaction. A failing coupon fails the whole placement; the discount is
// never silently dropped.
func (s *OrderService) Create(ctx context.Context, accountID uuid.UUID, in CreateOrderInput) (*models.Order, error) {
	if len(in.Items) == 0 {
		return nil, ErrValidation
	}
	for _, line := range in.Items {
		if line.Quantity <= 0 {
			return nil, ErrValidation
		}
	}

	var order *models.Order
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var address models.UserAddress
		if err := tx.First(&address, "id = ? AND user_id = ?", in.AddressID, accountID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrAddressNotFound
			}
			return err
		}

		now := s.now()
		draft := models.Order{
			UserID:      accountID,
			OrderNumber: generateOrderNumber(),
			Status:      models.StatusPending,
			PlacedAt:    now,
			Notes:       in.Notes,

			ShippingFullName:    address.FullName,
			ShippingPhone:       address.Phone,
			ShippingAddressLine: address.AddressLine,
			ShippingApartment:   address.Apartment,
			ShippingCity:        address.City,
			ShippingDistrict:    address.District,
			ShippingCountry:     address.Country,
			ShippingPostalCode:  address.PostalCode,
		}

		var subtotal float64
		for _, line := range in.Items {
			product, err := s.catalog.GetProduct(ctx, line.ProductID)
			if err != nil {
				if errors.Is(err, catalog.ErrNotFound) {
					return ErrProductUnavailable
				}
				return err
			}
			if !product.IsApproved {
				return ErrProductUnavailable
			}
			if draft.Currency == "" {
				draft.Currency = product.Currency
			}

			unitPrice := product.Price
			variantLabel := ""
			if line.VariationID != nil {
				variation, err := s.catalog.GetVariation(ctx, *line.VariationID)
				if err != nil {
					if errors.Is(err, catalog.ErrNotFound) {
						return ErrProductUnavailable
					}
					return err
				}
				if variation.ProductID != line.ProductID {
					return ErrValidation
				}
				if !variation.InStock || variation.StockQuantity < line.Quantity {
					return ErrVariationOutOfStock
				}
				if variation.Price != nil {
					unitPrice = *variation.Price
				}
				variantLabel = variation.Label
			}

			lineTotal := roundHalfUp(unitPrice * float64(line.Quantity))
			subtotal += lineTotal

			draft.Items = append(draft.Items, models.OrderItem{
				ProductID:     line.ProductID,
				VariationID:   line.VariationID,
				ProductName:   product.Name,
				VariantLabel:  variantLabel,
				Quantity:      line.Quantity,
				UnitPrice:     unitPrice,
				LineTotal:     lineTotal,
				IsReturnable:  product.IsReturnable,
				IsReplaceable: product.IsReplaceable,
			})
		}

		draft.Subtotal = roundHalfUp(subtotal)

		var quote Quote
		if in.CouponCode != "" {
			var err error
			quote, err = s.coupons.ValidateLocked(tx, in.CouponCode, draft.Subtotal, &accountID)
			if err != nil {
				return err
			}
			draft.Discount = quote.Discount
			couponID := quote.Coupon.ID
			draft.CouponID = &couponID
		}

		draft.Total = roundHalfUp(draft.Subtotal - draft.Discount)

		if err := tx.Create(&draft).Error; err != nil {
			return err
		}

		if quote.Coupon != nil {
			if err := s.coupons.Commit(tx, quote.Coupon, accountID, draft.ID); err != nil {
				return err
			}
		}

		order = &draft
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.log.Info("order placed",
		zap.String("order_id", order.ID.String()),
		zap.String("order_number", order.OrderNumber),
		zap.Float64("total", order.Total))

	return order, nil
}

// Show returns one order with its items, scoped to the owning account.
func (s *OrderService) Show(ctx context.Context, accountID, orderID uuid.UUID) (*models.Order, error) {
	var order models.Order
	if err := s.db.WithContext(ctx).Preload("Items").
		First(&order, "id = ? AND user_id = ?", orderID, accountID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrOrderNotFound
		}
		return nil, err
	}
	return &order, nil
}

// List returns the account's orders, newest first, optionally filtered by
// status.
func (s *OrderService) List(ctx context.Context, accountID uuid.UUID, status string, limit, offset int) ([]models.Order, int64, error) {
	query := s.db.WithContext(ctx).Model(&models.Order{}).Where("user_id = ?", accountID)
	if status != "" {
		query = query.Where("status = ?", status)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var orders []models.Order
	if err := query.Preload("Items").
		Order("placed_at desc").
		Limit(limit).Offset(offset).
		Find(&orders).Error; err != nil {
		return nil, 0, err
	}

	return orders, total, nil
}

// Cancel moves a pending order to cancelled. Repeating a cancel is an
// explicit conflict, not a silent success; any post-pending state is a state
// error.
func (s *OrderService) Cancel(ctx context.Context, accountID, orderID uuid.UUID, reason, note string) error {
	if !validCancellationReason(reason) {
		return ErrValidation
	}

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		order, err := lockOrder(tx, orderID)
		if err != nil {
			return err
		}
		if order.UserID != accountID {
			return ErrOrderNotFound
		}

		switch order.Status {
		case models.StatusCancelled:
			return ErrAlreadyCancelled
		case models.StatusPending:
		default:
			return ErrCancelNotAllowed
		}

		now := s.now()
		return tx.Model(order).Updates(map[string]any{
			"status":              models.StatusCancelled,
			"cancellation_reason": reason,
			"cancellation_note":   note,
			"cancelled_at":        now,
		}).Error
	})
}

// RequestReturn opens the return sub-flow for the given items (all items
// when none are named). Every targeted item must have been returnable at
// order time or the whole request is rejected with no state change.
func (s *OrderService) RequestReturn(ctx context.Context, accountID, orderID uuid.UUID, itemIDs []uuid.UUID, reason string) error {
	return s.requestItemFlow(ctx, accountID, orderID, itemIDs, reason, false)
}

// RequestReplacement opens the replacement sub-flow; same all-or-nothing
// eligibility rule against the replaceable flag.
func (s *OrderService) RequestReplacement(ctx context.Context, accountID, orderID uuid.UUID, itemIDs []uuid.UUID, reason string) error {
	return s.requestItemFlow(ctx, accountID, orderID, itemIDs, reason, true)
}

func (s *OrderService) requestItemFlow(ctx context.Context, accountID, orderID uuid.UUID, itemIDs []uuid.UUID, reason string, replacement bool) error {
	if reason == "" {
		return ErrValidation
	}

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		order, err := lockOrder(tx, orderID)
		if err != nil {
			return err
		}
		if order.UserID != accountID {
			return ErrOrderNotFound
		}

		switch order.Status {
		case models.StatusShipped, models.StatusDelivered, models.StatusCompleted:
		default:
			return ErrStateNotAllowed
		}

		if replacement && order.ReplacementStatus != nil {
			return ErrRequestOpen
		}
		if !replacement && order.ReturnStatus != nil {
			return ErrRequestOpen
		}

		items, err := targetedItems(tx, orderID, itemIDs)
		if err != nil {
			return err
		}

		for _, item := range items {
			eligible := item.IsReturnable
			if replacement {
				eligible = item.IsReplaceable
			}
			if !eligible {
				return ErrItemsNotEligible
			}
		}

		updates := map[string]any{}
		if replacement {
			updates["replacement_status"] = models.RequestPending
			updates["replacement_reason"] = reason
		} else {
			updates["return_status"] = models.RequestPending
			updates["return_reason"] = reason
		}

		return tx.Model(order).Updates(updates).Error
	})
}

// AdvanceStatus moves an order one step along the forward chain, stamping
// the matching timestamp exactly once. Delivered is reachable only through
// OTP verification.
func (s *OrderService) AdvanceStatus(ctx context.Context, orderID uuid.UUID) (*models.Order, error) {
	var advanced *models.Order
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		order, err := lockOrder(tx, orderID)
		if err != nil {
			return err
		}

		now := s.now()
		updates := map[string]any{}
		switch order.Status {
		case models.StatusPending:
			updates["status"] = models.StatusProcessing
			updates["processing_at"] = now
		case models.StatusProcessing:
			updates["status"] = models.StatusShipped
			updates["shipped_at"] = now
		case models.StatusShipped:
			updates["status"] = models.StatusOutForDelivery
			updates["out_for_delivery_at"] = now
		default:
			return ErrStateNotAllowed
		}

		if err := tx.Model(order).Updates(updates).Error; err != nil {
			return err
		}
		advanced = order
		return nil
	})
	if err != nil {
		return nil, err
	}
	return advanced, nil
}

// AssignAgent attaches a delivery agent to an order. Assignment happens at
// most once and is never cleared.
func (s *OrderService) AssignAgent(ctx context.Context, orderID, agentID uuid.UUID) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var agent models.User
		if err := tx.First(&agent, "id = ? AND role = ?", agentID, models.RoleDelivery).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrValidation
			}
			return err
		}

		order, err := lockOrder(tx, orderID)
		if err != nil {
			return err
		}
		if order.DeliveryBoyID != nil {
			return ErrAgentAssigned
		}
		if order.Status == models.StatusCancelled || order.Status == models.StatusDelivered {
			return ErrStateNotAllowed
		}

		return tx.Model(order).Update("delivery_boy_id", agentID).Error
	})
}

// ResolveReturn advances an open return request to its administrative
// outcome. Resolution is monotonic like the main chain: pending moves to
// approved or rejected, approved to refunded, and terminal states never
// change again.
func (s *OrderService) ResolveReturn(ctx context.Context, orderID uuid.UUID, outcome string) error {
	switch outcome {
	case models.RequestApproved, models.RequestRejected, models.RequestRefunded:
	default:
		return ErrValidation
	}

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		order, err := lockOrder(tx, orderID)
		if err != nil {
			return err
		}
		if order.ReturnStatus == nil {
			return ErrStateNotAllowed
		}
		if !validResolution(*order.ReturnStatus, outcome, models.RequestRefunded) {
			return ErrStateNotAllowed
		}
		return tx.Model(order).Update("return_status", outcome).Error
	})
}

// ResolveReplacement advances an open replacement request; same monotonic
// rule with processed as the terminal outcome.
func (s *OrderService) ResolveReplacement(ctx context.Context, orderID uuid.UUID, outcome string) error {
	switch outcome {
	case models.RequestApproved, models.RequestRejected, models.RequestProcessed:
	default:
		return ErrValidation
	}

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		order, err := lockOrder(tx, orderID)
		if err != nil {
			return err
		}
		if order.ReplacementStatus == nil {
			return ErrStateNotAllowed
		}
		if !validResolution(*order.ReplacementStatus, outcome, models.RequestProcessed) {
			return ErrStateNotAllowed
		}
		return tx.Model(order).Update("replacement_status", outcome).Error
	})
}

func validResolution(current, outcome, terminal string) bool {
	switch outcome {
	case models.RequestApproved, models.RequestRejected:
		return current == models.RequestPending
	case terminal:
		return current == models.RequestApproved
	}
	return false
}

func lockOrder(tx *gorm.DB, orderID uuid.UUID) (*models.Order, error) {
	var order models.Order
	if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&order, "id = ?", orderID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrOrderNotFound
		}
		return nil, err
	}
	return &order, nil
}

func targetedItems(tx *gorm.DB, orderID uuid.UUID, itemIDs []uuid.UUID) ([]models.OrderItem, error) {
	var items []models.OrderItem
	if len(itemIDs) == 0 {
		if err := tx.Where("order_id = ?", orderID).Find(&items).Error; err != nil {
			return nil, err
		}
		return items, nil
	}

	if err := tx.Where("order_id = ? AND id IN ?", orderID, itemIDs).Find(&items).Error; err != nil {
		return nil, err
	}
	if len(items) != len(itemIDs) {
		return nil, ErrEntryNotFound
	}
	return items, nil
}

func validCancellationReason(reason string) bool {
	for _, r := range models.CancellationReasons {
		if r == reason {
			return true
		}
	}
	return false
}

func generateOrderNumber() string {
	return fmt.Sprintf("#%d", time.Now().UnixNano()%1000000000)
}
