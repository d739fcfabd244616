package services

import (
	"context"
	"errors"
	"math"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/example/orchid/internal/models"
)

// CouponService validates and prices discount codes. Validation is a pure
// query: no usage counter moves and no redemption row is written until the
// order that spends the coupon is created.
type CouponService struct {
	db  *gorm.DB
	log *zap.Logger
	now func() time.Time
}

// NewCouponService constructs CouponService.
func NewCouponService(db *gorm.DB, log *zap.Logger) *CouponService {
	return &CouponService{db: db, log: log, now: time.Now}
}

// Quote is the outcome of a successful validation.
type Quote struct {
	Coupon   *models.Coupon
	Discount float64
}

// Validate checks the code against the order context. Checks run in order
// and stop at the first failure, each with its own user-facing reason. The
// per-user limit applies only when an account is present; guests skip it.
func (s *CouponService) Validate(ctx context.Context, code string, subtotal float64, accountID *uuid.UUID) (Quote, error) {
	return s.validate(s.db.WithContext(ctx), false, code, subtotal, accountID)
}

// ValidateLocked runs the same checks inside the caller's transaction with
// the coupon row locked, so concurrent redemptions of the same code
// serialize: the second transaction blocks on the lock and re-validates
// against the committed usage counters.
func (s *CouponService) ValidateLocked(tx *gorm.DB, code string, subtotal float64, accountID *uuid.UUID) (Quote, error) {
	return s.validate(tx, true, code, subtotal, accountID)
}

func (s *CouponService) validate(db *gorm.DB, lock bool, code string, subtotal float64, accountID *uuid.UUID) (Quote, error) {
	normalized := strings.ToLower(strings.TrimSpace(code))
	if normalized == "" {
		return Quote{}, ErrCouponNotFound
	}

	query := db
	if lock {
		query = query.Clauses(clause.Locking{Strength: "UPDATE"})
	}

	var coupon models.Coupon
	if err := query.
		Where("lower(code) = ?", normalized).
		First(&coupon).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return Quote{}, ErrCouponNotFound
		}
		return Quote{}, err
	}

	if !coupon.IsActive {
		return Quote{}, eligibility("coupon %q is no longer active", coupon.Code)
	}

	now := s.now()
	if coupon.StartDate != nil && now.Before(*coupon.StartDate) {
		return Quote{}, eligibility("coupon %q is not valid yet", coupon.Code)
	}
	if coupon.EndDate != nil && now.After(*coupon.EndDate) {
		return Quote{}, eligibility("coupon %q has expired", coupon.Code)
	}

	if coupon.UsageLimit != nil && coupon.UsageCount >= *coupon.UsageLimit {
		return Quote{}, eligibility("coupon %q has reached its usage limit", coupon.Code)
	}

	if coupon.MinPurchase != nil && subtotal < *coupon.MinPurchase {
		return Quote{}, eligibility("order total must be at least %.2f to use coupon %q", *coupon.MinPurchase, coupon.Code)
	}

	if accountID != nil && coupon.UsageLimitPerUser != nil {
		var used int64
		if err := db.Model(&models.CouponRedemption{}).
			Where("coupon_id = ? AND user_id = ?", coupon.ID, *accountID).
			Count(&used).Error; err != nil {
			return Quote{}, err
		}
		if used >= int64(*coupon.UsageLimitPerUser) {
			return Quote{}, eligibility("you have already used coupon %q the maximum number of times", coupon.Code)
		}
	}

	return Quote{Coupon: &coupon, Discount: ComputeDiscount(&coupon, subtotal)}, nil
}

// ComputeDiscount prices a coupon against a subtotal. Percentage discounts
// clamp to MaxDiscount when set; fixed discounts never exceed the subtotal.
// The result is rounded half-up to two decimal places.
func ComputeDiscount(coupon *models.Coupon, subtotal float64) float64 {
	var discount float64
	switch coupon.Kind {
	case models.CouponKindPercentage:
		discount = subtotal * coupon.Value / 100
		if coupon.MaxDiscount != nil && discount > *coupon.MaxDiscount {
			discount = *coupon.MaxDiscount
		}
	case models.CouponKindFixed:
		discount = coupon.Value
		if discount > subtotal {
			discount = subtotal
		}
	}

	return roundHalfUp(discount)
}

// Commit records a redemption inside the caller's transaction: increments
// the coupon's usage counter and writes the redemption row. The increment
// re-checks the global limit in the UPDATE itself, so a coupon can never be
// pushed past its cap even if the validation read has gone stale. Any error
// aborts the parent transaction.
func (s *CouponService) Commit(tx *gorm.DB, coupon *models.Coupon, accountID, orderID uuid.UUID) error {
	result := tx.Model(&models.Coupon{}).
		Where("id = ?", coupon.ID).
		Where("usage_limit IS NULL OR usage_count < usage_limit").
		Update("usage_count", gorm.Expr("usage_count + 1"))
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return eligibility("coupon %q has reached its usage limit", coupon.Code)
	}

	redemption := models.CouponRedemption{
		CouponID: coupon.ID,
		UserID:   accountID,
		OrderID:  orderID,
	}
	return tx.Create(&redemption).Error
}

func roundHalfUp(v float64) float64 {
	return math.Floor(v*100+0.5) / 100
}

// CouponInput carries the writable coupon fields for admin CRUD.
type CouponInput struct {
	Code              string
	Kind              string
	Value             float64
	StartDate         *time.Time
	EndDate           *time.Time
	MinPurchase       *float64
	MaxDiscount       *float64
	UsageLimit        *int
	UsageLimitPerUser *int
	IsActive          bool
}

// CreateCoupon registers a new discount code.
func (s *CouponService) CreateCoupon(ctx context.Context, in CouponInput) (*models.Coupon, error) {
	code := strings.ToLower(strings.TrimSpace(in.Code))
	if code == "" || in.Value <= 0 {
		return nil, ErrValidation
	}
	if in.Kind != models.CouponKindPercentage && in.Kind != models.CouponKindFixed {
		return nil, ErrValidation
	}
	if in.Kind == models.CouponKindPercentage && in.Value > 100 {
		return nil, ErrValidation
	}

	coupon := models.Coupon{
		Code:              code,
		Kind:              in.Kind,
		Value:             in.Value,
		StartDate:         in.StartDate,
		EndDate:           in.EndDate,
		MinPurchase:       in.MinPurchase,
		MaxDiscount:       in.MaxDiscount,
		UsageLimit:        in.UsageLimit,
		UsageLimitPerUser: in.UsageLimitPerUser,
		IsActive:          in.IsActive,
	}

	if err := s.db.WithContext(ctx).Create(&coupon).Error; err != nil {
		return nil, err
	}

	return &coupon, nil
}

// ListCoupons returns all coupons, newest first.
func (s *CouponService) ListCoupons(ctx context.Context) ([]models.Coupon, error) {
	var coupons []models.Coupon
	err := s.db.WithContext(ctx).Order("created_at desc").Find(&coupons).Error
	return coupons, err
}

// SetCouponActive flips a coupon's active flag.
func (s *CouponService) SetCouponActive(ctx context.Context, couponID uuid.UUID, active bool) error {
	result := s.db.WithContext(ctx).Model(&models.Coupon{}).
		Where("id = ?", couponID).
		Update("is_active", active)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrCouponNotFound
	}
	return nil
}
