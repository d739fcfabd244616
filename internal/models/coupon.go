package models

import (
	"time"

	"github.com/google/uuid"
)

// Coupon kinds.
const (
	CouponKindPercentage = "percentage"
	CouponKindFixed      = "fixed"
)

// Coupon is a discount code. Optional bounds are pointers; nil means the
// bound is not enforced.
type Coupon struct {
	BaseModel
	Code              string     `gorm:"uniqueIndex" json:"code"`
	Kind              string     `json:"kind"`
	Value             float64    `json:"value"`
	StartDate         *time.Time `json:"start_date"`
	EndDate           *time.Time `json:"end_date"`
	MinPurchase       *float64   `json:"min_purchase"`
	MaxDiscount       *float64   `json:"max_discount"`
	UsageLimit        *int       `json:"usage_limit"`
	UsageCount        int        `json:"usage_count"`
	UsageLimitPerUser *int       `json:"usage_limit_per_user"`
	IsActive          bool       `gorm:"default:true" json:"is_active"`
}

// CouponRedemption records one committed use of a coupon by an account on an
// order. Written only inside the order-creation transaction.
type CouponRedemption struct {
	BaseModel
	CouponID uuid.UUID `gorm:"type:uuid;index" json:"coupon_id"`
	UserID   uuid.UUID `gorm:"type:uuid;index" json:"user_id"`
	OrderID  uuid.UUID `gorm:"type:uuid;uniqueIndex" json:"order_id"`
}
