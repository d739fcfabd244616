package models

import (
	"time"

	"github.com/google/uuid"
)

// Order statuses. The forward chain is pending → processing → shipped →
// out_for_delivery → delivered; cancelled is reachable from pending only.
// StatusCompleted survives for rows imported from the previous system.
const (
	StatusPending        = "pending"
	StatusProcessing     = "processing"
	StatusShipped        = "shipped"
	StatusOutForDelivery = "out_for_delivery"
	StatusDelivered      = "delivered"
	StatusCompleted      = "completed"
	StatusCancelled      = "cancelled"
)

// Return and replacement sub-flow states.
const (
	RequestPending   = "pending"
	RequestApproved  = "approved"
	RequestRejected  = "rejected"
	RequestRefunded  = "refunded"
	RequestProcessed = "processed"
)

// CancellationReasons is the fixed set a customer may pick from.
var CancellationReasons = []string{
	"ordered_by_mistake",
	"found_better_price",
	"delivery_too_slow",
	"changed_mind",
	"other",
}

// Order is placed by an account and mutated only through the fulfillment
// state machine. The shipping address is snapshotted onto the row so later
// address-book edits cannot alter a placed order.
type Order struct {
	BaseModel
	UserID      uuid.UUID `gorm:"type:uuid;index" json:"user_id"`
	User        *User     `json:"user,omitempty"`
	OrderNumber string    `gorm:"uniqueIndex" json:"order_number"`
	Status      string    `json:"status"`
	PlacedAt    time.Time `json:"placed_at"`

	Subtotal float64    `json:"subtotal"`
	Discount float64    `json:"discount"`
	Total    float64    `json:"total"`
	Currency string     `json:"currency"`
	CouponID *uuid.UUID `gorm:"type:uuid" json:"coupon_id"`

	ShippingFullName    string `json:"shipping_full_name"`
	ShippingPhone       string `json:"shipping_phone"`
	ShippingAddressLine string `json:"shipping_address_line"`
	ShippingApartment   string `json:"shipping_apartment"`
	ShippingCity        string `json:"shipping_city"`
	ShippingDistrict    string `json:"shipping_district"`
	ShippingCountry     string `json:"shipping_country"`
	ShippingPostalCode  string `json:"shipping_postal_code"`

	CancellationReason *string `json:"cancellation_reason"`
	CancellationNote   string  `json:"cancellation_note"`

	ReturnStatus      *string `json:"return_status"`
	ReturnReason      string  `json:"return_reason"`
	ReplacementStatus *string `json:"replacement_status"`
	ReplacementReason string  `json:"replacement_reason"`

	DeliveryBoyID *uuid.UUID `gorm:"type:uuid" json:"delivery_boy_id"`
	OTPCode       *string    `json:"-"`
	OTPVerified   bool       `json:"otp_verified"`

	ProcessingAt     *time.Time `json:"processing_at"`
	ShippedAt        *time.Time `json:"shipped_at"`
	OutForDeliveryAt *time.Time `json:"out_for_delivery_at"`
	DeliveredAt      *time.Time `json:"delivered_at"`
	CancelledAt      *time.Time `json:"cancelled_at"`

	Notes string      `json:"notes"`
	Items []OrderItem `json:"items,omitempty"`
}

// OrderItem snapshots a product line at order time. Price and the
// return/replacement eligibility flags are copied from the catalog when the
// order is created and never re-read.
type OrderItem struct {
	BaseModel
	OrderID       uuid.UUID  `gorm:"type:uuid;index" json:"order_id"`
	ProductID     uuid.UUID  `gorm:"type:uuid" json:"product_id"`
	VariationID   *uuid.UUID `gorm:"type:uuid" json:"variation_id"`
	ProductName   string     `json:"product_name"`
	VariantLabel  string     `json:"variant_label"`
	Quantity      int        `json:"quantity"`
	UnitPrice     float64    `json:"unit_price"`
	LineTotal     float64    `json:"line_total"`
	IsReturnable  bool       `json:"is_returnable"`
	IsReplaceable bool       `json:"is_replaceable"`
}
