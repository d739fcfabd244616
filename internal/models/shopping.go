package models

import (
	"time"

	"github.com/google/uuid"
)

// CartItem is one cart line owned by an account or a guest session. For a
// given owner and (product, variation) pair at most one line exists; repeat
// adds update the quantity.
type CartItem struct {
	BaseModel
	UserID      *uuid.UUID `gorm:"type:uuid;index" json:"user_id"`
	SessionID   *string    `gorm:"index" json:"session_id"`
	ProductID   uuid.UUID  `gorm:"type:uuid;index" json:"product_id"`
	VariationID *uuid.UUID `gorm:"type:uuid" json:"variation_id"`
	Quantity    int        `json:"quantity"`
	UnitPrice   float64    `json:"unit_price"`
}

// Owner reconstructs the tagged owner from the stored columns.
func (i CartItem) Owner() Owner {
	if i.UserID != nil {
		return AccountOwner(*i.UserID)
	}
	if i.SessionID != nil {
		return GuestOwner(*i.SessionID)
	}
	return Owner{}
}

// WishlistItem marks a product as wished by an account or guest session.
type WishlistItem struct {
	BaseModel
	UserID    *uuid.UUID `gorm:"type:uuid;index" json:"user_id"`
	SessionID *string    `gorm:"index" json:"session_id"`
	ProductID uuid.UUID  `gorm:"type:uuid;index" json:"product_id"`
}

func (i WishlistItem) Owner() Owner {
	if i.UserID != nil {
		return AccountOwner(*i.UserID)
	}
	if i.SessionID != nil {
		return GuestOwner(*i.SessionID)
	}
	return Owner{}
}

// RecentlyViewedItem records the last time an owner looked at a product.
type RecentlyViewedItem struct {
	BaseModel
	UserID    *uuid.UUID `gorm:"type:uuid;index" json:"user_id"`
	SessionID *string    `gorm:"index" json:"session_id"`
	ProductID uuid.UUID  `gorm:"type:uuid;index" json:"product_id"`
	ViewedAt  time.Time  `json:"viewed_at"`
}

func (i RecentlyViewedItem) Owner() Owner {
	if i.UserID != nil {
		return AccountOwner(*i.UserID)
	}
	if i.SessionID != nil {
		return GuestOwner(*i.SessionID)
	}
	return Owner{}
}
