package models

import "github.com/google/uuid"

// UserAddress is a delivery address owned by exactly one account. At most
// one address per account carries IsDefault; the swap is done in a single
// transaction by the address service.
type UserAddress struct {
	BaseModel
	UserID      uuid.UUID `gorm:"type:uuid;index" json:"user_id"`
	Label       string    `json:"label"`
	FullName    string    `json:"full_name"`
	Phone       string    `json:"phone"`
	AddressLine string    `json:"address_line"`
	Apartment   string    `json:"apartment"`
	City        string    `json:"city"`
	District    string    `json:"district"`
	Country     string    `json:"country"`
	PostalCode  string    `json:"postal_code"`
	IsDefault   bool      `json:"is_default"`
}
