package models

import "github.com/google/uuid"

// Product carries the catalog fields this core reads at cart-add and
// order-creation time. Catalog management itself lives elsewhere.
type Product struct {
	BaseModel
	Slug          string             `gorm:"uniqueIndex" json:"slug"`
	Name          string             `json:"name"`
	BasePrice     float64            `json:"base_price"`
	Currency      string             `json:"currency"`
	IsApproved    bool               `json:"is_approved"`
	IsReturnable  bool               `json:"is_returnable"`
	IsReplaceable bool               `json:"is_replaceable"`
	StockQuantity int                `json:"stock_quantity"`
	Variations    []ProductVariation `json:"variations,omitempty"`
}

type ProductVariation struct {
	BaseModel
	ProductID     uuid.UUID `gorm:"type:uuid;index" json:"product_id"`
	SKU           string    `json:"sku"`
	Label         string    `json:"label"`
	Price         *float64  `json:"price"`
	InStock       bool      `json:"in_stock"`
	StockQuantity int       `json:"stock_quantity"`
	IsActive      bool      `json:"is_active"`
}
