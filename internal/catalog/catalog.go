// Package catalog is the narrow boundary to the product catalog. The core
// queries it at cart-add and order-creation time and never caches results
// across requests.
package catalog

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/example/orchid/internal/models"
)

// ErrNotFound is returned when the referenced product or variation does not
// exist in the catalog.
var ErrNotFound = errors.New("catalog: not found")

// Product is the slice of catalog data the transactional core reads.
type Product struct {
	ID            uuid.UUID
	Name          string
	Price         float64
	Currency      string
	IsApproved    bool
	IsReturnable  bool
	IsReplaceable bool
	Stock         int
}

// Variation is a purchasable variant of a product.
type Variation struct {
	ID            uuid.UUID
	ProductID     uuid.UUID
	Label         string
	Price         *float64
	InStock       bool
	StockQuantity int
}

// Provider is the catalog collaborator interface.
type Provider interface {
	GetProduct(ctx context.Context, id uuid.UUID) (Product, error)
	GetVariation(ctx context.Context, id uuid.UUID) (Variation, error)
}

// GormProvider serves catalog lookups from the shared database.
type GormProvider struct {
	db *gorm.DB
}

// NewGormProvider constructs a database-backed catalog provider.
func NewGormProvider(db *gorm.DB) *GormProvider {
	return &GormProvider{db: db}
}

func (p *GormProvider) GetProduct(ctx context.Context, id uuid.UUID) (Product, error) {
	var product models.Product
	if err := p.db.WithContext(ctx).First(&product, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return Product{}, fmt.Errorf("%w: product %s", ErrNotFound, id)
		}
		return Product{}, err
	}

	return Product{
		ID:            product.ID,
		Name:          product.Name,
		Price:         product.BasePrice,
		Currency:      product.Currency,
		IsApproved:    product.IsApproved,
		IsReturnable:  product.IsReturnable,
		IsReplaceable: product.IsReplaceable,
		Stock:         product.StockQuantity,
	}, nil
}

func (p *GormProvider) GetVariation(ctx context.Context, id uuid.UUID) (Variation, error) {
	var variation models.ProductVariation
	if err := p.db.WithContext(ctx).First(&variation, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return Variation{}, fmt.Errorf("%w: variation %s", ErrNotFound, id)
		}
		return Variation{}, err
	}

	return Variation{
		ID:            variation.ID,
		ProductID:     variation.ProductID,
		Label:         variation.Label,
		Price:         variation.Price,
		InStock:       variation.InStock && variation.IsActive,
		StockQuantity: variation.StockQuantity,
	}, nil
}
