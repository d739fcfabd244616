package services

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/example/orchid/internal/catalog"
	"github.com/example/orchid/internal/models"
)

// CartService manages cart lines for accounts and guest sessions. A cart
// holds at most one line per (product, variation) pair per owner; repeat
// adds update the quantity instead of duplicating the line.
type CartService struct {
	db      *gorm.DB
	catalog catalog.Provider
	log     *zap.Logger
}

// NewCartService constructs CartService.
func NewCartService(db *gorm.DB, provider catalog.Provider, log *zap.Logger) *CartService {
	return &CartService{db: db, catalog: provider, log: log}
}

// AddInput describes a cart add request.
type AddInput struct {
	ProductID   uuid.UUID
	VariationID *uuid.UUID
	Quantity    int
}

// Add puts a product line in the owner's cart. The unit price recorded on
// the line is informational; orders re-price from the catalog at creation.
func (s *CartService) Add(ctx context.Context, owner models.Owner, in AddInput) (*models.CartItem, error) {
	if in.Quantity <= 0 {
		return nil, ErrValidation
	}

	product, err := s.catalog.GetProduct(ctx, in.ProductID)
	if err != nil {
		if errors.Is(err, catalog.ErrNotFound) {
			return nil, ErrProductUnavailable
		}
		return nil, err
	}
	if !product.IsApproved {
		return nil, ErrProductUnavailable
	}

	unitPrice := product.Price
	if in.VariationID != nil {
		variation, err := s.catalog.GetVariation(ctx, *in.VariationID)
		if err != nil {
			if errors.Is(err, catalog.ErrNotFound) {
				return nil, ErrProductUnavailable
			}
			return nil, err
		}
		if variation.ProductID != in.ProductID {
			return nil, ErrValidation
		}
		if !variation.InStock || variation.StockQuantity <= 0 {
			return nil, ErrVariationOutOfStock
		}
		if variation.Price != nil {
			unitPrice = *variation.Price
		}
	}

	var item *models.CartItem
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing models.CartItem
		query := owner.Scope(tx).Where("product_id = ?", in.ProductID)
		query = scopeVariation(query, in.VariationID)

		findErr := query.First(&existing).Error
		switch {
		case findErr == nil:
			existing.Quantity += in.Quantity
			existing.UnitPrice = unitPrice
			if err := tx.Save(&existing).Error; err != nil {
				return err
			}
			item = &existing
			return nil
		case errors.Is(findErr, gorm.ErrRecordNotFound):
			line := models.CartItem{
				ProductID:   in.ProductID,
				VariationID: in.VariationID,
				Quantity:    in.Quantity,
				UnitPrice:   unitPrice,
			}
			owner.Stamp(&line.UserID, &line.SessionID)
			if err := tx.Create(&line).Error; err != nil {
				return err
			}
			item = &line
			return nil
		default:
			return findErr
		}
	})
	if err != nil {
		return nil, err
	}

	return item, nil
}

// UpdateQuantity sets the quantity of an existing cart line. Zero removes
// the line.
func (s *CartService) UpdateQuantity(ctx context.Context, owner models.Owner, itemID uuid.UUID, quantity int) error {
	if quantity < 0 {
		return ErrValidation
	}

	if quantity == 0 {
		return s.Remove(ctx, owner, itemID)
	}

	result := owner.Scope(s.db.WithContext(ctx).Model(&models.CartItem{})).
		Where("id = ?", itemID).
		Update("quantity", quantity)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrEntryNotFound
	}
	return nil
}

// Remove deletes a cart line owned by the caller.
func (s *CartService) Remove(ctx context.Context, owner models.Owner, itemID uuid.UUID) error {
	result := owner.Scope(s.db.WithContext(ctx)).
		Where("id = ?", itemID).
		Delete(&models.CartItem{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrEntryNotFound
	}
	return nil
}

// List returns the owner's cart lines, oldest first.
func (s *CartService) List(ctx context.Context, owner models.Owner) ([]models.CartItem, error) {
	var items []models.CartItem
	err := owner.Scope(s.db.WithContext(ctx)).
		Order("created_at asc").
		Find(&items).Error
	return items, err
}

// Clear removes every cart line for the owner.
func (s *CartService) Clear(ctx context.Context, owner models.Owner) error {
	return owner.Scope(s.db.WithContext(ctx)).
		Delete(&models.CartItem{}).Error
}
