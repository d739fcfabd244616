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

// WishlistService manages wishlist entries for accounts and guest sessions.
// Account-owned and session-owned entries never cross-match.
type WishlistService struct {
	db      *gorm.DB
	catalog catalog.Provider
	log     *zap.Logger
}

// NewWishlistService constructs WishlistService.
func NewWishlistService(db *gorm.DB, provider catalog.Provider, log *zap.Logger) *WishlistService {
	return &WishlistService{db: db, catalog: provider, log: log}
}

// Add puts a product on the owner's wishlist. Fails when the product is not
// approved for sale or when the owner already wished it.
func (s *WishlistService) Add(ctx context.Context, owner models.Owner, productID uuid.UUID) (*models.WishlistItem, error) {
	product, err := s.catalog.GetProduct(ctx, productID)
	if err != nil {
		if errors.Is(err, catalog.ErrNotFound) {
			return nil, ErrProductUnavailable
		}
		return nil, err
	}
	if !product.IsApproved {
		return nil, ErrProductUnavailable
	}

	var count int64
	if err := owner.Scope(s.db.WithContext(ctx).Model(&models.WishlistItem{})).
		Where("product_id = ?", productID).
		Count(&count).Error; err != nil {
		return nil, err
	}
	if count > 0 {
		return nil, ErrDuplicateEntry
	}

	item := models.WishlistItem{ProductID: productID}
	owner.Stamp(&item.UserID, &item.SessionID)

	if err := s.db.WithContext(ctx).Create(&item).Error; err != nil {
		return nil, err
	}

	return &item, nil
}

// Remove deletes the owner's wishlist entry for the product.
func (s *WishlistService) Remove(ctx context.Context, owner models.Owner, productID uuid.UUID) error {
	result := owner.Scope(s.db.WithContext(ctx)).
		Where("product_id = ?", productID).
		Delete(&models.WishlistItem{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrEntryNotFound
	}
	return nil
}

// Check reports whether the owner has the product wished.
func (s *WishlistService) Check(ctx context.Context, owner models.Owner, productID uuid.UUID) (bool, error) {
	var count int64
	err := owner.Scope(s.db.WithContext(ctx).Model(&models.WishlistItem{})).
		Where("product_id = ?", productID).
		Count(&count).Error
	return count > 0, err
}

// List returns all wishlist entries for the owner, newest first.
func (s *WishlistService) List(ctx context.Context, owner models.Owner) ([]models.WishlistItem, error) {
	var items []models.WishlistItem
	err := owner.Scope(s.db.WithContext(ctx)).
		Order("created_at desc").
		Find(&items).Error
	return items, err
}

// Clear removes every wishlist entry for the owner.
func (s *WishlistService) Clear(ctx context.Context, owner models.Owner) error {
	return owner.Scope(s.db.WithContext(ctx)).
		Delete(&models.WishlistItem{}).Error
}

// Count returns the number of wishlist entries for the owner.
func (s *WishlistService) Count(ctx context.Context, owner models.Owner) (int64, error) {
	var count int64
	err := owner.Scope(s.db.WithContext(ctx).Model(&models.WishlistItem{})).
		Count(&count).Error
	return count, err
}
