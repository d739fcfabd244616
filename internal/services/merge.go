package services

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/example/orchid/internal/models"
)

// MergeService folds guest-session shopping data into an account. It runs
// exactly once per session, synchronously, during login and registration;
// guest rows are consumed, so a replay with the same session id is a no-op.
type MergeService struct {
	db  *gorm.DB
	log *zap.Logger
}

// NewMergeService constructs MergeService.
func NewMergeService(db *gorm.DB, log *zap.Logger) *MergeService {
	return &MergeService{db: db, log: log}
}

// Merge transfers cart lines, wishlist entries and recently-viewed records
// from the guest session onto the account. An empty session id is a no-op.
func (s *MergeService) Merge(ctx context.Context, accountID uuid.UUID, sessionID string) error {
	if sessionID == "" {
		return nil
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.mergeCart(tx, accountID, sessionID); err != nil {
			return err
		}
		if err := s.mergeWishlist(tx, accountID, sessionID); err != nil {
			return err
		}
		return s.mergeRecentlyViewed(tx, accountID, sessionID)
	})
	if err != nil {
		s.log.Error("guest merge failed",
			zap.String("account_id", accountID.String()),
			zap.Error(err))
		return err
	}

	return nil
}

// mergeCart is quantity-additive: a guest line matching an existing account
// line on (product, variation) adds its quantity to the account line; an
// unmatched guest line is re-owned by the account. The guest rows are read
// under a row lock so two merges of the same session serialize: the second
// blocks, then finds the rows already consumed and adds nothing.
func (s *MergeService) mergeCart(tx *gorm.DB, accountID uuid.UUID, sessionID string) error {
	var guestLines []models.CartItem
	if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("session_id = ? AND user_id IS NULL", sessionID).
		Find(&guestLines).Error; err != nil {
		return err
	}

	for _, line := range guestLines {
		var existing models.CartItem
		query := tx.Where("user_id = ? AND session_id IS NULL AND product_id = ?", accountID, line.ProductID)
		query = scopeVariation(query, line.VariationID)

		err := query.First(&existing).Error
		switch {
		case err == nil:
			if err := tx.Model(&existing).
				Update("quantity", existing.Quantity+line.Quantity).Error; err != nil {
				return err
			}
			if err := tx.Delete(&models.CartItem{}, "id = ?", line.ID).Error; err != nil {
				return err
			}
		case errors.Is(err, gorm.ErrRecordNotFound):
			if err := tx.Model(&models.CartItem{}).
				Where("id = ?", line.ID).
				Updates(map[string]any{"user_id": accountID, "session_id": nil}).Error; err != nil {
				return err
			}
		default:
			return err
		}
	}

	return nil
}

func (s *MergeService) mergeWishlist(tx *gorm.DB, accountID uuid.UUID, sessionID string) error {
	var guestItems []models.WishlistItem
	if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("session_id = ? AND user_id IS NULL", sessionID).
		Find(&guestItems).Error; err != nil {
		return err
	}

	for _, item := range guestItems {
		var count int64
		if err := tx.Model(&models.WishlistItem{}).
			Where("user_id = ? AND session_id IS NULL AND product_id = ?", accountID, item.ProductID).
			Count(&count).Error; err != nil {
			return err
		}

		if count > 0 {
			if err := tx.Delete(&models.WishlistItem{}, "id = ?", item.ID).Error; err != nil {
				return err
			}
			continue
		}

		if err := tx.Model(&models.WishlistItem{}).
			Where("id = ?", item.ID).
			Updates(map[string]any{"user_id": accountID, "session_id": nil}).Error; err != nil {
			return err
		}
	}

	return nil
}

// mergeRecentlyViewed upserts account records keyed on (account, product).
// The guest timestamp wins when present; all guest rows for the session are
// deleted afterwards.
func (s *MergeService) mergeRecentlyViewed(tx *gorm.DB, accountID uuid.UUID, sessionID string) error {
	var guestItems []models.RecentlyViewedItem
	if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("session_id = ? AND user_id IS NULL", sessionID).
		Find(&guestItems).Error; err != nil {
		return err
	}

	for _, item := range guestItems {
		viewedAt := item.ViewedAt
		if viewedAt.IsZero() {
			viewedAt = time.Now()
		}

		var existing models.RecentlyViewedItem
		err := tx.Where("user_id = ? AND session_id IS NULL AND product_id = ?", accountID, item.ProductID).
			First(&existing).Error
		switch {
		case err == nil:
			if err := tx.Model(&existing).Update("viewed_at", viewedAt).Error; err != nil {
				return err
			}
		case errors.Is(err, gorm.ErrRecordNotFound):
			uid := accountID
			record := models.RecentlyViewedItem{
				UserID:    &uid,
				ProductID: item.ProductID,
				ViewedAt:  viewedAt,
			}
			if err := tx.Create(&record).Error; err != nil {
				return err
			}
		default:
			return err
		}
	}

	return tx.Where("session_id = ? AND user_id IS NULL", sessionID).
		Delete(&models.RecentlyViewedItem{}).Error
}

func scopeVariation(db *gorm.DB, variationID *uuid.UUID) *gorm.DB {
	if variationID == nil {
		return db.Where("variation_id IS NULL")
	}
	return db.Where("variation_id = ?", *variationID)
}
