package services

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/example/orchid/internal/models"
)

// RecentlyViewedService keeps a capped, per-owner history of viewed
// products. One row per (owner, product); repeat views refresh the
// timestamp.
type RecentlyViewedService struct {
	db    *gorm.DB
	limit int
	log   *zap.Logger
}

// NewRecentlyViewedService constructs RecentlyViewedService.
func NewRecentlyViewedService(db *gorm.DB, limit int, log *zap.Logger) *RecentlyViewedService {
	if limit <= 0 {
		limit = 20
	}
	return &RecentlyViewedService{db: db, limit: limit, log: log}
}

// Record upserts a view for (owner, product) and trims history beyond the
// configured limit.
func (s *RecentlyViewedService) Record(ctx context.Context, owner models.Owner, productID uuid.UUID) error {
	now := time.Now()

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing models.RecentlyViewedItem
		err := owner.Scope(tx).Where("product_id = ?", productID).First(&existing).Error
		switch {
		case err == nil:
			if err := tx.Model(&existing).Update("viewed_at", now).Error; err != nil {
				return err
			}
		case errors.Is(err, gorm.ErrRecordNotFound):
			record := models.RecentlyViewedItem{ProductID: productID, ViewedAt: now}
			owner.Stamp(&record.UserID, &record.SessionID)
			if err := tx.Create(&record).Error; err != nil {
				return err
			}
		default:
			return err
		}

		var stale []models.RecentlyViewedItem
		if err := owner.Scope(tx).
			Order("viewed_at desc").
			Offset(s.limit).
			Find(&stale).Error; err != nil {
			return err
		}
		for _, item := range stale {
			if err := tx.Delete(&models.RecentlyViewedItem{}, "id = ?", item.ID).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

// List returns the owner's view history, most recent first.
func (s *RecentlyViewedService) List(ctx context.Context, owner models.Owner) ([]models.RecentlyViewedItem, error) {
	var items []models.RecentlyViewedItem
	err := owner.Scope(s.db.WithContext(ctx)).
		Order("viewed_at desc").
		Limit(s.limit).
		Find(&items).Error
	return items, err
}
