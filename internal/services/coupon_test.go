package services_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/example/orchid/internal/models"
	"github.com/example/orchid/internal/services"
)

func TestComputeDiscount(t *testing.T) {
	maxDiscount := 100.0

	t.Run("percentage caps at max discount", func(t *testing.T) {
		coupon := &models.Coupon{
			Kind:        models.CouponKindPercentage,
			Value:       50,
			MaxDiscount: &maxDiscount,
		}
		assert.Equal(t, 100.0, services.ComputeDiscount(coupon, 500))
	})

	t.Run("percentage without cap", func(t *testing.T) {
		coupon := &models.Coupon{Kind: models.CouponKindPercentage, Value: 10}
		assert.Equal(t, 25.0, services.ComputeDiscount(coupon, 250))
	})

	t.Run("fixed clamps to subtotal", func(t *testing.T) {
		coupon := &models.Coupon{Kind: models.CouponKindFixed, Value: 80}
		assert.Equal(t, 50.0, services.ComputeDiscount(coupon, 50))
	})

	t.Run("fixed below subtotal", func(t *testing.T) {
		coupon := &models.Coupon{Kind: models.CouponKindFixed, Value: 30}
		assert.Equal(t, 30.0, services.ComputeDiscount(coupon, 50))
	})

	t.Run("half up rounding", func(t *testing.T) {
		coupon := &models.Coupon{Kind: models.CouponKindPercentage, Value: 15}
		// 33.33 * 15% = 4.9995 -> 5.00
		assert.Equal(t, 5.0, services.ComputeDiscount(coupon, 33.33))
	})
}

func TestCouponValidate(t *testing.T) {
	db := setupDB(t)
	log := zap.NewNop()
	couponSvc := services.NewCouponService(db, log)
	ctx := context.Background()

	user := seedUser(t, db, models.RoleCustomer)

	t.Run("unknown code", func(t *testing.T) {
		_, err := couponSvc.Validate(ctx, "NOPE", 100, nil)
		require.ErrorIs(t, err, services.ErrCouponNotFound)
	})

	t.Run("code is normalized", func(t *testing.T) {
		coupon := models.Coupon{Code: "spring10", Kind: models.CouponKindPercentage, Value: 10, IsActive: true}
		require.NoError(t, db.Create(&coupon).Error)

		quote, err := couponSvc.Validate(ctx, "  SPRING10  ", 200, nil)
		require.NoError(t, err)
		assert.Equal(t, 20.0, quote.Discount)
	})

	t.Run("inactive coupon", func(t *testing.T) {
		coupon := models.Coupon{Code: "inactive", Kind: models.CouponKindFixed, Value: 5, IsActive: false}
		require.NoError(t, db.Create(&coupon).Error)

		_, err := couponSvc.Validate(ctx, "inactive", 100, nil)
		var eligibility *services.EligibilityError
		require.ErrorAs(t, err, &eligibility)
		assert.NotEmpty(t, eligibility.Reason)
	})

	t.Run("expired coupon", func(t *testing.T) {
		ended := time.Now().Add(-time.Hour)
		coupon := models.Coupon{Code: "expired", Kind: models.CouponKindFixed, Value: 5, IsActive: true, EndDate: &ended}
		require.NoError(t, db.Create(&coupon).Error)

		_, err := couponSvc.Validate(ctx, "expired", 100, nil)
		var eligibility *services.EligibilityError
		require.ErrorAs(t, err, &eligibility)
	})

	t.Run("minimum purchase", func(t *testing.T) {
		minPurchase := 150.0
		coupon := models.Coupon{Code: "big-orders", Kind: models.CouponKindFixed, Value: 20, IsActive: true, MinPurchase: &minPurchase}
		require.NoError(t, db.Create(&coupon).Error)

		_, err := couponSvc.Validate(ctx, "big-orders", 100, nil)
		var eligibility *services.EligibilityError
		require.ErrorAs(t, err, &eligibility)

		_, err = couponSvc.Validate(ctx, "big-orders", 200, nil)
		require.NoError(t, err)
	})

	t.Run("global usage limit", func(t *testing.T) {
		limit := 2
		coupon := models.Coupon{Code: "limited", Kind: models.CouponKindFixed, Value: 5, IsActive: true, UsageLimit: &limit, UsageCount: 2}
		require.NoError(t, db.Create(&coupon).Error)

		_, err := couponSvc.Validate(ctx, "limited", 100, nil)
		var eligibility *services.EligibilityError
		require.ErrorAs(t, err, &eligibility)
	})

	t.Run("per user limit skipped for guests", func(t *testing.T) {
		perUser := 1
		coupon := models.Coupon{Code: "once-each", Kind: models.CouponKindFixed, Value: 5, IsActive: true, UsageLimitPerUser: &perUser}
		require.NoError(t, db.Create(&coupon).Error)

		prior := seedBareOrder(t, db, user.ID, models.StatusDelivered)
		redemption := models.CouponRedemption{CouponID: coupon.ID, UserID: user.ID, OrderID: prior.ID}
		require.NoError(t, db.Create(&redemption).Error)

		_, err := couponSvc.Validate(ctx, "once-each", 100, &user.ID)
		var eligibility *services.EligibilityError
		require.ErrorAs(t, err, &eligibility)

		// guest context skips the per-user check
		_, err = couponSvc.Validate(ctx, "once-each", 100, nil)
		require.NoError(t, err)
	})

	t.Run("commit never pushes past the limit", func(t *testing.T) {
		// a stale validation read must not let the counter exceed the cap
		limit := 1
		coupon := models.Coupon{Code: "exhausted", Kind: models.CouponKindFixed, Value: 5, IsActive: true, UsageLimit: &limit, UsageCount: 1}
		require.NoError(t, db.Create(&coupon).Error)

		order := seedBareOrder(t, db, user.ID, models.StatusPending)
		err := db.Transaction(func(tx *gorm.DB) error {
			return couponSvc.Commit(tx, &coupon, user.ID, order.ID)
		})
		var eligibility *services.EligibilityError
		require.ErrorAs(t, err, &eligibility)

		var reloaded models.Coupon
		require.NoError(t, db.First(&reloaded, "id = ?", coupon.ID).Error)
		assert.Equal(t, 1, reloaded.UsageCount)

		var redemptions int64
		require.NoError(t, db.Model(&models.CouponRedemption{}).
			Where("coupon_id = ?", coupon.ID).Count(&redemptions).Error)
		assert.Zero(t, redemptions)
	})

	t.Run("validation never mutates usage count", func(t *testing.T) {
		coupon := models.Coupon{Code: "pure-check", Kind: models.CouponKindPercentage, Value: 5, IsActive: true}
		require.NoError(t, db.Create(&coupon).Error)

		for i := 0; i < 5; i++ {
			_, err := couponSvc.Validate(ctx, "pure-check", 100, &user.ID)
			require.NoError(t, err)
		}

		var reloaded models.Coupon
		require.NoError(t, db.First(&reloaded, "id = ?", coupon.ID).Error)
		assert.Equal(t, 0, reloaded.UsageCount)

		var redemptions int64
		require.NoError(t, db.Model(&models.CouponRedemption{}).
			Where("coupon_id = ?", coupon.ID).Count(&redemptions).Error)
		assert.Zero(t, redemptions)
	})
}
