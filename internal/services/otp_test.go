package services_test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/example/orchid/internal/models"
	"github.com/example/orchid/internal/services"
)

func assignAgent(t *testing.T, db *gorm.DB, orderID, agentID uuid.UUID) {
	t.Helper()
	if err := db.Model(&models.Order{}).Where("id = ?", orderID).
		Update("delivery_boy_id", agentID).Error; err != nil {
		t.Fatalf("assign agent: %v", err)
	}
}

func TestDeliveryOTP(t *testing.T) {
	db := setupDB(t)
	otpSvc := services.NewOTPService(db, zap.NewNop())
	ctx := context.Background()

	user := seedUser(t, db, models.RoleCustomer)
	agent := seedUser(t, db, models.RoleDelivery)

	t.Run("generate then verify once", func(t *testing.T) {
		order := seedBareOrder(t, db, user.ID, models.StatusOutForDelivery)
		assignAgent(t, db, order.ID, agent.ID)

		code, err := otpSvc.Generate(ctx, order.ID)
		require.NoError(t, err)
		require.Len(t, code, 6)

		require.NoError(t, otpSvc.Verify(ctx, order.ID, code, agent.ID))

		var reloaded models.Order
		require.NoError(t, db.First(&reloaded, "id = ?", order.ID).Error)
		assert.Equal(t, models.StatusDelivered, reloaded.Status)
		assert.True(t, reloaded.OTPVerified)
		assert.NotNil(t, reloaded.DeliveredAt)

		// the code is single-use
		err = otpSvc.Verify(ctx, order.ID, code, agent.ID)
		require.ErrorIs(t, err, services.ErrOTPAlreadyVerified)
	})

	t.Run("regenerate replaces the prior code", func(t *testing.T) {
		order := seedBareOrder(t, db, user.ID, models.StatusOutForDelivery)
		assignAgent(t, db, order.ID, agent.ID)

		first, err := otpSvc.Generate(ctx, order.ID)
		require.NoError(t, err)
		second, err := otpSvc.Generate(ctx, order.ID)
		require.NoError(t, err)

		if first != second {
			err = otpSvc.Verify(ctx, order.ID, first, agent.ID)
			require.ErrorIs(t, err, services.ErrInvalidOTP)
		}
		require.NoError(t, otpSvc.Verify(ctx, order.ID, second, agent.ID))
	})

	t.Run("wrong code leaves the order untouched", func(t *testing.T) {
		order := seedBareOrder(t, db, user.ID, models.StatusOutForDelivery)
		assignAgent(t, db, order.ID, agent.ID)

		code, err := otpSvc.Generate(ctx, order.ID)
		require.NoError(t, err)

		wrong := "000000"
		if wrong == code {
			wrong = "111111"
		}
		err = otpSvc.Verify(ctx, order.ID, wrong, agent.ID)
		require.ErrorIs(t, err, services.ErrInvalidOTP)

		var reloaded models.Order
		require.NoError(t, db.First(&reloaded, "id = ?", order.ID).Error)
		assert.False(t, reloaded.OTPVerified)
		assert.Equal(t, models.StatusOutForDelivery, reloaded.Status)
	})

	t.Run("only the assigned agent verifies", func(t *testing.T) {
		order := seedBareOrder(t, db, user.ID, models.StatusOutForDelivery)
		assignAgent(t, db, order.ID, agent.ID)

		code, err := otpSvc.Generate(ctx, order.ID)
		require.NoError(t, err)

		other := seedUser(t, db, models.RoleDelivery)
		err = otpSvc.Verify(ctx, order.ID, code, other.ID)
		require.ErrorIs(t, err, services.ErrNotAssignedAgent)
	})

	t.Run("unassigned order rejects verification", func(t *testing.T) {
		order := seedBareOrder(t, db, user.ID, models.StatusOutForDelivery)
		code, err := otpSvc.Generate(ctx, order.ID)
		require.NoError(t, err)

		err = otpSvc.Verify(ctx, order.ID, code, agent.ID)
		require.ErrorIs(t, err, services.ErrNotAssignedAgent)
	})

	t.Run("generate requires out_for_delivery", func(t *testing.T) {
		order := seedBareOrder(t, db, user.ID, models.StatusShipped)
		_, err := otpSvc.Generate(ctx, order.ID)
		require.ErrorIs(t, err, services.ErrStateNotAllowed)
	})

	t.Run("empty submission never matches", func(t *testing.T) {
		order := seedBareOrder(t, db, user.ID, models.StatusOutForDelivery)
		assignAgent(t, db, order.ID, agent.ID)

		err := otpSvc.Verify(ctx, order.ID, "", agent.ID)
		require.ErrorIs(t, err, services.ErrInvalidOTP)
	})
}
