package services

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/nanorand/nanorand"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/example/orchid/internal/models"
)

// OTPService gates the terminal delivered transition behind a one-time
// 6-digit code. Display of the code to the customer is a collaborator
// concern; this service only stores and checks it.
type OTPService struct {
	db  *gorm.DB
	log *zap.Logger
	gen func() (string, error)
	now func() time.Time
}

// NewOTPService constructs OTPService.
func NewOTPService(db *gorm.DB, log *zap.Logger) *OTPService {
	return &OTPService{
		db:  db,
		log: log,
		gen: func() (string, error) { return nanorand.Gen(6) },
		now: time.Now,
	}
}

// Generate stores a fresh code on an out-for-delivery order, replacing any
// prior unconsumed code. Collisions with earlier codes for the same order
// are acceptable; uniqueness across time is not required.
func (s *OTPService) Generate(ctx context.Context, orderID uuid.UUID) (string, error) {
	var code string
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		order, err := lockOrder(tx, orderID)
		if err != nil {
			return err
		}
		if order.OTPVerified {
			return ErrOTPAlreadyVerified
		}
		if order.Status != models.StatusOutForDelivery {
			return ErrStateNotAllowed
		}

		code, err = s.gen()
		if err != nil {
			return err
		}

		return tx.Model(order).Update("otp_code", code).Error
	})
	if err != nil {
		return "", err
	}

	return code, nil
}

// Verify confirms physical delivery. Only the assigned agent may verify; a
// correct code flips otp_verified, advances the order to delivered and
// stamps delivered_at in one transaction. The row lock serializes racing
// verifies so exactly one succeeds.
func (s *OTPService) Verify(ctx context.Context, orderID uuid.UUID, submitted string, agentID uuid.UUID) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		order, err := lockOrder(tx, orderID)
		if err != nil {
			return err
		}
		if order.OTPVerified {
			return ErrOTPAlreadyVerified
		}
		if order.DeliveryBoyID == nil || *order.DeliveryBoyID != agentID {
			return ErrNotAssignedAgent
		}
		if order.OTPCode == nil || submitted == "" || *order.OTPCode != submitted {
			return ErrInvalidOTP
		}

		return tx.Model(order).Updates(map[string]any{
			"otp_verified": true,
			"status":       models.StatusDelivered,
			"delivered_at": s.now(),
		}).Error
	})
	if err != nil {
		return err
	}

	s.log.Info("delivery confirmed",
		zap.String("order_id", orderID.String()),
		zap.String("agent_id", agentID.String()))

	return nil
}
