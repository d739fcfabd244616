package services

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/example/orchid/internal/models"
)

// AddressService maintains each account's address book, including the
// single-default invariant: at most one address per account is default, and
// a default swap is atomic.
type AddressService struct {
	db               *gorm.DB
	allowedCities    []string
	allowedCountries []string
	log              *zap.Logger
}

// NewAddressService constructs AddressService. Empty allow-lists disable the
// corresponding restriction.
func NewAddressService(db *gorm.DB, allowedCities, allowedCountries []string, log *zap.Logger) *AddressService {
	return &AddressService{
		db:               db,
		allowedCities:    allowedCities,
		allowedCountries: allowedCountries,
		log:              log,
	}
}

// AddressInput carries the writable address fields.
type AddressInput struct {
	Label       string
	FullName    string
	Phone       string
	AddressLine string
	Apartment   string
	City        string
	District    string
	Country     string
	PostalCode  string
	IsDefault   bool
}

// List returns the account's addresses, default first.
func (s *AddressService) List(ctx context.Context, accountID uuid.UUID) ([]models.UserAddress, error) {
	var addresses []models.UserAddress
	err := s.db.WithContext(ctx).
		Where("user_id = ?", accountID).
		Order("is_default desc, created_at desc").
		Find(&addresses).Error
	return addresses, err
}

// Create adds an address. When the new address is default, every other
// default for the account is cleared in the same transaction.
func (s *AddressService) Create(ctx context.Context, accountID uuid.UUID, in AddressInput) (*models.UserAddress, error) {
	if in.AddressLine == "" || in.City == "" {
		return nil, ErrValidation
	}
	if err := s.checkRegion(in.City, in.Country); err != nil {
		return nil, err
	}

	address := models.UserAddress{
		UserID:      accountID,
		Label:       in.Label,
		FullName:    in.FullName,
		Phone:       in.Phone,
		AddressLine: in.AddressLine,
		Apartment:   in.Apartment,
		City:        in.City,
		District:    in.District,
		Country:     in.Country,
		PostalCode:  in.PostalCode,
		IsDefault:   in.IsDefault,
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if in.IsDefault {
			if err := lockAccount(tx, accountID); err != nil {
				return err
			}
			if err := clearDefaults(tx, accountID); err != nil {
				return err
			}
		}
		return tx.Create(&address).Error
	})
	if err != nil {
		return nil, err
	}

	return &address, nil
}

// Update modifies an address owned by the account. Setting is_default runs
// the same atomic clear-then-set as SetDefault.
func (s *AddressService) Update(ctx context.Context, accountID, addressID uuid.UUID, in AddressInput) error {
	if err := s.checkRegion(in.City, in.Country); err != nil {
		return err
	}

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if in.IsDefault {
			if err := lockAccount(tx, accountID); err != nil {
				return err
			}
		}

		var address models.UserAddress
		if err := tx.First(&address, "id = ? AND user_id = ?", addressID, accountID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrAddressNotFound
			}
			return err
		}

		if in.IsDefault && !address.IsDefault {
			if err := clearDefaults(tx, accountID); err != nil {
				return err
			}
		}

		updates := map[string]any{
			"label":        in.Label,
			"full_name":    in.FullName,
			"phone":        in.Phone,
			"address_line": in.AddressLine,
			"apartment":    in.Apartment,
			"city":         in.City,
			"district":     in.District,
			"country":      in.Country,
			"postal_code":  in.PostalCode,
			"is_default":   in.IsDefault,
		}

		return tx.Model(&address).Updates(updates).Error
	})
}

// Delete removes an address. Deleting the default leaves the account with no
// default; no reassignment happens.
func (s *AddressService) Delete(ctx context.Context, accountID, addressID uuid.UUID) error {
	result := s.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", addressID, accountID).
		Delete(&models.UserAddress{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrAddressNotFound
	}
	return nil
}

// SetDefault atomically makes the target the account's only default
// address.
func (s *AddressService) SetDefault(ctx context.Context, accountID, addressID uuid.UUID) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := lockAccount(tx, accountID); err != nil {
			return err
		}

		var address models.UserAddress
		if err := tx.First(&address, "id = ? AND user_id = ?", addressID, accountID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrAddressNotFound
			}
			return err
		}

		if err := clearDefaults(tx, accountID); err != nil {
			return err
		}

		return tx.Model(&address).Update("is_default", true).Error
	})
}

// lockAccount takes a row lock on the user so default-address swaps for the
// same account serialize. Without it two concurrent swaps can each clear the
// other's not-yet-visible default and commit two defaults.
func lockAccount(tx *gorm.DB, accountID uuid.UUID) error {
	var user models.User
	return tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&user, "id = ?", accountID).Error
}

func clearDefaults(tx *gorm.DB, accountID uuid.UUID) error {
	return tx.Model(&models.UserAddress{}).
		Where("user_id = ? AND is_default = true", accountID).
		Update("is_default", false).Error
}

func (s *AddressService) checkRegion(city, country string) error {
	if len(s.allowedCities) > 0 && city != "" && !containsFold(s.allowedCities, city) {
		return ErrValidation
	}
	if len(s.allowedCountries) > 0 && country != "" && !containsFold(s.allowedCountries, country) {
		return ErrValidation
	}
	return nil
}

func containsFold(values []string, target string) bool {
	for _, v := range values {
		if strings.EqualFold(v, target) {
			return true
		}
	}
	return false
}
