package services_test

import (
	"context"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/example/orchid/internal/models"
	"github.com/example/orchid/internal/services"
)

func TestAddressDefaultInvariant(t *testing.T) {
	db := setupDB(t)
	addressSvc := services.NewAddressService(db, nil, nil, zap.NewNop())
	ctx := context.Background()

	user := seedUser(t, db, models.RoleCustomer)
	other := seedUser(t, db, models.RoleCustomer)

	input := func(isDefault bool) services.AddressInput {
		return services.AddressInput{
			Label:       "Home",
			FullName:    "Test User",
			AddressLine: "1 Example street",
			City:        "Tashkent",
			Country:     "Uzbekistan",
			IsDefault:   isDefault,
		}
	}

	first, err := addressSvc.Create(ctx, user.ID, input(true))
	require.NoError(t, err)
	assert.EqualValues(t, 1, countDefaults(t, db, user.ID))

	// creating another default swaps atomically
	second, err := addressSvc.Create(ctx, user.ID, input(true))
	require.NoError(t, err)
	assert.EqualValues(t, 1, countDefaults(t, db, user.ID))

	var reloaded models.UserAddress
	require.NoError(t, db.First(&reloaded, "id = ?", second.ID).Error)
	assert.True(t, reloaded.IsDefault)

	// SetDefault moves the flag back
	require.NoError(t, addressSvc.SetDefault(ctx, user.ID, first.ID))
	assert.EqualValues(t, 1, countDefaults(t, db, user.ID))
	require.NoError(t, db.First(&reloaded, "id = ?", first.ID).Error)
	assert.True(t, reloaded.IsDefault)

	// update with is_default=true clears the previous default
	require.NoError(t, addressSvc.Update(ctx, user.ID, second.ID, input(true)))
	assert.EqualValues(t, 1, countDefaults(t, db, user.ID))

	// a foreign address id is not found, not stolen
	err = addressSvc.SetDefault(ctx, other.ID, first.ID)
	require.ErrorIs(t, err, services.ErrAddressNotFound)

	// deleting the default leaves none; no reassignment
	require.NoError(t, addressSvc.Delete(ctx, user.ID, second.ID))
	assert.EqualValues(t, 0, countDefaults(t, db, user.ID))
}

func TestAddressDefaultSwapSerializes(t *testing.T) {
	db := setupDB(t)
	addressSvc := services.NewAddressService(db, nil, nil, zap.NewNop())
	ctx := context.Background()

	user := seedUser(t, db, models.RoleCustomer)
	first := seedAddress(t, db, user.ID, false)
	second := seedAddress(t, db, user.ID, false)

	// two racing swaps must serialize on the account: whichever commits last
	// wins, and the invariant of at most one default survives
	errs := make(chan error, 2)
	var wg sync.WaitGroup
	for _, id := range []uuid.UUID{first.ID, second.ID} {
		wg.Add(1)
		go func(addressID uuid.UUID) {
			defer wg.Done()
			errs <- addressSvc.SetDefault(ctx, user.ID, addressID)
		}(id)
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		require.NoError(t, err)
	}
	assert.EqualValues(t, 1, countDefaults(t, db, user.ID))
}

func TestAddressRegionAllowList(t *testing.T) {
	db := setupDB(t)
	addressSvc := services.NewAddressService(db, []string{"Tashkent"}, []string{"Uzbekistan"}, zap.NewNop())
	ctx := context.Background()

	user := seedUser(t, db, models.RoleCustomer)

	_, err := addressSvc.Create(ctx, user.ID, services.AddressInput{
		AddressLine: "1 Example street",
		City:        "Samarkand",
		Country:     "Uzbekistan",
	})
	require.ErrorIs(t, err, services.ErrValidation)

	_, err = addressSvc.Create(ctx, user.ID, services.AddressInput{
		AddressLine: "1 Example street",
		City:        "tashkent",
		Country:     "Uzbekistan",
	})
	require.NoError(t, err)
}
