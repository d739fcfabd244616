package services_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/example/orchid/internal/catalog"
	"github.com/example/orchid/internal/models"
	"github.com/example/orchid/internal/services"
)

func TestWishlistOwnership(t *testing.T) {
	db := setupDB(t)
	wishlistSvc := services.NewWishlistService(db, catalog.NewGormProvider(db), zap.NewNop())
	ctx := context.Background()

	user := seedUser(t, db, models.RoleCustomer)
	product := seedProduct(t, db, 30, true, true, true)

	account := models.AccountOwner(user.ID)
	guest := models.GuestOwner("guest-token")

	_, err := wishlistSvc.Add(ctx, account, product.ID)
	require.NoError(t, err)

	// same owner, same product: duplicate
	_, err = wishlistSvc.Add(ctx, account, product.ID)
	require.ErrorIs(t, err, services.ErrDuplicateEntry)

	// a guest wishing the same product is a different owner, not a duplicate
	_, err = wishlistSvc.Add(ctx, guest, product.ID)
	require.NoError(t, err)

	wished, err := wishlistSvc.Check(ctx, account, product.ID)
	require.NoError(t, err)
	assert.True(t, wished)

	// owner scoping never leaks across identities
	otherGuest := models.GuestOwner("another-token")
	wished, err = wishlistSvc.Check(ctx, otherGuest, product.ID)
	require.NoError(t, err)
	assert.False(t, wished)

	count, err := wishlistSvc.Count(ctx, account)
	require.NoError(t, err)
	assert.EqualValues(t, 1, count)

	// exclusivity: no row carries both identities
	var mixed int64
	require.NoError(t, db.Model(&models.WishlistItem{}).
		Where("user_id IS NOT NULL AND session_id IS NOT NULL").
		Count(&mixed).Error)
	assert.Zero(t, mixed)

	require.NoError(t, wishlistSvc.Remove(ctx, account, product.ID))
	require.ErrorIs(t, wishlistSvc.Remove(ctx, account, product.ID), services.ErrEntryNotFound)

	require.NoError(t, wishlistSvc.Clear(ctx, guest))
	count, err = wishlistSvc.Count(ctx, guest)
	require.NoError(t, err)
	assert.Zero(t, count)
}

func TestWishlistRejectsUnavailableProduct(t *testing.T) {
	db := setupDB(t)
	wishlistSvc := services.NewWishlistService(db, catalog.NewGormProvider(db), zap.NewNop())
	ctx := context.Background()

	user := seedUser(t, db, models.RoleCustomer)
	unapproved := seedProduct(t, db, 30, false, true, true)

	_, err := wishlistSvc.Add(ctx, models.AccountOwner(user.ID), unapproved.ID)
	require.ErrorIs(t, err, services.ErrProductUnavailable)
}

func TestCartAddUpdatesQuantity(t *testing.T) {
	db := setupDB(t)
	cartSvc := services.NewCartService(db, catalog.NewGormProvider(db), zap.NewNop())
	ctx := context.Background()

	product := seedProduct(t, db, 15, true, true, true)
	guest := models.GuestOwner("cart-guest")

	first, err := cartSvc.Add(ctx, guest, services.AddInput{ProductID: product.ID, Quantity: 2})
	require.NoError(t, err)

	second, err := cartSvc.Add(ctx, guest, services.AddInput{ProductID: product.ID, Quantity: 3})
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, 5, second.Quantity)

	items, err := cartSvc.List(ctx, guest)
	require.NoError(t, err)
	require.Len(t, items, 1)

	require.NoError(t, cartSvc.UpdateQuantity(ctx, guest, first.ID, 1))
	items, _ = cartSvc.List(ctx, guest)
	assert.Equal(t, 1, items[0].Quantity)

	// quantity zero removes the line
	require.NoError(t, cartSvc.UpdateQuantity(ctx, guest, first.ID, 0))
	items, _ = cartSvc.List(ctx, guest)
	assert.Empty(t, items)
}
