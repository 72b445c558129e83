package rewards

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ariefcatur/go-delivery-marketplace/internal/apperr"
	"github.com/ariefcatur/go-delivery-marketplace/internal/events"
	"github.com/ariefcatur/go-delivery-marketplace/internal/filestore"
	"github.com/ariefcatur/go-delivery-marketplace/internal/store"
)

func setup(t *testing.T) *Service {
	t.Helper()
	b, err := filestore.Open("")
	require.NoError(t, err)
	return &Service{
		Store:    store.New(b),
		Log:      slog.New(slog.NewTextHandler(io.Discard, nil)),
		Code:     "REFERRAL10",
		Validity: 30 * 24 * time.Hour,
	}
}

func registered(t *testing.T, userID, referrer string) events.Envelope {
	t.Helper()
	env, err := events.NewEnvelope(events.EventUserRegistered, "test", userID,
		events.UserRegisteredPayload{UserID: userID, ReferredBy: referrer})
	require.NoError(t, err)
	return env
}

func TestReferralGrantsOneCouponEachExactlyOnce(t *testing.T) {
	ctx := context.Background()
	svc := setup(t)
	env := registered(t, "new", "old")

	// Redelivery of the same event, and a second event for the same pair.
	require.NoError(t, svc.HandleUserRegistered(ctx, env))
	require.NoError(t, svc.HandleUserRegistered(ctx, env))
	require.NoError(t, svc.HandleUserRegistered(ctx, registered(t, "new", "old")))

	for _, u := range []string{"new", "old"} {
		got, err := svc.UserCoupons(ctx, u)
		require.NoError(t, err)
		require.Len(t, got, 1, u)
		assert.Equal(t, "REFERRAL10", got[0].Code)
		assert.Equal(t, 1, got[0].UsesLeft)
		assert.True(t, got[0].ValidUntil.After(time.Now()))
	}
}

func TestNoReferrerNoCoupons(t *testing.T) {
	ctx := context.Background()
	svc := setup(t)
	require.NoError(t, svc.HandleUserRegistered(ctx, registered(t, "solo", "")))

	env := registered(t, "x", "y")
	env.EventType = events.EventOrderCreated
	require.NoError(t, svc.HandleUserRegistered(ctx, env))

	require.NoError(t, svc.Store.View(ctx, func(tx *store.Tx) error {
		all, err := tx.UserCoupons.Find(ctx, nil)
		require.NoError(t, err)
		assert.Empty(t, all)
		return nil
	}))
}

func TestCouponCatalogAndClaim(t *testing.T) {
	ctx := context.Background()
	svc := setup(t)

	c, err := svc.CreateCoupon(ctx, CouponInput{Code: "pizza5", Discount: "5%"})
	require.NoError(t, err)
	assert.Equal(t, "PIZZA5", c.Code)
	assert.True(t, c.IsActive)

	_, err = svc.CreateCoupon(ctx, CouponInput{Code: "PIZZA5", Discount: "7%"})
	assert.ErrorIs(t, err, apperr.ErrConflict)

	other, err := svc.CreateCoupon(ctx, CouponInput{Code: "SODA", Discount: "1%"})
	require.NoError(t, err)
	taken := "pizza5"
	_, err = svc.UpdateCoupon(ctx, other.ID, CouponPatch{Code: &taken})
	assert.ErrorIs(t, err, apperr.ErrConflict)

	uc, err := svc.ClaimCoupon(ctx, "u1", c.ID)
	require.NoError(t, err)
	assert.Equal(t, "PIZZA5", uc.Code)
	_, err = svc.ClaimCoupon(ctx, "u1", c.ID)
	assert.ErrorIs(t, err, apperr.ErrConflict)
	_, err = svc.ClaimCoupon(ctx, "u1", "missing")
	assert.ErrorIs(t, err, apperr.ErrNotFound)

	assert.ErrorIs(t, svc.DeleteUserCoupon(ctx, "u2", uc.ID), apperr.ErrNotFound)
	require.NoError(t, svc.DeleteUserCoupon(ctx, "u1", uc.ID))

	require.NoError(t, svc.DeleteCoupon(ctx, c.ID))
	assert.ErrorIs(t, svc.DeleteCoupon(ctx, c.ID), apperr.ErrNotFound)
}
