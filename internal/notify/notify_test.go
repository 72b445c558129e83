package notify

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ariefcatur/go-delivery-marketplace/internal/apperr"
	"github.com/ariefcatur/go-delivery-marketplace/internal/filestore"
	"github.com/ariefcatur/go-delivery-marketplace/internal/models"
	"github.com/ariefcatur/go-delivery-marketplace/internal/store"
)

func setup(t *testing.T, users ...string) *Dispatcher {
	t.Helper()
	b, err := filestore.Open("")
	require.NoError(t, err)
	s := store.New(b)
	require.NoError(t, s.Update(context.Background(), func(tx *store.Tx) error {
		for _, id := range users {
			if err := tx.Users.Insert(context.Background(), models.User{ID: id, Name: id}); err != nil {
				return err
			}
		}
		return nil
	}))
	return New(s)
}

func off() *bool { v := false; return &v }

func TestBroadcastSkipsOptedOutUsers(t *testing.T) {
	ctx := context.Background()
	d := setup(t, "a", "b", "c")

	_, err := d.UpdateSettings(ctx, "b", SettingsPatch{Marketing: &MarketingPrefsPatch{Promotions: off()}})
	require.NoError(t, err)

	sent, err := d.Notify(ctx, Target{Broadcast: true}, "Sale", "50% off today", models.CategoryMarketing)
	require.NoError(t, err)
	require.Len(t, sent, 2)
	var got []string
	for _, n := range sent {
		got = append(got, n.UserID)
	}
	assert.ElementsMatch(t, []string{"a", "c"}, got)

	_, err = d.Notify(ctx, Target{UserID: "b"}, "Sale", "50% off today", models.CategoryMarketing)
	assert.ErrorIs(t, err, apperr.ErrForbidden)

	// Order updates cannot be switched off.
	_, err = d.Notify(ctx, Target{UserID: "b"}, "Order", "on its way", models.CategoryOrder)
	require.NoError(t, err)
}

func TestNotifyValidation(t *testing.T) {
	ctx := context.Background()
	d := setup(t, "a")

	_, err := d.Notify(ctx, Target{UserID: "a"}, "t", "m", "weather")
	assert.ErrorIs(t, err, apperr.ErrValidation)
	_, err = d.Notify(ctx, Target{UserID: "a"}, "", "m", models.CategorySystem)
	assert.ErrorIs(t, err, apperr.ErrValidation)
	_, err = d.Notify(ctx, Target{}, "t", "m", models.CategorySystem)
	assert.ErrorIs(t, err, apperr.ErrValidation)
	_, err = d.Notify(ctx, Target{UserID: "ghost"}, "t", "m", models.CategorySystem)
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestListReadDelete(t *testing.T) {
	ctx := context.Background()
	d := setup(t, "a", "b")

	_, err := d.Notify(ctx, Target{UserID: "a"}, "first", "m", models.CategorySystem)
	require.NoError(t, err)
	sent, err := d.Notify(ctx, Target{UserID: "a"}, "second", "m", models.CategoryMarketing)
	require.NoError(t, err)

	all, err := d.List(ctx, "a", "")
	require.NoError(t, err)
	require.Len(t, all, 2)

	mk, err := d.List(ctx, "a", models.CategoryMarketing)
	require.NoError(t, err)
	require.Len(t, mk, 1)
	assert.Equal(t, "second", mk[0].Title)

	_, err = d.List(ctx, "a", "weather")
	assert.ErrorIs(t, err, apperr.ErrValidation)

	id := sent[0].ID
	_, err = d.MarkRead(ctx, "b", id)
	assert.ErrorIs(t, err, apperr.ErrNotFound)
	n, err := d.MarkRead(ctx, "a", id)
	require.NoError(t, err)
	assert.True(t, n.Read)

	assert.ErrorIs(t, d.Delete(ctx, "b", id), apperr.ErrNotFound)
	require.NoError(t, d.Delete(ctx, "a", id))
	all, err = d.List(ctx, "a", "")
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

func TestSettingsPatchAndReset(t *testing.T) {
	ctx := context.Background()
	d := setup(t, "a")

	s, err := d.Settings(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, models.DefaultNotificationSettings("a").Orders, s.Orders)

	s, err = d.UpdateSettings(ctx, "a", SettingsPatch{
		Orders:      &OrderPrefsPatch{OrderUpdates: off()},
		Preferences: &DevicePrefsPatch{Sound: off()},
	})
	require.NoError(t, err)
	assert.False(t, s.Orders.OrderUpdates)
	assert.True(t, s.Orders.DeliveryStatus)
	assert.False(t, s.Preferences.Sound)
	assert.True(t, s.Preferences.Vibration)

	stored, err := d.Settings(ctx, "a")
	require.NoError(t, err)
	assert.False(t, stored.Orders.OrderUpdates)

	s, err = d.ResetSettings(ctx, "a")
	require.NoError(t, err)
	assert.True(t, s.Orders.OrderUpdates)
	assert.True(t, s.Preferences.Sound)
}
