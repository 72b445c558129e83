package staff

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

func TestStaffLifecycle(t *testing.T) {
	ctx := context.Background()
	b, err := filestore.Open("")
	require.NoError(t, err)
	svc := New(store.New(b))

	_, err = svc.Create(ctx, "c1", Input{Name: "X", Role: "pilot"})
	assert.ErrorIs(t, err, apperr.ErrValidation)

	cook, err := svc.Create(ctx, "c1", Input{Name: "Lia", Role: models.RoleCook, VehiclePlate: "ABC1234"})
	require.NoError(t, err)
	assert.Empty(t, cook.VehiclePlate)
	assert.True(t, cook.Active)

	courier, err := svc.Create(ctx, "c1", Input{Name: "Rui", Role: models.RoleCourier, VehiclePlate: "XYZ9876"})
	require.NoError(t, err)
	assert.Equal(t, "XYZ9876", courier.VehiclePlate)

	couriers, err := svc.Couriers(ctx, "c1")
	require.NoError(t, err)
	require.Len(t, couriers, 1)
	assert.Equal(t, courier.ID, couriers[0].ID)

	_, err = svc.Deactivate(ctx, "c2", courier.ID)
	assert.ErrorIs(t, err, apperr.ErrNotFound)
	_, err = svc.Deactivate(ctx, "c1", courier.ID)
	require.NoError(t, err)

	couriers, err = svc.Couriers(ctx, "c1")
	require.NoError(t, err)
	assert.Empty(t, couriers)

	all, err := svc.List(ctx, "c1")
	require.NoError(t, err)
	assert.Len(t, all, 2)
}
