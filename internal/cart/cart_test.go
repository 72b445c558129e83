package cart

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

func newManager(t *testing.T) *Manager {
	t.Helper()
	b, err := filestore.Open("")
	require.NoError(t, err)
	s := store.New(b)
	ctx := context.Background()
	require.NoError(t, s.Update(ctx, func(tx *store.Tx) error {
		for _, p := range []models.Product{
			{ID: "pizza", CompanyID: "c1", Name: "Pizza", Price: 10, Stock: 5},
			{ID: "soda", CompanyID: "c1", Name: "Soda", Price: 2.5, Stock: 5},
			{ID: "sushi", CompanyID: "c2", Name: "Sushi", Price: 30, Stock: 5},
		} {
			if err := tx.Products.Insert(ctx, p); err != nil {
				return err
			}
		}
		return nil
	}))
	return New(s)
}

func TestAddItemSnapshotsCatalog(t *testing.T) {
	ctx := context.Background()
	m := newManager(t)

	c, err := m.AddItem(ctx, "u1", AddItemInput{CompanyID: "c1", ProductID: "pizza", Quantity: 2,
		AddOns: []models.AddOn{{Name: "cheese", Price: 1}}})
	require.NoError(t, err)
	require.Len(t, c.Items, 1)
	assert.Equal(t, "Pizza", c.Items[0].Name)
	assert.Equal(t, 10.0, c.Items[0].Price)
	assert.NotEmpty(t, c.Items[0].ID)

	c, err = m.AddItem(ctx, "u1", AddItemInput{CompanyID: "c1", ProductID: "soda", Quantity: 1})
	require.NoError(t, err)
	require.Len(t, c.Items, 2)
	assert.NotEqual(t, c.Items[0].ID, c.Items[1].ID)
}

func TestAddItemRejectsOtherCompany(t *testing.T) {
	ctx := context.Background()
	m := newManager(t)

	_, err := m.AddItem(ctx, "u1", AddItemInput{CompanyID: "c1", ProductID: "pizza", Quantity: 1})
	require.NoError(t, err)

	_, err = m.AddItem(ctx, "u1", AddItemInput{CompanyID: "c2", ProductID: "sushi", Quantity: 1})
	assert.ErrorIs(t, err, apperr.ErrConflict)

	c, err := m.Get(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, c.Items, 1)
	assert.Equal(t, "c1", c.CompanyID)
}

func TestAddItemValidation(t *testing.T) {
	ctx := context.Background()
	m := newManager(t)

	tests := []struct {
		name string
		in   AddItemInput
		want error
	}{
		{"zero quantity", AddItemInput{CompanyID: "c1", ProductID: "pizza"}, apperr.ErrValidation},
		{"missing company", AddItemInput{ProductID: "pizza", Quantity: 1}, apperr.ErrValidation},
		{"negative add-on", AddItemInput{CompanyID: "c1", ProductID: "pizza", Quantity: 1,
			AddOns: []models.AddOn{{Name: "x", Price: -1}}}, apperr.ErrValidation},
		{"unknown product", AddItemInput{CompanyID: "c1", ProductID: "nope", Quantity: 1}, apperr.ErrNotFound},
		{"product of another company", AddItemInput{CompanyID: "c1", ProductID: "sushi", Quantity: 1}, apperr.ErrValidation},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := m.AddItem(ctx, "u1", tc.in)
			assert.ErrorIs(t, err, tc.want)
		})
	}
}

func TestUpdateRemoveClear(t *testing.T) {
	ctx := context.Background()
	m := newManager(t)

	_, err := m.UpdateItem(ctx, "u1", "x", ItemPatch{})
	assert.ErrorIs(t, err, apperr.ErrNotFound)

	c, err := m.AddItem(ctx, "u1", AddItemInput{CompanyID: "c1", ProductID: "pizza", Quantity: 1})
	require.NoError(t, err)
	itemID := c.Items[0].ID

	qty, note := 3, "no onions"
	c, err = m.UpdateItem(ctx, "u1", itemID, ItemPatch{Quantity: &qty, Note: &note})
	require.NoError(t, err)
	assert.Equal(t, 3, c.Items[0].Quantity)
	assert.Equal(t, "no onions", c.Items[0].Note)

	zero := 0
	_, err = m.UpdateItem(ctx, "u1", itemID, ItemPatch{Quantity: &zero})
	assert.ErrorIs(t, err, apperr.ErrValidation)

	_, err = m.RemoveItem(ctx, "u1", "missing")
	assert.ErrorIs(t, err, apperr.ErrNotFound)

	c, err = m.RemoveItem(ctx, "u1", itemID)
	require.NoError(t, err)
	assert.Empty(t, c.Items)

	require.NoError(t, m.Clear(ctx, "u1"))
	require.NoError(t, m.Clear(ctx, "u1"))

	c, err = m.Get(ctx, "u1")
	require.NoError(t, err)
	assert.Empty(t, c.Items)
}
