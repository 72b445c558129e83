package dashboard

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ariefcatur/go-delivery-marketplace/internal/filestore"
	"github.com/ariefcatur/go-delivery-marketplace/internal/models"
	"github.com/ariefcatur/go-delivery-marketplace/internal/store"
)

func TestDashboard(t *testing.T) {
	ctx := context.Background()
	b, err := filestore.Open("")
	require.NoError(t, err)
	st := store.New(b)
	now := time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)

	pizza := func(q int) models.CartItem { return models.CartItem{ProductID: "pizza", Name: "Pizza", Quantity: q} }
	soda := func(q int) models.CartItem { return models.CartItem{ProductID: "soda", Name: "Soda", Quantity: q} }
	require.NoError(t, st.Update(ctx, func(tx *store.Tx) error {
		for _, o := range []models.Order{
			{ID: "o1", CompanyID: "c1", Status: models.StatusDelivered, Total: 10.105, CreatedAt: now.Add(-time.Hour), Items: []models.CartItem{pizza(2), soda(1)}},
			{ID: "o2", CompanyID: "c1", Status: models.StatusDelivered, Total: 5.2, CreatedAt: now.Add(-48 * time.Hour), Items: []models.CartItem{soda(4)}},
			{ID: "o3", CompanyID: "c1", Status: models.StatusDelivered, Total: 100, CreatedAt: now.Add(-40 * 24 * time.Hour), Items: []models.CartItem{pizza(1)}},
			{ID: "o4", CompanyID: "c1", Status: models.StatusPending, Total: 7, CreatedAt: now, Items: []models.CartItem{pizza(9)}},
			{ID: "o5", CompanyID: "c2", Status: models.StatusDelivered, Total: 50, CreatedAt: now},
		} {
			if err := tx.Orders.Insert(ctx, o); err != nil {
				return err
			}
		}
		for _, r := range []models.Review{
			{OrderID: "o1", CompanyID: "c1", Rating: 5},
			{OrderID: "o2", CompanyID: "c1", Rating: 4},
			{OrderID: "o3", CompanyID: "c1", Rating: 4},
		} {
			if err := tx.Reviews.Insert(ctx, r); err != nil {
				return err
			}
		}
		return nil
	}))
	svc := &Service{Store: st, Now: func() time.Time { return now }}

	total, err := svc.TotalOrders(ctx, "c1")
	require.NoError(t, err)
	assert.Equal(t, 4, total)

	counts, err := svc.StatusCount(ctx, "c1")
	require.NoError(t, err)
	assert.Equal(t, 3, counts[models.StatusDelivered])
	assert.Equal(t, 1, counts[models.StatusPending])
	assert.Equal(t, 0, counts[models.StatusCanceled])
	assert.Len(t, counts, 6)

	sales, err := svc.TotalSales(ctx, "c1")
	require.NoError(t, err)
	assert.Equal(t, 15.31, sales)

	ratings, err := svc.Ratings(ctx, "c1")
	require.NoError(t, err)
	assert.Equal(t, RatingSummary{Average: 4.33, Count: 3}, ratings)

	top, err := svc.TopProducts(ctx, "c1", 5)
	require.NoError(t, err)
	require.Len(t, top, 2)
	assert.Equal(t, ProductSales{ProductID: "soda", Name: "Soda", Quantity: 5}, top[0])
	assert.Equal(t, ProductSales{ProductID: "pizza", Name: "Pizza", Quantity: 3}, top[1])
}
