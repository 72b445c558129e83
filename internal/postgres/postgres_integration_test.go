//go:build integration

package postgres_test

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/ariefcatur/go-delivery-marketplace/internal/apperr"
	"github.com/ariefcatur/go-delivery-marketplace/internal/models"
	"github.com/ariefcatur/go-delivery-marketplace/internal/orders"
	"github.com/ariefcatur/go-delivery-marketplace/internal/postgres"
	"github.com/ariefcatur/go-delivery-marketplace/internal/store"
)

// Run with: go test -tags integration ./internal/postgres/ (needs a docker daemon).
func openStore(t *testing.T) *store.Store {
	t.Helper()
	ctx := context.Background()
	c, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "postgres:16-alpine",
			ExposedPorts: []string{"5432/tcp"},
			Env: map[string]string{
				"POSTGRES_USER":     "app",
				"POSTGRES_PASSWORD": "app",
				"POSTGRES_DB":       "marketplace",
			},
			WaitingFor: wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60 * time.Second),
		},
		Started: true,
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Terminate(context.Background()) })

	host, err := c.Host(ctx)
	require.NoError(t, err)
	port, err := c.MappedPort(ctx, "5432/tcp")
	require.NoError(t, err)

	dsn := fmt.Sprintf("postgres://app:app@%s:%s/marketplace?sslmode=disable", host, port.Port())
	db, err := postgres.Connect(ctx, dsn)
	require.NoError(t, err)
	require.NoError(t, postgres.Migrate(ctx, db))
	st := store.New(&postgres.Backend{DB: db})
	t.Cleanup(func() { _ = st.Close(context.Background()) })
	return st
}

func TestDocumentsRoundTrip(t *testing.T) {
	ctx := context.Background()
	st := openStore(t)

	require.NoError(t, st.Update(ctx, func(tx *store.Tx) error {
		for _, p := range []models.Product{
			{ID: "p1", CompanyID: "c1", Name: "Pizza", Price: 10, Stock: 5},
			{ID: "p2", CompanyID: "c1", Name: "Soda", Price: 2.5, Stock: 1},
			{ID: "p3", CompanyID: "c2", Name: "Sushi", Price: 30, Stock: 2},
		} {
			if err := tx.Products.Insert(ctx, p); err != nil {
				return err
			}
		}
		return nil
	}))

	err := st.Update(ctx, func(tx *store.Tx) error {
		return tx.Products.Insert(ctx, models.Product{ID: "p1", CompanyID: "c1"})
	})
	assert.ErrorIs(t, err, store.ErrDuplicate)

	require.NoError(t, st.Update(ctx, func(tx *store.Tx) error {
		p, err := tx.Products.Get(ctx, "p2")
		if err != nil {
			return err
		}
		p.Stock = 7
		return tx.Products.Update(ctx, p)
	}))

	// A failing Update leaves nothing behind.
	err = st.Update(ctx, func(tx *store.Tx) error {
		if err := tx.Products.Delete(ctx, "p3"); err != nil {
			return err
		}
		return apperr.Validation("abort")
	})
	assert.ErrorIs(t, err, apperr.ErrValidation)

	require.NoError(t, st.View(ctx, func(tx *store.Tx) error {
		list, err := tx.Products.Find(ctx, store.Filter{"companyId": "c1"})
		require.NoError(t, err)
		require.Len(t, list, 2)
		assert.Equal(t, "p1", list[0].ID)
		assert.Equal(t, 7, list[1].Stock)

		_, err = tx.Products.Get(ctx, "p3")
		assert.NoError(t, err)
		_, err = tx.Products.Get(ctx, "missing")
		assert.ErrorIs(t, err, store.ErrNotFound)
		return nil
	}))
}

func TestUniqueUserEmail(t *testing.T) {
	ctx := context.Background()
	st := openStore(t)

	insert := func(id, email string) error {
		return st.Update(ctx, func(tx *store.Tx) error {
			return tx.Users.Insert(ctx, models.User{ID: id, Name: id, Email: email, Type: models.UserCustomer})
		})
	}
	require.NoError(t, insert("u1", "ana@example.com"))
	assert.ErrorIs(t, insert("u2", "ana@example.com"), store.ErrDuplicate)
	assert.NoError(t, insert("u3", "bia@example.com"))

	// Other collections may repeat an email field.
	require.NoError(t, st.Update(ctx, func(tx *store.Tx) error {
		return tx.Staff.Insert(ctx, models.Staff{ID: "s1", CompanyID: "c1", Name: "Rui", Email: "ana@example.com"})
	}))
}

// Orders touching the same products in opposite cart order must not deadlock.
func TestConcurrentAcceptsLockInStableOrder(t *testing.T) {
	ctx := context.Background()
	st := openStore(t)
	svc := &orders.Service{Store: st, Producer: "test"}

	require.NoError(t, st.Update(ctx, func(tx *store.Tx) error {
		for _, p := range []models.Product{
			{ID: "pizza", CompanyID: "c1", Name: "Pizza", Price: 10, Stock: 100},
			{ID: "soda", CompanyID: "c1", Name: "Soda", Price: 2.5, Stock: 100},
		} {
			if err := tx.Products.Insert(ctx, p); err != nil {
				return err
			}
		}
		return nil
	}))

	pizza := models.CartItem{ProductID: "pizza", Name: "Pizza", Price: 10, Quantity: 1}
	soda := models.CartItem{ProductID: "soda", Name: "Soda", Price: 2.5, Quantity: 1}
	const n = 20
	ids := make([]string, n)
	require.NoError(t, st.Update(ctx, func(tx *store.Tx) error {
		for i := range n {
			items := []models.CartItem{pizza, soda}
			if i%2 == 1 {
				items = []models.CartItem{soda, pizza}
			}
			ids[i] = fmt.Sprintf("o%02d", i)
			if err := tx.Orders.Insert(ctx, models.Order{
				ID: ids[i], UserID: "u1", CompanyID: "c1", Items: items, Total: 12.5,
				Status: models.StatusPending, CreatedAt: time.Now().UTC(),
			}); err != nil {
				return err
			}
		}
		return nil
	}))

	var wg sync.WaitGroup
	errs := make([]error, n)
	for i, id := range ids {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, errs[i] = svc.SetStatus(ctx, "c1", id, models.StatusAccepted)
		}()
	}
	wg.Wait()
	for _, err := range errs {
		assert.NoError(t, err)
	}

	require.NoError(t, st.View(ctx, func(tx *store.Tx) error {
		for id, want := range map[string]int{"pizza": 100 - n, "soda": 100 - n} {
			p, err := tx.Products.Get(ctx, id)
			require.NoError(t, err)
			assert.Equal(t, want, p.Stock, id)
		}
		return nil
	}))
}

func TestConcurrentAcceptsNeverOversell(t *testing.T) {
	ctx := context.Background()
	st := openStore(t)
	svc := &orders.Service{Store: st, Producer: "test"}

	require.NoError(t, st.Update(ctx, func(tx *store.Tx) error {
		if err := tx.Products.Insert(ctx, models.Product{ID: "pizza", CompanyID: "c1", Name: "Pizza", Price: 10, Stock: 3}); err != nil {
			return err
		}
		for i := range 5 {
			if err := tx.Orders.Insert(ctx, models.Order{
				ID: fmt.Sprintf("o%d", i), UserID: "u1", CompanyID: "c1",
				Items:  []models.CartItem{{ProductID: "pizza", Name: "Pizza", Price: 10, Quantity: 1}},
				Total:  10,
				Status: models.StatusPending,
			}); err != nil {
				return err
			}
		}
		return nil
	}))

	var (
		wg                 sync.WaitGroup
		mu                 sync.Mutex
		accepted, rejected int
	)
	for i := range 5 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.SetStatus(ctx, "c1", fmt.Sprintf("o%d", i), models.StatusAccepted)
			mu.Lock()
			defer mu.Unlock()
			if err == nil {
				accepted++
			} else if assert.ErrorIs(t, err, apperr.ErrInsufficientStock) {
				rejected++
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 3, accepted)
	assert.Equal(t, 2, rejected)
}
