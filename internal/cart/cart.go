// Package cart keeps each user's single-company shopping cart.
package cart

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/ariefcatur/go-delivery-marketplace/internal/apperr"
	"github.com/ariefcatur/go-delivery-marketplace/internal/models"
	"github.com/ariefcatur/go-delivery-marketplace/internal/store"
	"github.com/ariefcatur/go-delivery-marketplace/internal/validate"
)

type Manager struct {
	Store *store.Store
}

func New(s *store.Store) *Manager { return &Manager{Store: s} }

type AddItemInput struct {
	CompanyID string         `json:"companyId" validate:"required"`
	ProductID string         `json:"productId" validate:"required"`
	Quantity  int            `json:"quantity" validate:"min=1"`
	Note      string         `json:"note"`
	AddOns    []models.AddOn `json:"addOns" validate:"dive"`
}

type ItemPatch struct {
	Quantity *int            `json:"quantity" validate:"omitempty,min=1"`
	Note     *string         `json:"note"`
	AddOns   *[]models.AddOn `json:"addOns"`
}

// AddItem snapshots the product name and price from the catalog.
func (m *Manager) AddItem(ctx context.Context, userID string, in AddItemInput) (models.Cart, error) {
	if err := validate.Struct(in); err != nil {
		return models.Cart{}, err
	}
	var out models.Cart
	err := m.Store.Update(ctx, func(tx *store.Tx) error {
		p, err := tx.Products.Get(ctx, in.ProductID)
		if errors.Is(err, store.ErrNotFound) {
			return apperr.NotFound("product not found")
		}
		if err != nil {
			return err
		}
		if p.CompanyID != in.CompanyID {
			return apperr.Validation("product %s does not belong to company %s", p.ID, in.CompanyID)
		}
		item := models.CartItem{
			ProductID: p.ID,
			Name:      p.Name,
			Price:     p.Price,
			Quantity:  in.Quantity,
			Note:      in.Note,
			AddOns:    in.AddOns,
		}
		out, err = AppendItems(ctx, tx, userID, in.CompanyID, []models.CartItem{item})
		return err
	})
	return out, err
}

// AppendItems adds items to the user's cart inside tx, creating the cart if needed.
// Every item gets a fresh id. A cart of another company is a conflict.
func AppendItems(ctx context.Context, tx *store.Tx, userID, companyID string, items []models.CartItem) (models.Cart, error) {
	now := time.Now().UTC()
	c, err := tx.Carts.Get(ctx, userID)
	exists := err == nil
	switch {
	case errors.Is(err, store.ErrNotFound):
		c = models.Cart{ID: uuid.NewString(), UserID: userID, CompanyID: companyID, CreatedAt: now}
	case err != nil:
		return c, err
	case c.CompanyID != companyID:
		return c, apperr.Conflict("cart already holds items from another company; clear it first")
	}

	for _, it := range items {
		it = it.Clone()
		it.ID = uuid.NewString()
		c.Items = append(c.Items, it)
	}
	c.UpdatedAt = now
	if exists {
		return c, tx.Carts.Update(ctx, c)
	}
	return c, tx.Carts.Insert(ctx, c)
}

func (m *Manager) UpdateItem(ctx context.Context, userID, itemID string, p ItemPatch) (models.Cart, error) {
	if err := validate.Struct(p); err != nil {
		return models.Cart{}, err
	}
	if p.AddOns != nil {
		for _, a := range *p.AddOns {
			if err := validate.Struct(a); err != nil {
				return models.Cart{}, err
			}
		}
	}
	var out models.Cart
	err := m.Store.Update(ctx, func(tx *store.Tx) error {
		c, err := getCart(ctx, tx, userID)
		if err != nil {
			return err
		}
		i := indexOf(c, itemID)
		if i < 0 {
			return apperr.NotFound("cart item not found")
		}
		if p.Quantity != nil {
			c.Items[i].Quantity = *p.Quantity
		}
		if p.Note != nil {
			c.Items[i].Note = *p.Note
		}
		if p.AddOns != nil {
			c.Items[i].AddOns = *p.AddOns
		}
		c.UpdatedAt = time.Now().UTC()
		out = c
		return tx.Carts.Update(ctx, c)
	})
	return out, err
}

// RemoveItem keeps the cart even when its last item goes away.
func (m *Manager) RemoveItem(ctx context.Context, userID, itemID string) (models.Cart, error) {
	var out models.Cart
	err := m.Store.Update(ctx, func(tx *store.Tx) error {
		c, err := getCart(ctx, tx, userID)
		if err != nil {
			return err
		}
		i := indexOf(c, itemID)
		if i < 0 {
			return apperr.NotFound("cart item not found")
		}
		c.Items = append(c.Items[:i:i], c.Items[i+1:]...)
		c.UpdatedAt = time.Now().UTC()
		out = c
		return tx.Carts.Update(ctx, c)
	})
	return out, err
}

func (m *Manager) Clear(ctx context.Context, userID string) error {
	return m.Store.Update(ctx, func(tx *store.Tx) error {
		err := tx.Carts.Delete(ctx, userID)
		if errors.Is(err, store.ErrNotFound) {
			return nil
		}
		return err
	})
}

// Get returns an empty cart view when the user has none.
func (m *Manager) Get(ctx context.Context, userID string) (models.Cart, error) {
	var out models.Cart
	err := m.Store.View(ctx, func(tx *store.Tx) error {
		c, err := tx.Carts.Get(ctx, userID)
		if errors.Is(err, store.ErrNotFound) {
			out = models.Cart{UserID: userID, Items: []models.CartItem{}}
			return nil
		}
		out = c
		return err
	})
	return out, err
}

func getCart(ctx context.Context, tx *store.Tx, userID string) (models.Cart, error) {
	c, err := tx.Carts.Get(ctx, userID)
	if errors.Is(err, store.ErrNotFound) {
		return c, apperr.NotFound("cart not found")
	}
	return c, err
}

func indexOf(c models.Cart, itemID string) int {
	for i, it := range c.Items {
		if it.ID == itemID {
			return i
		}
	}
	return -1
}
