package orders

import (
	"context"
	"errors"
	"slices"

	"github.com/ariefcatur/go-delivery-marketplace/internal/apperr"
	"github.com/ariefcatur/go-delivery-marketplace/internal/cart"
	"github.com/ariefcatur/go-delivery-marketplace/internal/models"
	"github.com/ariefcatur/go-delivery-marketplace/internal/store"
)

func newestFirst(list []models.Order) {
	slices.SortStableFunc(list, func(a, b models.Order) int { return b.CreatedAt.Compare(a.CreatedAt) })
}

func (s *Service) ForUser(ctx context.Context, userID string) ([]models.Order, error) {
	return s.find(ctx, store.Filter{"userId": userID})
}

func (s *Service) ForCompany(ctx context.Context, companyID string) ([]models.Order, error) {
	return s.find(ctx, store.Filter{"companyId": companyID})
}

func (s *Service) find(ctx context.Context, f store.Filter) ([]models.Order, error) {
	var out []models.Order
	err := s.Store.View(ctx, func(tx *store.Tx) error {
		var err error
		out, err = tx.Orders.Find(ctx, f)
		return err
	})
	newestFirst(out)
	return out, err
}

// Get returns the order to its customer or to the company that received it.
func (s *Service) Get(ctx context.Context, requesterID, orderID string) (models.Order, error) {
	var out models.Order
	err := s.Store.View(ctx, func(tx *store.Tx) error {
		o, err := tx.Orders.Get(ctx, orderID)
		if errors.Is(err, store.ErrNotFound) || (err == nil && o.UserID != requesterID && o.CompanyID != requesterID) {
			return apperr.NotFound("order not found")
		}
		out = o
		return err
	})
	return out, err
}

// Active returns the user's latest order that is neither delivered nor canceled.
func (s *Service) Active(ctx context.Context, userID string) (models.Order, bool, error) {
	list, err := s.ForUser(ctx, userID)
	if err != nil {
		return models.Order{}, false, err
	}
	for _, o := range list {
		if Open(o.Status) {
			return o, true, nil
		}
	}
	return models.Order{}, false, nil
}

// Repeat copies the items of a past order into the cart at current catalog prices.
// Items whose product is gone are dropped.
func (s *Service) Repeat(ctx context.Context, userID, orderID string) (models.Cart, error) {
	var out models.Cart
	err := s.Store.Update(ctx, func(tx *store.Tx) error {
		o, err := userOrder(ctx, tx, userID, orderID)
		if err != nil {
			return err
		}
		out, err = repeatInto(ctx, tx, o)
		return err
	})
	return out, err
}

// RepeatLast repeats the most recent delivered order.
func (s *Service) RepeatLast(ctx context.Context, userID string) (models.Cart, error) {
	var out models.Cart
	err := s.Store.Update(ctx, func(tx *store.Tx) error {
		list, err := tx.Orders.Find(ctx, store.Filter{"userId": userID, "status": models.StatusDelivered})
		if err != nil {
			return err
		}
		if len(list) == 0 {
			return apperr.NotFound("no delivered order to repeat")
		}
		newestFirst(list)
		out, err = repeatInto(ctx, tx, list[0])
		return err
	})
	return out, err
}

func repeatInto(ctx context.Context, tx *store.Tx, o models.Order) (models.Cart, error) {
	items := make([]models.CartItem, 0, len(o.Items))
	for _, it := range o.Items {
		p, err := tx.Products.Get(ctx, it.ProductID)
		if errors.Is(err, store.ErrNotFound) {
			continue
		}
		if err != nil {
			return models.Cart{}, err
		}
		it = it.Clone()
		it.Name = p.Name
		it.Price = p.Price
		items = append(items, it)
	}
	if len(items) == 0 {
		return models.Cart{}, apperr.Validation("none of the order's products are still available")
	}
	return cart.AppendItems(ctx, tx, o.UserID, o.CompanyID, items)
}
