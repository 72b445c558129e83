// Package dashboard aggregates a company's orders and reviews.
package dashboard

import (
	"context"
	"slices"
	"time"

	"github.com/ariefcatur/go-delivery-marketplace/internal/models"
	"github.com/ariefcatur/go-delivery-marketplace/internal/money"
	"github.com/ariefcatur/go-delivery-marketplace/internal/store"
)

const salesWindow = 30 * 24 * time.Hour

type Service struct {
	Store *store.Store
	Now   func() time.Time
}

func New(s *store.Store) *Service { return &Service{Store: s, Now: time.Now} }

type RatingSummary struct {
	Average float64 `json:"average"`
	Count   int     `json:"count"`
}

type ProductSales struct {
	ProductID string `json:"productId"`
	Name      string `json:"name"`
	Quantity  int    `json:"quantity"`
}

func (s *Service) orders(ctx context.Context, companyID string, f store.Filter) ([]models.Order, error) {
	if f == nil {
		f = store.Filter{}
	}
	f["companyId"] = companyID
	var out []models.Order
	err := s.Store.View(ctx, func(tx *store.Tx) error {
		var err error
		out, err = tx.Orders.Find(ctx, f)
		return err
	})
	return out, err
}

func (s *Service) TotalOrders(ctx context.Context, companyID string) (int, error) {
	list, err := s.orders(ctx, companyID, nil)
	return len(list), err
}

// StatusCount reports every status, zero included.
func (s *Service) StatusCount(ctx context.Context, companyID string) (map[models.OrderStatus]int, error) {
	list, err := s.orders(ctx, companyID, nil)
	if err != nil {
		return nil, err
	}
	out := map[models.OrderStatus]int{
		models.StatusPending: 0, models.StatusAccepted: 0, models.StatusInPreparation: 0,
		models.StatusOutForDelivery: 0, models.StatusDelivered: 0, models.StatusCanceled: 0,
	}
	for _, o := range list {
		out[o.Status]++
	}
	return out, nil
}

// TotalSales sums delivered orders created in the last 30 days.
func (s *Service) TotalSales(ctx context.Context, companyID string) (float64, error) {
	list, err := s.orders(ctx, companyID, store.Filter{"status": models.StatusDelivered})
	if err != nil {
		return 0, err
	}
	since := s.Now().Add(-salesWindow)
	totals := make([]float64, 0, len(list))
	for _, o := range list {
		if o.CreatedAt.After(since) {
			totals = append(totals, o.Total)
		}
	}
	return money.Sum(totals...), nil
}

func (s *Service) Ratings(ctx context.Context, companyID string) (RatingSummary, error) {
	var reviews []models.Review
	err := s.Store.View(ctx, func(tx *store.Tx) error {
		var err error
		reviews, err = tx.Reviews.Find(ctx, store.Filter{"companyId": companyID})
		return err
	})
	if err != nil {
		return RatingSummary{}, err
	}
	values := make([]float64, 0, len(reviews))
	for _, r := range reviews {
		values = append(values, float64(r.Rating))
	}
	return RatingSummary{Average: money.Mean(values), Count: len(values)}, nil
}

// TopProducts ranks products by quantity sold in delivered orders.
func (s *Service) TopProducts(ctx context.Context, companyID string, limit int) ([]ProductSales, error) {
	list, err := s.orders(ctx, companyID, store.Filter{"status": models.StatusDelivered})
	if err != nil {
		return nil, err
	}
	byID := map[string]*ProductSales{}
	for _, o := range list {
		for _, it := range o.Items {
			ps, ok := byID[it.ProductID]
			if !ok {
				ps = &ProductSales{ProductID: it.ProductID, Name: it.Name}
				byID[it.ProductID] = ps
			}
			ps.Quantity += it.Quantity
		}
	}
	out := make([]ProductSales, 0, len(byID))
	for _, ps := range byID {
		out = append(out, *ps)
	}
	slices.SortFunc(out, func(a, b ProductSales) int {
		if a.Quantity != b.Quantity {
			return b.Quantity - a.Quantity
		}
		if a.Name < b.Name {
			return -1
		}
		if a.Name > b.Name {
			return 1
		}
		return 0
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}
