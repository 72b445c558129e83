package catalog

import (
	"context"

	"github.com/ariefcatur/go-delivery-marketplace/internal/models"
	"github.com/ariefcatur/go-delivery-marketplace/internal/store"
)

const maxRecommendations = 10

// Recommendations suggests products from companies that share a category with the
// companies the user already favorited or ordered from, excluding those companies.
func (s *Service) Recommendations(ctx context.Context, userID string) ([]models.Product, error) {
	out := []models.Product{}
	err := s.Store.View(ctx, func(tx *store.Tx) error {
		known := map[string]bool{}
		favs, err := tx.Favorites.Find(ctx, store.Filter{"userId": userID})
		if err != nil {
			return err
		}
		for _, f := range favs {
			known[f.CompanyID] = true
		}
		orders, err := tx.Orders.Find(ctx, store.Filter{"userId": userID})
		if err != nil {
			return err
		}
		for _, o := range orders {
			known[o.CompanyID] = true
		}
		if len(known) == 0 {
			return nil
		}

		companies, err := tx.Companies.Find(ctx, nil)
		if err != nil {
			return err
		}
		liked := map[string]bool{}
		for _, c := range companies {
			if known[c.ID] {
				for _, cat := range c.Categories {
					liked[cat] = true
				}
			}
		}
		for _, c := range companies {
			if known[c.ID] || !sharesCategory(c, liked) {
				continue
			}
			products, err := tx.Products.Find(ctx, store.Filter{"companyId": c.ID})
			if err != nil {
				return err
			}
			for _, p := range products {
				if len(out) == maxRecommendations {
					return nil
				}
				out = append(out, p)
			}
		}
		return nil
	})
	return out, err
}

func sharesCategory(c models.Company, liked map[string]bool) bool {
	for _, cat := range c.Categories {
		if liked[cat] {
			return true
		}
	}
	return false
}
