package accounts

import (
	"context"
	"errors"
	"time"

	"github.com/ariefcatur/go-delivery-marketplace/internal/apperr"
	"github.com/ariefcatur/go-delivery-marketplace/internal/models"
	"github.com/ariefcatur/go-delivery-marketplace/internal/store"
)

func (s *Service) Favorites(ctx context.Context, userID string) ([]models.Company, error) {
	out := []models.Company{}
	err := s.Store.View(ctx, func(tx *store.Tx) error {
		favs, err := tx.Favorites.Find(ctx, store.Filter{"userId": userID})
		if err != nil {
			return err
		}
		for _, f := range favs {
			c, err := tx.Companies.Get(ctx, f.CompanyID)
			if errors.Is(err, store.ErrNotFound) {
				continue
			}
			if err != nil {
				return err
			}
			out = append(out, c)
		}
		return nil
	})
	return out, err
}

func (s *Service) AddFavorite(ctx context.Context, userID, companyID string) (models.Favorite, error) {
	f := models.Favorite{UserID: userID, CompanyID: companyID, CreatedAt: time.Now().UTC()}
	err := s.Store.Update(ctx, func(tx *store.Tx) error {
		if _, err := tx.Companies.Get(ctx, companyID); errors.Is(err, store.ErrNotFound) {
			return apperr.NotFound("company not found")
		} else if err != nil {
			return err
		}
		err := tx.Favorites.Insert(ctx, f)
		if errors.Is(err, store.ErrDuplicate) {
			return apperr.Conflict("company is already a favorite")
		}
		return err
	})
	return f, err
}

func (s *Service) RemoveFavorite(ctx context.Context, userID, companyID string) error {
	return s.Store.Update(ctx, func(tx *store.Tx) error {
		err := tx.Favorites.Delete(ctx, models.Favorite{UserID: userID, CompanyID: companyID}.Key())
		if errors.Is(err, store.ErrNotFound) {
			return apperr.NotFound("favorite not found")
		}
		return err
	})
}
