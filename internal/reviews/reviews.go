// Package reviews records customer ratings of companies and company ratings of customers,
// each at most once per delivered order.
package reviews

import (
	"context"
	"errors"
	"slices"
	"time"

	"github.com/ariefcatur/go-delivery-marketplace/internal/apperr"
	"github.com/ariefcatur/go-delivery-marketplace/internal/models"
	"github.com/ariefcatur/go-delivery-marketplace/internal/money"
	"github.com/ariefcatur/go-delivery-marketplace/internal/store"
	"github.com/ariefcatur/go-delivery-marketplace/internal/validate"
)

type Service struct {
	Store *store.Store
}

func New(s *store.Store) *Service { return &Service{Store: s} }

type ReviewInput struct {
	OrderID string `json:"orderId" validate:"required"`
	Rating  int    `json:"rating" validate:"min=1,max=5"`
	Comment string `json:"comment" validate:"max=1000"`
}

type RatingInput struct {
	OrderID string `json:"orderId" validate:"required"`
	Rating  int    `json:"rating" validate:"min=1,max=5"`
}

// ReviewCompany also refreshes the company's average rating.
func (s *Service) ReviewCompany(ctx context.Context, userID string, in ReviewInput) (models.Review, error) {
	if err := validate.Struct(in); err != nil {
		return models.Review{}, err
	}
	var r models.Review
	err := s.Store.Update(ctx, func(tx *store.Tx) error {
		o, err := tx.Orders.Get(ctx, in.OrderID)
		if errors.Is(err, store.ErrNotFound) || (err == nil && o.UserID != userID) {
			return apperr.NotFound("order not found")
		}
		if err != nil {
			return err
		}
		if o.Status != models.StatusDelivered {
			return apperr.Validation("only delivered orders can be reviewed")
		}

		r = models.Review{
			OrderID:   o.ID,
			UserID:    userID,
			CompanyID: o.CompanyID,
			Rating:    in.Rating,
			Comment:   in.Comment,
			CreatedAt: time.Now().UTC(),
		}
		err = tx.Reviews.Insert(ctx, r)
		if errors.Is(err, store.ErrDuplicate) {
			return apperr.Conflict("order already reviewed")
		}
		if err != nil {
			return err
		}
		return refreshCompanyRating(ctx, tx, o.CompanyID)
	})
	return r, err
}

func refreshCompanyRating(ctx context.Context, tx *store.Tx, companyID string) error {
	c, err := tx.Companies.Get(ctx, companyID)
	if errors.Is(err, store.ErrNotFound) {
		return nil
	}
	if err != nil {
		return err
	}
	all, err := tx.Reviews.Find(ctx, store.Filter{"companyId": companyID})
	if err != nil {
		return err
	}
	c.Rating = money.Mean(ratings(all))
	return tx.Companies.Update(ctx, c)
}

// RateUser lets the company rate the customer of a delivered order and
// recomputes the customer's mean rating.
func (s *Service) RateUser(ctx context.Context, companyID string, in RatingInput) (models.User, error) {
	if err := validate.Struct(in); err != nil {
		return models.User{}, err
	}
	var u models.User
	err := s.Store.Update(ctx, func(tx *store.Tx) error {
		o, err := tx.Orders.Get(ctx, in.OrderID)
		if errors.Is(err, store.ErrNotFound) || (err == nil && o.CompanyID != companyID) {
			return apperr.NotFound("order not found")
		}
		if err != nil {
			return err
		}
		if o.Status != models.StatusDelivered {
			return apperr.Validation("only delivered orders can be rated")
		}
		err = tx.UserRatings.Insert(ctx, models.UserRating{
			OrderID:   o.ID,
			CompanyID: companyID,
			UserID:    o.UserID,
			Rating:    in.Rating,
			CreatedAt: time.Now().UTC(),
		})
		if errors.Is(err, store.ErrDuplicate) {
			return apperr.Conflict("customer already rated for this order")
		}
		if err != nil {
			return err
		}

		u, err = tx.Users.Get(ctx, o.UserID)
		if errors.Is(err, store.ErrNotFound) {
			return apperr.NotFound("user not found")
		}
		if err != nil {
			return err
		}
		u.RatingsReceived = append(u.RatingsReceived, float64(in.Rating))
		u.RatingAverage = money.Mean(u.RatingsReceived)
		u.UpdatedAt = time.Now().UTC()
		return tx.Users.Update(ctx, u)
	})
	return u, err
}

func (s *Service) ForCompany(ctx context.Context, companyID string) ([]models.Review, error) {
	return s.find(ctx, store.Filter{"companyId": companyID})
}

func (s *Service) ByUser(ctx context.Context, userID string) ([]models.Review, error) {
	return s.find(ctx, store.Filter{"userId": userID})
}

func (s *Service) find(ctx context.Context, f store.Filter) ([]models.Review, error) {
	var out []models.Review
	err := s.Store.View(ctx, func(tx *store.Tx) error {
		var err error
		out, err = tx.Reviews.Find(ctx, f)
		return err
	})
	slices.SortStableFunc(out, func(a, b models.Review) int { return b.CreatedAt.Compare(a.CreatedAt) })
	return out, err
}

func ratings(list []models.Review) []float64 {
	out := make([]float64, 0, len(list))
	for _, r := range list {
		out = append(out, float64(r.Rating))
	}
	return out
}
