// Package catalog manages companies, categories, products and their stock.
package catalog

import (
	"context"
	"errors"
	"time"

	"github.com/ariefcatur/go-delivery-marketplace/internal/apperr"
	"github.com/ariefcatur/go-delivery-marketplace/internal/models"
	"github.com/ariefcatur/go-delivery-marketplace/internal/store"
	"github.com/ariefcatur/go-delivery-marketplace/internal/validate"
)

type Service struct {
	Store *store.Store
}

func New(s *store.Store) *Service { return &Service{Store: s} }

type CompanyInput struct {
	Name         string   `json:"name" validate:"required"`
	Image        string   `json:"image"`
	DeliveryFee  float64  `json:"deliveryFee" validate:"gte=0"`
	DeliveryTime int      `json:"deliveryTime" validate:"gte=0"`
	Categories   []string `json:"categories"`
	Dishes       []string `json:"dishes"`
}

type CompanyPatch struct {
	Name         *string   `json:"name" validate:"omitempty,min=1"`
	Image        *string   `json:"image"`
	DeliveryFee  *float64  `json:"deliveryFee" validate:"omitempty,gte=0"`
	DeliveryTime *int      `json:"deliveryTime" validate:"omitempty,gte=0"`
	Categories   *[]string `json:"categories"`
	Dishes       *[]string `json:"dishes"`
}

func (s *Service) ListCompanies(ctx context.Context) ([]models.Company, error) {
	var out []models.Company
	err := s.Store.View(ctx, func(tx *store.Tx) error {
		var err error
		out, err = tx.Companies.Find(ctx, nil)
		return err
	})
	return out, err
}

func (s *Service) Company(ctx context.Context, id string) (models.Company, error) {
	var out models.Company
	err := s.Store.View(ctx, func(tx *store.Tx) error {
		var err error
		out, err = getCompany(ctx, tx, id)
		return err
	})
	return out, err
}

// CreateCompany registers the company profile of a company account; its id is the owner's user id.
func (s *Service) CreateCompany(ctx context.Context, ownerID string, in CompanyInput) (models.Company, error) {
	if err := validate.Struct(in); err != nil {
		return models.Company{}, err
	}
	now := time.Now().UTC()
	c := models.Company{
		ID:           ownerID,
		Name:         in.Name,
		Image:        in.Image,
		DeliveryFee:  in.DeliveryFee,
		DeliveryTime: in.DeliveryTime,
		Categories:   in.Categories,
		Dishes:       in.Dishes,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	err := s.Store.Update(ctx, func(tx *store.Tx) error {
		err := tx.Companies.Insert(ctx, c)
		if errors.Is(err, store.ErrDuplicate) {
			return apperr.Conflict("company already registered for this account")
		}
		return err
	})
	return c, err
}

func (s *Service) UpdateCompany(ctx context.Context, ownerID, id string, p CompanyPatch) (models.Company, error) {
	if err := validate.Struct(p); err != nil {
		return models.Company{}, err
	}
	if ownerID != id {
		return models.Company{}, apperr.Forbidden("not the owner of this company")
	}
	var out models.Company
	err := s.Store.Update(ctx, func(tx *store.Tx) error {
		c, err := getCompany(ctx, tx, id)
		if err != nil {
			return err
		}
		if p.Name != nil {
			c.Name = *p.Name
		}
		if p.Image != nil {
			c.Image = *p.Image
		}
		if p.DeliveryFee != nil {
			c.DeliveryFee = *p.DeliveryFee
		}
		if p.DeliveryTime != nil {
			c.DeliveryTime = *p.DeliveryTime
		}
		if p.Categories != nil {
			c.Categories = *p.Categories
		}
		if p.Dishes != nil {
			c.Dishes = *p.Dishes
		}
		c.UpdatedAt = time.Now().UTC()
		out = c
		return tx.Companies.Update(ctx, c)
	})
	return out, err
}

func (s *Service) DeleteCompany(ctx context.Context, ownerID, id string) error {
	if ownerID != id {
		return apperr.Forbidden("not the owner of this company")
	}
	return s.Store.Update(ctx, func(tx *store.Tx) error {
		err := tx.Companies.Delete(ctx, id)
		if errors.Is(err, store.ErrNotFound) {
			return apperr.NotFound("company not found")
		}
		return err
	})
}

// BlockRegion refuses deliveries to postalCode. Blocking twice is a conflict.
func (s *Service) BlockRegion(ctx context.Context, companyID, postalCode string) (models.Company, error) {
	return s.mutateCompany(ctx, companyID, func(c *models.Company) error {
		if postalCode == "" {
			return apperr.Validation("postalCode is required")
		}
		if c.BlocksRegion(postalCode) {
			return apperr.Conflict("region %s is already blocked", postalCode)
		}
		c.BlockedRegions = append(c.BlockedRegions, postalCode)
		return nil
	})
}

func (s *Service) UnblockRegion(ctx context.Context, companyID, postalCode string) (models.Company, error) {
	return s.mutateCompany(ctx, companyID, func(c *models.Company) error {
		if !c.BlocksRegion(postalCode) {
			return apperr.NotFound("region %s is not blocked", postalCode)
		}
		c.BlockedRegions = without(c.BlockedRegions, postalCode)
		return nil
	})
}

// BlockUser and UnblockUser are idempotent.
func (s *Service) BlockUser(ctx context.Context, companyID, userID string) (models.Company, error) {
	return s.mutateCompany(ctx, companyID, func(c *models.Company) error {
		if userID == "" {
			return apperr.Validation("userId is required")
		}
		if !c.BlocksUser(userID) {
			c.BlockedUsers = append(c.BlockedUsers, userID)
		}
		return nil
	})
}

func (s *Service) UnblockUser(ctx context.Context, companyID, userID string) (models.Company, error) {
	return s.mutateCompany(ctx, companyID, func(c *models.Company) error {
		c.BlockedUsers = without(c.BlockedUsers, userID)
		return nil
	})
}

func (s *Service) mutateCompany(ctx context.Context, id string, fn func(*models.Company) error) (models.Company, error) {
	var out models.Company
	err := s.Store.Update(ctx, func(tx *store.Tx) error {
		c, err := getCompany(ctx, tx, id)
		if err != nil {
			return err
		}
		if err := fn(&c); err != nil {
			return err
		}
		c.UpdatedAt = time.Now().UTC()
		out = c
		return tx.Companies.Update(ctx, c)
	})
	return out, err
}

func getCompany(ctx context.Context, tx *store.Tx, id string) (models.Company, error) {
	c, err := tx.Companies.Get(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		return c, apperr.NotFound("company not found")
	}
	return c, err
}

func without(list []string, v string) []string {
	out := make([]string, 0, len(list))
	for _, s := range list {
		if s != v {
			out = append(out, s)
		}
	}
	return out
}
