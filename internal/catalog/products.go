package catalog

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

type CategoryInput struct {
	Name  string `json:"name" validate:"required"`
	Image string `json:"image"`
}

func (s *Service) ListCategories(ctx context.Context) ([]models.Category, error) {
	var out []models.Category
	err := s.Store.View(ctx, func(tx *store.Tx) error {
		var err error
		out, err = tx.Categories.Find(ctx, nil)
		return err
	})
	return out, err
}

func (s *Service) Category(ctx context.Context, id string) (models.Category, error) {
	var out models.Category
	err := s.Store.View(ctx, func(tx *store.Tx) error {
		var err error
		out, err = tx.Categories.Get(ctx, id)
		if errors.Is(err, store.ErrNotFound) {
			return apperr.NotFound("category not found")
		}
		return err
	})
	return out, err
}

func (s *Service) CreateCategory(ctx context.Context, in CategoryInput) (models.Category, error) {
	if err := validate.Struct(in); err != nil {
		return models.Category{}, err
	}
	c := models.Category{ID: uuid.NewString(), Name: in.Name, Image: in.Image}
	err := s.Store.Update(ctx, func(tx *store.Tx) error { return tx.Categories.Insert(ctx, c) })
	return c, err
}

func (s *Service) UpdateCategory(ctx context.Context, id string, in CategoryInput) (models.Category, error) {
	if err := validate.Struct(in); err != nil {
		return models.Category{}, err
	}
	c := models.Category{ID: id, Name: in.Name, Image: in.Image}
	err := s.Store.Update(ctx, func(tx *store.Tx) error {
		err := tx.Categories.Update(ctx, c)
		if errors.Is(err, store.ErrNotFound) {
			return apperr.NotFound("category not found")
		}
		return err
	})
	return c, err
}

func (s *Service) DeleteCategory(ctx context.Context, id string) error {
	return s.Store.Update(ctx, func(tx *store.Tx) error {
		err := tx.Categories.Delete(ctx, id)
		if errors.Is(err, store.ErrNotFound) {
			return apperr.NotFound("category not found")
		}
		return err
	})
}

type ProductInput struct {
	CategoryID      string         `json:"categoryId" validate:"required"`
	Name            string         `json:"name" validate:"required"`
	Description     string         `json:"description"`
	Price           float64        `json:"price" validate:"gte=0"`
	Stock           int            `json:"stock" validate:"gte=0"`
	ImageURL        string         `json:"imageUrl"`
	SuggestedAddOns []models.AddOn `json:"suggestedAddOns" validate:"dive"`
}

type ProductPatch struct {
	CategoryID      *string         `json:"categoryId" validate:"omitempty,min=1"`
	Name            *string         `json:"name" validate:"omitempty,min=1"`
	Description     *string         `json:"description"`
	Price           *float64        `json:"price" validate:"omitempty,gte=0"`
	ImageURL        *string         `json:"imageUrl"`
	SuggestedAddOns *[]models.AddOn `json:"suggestedAddOns"`
}

func (s *Service) ProductsByCompany(ctx context.Context, companyID string) ([]models.Product, error) {
	var out []models.Product
	err := s.Store.View(ctx, func(tx *store.Tx) error {
		var err error
		out, err = tx.Products.Find(ctx, store.Filter{"companyId": companyID})
		return err
	})
	return out, err
}

func (s *Service) Product(ctx context.Context, id string) (models.Product, error) {
	var out models.Product
	err := s.Store.View(ctx, func(tx *store.Tx) error {
		var err error
		out, err = getProduct(ctx, tx, id)
		return err
	})
	return out, err
}

func (s *Service) CreateProduct(ctx context.Context, companyID string, in ProductInput) (models.Product, error) {
	if err := validate.Struct(in); err != nil {
		return models.Product{}, err
	}
	now := time.Now().UTC()
	p := models.Product{
		ID:              uuid.NewString(),
		CompanyID:       companyID,
		CategoryID:      in.CategoryID,
		Name:            in.Name,
		Description:     in.Description,
		Price:           in.Price,
		Stock:           in.Stock,
		ImageURL:        in.ImageURL,
		SuggestedAddOns: in.SuggestedAddOns,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	err := s.Store.Update(ctx, func(tx *store.Tx) error {
		if _, err := getCompany(ctx, tx, companyID); err != nil {
			return err
		}
		if err := requireCategory(ctx, tx, in.CategoryID); err != nil {
			return err
		}
		return tx.Products.Insert(ctx, p)
	})
	return p, err
}

func (s *Service) UpdateProduct(ctx context.Context, companyID, id string, patch ProductPatch) (models.Product, error) {
	if err := validate.Struct(patch); err != nil {
		return models.Product{}, err
	}
	if patch.SuggestedAddOns != nil {
		if err := validateAddOns(*patch.SuggestedAddOns); err != nil {
			return models.Product{}, err
		}
	}
	var out models.Product
	err := s.Store.Update(ctx, func(tx *store.Tx) error {
		p, err := ownedProduct(ctx, tx, companyID, id)
		if err != nil {
			return err
		}
		if patch.CategoryID != nil {
			if err := requireCategory(ctx, tx, *patch.CategoryID); err != nil {
				return err
			}
			p.CategoryID = *patch.CategoryID
		}
		if patch.Name != nil {
			p.Name = *patch.Name
		}
		if patch.Description != nil {
			p.Description = *patch.Description
		}
		if patch.Price != nil {
			p.Price = *patch.Price
		}
		if patch.ImageURL != nil {
			p.ImageURL = *patch.ImageURL
		}
		if patch.SuggestedAddOns != nil {
			p.SuggestedAddOns = *patch.SuggestedAddOns
		}
		p.UpdatedAt = time.Now().UTC()
		out = p
		return tx.Products.Update(ctx, p)
	})
	return out, err
}

func (s *Service) DeleteProduct(ctx context.Context, companyID, id string) error {
	return s.Store.Update(ctx, func(tx *store.Tx) error {
		if _, err := ownedProduct(ctx, tx, companyID, id); err != nil {
			return err
		}
		return tx.Products.Delete(ctx, id)
	})
}

type StockItem struct {
	ProductID string `json:"productId"`
	Name      string `json:"name"`
	Stock     int    `json:"stock"`
}

func (s *Service) Stock(ctx context.Context, companyID string) ([]StockItem, error) {
	products, err := s.ProductsByCompany(ctx, companyID)
	if err != nil {
		return nil, err
	}
	out := make([]StockItem, 0, len(products))
	for _, p := range products {
		out = append(out, StockItem{ProductID: p.ID, Name: p.Name, Stock: p.Stock})
	}
	return out, nil
}

// SetStock replaces the counter with an absolute value.
func (s *Service) SetStock(ctx context.Context, companyID, productID string, stock int) (StockItem, error) {
	if stock < 0 {
		return StockItem{}, apperr.Validation("stock must be zero or more")
	}
	var out StockItem
	err := s.Store.Update(ctx, func(tx *store.Tx) error {
		p, err := ownedProduct(ctx, tx, companyID, productID)
		if err != nil {
			return err
		}
		p.Stock = stock
		p.UpdatedAt = time.Now().UTC()
		out = StockItem{ProductID: p.ID, Name: p.Name, Stock: p.Stock}
		return tx.Products.Update(ctx, p)
	})
	return out, err
}

func getProduct(ctx context.Context, tx *store.Tx, id string) (models.Product, error) {
	p, err := tx.Products.Get(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		return p, apperr.NotFound("product not found")
	}
	return p, err
}

// ownedProduct hides products of other companies behind NotFound.
func ownedProduct(ctx context.Context, tx *store.Tx, companyID, id string) (models.Product, error) {
	p, err := getProduct(ctx, tx, id)
	if err != nil {
		return p, err
	}
	if p.CompanyID != companyID {
		return p, apperr.NotFound("product not found")
	}
	return p, nil
}

func requireCategory(ctx context.Context, tx *store.Tx, id string) error {
	_, err := tx.Categories.Get(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		return apperr.NotFound("category %s not found", id)
	}
	return err
}

func validateAddOns(addOns []models.AddOn) error {
	for _, a := range addOns {
		if err := validate.Struct(a); err != nil {
			return err
		}
	}
	return nil
}
