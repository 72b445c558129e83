package accounts

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

type AddressInput struct {
	Label      string `json:"label"`
	Street     string `json:"street" validate:"required"`
	Number     string `json:"number" validate:"required"`
	District   string `json:"district"`
	City       string `json:"city" validate:"required"`
	State      string `json:"state" validate:"required"`
	PostalCode string `json:"postalCode" validate:"required"`
	Complement string `json:"complement"`
	IsDefault  bool   `json:"isDefault"`
}

type AddressPatch struct {
	Label      *string `json:"label"`
	Street     *string `json:"street" validate:"omitempty,min=1"`
	Number     *string `json:"number" validate:"omitempty,min=1"`
	District   *string `json:"district"`
	City       *string `json:"city" validate:"omitempty,min=1"`
	State      *string `json:"state" validate:"omitempty,min=1"`
	PostalCode *string `json:"postalCode" validate:"omitempty,min=1"`
	Complement *string `json:"complement"`
	IsDefault  *bool   `json:"isDefault"`
}

func (s *Service) Addresses(ctx context.Context, userID string) ([]models.Address, error) {
	var out []models.Address
	err := s.Store.View(ctx, func(tx *store.Tx) error {
		var err error
		out, err = tx.Addresses.Find(ctx, store.Filter{"userId": userID})
		return err
	})
	return out, err
}

// AddAddress makes the first address of a user the default one.
func (s *Service) AddAddress(ctx context.Context, userID string, in AddressInput) (models.Address, error) {
	if err := validate.Struct(in); err != nil {
		return models.Address{}, err
	}
	a := models.Address{
		ID:         uuid.NewString(),
		UserID:     userID,
		Label:      in.Label,
		Street:     in.Street,
		Number:     in.Number,
		District:   in.District,
		City:       in.City,
		State:      in.State,
		PostalCode: in.PostalCode,
		Complement: in.Complement,
		IsDefault:  in.IsDefault,
		CreatedAt:  time.Now().UTC(),
	}
	err := s.Store.Update(ctx, func(tx *store.Tx) error {
		existing, err := tx.Addresses.Find(ctx, store.Filter{"userId": userID})
		if err != nil {
			return err
		}
		if len(existing) == 0 {
			a.IsDefault = true
		}
		if a.IsDefault {
			if err := clearDefault(ctx, tx, existing, ""); err != nil {
				return err
			}
		}
		return tx.Addresses.Insert(ctx, a)
	})
	return a, err
}

func (s *Service) UpdateAddress(ctx context.Context, userID, id string, p AddressPatch) (models.Address, error) {
	if err := validate.Struct(p); err != nil {
		return models.Address{}, err
	}
	var out models.Address
	err := s.Store.Update(ctx, func(tx *store.Tx) error {
		a, err := ownedAddress(ctx, tx, userID, id)
		if err != nil {
			return err
		}
		setString(&a.Label, p.Label)
		setString(&a.Street, p.Street)
		setString(&a.Number, p.Number)
		setString(&a.District, p.District)
		setString(&a.City, p.City)
		setString(&a.State, p.State)
		setString(&a.PostalCode, p.PostalCode)
		setString(&a.Complement, p.Complement)
		if p.IsDefault != nil && *p.IsDefault && !a.IsDefault {
			existing, err := tx.Addresses.Find(ctx, store.Filter{"userId": userID})
			if err != nil {
				return err
			}
			if err := clearDefault(ctx, tx, existing, a.ID); err != nil {
				return err
			}
			a.IsDefault = true
		}
		out = a
		return tx.Addresses.Update(ctx, a)
	})
	return out, err
}

func (s *Service) DeleteAddress(ctx context.Context, userID, id string) error {
	return s.Store.Update(ctx, func(tx *store.Tx) error {
		if _, err := ownedAddress(ctx, tx, userID, id); err != nil {
			return err
		}
		return tx.Addresses.Delete(ctx, id)
	})
}

func clearDefault(ctx context.Context, tx *store.Tx, list []models.Address, keep string) error {
	for _, a := range list {
		if a.IsDefault && a.ID != keep {
			a.IsDefault = false
			if err := tx.Addresses.Update(ctx, a); err != nil {
				return err
			}
		}
	}
	return nil
}

func ownedAddress(ctx context.Context, tx *store.Tx, userID, id string) (models.Address, error) {
	a, err := tx.Addresses.Get(ctx, id)
	if errors.Is(err, store.ErrNotFound) || (err == nil && a.UserID != userID) {
		return a, apperr.NotFound("address not found")
	}
	return a, err
}

func setString(dst *string, v *string) {
	if v != nil {
		*dst = *v
	}
}
