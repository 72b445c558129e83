package accounts

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"

	"github.com/ariefcatur/go-delivery-marketplace/internal/apperr"
	"github.com/ariefcatur/go-delivery-marketplace/internal/models"
	"github.com/ariefcatur/go-delivery-marketplace/internal/store"
	"github.com/ariefcatur/go-delivery-marketplace/internal/validate"
)

// PaymentInput carries the full card number and CVV; neither is stored.
type PaymentInput struct {
	HolderName string          `json:"holderName" validate:"required"`
	CardNumber string          `json:"cardNumber" validate:"required"`
	Expiry     string          `json:"expiry" validate:"required"`
	CVV        string          `json:"cvv" validate:"omitempty,numeric,min=3,max=4"`
	Type       models.CardType `json:"type" validate:"required,oneof=credit debit"`
}

type PaymentPatch struct {
	HolderName *string          `json:"holderName" validate:"omitempty,min=1"`
	Expiry     *string          `json:"expiry" validate:"omitempty,min=1"`
	Type       *models.CardType `json:"type" validate:"omitempty,oneof=credit debit"`
}

// MaskCard keeps the last four digits: "**** **** **** 1234".
func MaskCard(number string) (string, error) {
	digits := strings.Map(func(r rune) rune {
		if r == ' ' || r == '-' {
			return -1
		}
		return r
	}, number)
	if len(digits) < 12 || len(digits) > 19 || strings.Trim(digits, "0123456789") != "" {
		return "", apperr.Validation("cardNumber must have 12 to 19 digits")
	}
	return "**** **** **** " + digits[len(digits)-4:], nil
}

func (s *Service) PaymentMethods(ctx context.Context, userID string) ([]models.PaymentMethod, error) {
	var out []models.PaymentMethod
	err := s.Store.View(ctx, func(tx *store.Tx) error {
		var err error
		out, err = tx.PaymentMethods.Find(ctx, store.Filter{"userId": userID})
		return err
	})
	return out, err
}

func (s *Service) AddPaymentMethod(ctx context.Context, userID string, in PaymentInput) (models.PaymentMethod, error) {
	if err := validate.Struct(in); err != nil {
		return models.PaymentMethod{}, err
	}
	masked, err := MaskCard(in.CardNumber)
	if err != nil {
		return models.PaymentMethod{}, err
	}
	pm := models.PaymentMethod{
		ID:         uuid.NewString(),
		UserID:     userID,
		HolderName: in.HolderName,
		CardNumber: masked,
		Expiry:     in.Expiry,
		Type:       in.Type,
	}
	err = s.Store.Update(ctx, func(tx *store.Tx) error { return tx.PaymentMethods.Insert(ctx, pm) })
	return pm, err
}

func (s *Service) UpdatePaymentMethod(ctx context.Context, userID, id string, p PaymentPatch) (models.PaymentMethod, error) {
	if err := validate.Struct(p); err != nil {
		return models.PaymentMethod{}, err
	}
	var out models.PaymentMethod
	err := s.Store.Update(ctx, func(tx *store.Tx) error {
		pm, err := ownedPaymentMethod(ctx, tx, userID, id)
		if err != nil {
			return err
		}
		setString(&pm.HolderName, p.HolderName)
		setString(&pm.Expiry, p.Expiry)
		if p.Type != nil {
			pm.Type = *p.Type
		}
		out = pm
		return tx.PaymentMethods.Update(ctx, pm)
	})
	return out, err
}

func (s *Service) DeletePaymentMethod(ctx context.Context, userID, id string) error {
	return s.Store.Update(ctx, func(tx *store.Tx) error {
		if _, err := ownedPaymentMethod(ctx, tx, userID, id); err != nil {
			return err
		}
		return tx.PaymentMethods.Delete(ctx, id)
	})
}

func ownedPaymentMethod(ctx context.Context, tx *store.Tx, userID, id string) (models.PaymentMethod, error) {
	pm, err := tx.PaymentMethods.Get(ctx, id)
	if errors.Is(err, store.ErrNotFound) || (err == nil && pm.UserID != userID) {
		return pm, apperr.NotFound("payment method not found")
	}
	return pm, err
}
