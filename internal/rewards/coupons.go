package rewards

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

type CouponInput struct {
	Code        string  `json:"code" validate:"required"`
	Discount    string  `json:"discount" validate:"required"`
	Description string  `json:"description"`
	MinValue    float64 `json:"minValue" validate:"gte=0"`
	IsActive    *bool   `json:"isActive"`
}

type CouponPatch struct {
	Code        *string  `json:"code" validate:"omitempty,min=1"`
	Discount    *string  `json:"discount" validate:"omitempty,min=1"`
	Description *string  `json:"description"`
	MinValue    *float64 `json:"minValue" validate:"omitempty,gte=0"`
	IsActive    *bool    `json:"isActive"`
}

func (s *Service) Coupons(ctx context.Context) ([]models.Coupon, error) {
	var out []models.Coupon
	err := s.Store.View(ctx, func(tx *store.Tx) error {
		var err error
		out, err = tx.Coupons.Find(ctx, nil)
		return err
	})
	return out, err
}

func (s *Service) CreateCoupon(ctx context.Context, in CouponInput) (models.Coupon, error) {
	if err := validate.Struct(in); err != nil {
		return models.Coupon{}, err
	}
	c := models.Coupon{
		ID:          uuid.NewString(),
		Code:        strings.ToUpper(strings.TrimSpace(in.Code)),
		Discount:    in.Discount,
		Description: in.Description,
		MinValue:    in.MinValue,
		IsActive:    in.IsActive == nil || *in.IsActive,
	}
	err := s.Store.Update(ctx, func(tx *store.Tx) error {
		if err := uniqueCode(ctx, tx, c.Code, ""); err != nil {
			return err
		}
		return tx.Coupons.Insert(ctx, c)
	})
	return c, err
}

func (s *Service) UpdateCoupon(ctx context.Context, id string, p CouponPatch) (models.Coupon, error) {
	if err := validate.Struct(p); err != nil {
		return models.Coupon{}, err
	}
	var out models.Coupon
	err := s.Store.Update(ctx, func(tx *store.Tx) error {
		c, err := getCoupon(ctx, tx, id)
		if err != nil {
			return err
		}
		if p.Code != nil {
			code := strings.ToUpper(strings.TrimSpace(*p.Code))
			if err := uniqueCode(ctx, tx, code, c.ID); err != nil {
				return err
			}
			c.Code = code
		}
		if p.Discount != nil {
			c.Discount = *p.Discount
		}
		if p.Description != nil {
			c.Description = *p.Description
		}
		if p.MinValue != nil {
			c.MinValue = *p.MinValue
		}
		if p.IsActive != nil {
			c.IsActive = *p.IsActive
		}
		out = c
		return tx.Coupons.Update(ctx, c)
	})
	return out, err
}

func (s *Service) DeleteCoupon(ctx context.Context, id string) error {
	return s.Store.Update(ctx, func(tx *store.Tx) error {
		err := tx.Coupons.Delete(ctx, id)
		if errors.Is(err, store.ErrNotFound) {
			return apperr.NotFound("coupon not found")
		}
		return err
	})
}

func (s *Service) UserCoupons(ctx context.Context, userID string) ([]models.UserCoupon, error) {
	var out []models.UserCoupon
	err := s.Store.View(ctx, func(tx *store.Tx) error {
		var err error
		out, err = tx.UserCoupons.Find(ctx, store.Filter{"userId": userID})
		return err
	})
	return out, err
}

// ClaimCoupon copies a system coupon into the user's wallet.
func (s *Service) ClaimCoupon(ctx context.Context, userID, couponID string) (models.UserCoupon, error) {
	var uc models.UserCoupon
	err := s.Store.Update(ctx, func(tx *store.Tx) error {
		c, err := getCoupon(ctx, tx, couponID)
		if err != nil {
			return err
		}
		if !c.IsActive {
			return apperr.Validation("coupon %s is not active", c.Code)
		}
		now := s.now()
		uc = models.UserCoupon{
			UserID:      userID,
			Code:        c.Code,
			Discount:    c.Discount,
			Description: c.Description,
			ValidUntil:  now.Add(s.Validity),
			MinValue:    c.MinValue,
			IsActive:    true,
			UsesLeft:    1,
			MaxUses:     1,
			CreatedAt:   now,
		}
		uc.ID = uc.Key()
		err = tx.UserCoupons.Insert(ctx, uc)
		if errors.Is(err, store.ErrDuplicate) {
			return apperr.Conflict("coupon %s is already in your wallet", c.Code)
		}
		return err
	})
	return uc, err
}

func (s *Service) DeleteUserCoupon(ctx context.Context, userID, id string) error {
	return s.Store.Update(ctx, func(tx *store.Tx) error {
		uc, err := tx.UserCoupons.Get(ctx, id)
		if errors.Is(err, store.ErrNotFound) || (err == nil && uc.UserID != userID) {
			return apperr.NotFound("coupon not found")
		}
		if err != nil {
			return err
		}
		return tx.UserCoupons.Delete(ctx, id)
	})
}

func getCoupon(ctx context.Context, tx *store.Tx, id string) (models.Coupon, error) {
	c, err := tx.Coupons.Get(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		return c, apperr.NotFound("coupon not found")
	}
	return c, err
}

func uniqueCode(ctx context.Context, tx *store.Tx, code, self string) error {
	existing, err := tx.Coupons.FindOne(ctx, store.Filter{"code": code})
	if errors.Is(err, store.ErrNotFound) {
		return nil
	}
	if err != nil {
		return err
	}
	if existing.ID != self {
		return apperr.Conflict("coupon code %s already exists", code)
	}
	return nil
}
