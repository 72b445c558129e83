// Package staff manages a company's employees. Deleting a member only deactivates them.
package staff

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

type Service struct {
	Store *store.Store
}

func New(s *store.Store) *Service { return &Service{Store: s} }

type Input struct {
	Name         string           `json:"name" validate:"required"`
	Email        string           `json:"email" validate:"omitempty,email"`
	Phone        string           `json:"phone"`
	Role         models.StaffRole `json:"role" validate:"required,oneof=courier cook server manager"`
	VehiclePlate string           `json:"vehiclePlate"`
}

type Patch struct {
	Name         *string           `json:"name" validate:"omitempty,min=1"`
	Email        *string           `json:"email" validate:"omitempty,email"`
	Phone        *string           `json:"phone"`
	Role         *models.StaffRole `json:"role" validate:"omitempty,oneof=courier cook server manager"`
	VehiclePlate *string           `json:"vehiclePlate"`
	Active       *bool             `json:"active"`
}

func (s *Service) List(ctx context.Context, companyID string) ([]models.Staff, error) {
	return s.find(ctx, store.Filter{"companyId": companyID})
}

// Couriers lists the members an order can be assigned to.
func (s *Service) Couriers(ctx context.Context, companyID string) ([]models.Staff, error) {
	return s.find(ctx, store.Filter{"companyId": companyID, "role": models.RoleCourier, "active": true})
}

func (s *Service) find(ctx context.Context, f store.Filter) ([]models.Staff, error) {
	var out []models.Staff
	err := s.Store.View(ctx, func(tx *store.Tx) error {
		var err error
		out, err = tx.Staff.Find(ctx, f)
		return err
	})
	return out, err
}

func (s *Service) Create(ctx context.Context, companyID string, in Input) (models.Staff, error) {
	if err := validate.Struct(in); err != nil {
		return models.Staff{}, err
	}
	m := models.Staff{
		ID:           uuid.NewString(),
		CompanyID:    companyID,
		Name:         in.Name,
		Email:        in.Email,
		Phone:        in.Phone,
		Role:         in.Role,
		VehiclePlate: in.VehiclePlate,
		Active:       true,
		CreatedAt:    time.Now().UTC(),
	}
	normalize(&m)
	err := s.Store.Update(ctx, func(tx *store.Tx) error { return tx.Staff.Insert(ctx, m) })
	return m, err
}

func (s *Service) Update(ctx context.Context, companyID, id string, p Patch) (models.Staff, error) {
	if err := validate.Struct(p); err != nil {
		return models.Staff{}, err
	}
	var out models.Staff
	err := s.Store.Update(ctx, func(tx *store.Tx) error {
		m, err := owned(ctx, tx, companyID, id)
		if err != nil {
			return err
		}
		if p.Name != nil {
			m.Name = *p.Name
		}
		if p.Email != nil {
			m.Email = *p.Email
		}
		if p.Phone != nil {
			m.Phone = *p.Phone
		}
		if p.Role != nil {
			m.Role = *p.Role
		}
		if p.VehiclePlate != nil {
			m.VehiclePlate = *p.VehiclePlate
		}
		if p.Active != nil {
			m.Active = *p.Active
		}
		normalize(&m)
		out = m
		return tx.Staff.Update(ctx, m)
	})
	return out, err
}

func (s *Service) Deactivate(ctx context.Context, companyID, id string) (models.Staff, error) {
	no := false
	return s.Update(ctx, companyID, id, Patch{Active: &no})
}

// normalize drops the vehicle plate of anyone who is not a courier.
func normalize(m *models.Staff) {
	if m.Role != models.RoleCourier {
		m.VehiclePlate = ""
	}
}

func owned(ctx context.Context, tx *store.Tx, companyID, id string) (models.Staff, error) {
	m, err := tx.Staff.Get(ctx, id)
	if errors.Is(err, store.ErrNotFound) || (err == nil && m.CompanyID != companyID) {
		return m, apperr.NotFound("staff member not found")
	}
	return m, err
}
