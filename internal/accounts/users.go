// Package accounts owns users and what hangs off them: addresses, payment methods, favorites.
package accounts

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/ariefcatur/go-delivery-marketplace/internal/apperr"
	"github.com/ariefcatur/go-delivery-marketplace/internal/auth"
	"github.com/ariefcatur/go-delivery-marketplace/internal/events"
	"github.com/ariefcatur/go-delivery-marketplace/internal/models"
	"github.com/ariefcatur/go-delivery-marketplace/internal/store"
	"github.com/ariefcatur/go-delivery-marketplace/internal/validate"
)

type Service struct {
	Store     *store.Store
	Issuer    *auth.Issuer
	Publisher events.Publisher
	Producer  string
	Log       *slog.Logger
}

type RegisterInput struct {
	Name         string          `json:"name" validate:"required"`
	Email        string          `json:"email" validate:"required,email"`
	Password     string          `json:"password" validate:"required,min=6"`
	Address      string          `json:"address" validate:"required"`
	Document     string          `json:"document" validate:"required"`
	Phone        string          `json:"phone" validate:"required"`
	Type         models.UserType `json:"type" validate:"required,oneof=customer company developer"`
	ReferralCode string          `json:"referralCode"`
}

// UserView is a user without credentials.
type UserView struct {
	ID            string          `json:"id"`
	Name          string          `json:"name"`
	Email         string          `json:"email"`
	Address       string          `json:"address"`
	Document      string          `json:"document"`
	Phone         string          `json:"phone"`
	Type          models.UserType `json:"type"`
	ReferralCode  string          `json:"referralCode"`
	RatingAverage float64         `json:"ratingAverage"`
	CreatedAt     time.Time       `json:"createdAt"`
}

func View(u models.User) UserView {
	return UserView{
		ID:            u.ID,
		Name:          u.Name,
		Email:         u.Email,
		Address:       u.Address,
		Document:      u.Document,
		Phone:         u.Phone,
		Type:          u.Type,
		ReferralCode:  u.ReferralCode,
		RatingAverage: u.RatingAverage,
		CreatedAt:     u.CreatedAt,
	}
}

type Session struct {
	Token string   `json:"token"`
	User  UserView `json:"user"`
}

// Register creates the account and, when a known referral code is given,
// announces it so both parties are rewarded asynchronously.
func (s *Service) Register(ctx context.Context, in RegisterInput) (Session, error) {
	in.Email = normalizeEmail(in.Email)
	if err := validate.Struct(in); err != nil {
		return Session{}, err
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return Session{}, apperr.Internal("hash password", err)
	}

	now := time.Now().UTC()
	u := models.User{
		ID:           uuid.NewString(),
		Name:         strings.TrimSpace(in.Name),
		Email:        in.Email,
		PasswordHash: string(hash),
		Address:      in.Address,
		Document:     in.Document,
		Phone:        in.Phone,
		Type:         in.Type,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	var referrerID string
	err = s.Store.Update(ctx, func(tx *store.Tx) error {
		if _, err := tx.Users.FindOne(ctx, store.Filter{"email": u.Email}); err == nil {
			return apperr.Conflict("email already registered")
		} else if !errors.Is(err, store.ErrNotFound) {
			return err
		}
		code, err := uniqueReferralCode(ctx, tx, u.Name)
		if err != nil {
			return err
		}
		u.ReferralCode = code

		if in.ReferralCode != "" {
			ref, err := tx.Users.FindOne(ctx, store.Filter{"referralCode": in.ReferralCode})
			switch {
			case err == nil:
				referrerID = ref.ID
			case !errors.Is(err, store.ErrNotFound):
				return err
			}
		}
		// The lookup above races with concurrent registrations; the backend's
		// unique email index settles it.
		if err := tx.Users.Insert(ctx, u); errors.Is(err, store.ErrDuplicate) {
			return apperr.Conflict("email already registered")
		} else if err != nil {
			return err
		}
		return nil
	})
	if err != nil {
		return Session{}, err
	}

	s.announce(ctx, u.ID, referrerID)
	return s.session(u)
}

func (s *Service) announce(ctx context.Context, userID, referrerID string) {
	if s.Publisher == nil {
		return
	}
	env, err := events.NewEnvelope(events.EventUserRegistered, s.Producer, userID,
		events.UserRegisteredPayload{UserID: userID, ReferredBy: referrerID})
	if err == nil {
		err = s.Publisher.Publish(ctx, events.TopicUserRegistered, env)
	}
	if err != nil && s.Log != nil {
		s.Log.ErrorContext(ctx, "publish user registered", "user_id", userID, "err", err)
	}
}

// ReferralCode is the lowercased name without spaces plus a number below 10000.
func ReferralCode(name string) string {
	base := strings.ToLower(strings.Join(strings.Fields(name), ""))
	return fmt.Sprintf("%s%d", base, rand.IntN(10000))
}

func uniqueReferralCode(ctx context.Context, tx *store.Tx, name string) (string, error) {
	for range 20 {
		code := ReferralCode(name)
		_, err := tx.Users.FindOne(ctx, store.Filter{"referralCode": code})
		if errors.Is(err, store.ErrNotFound) {
			return code, nil
		}
		if err != nil {
			return "", err
		}
	}
	return "", apperr.Conflict("could not allocate a referral code, try again")
}

func (s *Service) Login(ctx context.Context, email, password string) (Session, error) {
	var u models.User
	err := s.Store.View(ctx, func(tx *store.Tx) error {
		var err error
		u, err = tx.Users.FindOne(ctx, store.Filter{"email": normalizeEmail(email)})
		return err
	})
	if errors.Is(err, store.ErrNotFound) {
		return Session{}, apperr.Unauthorized("invalid email or password")
	}
	if err != nil {
		return Session{}, err
	}
	if bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(strings.TrimSpace(password))) != nil {
		return Session{}, apperr.Unauthorized("invalid email or password")
	}
	return s.session(u)
}

func (s *Service) session(u models.User) (Session, error) {
	tok, err := s.Issuer.Issue(auth.Identity{ID: u.ID, Type: u.Type, Email: u.Email})
	if err != nil {
		return Session{}, apperr.Internal("issue token", err)
	}
	return Session{Token: tok, User: View(u)}, nil
}

type UserPatch struct {
	Name     *string `json:"name" validate:"omitempty,min=1"`
	Address  *string `json:"address" validate:"omitempty,min=1"`
	Document *string `json:"document" validate:"omitempty,min=1"`
	Phone    *string `json:"phone" validate:"omitempty,min=1"`
	Password *string `json:"password" validate:"omitempty,min=6"`
}

func (s *Service) Me(ctx context.Context, userID string) (UserView, error) {
	var u models.User
	err := s.Store.View(ctx, func(tx *store.Tx) error {
		var err error
		u, err = getUser(ctx, tx, userID)
		return err
	})
	return View(u), err
}

func (s *Service) UpdateMe(ctx context.Context, userID string, p UserPatch) (UserView, error) {
	if err := validate.Struct(p); err != nil {
		return UserView{}, err
	}
	var hash []byte
	if p.Password != nil {
		var err error
		if hash, err = bcrypt.GenerateFromPassword([]byte(*p.Password), bcrypt.DefaultCost); err != nil {
			return UserView{}, apperr.Internal("hash password", err)
		}
	}
	var u models.User
	err := s.Store.Update(ctx, func(tx *store.Tx) error {
		var err error
		if u, err = getUser(ctx, tx, userID); err != nil {
			return err
		}
		if p.Name != nil {
			u.Name = *p.Name
		}
		if p.Address != nil {
			u.Address = *p.Address
		}
		if p.Document != nil {
			u.Document = *p.Document
		}
		if p.Phone != nil {
			u.Phone = *p.Phone
		}
		if hash != nil {
			u.PasswordHash = string(hash)
		}
		u.UpdatedAt = time.Now().UTC()
		return tx.Users.Update(ctx, u)
	})
	return View(u), err
}

func (s *Service) DeleteMe(ctx context.Context, userID string) error {
	return s.Store.Update(ctx, func(tx *store.Tx) error {
		err := tx.Users.Delete(ctx, userID)
		if errors.Is(err, store.ErrNotFound) {
			return apperr.NotFound("user not found")
		}
		return err
	})
}

func getUser(ctx context.Context, tx *store.Tx, id string) (models.User, error) {
	u, err := tx.Users.Get(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		return u, apperr.NotFound("user not found")
	}
	return u, err
}

func normalizeEmail(s string) string { return strings.ToLower(strings.TrimSpace(s)) }
