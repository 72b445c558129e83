// Package notify persists in-app notifications and the per-user settings that gate them.
package notify

import (
	"context"
	"errors"
	"slices"
	"time"

	"github.com/google/uuid"

	"github.com/ariefcatur/go-delivery-marketplace/internal/apperr"
	"github.com/ariefcatur/go-delivery-marketplace/internal/models"
	"github.com/ariefcatur/go-delivery-marketplace/internal/store"
)

type Dispatcher struct {
	Store *store.Store
}

func New(s *store.Store) *Dispatcher { return &Dispatcher{Store: s} }

// Target is either one user or everybody.
type Target struct {
	UserID    string
	Broadcast bool
}

func ValidCategory(c models.NotificationCategory) bool {
	switch c {
	case models.CategoryOrder, models.CategoryMarketing, models.CategorySystem:
		return true
	}
	return false
}

// Notify persists one notification per eligible recipient and returns them.
// A targeted user who opted out of the category is Forbidden; broadcast skips them.
func (d *Dispatcher) Notify(ctx context.Context, to Target, title, message string, c models.NotificationCategory) ([]models.Notification, error) {
	if !ValidCategory(c) {
		return nil, apperr.Validation("category must be one of order, marketing, system")
	}
	if title == "" || message == "" {
		return nil, apperr.Validation("title and message are required")
	}
	if !to.Broadcast && to.UserID == "" {
		return nil, apperr.Validation("userId is required")
	}

	var sent []models.Notification
	err := d.Store.Update(ctx, func(tx *store.Tx) error {
		var users []models.User
		if to.Broadcast {
			var err error
			if users, err = tx.Users.Find(ctx, nil); err != nil {
				return err
			}
		} else {
			u, err := tx.Users.Get(ctx, to.UserID)
			if errors.Is(err, store.ErrNotFound) {
				return apperr.NotFound("user not found")
			}
			if err != nil {
				return err
			}
			users = []models.User{u}
		}

		for _, u := range users {
			settings, err := tx.NotificationSettingsOrDefault(ctx, u.ID)
			if err != nil {
				return err
			}
			if !settings.Allows(c) {
				if to.Broadcast {
					continue
				}
				return apperr.Forbidden("user has disabled %s notifications", c)
			}
			n, err := Append(ctx, tx, u.ID, title, message, c)
			if err != nil {
				return err
			}
			sent = append(sent, n)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return sent, nil
}

// Append stores a notification inside tx without checking settings.
func Append(ctx context.Context, tx *store.Tx, userID, title, message string, c models.NotificationCategory) (models.Notification, error) {
	n := models.Notification{
		ID:        uuid.NewString(),
		UserID:    userID,
		Title:     title,
		Message:   message,
		Category:  c,
		CreatedAt: time.Now().UTC(),
	}
	return n, tx.Notifications.Insert(ctx, n)
}

// List returns the user's notifications newest first, optionally of one category.
func (d *Dispatcher) List(ctx context.Context, userID string, c models.NotificationCategory) ([]models.Notification, error) {
	f := store.Filter{"userId": userID}
	if c != "" {
		if !ValidCategory(c) {
			return nil, apperr.Validation("unknown category %q", c)
		}
		f["category"] = c
	}
	var out []models.Notification
	err := d.Store.View(ctx, func(tx *store.Tx) error {
		var err error
		out, err = tx.Notifications.Find(ctx, f)
		return err
	})
	slices.SortStableFunc(out, func(a, b models.Notification) int { return b.CreatedAt.Compare(a.CreatedAt) })
	return out, err
}

func (d *Dispatcher) MarkRead(ctx context.Context, userID, id string) (models.Notification, error) {
	var out models.Notification
	err := d.Store.Update(ctx, func(tx *store.Tx) error {
		n, err := owned(ctx, tx, userID, id)
		if err != nil {
			return err
		}
		n.Read = true
		out = n
		return tx.Notifications.Update(ctx, n)
	})
	return out, err
}

func (d *Dispatcher) Delete(ctx context.Context, userID, id string) error {
	return d.Store.Update(ctx, func(tx *store.Tx) error {
		if _, err := owned(ctx, tx, userID, id); err != nil {
			return err
		}
		return tx.Notifications.Delete(ctx, id)
	})
}

func owned(ctx context.Context, tx *store.Tx, userID, id string) (models.Notification, error) {
	n, err := tx.Notifications.Get(ctx, id)
	if errors.Is(err, store.ErrNotFound) || (err == nil && n.UserID != userID) {
		return n, apperr.NotFound("notification not found")
	}
	return n, err
}
