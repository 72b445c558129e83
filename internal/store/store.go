package store

import (
	"context"
	"errors"

	"github.com/ariefcatur/go-delivery-marketplace/internal/models"
)

// Collection names, shared by every backend.
const (
	CollUsers                = "users"
	CollCompanies            = "companies"
	CollCategories           = "categories"
	CollProducts             = "products"
	CollCarts                = "carts"
	CollOrders               = "orders"
	CollAddresses            = "addresses"
	CollPaymentMethods       = "payment_methods"
	CollStaff                = "staff"
	CollNotifications        = "notifications"
	CollNotificationSettings = "notification_settings"
	CollReviews              = "reviews"
	CollUserRatings          = "user_ratings"
	CollCoupons              = "coupons"
	CollUserCoupons          = "user_coupons"
	CollFavorites            = "favorites"
)

// Tx exposes one repository per entity, all bound to the same transaction.
type Tx struct {
	Users                Repository[models.User]
	Companies            Repository[models.Company]
	Categories           Repository[models.Category]
	Products             Repository[models.Product]
	Carts                Repository[models.Cart]
	Orders               Repository[models.Order]
	Addresses            Repository[models.Address]
	PaymentMethods       Repository[models.PaymentMethod]
	Staff                Repository[models.Staff]
	Notifications        Repository[models.Notification]
	NotificationSettings Repository[models.NotificationSettings]
	Reviews              Repository[models.Review]
	UserRatings          Repository[models.UserRating]
	Coupons              Repository[models.Coupon]
	UserCoupons          Repository[models.UserCoupon]
	Favorites            Repository[models.Favorite]
}

func newTx(t Txn) *Tx {
	return &Tx{
		Users:                NewRepository[models.User](t, CollUsers),
		Companies:            NewRepository[models.Company](t, CollCompanies),
		Categories:           NewRepository[models.Category](t, CollCategories),
		Products:             NewRepository[models.Product](t, CollProducts),
		Carts:                NewRepository[models.Cart](t, CollCarts),
		Orders:               NewRepository[models.Order](t, CollOrders),
		Addresses:            NewRepository[models.Address](t, CollAddresses),
		PaymentMethods:       NewRepository[models.PaymentMethod](t, CollPaymentMethods),
		Staff:                NewRepository[models.Staff](t, CollStaff),
		Notifications:        NewRepository[models.Notification](t, CollNotifications),
		NotificationSettings: NewRepository[models.NotificationSettings](t, CollNotificationSettings),
		Reviews:              NewRepository[models.Review](t, CollReviews),
		UserRatings:          NewRepository[models.UserRating](t, CollUserRatings),
		Coupons:              NewRepository[models.Coupon](t, CollCoupons),
		UserCoupons:          NewRepository[models.UserCoupon](t, CollUserCoupons),
		Favorites:            NewRepository[models.Favorite](t, CollFavorites),
	}
}

// Store is what services depend on; the backend behind it is chosen at startup.
type Store struct {
	backend Backend
}

func New(b Backend) *Store { return &Store{backend: b} }

func (s *Store) View(ctx context.Context, fn func(tx *Tx) error) error {
	return s.backend.View(ctx, func(t Txn) error { return fn(newTx(t)) })
}

func (s *Store) Update(ctx context.Context, fn func(tx *Tx) error) error {
	return s.backend.Update(ctx, func(t Txn) error { return fn(newTx(t)) })
}

func (s *Store) Close(ctx context.Context) error { return s.backend.Close(ctx) }

// NotificationSettingsOrDefault loads the user's settings, defaulting when none are stored.
func (tx *Tx) NotificationSettingsOrDefault(ctx context.Context, userID string) (models.NotificationSettings, error) {
	s, err := tx.NotificationSettings.Get(ctx, userID)
	if errors.Is(err, ErrNotFound) {
		return models.DefaultNotificationSettings(userID), nil
	}
	return s, err
}
