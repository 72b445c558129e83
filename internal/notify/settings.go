package notify

import (
	"context"
	"errors"
	"time"

	"github.com/ariefcatur/go-delivery-marketplace/internal/models"
	"github.com/ariefcatur/go-delivery-marketplace/internal/store"
)

// SettingsPatch changes only the flags that are present.
type SettingsPatch struct {
	Orders      *OrderPrefsPatch     `json:"orders"`
	Marketing   *MarketingPrefsPatch `json:"marketing"`
	System      *SystemPrefsPatch    `json:"system"`
	Preferences *DevicePrefsPatch    `json:"preferences"`
}

type OrderPrefsPatch struct {
	OrderUpdates   *bool `json:"orderUpdates"`
	DeliveryStatus *bool `json:"deliveryStatus"`
	DeliveryAlerts *bool `json:"deliveryAlerts"`
}

type MarketingPrefsPatch struct {
	Promotions    *bool `json:"promotions"`
	SpecialOffers *bool `json:"specialOffers"`
}

type SystemPrefsPatch struct {
	AppUpdates *bool `json:"appUpdates"`
}

type DevicePrefsPatch struct {
	Sound     *bool `json:"sound"`
	Vibration *bool `json:"vibration"`
}

func (d *Dispatcher) Settings(ctx context.Context, userID string) (models.NotificationSettings, error) {
	var out models.NotificationSettings
	err := d.Store.View(ctx, func(tx *store.Tx) error {
		var err error
		out, err = tx.NotificationSettingsOrDefault(ctx, userID)
		return err
	})
	return out, err
}

func (d *Dispatcher) UpdateSettings(ctx context.Context, userID string, p SettingsPatch) (models.NotificationSettings, error) {
	var out models.NotificationSettings
	err := d.Store.Update(ctx, func(tx *store.Tx) error {
		s, err := tx.NotificationSettingsOrDefault(ctx, userID)
		if err != nil {
			return err
		}
		apply(&s, p)
		s.UpdatedAt = time.Now().UTC()
		out = s
		return upsert(ctx, tx, s)
	})
	return out, err
}

func (d *Dispatcher) ResetSettings(ctx context.Context, userID string) (models.NotificationSettings, error) {
	s := models.DefaultNotificationSettings(userID)
	s.UpdatedAt = time.Now().UTC()
	err := d.Store.Update(ctx, func(tx *store.Tx) error { return upsert(ctx, tx, s) })
	return s, err
}

func upsert(ctx context.Context, tx *store.Tx, s models.NotificationSettings) error {
	err := tx.NotificationSettings.Update(ctx, s)
	if errors.Is(err, store.ErrNotFound) {
		return tx.NotificationSettings.Insert(ctx, s)
	}
	return err
}

func apply(s *models.NotificationSettings, p SettingsPatch) {
	set := func(dst *bool, v *bool) {
		if v != nil {
			*dst = *v
		}
	}
	if o := p.Orders; o != nil {
		set(&s.Orders.OrderUpdates, o.OrderUpdates)
		set(&s.Orders.DeliveryStatus, o.DeliveryStatus)
		set(&s.Orders.DeliveryAlerts, o.DeliveryAlerts)
	}
	if m := p.Marketing; m != nil {
		set(&s.Marketing.Promotions, m.Promotions)
		set(&s.Marketing.SpecialOffers, m.SpecialOffers)
	}
	if sy := p.System; sy != nil {
		set(&s.System.AppUpdates, sy.AppUpdates)
	}
	if pr := p.Preferences; pr != nil {
		set(&s.Preferences.Sound, pr.Sound)
		set(&s.Preferences.Vibration, pr.Vibration)
	}
}
