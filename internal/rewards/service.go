// Package rewards grants referral coupons and manages the coupon catalog.
package rewards

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/ariefcatur/go-delivery-marketplace/internal/events"
	"github.com/ariefcatur/go-delivery-marketplace/internal/models"
	"github.com/ariefcatur/go-delivery-marketplace/internal/redisx"
	"github.com/ariefcatur/go-delivery-marketplace/internal/store"
)

var granted = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: "marketplace",
	Subsystem: "rewards",
	Name:      "coupons_granted_total",
	Help:      "Referral coupons granted, by side of the referral.",
}, []string{"side"})

type Service struct {
	Store *store.Store
	// Redis is optional; without it redelivered events are still harmless
	// because a user holds each coupon code at most once.
	Redis    *redisx.Client
	Log      *slog.Logger
	Code     string
	Validity time.Duration
	Now      func() time.Time
}

const dedupService = "rewards"

// HandleUserRegistered is installed as the consumer handler for user.registered.
func (s *Service) HandleUserRegistered(ctx context.Context, env events.Envelope) error {
	if env.EventType != events.EventUserRegistered {
		return nil
	}
	dkey := redisx.DedupKey(dedupService, env.EventID)
	first, err := s.Redis.Claim(ctx, dkey, "1", redisx.TTLDedup)
	if err != nil {
		s.Log.WarnContext(ctx, "dedup unavailable, relying on coupon keys", "err", err)
		first = true
	}
	if !first {
		s.Log.DebugContext(ctx, "duplicate event skipped", "event_id", env.EventID)
		return nil
	}

	p, err := events.Decode[events.UserRegisteredPayload](env)
	if err != nil {
		return err
	}
	if err := s.GrantReferral(ctx, p.UserID, p.ReferredBy); err != nil {
		// Let the redelivery through.
		_ = s.Redis.Del(ctx, dkey)
		return err
	}
	return nil
}

// GrantReferral gives the referral coupon to the new user and to the referrer.
// Calling it again for the same pair changes nothing.
func (s *Service) GrantReferral(ctx context.Context, userID, referrerID string) error {
	if referrerID == "" || referrerID == userID {
		return nil
	}
	now := s.now()
	base := models.UserCoupon{
		Code:       s.Code,
		Discount:   "10%",
		ValidUntil: now.Add(s.Validity),
		MinValue:   30,
		IsActive:   true,
		UsesLeft:   1,
		MaxUses:    1,
		CreatedAt:  now,
	}
	referred := base
	referred.UserID = userID
	referred.ID = referred.Key()
	referred.Description = "Discount for being referred by a friend"

	referrer := base
	referrer.UserID = referrerID
	referrer.ID = referrer.Key()
	referrer.Description = "Discount for referring a friend"

	var sides []string
	err := s.Store.Update(ctx, func(tx *store.Tx) error {
		sides = sides[:0]
		for side, c := range map[string]models.UserCoupon{"referred": referred, "referrer": referrer} {
			err := tx.UserCoupons.Insert(ctx, c)
			if errors.Is(err, store.ErrDuplicate) {
				continue
			}
			if err != nil {
				return err
			}
			sides = append(sides, side)
		}
		return nil
	})
	if err != nil {
		return err
	}
	for _, side := range sides {
		granted.WithLabelValues(side).Inc()
	}
	if len(sides) > 0 {
		s.Log.InfoContext(ctx, "referral coupons granted", "user_id", userID, "referrer_id", referrerID, "count", len(sides))
	}
	return nil
}

func (s *Service) now() time.Time {
	if s.Now != nil {
		return s.Now().UTC()
	}
	return time.Now().UTC()
}
