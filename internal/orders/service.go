// Package orders turns carts into orders and moves them through their lifecycle.
package orders

import (
	"context"
	"errors"
	"log/slog"
	"slices"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/ariefcatur/go-delivery-marketplace/internal/apperr"
	"github.com/ariefcatur/go-delivery-marketplace/internal/events"
	"github.com/ariefcatur/go-delivery-marketplace/internal/models"
	"github.com/ariefcatur/go-delivery-marketplace/internal/money"
	"github.com/ariefcatur/go-delivery-marketplace/internal/notify"
	"github.com/ariefcatur/go-delivery-marketplace/internal/store"
)

type Service struct {
	Store     *store.Store
	Publisher events.Publisher
	Producer  string
	Log       *slog.Logger
}

// Checkout converts the user's cart into a pending order and consumes the cart.
func (s *Service) Checkout(ctx context.Context, userID, addressID, paymentMethodID string) (models.Order, error) {
	var order models.Order
	err := s.Store.Update(ctx, func(tx *store.Tx) error {
		c, err := tx.Carts.Get(ctx, userID)
		if errors.Is(err, store.ErrNotFound) {
			return apperr.EmptyCart()
		}
		if err != nil {
			return err
		}
		if len(c.Items) == 0 {
			return apperr.EmptyCart()
		}

		if addressID == "" || paymentMethodID == "" {
			return apperr.Validation("addressId and paymentMethodId are required")
		}
		addr, err := tx.Addresses.Get(ctx, addressID)
		if errors.Is(err, store.ErrNotFound) || (err == nil && addr.UserID != userID) {
			return apperr.InvalidReference("address %s does not belong to the user", addressID)
		}
		if err != nil {
			return err
		}
		pm, err := tx.PaymentMethods.Get(ctx, paymentMethodID)
		if errors.Is(err, store.ErrNotFound) || (err == nil && pm.UserID != userID) {
			return apperr.InvalidReference("payment method %s does not belong to the user", paymentMethodID)
		}
		if err != nil {
			return err
		}

		company, err := tx.Companies.Get(ctx, c.CompanyID)
		if errors.Is(err, store.ErrNotFound) {
			return apperr.NotFound("company not found")
		}
		if err != nil {
			return err
		}
		if company.BlocksUser(userID) {
			return apperr.Forbidden("the company does not accept orders from this user")
		}
		if company.BlocksRegion(addr.PostalCode) {
			return apperr.Forbidden("the company does not deliver to postal code %s", addr.PostalCode)
		}

		now := time.Now().UTC()
		order = models.Order{
			ID:              uuid.NewString(),
			UserID:          userID,
			CompanyID:       c.CompanyID,
			AddressID:       addressID,
			PaymentMethodID: paymentMethodID,
			Items:           make([]models.CartItem, 0, len(c.Items)),
			Total:           Total(c.Items),
			Status:          models.StatusPending,
			History:         []models.StatusChange{},
			CreatedAt:       now,
			UpdatedAt:       now,
		}
		for _, it := range c.Items {
			order.Items = append(order.Items, it.Clone())
		}
		if err := tx.Orders.Insert(ctx, order); err != nil {
			return err
		}
		return tx.Carts.Delete(ctx, userID)
	})
	if err != nil {
		return models.Order{}, err
	}

	checkouts.Inc()
	items := make([]events.OrderItem, 0, len(order.Items))
	for _, it := range order.Items {
		items = append(items, events.OrderItem{ProductID: it.ProductID, Quantity: it.Quantity, Price: it.Price})
	}
	s.publish(ctx, events.TopicOrderCreated, events.EventOrderCreated, order.ID, events.OrderCreatedPayload{
		OrderID:   order.ID,
		UserID:    order.UserID,
		CompanyID: order.CompanyID,
		Items:     items,
		Total:     order.Total,
	})
	return order, nil
}

// Total is Σ(price·qty + Σ add-on prices), rounded half away from zero to cents.
func Total(items []models.CartItem) float64 {
	sum := decimal.Zero
	for _, it := range items {
		addOns := make([]float64, 0, len(it.AddOns))
		for _, a := range it.AddOns {
			addOns = append(addOns, a.Price)
		}
		sum = sum.Add(money.Line(it.Price, it.Quantity, addOns...))
	}
	return money.Float(sum)
}

// SetStatus moves a company's order along the lifecycle. Accepting reserves stock for
// every item in the same transaction; one short product rejects the whole transition.
func (s *Service) SetStatus(ctx context.Context, companyID, orderID string, to models.OrderStatus) (models.Order, error) {
	if !ValidStatus(to) {
		return models.Order{}, apperr.InvalidStatus("unknown status %q", to)
	}
	var (
		order models.Order
		from  models.OrderStatus
	)
	err := s.Store.Update(ctx, func(tx *store.Tx) error {
		var err error
		order, err = companyOrder(ctx, tx, companyID, orderID)
		if err != nil {
			return err
		}
		from = order.Status
		if !CanTransition(from, to) {
			return apperr.InvalidTransition("cannot move order from %s to %s", from, to)
		}
		if to == models.StatusAccepted {
			if err := reserveStock(ctx, tx, order.Items); err != nil {
				return err
			}
		}
		advance(&order, to)
		if err := tx.Orders.Update(ctx, order); err != nil {
			return err
		}

		msg, ok := statusMessages[to]
		if !ok {
			return nil
		}
		settings, err := tx.NotificationSettingsOrDefault(ctx, order.UserID)
		if err != nil {
			return err
		}
		if !settings.Orders.OrderUpdates {
			return nil
		}
		_, err = notify.Append(ctx, tx, order.UserID, "Order update", msg, models.CategoryOrder)
		return err
	})
	if err != nil {
		if errors.Is(err, apperr.ErrInsufficientStock) {
			stockRejections.Inc()
		}
		return models.Order{}, err
	}
	s.statusChanged(ctx, order, from)
	return order, nil
}

// reserveStock is all-or-nothing: every product is checked before any is decremented.
func reserveStock(ctx context.Context, tx *store.Tx, items []models.CartItem) error {
	ids, want := stockDemand(items)

	products := make([]models.Product, 0, len(ids))
	for _, id := range ids {
		p, err := tx.Products.Get(ctx, id)
		if errors.Is(err, store.ErrNotFound) {
			return apperr.InsufficientStock(id)
		}
		if err != nil {
			return err
		}
		if p.Stock < want[id] {
			return apperr.InsufficientStock(p.Name)
		}
		products = append(products, p)
	}

	now := time.Now().UTC()
	for _, p := range products {
		p.Stock = max(p.Stock-want[p.ID], 0)
		p.UpdatedAt = now
		if err := tx.Products.Update(ctx, p); err != nil {
			return err
		}
	}
	return nil
}

// stockDemand sums quantities per product and returns the product ids sorted,
// so concurrent acceptances lock rows in the same order.
func stockDemand(items []models.CartItem) ([]string, map[string]int) {
	want := make(map[string]int, len(items))
	for _, it := range items {
		want[it.ProductID] += it.Quantity
	}
	ids := make([]string, 0, len(want))
	for id := range want {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids, want
}

// Cancel lets a customer withdraw an order the company has not accepted yet.
// Stock is never touched since pending orders hold none.
func (s *Service) Cancel(ctx context.Context, userID, orderID string) (models.Order, error) {
	var (
		order models.Order
		from  models.OrderStatus
	)
	err := s.Store.Update(ctx, func(tx *store.Tx) error {
		var err error
		order, err = userOrder(ctx, tx, userID, orderID)
		if err != nil {
			return err
		}
		from = order.Status
		if from != models.StatusPending {
			return apperr.InvalidTransition("only pending orders can be canceled, order is %s", from)
		}
		advance(&order, models.StatusCanceled)
		return tx.Orders.Update(ctx, order)
	})
	if err != nil {
		return models.Order{}, err
	}
	s.statusChanged(ctx, order, from)
	return order, nil
}

func (s *Service) AssignCourier(ctx context.Context, companyID, orderID, courierID string) (models.Order, error) {
	if courierID == "" {
		return models.Order{}, apperr.Validation("courierId is required")
	}
	var order models.Order
	err := s.Store.Update(ctx, func(tx *store.Tx) error {
		var err error
		order, err = companyOrder(ctx, tx, companyID, orderID)
		if err != nil {
			return err
		}
		courier, err := tx.Staff.Get(ctx, courierID)
		if errors.Is(err, store.ErrNotFound) || (err == nil && courier.CompanyID != companyID) {
			return apperr.NotFound("courier not found")
		}
		if err != nil {
			return err
		}
		if !courier.AssignableCourier() {
			return apperr.Validation("staff member %s is not an active courier", courier.Name)
		}
		order.CourierID = courier.ID
		order.UpdatedAt = time.Now().UTC()
		return tx.Orders.Update(ctx, order)
	})
	if err != nil {
		return models.Order{}, err
	}
	return order, nil
}

func advance(o *models.Order, to models.OrderStatus) {
	now := time.Now().UTC()
	o.History = append(o.History, models.StatusChange{From: o.Status, To: to, At: now})
	o.Status = to
	o.UpdatedAt = now
}

func (s *Service) statusChanged(ctx context.Context, o models.Order, from models.OrderStatus) {
	transitions.WithLabelValues(string(from), string(o.Status)).Inc()
	s.publish(ctx, events.TopicOrderStatusChanged, events.EventOrderStatusChanged, o.ID, events.OrderStatusChangedPayload{
		OrderID:   o.ID,
		UserID:    o.UserID,
		CompanyID: o.CompanyID,
		From:      string(from),
		To:        string(o.Status),
	})
}

// publish runs after commit; a failure is logged and never undoes the write.
func (s *Service) publish(ctx context.Context, topic, eventType, correlationID string, payload any) {
	if s.Publisher == nil {
		return
	}
	env, err := events.NewEnvelope(eventType, s.Producer, correlationID, payload)
	if err == nil {
		err = s.Publisher.Publish(ctx, topic, env)
	}
	if err != nil && s.Log != nil {
		s.Log.ErrorContext(ctx, "publish event", "topic", topic, "correlation_id", correlationID, "err", err)
	}
}

func userOrder(ctx context.Context, tx *store.Tx, userID, orderID string) (models.Order, error) {
	o, err := tx.Orders.Get(ctx, orderID)
	if errors.Is(err, store.ErrNotFound) || (err == nil && o.UserID != userID) {
		return o, apperr.NotFound("order not found")
	}
	return o, err
}

func companyOrder(ctx context.Context, tx *store.Tx, companyID, orderID string) (models.Order, error) {
	o, err := tx.Orders.Get(ctx, orderID)
	if errors.Is(err, store.ErrNotFound) || (err == nil && o.CompanyID != companyID) {
		return o, apperr.NotFound("order not found")
	}
	return o, err
}
