package httpx

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/ariefcatur/go-delivery-marketplace/internal/apperr"
	"github.com/ariefcatur/go-delivery-marketplace/internal/models"
	"github.com/ariefcatur/go-delivery-marketplace/internal/redisx"
)

// HeaderIdempotencyKey lets a client retry checkout without placing a second order.
const HeaderIdempotencyKey = "Idempotency-Key"

// pendingMarker holds the idempotency key while the first checkout runs.
const pendingMarker = "pending"

type checkoutReq struct {
	AddressID       string `json:"addressId"`
	PaymentMethodID string `json:"paymentMethodId"`
}

type orderResp struct {
	Order      models.Order `json:"order"`
	Idempotent bool         `json:"idempotent,omitempty"`
}

type statusReq struct {
	Status models.OrderStatus `json:"status" validate:"required"`
}

type assignReq struct {
	CourierID string `json:"courierId" validate:"required"`
}

// cachedStatus is what the status cache holds; owners are kept for the access check.
type cachedStatus struct {
	OrderID   string             `json:"orderId"`
	Status    models.OrderStatus `json:"status"`
	UserID    string             `json:"userId"`
	CompanyID string             `json:"companyId"`
	UpdatedAt time.Time          `json:"updatedAt"`
}

type statusResp struct {
	OrderID   string             `json:"orderId"`
	Status    models.OrderStatus `json:"status"`
	UpdatedAt time.Time          `json:"updatedAt"`
}

func (a *API) checkout(w http.ResponseWriter, r *http.Request) {
	var req checkoutReq
	if err := decode(r, &req); err != nil {
		a.writeError(w, r, err)
		return
	}
	userID := identity(r).ID

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	idemKey := ""
	if k := r.Header.Get(HeaderIdempotencyKey); k != "" {
		idemKey = redisx.IdemCheckoutKey(userID, k)
		first, err := a.Redis.Claim(ctx, idemKey, pendingMarker, redisx.TTLIdempotency)
		if err != nil {
			a.Log.WarnContext(ctx, "idempotency check skipped", "err", err)
			idemKey = ""
		} else if !first {
			a.replayCheckout(ctx, w, r, idemKey)
			return
		}
	}

	o, err := a.Orders.Checkout(ctx, userID, req.AddressID, req.PaymentMethodID)
	if err != nil {
		if idemKey != "" {
			_ = a.Redis.Del(ctx, idemKey)
		}
		a.writeError(w, r, err)
		return
	}
	if idemKey != "" {
		_ = a.Redis.Set(ctx, idemKey, o.ID, redisx.TTLIdempotency)
	}
	a.cacheStatus(ctx, o)
	writeJSON(w, http.StatusCreated, orderResp{Order: o})
}

func (a *API) replayCheckout(ctx context.Context, w http.ResponseWriter, r *http.Request, idemKey string) {
	orderID, ok, err := a.Redis.Get(ctx, idemKey)
	if err != nil {
		a.writeError(w, r, apperr.Internal("read idempotency key", err))
		return
	}
	if !ok || orderID == pendingMarker {
		a.writeError(w, r, apperr.Conflict("a checkout with this idempotency key is in progress"))
		return
	}
	o, err := a.Orders.Get(ctx, identity(r).ID, orderID)
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, orderResp{Order: o, Idempotent: true})
}

func (a *API) myOrders(w http.ResponseWriter, r *http.Request) {
	list, err := a.Orders.ForUser(r.Context(), identity(r).ID)
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

func (a *API) activeOrder(w http.ResponseWriter, r *http.Request) {
	o, found, err := a.Orders.Active(r.Context(), identity(r).ID)
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	if !found {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	writeJSON(w, http.StatusOK, o)
}

func (a *API) getOrder(w http.ResponseWriter, r *http.Request) {
	o, err := a.Orders.Get(r.Context(), identity(r).ID, chi.URLParam(r, "id"))
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, o)
}

// orderStatus answers from the Redis cache when it can and fills it otherwise.
func (a *API) orderStatus(w http.ResponseWriter, r *http.Request) {
	orderID := chi.URLParam(r, "id")
	requester := identity(r).ID

	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	var cs cachedStatus
	hit, err := a.Redis.GetJSON(ctx, redisx.OrderStatusKey(orderID), &cs)
	if err != nil {
		a.Log.WarnContext(ctx, "status cache read failed", "order_id", orderID, "err", err)
	}
	if !hit {
		o, err := a.Orders.Get(ctx, requester, orderID)
		if err != nil {
			a.writeError(w, r, err)
			return
		}
		cs = a.cacheStatus(ctx, o)
	}
	if requester != cs.UserID && requester != cs.CompanyID {
		a.writeError(w, r, apperr.NotFound("order not found"))
		return
	}
	writeJSON(w, http.StatusOK, statusResp{OrderID: cs.OrderID, Status: cs.Status, UpdatedAt: cs.UpdatedAt})
}

func (a *API) cancelOrder(w http.ResponseWriter, r *http.Request) {
	o, err := a.Orders.Cancel(r.Context(), identity(r).ID, chi.URLParam(r, "id"))
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	a.cacheStatus(r.Context(), o)
	writeJSON(w, http.StatusOK, orderResp{Order: o})
}

func (a *API) repeatOrder(w http.ResponseWriter, r *http.Request) {
	c, err := a.Orders.Repeat(r.Context(), identity(r).ID, chi.URLParam(r, "id"))
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, c)
}

func (a *API) repeatLastOrder(w http.ResponseWriter, r *http.Request) {
	c, err := a.Orders.RepeatLast(r.Context(), identity(r).ID)
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, c)
}

func (a *API) companyOrders(w http.ResponseWriter, r *http.Request) {
	list, err := a.Orders.ForCompany(r.Context(), identity(r).ID)
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

func (a *API) setOrderStatus(w http.ResponseWriter, r *http.Request) {
	var req statusReq
	if err := decodeValid(r, &req); err != nil {
		a.writeError(w, r, err)
		return
	}
	o, err := a.Orders.SetStatus(r.Context(), identity(r).ID, chi.URLParam(r, "id"), req.Status)
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	a.cacheStatus(r.Context(), o)
	writeJSON(w, http.StatusOK, orderResp{Order: o})
}

func (a *API) assignCourier(w http.ResponseWriter, r *http.Request) {
	var req assignReq
	if err := decodeValid(r, &req); err != nil {
		a.writeError(w, r, err)
		return
	}
	o, err := a.Orders.AssignCourier(r.Context(), identity(r).ID, chi.URLParam(r, "id"), req.CourierID)
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, orderResp{Order: o})
}

func (a *API) couriers(w http.ResponseWriter, r *http.Request) {
	list, err := a.Staff.Couriers(r.Context(), identity(r).ID)
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

func (a *API) cacheStatus(ctx context.Context, o models.Order) cachedStatus {
	cs := cachedStatus{OrderID: o.ID, Status: o.Status, UserID: o.UserID, CompanyID: o.CompanyID, UpdatedAt: o.UpdatedAt}
	if err := a.Redis.SetJSON(ctx, redisx.OrderStatusKey(o.ID), cs, redisx.TTLStatusCache); err != nil {
		a.Log.WarnContext(ctx, "status cache write failed", "order_id", o.ID, "err", err)
	}
	return cs
}
