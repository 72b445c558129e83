package httpx

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/ariefcatur/go-delivery-marketplace/internal/rewards"
)

func (a *API) listCoupons(w http.ResponseWriter, r *http.Request) {
	list, err := a.Rewards.Coupons(r.Context())
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

func (a *API) createCoupon(w http.ResponseWriter, r *http.Request) {
	var in rewards.CouponInput
	if err := decode(r, &in); err != nil {
		a.writeError(w, r, err)
		return
	}
	c, err := a.Rewards.CreateCoupon(r.Context(), in)
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, c)
}

func (a *API) updateCoupon(w http.ResponseWriter, r *http.Request) {
	var p rewards.CouponPatch
	if err := decode(r, &p); err != nil {
		a.writeError(w, r, err)
		return
	}
	c, err := a.Rewards.UpdateCoupon(r.Context(), chi.URLParam(r, "id"), p)
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, c)
}

func (a *API) deleteCoupon(w http.ResponseWriter, r *http.Request) {
	if err := a.Rewards.DeleteCoupon(r.Context(), chi.URLParam(r, "id")); err != nil {
		a.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (a *API) listUserCoupons(w http.ResponseWriter, r *http.Request) {
	list, err := a.Rewards.UserCoupons(r.Context(), identity(r).ID)
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

func (a *API) claimCoupon(w http.ResponseWriter, r *http.Request) {
	uc, err := a.Rewards.ClaimCoupon(r.Context(), identity(r).ID, chi.URLParam(r, "couponId"))
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, uc)
}

func (a *API) deleteUserCoupon(w http.ResponseWriter, r *http.Request) {
	if err := a.Rewards.DeleteUserCoupon(r.Context(), identity(r).ID, chi.URLParam(r, "id")); err != nil {
		a.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
