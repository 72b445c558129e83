package httpx

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/ariefcatur/go-delivery-marketplace/internal/accounts"
)

type loginReq struct {
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
}

func (a *API) register(w http.ResponseWriter, r *http.Request) {
	var in accounts.RegisterInput
	if err := decode(r, &in); err != nil {
		a.writeError(w, r, err)
		return
	}
	sess, err := a.Accounts.Register(r.Context(), in)
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, sess)
}

func (a *API) login(w http.ResponseWriter, r *http.Request) {
	var req loginReq
	if err := decodeValid(r, &req); err != nil {
		a.writeError(w, r, err)
		return
	}
	sess, err := a.Accounts.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, sess)
}

func (a *API) me(w http.ResponseWriter, r *http.Request) {
	u, err := a.Accounts.Me(r.Context(), identity(r).ID)
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, u)
}

func (a *API) updateMe(w http.ResponseWriter, r *http.Request) {
	var p accounts.UserPatch
	if err := decode(r, &p); err != nil {
		a.writeError(w, r, err)
		return
	}
	u, err := a.Accounts.UpdateMe(r.Context(), identity(r).ID, p)
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, u)
}

func (a *API) deleteMe(w http.ResponseWriter, r *http.Request) {
	if err := a.Accounts.DeleteMe(r.Context(), identity(r).ID); err != nil {
		a.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (a *API) listAddresses(w http.ResponseWriter, r *http.Request) {
	list, err := a.Accounts.Addresses(r.Context(), identity(r).ID)
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

func (a *API) addAddress(w http.ResponseWriter, r *http.Request) {
	var in accounts.AddressInput
	if err := decode(r, &in); err != nil {
		a.writeError(w, r, err)
		return
	}
	addr, err := a.Accounts.AddAddress(r.Context(), identity(r).ID, in)
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, addr)
}

func (a *API) updateAddress(w http.ResponseWriter, r *http.Request) {
	var p accounts.AddressPatch
	if err := decode(r, &p); err != nil {
		a.writeError(w, r, err)
		return
	}
	addr, err := a.Accounts.UpdateAddress(r.Context(), identity(r).ID, chi.URLParam(r, "id"), p)
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, addr)
}

func (a *API) deleteAddress(w http.ResponseWriter, r *http.Request) {
	if err := a.Accounts.DeleteAddress(r.Context(), identity(r).ID, chi.URLParam(r, "id")); err != nil {
		a.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (a *API) listPaymentMethods(w http.ResponseWriter, r *http.Request) {
	list, err := a.Accounts.PaymentMethods(r.Context(), identity(r).ID)
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

func (a *API) addPaymentMethod(w http.ResponseWriter, r *http.Request) {
	var in accounts.PaymentInput
	if err := decode(r, &in); err != nil {
		a.writeError(w, r, err)
		return
	}
	pm, err := a.Accounts.AddPaymentMethod(r.Context(), identity(r).ID, in)
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, pm)
}

func (a *API) updatePaymentMethod(w http.ResponseWriter, r *http.Request) {
	var p accounts.PaymentPatch
	if err := decode(r, &p); err != nil {
		a.writeError(w, r, err)
		return
	}
	pm, err := a.Accounts.UpdatePaymentMethod(r.Context(), identity(r).ID, chi.URLParam(r, "id"), p)
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, pm)
}

func (a *API) deletePaymentMethod(w http.ResponseWriter, r *http.Request) {
	if err := a.Accounts.DeletePaymentMethod(r.Context(), identity(r).ID, chi.URLParam(r, "id")); err != nil {
		a.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (a *API) listFavorites(w http.ResponseWriter, r *http.Request) {
	list, err := a.Accounts.Favorites(r.Context(), identity(r).ID)
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

func (a *API) addFavorite(w http.ResponseWriter, r *http.Request) {
	fav, err := a.Accounts.AddFavorite(r.Context(), identity(r).ID, chi.URLParam(r, "companyId"))
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, fav)
}

func (a *API) removeFavorite(w http.ResponseWriter, r *http.Request) {
	if err := a.Accounts.RemoveFavorite(r.Context(), identity(r).ID, chi.URLParam(r, "companyId")); err != nil {
		a.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
