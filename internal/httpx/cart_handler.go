package httpx

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/ariefcatur/go-delivery-marketplace/internal/cart"
)

func (a *API) getCart(w http.ResponseWriter, r *http.Request) {
	c, err := a.Cart.Get(r.Context(), identity(r).ID)
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, c)
}

func (a *API) addCartItem(w http.ResponseWriter, r *http.Request) {
	var in cart.AddItemInput
	if err := decode(r, &in); err != nil {
		a.writeError(w, r, err)
		return
	}
	c, err := a.Cart.AddItem(r.Context(), identity(r).ID, in)
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, c)
}

func (a *API) updateCartItem(w http.ResponseWriter, r *http.Request) {
	var p cart.ItemPatch
	if err := decode(r, &p); err != nil {
		a.writeError(w, r, err)
		return
	}
	c, err := a.Cart.UpdateItem(r.Context(), identity(r).ID, chi.URLParam(r, "itemId"), p)
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, c)
}

func (a *API) removeCartItem(w http.ResponseWriter, r *http.Request) {
	c, err := a.Cart.RemoveItem(r.Context(), identity(r).ID, chi.URLParam(r, "itemId"))
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, c)
}

func (a *API) clearCart(w http.ResponseWriter, r *http.Request) {
	if err := a.Cart.Clear(r.Context(), identity(r).ID); err != nil {
		a.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
