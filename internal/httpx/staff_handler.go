package httpx

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/ariefcatur/go-delivery-marketplace/internal/staff"
)

func (a *API) listStaff(w http.ResponseWriter, r *http.Request) {
	list, err := a.Staff.List(r.Context(), identity(r).ID)
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

func (a *API) createStaff(w http.ResponseWriter, r *http.Request) {
	var in staff.Input
	if err := decode(r, &in); err != nil {
		a.writeError(w, r, err)
		return
	}
	m, err := a.Staff.Create(r.Context(), identity(r).ID, in)
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, m)
}

func (a *API) updateStaff(w http.ResponseWriter, r *http.Request) {
	var p staff.Patch
	if err := decode(r, &p); err != nil {
		a.writeError(w, r, err)
		return
	}
	m, err := a.Staff.Update(r.Context(), identity(r).ID, chi.URLParam(r, "id"), p)
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, m)
}

func (a *API) deactivateStaff(w http.ResponseWriter, r *http.Request) {
	m, err := a.Staff.Deactivate(r.Context(), identity(r).ID, chi.URLParam(r, "id"))
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, m)
}
