package httpx

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/ariefcatur/go-delivery-marketplace/internal/accounts"
	"github.com/ariefcatur/go-delivery-marketplace/internal/reviews"
)

func (a *API) createReview(w http.ResponseWriter, r *http.Request) {
	var in reviews.ReviewInput
	if err := decode(r, &in); err != nil {
		a.writeError(w, r, err)
		return
	}
	rv, err := a.Reviews.ReviewCompany(r.Context(), identity(r).ID, in)
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, rv)
}

func (a *API) companyReviews(w http.ResponseWriter, r *http.Request) {
	list, err := a.Reviews.ForCompany(r.Context(), chi.URLParam(r, "companyId"))
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

func (a *API) myReviews(w http.ResponseWriter, r *http.Request) {
	list, err := a.Reviews.ByUser(r.Context(), identity(r).ID)
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

func (a *API) myCompanyReviews(w http.ResponseWriter, r *http.Request) {
	list, err := a.Reviews.ForCompany(r.Context(), identity(r).ID)
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

func (a *API) rateUser(w http.ResponseWriter, r *http.Request) {
	var in reviews.RatingInput
	if err := decode(r, &in); err != nil {
		a.writeError(w, r, err)
		return
	}
	u, err := a.Reviews.RateUser(r.Context(), identity(r).ID, in)
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, accounts.View(u))
}
