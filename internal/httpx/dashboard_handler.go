package httpx

import (
	"net/http"
	"strconv"

	"github.com/ariefcatur/go-delivery-marketplace/internal/apperr"
)

const defaultTopProducts = 5

func (a *API) dashboardTotalOrders(w http.ResponseWriter, r *http.Request) {
	n, err := a.Dashboard.TotalOrders(r.Context(), identity(r).ID)
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int{"total": n})
}

func (a *API) dashboardStatusCount(w http.ResponseWriter, r *http.Request) {
	counts, err := a.Dashboard.StatusCount(r.Context(), identity(r).ID)
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, counts)
}

func (a *API) dashboardTotalSales(w http.ResponseWriter, r *http.Request) {
	total, err := a.Dashboard.TotalSales(r.Context(), identity(r).ID)
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]float64{"totalSales": total})
}

func (a *API) dashboardRatings(w http.ResponseWriter, r *http.Request) {
	sum, err := a.Dashboard.Ratings(r.Context(), identity(r).ID)
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, sum)
}

func (a *API) dashboardTopProducts(w http.ResponseWriter, r *http.Request) {
	limit := defaultTopProducts
	if s := r.URL.Query().Get("limit"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil || n < 1 {
			a.writeError(w, r, apperr.Validation("limit must be a positive integer"))
			return
		}
		limit = n
	}
	list, err := a.Dashboard.TopProducts(r.Context(), identity(r).ID, limit)
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}
