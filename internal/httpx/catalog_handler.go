package httpx

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/ariefcatur/go-delivery-marketplace/internal/apperr"
	"github.com/ariefcatur/go-delivery-marketplace/internal/catalog"
	"github.com/ariefcatur/go-delivery-marketplace/internal/models"
)

type postalCodeReq struct {
	PostalCode string `json:"postalCode" validate:"required"`
}

type userIDReq struct {
	UserID string `json:"userId" validate:"required"`
}

type companyMutation func(ctx context.Context, companyID, value string) (models.Company, error)

type stockReq struct {
	Stock *int `json:"stock" validate:"required"`
}

func (a *API) listCompanies(w http.ResponseWriter, r *http.Request) {
	list, err := a.Catalog.ListCompanies(r.Context())
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

func (a *API) getCompany(w http.ResponseWriter, r *http.Request) {
	c, err := a.Catalog.Company(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, c)
}

func (a *API) createCompany(w http.ResponseWriter, r *http.Request) {
	var in catalog.CompanyInput
	if err := decode(r, &in); err != nil {
		a.writeError(w, r, err)
		return
	}
	c, err := a.Catalog.CreateCompany(r.Context(), identity(r).ID, in)
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, c)
}

func (a *API) updateCompany(w http.ResponseWriter, r *http.Request) {
	var p catalog.CompanyPatch
	if err := decode(r, &p); err != nil {
		a.writeError(w, r, err)
		return
	}
	c, err := a.Catalog.UpdateCompany(r.Context(), identity(r).ID, chi.URLParam(r, "id"), p)
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, c)
}

func (a *API) deleteCompany(w http.ResponseWriter, r *http.Request) {
	if err := a.Catalog.DeleteCompany(r.Context(), identity(r).ID, chi.URLParam(r, "id")); err != nil {
		a.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (a *API) blockRegion(w http.ResponseWriter, r *http.Request) {
	a.changeRegion(w, r, a.Catalog.BlockRegion)
}

func (a *API) unblockRegion(w http.ResponseWriter, r *http.Request) {
	a.changeRegion(w, r, a.Catalog.UnblockRegion)
}

func (a *API) changeRegion(w http.ResponseWriter, r *http.Request, fn companyMutation) {
	id := chi.URLParam(r, "id")
	if id != identity(r).ID {
		a.writeError(w, r, apperr.Forbidden("not the owner of this company"))
		return
	}
	var req postalCodeReq
	if err := decodeValid(r, &req); err != nil {
		a.writeError(w, r, err)
		return
	}
	c, err := fn(r.Context(), id, req.PostalCode)
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, c)
}

func (a *API) blockUser(w http.ResponseWriter, r *http.Request) {
	a.changeBlockedUser(w, r, a.Catalog.BlockUser)
}

func (a *API) unblockUser(w http.ResponseWriter, r *http.Request) {
	a.changeBlockedUser(w, r, a.Catalog.UnblockUser)
}

func (a *API) changeBlockedUser(w http.ResponseWriter, r *http.Request, fn companyMutation) {
	var req userIDReq
	if err := decodeValid(r, &req); err != nil {
		a.writeError(w, r, err)
		return
	}
	c, err := fn(r.Context(), identity(r).ID, req.UserID)
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, c)
}

func (a *API) listCategories(w http.ResponseWriter, r *http.Request) {
	list, err := a.Catalog.ListCategories(r.Context())
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

func (a *API) getCategory(w http.ResponseWriter, r *http.Request) {
	c, err := a.Catalog.Category(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, c)
}

func (a *API) createCategory(w http.ResponseWriter, r *http.Request) {
	var in catalog.CategoryInput
	if err := decode(r, &in); err != nil {
		a.writeError(w, r, err)
		return
	}
	c, err := a.Catalog.CreateCategory(r.Context(), in)
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, c)
}

func (a *API) updateCategory(w http.ResponseWriter, r *http.Request) {
	var in catalog.CategoryInput
	if err := decode(r, &in); err != nil {
		a.writeError(w, r, err)
		return
	}
	c, err := a.Catalog.UpdateCategory(r.Context(), chi.URLParam(r, "id"), in)
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, c)
}

func (a *API) deleteCategory(w http.ResponseWriter, r *http.Request) {
	if err := a.Catalog.DeleteCategory(r.Context(), chi.URLParam(r, "id")); err != nil {
		a.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (a *API) productsByCompany(w http.ResponseWriter, r *http.Request) {
	list, err := a.Catalog.ProductsByCompany(r.Context(), chi.URLParam(r, "companyId"))
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

func (a *API) getProduct(w http.ResponseWriter, r *http.Request) {
	p, err := a.Catalog.Product(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (a *API) createProduct(w http.ResponseWriter, r *http.Request) {
	var in catalog.ProductInput
	if err := decode(r, &in); err != nil {
		a.writeError(w, r, err)
		return
	}
	p, err := a.Catalog.CreateProduct(r.Context(), identity(r).ID, in)
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, p)
}

func (a *API) updateProduct(w http.ResponseWriter, r *http.Request) {
	var patch catalog.ProductPatch
	if err := decode(r, &patch); err != nil {
		a.writeError(w, r, err)
		return
	}
	p, err := a.Catalog.UpdateProduct(r.Context(), identity(r).ID, chi.URLParam(r, "id"), patch)
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (a *API) deleteProduct(w http.ResponseWriter, r *http.Request) {
	if err := a.Catalog.DeleteProduct(r.Context(), identity(r).ID, chi.URLParam(r, "id")); err != nil {
		a.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (a *API) listStock(w http.ResponseWriter, r *http.Request) {
	list, err := a.Catalog.Stock(r.Context(), identity(r).ID)
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

func (a *API) setStock(w http.ResponseWriter, r *http.Request) {
	var req stockReq
	if err := decodeValid(r, &req); err != nil {
		a.writeError(w, r, err)
		return
	}
	item, err := a.Catalog.SetStock(r.Context(), identity(r).ID, chi.URLParam(r, "productId"), *req.Stock)
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, item)
}

func (a *API) deleteStock(w http.ResponseWriter, r *http.Request) {
	if err := a.Catalog.DeleteProduct(r.Context(), identity(r).ID, chi.URLParam(r, "productId")); err != nil {
		a.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (a *API) recommendations(w http.ResponseWriter, r *http.Request) {
	list, err := a.Catalog.Recommendations(r.Context(), identity(r).ID)
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}
