package httpx

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5/middleware"

	"github.com/ariefcatur/go-delivery-marketplace/internal/apperr"
	"github.com/ariefcatur/go-delivery-marketplace/internal/auth"
	"github.com/ariefcatur/go-delivery-marketplace/internal/validate"
)

type errorBody struct {
	Error string `json:"error"`
	Kind  string `json:"kind"`
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError maps err to its status; anything that is not an apperr is logged and hidden.
func (a *API) writeError(w http.ResponseWriter, r *http.Request, err error) {
	kind := apperr.KindOf(err)
	if kind == apperr.KindInternal {
		a.Log.ErrorContext(r.Context(), "request failed",
			"request_id", middleware.GetReqID(r.Context()),
			"method", r.Method, "path", r.URL.Path, "err", err)
	}
	writeJSON(w, apperr.HTTPStatus(kind), errorBody{Error: apperr.PublicMessage(err), Kind: string(kind)})
}

// decode reads a JSON body into v. Service inputs are validated by the services.
func decode(r *http.Request, v any) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		if errors.Is(err, io.EOF) {
			return apperr.Validation("request body is required")
		}
		return apperr.Validation("invalid json: %v", err)
	}
	return nil
}

// decodeValid is decode plus the validate tags of a handler-local body.
func decodeValid(r *http.Request, v any) error {
	if err := decode(r, v); err != nil {
		return err
	}
	return validate.Struct(v)
}

// identity is only called behind auth.Authenticate.
func identity(r *http.Request) auth.Identity {
	id, _ := auth.FromContext(r.Context())
	return id
}
