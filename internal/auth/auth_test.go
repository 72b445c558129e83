package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ariefcatur/go-delivery-marketplace/internal/apperr"
	"github.com/ariefcatur/go-delivery-marketplace/internal/models"
)

func TestIssueVerify(t *testing.T) {
	iss := NewIssuer("secret", time.Hour)
	tok, err := iss.Issue(Identity{ID: "u1", Type: models.UserCompany, Email: "a@b.c"})
	require.NoError(t, err)

	id, err := iss.Verify(tok)
	require.NoError(t, err)
	assert.Equal(t, Identity{ID: "u1", Type: models.UserCompany, Email: "a@b.c"}, id)

	_, err = NewIssuer("other", time.Hour).Verify(tok)
	assert.ErrorIs(t, err, apperr.ErrUnauthorized)

	_, err = iss.Verify("garbage")
	assert.ErrorIs(t, err, apperr.ErrUnauthorized)
}

func TestVerifyRejectsExpired(t *testing.T) {
	iss := NewIssuer("secret", time.Minute)
	iss.now = func() time.Time { return time.Now().Add(-time.Hour) }
	tok, err := iss.Issue(Identity{ID: "u1", Type: models.UserCustomer})
	require.NoError(t, err)

	_, err = NewIssuer("secret", time.Minute).Verify(tok)
	assert.ErrorIs(t, err, apperr.ErrUnauthorized)
}

func TestMiddleware(t *testing.T) {
	iss := NewIssuer("secret", time.Hour)
	fail := func(w http.ResponseWriter, r *http.Request, err error) {
		w.WriteHeader(apperr.HTTPStatus(apperr.KindOf(err)))
	}
	ok := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id, found := FromContext(r.Context())
		if !found {
			w.WriteHeader(http.StatusTeapot)
			return
		}
		_, _ = w.Write([]byte(id.ID))
	})
	h := Authenticate(iss, fail)(RequireType(fail, models.UserCompany)(ok))

	customer, err := iss.Issue(Identity{ID: "u1", Type: models.UserCustomer})
	require.NoError(t, err)
	company, err := iss.Issue(Identity{ID: "c1", Type: models.UserCompany})
	require.NoError(t, err)

	tests := []struct {
		name   string
		header string
		want   int
	}{
		{"no header", "", http.StatusUnauthorized},
		{"not bearer", "Basic abc", http.StatusUnauthorized},
		{"bad token", "Bearer nope", http.StatusUnauthorized},
		{"wrong type", "Bearer " + customer, http.StatusForbidden},
		{"company", "Bearer " + company, http.StatusOK},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tc.header != "" {
				req.Header.Set("Authorization", tc.header)
			}
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)
			assert.Equal(t, tc.want, rec.Code)
		})
	}
}

func TestFromContextEmpty(t *testing.T) {
	_, ok := FromContext(httptest.NewRequest(http.MethodGet, "/", nil).Context())
	assert.False(t, ok)
}
