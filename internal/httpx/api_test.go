package httpx

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ariefcatur/go-delivery-marketplace/internal/accounts"
	"github.com/ariefcatur/go-delivery-marketplace/internal/auth"
	"github.com/ariefcatur/go-delivery-marketplace/internal/cart"
	"github.com/ariefcatur/go-delivery-marketplace/internal/catalog"
	"github.com/ariefcatur/go-delivery-marketplace/internal/dashboard"
	"github.com/ariefcatur/go-delivery-marketplace/internal/events"
	"github.com/ariefcatur/go-delivery-marketplace/internal/filestore"
	"github.com/ariefcatur/go-delivery-marketplace/internal/models"
	"github.com/ariefcatur/go-delivery-marketplace/internal/notify"
	"github.com/ariefcatur/go-delivery-marketplace/internal/orders"
	"github.com/ariefcatur/go-delivery-marketplace/internal/reviews"
	"github.com/ariefcatur/go-delivery-marketplace/internal/rewards"
	"github.com/ariefcatur/go-delivery-marketplace/internal/staff"
	"github.com/ariefcatur/go-delivery-marketplace/internal/store"
)

type testServer struct {
	t   *testing.T
	srv *httptest.Server
	rec *events.Recorder
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	b, err := filestore.Open("")
	require.NoError(t, err)
	st := store.New(b)
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	rec := &events.Recorder{}
	iss := auth.NewIssuer("test-secret", time.Hour)

	// Wired like cmd/api without a broker.
	rw := &rewards.Service{Store: st, Log: log, Code: "REFERRAL10", Validity: time.Hour}
	pub := &events.InProcess{Next: rec, Log: log}
	pub.Subscribe(events.TopicUserRegistered, rw.HandleUserRegistered)

	api := &API{
		Log:       log,
		Issuer:    iss,
		Accounts:  &accounts.Service{Store: st, Issuer: iss, Publisher: pub, Producer: "test", Log: log},
		Catalog:   catalog.New(st),
		Cart:      cart.New(st),
		Orders:    &orders.Service{Store: st, Publisher: pub, Producer: "test", Log: log},
		Notify:    notify.New(st),
		Reviews:   reviews.New(st),
		Staff:     staff.New(st),
		Dashboard: dashboard.New(st),
		Rewards:   rw,
	}
	r := NewRouter(log)
	api.Register(r)
	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return &testServer{t: t, srv: srv, rec: rec}
}

// do sends body as JSON and decodes the response into out when out is non-nil.
func (s *testServer) do(method, path, token string, body, out any) int {
	s.t.Helper()
	var rd io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(s.t, err)
		rd = bytes.NewReader(raw)
	}
	req, err := http.NewRequest(method, s.srv.URL+path, rd)
	require.NoError(s.t, err)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := http.DefaultClient.Do(req)
	require.NoError(s.t, err)
	defer resp.Body.Close()
	if out != nil {
		require.NoError(s.t, json.NewDecoder(resp.Body).Decode(out))
	}
	return resp.StatusCode
}

func (s *testServer) register(name, email string, typ models.UserType) accounts.Session {
	s.t.Helper()
	return s.registerReferred(name, email, typ, "")
}

func (s *testServer) registerReferred(name, email string, typ models.UserType, referralCode string) accounts.Session {
	s.t.Helper()
	var sess accounts.Session
	code := s.do(http.MethodPost, "/api/auth/register", "", accounts.RegisterInput{
		Name: name, Email: email, Password: "secret123", Address: "Main St 1",
		Document: "123", Phone: "555", Type: typ, ReferralCode: referralCode,
	}, &sess)
	require.Equal(s.t, http.StatusCreated, code)
	return sess
}

func TestOrderLifecycleOverHTTP(t *testing.T) {
	s := newTestServer(t)

	shop := s.register("Luigi", "luigi@example.com", models.UserCompany)
	dev := s.register("Dev", "dev@example.com", models.UserDeveloper)
	ana := s.register("Ana", "ana@example.com", models.UserCustomer)

	var company models.Company
	require.Equal(t, http.StatusCreated, s.do(http.MethodPost, "/api/companies", shop.Token,
		catalog.CompanyInput{Name: "Luigi's"}, &company))

	var cat models.Category
	require.Equal(t, http.StatusForbidden, s.do(http.MethodPost, "/api/categories", shop.Token,
		catalog.CategoryInput{Name: "Pizza"}, nil))
	require.Equal(t, http.StatusCreated, s.do(http.MethodPost, "/api/categories", dev.Token,
		catalog.CategoryInput{Name: "Pizza"}, &cat))

	var pizza models.Product
	require.Equal(t, http.StatusCreated, s.do(http.MethodPost, "/api/products", shop.Token,
		catalog.ProductInput{CategoryID: cat.ID, Name: "Margherita", Price: 10, Stock: 5}, &pizza))

	var addr models.Address
	require.Equal(t, http.StatusCreated, s.do(http.MethodPost, "/api/addresses", ana.Token, accounts.AddressInput{
		Street: "Rua A", Number: "1", City: "X", State: "Y", PostalCode: "12345",
	}, &addr))
	var pm models.PaymentMethod
	require.Equal(t, http.StatusCreated, s.do(http.MethodPost, "/api/payment-methods", ana.Token, accounts.PaymentInput{
		HolderName: "Ana", CardNumber: "4111111111111111", Expiry: "12/30", Type: models.CardCredit,
	}, &pm))
	assert.Equal(t, "**** **** **** 1111", pm.CardNumber)

	require.Equal(t, http.StatusCreated, s.do(http.MethodPost, "/api/cart", ana.Token, cart.AddItemInput{
		CompanyID: company.ID, ProductID: pizza.ID, Quantity: 2,
	}, nil))

	checkout := checkoutReq{AddressID: addr.ID, PaymentMethodID: pm.ID}
	var placed orderResp
	require.Equal(t, http.StatusCreated, s.do(http.MethodPost, "/api/cart/checkout", ana.Token, checkout, &placed))
	assert.Equal(t, models.StatusPending, placed.Order.Status)
	assert.Equal(t, 20.0, placed.Order.Total)

	var errBody errorBody
	assert.Equal(t, http.StatusBadRequest, s.do(http.MethodPost, "/api/cart/checkout", ana.Token, checkout, &errBody))
	assert.Equal(t, "empty_cart", errBody.Kind)

	var active models.Order
	require.Equal(t, http.StatusOK, s.do(http.MethodGet, "/api/orders/active", ana.Token, nil, &active))
	assert.Equal(t, placed.Order.ID, active.ID)

	orderPath := "/api/company-orders/" + placed.Order.ID + "/status"
	require.Equal(t, http.StatusOK, s.do(http.MethodPatch, orderPath, shop.Token,
		statusReq{Status: models.StatusAccepted}, nil))

	var st statusResp
	require.Equal(t, http.StatusOK, s.do(http.MethodGet, "/api/orders/"+placed.Order.ID+"/status", ana.Token, nil, &st))
	assert.Equal(t, models.StatusAccepted, st.Status)
	assert.Equal(t, http.StatusNotFound, s.do(http.MethodGet, "/api/orders/"+placed.Order.ID+"/status", dev.Token, nil, nil))

	errBody = errorBody{}
	assert.Equal(t, http.StatusBadRequest, s.do(http.MethodPatch, "/api/orders/"+placed.Order.ID+"/cancel", ana.Token, nil, &errBody))
	assert.Equal(t, "invalid_transition", errBody.Kind)

	var stock []catalog.StockItem
	require.Equal(t, http.StatusOK, s.do(http.MethodGet, "/api/stock", shop.Token, nil, &stock))
	require.Len(t, stock, 1)
	assert.Equal(t, 3, stock[0].Stock)

	var notes []models.Notification
	require.Equal(t, http.StatusOK, s.do(http.MethodGet, "/api/notifications?category=order", ana.Token, nil, &notes))
	require.Len(t, notes, 1)
	assert.Equal(t, "order accepted", notes[0].Message)

	assert.Equal(t, []string{events.TopicUserRegistered, events.TopicUserRegistered, events.TopicUserRegistered,
		events.TopicOrderCreated, events.TopicOrderStatusChanged}, s.rec.Topics())
}

func TestAuthGate(t *testing.T) {
	s := newTestServer(t)
	ana := s.register("Ana", "ana@example.com", models.UserCustomer)

	var errBody errorBody
	assert.Equal(t, http.StatusUnauthorized, s.do(http.MethodGet, "/api/users/me", "", nil, &errBody))
	assert.Equal(t, "unauthorized", errBody.Kind)
	assert.Equal(t, http.StatusUnauthorized, s.do(http.MethodGet, "/api/users/me", "garbage", nil, nil))
	assert.Equal(t, http.StatusForbidden, s.do(http.MethodGet, "/api/stock", ana.Token, nil, nil))

	var me accounts.UserView
	require.Equal(t, http.StatusOK, s.do(http.MethodGet, "/api/users/me", ana.Token, nil, &me))
	assert.Equal(t, "ana@example.com", me.Email)

	var sess accounts.Session
	require.Equal(t, http.StatusOK, s.do(http.MethodPost, "/api/auth/login", "",
		loginReq{Email: "ana@example.com", Password: "secret123"}, &sess))
	assert.NotEmpty(t, sess.Token)
	assert.Equal(t, http.StatusUnauthorized, s.do(http.MethodPost, "/api/auth/login", "",
		loginReq{Email: "ana@example.com", Password: "wrong-pass"}, nil))

	assert.Equal(t, http.StatusNoContent, s.do(http.MethodGet, "/api/orders/active", ana.Token, nil, nil))
	assert.Equal(t, http.StatusOK, s.do(http.MethodGet, "/healthz", "", nil, nil))
}

func TestReferralCouponsWithoutBroker(t *testing.T) {
	s := newTestServer(t)
	bia := s.register("Bia", "bia@example.com", models.UserCustomer)
	caio := s.registerReferred("Caio", "caio@example.com", models.UserCustomer, bia.User.ReferralCode)

	for _, sess := range []accounts.Session{bia, caio} {
		var list []models.UserCoupon
		require.Equal(t, http.StatusOK, s.do(http.MethodGet, "/api/user-coupons", sess.Token, nil, &list))
		require.Len(t, list, 1, sess.User.Name)
		assert.Equal(t, "REFERRAL10", list[0].Code)
		assert.Equal(t, sess.User.ID, list[0].UserID)
		assert.Equal(t, 1, list[0].UsesLeft)
	}

	dana := s.register("Dana", "dana@example.com", models.UserCustomer)
	var none []models.UserCoupon
	require.Equal(t, http.StatusOK, s.do(http.MethodGet, "/api/user-coupons", dana.Token, nil, &none))
	assert.Empty(t, none)
}
