package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"techstore/handlers"
	"techstore/internal/appointments"
	"techstore/internal/cart"
	"techstore/internal/checkout"
	"techstore/internal/orders"
	"techstore/internal/payments"
	"techstore/internal/products"
	"techstore/internal/sessions"
	"techstore/internal/stores/memory"
	"techstore/internal/users"
	"techstore/middleware"
)

type fakeGateway struct {
	lastMetadata map[string]string
}

func (f *fakeGateway) CreateIntent(ctx context.Context, amountMinor int64, currency string, metadata map[string]string) (payments.Intent, error) {
	f.lastMetadata = metadata
	return payments.Intent{ID: "pi_test", ClientSecret: "pi_test_secret"}, nil
}

type fixture struct {
	router  *gin.Engine
	gateway *fakeGateway
	catalog []products.Product
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db := memory.New()
	u, err := users.NewConf(db)
	require.NoError(t, err)
	s, err := sessions.NewConf(db, u)
	require.NoError(t, err)
	p, err := products.NewConf(db)
	require.NoError(t, err)
	c, err := cart.NewConf(db, p)
	require.NoError(t, err)
	a, err := appointments.NewConf(db)
	require.NoError(t, err)
	o, err := orders.NewConf(db)
	require.NoError(t, err)

	require.NoError(t, p.EnsureSeedData(context.Background()))
	catalog, err := p.List(context.Background(), products.Filter{})
	require.NoError(t, err)
	require.NotEmpty(t, catalog)

	gw := &fakeGateway{}
	calc, err := checkout.NewCalculator(c, p, gw, decimal.RequireFromString("0.18"), "inr")
	require.NoError(t, err)

	h, err := handlers.NewHandler(u, s, p, c, a, o, calc, nil, 7*24*time.Hour)
	require.NoError(t, err)
	m, err := middleware.NewMid(s)
	require.NoError(t, err)

	return &fixture{router: handlers.API(h, m), gateway: gw, catalog: catalog}
}

func (f *fixture) do(t *testing.T, method, path string, body any, headers map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder, out any) {
	t.Helper()
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), out))
}

func register(t *testing.T, f *fixture, username, email string) string {
	t.Helper()
	w := f.do(t, http.MethodPost, "/api/auth/register", gin.H{
		"username": username, "email": email,
		"password": "secret1", "confirmPassword": "secret1",
	}, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var resp struct {
		SessionToken string `json:"sessionToken"`
	}
	decode(t, w, &resp)
	require.NotEmpty(t, resp.SessionToken)
	return resp.SessionToken
}

func TestRegisterRejectsDuplicates(t *testing.T) {
	f := newFixture(t)
	register(t, f, "alice", "alice@example.com")

	w := f.do(t, http.MethodPost, "/api/auth/register", gin.H{
		"username": "alice2", "email": "alice@example.com",
		"password": "secret1", "confirmPassword": "secret1",
	}, nil)
	require.Equal(t, http.StatusBadRequest, w.Code)
	require.Contains(t, w.Body.String(), "email already exists")

	w = f.do(t, http.MethodPost, "/api/auth/register", gin.H{
		"username": "alice", "email": "other@example.com",
		"password": "secret1", "confirmPassword": "secret1",
	}, nil)
	require.Equal(t, http.StatusBadRequest, w.Code)
	require.Contains(t, w.Body.String(), "Username already taken")
}

func TestRegisterRejectsPasswordMismatch(t *testing.T) {
	f := newFixture(t)

	w := f.do(t, http.MethodPost, "/api/auth/register", gin.H{
		"username": "alice", "email": "alice@example.com",
		"password": "secret1", "confirmPassword": "secret2",
	}, nil)
	require.Equal(t, http.StatusBadRequest, w.Code)
	require.Contains(t, w.Body.String(), "Passwords don't match")
}

func TestLoginFailureIsGeneric(t *testing.T) {
	f := newFixture(t)
	register(t, f, "alice", "alice@example.com")

	wrongPassword := f.do(t, http.MethodPost, "/api/auth/login", gin.H{
		"email": "alice@example.com", "password": "wrong-1",
	}, nil)
	require.Equal(t, http.StatusUnauthorized, wrongPassword.Code)

	unknownEmail := f.do(t, http.MethodPost, "/api/auth/login", gin.H{
		"email": "nobody@example.com", "password": "secret1",
	}, nil)
	require.Equal(t, http.StatusUnauthorized, unknownEmail.Code)

	// The two failure modes must be indistinguishable.
	require.JSONEq(t, wrongPassword.Body.String(), unknownEmail.Body.String())
}

func TestMeAndLogout(t *testing.T) {
	f := newFixture(t)
	token := register(t, f, "alice", "alice@example.com")
	auth := map[string]string{"Authorization": "Bearer " + token}

	w := f.do(t, http.MethodGet, "/api/auth/me", nil, auth)
	require.Equal(t, http.StatusOK, w.Code)
	var me users.User
	decode(t, w, &me)
	require.Equal(t, "alice", me.Username)
	require.NotContains(t, w.Body.String(), "passwordHash")

	w = f.do(t, http.MethodPost, "/api/auth/logout", gin.H{"sessionToken": token}, nil)
	require.Equal(t, http.StatusOK, w.Code)

	w = f.do(t, http.MethodGet, "/api/auth/me", nil, auth)
	require.Equal(t, http.StatusUnauthorized, w.Code)

	// Logout of an already-dead token still succeeds.
	w = f.do(t, http.MethodPost, "/api/auth/logout", gin.H{"sessionToken": token}, nil)
	require.Equal(t, http.StatusOK, w.Code)
}

func TestProductEndpoints(t *testing.T) {
	f := newFixture(t)

	w := f.do(t, http.MethodGet, "/api/products", nil, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var list []products.Product
	decode(t, w, &list)
	require.Len(t, list, 5)

	w = f.do(t, http.MethodGet, "/api/products/"+f.catalog[0].ID, nil, nil)
	require.Equal(t, http.StatusOK, w.Code)

	w = f.do(t, http.MethodGet, "/api/products/missing", nil, nil)
	require.Equal(t, http.StatusNotFound, w.Code)

	w = f.do(t, http.MethodGet, "/api/products?search=zzzznothing", nil, nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.JSONEq(t, "[]", w.Body.String())
}

func TestCartFlow(t *testing.T) {
	f := newFixture(t)
	productID := f.catalog[0].ID

	// Omitted quantity defaults to 1.
	w := f.do(t, http.MethodPost, "/api/cart", gin.H{"sessionId": "sess-1", "productId": productID}, nil)
	require.Equal(t, http.StatusCreated, w.Code)
	var item cart.CartItem
	decode(t, w, &item)
	require.Equal(t, 1, item.Quantity)

	// Same product merges.
	w = f.do(t, http.MethodPost, "/api/cart", gin.H{"sessionId": "sess-1", "productId": productID, "quantity": 2}, nil)
	require.Equal(t, http.StatusCreated, w.Code)
	decode(t, w, &item)
	require.Equal(t, 3, item.Quantity)

	w = f.do(t, http.MethodPatch, "/api/cart/"+item.ID, gin.H{"quantity": 5}, nil)
	require.Equal(t, http.StatusOK, w.Code)
	decode(t, w, &item)
	require.Equal(t, 5, item.Quantity)

	w = f.do(t, http.MethodPost, "/api/cart", gin.H{"sessionId": "sess-1", "productId": productID, "quantity": -1}, nil)
	require.Equal(t, http.StatusBadRequest, w.Code)

	w = f.do(t, http.MethodPost, "/api/cart", gin.H{"sessionId": "sess-1", "productId": "missing"}, nil)
	require.Equal(t, http.StatusBadRequest, w.Code)

	w = f.do(t, http.MethodGet, "/api/cart/sess-1", nil, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var lines []cart.Line
	decode(t, w, &lines)
	require.Len(t, lines, 1)

	w = f.do(t, http.MethodDelete, "/api/cart/"+item.ID, nil, nil)
	require.Equal(t, http.StatusNoContent, w.Code)
	w = f.do(t, http.MethodDelete, "/api/cart/"+item.ID, nil, nil)
	require.Equal(t, http.StatusNotFound, w.Code)

	w = f.do(t, http.MethodDelete, "/api/cart/clear/sess-1", nil, nil)
	require.Equal(t, http.StatusNoContent, w.Code)
}

func TestUpdateCartItemRejectsZeroQuantity(t *testing.T) {
	f := newFixture(t)
	productID := f.catalog[0].ID

	w := f.do(t, http.MethodPost, "/api/cart", gin.H{"sessionId": "sess-1", "productId": productID, "quantity": 2}, nil)
	require.Equal(t, http.StatusCreated, w.Code)
	var item cart.CartItem
	decode(t, w, &item)

	w = f.do(t, http.MethodPatch, "/api/cart/"+item.ID, gin.H{"quantity": 0}, nil)
	require.Equal(t, http.StatusBadRequest, w.Code)

	// The line survives the rejected update.
	w = f.do(t, http.MethodGet, "/api/cart/sess-1", nil, nil)
	var lines []cart.Line
	decode(t, w, &lines)
	require.Len(t, lines, 1)
	require.Equal(t, 2, lines[0].Quantity)
}

func TestCreatePaymentIntent(t *testing.T) {
	f := newFixture(t)

	w := f.do(t, http.MethodPost, "/api/create-payment-intent", gin.H{"sessionId": "sess-1"}, nil)
	require.Equal(t, http.StatusBadRequest, w.Code)
	require.Contains(t, w.Body.String(), "Cart is empty")

	productID := f.catalog[0].ID
	w = f.do(t, http.MethodPost, "/api/cart", gin.H{"sessionId": "sess-1", "productId": productID, "quantity": 2}, nil)
	require.Equal(t, http.StatusCreated, w.Code)

	w = f.do(t, http.MethodPost, "/api/create-payment-intent", gin.H{"sessionId": "sess-1"}, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var result checkout.Result
	decode(t, w, &result)
	require.Equal(t, "pi_test_secret", result.ClientSecret)
	require.Len(t, result.Items, 1)

	expected := f.catalog[0].Price.Mul(decimal.NewFromInt(2)).
		Mul(decimal.RequireFromString("1.18")).Round(2)
	require.True(t, result.Amount.Equal(expected), "got %s want %s", result.Amount, expected)
}

func TestWebhookRecordsOrderAndClearsCart(t *testing.T) {
	f := newFixture(t)
	productID := f.catalog[0].ID

	w := f.do(t, http.MethodPost, "/api/cart", gin.H{"sessionId": "sess-1", "productId": productID, "quantity": 2}, nil)
	require.Equal(t, http.StatusCreated, w.Code)
	w = f.do(t, http.MethodPost, "/api/create-payment-intent", gin.H{"sessionId": "sess-1"}, nil)
	require.Equal(t, http.StatusOK, w.Code)

	meta, err := json.Marshal(f.gateway.lastMetadata)
	require.NoError(t, err)
	event := fmt.Sprintf(`{
		"type": "payment_intent.succeeded",
		"data": {"object": {"id": "pi_test", "metadata": %s}}
	}`, meta)

	req := httptest.NewRequest(http.MethodPost, "/api/stripe/webhook", bytes.NewBufferString(event))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		OrderID string `json:"orderId"`
	}
	decode(t, rec, &resp)
	require.NotEmpty(t, resp.OrderID)

	w = f.do(t, http.MethodGet, "/api/orders/"+resp.OrderID, nil, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var order orders.Order
	decode(t, w, &order)
	require.Equal(t, orders.StatusPaid, order.Status)
	require.Equal(t, "pi_test", order.PaymentIntentID)
	require.Len(t, order.Items, 1)
	require.Equal(t, 2, order.Items[0].Quantity)

	// The paid cart is gone.
	w = f.do(t, http.MethodGet, "/api/cart/sess-1", nil, nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.JSONEq(t, "[]", w.Body.String())
}

func TestWebhookIgnoresOtherEventTypes(t *testing.T) {
	f := newFixture(t)

	w := f.do(t, http.MethodPost, "/api/stripe/webhook", gin.H{"type": "charge.refunded"}, nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.Contains(t, w.Body.String(), "not handled")
}

func TestAppointmentEndpoints(t *testing.T) {
	f := newFixture(t)

	w := f.do(t, http.MethodPost, "/api/appointments", gin.H{
		"fullName": "Asha Rao", "phone": "+91 98765 43210", "email": "asha@example.com",
		"device": "iPhone 13", "issueDescription": "cracked screen",
	}, nil)
	require.Equal(t, http.StatusCreated, w.Code)
	var appt appointments.Appointment
	decode(t, w, &appt)
	require.Equal(t, appointments.StatusPending, appt.Status)

	w = f.do(t, http.MethodPost, "/api/appointments", gin.H{"fullName": "No Email"}, nil)
	require.Equal(t, http.StatusBadRequest, w.Code)

	w = f.do(t, http.MethodPatch, "/api/appointments/"+appt.ID+"/status", gin.H{"status": "in-progress"}, nil)
	require.Equal(t, http.StatusOK, w.Code)

	w = f.do(t, http.MethodPatch, "/api/appointments/"+appt.ID+"/status", gin.H{"status": "pending"}, nil)
	require.Equal(t, http.StatusBadRequest, w.Code)

	w = f.do(t, http.MethodGet, "/api/appointments", nil, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var list []appointments.Appointment
	decode(t, w, &list)
	require.Len(t, list, 1)
}

func TestUserScopedRoutesRequireAuth(t *testing.T) {
	f := newFixture(t)

	w := f.do(t, http.MethodGet, "/api/user/orders", nil, nil)
	require.Equal(t, http.StatusUnauthorized, w.Code)

	token := register(t, f, "alice", "alice@example.com")
	auth := map[string]string{"Authorization": "Bearer " + token}

	w = f.do(t, http.MethodGet, "/api/user/orders", nil, auth)
	require.Equal(t, http.StatusOK, w.Code)
	require.JSONEq(t, "[]", w.Body.String())

	w = f.do(t, http.MethodGet, "/api/user/appointments", nil, auth)
	require.Equal(t, http.StatusOK, w.Code)
	require.JSONEq(t, "[]", w.Body.String())
}

func TestAppointmentAttachedToLoggedInUser(t *testing.T) {
	f := newFixture(t)
	token := register(t, f, "alice", "alice@example.com")
	auth := map[string]string{"Authorization": "Bearer " + token}

	w := f.do(t, http.MethodPost, "/api/appointments", gin.H{
		"fullName": "Alice", "phone": "1", "email": "alice@example.com",
		"device": "MacBook", "issueDescription": "keyboard",
	}, auth)
	require.Equal(t, http.StatusCreated, w.Code)

	w = f.do(t, http.MethodGet, "/api/user/appointments", nil, auth)
	require.Equal(t, http.StatusOK, w.Code)
	var list []appointments.Appointment
	decode(t, w, &list)
	require.Len(t, list, 1)
}
