package http

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"storefront/internal/checkout"
	"storefront/internal/domain"
	"storefront/internal/notify"
	"storefront/internal/repository/memory"
	"storefront/internal/services"
	"storefront/internal/settings"
)

func newTestRouter(t *testing.T) (*gin.Engine, *memory.Store) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	store := memory.NewStore()
	source := &settings.StaticSource{}
	service := services.NewOrderService(store, notify.NewDispatcher(source), nil)
	manager := checkout.NewManager(source, service)

	r := gin.New()
	NewHandler(manager, service, nil).RegisterRoutes(r)
	return r, store
}

func doJSON(t *testing.T, r *gin.Engine, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func startSession(t *testing.T, r *gin.Engine) string {
	t.Helper()
	w := doJSON(t, r, http.MethodPost, "/checkout/sessions", StartCheckoutRequest{
		Lines: []domain.CartLine{
			{ProductID: "prod-1", ProductName: "Mug", Quantity: 2, UnitBasePrice: 1200},
			{ProductID: "prod-2", ProductName: "Tea", Quantity: 1, UnitBasePrice: 300},
		},
	})
	require.Equal(t, http.StatusCreated, w.Code)

	var resp SessionResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.NotEmpty(t, resp.ID)
	assert.Equal(t, checkout.StateCollectingDetails, resp.State)
	return resp.ID
}

func TestHealth(t *testing.T) {
	r, _ := newTestRouter(t)
	w := doJSON(t, r, http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestStartCheckoutRejectsEmptyCart(t *testing.T) {
	r, _ := newTestRouter(t)
	w := doJSON(t, r, http.MethodPost, "/checkout/sessions", StartCheckoutRequest{Lines: []domain.CartLine{}})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestSubmitDetailsValidation(t *testing.T) {
	r, _ := newTestRouter(t)
	id := startSession(t, r)

	w := doJSON(t, r, http.MethodPost, "/checkout/sessions/"+id+"/details", checkout.Details{
		CustomerName:    "Asha Rao",
		CustomerEmail:   "asha@example.com",
		CustomerPhone:   "", // missing
		ShippingAddress: "12 MG Road, Bengaluru",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "customerPhone")

	// Session is still collecting details after the rejection.
	w = doJSON(t, r, http.MethodGet, "/checkout/sessions/"+id, nil)
	var resp SessionResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, checkout.StateCollectingDetails, resp.State)
}

func TestUnknownSessionIs404(t *testing.T) {
	r, _ := newTestRouter(t)
	w := doJSON(t, r, http.MethodGet, "/checkout/sessions/nope", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestCashOnDeliveryCheckoutFlow(t *testing.T) {
	r, store := newTestRouter(t)
	id := startSession(t, r)

	w := doJSON(t, r, http.MethodPost, "/checkout/sessions/"+id+"/details", checkout.Details{
		CustomerName:    "Asha Rao",
		CustomerEmail:   "asha@example.com",
		CustomerPhone:   "+919876543210",
		ShippingAddress: "12 MG Road, Bengaluru",
	})
	require.Equal(t, http.StatusOK, w.Code)

	w = doJSON(t, r, http.MethodPost, "/checkout/sessions/"+id+"/payment-method", SelectPaymentMethodRequest{Method: ""})
	require.Equal(t, http.StatusOK, w.Code)

	w = doJSON(t, r, http.MethodPost, "/checkout/sessions/"+id+"/payment", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var begin BeginPaymentResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &begin))
	assert.Equal(t, "cod", begin.Method)
	assert.Nil(t, begin.Intent)

	w = doJSON(t, r, http.MethodPost, "/checkout/sessions/"+id+"/payment/confirm", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var confirmed struct {
		Session SessionResponse `json:"session"`
		Order   domain.Order    `json:"order"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &confirmed))
	assert.Equal(t, checkout.StateComplete, confirmed.Session.State)
	assert.Equal(t, int64(2700), confirmed.Order.TotalAmount)
	assert.Equal(t, domain.PaymentPending, confirmed.Order.PaymentStatus)
	assert.Equal(t, 1, store.Len())

	// The persisted order is visible through the back-office endpoints.
	w = doJSON(t, r, http.MethodGet, "/orders/"+confirmed.Order.ID, nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w = doJSON(t, r, http.MethodGet, "/orders?email=asha@example.com", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var orders []domain.Order
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &orders))
	assert.Len(t, orders, 1)
}

func TestConfirmWithoutAttemptIs400(t *testing.T) {
	r, _ := newTestRouter(t)
	id := startSession(t, r)

	w := doJSON(t, r, http.MethodPost, "/checkout/sessions/"+id+"/details", checkout.Details{
		CustomerName:    "Asha Rao",
		CustomerEmail:   "asha@example.com",
		CustomerPhone:   "+919876543210",
		ShippingAddress: "12 MG Road, Bengaluru",
	})
	require.Equal(t, http.StatusOK, w.Code)
	w = doJSON(t, r, http.MethodPost, "/checkout/sessions/"+id+"/payment-method", SelectPaymentMethodRequest{Method: ""})
	require.Equal(t, http.StatusOK, w.Code)

	w = doJSON(t, r, http.MethodPost, "/checkout/sessions/"+id+"/payment/confirm", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestOperationOutOfOrderIs409(t *testing.T) {
	r, _ := newTestRouter(t)
	id := startSession(t, r)

	// Selecting a payment method before details were submitted.
	w := doJSON(t, r, http.MethodPost, "/checkout/sessions/"+id+"/payment-method", SelectPaymentMethodRequest{Method: ""})
	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestUpdateOrderStatus(t *testing.T) {
	r, store := newTestRouter(t)
	order := &domain.Order{
		ID: "ORD-20260831-120000-001",
		Customer: domain.Customer{
			Name: "Asha Rao", Email: "asha@example.com", Phone: "+919876543210",
		},
		Status:        domain.StatusPending,
		PaymentStatus: domain.PaymentPending,
		PaymentMethod: "Cash on Delivery",
		TotalAmount:   2700,
	}
	require.NoError(t, store.Create(context.Background(), order))

	w := doJSON(t, r, http.MethodPatch, "/orders/"+order.ID+"/status", UpdateStatusRequest{Status: domain.StatusProcessing})
	require.Equal(t, http.StatusOK, w.Code)

	var updated domain.Order
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &updated))
	assert.Equal(t, domain.StatusProcessing, updated.Status)

	w = doJSON(t, r, http.MethodPatch, "/orders/missing/status", UpdateStatusRequest{Status: domain.StatusShipped})
	assert.Equal(t, http.StatusNotFound, w.Code)
}
