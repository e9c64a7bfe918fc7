package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"storefront/internal/checkout"
	"storefront/internal/domain"
	"storefront/internal/gateway"
	"storefront/internal/infra"
	"storefront/internal/services"
)

type Handler struct {
	checkout *checkout.Manager
	service  *services.OrderService
	catalog  infra.CatalogClientInterface
}

// NewHandler wires the checkout manager and order service into gin.
// The catalog client may be nil, in which case cart lines are taken
// as submitted.
func NewHandler(m *checkout.Manager, s *services.OrderService, catalog infra.CatalogClientInterface) *Handler {
	return &Handler{checkout: m, service: s, catalog: catalog}
}

func (h *Handler) RegisterRoutes(r *gin.Engine) {
	r.GET("/health", h.Health)

	r.POST("/checkout/sessions", h.StartCheckout)
	r.GET("/checkout/sessions/:id", h.GetSession)
	r.POST("/checkout/sessions/:id/details", h.SubmitDetails)
	r.POST("/checkout/sessions/:id/payment-method", h.SelectPaymentMethod)
	r.POST("/checkout/sessions/:id/payment", h.BeginPayment)
	r.POST("/checkout/sessions/:id/payment/confirm", h.ConfirmPayment)
	r.POST("/checkout/sessions/:id/payment/abandon", h.AbandonPayment)

	r.GET("/orders/:id", h.GetOrder)
	r.GET("/orders", h.GetOrdersByCustomer)
	r.PATCH("/orders/:id/status", h.UpdateOrderStatus)
	r.PATCH("/orders/:id/payment-status", h.UpdatePaymentStatus)
}

func (h *Handler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (h *Handler) StartCheckout(c *gin.Context) {
	var req StartCheckoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	lines := req.Lines
	if h.catalog != nil {
		enriched, err := h.catalog.EnrichLines(c.Request.Context(), lines)
		if err != nil {
			respondError(c, err)
			return
		}
		lines = enriched
	}

	session, err := h.checkout.StartSession(lines)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, sessionResponse(session))
}

func (h *Handler) GetSession(c *gin.Context) {
	session, ok := h.checkout.Session(c.Param("id"))
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "checkout session not found"})
		return
	}
	c.JSON(http.StatusOK, sessionResponse(session))
}

func (h *Handler) SubmitDetails(c *gin.Context) {
	session, ok := h.checkout.Session(c.Param("id"))
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "checkout session not found"})
		return
	}

	var details checkout.Details
	if err := c.ShouldBindJSON(&details); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := session.SubmitDetails(details); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, sessionResponse(session))
}

func (h *Handler) SelectPaymentMethod(c *gin.Context) {
	session, ok := h.checkout.Session(c.Param("id"))
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "checkout session not found"})
		return
	}

	var req SelectPaymentMethodRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := session.SelectPaymentMethod(c.Request.Context(), req.Method); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, sessionResponse(session))
}

func (h *Handler) BeginPayment(c *gin.Context) {
	session, ok := h.checkout.Session(c.Param("id"))
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "checkout session not found"})
		return
	}

	intent, err := session.BeginPayment(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, BeginPaymentResponse{Method: session.Method(), Intent: intent})
}

func (h *Handler) ConfirmPayment(c *gin.Context) {
	session, ok := h.checkout.Session(c.Param("id"))
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "checkout session not found"})
		return
	}

	// Cash on Delivery has no gateway proof, so the body is optional
	// there and binding is validated only for online methods.
	var proof gateway.ClientProof
	if session.Method() == gateway.MethodCOD {
		_ = c.ShouldBindJSON(&proof)
	} else if err := c.ShouldBindJSON(&proof); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	order, err := session.ConfirmPayment(c.Request.Context(), proof)
	if err != nil {
		respondError(c, err)
		return
	}
	if order == nil {
		// Verification rejected the proof; the attempt is over.
		c.JSON(http.StatusUnprocessableEntity, sessionResponse(session))
		return
	}

	c.JSON(http.StatusOK, gin.H{"session": sessionResponse(session), "order": order})
}

func (h *Handler) AbandonPayment(c *gin.Context) {
	session, ok := h.checkout.Session(c.Param("id"))
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "checkout session not found"})
		return
	}

	session.Abandon()
	c.JSON(http.StatusOK, sessionResponse(session))
}

func (h *Handler) GetOrder(c *gin.Context) {
	order, err := h.service.GetOrderByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, order)
}

func (h *Handler) GetOrdersByCustomer(c *gin.Context) {
	email := c.Query("email")
	if email == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "email query parameter required"})
		return
	}

	orders, err := h.service.GetOrdersByCustomer(c.Request.Context(), email)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, orders)
}

func (h *Handler) UpdateOrderStatus(c *gin.Context) {
	var req UpdateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	order, err := h.service.UpdateOrderStatus(c.Request.Context(), c.Param("id"), req.Status)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, order)
}

func (h *Handler) UpdatePaymentStatus(c *gin.Context) {
	var req UpdatePaymentStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	order, err := h.service.UpdatePaymentStatus(c.Request.Context(), c.Param("id"), req.PaymentStatus)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, order)
}

func sessionResponse(s *checkout.Session) SessionResponse {
	return SessionResponse{ID: s.ID(), State: s.State(), FailReason: s.FailReason()}
}

func respondError(c *gin.Context, err error) {
	var (
		vErr  *domain.ValidationError
		stErr *checkout.StateError
		gwErr *domain.GatewayError
	)
	switch {
	case errors.As(err, &vErr):
		c.JSON(http.StatusBadRequest, gin.H{"error": vErr.Error(), "fields": vErr.Fields})
	case errors.As(err, &stErr):
		c.JSON(http.StatusConflict, gin.H{"error": stErr.Error()})
	case errors.Is(err, domain.ErrConcurrentAttempt):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, domain.ErrOrderNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.As(err, &gwErr):
		c.JSON(http.StatusBadGateway, gin.H{"error": gwErr.Error(), "retryable": true})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}
