package payment

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/akshith-07/fitflow-pro/internal/auth"
)

type Handler struct {
	service Service
}

func NewHandler(service Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) respondError(c *gin.Context, err error) {
	var gwErr *GatewayError
	switch {
	case errors.Is(err, ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, ErrNotPending), errors.Is(err, ErrNotRefundable):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.As(err, &gwErr):
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
	}
}

// List godoc
// @Summary      List payments
// @Tags         payments
// @Produce      json
// @Security     BearerAuth
// @Param        status  query    string  false  "Filter by status"
// @Param        limit   query    int     false  "Page size"
// @Param        offset  query    int     false  "Page offset"
// @Success      200     {array}  Payment
// @Router       /payments [get]
func (h *Handler) List(c *gin.Context) {
	orgID, _ := auth.GetOrganizationID(c)

	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))
	status := Status(c.Query("status"))

	payments, err := h.service.List(c.Request.Context(), orgID, status, limit, offset)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, payments)
}

// Get godoc
// @Summary      Get payment
// @Tags         payments
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      int  true  "Payment ID"
// @Success      200  {object}  Payment
// @Failure      404  {object}  api.ErrorResponse
// @Router       /payments/{id} [get]
func (h *Handler) Get(c *gin.Context) {
	orgID, _ := auth.GetOrganizationID(c)

	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid payment ID"})
		return
	}

	p, err := h.service.Get(c.Request.Context(), orgID, id)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, p)
}

// Retry godoc
// @Summary      Re-attempt a pending payment
// @Description  No-op when the payment is no longer pending.
// @Tags         payments
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      int  true  "Payment ID"
// @Success      200  {object}  Payment
// @Failure      404  {object}  api.ErrorResponse
// @Router       /payments/{id}/retry [post]
func (h *Handler) Retry(c *gin.Context) {
	orgID, _ := auth.GetOrganizationID(c)

	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid payment ID"})
		return
	}

	p, err := h.service.Retry(c.Request.Context(), orgID, id)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, p)
}

// Refund godoc
// @Summary      Refund a completed payment
// @Tags         payments
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id       path      int            true  "Payment ID"
// @Param        request  body      RefundRequest  true  "Refund amount"
// @Success      200      {object}  Payment
// @Failure      404      {object}  api.ErrorResponse
// @Failure      409      {object}  api.ErrorResponse
// @Router       /payments/{id}/refund [post]
func (h *Handler) Refund(c *gin.Context) {
	orgID, _ := auth.GetOrganizationID(c)

	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid payment ID"})
		return
	}

	var req RefundRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	p, err := h.service.Refund(c.Request.Context(), orgID, id, req.AmountCents)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, p)
}
