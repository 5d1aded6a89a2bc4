package membership

import (
	"errors"
	"net/http"
	"strconv"
	"time"

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
	switch {
	case errors.Is(err, ErrNotFound), errors.Is(err, ErrPlanNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, ErrInvalidState):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, ErrInvalidFreeze), errors.Is(err, ErrInvalidDate):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
	}
}

// CreatePlan godoc
// @Summary      Create membership plan
// @Tags         plans
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request  body      CreatePlanRequest  true  "Plan data"
// @Success      201      {object}  Plan
// @Failure      400      {object}  api.ErrorResponse
// @Router       /plans [post]
func (h *Handler) CreatePlan(c *gin.Context) {
	orgID, _ := auth.GetOrganizationID(c)

	var req CreatePlanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	plan, err := h.service.CreatePlan(c.Request.Context(), orgID, req)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, plan)
}

// ListPlans godoc
// @Summary      List membership plans
// @Tags         plans
// @Produce      json
// @Security     BearerAuth
// @Success      200  {array}  Plan
// @Router       /plans [get]
func (h *Handler) ListPlans(c *gin.Context) {
	orgID, _ := auth.GetOrganizationID(c)

	plans, err := h.service.ListPlans(c.Request.Context(), orgID)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, plans)
}

// Create godoc
// @Summary      Create membership
// @Tags         memberships
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request  body      CreateRequest  true  "Membership data"
// @Success      201      {object}  Membership
// @Failure      400      {object}  api.ErrorResponse
// @Failure      404      {object}  api.ErrorResponse
// @Router       /memberships [post]
func (h *Handler) Create(c *gin.Context) {
	orgID, _ := auth.GetOrganizationID(c)

	var req CreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	m, err := h.service.Create(c.Request.Context(), orgID, req)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, m)
}

// Get godoc
// @Summary      Get membership
// @Tags         memberships
// @Produce      json
// @Security     BearerAuth
// @Param        id            path      int  true  "Membership ID"
// @Success      200           {object}  Membership
// @Failure      404           {object}  api.ErrorResponse
// @Router       /memberships/{id} [get]
func (h *Handler) Get(c *gin.Context) {
	orgID, _ := auth.GetOrganizationID(c)

	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid membership ID"})
		return
	}

	m, err := h.service.Get(c.Request.Context(), orgID, id)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, m)
}

// List godoc
// @Summary      List memberships
// @Tags         memberships
// @Produce      json
// @Security     BearerAuth
// @Param        status     query    string  false  "Filter by status"
// @Param        member_id  query    int     false  "Filter by member"
// @Param        limit      query    int     false  "Page size"
// @Param        offset     query    int     false  "Page offset"
// @Success      200        {array}  Membership
// @Router       /memberships [get]
func (h *Handler) List(c *gin.Context) {
	orgID, _ := auth.GetOrganizationID(c)

	status := Status(c.Query("status"))
	memberID, _ := strconv.Atoi(c.Query("member_id"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "100"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))

	memberships, err := h.service.List(c.Request.Context(), orgID, status, memberID, limit, offset)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, memberships)
}

// Freeze godoc
// @Summary      Freeze membership
// @Description  Freezes an active membership and extends its end date by the freeze duration.
// @Tags         memberships
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id            path      int            true  "Membership ID"
// @Param        request       body      FreezeRequest  true  "Freeze window"
// @Success      200           {object}  Membership
// @Failure      400           {object}  api.ErrorResponse
// @Failure      404           {object}  api.ErrorResponse
// @Failure      409           {object}  api.ErrorResponse
// @Router       /memberships/{id}/freeze [post]
func (h *Handler) Freeze(c *gin.Context) {
	orgID, _ := auth.GetOrganizationID(c)

	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid membership ID"})
		return
	}

	var req FreezeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	freezeStart, err := time.Parse("2006-01-02", req.FreezeStartDate)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid freeze_start_date"})
		return
	}
	freezeEnd, err := time.Parse("2006-01-02", req.FreezeEndDate)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid freeze_end_date"})
		return
	}

	m, err := h.service.Freeze(c.Request.Context(), orgID, id, freezeStart, freezeEnd)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, m)
}

// Cancel godoc
// @Summary      Cancel membership
// @Tags         memberships
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id            path      int            true  "Membership ID"
// @Param        request       body      CancelRequest  true  "Cancellation reason"
// @Success      200           {object}  Membership
// @Failure      404           {object}  api.ErrorResponse
// @Router       /memberships/{id}/cancel [post]
func (h *Handler) Cancel(c *gin.Context) {
	orgID, _ := auth.GetOrganizationID(c)

	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid membership ID"})
		return
	}

	var req CancelRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	m, err := h.service.Cancel(c.Request.Context(), orgID, id, req.Reason)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, m)
}

// Renew godoc
// @Summary      Renew membership
// @Description  Creates a successor membership starting the day after the current term ends; the old row is marked expired.
// @Tags         memberships
// @Produce      json
// @Security     BearerAuth
// @Param        id            path      int  true  "Membership ID"
// @Success      201           {object}  Membership
// @Failure      404           {object}  api.ErrorResponse
// @Router       /memberships/{id}/renew [post]
func (h *Handler) Renew(c *gin.Context) {
	orgID, _ := auth.GetOrganizationID(c)

	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid membership ID"})
		return
	}

	m, err := h.service.Renew(c.Request.Context(), orgID, id)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, m)
}

// Expiring godoc
// @Summary      Memberships expiring soon
// @Tags         memberships
// @Produce      json
// @Security     BearerAuth
// @Param        days  query    int  false  "Horizon in days"  default(7)
// @Success      200   {array}  Membership
// @Router       /reports/expiring-memberships [get]
func (h *Handler) Expiring(c *gin.Context) {
	days, _ := strconv.Atoi(c.DefaultQuery("days", "7"))
	if days < 1 || days > 90 {
		days = 7
	}

	memberships, err := h.service.CheckExpiring(c.Request.Context(), days)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, memberships)
}
