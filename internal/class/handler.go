package class

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
	switch {
	case errors.Is(err, ErrClassNotFound), errors.Is(err, ErrScheduleNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, ErrScheduleFinished):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, ErrInvalidTime), errors.Is(err, ErrInvalidStatus):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
	}
}

// CreateClass godoc
// @Summary      Create class
// @Tags         classes
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request  body      CreateClassRequest  true  "Class data"
// @Success      201      {object}  Class
// @Failure      400      {object}  api.ErrorResponse
// @Router       /classes [post]
func (h *Handler) CreateClass(c *gin.Context) {
	orgID, _ := auth.GetOrganizationID(c)

	var req CreateClassRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	cls, err := h.service.CreateClass(c.Request.Context(), orgID, req)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, cls)
}

// ListClasses godoc
// @Summary      List classes
// @Tags         classes
// @Produce      json
// @Security     BearerAuth
// @Success      200  {array}  Class
// @Router       /classes [get]
func (h *Handler) ListClasses(c *gin.Context) {
	orgID, _ := auth.GetOrganizationID(c)

	classes, err := h.service.ListClasses(c.Request.Context(), orgID)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, classes)
}

// CreateSchedule godoc
// @Summary      Schedule a class session
// @Tags         classes
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request  body      CreateScheduleRequest  true  "Schedule data"
// @Success      201      {object}  Schedule
// @Failure      400      {object}  api.ErrorResponse
// @Failure      404      {object}  api.ErrorResponse
// @Router       /schedules [post]
func (h *Handler) CreateSchedule(c *gin.Context) {
	orgID, _ := auth.GetOrganizationID(c)

	var req CreateScheduleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	schedule, err := h.service.CreateSchedule(c.Request.Context(), orgID, req)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, schedule)
}

// ListUpcoming godoc
// @Summary      List upcoming sessions with availability
// @Tags         classes
// @Produce      json
// @Security     BearerAuth
// @Success      200  {array}  ScheduleWithAvailability
// @Router       /schedules [get]
func (h *Handler) ListUpcoming(c *gin.Context) {
	orgID, _ := auth.GetOrganizationID(c)

	schedules, err := h.service.ListUpcoming(c.Request.Context(), orgID)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, schedules)
}

// UpdateScheduleStatus godoc
// @Summary      Update session status
// @Tags         classes
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id       path      int                          true  "Schedule ID"
// @Param        request  body      UpdateScheduleStatusRequest  true  "New status"
// @Success      200      {object}  Schedule
// @Failure      400      {object}  api.ErrorResponse
// @Failure      404      {object}  api.ErrorResponse
// @Failure      409      {object}  api.ErrorResponse
// @Router       /schedules/{id}/status [patch]
func (h *Handler) UpdateScheduleStatus(c *gin.Context) {
	orgID, _ := auth.GetOrganizationID(c)

	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid schedule ID"})
		return
	}

	var req UpdateScheduleStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	schedule, err := h.service.UpdateScheduleStatus(c.Request.Context(), orgID, id, req.Status)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, schedule)
}
