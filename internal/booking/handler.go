package booking

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
	case errors.Is(err, ErrNotFound), errors.Is(err, ErrScheduleNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, ErrDuplicateBooking), errors.Is(err, ErrInvalidState), errors.Is(err, ErrScheduleNotBookable):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, ErrPastClass):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
	}
}

// Book godoc
// @Summary      Book a class session
// @Description  Admits the member while spots remain, otherwise joins the waitlist.
// @Tags         bookings
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request  body      BookRequest  true  "Schedule to book"
// @Success      201      {object}  Booking
// @Failure      400      {object}  api.ErrorResponse
// @Failure      404      {object}  api.ErrorResponse
// @Failure      409      {object}  api.ErrorResponse
// @Router       /bookings [post]
func (h *Handler) Book(c *gin.Context) {
	orgID, _ := auth.GetOrganizationID(c)
	memberID, _ := auth.GetUserID(c)

	var req BookRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	booking, err := h.service.Book(c.Request.Context(), orgID, memberID, req.ScheduleID)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, booking)
}

// Cancel godoc
// @Summary      Cancel a booking
// @Description  Frees the spot and promotes the earliest waitlisted member, if any.
// @Tags         bookings
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      int  true  "Booking ID"
// @Success      200  {object}  Booking
// @Failure      404  {object}  api.ErrorResponse
// @Failure      409  {object}  api.ErrorResponse
// @Router       /bookings/{id}/cancel [post]
func (h *Handler) Cancel(c *gin.Context) {
	orgID, _ := auth.GetOrganizationID(c)

	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid booking ID"})
		return
	}

	booking, err := h.service.Cancel(c.Request.Context(), orgID, id)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, booking)
}

// MarkAttendance godoc
// @Summary      Record attendance outcome
// @Tags         bookings
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id       path      int                true  "Booking ID"
// @Param        request  body      AttendanceRequest  true  "Outcome"
// @Success      200      {object}  Booking
// @Failure      404      {object}  api.ErrorResponse
// @Failure      409      {object}  api.ErrorResponse
// @Router       /bookings/{id}/attendance [patch]
func (h *Handler) MarkAttendance(c *gin.Context) {
	orgID, _ := auth.GetOrganizationID(c)

	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid booking ID"})
		return
	}

	var req AttendanceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	booking, err := h.service.MarkAttendance(c.Request.Context(), orgID, id, req.Outcome)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, booking)
}

// ListMine godoc
// @Summary      List my bookings
// @Tags         bookings
// @Produce      json
// @Security     BearerAuth
// @Success      200  {array}  BookingWithDetails
// @Router       /bookings [get]
func (h *Handler) ListMine(c *gin.Context) {
	orgID, _ := auth.GetOrganizationID(c)
	memberID, _ := auth.GetUserID(c)

	bookings, err := h.service.ListForMember(c.Request.Context(), orgID, memberID)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, bookings)
}

// ListForSchedule godoc
// @Summary      Session roster
// @Tags         bookings
// @Produce      json
// @Security     BearerAuth
// @Param        id   path     int  true  "Schedule ID"
// @Success      200  {array}  BookingWithDetails
// @Router       /schedules/{id}/bookings [get]
func (h *Handler) ListForSchedule(c *gin.Context) {
	orgID, _ := auth.GetOrganizationID(c)

	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid schedule ID"})
		return
	}

	bookings, err := h.service.ListForSchedule(c.Request.Context(), orgID, id)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, bookings)
}
