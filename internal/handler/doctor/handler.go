package doctor

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/jwalitptl/booking-api/internal/handler"
	"github.com/jwalitptl/booking-api/internal/middleware"
	"github.com/jwalitptl/booking-api/internal/model"
	doctorService "github.com/jwalitptl/booking-api/internal/service/doctor"
	scheduleService "github.com/jwalitptl/booking-api/internal/service/schedule"
)

type Handler struct {
	doctorSvc   *doctorService.Service
	scheduleSvc *scheduleService.Service
	auth        *middleware.AuthMiddleware
}

func NewHandler(doctorSvc *doctorService.Service, scheduleSvc *scheduleService.Service, auth *middleware.AuthMiddleware) *Handler {
	return &Handler{
		doctorSvc:   doctorSvc,
		scheduleSvc: scheduleSvc,
		auth:        auth,
	}
}

func (h *Handler) ListDoctors(c *gin.Context) {
	var filter model.DoctorFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		handler.BindError(c, err)
		return
	}

	doctors, err := h.doctorSvc.List(c.Request.Context(), &filter)
	if err != nil {
		handler.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, handler.NewSuccessResponse(doctors))
}

// CreateSlot creates one explicit slot, checked for overlap against the
// doctor's unbooked slots.
func (h *Handler) CreateSlot(c *gin.Context) {
	doctorID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse("invalid doctor ID"))
		return
	}

	caller, ok := middleware.CallerFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, handler.NewErrorResponse("unauthenticated"))
		return
	}

	var req model.CreateSlotRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		handler.BindError(c, err)
		return
	}

	slot, err := h.scheduleSvc.CreateSlot(c.Request.Context(), caller, doctorID, &req)
	if err != nil {
		handler.Error(c, err)
		return
	}

	c.JSON(http.StatusCreated, handler.NewSuccessResponse(slot))
}

// CreateWindow slices an availability window into fixed-length slots.
func (h *Handler) CreateWindow(c *gin.Context) {
	doctorID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse("invalid doctor ID"))
		return
	}

	caller, ok := middleware.CallerFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, handler.NewErrorResponse("unauthenticated"))
		return
	}

	var req model.CreateWindowRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		handler.BindError(c, err)
		return
	}

	slots, err := h.scheduleSvc.CreateWindow(c.Request.Context(), caller, doctorID, req.StartTime, req.EndTime)
	if err != nil {
		handler.Error(c, err)
		return
	}

	c.JSON(http.StatusCreated, handler.NewSuccessResponse(slots))
}

func (h *Handler) ListSlots(c *gin.Context) {
	doctorID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse("invalid doctor ID"))
		return
	}

	filter := model.SlotFilter{OnlyAvailable: true}
	if err := c.ShouldBindQuery(&filter); err != nil {
		handler.BindError(c, err)
		return
	}

	slots, err := h.scheduleSvc.ListSlots(c.Request.Context(), doctorID, filter.OnlyAvailable)
	if err != nil {
		handler.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, handler.NewSuccessResponse(slots))
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	doctors := r.Group("/doctors")
	{
		doctors.GET("", h.ListDoctors)
		doctors.GET("/:id/slots", h.ListSlots)

		authed := doctors.Group("")
		authed.Use(h.auth.Authenticate(), h.auth.RequireRole(model.RoleDoctor))
		{
			authed.POST("/:id/slots", h.CreateSlot)
			authed.POST("/:id/availability", h.CreateWindow)
		}
	}
}
