package instance

import (
	"errors"
	"net/http"
	"strconv"

	"modpaypal/internal/pkg/response"

	"github.com/gin-gonic/gin"
)

type Handler struct {
	svc     *Service
	loggerf func(format string, args ...interface{})
}

func NewHandler(svc *Service, loggerf func(format string, args ...interface{})) *Handler {
	if loggerf == nil {
		loggerf = func(string, ...interface{}) {}
	}
	return &Handler{svc: svc, loggerf: loggerf}
}

// RegisterRoutes expects a group already guarded by JWT auth; courseEditor
// restricts it to teachers of :courseId and admins.
func (h *Handler) RegisterRoutes(protected *gin.RouterGroup, courseEditor gin.HandlerFunc) {
	g := protected.Group("/courses/:courseId/paypal", courseEditor)
	{
		g.POST("", h.Create)
		g.GET("", h.List)
		g.GET("/:id", h.Get)
		g.PUT("/:id", h.Update)
		g.DELETE("/:id", h.Delete)
	}
}

// Create godoc
// @Summary      Add a PayPal activity
// @Tags         PayPal settings
// @Security     BearerAuth
// @Param        courseId path int true "Course ID"
// @Param        request body SettingsRequest true "Activity settings"
// @Success      201 {object} map[string]interface{}
// @Failure      400 {object} map[string]interface{} "Validation errors per field"
// @Failure      404 {object} map[string]interface{}
// @Router       /courses/{courseId}/paypal [post]
func (h *Handler) Create(c *gin.Context) {
	courseID, _ := strconv.ParseInt(c.Param("courseId"), 10, 64)

	var req SettingsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "INVALID_REQUEST", "Invalid request body")
		return
	}

	inst, err := h.svc.Create(c.Request.Context(), courseID, req)
	if err != nil {
		h.writeError(c, err)
		return
	}
	response.Success(c, http.StatusCreated, inst)
}

// Update godoc
// @Summary      Update a PayPal activity
// @Tags         PayPal settings
// @Security     BearerAuth
// @Param        courseId path int true "Course ID"
// @Param        id path int true "Instance ID"
// @Param        request body SettingsRequest true "Activity settings"
// @Success      200 {object} map[string]interface{}
// @Failure      400 {object} map[string]interface{}
// @Failure      404 {object} map[string]interface{}
// @Router       /courses/{courseId}/paypal/{id} [put]
func (h *Handler) Update(c *gin.Context) {
	courseID, _ := strconv.ParseInt(c.Param("courseId"), 10, 64)
	id, ok := instanceID(c)
	if !ok {
		return
	}

	var req SettingsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "INVALID_REQUEST", "Invalid request body")
		return
	}

	inst, err := h.svc.Update(c.Request.Context(), courseID, id, req)
	if err != nil {
		h.writeError(c, err)
		return
	}
	response.Success(c, http.StatusOK, inst)
}

func (h *Handler) Get(c *gin.Context) {
	courseID, _ := strconv.ParseInt(c.Param("courseId"), 10, 64)
	id, ok := instanceID(c)
	if !ok {
		return
	}

	inst, err := h.svc.Get(c.Request.Context(), courseID, id)
	if err != nil {
		h.writeError(c, err)
		return
	}
	response.Success(c, http.StatusOK, inst)
}

func (h *Handler) List(c *gin.Context) {
	courseID, _ := strconv.ParseInt(c.Param("courseId"), 10, 64)

	list, err := h.svc.List(c.Request.Context(), courseID)
	if err != nil {
		h.writeError(c, err)
		return
	}
	response.Success(c, http.StatusOK, list)
}

func (h *Handler) Delete(c *gin.Context) {
	courseID, _ := strconv.ParseInt(c.Param("courseId"), 10, 64)
	id, ok := instanceID(c)
	if !ok {
		return
	}

	if err := h.svc.Delete(c.Request.Context(), courseID, id); err != nil {
		h.writeError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"status": "deleted"})
}

func instanceID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		response.Error(c, http.StatusBadRequest, "INVALID_ID", "Invalid instance ID")
		return 0, false
	}
	return id, true
}

func (h *Handler) writeError(c *gin.Context, err error) {
	var verr *ValidationError
	switch {
	case errors.As(err, &verr):
		response.ErrorWithDetails(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid settings", verr.Fields)
	case errors.Is(err, ErrNotFound):
		response.Error(c, http.StatusNotFound, "NOT_FOUND", "Activity not found")
	case errors.Is(err, ErrCourseNotFound):
		response.Error(c, http.StatusNotFound, "COURSE_NOT_FOUND", "Course not found")
	default:
		h.loggerf("level=error msg=paypal settings request failed path=%s err=%v", c.FullPath(), err)
		response.Error(c, http.StatusInternalServerError, "INTERNAL", "Internal error")
	}
}
