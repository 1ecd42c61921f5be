package completion

import (
	"errors"
	"net/http"
	"strconv"

	"modpaypal/internal/pkg/jwt"
	"modpaypal/internal/pkg/response"

	"github.com/gin-gonic/gin"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(protected *gin.RouterGroup) {
	protected.GET("/paypal/instances/:id/completion/:userId", h.GetState)
}

// GetState godoc
// @Summary      Completion state of a PayPal activity
// @Tags         PayPal
// @Security     BearerAuth
// @Param        id path int true "Instance ID"
// @Param        userId path int true "User ID"
// @Param        default query bool false "Result when completion by payment is disabled"
// @Success      200 {object} map[string]interface{}
// @Router       /paypal/instances/{id}/completion/{userId} [get]
func (h *Handler) GetState(c *gin.Context) {
	instanceID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || instanceID <= 0 {
		response.Error(c, http.StatusBadRequest, "INVALID_ID", "Invalid instance ID")
		return
	}
	userID, err := strconv.ParseInt(c.Param("userId"), 10, 64)
	if err != nil || userID <= 0 {
		response.Error(c, http.StatusBadRequest, "INVALID_ID", "Invalid user ID")
		return
	}

	// Students may only ask about themselves.
	if c.GetString("role") != jwt.RoleAdmin && c.GetInt64("user_id") != userID {
		response.Error(c, http.StatusForbidden, "FORBIDDEN", "Access denied")
		return
	}

	def := false
	if v := c.Query("default"); v != "" {
		def, err = strconv.ParseBool(v)
		if err != nil {
			response.Error(c, http.StatusBadRequest, "INVALID_REQUEST", "default must be a boolean")
			return
		}
	}

	completed, err := h.svc.State(c.Request.Context(), instanceID, userID, def)
	if err != nil {
		if errors.Is(err, ErrInstanceNotFound) {
			response.Error(c, http.StatusNotFound, "NOT_FOUND", "Activity not found")
			return
		}
		response.Error(c, http.StatusInternalServerError, "INTERNAL", "Failed to load completion state")
		return
	}
	response.Success(c, http.StatusOK, gin.H{"instance_id": instanceID, "user_id": userID, "completed": completed})
}
