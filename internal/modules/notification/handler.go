package notification

import (
	"context"
	"net/http"
	"strconv"

	"modpaypal/internal/domain"
	"modpaypal/internal/pkg/response"

	"github.com/gin-gonic/gin"
)

type inboxReader interface {
	ListForUser(ctx context.Context, userID int64, limit int) ([]domain.Message, error)
}

// Handler exposes the payment message outbox to its recipients.
type Handler struct {
	messages inboxReader
}

func NewHandler(messages inboxReader) *Handler {
	return &Handler{messages: messages}
}

func (h *Handler) RegisterRoutes(protected *gin.RouterGroup) {
	protected.GET("/paypal/messages", h.GetMessages)
}

func (h *Handler) GetMessages(c *gin.Context) {
	userID := c.GetInt64("user_id")
	if userID == 0 {
		response.Error(c, http.StatusUnauthorized, "UNAUTHORIZED", "User not authenticated")
		return
	}

	limit := 20
	if s := c.Query("limit"); s != "" {
		if v, err := strconv.Atoi(s); err == nil && v > 0 {
			limit = v
			if limit > 100 {
				limit = 100
			}
		}
	}

	list, err := h.messages.ListForUser(c.Request.Context(), userID, limit)
	if err != nil {
		response.Error(c, http.StatusInternalServerError, "FETCH_FAILED", "Failed to get messages")
		return
	}

	response.Success(c, http.StatusOK, gin.H{"messages": list})
}
