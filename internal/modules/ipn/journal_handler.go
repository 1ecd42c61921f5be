package ipn

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"modpaypal/internal/domain"
	"modpaypal/internal/pkg/response"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type journalReader interface {
	GetByID(ctx context.Context, id uuid.UUID) (*domain.IPNLog, error)
	ListByTxnID(ctx context.Context, txnID string) ([]domain.IPNLog, error)
}

// JournalHandler lets site admins inspect what became of each notification.
type JournalHandler struct {
	journal journalReader
}

func NewJournalHandler(journal journalReader) *JournalHandler {
	return &JournalHandler{journal: journal}
}

func (h *JournalHandler) RegisterRoutes(admin *gin.RouterGroup) {
	admin.GET("/paypal/ipn-log", h.ListByTxn)
	admin.GET("/paypal/ipn-log/:id", h.Get)
}

// ListByTxn godoc
// @Summary      Journal entries for a PayPal transaction
// @Tags         PayPal
// @Security     BearerAuth
// @Param        txn_id query string true "PayPal transaction ID"
// @Success      200 {object} map[string]interface{}
// @Router       /paypal/ipn-log [get]
func (h *JournalHandler) ListByTxn(c *gin.Context) {
	txnID := strings.TrimSpace(c.Query("txn_id"))
	if txnID == "" {
		response.Error(c, http.StatusBadRequest, "INVALID_REQUEST", "txn_id is required")
		return
	}

	list, err := h.journal.ListByTxnID(c.Request.Context(), txnID)
	if err != nil {
		response.Error(c, http.StatusInternalServerError, "FETCH_FAILED", "Failed to load journal")
		return
	}
	response.Success(c, http.StatusOK, gin.H{"entries": list})
}

func (h *JournalHandler) Get(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.Error(c, http.StatusBadRequest, "INVALID_ID", "Invalid journal ID")
		return
	}

	entry, err := h.journal.GetByID(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			response.Error(c, http.StatusNotFound, "NOT_FOUND", "Journal entry not found")
			return
		}
		response.Error(c, http.StatusInternalServerError, "FETCH_FAILED", "Failed to load journal")
		return
	}
	response.Success(c, http.StatusOK, gin.H{"entry": entry})
}
