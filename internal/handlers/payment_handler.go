package handlers

import (
	"net/http"
	"time"

	"github.com/dvillanueva/loanpulse-api/internal/services"
	"github.com/gin-gonic/gin"
)

type PaymentHandler struct {
	recovery *services.RecoveryOrchestrator
}

func NewPaymentHandler(recovery *services.RecoveryOrchestrator) *PaymentHandler {
	return &PaymentHandler{recovery: recovery}
}

type recordPaymentRequest struct {
	Amount     float64    `json:"amount" binding:"required"`
	OccurredAt *time.Time `json:"occurred_at"`
}

// Create records a payment event against a loan. Recording triggers
// re-classification and covenant re-evaluation.
func (h *PaymentHandler) Create(c *gin.Context) {
	id, ok := paramID(c, "loan_id")
	if !ok {
		return
	}

	var req recordPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	occurredAt := time.Now()
	if req.OccurredAt != nil {
		occurredAt = *req.OccurredAt
	}

	event, err := h.recovery.RecordPayment(c.Request.Context(), id, req.Amount, occurredAt)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, event.ToResponse())
}

// Index lists the loan's payment ledger in event order
func (h *PaymentHandler) Index(c *gin.Context) {
	id, ok := paramID(c, "loan_id")
	if !ok {
		return
	}

	events, err := h.recovery.ListPayments(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}

	responses := make([]interface{}, 0, len(events))
	for i := range events {
		responses = append(responses, events[i].ToResponse())
	}

	c.JSON(http.StatusOK, gin.H{"payments": responses})
}
