package handlers

import (
	"context"
	"net/http"
	"strconv"

	"github.com/dvillanueva/loanpulse-api/internal/models"
	"github.com/dvillanueva/loanpulse-api/internal/services"
	"github.com/gin-gonic/gin"
)

type CovenantHandler struct {
	covenantService *services.CovenantService
	recovery        *services.RecoveryOrchestrator
}

func NewCovenantHandler(covenantService *services.CovenantService, recovery *services.RecoveryOrchestrator) *CovenantHandler {
	return &CovenantHandler{covenantService: covenantService, recovery: recovery}
}

// Index lists a loan's covenants, excluding INACTIVE unless asked
func (h *CovenantHandler) Index(c *gin.Context) {
	id, ok := paramID(c, "loan_id")
	if !ok {
		return
	}

	includeInactive, _ := strconv.ParseBool(c.DefaultQuery("include_inactive", "false"))
	covenants, err := h.covenantService.ListCovenants(c.Request.Context(), id, includeInactive)
	if err != nil {
		respondError(c, err)
		return
	}

	responses := make([]interface{}, 0, len(covenants))
	for i := range covenants {
		responses = append(responses, covenants[i].ToResponse())
	}

	c.JSON(http.StatusOK, gin.H{"covenants": responses})
}

type createCovenantRequest struct {
	Type               string  `json:"type" binding:"required"`
	Name               string  `json:"name" binding:"required"`
	Threshold          float64 `json:"threshold"`
	ComparisonOperator string  `json:"comparison_operator" binding:"required"`
	CheckFrequency     string  `json:"check_frequency"`
	Severity           string  `json:"severity"`
}

// Create adds a manually defined covenant to a loan
func (h *CovenantHandler) Create(c *gin.Context) {
	if !requireAdmin(c) {
		return
	}

	id, ok := paramID(c, "loan_id")
	if !ok {
		return
	}

	var req createCovenantRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	covenant := &models.Covenant{
		LoanID:             id,
		Type:               req.Type,
		Name:               req.Name,
		Threshold:          req.Threshold,
		ComparisonOperator: req.ComparisonOperator,
		CheckFrequency:     req.CheckFrequency,
		Severity:           req.Severity,
	}
	if covenant.Severity == "" {
		covenant.Severity = models.CovenantSeverityMedium
	}

	if err := h.covenantService.CreateCovenant(c.Request.Context(), covenant); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, covenant.ToResponse())
}

// Evaluate re-evaluates a loan's covenants on demand
func (h *CovenantHandler) Evaluate(c *gin.Context) {
	id, ok := paramID(c, "loan_id")
	if !ok {
		return
	}

	covenants, err := h.recovery.EvaluateCovenants(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}

	responses := make([]interface{}, 0, len(covenants))
	for i := range covenants {
		responses = append(responses, covenants[i].ToResponse())
	}

	c.JSON(http.StatusOK, gin.H{"covenants": responses})
}

// Waive suspends a covenant until reactivated
func (h *CovenantHandler) Waive(c *gin.Context) {
	h.override(c, h.covenantService.Waive)
}

// Reactivate returns a waived or inactive covenant to monitoring
func (h *CovenantHandler) Reactivate(c *gin.Context) {
	h.override(c, h.covenantService.Reactivate)
}

// Deactivate retires a covenant
func (h *CovenantHandler) Deactivate(c *gin.Context) {
	h.override(c, h.covenantService.Deactivate)
}

func (h *CovenantHandler) override(c *gin.Context, action func(ctx context.Context, covenantID uint, actorID *uint) (*models.Covenant, error)) {
	if !requireAdmin(c) {
		return
	}

	id, ok := paramID(c, "covenant_id")
	if !ok {
		return
	}

	_, actorID := actorFrom(c)
	covenant, err := action(c.Request.Context(), id, actorID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, covenant.ToResponse())
}

// Audit lists a covenant's audit trail, newest first
func (h *CovenantHandler) Audit(c *gin.Context) {
	id, ok := paramID(c, "covenant_id")
	if !ok {
		return
	}

	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	records, err := h.covenantService.AuditTrail(c.Request.Context(), id, limit)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"audit_records": records})
}
