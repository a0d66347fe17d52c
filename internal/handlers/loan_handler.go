package handlers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/dvillanueva/loanpulse-api/internal/repository"
	"github.com/dvillanueva/loanpulse-api/internal/services"
	"github.com/gin-gonic/gin"
)

type LoanHandler struct {
	loanService *services.LoanService
	recovery    *services.RecoveryOrchestrator
}

func NewLoanHandler(loanService *services.LoanService, recovery *services.RecoveryOrchestrator) *LoanHandler {
	return &LoanHandler{loanService: loanService, recovery: recovery}
}

type createLoanRequest struct {
	CustomerRef        string  `json:"customer_ref"`
	Principal          float64 `json:"principal" binding:"required"`
	AnnualInterestRate float64 `json:"annual_interest_rate"`
	TermMonths         int     `json:"term_months" binding:"required"`
	Currency           string  `json:"currency"`
}

// Create registers a new loan application
func (h *LoanHandler) Create(c *gin.Context) {
	var req createLoanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	loan, err := h.loanService.Create(c.Request.Context(), services.CreateLoanParams{
		CustomerRef:        req.CustomerRef,
		Principal:          req.Principal,
		AnnualInterestRate: req.AnnualInterestRate,
		TermMonths:         req.TermMonths,
		Currency:           req.Currency,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, loan.ToResponse())
}

// Index lists loans with pagination and status filters
func (h *LoanHandler) Index(c *gin.Context) {
	query := repository.NewListQuery()
	query.Page, _ = strconv.Atoi(c.DefaultQuery("page", "1"))
	query.PerPage, _ = strconv.Atoi(c.DefaultQuery("per_page", "20"))
	query.Filters["status"] = c.Query("status")
	query.Filters["status_in"] = c.Query("status_in")
	query.Filters["recovery_status"] = c.Query("recovery_status")
	query.Filters["agent_id"] = c.Query("agent_id")

	if sort := c.Query("sort"); sort != "" {
		parts := strings.Split(sort, "-")
		query.SortBy = parts[0]
		if len(parts) > 1 {
			query.SortDir = parts[1]
		}
	}

	loans, total, err := h.loanService.List(c.Request.Context(), query)
	if err != nil {
		respondError(c, err)
		return
	}

	responses := make([]interface{}, 0, len(loans))
	for i := range loans {
		responses = append(responses, loans[i].ToResponse())
	}

	c.JSON(http.StatusOK, gin.H{
		"loans": responses,
		"pagination": gin.H{
			"page":        query.Page,
			"per_page":    query.PerPage,
			"total":       total,
			"total_pages": (total + int64(query.PerPage) - 1) / int64(query.PerPage),
		},
	})
}

// Show returns a single loan
func (h *LoanHandler) Show(c *gin.Context) {
	id, ok := paramID(c, "loan_id")
	if !ok {
		return
	}

	loan, err := h.loanService.FindByID(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, loan.ToResponse())
}

// Delete destroys a rejected loan application
func (h *LoanHandler) Delete(c *gin.Context) {
	id, ok := paramID(c, "loan_id")
	if !ok {
		return
	}

	role, actorID := actorFrom(c)
	if err := h.loanService.Delete(c.Request.Context(), id, role, actorID); err != nil {
		respondError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

type transitionRequest struct {
	Status string `json:"status" binding:"required"`
}

// Transition moves a loan's lifecycle status
func (h *LoanHandler) Transition(c *gin.Context) {
	id, ok := paramID(c, "loan_id")
	if !ok {
		return
	}

	var req transitionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	role, actorID := actorFrom(c)
	loan, err := h.loanService.TransitionLifecycle(c.Request.Context(), id, req.Status, role, actorID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, loan.ToResponse())
}

// UpdateRecoveryStatus moves the agent-managed recovery status
func (h *LoanHandler) UpdateRecoveryStatus(c *gin.Context) {
	id, ok := paramID(c, "loan_id")
	if !ok {
		return
	}

	var req transitionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	role, actorID := actorFrom(c)
	loan, err := h.loanService.UpdateRecoveryStatus(c.Request.Context(), id, req.Status, role, actorID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, loan.ToResponse())
}

type assignAgentRequest struct {
	AgentID uint `json:"agent_id" binding:"required"`
}

// AssignAgent puts a recovery agent on a loan
func (h *LoanHandler) AssignAgent(c *gin.Context) {
	id, ok := paramID(c, "loan_id")
	if !ok {
		return
	}

	var req assignAgentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	role, actorID := actorFrom(c)
	loan, err := h.loanService.AssignAgent(c.Request.Context(), id, req.AgentID, role, actorID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, loan.ToResponse())
}

// Schedule returns the loan's installment amount and outstanding balance
func (h *LoanHandler) Schedule(c *gin.Context) {
	id, ok := paramID(c, "loan_id")
	if !ok {
		return
	}

	schedule, err := h.recovery.GetInstallmentAndBalance(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, schedule)
}

// PaymentStatus returns the loan's derived payment-progress classification
func (h *LoanHandler) PaymentStatus(c *gin.Context) {
	id, ok := paramID(c, "loan_id")
	if !ok {
		return
	}

	status, err := h.recovery.GetPaymentStatus(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, status)
}
