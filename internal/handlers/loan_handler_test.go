package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/dvillanueva/loanpulse-api/internal/models"
	"github.com/dvillanueva/loanpulse-api/internal/repository"
	"github.com/dvillanueva/loanpulse-api/internal/services"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// testServer wires the full stack onto an in-memory database so handler
// behavior is tested through real routing, binding and error mapping.
func testServer(t *testing.T, now time.Time) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&models.Loan{},
		&models.PaymentEvent{},
		&models.Covenant{},
		&models.CovenantAuditRecord{},
		&models.AuditLog{},
	))

	repos := repository.NewRepositories(db)
	svcs := services.NewServices(repos, services.NoMetrics(), services.FixedClock{Instant: now}, db)
	h := NewHandlers(svcs)

	router := gin.New()
	v1 := router.Group("/api/v1")
	loans := v1.Group("/loans")
	{
		loans.POST("", h.Loan.Create)
		loans.GET("", h.Loan.Index)
		loans.GET("/:loan_id", h.Loan.Show)
		loans.DELETE("/:loan_id", h.Loan.Delete)
		loans.POST("/:loan_id/transition", h.Loan.Transition)
		loans.POST("/:loan_id/recovery_status", h.Loan.UpdateRecoveryStatus)
		loans.POST("/:loan_id/assign_agent", h.Loan.AssignAgent)
		loans.GET("/:loan_id/schedule", h.Loan.Schedule)
		loans.GET("/:loan_id/payment_status", h.Loan.PaymentStatus)
		loans.POST("/:loan_id/payments", h.Payment.Create)
		loans.GET("/:loan_id/payments", h.Payment.Index)
		loans.GET("/:loan_id/covenants", h.Covenant.Index)
	}
	return router
}

func doJSON(router *gin.Engine, method, path string, body interface{}, headers map[string]string) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

var adminHeaders = map[string]string{"X-Actor-Role": "admin", "X-Actor-Id": "1"}

func TestLoanLifecycleOverHTTP(t *testing.T) {
	now := time.Date(2025, 5, 1, 10, 0, 0, 0, time.UTC)
	router := testServer(t, now)

	// Create a loan application
	w := doJSON(router, http.MethodPost, "/api/v1/loans", gin.H{
		"customer_ref":         "CUST-1",
		"principal":            12000,
		"annual_interest_rate": 12,
		"term_months":          12,
	}, nil)
	require.Equal(t, http.StatusCreated, w.Code)

	var created models.LoanResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))
	assert.Equal(t, "pending", created.Status)
	assert.Nil(t, created.StartDate)

	// Lifecycle transitions are admin actions
	w = doJSON(router, http.MethodPost, "/api/v1/loans/1/transition", gin.H{"status": "approved"}, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = doJSON(router, http.MethodPost, "/api/v1/loans/1/transition", gin.H{"status": "approved"}, adminHeaders)
	require.Equal(t, http.StatusOK, w.Code)

	var approved models.LoanResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &approved))
	assert.Equal(t, "approved", approved.Status)
	require.NotNil(t, approved.StartDate)

	// Approval instantiated the default covenant set
	w = doJSON(router, http.MethodGet, "/api/v1/loans/1/covenants", nil, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var covenantList struct {
		Covenants []models.CovenantResponse `json:"covenants"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &covenantList))
	assert.Len(t, covenantList.Covenants, 3)

	// Invalid transition maps to 409
	w = doJSON(router, http.MethodPost, "/api/v1/loans/1/transition", gin.H{"status": "closed"}, adminHeaders)
	assert.Equal(t, http.StatusConflict, w.Code)

	// Unknown loan maps to 404
	w = doJSON(router, http.MethodGet, "/api/v1/loans/99", nil, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestPaymentRecordingOverHTTP(t *testing.T) {
	now := time.Date(2025, 5, 1, 10, 0, 0, 0, time.UTC)
	router := testServer(t, now)

	w := doJSON(router, http.MethodPost, "/api/v1/loans", gin.H{
		"principal":   12000,
		"term_months": 12,
	}, nil)
	require.Equal(t, http.StatusCreated, w.Code)

	// Payments against a pending loan are rejected
	w = doJSON(router, http.MethodPost, "/api/v1/loans/1/payments", gin.H{"amount": 1066.19}, nil)
	assert.Equal(t, http.StatusConflict, w.Code)

	w = doJSON(router, http.MethodPost, "/api/v1/loans/1/transition", gin.H{"status": "approved"}, adminHeaders)
	require.Equal(t, http.StatusOK, w.Code)

	w = doJSON(router, http.MethodPost, "/api/v1/loans/1/payments", gin.H{"amount": 1066.19}, nil)
	require.Equal(t, http.StatusCreated, w.Code)

	var event models.PaymentEventResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &event))
	assert.NotEmpty(t, event.Reference)
	assert.Equal(t, 1066.19, event.Amount)

	// Missing amount fails binding
	w = doJSON(router, http.MethodPost, "/api/v1/loans/1/payments", gin.H{}, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = doJSON(router, http.MethodGet, "/api/v1/loans/1/payments", nil, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var ledger struct {
		Payments []models.PaymentEventResponse `json:"payments"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &ledger))
	assert.Len(t, ledger.Payments, 1)

	// The amortization read model reflects the payment
	w = doJSON(router, http.MethodGet, "/api/v1/loans/1/schedule", nil, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var schedule services.InstallmentAndBalance
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &schedule))
	assert.InDelta(t, 1066.19, schedule.InstallmentAmount, 0.01)
	assert.InDelta(t, 1066.19, schedule.TotalPaid, 0.01)
}

func TestPaymentStatusOverHTTP(t *testing.T) {
	now := time.Date(2025, 5, 1, 10, 0, 0, 0, time.UTC)
	router := testServer(t, now)

	w := doJSON(router, http.MethodPost, "/api/v1/loans", gin.H{"principal": 12000, "term_months": 12}, nil)
	require.Equal(t, http.StatusCreated, w.Code)

	// No start date yet: classification is a 422
	w = doJSON(router, http.MethodGet, "/api/v1/loans/1/payment_status", nil, nil)
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)

	w = doJSON(router, http.MethodPost, "/api/v1/loans/1/transition", gin.H{"status": "approved"}, adminHeaders)
	require.Equal(t, http.StatusOK, w.Code)

	// Start date equals the fixed now: first installment not yet due
	w = doJSON(router, http.MethodGet, "/api/v1/loans/1/payment_status", nil, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var status models.PaymentStatus
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &status))
	assert.Equal(t, models.SeverityAwaitingFirst, status.Severity)
}

func TestDeleteLoanOverHTTP(t *testing.T) {
	now := time.Date(2025, 5, 1, 10, 0, 0, 0, time.UTC)
	router := testServer(t, now)

	w := doJSON(router, http.MethodPost, "/api/v1/loans", gin.H{"principal": 5000, "term_months": 6}, nil)
	require.Equal(t, http.StatusCreated, w.Code)

	// Only rejected applications may be deleted
	w = doJSON(router, http.MethodDelete, "/api/v1/loans/1", nil, adminHeaders)
	assert.Equal(t, http.StatusConflict, w.Code)

	w = doJSON(router, http.MethodPost, "/api/v1/loans/1/transition", gin.H{"status": "rejected"}, adminHeaders)
	require.Equal(t, http.StatusOK, w.Code)

	w = doJSON(router, http.MethodDelete, "/api/v1/loans/1", nil, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = doJSON(router, http.MethodDelete, "/api/v1/loans/1", nil, adminHeaders)
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = doJSON(router, http.MethodGet, "/api/v1/loans/1", nil, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}
