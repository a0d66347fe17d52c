package services

import (
	"context"
	"sync"

	"github.com/dvillanueva/loanpulse-api/internal/models"
	"github.com/dvillanueva/loanpulse-api/internal/repository"
	"gorm.io/gorm"
)

// Mock LoanRepository
type mockLoanRepository struct {
	repository.LoanRepository
	mockFindByID        func(ctx context.Context, id uint) (*models.Loan, error)
	mockUpdate          func(ctx context.Context, loan *models.Loan) error
	mockCreate          func(ctx context.Context, loan *models.Loan) error
	mockDelete          func(ctx context.Context, id uint) error
	mockFindMonitorable func(ctx context.Context) ([]models.Loan, error)
}

func (m *mockLoanRepository) FindByID(ctx context.Context, id uint) (*models.Loan, error) {
	if m.mockFindByID != nil {
		return m.mockFindByID(ctx, id)
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockLoanRepository) Update(ctx context.Context, loan *models.Loan) error {
	if m.mockUpdate != nil {
		return m.mockUpdate(ctx, loan)
	}
	return nil
}

func (m *mockLoanRepository) Create(ctx context.Context, loan *models.Loan) error {
	if m.mockCreate != nil {
		return m.mockCreate(ctx, loan)
	}
	loan.ID = 1
	return nil
}

func (m *mockLoanRepository) Delete(ctx context.Context, id uint) error {
	if m.mockDelete != nil {
		return m.mockDelete(ctx, id)
	}
	return nil
}

func (m *mockLoanRepository) FindMonitorable(ctx context.Context) ([]models.Loan, error) {
	if m.mockFindMonitorable != nil {
		return m.mockFindMonitorable(ctx)
	}
	return nil, nil
}

// Mock PaymentEventRepository
type mockPaymentEventRepository struct {
	mu     sync.Mutex
	events []models.PaymentEvent

	mockCreate     func(ctx context.Context, event *models.PaymentEvent) error
	mockFindByLoan func(ctx context.Context, loanID uint) ([]models.PaymentEvent, error)
	mockSumByLoan  func(ctx context.Context, loanID uint) (float64, error)
}

func (m *mockPaymentEventRepository) Create(ctx context.Context, event *models.PaymentEvent) error {
	if m.mockCreate != nil {
		return m.mockCreate(ctx, event)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	event.ID = uint(len(m.events) + 1)
	m.events = append(m.events, *event)
	return nil
}

func (m *mockPaymentEventRepository) FindByLoan(ctx context.Context, loanID uint) ([]models.PaymentEvent, error) {
	if m.mockFindByLoan != nil {
		return m.mockFindByLoan(ctx, loanID)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.PaymentEvent
	for _, e := range m.events {
		if e.LoanID == loanID {
			out = append(out, e)
		}
	}
	return out, nil
}

func (m *mockPaymentEventRepository) CountByLoan(ctx context.Context, loanID uint) (int64, error) {
	events, err := m.FindByLoan(ctx, loanID)
	return int64(len(events)), err
}

func (m *mockPaymentEventRepository) SumByLoan(ctx context.Context, loanID uint) (float64, error) {
	if m.mockSumByLoan != nil {
		return m.mockSumByLoan(ctx, loanID)
	}
	events, err := m.FindByLoan(ctx, loanID)
	if err != nil {
		return 0, err
	}
	var total float64
	for _, e := range events {
		total += e.Amount
	}
	return total, nil
}

// Mock CovenantRepository with in-memory store
type mockCovenantRepository struct {
	mu        sync.Mutex
	covenants map[uint]*models.Covenant
	nextID    uint

	mockFindByLoan func(ctx context.Context, loanID uint, includeInactive bool) ([]models.Covenant, error)
	mockUpdate     func(ctx context.Context, covenant *models.Covenant) error
}

func newMockCovenantRepository() *mockCovenantRepository {
	return &mockCovenantRepository{covenants: make(map[uint]*models.Covenant), nextID: 1}
}

func (m *mockCovenantRepository) FindByID(ctx context.Context, id uint) (*models.Covenant, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.covenants[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	copied := *c
	return &copied, nil
}

func (m *mockCovenantRepository) FindByLoan(ctx context.Context, loanID uint, includeInactive bool) ([]models.Covenant, error) {
	if m.mockFindByLoan != nil {
		return m.mockFindByLoan(ctx, loanID, includeInactive)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.Covenant
	for id := uint(1); id < m.nextID; id++ {
		c, ok := m.covenants[id]
		if !ok || c.LoanID != loanID {
			continue
		}
		if !includeInactive && c.Status == models.CovenantStatusInactive {
			continue
		}
		out = append(out, *c)
	}
	return out, nil
}

func (m *mockCovenantRepository) CountByLoan(ctx context.Context, loanID uint) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var count int64
	for _, c := range m.covenants {
		if c.LoanID == loanID {
			count++
		}
	}
	return count, nil
}

func (m *mockCovenantRepository) Create(ctx context.Context, covenant *models.Covenant) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	covenant.ID = m.nextID
	m.nextID++
	copied := *covenant
	m.covenants[covenant.ID] = &copied
	return nil
}

func (m *mockCovenantRepository) Update(ctx context.Context, covenant *models.Covenant) error {
	if m.mockUpdate != nil {
		return m.mockUpdate(ctx, covenant)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	copied := *covenant
	m.covenants[covenant.ID] = &copied
	return nil
}

// Mock CovenantAuditRepository collecting records in memory
type mockCovenantAuditRepository struct {
	mu      sync.Mutex
	records []models.CovenantAuditRecord

	mockCreate func(ctx context.Context, record *models.CovenantAuditRecord) error
}

func (m *mockCovenantAuditRepository) Create(ctx context.Context, record *models.CovenantAuditRecord) error {
	if m.mockCreate != nil {
		return m.mockCreate(ctx, record)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	record.ID = uint(len(m.records) + 1)
	m.records = append(m.records, *record)
	return nil
}

func (m *mockCovenantAuditRepository) FindByCovenant(ctx context.Context, covenantID uint, limit int) ([]models.CovenantAuditRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.CovenantAuditRecord
	for i := len(m.records) - 1; i >= 0; i-- {
		if m.records[i].CovenantID == covenantID {
			out = append(out, m.records[i])
		}
		if limit > 0 && len(out) == limit {
			break
		}
	}
	return out, nil
}

func (m *mockCovenantAuditRepository) recordsFor(covenantID uint) []models.CovenantAuditRecord {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.CovenantAuditRecord
	for _, r := range m.records {
		if r.CovenantID == covenantID {
			out = append(out, r)
		}
	}
	return out
}

// Mock MetricsProvider with a fixed value table per covenant type
type mockMetrics struct {
	values map[string]float64
}

func (m *mockMetrics) ObservedValue(ctx context.Context, loan *models.Loan, covenantType string) (float64, bool, error) {
	v, ok := m.values[covenantType]
	return v, ok, nil
}
