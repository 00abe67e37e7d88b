package handler

import (
	"context"
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"github.com/eaglebank/ledger-service/shared/cqrs"
	"github.com/eaglebank/ledger-service/shared/middleware"
	"github.com/eaglebank/ledger-service/shared/models"
)

type mockLoanCommander struct {
	applyFn   func(cqrs.ApplyLoanCommand) (*models.Loan, error)
	approveFn func(cqrs.ApproveLoanCommand) (*models.Loan, error)
}

func (m *mockLoanCommander) ApplyLoan(_ context.Context, cmd cqrs.ApplyLoanCommand) (*models.Loan, error) {
	if m.applyFn != nil {
		return m.applyFn(cmd)
	}
	return nil, fmt.Errorf("not configured")
}

func (m *mockLoanCommander) ApproveLoan(_ context.Context, cmd cqrs.ApproveLoanCommand) (*models.Loan, error) {
	if m.approveFn != nil {
		return m.approveFn(cmd)
	}
	return nil, fmt.Errorf("not configured")
}

type mockLoanQuerier struct {
	getFn  func(cqrs.GetLoanQuery) (*models.LoanView, error)
	listFn func(cqrs.ListLoansQuery) ([]models.LoanView, error)
}

func (m *mockLoanQuerier) GetLoan(_ context.Context, q cqrs.GetLoanQuery) (*models.LoanView, error) {
	if m.getFn != nil {
		return m.getFn(q)
	}
	return nil, fmt.Errorf("not configured")
}

func (m *mockLoanQuerier) ListLoans(_ context.Context, q cqrs.ListLoansQuery) ([]models.LoanView, error) {
	if m.listFn != nil {
		return m.listFn(q)
	}
	return nil, fmt.Errorf("not configured")
}

func newLoanRouter(cmds LoanCommander, qrys LoanQuerier, customerID, role string) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(fakeAuth(customerID, role))
	h := NewLoanHandler(cmds, qrys)
	loans := r.Group("/v1/loans")
	loans.POST("", h.ApplyLoan)
	loans.GET("", h.ListLoans)
	loans.GET("/:loanId", h.GetLoan)
	loans.POST("/:loanId/approve", middleware.AdminOnly(), h.ApproveLoan)
	return r
}

var testLoan = &models.Loan{
	ID:             "loan-1",
	CustomerID:     "cust-1",
	Kind:           models.LoanCar,
	Amount:         decimal.NewFromInt(12000),
	InterestRate:   decimal.RequireFromString("8.50"),
	DurationMonths: 36,
	CreatedAt:      time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC),
}

func TestApplyLoan(t *testing.T) {
	tests := []struct {
		name           string
		body           any
		applyFn        func(cqrs.ApplyLoanCommand) (*models.Loan, error)
		expectedStatus int
	}{
		{
			name: "success",
			body: map[string]any{"loanType": "car", "amount": "12000", "durationMonths": 36},
			applyFn: func(cmd cqrs.ApplyLoanCommand) (*models.Loan, error) {
				return testLoan, nil
			},
			expectedStatus: http.StatusCreated,
		},
		{
			name:           "bad request - unknown type",
			body:           map[string]any{"loanType": "boat", "amount": "1", "durationMonths": 12},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "bad request - duration too long",
			body:           map[string]any{"loanType": "home", "amount": "1", "durationMonths": 1000},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name: "not found - no profile",
			body: map[string]any{"loanType": "personal", "amount": "100", "durationMonths": 12},
			applyFn: func(cmd cqrs.ApplyLoanCommand) (*models.Loan, error) {
				return nil, models.ErrCustomerNotFound
			},
			expectedStatus: http.StatusNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router := newLoanRouter(&mockLoanCommander{applyFn: tt.applyFn}, &mockLoanQuerier{}, "cust-1", "")
			w := doRequest(router, http.MethodPost, "/v1/loans", tt.body)
			if w.Code != tt.expectedStatus {
				t.Errorf("expected status %d, got %d: %s", tt.expectedStatus, w.Code, w.Body.String())
			}
		})
	}
}

func TestApproveLoanRequiresAdmin(t *testing.T) {
	approved := *testLoan
	approved.Approved = true
	cmds := &mockLoanCommander{approveFn: func(cmd cqrs.ApproveLoanCommand) (*models.Loan, error) {
		if cmd.LoanID != "loan-1" {
			return nil, models.ErrLoanNotFound
		}
		return &approved, nil
	}}

	tests := []struct {
		name           string
		role           string
		url            string
		expectedStatus int
	}{
		{"customer cannot approve", "", "/v1/loans/loan-1/approve", http.StatusForbidden},
		{"admin approves", middleware.RoleAdmin, "/v1/loans/loan-1/approve", http.StatusOK},
		{"admin - unknown loan", middleware.RoleAdmin, "/v1/loans/loan-9/approve", http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router := newLoanRouter(cmds, &mockLoanQuerier{}, "cust-1", tt.role)
			w := doRequest(router, http.MethodPost, tt.url, nil)
			if w.Code != tt.expectedStatus {
				t.Errorf("expected status %d, got %d: %s", tt.expectedStatus, w.Code, w.Body.String())
			}
		})
	}
}

func TestGetAndListLoans(t *testing.T) {
	qrys := &mockLoanQuerier{
		getFn: func(q cqrs.GetLoanQuery) (*models.LoanView, error) {
			if q.RequestingCustomerID != "cust-1" {
				return nil, models.ErrForbidden
			}
			return models.LoanToView(testLoan), nil
		},
		listFn: func(q cqrs.ListLoansQuery) ([]models.LoanView, error) {
			return []models.LoanView{*models.LoanToView(testLoan)}, nil
		},
	}

	if w := doRequest(newLoanRouter(&mockLoanCommander{}, qrys, "cust-1", ""), http.MethodGet, "/v1/loans/loan-1", nil); w.Code != http.StatusOK {
		t.Errorf("owner: expected status 200, got %d", w.Code)
	}
	if w := doRequest(newLoanRouter(&mockLoanCommander{}, qrys, "cust-2", ""), http.MethodGet, "/v1/loans/loan-1", nil); w.Code != http.StatusForbidden {
		t.Errorf("stranger: expected status 403, got %d", w.Code)
	}
	if w := doRequest(newLoanRouter(&mockLoanCommander{}, qrys, "cust-1", ""), http.MethodGet, "/v1/loans", nil); w.Code != http.StatusOK {
		t.Errorf("list: expected status 200, got %d", w.Code)
	}
}
