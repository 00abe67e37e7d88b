package handler

import (
	"context"
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/eaglebank/ledger-service/shared/cqrs"
	"github.com/eaglebank/ledger-service/shared/models"
)

// ---- mock implementations ----

type mockCustomerCommander struct {
	ensureFn func(cqrs.EnsureCustomerProfileCommand) (*models.Customer, bool, error)
	updateFn func(cqrs.UpdateCustomerProfileCommand) (*models.Customer, error)
}

func (m *mockCustomerCommander) EnsureCustomerProfile(_ context.Context, cmd cqrs.EnsureCustomerProfileCommand) (*models.Customer, bool, error) {
	if m.ensureFn != nil {
		return m.ensureFn(cmd)
	}
	return nil, false, fmt.Errorf("not configured")
}

func (m *mockCustomerCommander) UpdateCustomerProfile(_ context.Context, cmd cqrs.UpdateCustomerProfileCommand) (*models.Customer, error) {
	if m.updateFn != nil {
		return m.updateFn(cmd)
	}
	return nil, fmt.Errorf("not configured")
}

type mockCustomerQuerier struct {
	getFn       func(cqrs.GetCustomerQuery) (*models.CustomerView, error)
	dashboardFn func(cqrs.DashboardQuery) (*models.DashboardView, error)
}

func (m *mockCustomerQuerier) GetCustomer(_ context.Context, q cqrs.GetCustomerQuery) (*models.CustomerView, error) {
	if m.getFn != nil {
		return m.getFn(q)
	}
	return nil, fmt.Errorf("not configured")
}

func (m *mockCustomerQuerier) Dashboard(_ context.Context, q cqrs.DashboardQuery) (*models.DashboardView, error) {
	if m.dashboardFn != nil {
		return m.dashboardFn(q)
	}
	return nil, fmt.Errorf("not configured")
}

func newCustomerRouter(cmds CustomerCommander, qrys *mockCustomerQuerier, customerID string) *gin.Engine {
	r := newTestRouter(customerID)
	h := NewCustomerHandler(cmds, qrys, qrys)
	r.POST("/v1/customers/profile", h.EnsureProfile)
	r.GET("/v1/customers/profile", h.GetProfile)
	r.PATCH("/v1/customers/profile", h.UpdateProfile)
	r.GET("/v1/dashboard", h.Dashboard)
	return r
}

var testCustomer = &models.Customer{
	ID:          "cust-1",
	PhoneNumber: "Not provided",
	Address:     "Not provided",
	DateOfBirth: "2000-01-01",
	CreatedAt:   time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
	UpdatedAt:   time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
}

// ---- tests ----

func TestEnsureProfile(t *testing.T) {
	tests := []struct {
		name           string
		created        bool
		err            error
		expectedStatus int
	}{
		{"created", true, nil, http.StatusCreated},
		{"already exists", false, nil, http.StatusOK},
		{"store down", false, models.ErrStoreUnavailable, http.StatusServiceUnavailable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cmds := &mockCustomerCommander{ensureFn: func(cmd cqrs.EnsureCustomerProfileCommand) (*models.Customer, bool, error) {
				if tt.err != nil {
					return nil, false, tt.err
				}
				if cmd.CustomerID != "cust-1" {
					return nil, false, fmt.Errorf("unexpected customer %s", cmd.CustomerID)
				}
				return testCustomer, tt.created, nil
			}}
			w := doRequest(newCustomerRouter(cmds, &mockCustomerQuerier{}, "cust-1"), http.MethodPost, "/v1/customers/profile", nil)
			if w.Code != tt.expectedStatus {
				t.Errorf("expected status %d, got %d: %s", tt.expectedStatus, w.Code, w.Body.String())
			}
		})
	}
}

func TestUpdateProfile(t *testing.T) {
	tests := []struct {
		name           string
		body           any
		updateFn       func(cqrs.UpdateCustomerProfileCommand) (*models.Customer, error)
		expectedStatus int
	}{
		{
			name: "success - change address",
			body: map[string]any{"address": "1 River Road"},
			updateFn: func(cmd cqrs.UpdateCustomerProfileCommand) (*models.Customer, error) {
				updated := *testCustomer
				updated.Address = cmd.Address
				return &updated, nil
			},
			expectedStatus: http.StatusOK,
		},
		{
			name:           "bad request - date of birth format",
			body:           map[string]any{"dateOfBirth": "01/02/1990"},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "bad request - phone too short",
			body:           map[string]any{"phoneNumber": "12"},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name: "not found - no profile",
			body: map[string]any{"address": "x"},
			updateFn: func(cmd cqrs.UpdateCustomerProfileCommand) (*models.Customer, error) {
				return nil, models.ErrCustomerNotFound
			},
			expectedStatus: http.StatusNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router := newCustomerRouter(&mockCustomerCommander{updateFn: tt.updateFn}, &mockCustomerQuerier{}, "cust-1")
			w := doRequest(router, http.MethodPatch, "/v1/customers/profile", tt.body)
			if w.Code != tt.expectedStatus {
				t.Errorf("expected status %d, got %d: %s", tt.expectedStatus, w.Code, w.Body.String())
			}
		})
	}
}

func TestGetProfileAndDashboard(t *testing.T) {
	qrys := &mockCustomerQuerier{
		getFn: func(q cqrs.GetCustomerQuery) (*models.CustomerView, error) {
			return models.CustomerToView(testCustomer), nil
		},
		dashboardFn: func(q cqrs.DashboardQuery) (*models.DashboardView, error) {
			return nil, models.ErrCustomerNotFound
		},
	}
	router := newCustomerRouter(&mockCustomerCommander{}, qrys, "cust-1")

	if w := doRequest(router, http.MethodGet, "/v1/customers/profile", nil); w.Code != http.StatusOK {
		t.Errorf("profile: expected status 200, got %d", w.Code)
	}
	if w := doRequest(router, http.MethodGet, "/v1/dashboard", nil); w.Code != http.StatusNotFound {
		t.Errorf("dashboard: expected status 404, got %d", w.Code)
	}
}
