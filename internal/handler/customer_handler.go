package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/eaglebank/ledger-service/shared/cqrs"
	"github.com/eaglebank/ledger-service/shared/middleware"
	"github.com/eaglebank/ledger-service/shared/models"
)

// CustomerCommander defines the write-side operations used by CustomerHandler.
type CustomerCommander interface {
	EnsureCustomerProfile(context.Context, cqrs.EnsureCustomerProfileCommand) (*models.Customer, bool, error)
	UpdateCustomerProfile(context.Context, cqrs.UpdateCustomerProfileCommand) (*models.Customer, error)
}

// CustomerQuerier defines the read-side operations used by CustomerHandler.
type CustomerQuerier interface {
	GetCustomer(context.Context, cqrs.GetCustomerQuery) (*models.CustomerView, error)
}

type DashboardQuerier interface {
	Dashboard(context.Context, cqrs.DashboardQuery) (*models.DashboardView, error)
}

type CustomerHandler struct {
	commands  CustomerCommander
	queries   CustomerQuerier
	dashboard DashboardQuerier
}

type UpdateProfileRequest struct {
	PhoneNumber string `json:"phoneNumber" validate:"omitempty,min=5,max=20"`
	Address     string `json:"address" validate:"omitempty,max=200"`
	DateOfBirth string `json:"dateOfBirth" validate:"omitempty,datetime=2006-01-02"`
}

func NewCustomerHandler(commands CustomerCommander, queries CustomerQuerier, dashboard DashboardQuerier) *CustomerHandler {
	return &CustomerHandler{commands: commands, queries: queries, dashboard: dashboard}
}

// EnsureProfile answers 201 when the profile was created and 200 when it
// already existed.
func (h *CustomerHandler) EnsureProfile(c *gin.Context) {
	customerID, _ := middleware.GetCustomerID(c)

	customer, created, err := h.commands.EnsureCustomerProfile(c.Request.Context(), cqrs.EnsureCustomerProfileCommand{
		CustomerID: customerID,
	})
	if err != nil {
		respondWithLedgerError(c, err, "Failed to create profile")
		return
	}

	status := http.StatusOK
	if created {
		status = http.StatusCreated
	}
	c.JSON(status, models.CustomerToView(customer))
}

func (h *CustomerHandler) GetProfile(c *gin.Context) {
	customerID, _ := middleware.GetCustomerID(c)

	view, err := h.queries.GetCustomer(c.Request.Context(), cqrs.GetCustomerQuery{CustomerID: customerID})
	if err != nil {
		respondWithLedgerError(c, err, "Failed to get profile")
		return
	}
	c.JSON(http.StatusOK, view)
}

func (h *CustomerHandler) UpdateProfile(c *gin.Context) {
	customerID, _ := middleware.GetCustomerID(c)

	var req UpdateProfileRequest
	if !middleware.BindJSON(c, &req) {
		return
	}

	customer, err := h.commands.UpdateCustomerProfile(c.Request.Context(), cqrs.UpdateCustomerProfileCommand{
		CustomerID:  customerID,
		PhoneNumber: req.PhoneNumber,
		Address:     req.Address,
		DateOfBirth: req.DateOfBirth,
	})
	if err != nil {
		respondWithLedgerError(c, err, "Failed to update profile")
		return
	}
	c.JSON(http.StatusOK, models.CustomerToView(customer))
}

func (h *CustomerHandler) Dashboard(c *gin.Context) {
	customerID, _ := middleware.GetCustomerID(c)

	view, err := h.dashboard.Dashboard(c.Request.Context(), cqrs.DashboardQuery{CustomerID: customerID})
	if err != nil {
		respondWithLedgerError(c, err, "Failed to load dashboard")
		return
	}
	c.JSON(http.StatusOK, view)
}
