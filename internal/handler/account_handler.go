package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"github.com/eaglebank/ledger-service/shared/cqrs"
	"github.com/eaglebank/ledger-service/shared/middleware"
	"github.com/eaglebank/ledger-service/shared/models"
)

// AccountCommander defines the write-side operations used by AccountHandler.
type AccountCommander interface {
	CreateAccount(context.Context, cqrs.CreateAccountCommand) (*models.Account, error)
	DeactivateAccount(context.Context, cqrs.DeactivateAccountCommand) (*models.Account, error)
}

// AccountQuerier defines the read-side operations used by AccountHandler.
type AccountQuerier interface {
	GetAccount(context.Context, cqrs.GetAccountQuery) (*models.AccountView, error)
	ListAccounts(context.Context, cqrs.ListAccountsQuery) ([]models.AccountView, error)
	GetBalance(context.Context, cqrs.GetBalanceQuery) (decimal.Decimal, error)
	TotalBalance(context.Context, cqrs.TotalBalanceQuery) (decimal.Decimal, error)
	Reconcile(context.Context, cqrs.ReconcileAccountQuery) (*models.ReconciliationView, error)
}

type AccountHandler struct {
	commands AccountCommander
	queries  AccountQuerier
}

type CreateAccountRequest struct {
	AccountType string `json:"accountType" validate:"required,oneof=savings checking business"`
}

type ListAccountsResponse struct {
	Accounts     []models.AccountView `json:"accounts"`
	TotalBalance string               `json:"totalBalance"`
}

type BalanceResponse struct {
	AccountID string `json:"accountId"`
	Balance   string `json:"balance"`
}

func NewAccountHandler(commands AccountCommander, queries AccountQuerier) *AccountHandler {
	return &AccountHandler{commands: commands, queries: queries}
}

func (h *AccountHandler) CreateAccount(c *gin.Context) {
	customerID, _ := middleware.GetCustomerID(c)

	var req CreateAccountRequest
	if !middleware.BindJSON(c, &req) {
		return
	}

	account, err := h.commands.CreateAccount(c.Request.Context(), cqrs.CreateAccountCommand{
		CustomerID:  customerID,
		AccountType: req.AccountType,
	})
	if err != nil {
		respondWithLedgerError(c, err, "Failed to create account")
		return
	}
	c.JSON(http.StatusCreated, models.AccountToView(account))
}

// ListAccounts returns every account of the caller; totalBalance only
// counts active ones.
func (h *AccountHandler) ListAccounts(c *gin.Context) {
	customerID, _ := middleware.GetCustomerID(c)
	ctx := c.Request.Context()

	views, err := h.queries.ListAccounts(ctx, cqrs.ListAccountsQuery{CustomerID: customerID})
	if err != nil {
		respondWithLedgerError(c, err, "Failed to list accounts")
		return
	}
	total, err := h.queries.TotalBalance(ctx, cqrs.TotalBalanceQuery{CustomerID: customerID})
	if err != nil {
		respondWithLedgerError(c, err, "Failed to list accounts")
		return
	}
	c.JSON(http.StatusOK, ListAccountsResponse{Accounts: views, TotalBalance: models.Money(total)})
}

func (h *AccountHandler) GetAccount(c *gin.Context) {
	customerID, _ := middleware.GetCustomerID(c)

	view, err := h.queries.GetAccount(c.Request.Context(), cqrs.GetAccountQuery{
		AccountID:            c.Param("accountId"),
		RequestingCustomerID: customerID,
	})
	if err != nil {
		respondWithLedgerError(c, err, "Failed to get account")
		return
	}
	c.JSON(http.StatusOK, view)
}

func (h *AccountHandler) GetBalance(c *gin.Context) {
	customerID, _ := middleware.GetCustomerID(c)
	accountID := c.Param("accountId")

	balance, err := h.queries.GetBalance(c.Request.Context(), cqrs.GetBalanceQuery{
		AccountID:            accountID,
		RequestingCustomerID: customerID,
	})
	if err != nil {
		respondWithLedgerError(c, err, "Failed to get balance")
		return
	}
	c.JSON(http.StatusOK, BalanceResponse{AccountID: accountID, Balance: models.Money(balance)})
}

func (h *AccountHandler) Reconcile(c *gin.Context) {
	customerID, _ := middleware.GetCustomerID(c)

	report, err := h.queries.Reconcile(c.Request.Context(), cqrs.ReconcileAccountQuery{
		AccountID:            c.Param("accountId"),
		RequestingCustomerID: customerID,
	})
	if err != nil {
		respondWithLedgerError(c, err, "Failed to reconcile account")
		return
	}
	c.JSON(http.StatusOK, report)
}

func (h *AccountHandler) DeactivateAccount(c *gin.Context) {
	customerID, _ := middleware.GetCustomerID(c)

	account, err := h.commands.DeactivateAccount(c.Request.Context(), cqrs.DeactivateAccountCommand{
		AccountID:            c.Param("accountId"),
		RequestingCustomerID: customerID,
	})
	if err != nil {
		respondWithLedgerError(c, err, "Failed to deactivate account")
		return
	}
	c.JSON(http.StatusOK, models.AccountToView(account))
}
