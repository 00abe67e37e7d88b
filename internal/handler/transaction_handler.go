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

// TransactionCommander defines the write-side operations used by TransactionHandler.
type TransactionCommander interface {
	Deposit(context.Context, cqrs.DepositCommand) (*models.Transaction, error)
	Withdraw(context.Context, cqrs.WithdrawCommand) (*models.Transaction, error)
	Transfer(context.Context, cqrs.TransferCommand) (*models.Transaction, error)
}

// TransactionQuerier defines the read-side operations used by TransactionHandler.
type TransactionQuerier interface {
	GetTransaction(context.Context, cqrs.GetTransactionQuery) (*models.TransactionView, error)
	ListTransactions(context.Context, cqrs.ListTransactionsQuery) ([]models.TransactionView, error)
}

type TransactionHandler struct {
	commands TransactionCommander
	queries  TransactionQuerier
}

// MoneyRequest carries amounts as decimal strings so no value passes
// through a float.
type MoneyRequest struct {
	Amount      string `json:"amount" validate:"required,numeric"`
	Description string `json:"description" validate:"max=140"`
}

type TransferRequest struct {
	RecipientAccountNumber string `json:"recipientAccountNumber" validate:"required,numeric,min=8,max=20"`
	Amount                 string `json:"amount" validate:"required,numeric"`
	Description            string `json:"description" validate:"max=140"`
}

type ListTransactionsResponse struct {
	Transactions []models.TransactionView `json:"transactions"`
}

func NewTransactionHandler(commands TransactionCommander, queries TransactionQuerier) *TransactionHandler {
	return &TransactionHandler{commands: commands, queries: queries}
}

func (h *TransactionHandler) Deposit(c *gin.Context) {
	req, amount, ok := bindMoney(c)
	if !ok {
		return
	}
	customerID, _ := middleware.GetCustomerID(c)
	accountID := c.Param("accountId")

	txn, err := h.commands.Deposit(c.Request.Context(), cqrs.DepositCommand{
		AccountID:            accountID,
		RequestingCustomerID: customerID,
		Amount:               amount,
		Description:          req.Description,
	})
	if err != nil {
		respondWithLedgerError(c, err, "Failed to deposit")
		return
	}
	c.JSON(http.StatusCreated, models.TransactionToView(txn, accountID))
}

func (h *TransactionHandler) Withdraw(c *gin.Context) {
	req, amount, ok := bindMoney(c)
	if !ok {
		return
	}
	customerID, _ := middleware.GetCustomerID(c)
	accountID := c.Param("accountId")

	txn, err := h.commands.Withdraw(c.Request.Context(), cqrs.WithdrawCommand{
		AccountID:            accountID,
		RequestingCustomerID: customerID,
		Amount:               amount,
		Description:          req.Description,
	})
	if err != nil {
		respondWithLedgerError(c, err, "Failed to withdraw")
		return
	}
	c.JSON(http.StatusCreated, models.TransactionToView(txn, accountID))
}

func (h *TransactionHandler) Transfer(c *gin.Context) {
	var req TransferRequest
	if !middleware.BindJSON(c, &req) {
		return
	}
	amount, ok := parseAmount(c, req.Amount)
	if !ok {
		return
	}
	customerID, _ := middleware.GetCustomerID(c)
	accountID := c.Param("accountId")

	txn, err := h.commands.Transfer(c.Request.Context(), cqrs.TransferCommand{
		AccountID:              accountID,
		RequestingCustomerID:   customerID,
		RecipientAccountNumber: req.RecipientAccountNumber,
		Amount:                 amount,
		Description:            req.Description,
	})
	if err != nil {
		respondWithLedgerError(c, err, "Failed to transfer")
		return
	}
	c.JSON(http.StatusCreated, models.TransactionToView(txn, accountID))
}

func (h *TransactionHandler) ListTransactions(c *gin.Context) {
	customerID, _ := middleware.GetCustomerID(c)

	views, err := h.queries.ListTransactions(c.Request.Context(), cqrs.ListTransactionsQuery{
		AccountID:            c.Param("accountId"),
		RequestingCustomerID: customerID,
	})
	if err != nil {
		respondWithLedgerError(c, err, "Failed to list transactions")
		return
	}
	c.JSON(http.StatusOK, ListTransactionsResponse{Transactions: views})
}

func (h *TransactionHandler) GetTransaction(c *gin.Context) {
	customerID, _ := middleware.GetCustomerID(c)

	view, err := h.queries.GetTransaction(c.Request.Context(), cqrs.GetTransactionQuery{
		TransactionID:        c.Param("transactionId"),
		AccountID:            c.Param("accountId"),
		RequestingCustomerID: customerID,
	})
	if err != nil {
		respondWithLedgerError(c, err, "Failed to get transaction")
		return
	}
	c.JSON(http.StatusOK, view)
}

func bindMoney(c *gin.Context) (MoneyRequest, decimal.Decimal, bool) {
	var req MoneyRequest
	if !middleware.BindJSON(c, &req) {
		return req, decimal.Zero, false
	}
	amount, ok := parseAmount(c, req.Amount)
	return req, amount, ok
}

func parseAmount(c *gin.Context, raw string) (decimal.Decimal, bool) {
	amount, err := decimal.NewFromString(raw)
	if err != nil {
		respondWithLedgerError(c, models.ErrInvalidAmount, "Invalid amount")
		return decimal.Zero, false
	}
	return amount, true
}
