package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/eaglebank/ledger-service/shared/cqrs"
	"github.com/eaglebank/ledger-service/shared/middleware"
	"github.com/eaglebank/ledger-service/shared/models"
)

type LoanCommander interface {
	ApplyLoan(context.Context, cqrs.ApplyLoanCommand) (*models.Loan, error)
	ApproveLoan(context.Context, cqrs.ApproveLoanCommand) (*models.Loan, error)
}

type LoanQuerier interface {
	GetLoan(context.Context, cqrs.GetLoanQuery) (*models.LoanView, error)
	ListLoans(context.Context, cqrs.ListLoansQuery) ([]models.LoanView, error)
}

type LoanHandler struct {
	commands LoanCommander
	queries  LoanQuerier
}

type ApplyLoanRequest struct {
	LoanType       string `json:"loanType" validate:"required,oneof=personal home car"`
	Amount         string `json:"amount" validate:"required,numeric"`
	DurationMonths int    `json:"durationMonths" validate:"required,min=1,max=480"`
}

type ListLoansResponse struct {
	Loans []models.LoanView `json:"loans"`
}

func NewLoanHandler(commands LoanCommander, queries LoanQuerier) *LoanHandler {
	return &LoanHandler{commands: commands, queries: queries}
}

func (h *LoanHandler) ApplyLoan(c *gin.Context) {
	customerID, _ := middleware.GetCustomerID(c)

	var req ApplyLoanRequest
	if !middleware.BindJSON(c, &req) {
		return
	}
	amount, ok := parseAmount(c, req.Amount)
	if !ok {
		return
	}

	loan, err := h.commands.ApplyLoan(c.Request.Context(), cqrs.ApplyLoanCommand{
		CustomerID:     customerID,
		LoanType:       req.LoanType,
		Amount:         amount,
		DurationMonths: req.DurationMonths,
	})
	if err != nil {
		respondWithLedgerError(c, err, "Failed to apply for loan")
		return
	}
	c.JSON(http.StatusCreated, models.LoanToView(loan))
}

func (h *LoanHandler) ListLoans(c *gin.Context) {
	customerID, _ := middleware.GetCustomerID(c)

	views, err := h.queries.ListLoans(c.Request.Context(), cqrs.ListLoansQuery{CustomerID: customerID})
	if err != nil {
		respondWithLedgerError(c, err, "Failed to list loans")
		return
	}
	c.JSON(http.StatusOK, ListLoansResponse{Loans: views})
}

func (h *LoanHandler) GetLoan(c *gin.Context) {
	customerID, _ := middleware.GetCustomerID(c)

	view, err := h.queries.GetLoan(c.Request.Context(), cqrs.GetLoanQuery{
		LoanID:               c.Param("loanId"),
		RequestingCustomerID: customerID,
	})
	if err != nil {
		respondWithLedgerError(c, err, "Failed to get loan")
		return
	}
	c.JSON(http.StatusOK, view)
}

// ApproveLoan is mounted behind middleware.AdminOnly.
func (h *LoanHandler) ApproveLoan(c *gin.Context) {
	loan, err := h.commands.ApproveLoan(c.Request.Context(), cqrs.ApproveLoanCommand{LoanID: c.Param("loanId")})
	if err != nil {
		respondWithLedgerError(c, err, "Failed to approve loan")
		return
	}
	c.JSON(http.StatusOK, models.LoanToView(loan))
}
