package handler

import (
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/eaglebank/ledger-service/shared/middleware"
	"github.com/eaglebank/ledger-service/shared/models"
)

type errorMapping struct {
	err     error
	status  int
	code    string
	message string
}

var ledgerErrors = []errorMapping{
	{models.ErrInvalidAmount, http.StatusBadRequest, "INVALID_AMOUNT", "Amount must be positive with at most two decimal places"},
	{models.ErrInvalidAccountKind, http.StatusBadRequest, "INVALID_ACCOUNT_TYPE", "Unknown account type"},
	{models.ErrInvalidLoan, http.StatusBadRequest, "INVALID_LOAN", "Invalid loan application"},
	{models.ErrForbidden, http.StatusForbidden, "FORBIDDEN", "You can only access your own resources"},
	{models.ErrAccountNotFound, http.StatusNotFound, "ACCOUNT_NOT_FOUND", "Account not found"},
	{models.ErrCustomerNotFound, http.StatusNotFound, "CUSTOMER_NOT_FOUND", "Customer profile not found"},
	{models.ErrTransactionNotFound, http.StatusNotFound, "TRANSACTION_NOT_FOUND", "Transaction not found"},
	{models.ErrLoanNotFound, http.StatusNotFound, "LOAN_NOT_FOUND", "Loan not found"},
	{models.ErrAccountInactive, http.StatusConflict, "ACCOUNT_INACTIVE", "Account is inactive"},
	{models.ErrInsufficientFunds, http.StatusUnprocessableEntity, "INSUFFICIENT_FUNDS", "Insufficient funds"},
	{models.ErrSameAccount, http.StatusUnprocessableEntity, "SAME_ACCOUNT", "Cannot transfer to the same account"},
	{models.ErrRecipientNotFound, http.StatusUnprocessableEntity, "RECIPIENT_NOT_FOUND", "Recipient account not found"},
	{models.ErrBalanceLimit, http.StatusUnprocessableEntity, "BALANCE_LIMIT_EXCEEDED", "The resulting balance exceeds the account limit"},
	{models.ErrDuplicateAccountNumber, http.StatusServiceUnavailable, "ACCOUNT_NUMBER_EXHAUSTED", "Could not allocate an account number, try again"},
	{models.ErrStoreUnavailable, http.StatusServiceUnavailable, "STORE_UNAVAILABLE", "Service temporarily unavailable"},
}

// respondWithLedgerError writes the response for err. Unknown errors are
// logged and reported with fallback as a 500.
func respondWithLedgerError(c *gin.Context, err error, fallback string) {
	for _, m := range ledgerErrors {
		if errors.Is(err, m.err) {
			if m.status >= http.StatusInternalServerError {
				log.Printf("%s %s: %v", c.Request.Method, c.Request.URL.Path, err)
			}
			middleware.RespondWithErrorCode(c, m.status, m.code, m.message)
			return
		}
	}
	log.Printf("%s %s: %v", c.Request.Method, c.Request.URL.Path, err)
	middleware.RespondWithErrorCode(c, http.StatusInternalServerError, "INTERNAL", fallback)
}
