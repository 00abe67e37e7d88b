package models

import "errors"

var (
	ErrInvalidAmount          = errors.New("invalid amount")
	ErrAccountNotFound        = errors.New("account not found")
	ErrAccountInactive        = errors.New("account inactive")
	ErrInsufficientFunds      = errors.New("insufficient funds")
	ErrRecipientNotFound      = errors.New("recipient not found")
	ErrSameAccount            = errors.New("cannot transfer to the same account")
	ErrDuplicateAccountNumber = errors.New("duplicate account number")
	ErrStoreUnavailable       = errors.New("store unavailable")
	ErrBalanceLimit           = errors.New("balance limit exceeded")

	ErrForbidden           = errors.New("forbidden")
	ErrInvalidAccountKind  = errors.New("invalid account type")
	ErrCustomerNotFound    = errors.New("customer not found")
	ErrTransactionNotFound = errors.New("transaction not found")
	ErrLoanNotFound        = errors.New("loan not found")
	ErrInvalidLoan         = errors.New("invalid loan application")
)
