package cqrs

import "github.com/shopspring/decimal"

// Commands carrying a RequestingCustomerID are checked for ownership of the
// target resource. Internal callers leave it empty.

type EnsureCustomerProfileCommand struct {
	CustomerID string
}

type UpdateCustomerProfileCommand struct {
	CustomerID  string
	PhoneNumber string
	Address     string
	DateOfBirth string
}

type CreateAccountCommand struct {
	CustomerID  string
	AccountType string
}

type DeactivateAccountCommand struct {
	AccountID            string
	RequestingCustomerID string
}

type DepositCommand struct {
	AccountID            string
	RequestingCustomerID string
	Amount               decimal.Decimal
	Description          string
}

type WithdrawCommand struct {
	AccountID            string
	RequestingCustomerID string
	Amount               decimal.Decimal
	Description          string
}

type TransferCommand struct {
	AccountID              string
	RequestingCustomerID   string
	RecipientAccountNumber string
	Amount                 decimal.Decimal
	Description            string
}

type ApplyLoanCommand struct {
	CustomerID     string
	LoanType       string
	Amount         decimal.Decimal
	DurationMonths int
}

type ApproveLoanCommand struct {
	LoanID string
}
