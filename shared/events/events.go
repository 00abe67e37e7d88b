package events

import "time"

// Event types
const (
	UserCreated = "user.created"

	AccountCreated     = "account.created"
	AccountDeactivated = "account.deactivated"

	TransactionCreated = "transaction.created"
	BalanceUpdated     = "balance.updated"

	LoanApplied  = "loan.applied"
	LoanApproved = "loan.approved"
)

// Stream names
const (
	UserEventsStream   = "user.events"
	LedgerEventsStream = "ledger.events"
)

// Event is the envelope written to every stream. Source names the
// publishing service and is empty for producers that predate it.
type Event struct {
	Type      string    `json:"type"`
	Source    string    `json:"source,omitempty"`
	Timestamp time.Time `json:"timestamp"`
	Data      any       `json:"data"`
}

// User events, published by the user service.
type UserCreatedEvent struct {
	UserID string `json:"userId"`
	Email  string `json:"email"`
	Name   string `json:"name"`
}

// Account events
type AccountCreatedEvent struct {
	AccountID     string `json:"accountId"`
	AccountNumber string `json:"accountNumber"`
	CustomerID    string `json:"customerId"`
	AccountType   string `json:"accountType"`
}

type AccountDeactivatedEvent struct {
	AccountID     string `json:"accountId"`
	AccountNumber string `json:"accountNumber"`
	CustomerID    string `json:"customerId"`
}

// Transaction events. Amounts are decimal strings with two places.
type TransactionCreatedEvent struct {
	TransactionID      string `json:"transactionId"`
	AccountID          string `json:"accountId"`
	RecipientAccountID string `json:"recipientAccountId,omitempty"`
	Amount             string `json:"amount"`
	Type               string `json:"type"`
}

type BalanceUpdatedEvent struct {
	AccountID  string `json:"accountId"`
	NewBalance string `json:"newBalance"`
	Change     string `json:"change"`
}

// Loan events
type LoanAppliedEvent struct {
	LoanID     string `json:"loanId"`
	CustomerID string `json:"customerId"`
	LoanType   string `json:"loanType"`
	Amount     string `json:"amount"`
}

type LoanApprovedEvent struct {
	LoanID     string    `json:"loanId"`
	CustomerID string    `json:"customerId"`
	ApprovedAt time.Time `json:"approvedAt"`
}
