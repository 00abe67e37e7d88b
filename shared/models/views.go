package models

import (
	"strconv"
	"time"

	"github.com/shopspring/decimal"
)

const moneyScale = 2

// MaxAmount is the largest amount or balance the ledger holds. It is the
// range of the NUMERIC(15,2) money columns.
var MaxAmount = decimal.RequireFromString("9999999999999.99")

// Money renders an amount with exactly two decimal places.
func Money(d decimal.Decimal) string {
	return d.StringFixed(moneyScale)
}

// AccountView is the API projection of an account.
// CustomerID is populated for ownership checks but never serialised.
type AccountView struct {
	ID            string    `json:"id"`
	AccountNumber string    `json:"accountNumber"`
	CustomerID    string    `json:"-"`
	AccountType   string    `json:"accountType"`
	Balance       string    `json:"balance"`
	Active        bool      `json:"active"`
	CreatedAt     time.Time `json:"createdTimestamp"`
	UpdatedAt     time.Time `json:"updatedTimestamp"`
}

// Transaction directions relative to the account a history is read for.
const (
	DirectionIn  = "in"
	DirectionOut = "out"
)

// TransactionView is the read projection of a transaction. Direction is only
// set when the view is rendered for a specific account.
type TransactionView struct {
	ID                 string    `json:"id"`
	AccountID          string    `json:"accountId"`
	Type               string    `json:"type"`
	Amount             string    `json:"amount"`
	Description        string    `json:"description,omitempty"`
	RecipientAccountID string    `json:"recipientAccountId,omitempty"`
	Direction          string    `json:"direction,omitempty"`
	CreatedAt          time.Time `json:"createdTimestamp"`
}

type LoanView struct {
	ID             string     `json:"id"`
	CustomerID     string     `json:"-"`
	LoanType       string     `json:"loanType"`
	Amount         string     `json:"amount"`
	InterestRate   string     `json:"interestRate"`
	DurationMonths int        `json:"durationMonths"`
	Approved       bool       `json:"approved"`
	ApprovedAt     *time.Time `json:"approvedTimestamp,omitempty"`
	CreatedAt      time.Time  `json:"createdTimestamp"`
}

type CustomerView struct {
	ID          string    `json:"id"`
	PhoneNumber string    `json:"phoneNumber"`
	Address     string    `json:"address"`
	DateOfBirth string    `json:"dateOfBirth"`
	CreatedAt   time.Time `json:"createdTimestamp"`
	UpdatedAt   time.Time `json:"updatedTimestamp"`
}

// DashboardView is the landing summary of a customer.
type DashboardView struct {
	CustomerID         string            `json:"customerId"`
	Accounts           []AccountView     `json:"accounts"`
	TotalBalance       string            `json:"totalBalance"`
	RecentTransactions []TransactionView `json:"recentTransactions"`
}

// ReconciliationView compares an account balance with the sum of its history.
type ReconciliationView struct {
	AccountID        string `json:"accountId"`
	Balance          string `json:"balance"`
	LedgerBalance    string `json:"ledgerBalance"`
	TransactionCount int    `json:"transactionCount"`
	Balanced         bool   `json:"balanced"`
}

func AccountToView(a *Account) *AccountView {
	return &AccountView{
		ID:            a.ID,
		AccountNumber: a.AccountNumber,
		CustomerID:    a.CustomerID,
		AccountType:   string(a.Kind),
		Balance:       Money(a.Balance),
		Active:        a.Active,
		CreatedAt:     a.CreatedAt,
		UpdatedAt:     a.UpdatedAt,
	}
}

// TransactionToView renders t; pass the account the history belongs to, or
// an empty string for a neutral view.
func TransactionToView(t *Transaction, accountID string) *TransactionView {
	view := &TransactionView{
		ID:                 strconv.FormatInt(t.ID, 10),
		AccountID:          t.AccountID,
		Type:               string(t.Kind),
		Amount:             Money(t.Amount),
		Description:        t.Description,
		RecipientAccountID: t.RecipientAccountID,
		CreatedAt:          t.CreatedAt,
	}
	if accountID != "" {
		if t.EffectOn(accountID).IsPositive() {
			view.Direction = DirectionIn
		} else {
			view.Direction = DirectionOut
		}
	}
	return view
}

func LoanToView(l *Loan) *LoanView {
	return &LoanView{
		ID:             l.ID,
		CustomerID:     l.CustomerID,
		LoanType:       string(l.Kind),
		Amount:         Money(l.Amount),
		InterestRate:   Money(l.InterestRate),
		DurationMonths: l.DurationMonths,
		Approved:       l.Approved,
		ApprovedAt:     l.ApprovedAt,
		CreatedAt:      l.CreatedAt,
	}
}

func CustomerToView(c *Customer) *CustomerView {
	return &CustomerView{
		ID:          c.ID,
		PhoneNumber: c.PhoneNumber,
		Address:     c.Address,
		DateOfBirth: c.DateOfBirth,
		CreatedAt:   c.CreatedAt,
		UpdatedAt:   c.UpdatedAt,
	}
}
