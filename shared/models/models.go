package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type AccountKind string

const (
	AccountSavings  AccountKind = "savings"
	AccountChecking AccountKind = "checking"
	AccountBusiness AccountKind = "business"
)

func (k AccountKind) Valid() bool {
	switch k {
	case AccountSavings, AccountChecking, AccountBusiness:
		return true
	}
	return false
}

type TransactionKind string

const (
	TransactionDeposit    TransactionKind = "deposit"
	TransactionWithdrawal TransactionKind = "withdrawal"
	TransactionTransfer   TransactionKind = "transfer"
)

type LoanKind string

const (
	LoanPersonal LoanKind = "personal"
	LoanHome     LoanKind = "home"
	LoanCar      LoanKind = "car"
)

func (k LoanKind) Valid() bool {
	switch k {
	case LoanPersonal, LoanHome, LoanCar:
		return true
	}
	return false
}

type Customer struct {
	ID          string    `json:"id"`
	PhoneNumber string    `json:"phoneNumber"`
	Address     string    `json:"address"`
	DateOfBirth string    `json:"dateOfBirth"`
	CreatedAt   time.Time `json:"createdTimestamp"`
	UpdatedAt   time.Time `json:"updatedTimestamp"`
}

type Account struct {
	ID            string          `json:"id"`
	AccountNumber string          `json:"accountNumber"`
	CustomerID    string          `json:"-"`
	Kind          AccountKind     `json:"accountType"`
	Balance       decimal.Decimal `json:"balance"`
	Active        bool            `json:"active"`
	CreatedAt     time.Time       `json:"createdTimestamp"`
	UpdatedAt     time.Time       `json:"updatedTimestamp"`
}

// Transaction is an immutable ledger record. A transfer is stored once, on
// the source account, with RecipientAccountID naming the credited account.
type Transaction struct {
	ID                 int64           `json:"id,string"`
	AccountID          string          `json:"accountId"`
	Kind               TransactionKind `json:"type"`
	Amount             decimal.Decimal `json:"amount"`
	Description        string          `json:"description,omitempty"`
	RecipientAccountID string          `json:"recipientAccountId,omitempty"`
	CreatedAt          time.Time       `json:"createdTimestamp"`
}

// EffectOn returns the signed balance change this record causes on accountID.
func (t *Transaction) EffectOn(accountID string) decimal.Decimal {
	switch {
	case t.Kind == TransactionDeposit && t.AccountID == accountID:
		return t.Amount
	case t.Kind == TransactionWithdrawal && t.AccountID == accountID:
		return t.Amount.Neg()
	case t.Kind == TransactionTransfer && t.AccountID == accountID:
		return t.Amount.Neg()
	case t.Kind == TransactionTransfer && t.RecipientAccountID == accountID:
		return t.Amount
	}
	return decimal.Zero
}

type Loan struct {
	ID             string          `json:"id"`
	CustomerID     string          `json:"-"`
	Kind           LoanKind        `json:"loanType"`
	Amount         decimal.Decimal `json:"amount"`
	InterestRate   decimal.Decimal `json:"interestRate"`
	DurationMonths int             `json:"durationMonths"`
	Approved       bool            `json:"approved"`
	ApprovedAt     *time.Time      `json:"approvedTimestamp,omitempty"`
	CreatedAt      time.Time       `json:"createdTimestamp"`
}
