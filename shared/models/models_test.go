package models

import (
	"testing"

	"github.com/shopspring/decimal"
)

func TestEffectOn(t *testing.T) {
	amount := decimal.RequireFromString("12.50")
	tests := []struct {
		name    string
		txn     Transaction
		account string
		want    string
	}{
		{"deposit", Transaction{Kind: TransactionDeposit, AccountID: "a", Amount: amount}, "a", "12.5"},
		{"withdrawal", Transaction{Kind: TransactionWithdrawal, AccountID: "a", Amount: amount}, "a", "-12.5"},
		{"transfer source", Transaction{Kind: TransactionTransfer, AccountID: "a", RecipientAccountID: "b", Amount: amount}, "a", "-12.5"},
		{"transfer recipient", Transaction{Kind: TransactionTransfer, AccountID: "a", RecipientAccountID: "b", Amount: amount}, "b", "12.5"},
		{"unrelated account", Transaction{Kind: TransactionDeposit, AccountID: "a", Amount: amount}, "c", "0"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.txn.EffectOn(tt.account); !got.Equal(decimal.RequireFromString(tt.want)) {
				t.Errorf("EffectOn(%s) = %s, want %s", tt.account, got, tt.want)
			}
		})
	}
}

func TestTransactionToView(t *testing.T) {
	txn := &Transaction{ID: 42, Kind: TransactionTransfer, AccountID: "a", RecipientAccountID: "b", Amount: decimal.NewFromInt(5)}

	if v := TransactionToView(txn, "a"); v.Direction != DirectionOut || v.Amount != "5.00" || v.ID != "42" {
		t.Errorf("source view = %+v", v)
	}
	if v := TransactionToView(txn, "b"); v.Direction != DirectionIn {
		t.Errorf("recipient direction = %q, want in", v.Direction)
	}
	if v := TransactionToView(txn, ""); v.Direction != "" {
		t.Errorf("neutral view has direction %q", v.Direction)
	}
}

func TestKindValidity(t *testing.T) {
	if !AccountChecking.Valid() || AccountKind("crypto").Valid() {
		t.Error("account kind validity is wrong")
	}
	if !LoanHome.Valid() || LoanKind("boat").Valid() {
		t.Error("loan kind validity is wrong")
	}
}
