package cqrs

// ---------- Customer queries ----------

type GetCustomerQuery struct {
	CustomerID string
}

// DashboardQuery builds the landing summary for a customer.
type DashboardQuery struct {
	CustomerID string
}

// ---------- Account queries ----------

// GetAccountQuery fetches a single account, subject to ownership check.
type GetAccountQuery struct {
	AccountID            string
	RequestingCustomerID string
}

// ListAccountsQuery fetches all accounts belonging to a customer.
type ListAccountsQuery struct {
	CustomerID string
}

type GetBalanceQuery struct {
	AccountID            string
	RequestingCustomerID string
}

type TotalBalanceQuery struct {
	CustomerID string
}

type ReconcileAccountQuery struct {
	AccountID            string
	RequestingCustomerID string
}

// ---------- Transaction queries ----------

// GetTransactionQuery fetches a single transaction seen from AccountID.
type GetTransactionQuery struct {
	TransactionID        string
	AccountID            string
	RequestingCustomerID string
}

// ListTransactionsQuery fetches the history of an account, newest first.
type ListTransactionsQuery struct {
	AccountID            string
	RequestingCustomerID string
}

// ---------- Loan queries ----------

type GetLoanQuery struct {
	LoanID               string
	RequestingCustomerID string
}

type ListLoansQuery struct {
	CustomerID string
}
