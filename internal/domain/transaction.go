package domain

import "time"

type TransactionType string

const (
	TransactionIncome  TransactionType = "income"
	TransactionExpense TransactionType = "expense"
)

// Transaction is one append-only ledger entry. Expenses carry positive
// amounts tagged expense, never negative incomes. Corrections are new
// offsetting entries; nothing is ever mutated or deleted.
type Transaction struct {
	ID          string
	Type        TransactionType
	Amount      float64
	Source      string
	Description string
	Date        time.Time
	BookingID   string
	OrderID     string
	CreatedBy   string
	CreatedAt   time.Time
}
