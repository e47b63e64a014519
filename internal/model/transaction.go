package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// DateFormat is the calendar-date layout used in every persisted CSV file.
const DateFormat = "2006-01-02"

// MonthFormat is the layout of monthly ledger directory and file prefixes.
const MonthFormat = "2006-01"

// TxType classifies a transaction.
type TxType string

const (
	// TxCredit is a trust provided by the bank which requires reimbursement
	// of the full amount plus interests, e.g. a home mortgage loan.
	TxCredit TxType = "credit"
	// TxIncome is a compensation obtained via work or investment.
	TxIncome TxType = "income"
	// TxExpense is a purchase, decreasing the asset of the portfolio.
	TxExpense TxType = "expense"
	// TxTransfer moves money between two accounts of the portfolio; the
	// total asset remains the same.
	TxTransfer TxType = "transfer"
	// TxTax pays tax. Not an expense because paying tax is an obligation,
	// and not a negative income because it may not relate to income at all
	// (property tax, residence tax).
	TxTax TxType = "tax"
	// TxUnknown marks a transaction that has not been classified yet.
	TxUnknown TxType = ""
)

// ValidTxType reports whether t is one of the known transaction types.
func ValidTxType(t TxType) bool {
	switch t {
	case TxCredit, TxIncome, TxExpense, TxTransfer, TxTax:
		return true
	}
	return false
}

// Transaction is a canonical transaction row, shared by every institution
// decoder and by the monthly ledger files.
type Transaction struct {
	Date         time.Time
	Label        string
	Amount       decimal.Decimal // negative = debit
	Currency     string
	Type         TxType
	MainCategory string
	SubCategory  string
}

// Month returns the YYYY-MM partition key of the transaction.
func (t Transaction) Month() string {
	return t.Date.Format(MonthFormat)
}

// Category returns the "main/sub" category pair.
func (t Transaction) Category() string {
	return t.MainCategory + "/" + t.SubCategory
}

// Balance is a dated balance snapshot of one account.
type Balance struct {
	Date     time.Time
	Amount   decimal.Decimal
	Currency string
}
