// Package ledger persists canonical transaction and balance rows as CSV
// files and implements the idempotent merge used by every pipeline.
package ledger

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/fintk-dev/fintk/internal/model"
)

// TxHeader is the CSV header of monthly transaction ledgers.
const TxHeader = "Date,Label,Amount,Currency,Type,MainCategory,SubCategory"

// BalanceHeader is the CSV header of balance histories.
const BalanceHeader = "Date,Amount,Currency"

const (
	txNumFields      = 7
	balanceNumFields = 3

	colDate     = 0
	colLabel    = 1
	colAmount   = 2
	colCurrency = 3
	colType     = 4
	colMainCat  = 5
	colSubCat   = 6
)

// parseDate accepts both the canonical calendar date and the legacy
// datetime form some historical ledgers carry; time-of-day is dropped.
func parseDate(s string) (time.Time, error) {
	if d, err := time.Parse(model.DateFormat, s); err == nil {
		return d, nil
	}
	d, err := time.Parse(model.DateFormat+" 15:04:05", s)
	if err != nil {
		return time.Time{}, fmt.Errorf("parsing date %q: %w", s, err)
	}
	return d.Truncate(24 * time.Hour), nil
}

// ReadTransactions reads all transaction rows from a ledger reader. Legacy
// ledgers written before currencies were tracked lack the Currency column;
// their rows are backfilled with the given account currency.
func ReadTransactions(r io.Reader, accountCurrency string) ([]model.Transaction, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1

	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("reading ledger CSV: %w", err)
	}
	if len(records) == 0 {
		return nil, nil
	}

	hasCurrency := len(records[0]) == txNumFields

	var txs []model.Transaction
	for i, rec := range records[1:] {
		tx, err := unmarshalTransaction(rec, hasCurrency, accountCurrency)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i+2, err)
		}
		txs = append(txs, tx)
	}
	return txs, nil
}

// WriteTransactions writes transaction rows to a ledger writer, including
// the header. Amounts are written with 2 decimals.
func WriteTransactions(w io.Writer, txs []model.Transaction) error {
	cw := csv.NewWriter(w)
	defer cw.Flush()

	if err := cw.Write(strings.Split(TxHeader, ",")); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}
	for i, tx := range txs {
		if err := cw.Write(marshalTransaction(tx)); err != nil {
			return fmt.Errorf("writing row %d: %w", i+2, err)
		}
	}
	return cw.Error()
}

func marshalTransaction(tx model.Transaction) []string {
	row := make([]string, txNumFields)
	row[colDate] = tx.Date.Format(model.DateFormat)
	row[colLabel] = tx.Label
	row[colAmount] = tx.Amount.StringFixed(2)
	row[colCurrency] = tx.Currency
	row[colType] = string(tx.Type)
	row[colMainCat] = tx.MainCategory
	row[colSubCat] = tx.SubCategory
	return row
}

func unmarshalTransaction(record []string, hasCurrency bool, accountCurrency string) (model.Transaction, error) {
	want := txNumFields
	if !hasCurrency {
		want--
	}
	if len(record) != want {
		return model.Transaction{}, fmt.Errorf("expected %d fields, got %d", want, len(record))
	}

	date, err := parseDate(record[colDate])
	if err != nil {
		return model.Transaction{}, err
	}
	amount, err := decimal.NewFromString(record[colAmount])
	if err != nil {
		return model.Transaction{}, fmt.Errorf("parsing amount %q: %w", record[colAmount], err)
	}

	tx := model.Transaction{
		Date:     date,
		Label:    record[colLabel],
		Amount:   amount,
		Currency: accountCurrency,
	}
	rest := record[colAmount+1:]
	if hasCurrency {
		tx.Currency = rest[0]
		rest = rest[1:]
	}
	tx.Type = model.TxType(rest[0])
	tx.MainCategory = rest[1]
	tx.SubCategory = rest[2]
	return tx, nil
}

// ReadBalances reads all balance rows from a balance-history reader.
func ReadBalances(r io.Reader) ([]model.Balance, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = balanceNumFields

	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("reading balance CSV: %w", err)
	}
	if len(records) == 0 {
		return nil, nil
	}

	var balances []model.Balance
	for i, rec := range records[1:] {
		date, err := parseDate(rec[0])
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i+2, err)
		}
		amount, err := decimal.NewFromString(rec[1])
		if err != nil {
			return nil, fmt.Errorf("row %d: parsing amount %q: %w", i+2, rec[1], err)
		}
		balances = append(balances, model.Balance{Date: date, Amount: amount, Currency: rec[2]})
	}
	return balances, nil
}

// WriteBalances writes balance rows to a balance-history writer, including
// the header. Amounts are written with 2 decimals.
func WriteBalances(w io.Writer, balances []model.Balance) error {
	cw := csv.NewWriter(w)
	defer cw.Flush()

	if err := cw.Write(strings.Split(BalanceHeader, ",")); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}
	for i, b := range balances {
		row := []string{b.Date.Format(model.DateFormat), b.Amount.StringFixed(2), b.Currency}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("writing row %d: %w", i+2, err)
		}
	}
	return cw.Error()
}
