package pipeline

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"

	"github.com/shopspring/decimal"

	"github.com/fintk-dev/fintk/internal/model"
)

const boursoramaFormat = "Boursorama: ISO-8859-1, ';'-separated, ',' decimals, " +
	"columns dateOp/dateVal/label/category/categoryParent/amount/accountNum/accountLabel/accountBalance"

// decodeBoursoramaRaw reads a Boursorama export. One file bundles several
// sub-accounts; rows are filtered to the matching one via the account-number
// suffix. The export date lives only in the filename, and the balance it
// carries is the one of the previous day.
func decodeBoursoramaRaw(account model.Account, path string) ([]model.Balance, []model.Transaction, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, &DataError{Path: path, Format: boursoramaFormat, Err: err}
	}
	defer f.Close()

	cr := csv.NewReader(latin1(f))
	cr.Comma = ';'
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	records, err := cr.ReadAll()
	if err != nil {
		return nil, nil, &DataError{Path: path, Format: boursoramaFormat, Err: err}
	}
	if len(records) == 0 {
		return nil, nil, nil
	}

	idx := headerIndex(records[0])
	for _, col := range []string{"dateop", "label", "amount", "accountnum", "accountbalance"} {
		if _, ok := idx[col]; !ok {
			err := fmt.Errorf("missing column %q in header %v", col, records[0])
			return nil, nil, &DataError{Path: path, Format: boursoramaFormat, Err: err}
		}
	}
	lastCol := max(idx["dateop"], idx["label"], idx["amount"], idx["accountnum"], idx["accountbalance"])

	var txs []model.Transaction
	// One balance snapshot per sub-account: the highest balance seen in
	// the file, dated the day before the export.
	maxBalance := make(map[string]decimal.Decimal)
	for i, rec := range records[1:] {
		if len(rec) <= lastCol {
			err := fmt.Errorf("row %d has %d fields, expected at least %d", i+2, len(rec), lastCol+1)
			return nil, nil, &DataError{Path: path, Format: boursoramaFormat, Err: err}
		}
		num := rec[idx["accountnum"]]
		if !account.IsAccount(num) {
			continue
		}

		date, err := parseFlexibleDate(rec[idx["dateop"]])
		if err != nil {
			return nil, nil, &DataError{Path: path, Format: boursoramaFormat, Err: fmt.Errorf("row %d: %w", i+2, err)}
		}
		amount, err := parseFrenchAmount(rec[idx["amount"]])
		if err != nil {
			return nil, nil, &DataError{Path: path, Format: boursoramaFormat, Err: fmt.Errorf("row %d: %w", i+2, err)}
		}
		txs = append(txs, model.Transaction{
			Date:     date,
			Label:    rec[idx["label"]],
			Amount:   amount,
			Currency: account.Currency,
		})

		balance, err := parseFrenchAmount(rec[idx["accountbalance"]])
		if err != nil {
			return nil, nil, &DataError{Path: path, Format: boursoramaFormat, Err: fmt.Errorf("row %d: %w", i+2, err)}
		}
		if seen, ok := maxBalance[num]; !ok || balance.GreaterThan(seen) {
			maxBalance[num] = balance
		}
	}

	var balances []model.Balance
	if len(maxBalance) > 0 {
		opsDate, err := account.OperationsDate(filepath.Base(path))
		if err != nil {
			return nil, nil, &DataError{Path: path, Format: boursoramaFormat, Err: err}
		}
		for _, amount := range maxBalance {
			balances = append(balances, model.Balance{
				Date:     opsDate.AddDate(0, 0, -1),
				Amount:   amount,
				Currency: account.Currency,
			})
		}
	}
	return balances, txs, nil
}

func decodeBoursoramaTransactions(account model.Account, path string) ([]model.Transaction, error) {
	_, txs, err := decodeBoursoramaRaw(account, path)
	return txs, err
}

func decodeBoursoramaBalances(account model.Account, path string) ([]model.Balance, error) {
	balances, _, err := decodeBoursoramaRaw(account, path)
	return balances, err
}

func boursoramaDefaultType(account model.Account, tx *model.Transaction) {
	switch account.Type {
	case "LVR":
		tx.Type = model.TxTransfer
	case "CHQ":
		tx.Type = model.TxExpense
	}
}
