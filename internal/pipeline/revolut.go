package pipeline

import (
	"encoding/csv"
	"fmt"
	"os"

	"github.com/shopspring/decimal"

	"github.com/fintk-dev/fintk/internal/model"
)

const revolutFormat = "Revolut: UTF-8, ','-separated, " +
	"columns Type/Product/Started Date/Completed Date/Description/Amount/Fee/Currency/State/Balance"

// revolutTypeMapping translates Revolut's raw transaction types. A top-up
// makes up the full amount of the account, so it is treated as an income;
// this is an opinionated choice.
var revolutTypeMapping = map[string]model.TxType{
	"TOPUP":        model.TxIncome,
	"TRANSFER":     model.TxTransfer,
	"FEE":          model.TxExpense,
	"CARD_PAYMENT": model.TxExpense,
	"EXCHANGE":     model.TxExpense,
}

// decodeRevolutRaw reads a Revolut account statement. One statement bundles
// every currency pocket; rows are filtered to the account currency, and
// pending rows are skipped (their balance cell is empty and their amount
// may still change). Balance snapshots come from the non-empty Balance
// cells.
func decodeRevolutRaw(account model.Account, path string) ([]model.Balance, []model.Transaction, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, &DataError{Path: path, Format: revolutFormat, Err: err}
	}
	defer f.Close()

	cr := csv.NewReader(f)
	cr.FieldsPerRecord = -1

	records, err := cr.ReadAll()
	if err != nil {
		return nil, nil, &DataError{Path: path, Format: revolutFormat, Err: err}
	}
	if len(records) == 0 {
		return nil, nil, nil
	}

	idx := headerIndex(records[0])
	for _, col := range []string{"completed date", "description", "amount"} {
		if _, ok := idx[col]; !ok {
			err := fmt.Errorf("missing column %q in header %v", col, records[0])
			return nil, nil, &DataError{Path: path, Format: revolutFormat, Err: err}
		}
	}
	cell := func(rec []string, col string) string {
		if i, ok := idx[col]; ok && i < len(rec) {
			return rec[i]
		}
		return ""
	}

	var txs []model.Transaction
	var balances []model.Balance
	for i, rec := range records[1:] {
		if state := cell(rec, "state"); state != "" && state != "COMPLETED" {
			continue
		}
		if currency := cell(rec, "currency"); currency != "" && currency != account.Currency {
			continue
		}

		date, err := parseFlexibleDate(cell(rec, "completed date"))
		if err != nil {
			return nil, nil, &DataError{Path: path, Format: revolutFormat, Err: fmt.Errorf("row %d: %w", i+2, err)}
		}
		amount, err := decimal.NewFromString(cell(rec, "amount"))
		if err != nil {
			return nil, nil, &DataError{Path: path, Format: revolutFormat, Err: fmt.Errorf("row %d: parsing amount: %w", i+2, err)}
		}

		tx := model.Transaction{
			Date:     date,
			Label:    cell(rec, "description"),
			Amount:   amount,
			Currency: account.Currency,
			Type:     revolutTypeMapping[cell(rec, "type")],
		}
		txs = append(txs, tx)

		if raw := cell(rec, "balance"); raw != "" {
			balance, err := decimal.NewFromString(raw)
			if err != nil {
				return nil, nil, &DataError{Path: path, Format: revolutFormat, Err: fmt.Errorf("row %d: parsing balance: %w", i+2, err)}
			}
			balances = append(balances, model.Balance{Date: date, Amount: balance, Currency: account.Currency})
		}
	}
	return balances, txs, nil
}

func decodeRevolutTransactions(account model.Account, path string) ([]model.Transaction, error) {
	_, txs, err := decodeRevolutRaw(account, path)
	return txs, err
}

func decodeRevolutBalances(account model.Account, path string) ([]model.Balance, error) {
	balances, _, err := decodeRevolutRaw(account, path)
	return balances, err
}
