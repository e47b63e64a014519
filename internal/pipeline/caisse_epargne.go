package pipeline

import (
	"encoding/csv"
	"fmt"
	"os"

	"github.com/fintk-dev/fintk/internal/model"
)

const caisseEpargneFormat = "Caisse d'Epargne: UTF-8, ';'-separated, dd/mm/yyyy dates, ',' decimals, " +
	"columns Date operation/Libelle operation/Debit/Credit (or Montant)"

// decodeCaisseEpargneTransactions reads a Caisse d'Epargne export. Column
// names vary between download channels, so they are resolved by name; the
// amount is either a single Montant column or a Debit/Credit pair. The
// export carries no balance snapshot.
func decodeCaisseEpargneTransactions(account model.Account, path string) ([]model.Transaction, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, &DataError{Path: path, Format: caisseEpargneFormat, Err: err}
	}
	defer f.Close()

	cr := csv.NewReader(f)
	cr.Comma = ';'
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	records, err := cr.ReadAll()
	if err != nil {
		return nil, &DataError{Path: path, Format: caisseEpargneFormat, Err: err}
	}
	if len(records) == 0 {
		return nil, nil
	}

	idx := headerIndex(records[0])
	pick := func(names ...string) (int, bool) {
		for _, n := range names {
			if i, ok := idx[n]; ok {
				return i, true
			}
		}
		return 0, false
	}

	dateCol, ok := pick("date operation", "date opération", "date de comptabilisation")
	if !ok {
		err := fmt.Errorf("missing date column in header %v", records[0])
		return nil, &DataError{Path: path, Format: caisseEpargneFormat, Err: err}
	}
	labelCol, ok := pick("libelle operation", "libellé opération", "libelle simplifie", "libellé simplifié", "libelle", "libellé")
	if !ok {
		err := fmt.Errorf("missing label column in header %v", records[0])
		return nil, &DataError{Path: path, Format: caisseEpargneFormat, Err: err}
	}
	amountCol, hasAmount := pick("montant")
	debitCol, hasDebit := pick("debit", "débit")
	creditCol, hasCredit := pick("credit", "crédit")
	if !hasAmount && !(hasDebit && hasCredit) {
		err := fmt.Errorf("missing amount columns in header %v", records[0])
		return nil, &DataError{Path: path, Format: caisseEpargneFormat, Err: err}
	}
	lastCol := max(dateCol, labelCol)
	if hasAmount {
		lastCol = max(lastCol, amountCol)
	} else {
		lastCol = max(lastCol, debitCol, creditCol)
	}

	var txs []model.Transaction
	for i, rec := range records[1:] {
		// Trailing summary or blank lines have no date cell; skip them.
		if len(rec) <= dateCol || rec[dateCol] == "" {
			continue
		}
		if len(rec) <= lastCol {
			err := fmt.Errorf("row %d has %d fields, expected at least %d", i+2, len(rec), lastCol+1)
			return nil, &DataError{Path: path, Format: caisseEpargneFormat, Err: err}
		}
		date, err := parseFrenchDate(rec[dateCol])
		if err != nil {
			return nil, &DataError{Path: path, Format: caisseEpargneFormat, Err: fmt.Errorf("row %d: %w", i+2, err)}
		}

		raw := ""
		if hasAmount {
			raw = rec[amountCol]
		} else if rec[debitCol] != "" {
			raw = rec[debitCol]
		} else {
			raw = rec[creditCol]
		}
		amount, err := parseFrenchAmount(raw)
		if err != nil {
			return nil, &DataError{Path: path, Format: caisseEpargneFormat, Err: fmt.Errorf("row %d: %w", i+2, err)}
		}

		txs = append(txs, model.Transaction{
			Date:     date,
			Label:    rec[labelCol],
			Amount:   amount,
			Currency: account.Currency,
		})
	}
	return txs, nil
}

func caisseEpargneDefaultType(account model.Account, tx *model.Transaction) {
	switch account.Type {
	case "LVA", "LDD":
		tx.Type = model.TxTransfer
	case "CHQ":
		tx.Type = model.TxExpense
	}
}
