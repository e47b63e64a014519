package pipeline

import (
	"encoding/csv"
	"os"

	"github.com/fintk-dev/fintk/internal/model"
)

const fortuneoFormat = "Fortuneo: UTF-8, ';'-separated, dd/mm/yyyy dates, ',' decimals, " +
	"columns date opération/date valeur/libellé/débit/crédit"

// decodeFortuneoTransactions reads a Fortuneo export. The amount is split
// into a débit and a crédit column, only one of which is filled per row.
// Fortuneo exports carry no balance snapshot.
func decodeFortuneoTransactions(account model.Account, path string) ([]model.Transaction, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, &DataError{Path: path, Format: fortuneoFormat, Err: err}
	}
	defer f.Close()

	cr := csv.NewReader(f)
	cr.Comma = ';'
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	records, err := cr.ReadAll()
	if err != nil {
		return nil, &DataError{Path: path, Format: fortuneoFormat, Err: err}
	}
	if len(records) == 0 {
		return nil, nil
	}

	var txs []model.Transaction
	for _, rec := range records[1:] {
		if len(rec) < 5 {
			continue
		}
		date, err := parseFrenchDate(rec[0])
		if err != nil {
			return nil, &DataError{Path: path, Format: fortuneoFormat, Err: err}
		}

		raw := rec[3]
		if raw == "" {
			raw = rec[4]
		}
		amount, err := parseFrenchAmount(raw)
		if err != nil {
			return nil, &DataError{Path: path, Format: fortuneoFormat, Err: err}
		}

		txs = append(txs, model.Transaction{
			Date:     date,
			Label:    rec[2],
			Amount:   amount,
			Currency: account.Currency,
		})
	}
	return txs, nil
}
