package pipeline

import (
	"bufio"
	"encoding/csv"
	"fmt"
	"html"
	"io"
	"os"
	"strings"

	"github.com/fintk-dev/fintk/internal/model"
)

const bnpFormat = "BNP: ISO-8859-1, ';'-separated, dd/mm/yyyy dates, ',' decimals"

// decodeBNPRaw reads a BNP Paribas export. The first line is a balance
// snapshot, the remaining lines are the transaction table.
func decodeBNPRaw(account model.Account, path string) ([]model.Balance, []model.Transaction, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, &DataError{Path: path, Format: bnpFormat, Err: err}
	}
	defer f.Close()

	br := bufio.NewReader(latin1(f))
	first, err := br.ReadString('\n')
	if err != nil && err != io.EOF {
		return nil, nil, &DataError{Path: path, Format: bnpFormat, Err: err}
	}

	balance, err := parseBNPBalance(first, account.Currency)
	if err != nil {
		return nil, nil, &DataError{Path: path, Format: bnpFormat, Err: err}
	}

	txs, err := parseBNPTransactions(br, account.Currency)
	if err != nil {
		return nil, nil, &DataError{Path: path, Format: bnpFormat, Err: err}
	}
	return []model.Balance{balance}, txs, nil
}

// parseBNPBalance parses the first line of an export, e.g.
//
//	"Crédit immobilier";"Crédit immobilier";****1234;03/07/2019;;-123 456,78
//
// The line is HTML-escaped twice at the source, so it is unescaped twice.
func parseBNPBalance(line, currency string) (model.Balance, error) {
	line = html.UnescapeString(html.UnescapeString(strings.TrimSpace(line)))
	fields := strings.Split(line, ";")
	if len(fields) != 6 {
		return model.Balance{}, fmt.Errorf("balance line has %d fields, expected 6: %q", len(fields), line)
	}

	date, err := parseFrenchDate(fields[3])
	if err != nil {
		return model.Balance{}, err
	}
	amount, err := parseFrenchAmount(fields[5])
	if err != nil {
		return model.Balance{}, err
	}
	return model.Balance{Date: date, Amount: amount, Currency: currency}, nil
}

func parseBNPTransactions(r io.Reader, currency string) ([]model.Transaction, error) {
	cr := csv.NewReader(r)
	cr.Comma = ';'
	cr.FieldsPerRecord = 5
	cr.TrimLeadingSpace = true

	var txs []model.Transaction
	for {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}

		date, err := parseFrenchDate(rec[0])
		if err != nil {
			return nil, err
		}
		amount, err := parseFrenchAmount(rec[4])
		if err != nil {
			return nil, err
		}
		txs = append(txs, model.Transaction{
			Date:     date,
			Label:    rec[3],
			Amount:   amount,
			Currency: currency,
		})
	}
	return txs, nil
}

func decodeBNPTransactions(account model.Account, path string) ([]model.Transaction, error) {
	_, txs, err := decodeBNPRaw(account, path)
	return txs, err
}

func decodeBNPBalances(account model.Account, path string) ([]model.Balance, error) {
	balances, _, err := decodeBNPRaw(account, path)
	return balances, err
}

// bnpDefaultType classifies by account sub-type: a mortgage account holds
// credit rows, savings accounts hold transfers, a checking account defaults
// to expenses.
func bnpDefaultType(account model.Account, tx *model.Transaction) {
	switch account.Type {
	case "CDI":
		tx.Type = model.TxCredit
	case "LVA", "LDD":
		tx.Type = model.TxTransfer
	case "CHQ":
		tx.Type = model.TxExpense
	}
}
