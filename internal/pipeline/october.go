package pipeline

import (
	"fmt"
	"strings"
	"time"

	"github.com/tealeg/xlsx"

	"github.com/fintk-dev/fintk/internal/model"
)

const octoberFormat = "October: XLSX, first sheet, repayment schedule with Date/Projet/Capital/Intérêts/Total columns"

// giveUpFindHeaderAfterRows bounds the scan for the header row; October
// workbooks put a few presentation rows above the table.
const giveUpFindHeaderAfterRows = 20

// decodeOctoberTransactions reads an October repayment schedule. Every row
// is one loan repayment (capital plus interests); the total is what reaches
// the bank account. Workbooks carry no balance snapshot.
func decodeOctoberTransactions(account model.Account, path string) ([]model.Transaction, error) {
	wb, err := xlsx.OpenFile(path)
	if err != nil {
		return nil, &DataError{Path: path, Format: octoberFormat, Err: err}
	}
	if len(wb.Sheets) == 0 {
		return nil, &DataError{Path: path, Format: octoberFormat, Err: fmt.Errorf("workbook has no sheets")}
	}
	sheet := wb.Sheets[0]

	dateCol, labelCol, amountCol := -1, -1, -1
	headerRow := -1
	for i, row := range sheet.Rows {
		if i > giveUpFindHeaderAfterRows {
			break
		}
		for j, cell := range row.Cells {
			switch name := strings.ToLower(strings.TrimSpace(cell.Value)); name {
			case "date":
				dateCol = j
			case "projet", "project":
				labelCol = j
			case "total", "montant":
				amountCol = j
			}
		}
		if dateCol >= 0 && amountCol >= 0 {
			headerRow = i
			break
		}
		dateCol, labelCol, amountCol = -1, -1, -1
	}
	if headerRow < 0 {
		err := fmt.Errorf("no header row with Date and Total columns in the first %d rows", giveUpFindHeaderAfterRows)
		return nil, &DataError{Path: path, Format: octoberFormat, Err: err}
	}

	var txs []model.Transaction
	for i, row := range sheet.Rows[headerRow+1:] {
		if len(row.Cells) <= amountCol || len(row.Cells) <= dateCol {
			continue
		}
		if strings.TrimSpace(row.Cells[dateCol].Value) == "" {
			continue
		}

		date, err := octoberCellDate(row.Cells[dateCol])
		if err != nil {
			return nil, &DataError{Path: path, Format: octoberFormat, Err: fmt.Errorf("row %d: %w", headerRow+i+2, err)}
		}
		amount, err := parseFrenchAmount(row.Cells[amountCol].Value)
		if err != nil {
			return nil, &DataError{Path: path, Format: octoberFormat, Err: fmt.Errorf("row %d: %w", headerRow+i+2, err)}
		}

		label := "Remboursement"
		if labelCol >= 0 && labelCol < len(row.Cells) && row.Cells[labelCol].Value != "" {
			label = "Remboursement " + row.Cells[labelCol].Value
		}
		txs = append(txs, model.Transaction{
			Date:     date,
			Label:    label,
			Amount:   amount,
			Currency: account.Currency,
		})
	}
	return txs, nil
}

// octoberCellDate reads a date cell, whether the workbook stored it as text
// or as a native Excel date.
func octoberCellDate(cell *xlsx.Cell) (time.Time, error) {
	if d, err := parseFlexibleDate(cell.Value); err == nil {
		return d, nil
	}
	d, err := cell.GetTime(false)
	if err != nil {
		return time.Time{}, fmt.Errorf("unrecognized date cell %q: %w", cell.Value, err)
	}
	return d, nil
}

// octoberDefaultType marks repayments as transfers: the capital part is
// the lender's own money coming back.
func octoberDefaultType(account model.Account, tx *model.Transaction) {
	tx.Type = model.TxTransfer
}
