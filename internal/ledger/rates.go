package ledger

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"slices"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/fintk-dev/fintk/internal/model"
)

// RateRow is one day of exchange rates. A missing cell means the source
// published no rate for that day (non-trading day).
type RateRow struct {
	Date  time.Time
	Cells map[string]decimal.NullDecimal
}

// RateTable is the canonical daily exchange-rate table: one row per date,
// one column per watched currency, each cell the units of that currency
// per one unit of the base currency.
type RateTable struct {
	Currencies []string
	Rows       []RateRow
}

// Rate returns the rate of currency on date, if the table has one.
func (t *RateTable) Rate(date time.Time, currency string) (decimal.Decimal, bool) {
	day := date.Format(model.DateFormat)
	for _, row := range t.Rows {
		if row.Date.Format(model.DateFormat) == day {
			cell, ok := row.Cells[currency]
			if !ok || !cell.Valid {
				return decimal.Decimal{}, false
			}
			return cell.Decimal, true
		}
	}
	return decimal.Decimal{}, false
}

// ForwardFill replaces every missing cell with the most recent prior rate
// of the same currency. Cells before the first available rate stay missing.
func (t *RateTable) ForwardFill() {
	last := make(map[string]decimal.NullDecimal, len(t.Currencies))
	for _, row := range t.Rows {
		for _, c := range t.Currencies {
			if cell, ok := row.Cells[c]; ok && cell.Valid {
				last[c] = cell
				continue
			}
			if cell, ok := last[c]; ok {
				row.Cells[c] = cell
			}
		}
	}
}

// PadTo appends one empty row per missing day between the last row and
// today inclusive, so a later forward-fill has a row to land on for
// balances dated after the last published rate.
func (t *RateTable) PadTo(today time.Time) {
	if len(t.Rows) == 0 {
		return
	}
	day := t.Rows[len(t.Rows)-1].Date
	for day.Before(today.Truncate(24 * time.Hour)) {
		day = day.AddDate(0, 0, 1)
		t.Rows = append(t.Rows, RateRow{Date: day, Cells: map[string]decimal.NullDecimal{}})
	}
}

// MergeRates folds incoming daily rates into existing ones: the currency
// set is the union of both (first-seen order preserved), duplicate dates
// keep the later-seen row, rows sort ascending by date.
func MergeRates(existing, incoming *RateTable) *RateTable {
	currencies := append([]string{}, existing.Currencies...)
	for _, c := range incoming.Currencies {
		if !slices.Contains(currencies, c) {
			currencies = append(currencies, c)
		}
	}

	index := make(map[string]int, len(existing.Rows)+len(incoming.Rows))
	rows := make([]RateRow, 0, len(existing.Rows)+len(incoming.Rows))
	for _, row := range append(append([]RateRow{}, existing.Rows...), incoming.Rows...) {
		k := row.Date.Format(model.DateFormat)
		if at, seen := index[k]; seen {
			rows[at] = row
			continue
		}
		index[k] = len(rows)
		rows = append(rows, row)
	}
	sort.SliceStable(rows, func(i, j int) bool { return rows[i].Date.Before(rows[j].Date) })

	return &RateTable{Currencies: currencies, Rows: rows}
}

// ReadRates reads a canonical rate table. The header names the currency
// columns; empty cells stay missing.
func ReadRates(r io.Reader) (*RateTable, error) {
	cr := csv.NewReader(r)
	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("reading rate CSV: %w", err)
	}
	if len(records) == 0 {
		return &RateTable{}, nil
	}

	header := records[0]
	if len(header) < 1 || header[0] != "Date" {
		return nil, fmt.Errorf("unexpected rate header %v", header)
	}
	currencies := append([]string{}, header[1:]...)

	rows := make([]RateRow, 0, len(records)-1)
	for i, rec := range records[1:] {
		date, err := parseDate(rec[0])
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i+2, err)
		}
		cells := make(map[string]decimal.NullDecimal, len(currencies))
		for j, c := range currencies {
			if rec[j+1] == "" {
				continue
			}
			d, err := decimal.NewFromString(rec[j+1])
			if err != nil {
				return nil, fmt.Errorf("row %d: parsing %s rate %q: %w", i+2, c, rec[j+1], err)
			}
			cells[c] = decimal.NullDecimal{Decimal: d, Valid: true}
		}
		rows = append(rows, RateRow{Date: date, Cells: cells})
	}
	return &RateTable{Currencies: currencies, Rows: rows}, nil
}

// WriteRates writes the table, preserving each rate's source precision.
func WriteRates(w io.Writer, t *RateTable) error {
	cw := csv.NewWriter(w)
	defer cw.Flush()

	header := append([]string{"Date"}, t.Currencies...)
	if err := cw.Write(header); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}
	for i, row := range t.Rows {
		rec := make([]string, len(header))
		rec[0] = row.Date.Format(model.DateFormat)
		for j, c := range t.Currencies {
			if cell, ok := row.Cells[c]; ok && cell.Valid {
				rec[j+1] = cell.Decimal.String()
			}
		}
		if err := cw.Write(rec); err != nil {
			return fmt.Errorf("writing row %d: %w", i+2, err)
		}
	}
	return cw.Error()
}

// ReadRateFile reads the rate table from disk; a missing file is an empty
// table.
func ReadRateFile(path string) (*RateTable, error) {
	f, err := os.Open(path)
	if errors.Is(err, fs.ErrNotExist) {
		return &RateTable{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("opening rate table %s: %w", path, err)
	}
	defer f.Close()

	t, err := ReadRates(f)
	if err != nil {
		return nil, fmt.Errorf("rate table %s: %w", path, err)
	}
	return t, nil
}

// WriteRateFile rewrites the rate table on disk.
func WriteRateFile(path string, t *RateTable) error {
	return writeFile(path, func(f *os.File) error {
		return WriteRates(f, t)
	})
}
