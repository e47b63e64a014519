package ledger

import (
	"bytes"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func rateCell(s string) decimal.NullDecimal {
	return decimal.NullDecimal{Decimal: decimal.RequireFromString(s), Valid: true}
}

func TestReadRates(t *testing.T) {
	in := `Date,CNY,USD
2019-06-28,7.813,1.1380
2019-06-29,,
`
	table, err := ReadRates(strings.NewReader(in))
	require.NoError(t, err)

	assert.Equal(t, []string{"CNY", "USD"}, table.Currencies)
	require.Len(t, table.Rows, 2)

	rate, ok := table.Rate(date(2019, 6, 28), "CNY")
	require.True(t, ok)
	assert.Equal(t, "7.813", rate.String())

	_, ok = table.Rate(date(2019, 6, 29), "USD")
	assert.False(t, ok)
	_, ok = table.Rate(date(2019, 6, 28), "GBP")
	assert.False(t, ok)
}

func TestWriteRatesKeepsSourcePrecision(t *testing.T) {
	table := &RateTable{
		Currencies: []string{"CNY", "USD"},
		Rows: []RateRow{
			{Date: date(2019, 6, 28), Cells: map[string]decimal.NullDecimal{
				"CNY": rateCell("7.813"),
				"USD": rateCell("1.1380"),
			}},
			{Date: date(2019, 6, 29), Cells: map[string]decimal.NullDecimal{}},
		},
	}

	var buf bytes.Buffer
	require.NoError(t, WriteRates(&buf, table))
	assert.Equal(t, "Date,CNY,USD\n2019-06-28,7.813,1.138\n2019-06-29,,\n", buf.String())
}

func TestForwardFill(t *testing.T) {
	table := &RateTable{
		Currencies: []string{"USD"},
		Rows: []RateRow{
			{Date: date(2019, 6, 27), Cells: map[string]decimal.NullDecimal{}},
			{Date: date(2019, 6, 28), Cells: map[string]decimal.NullDecimal{"USD": rateCell("1.10")}},
			{Date: date(2019, 6, 29), Cells: map[string]decimal.NullDecimal{}},
			{Date: date(2019, 6, 30), Cells: map[string]decimal.NullDecimal{}},
			{Date: date(2019, 7, 1), Cells: map[string]decimal.NullDecimal{"USD": rateCell("1.12")}},
		},
	}

	table.ForwardFill()

	// Before the first available rate the cell stays missing.
	_, ok := table.Rate(date(2019, 6, 27), "USD")
	assert.False(t, ok)

	// Weekend gap resolves to the most recent prior rate.
	rate, ok := table.Rate(date(2019, 6, 30), "USD")
	require.True(t, ok)
	assert.Equal(t, "1.1", rate.String())

	rate, ok = table.Rate(date(2019, 7, 1), "USD")
	require.True(t, ok)
	assert.Equal(t, "1.12", rate.String())
}

func TestPadTo(t *testing.T) {
	table := &RateTable{
		Currencies: []string{"USD"},
		Rows: []RateRow{
			{Date: date(2019, 6, 28), Cells: map[string]decimal.NullDecimal{"USD": rateCell("1.10")}},
		},
	}

	table.PadTo(date(2019, 7, 1))
	require.Len(t, table.Rows, 4)
	assert.Equal(t, date(2019, 7, 1), table.Rows[3].Date)
	assert.Empty(t, table.Rows[3].Cells)

	// Already up to date, nothing to add.
	table.PadTo(date(2019, 7, 1))
	assert.Len(t, table.Rows, 4)
}

func TestMergeRates(t *testing.T) {
	existing := &RateTable{
		Currencies: []string{"USD"},
		Rows: []RateRow{
			{Date: date(2019, 6, 28), Cells: map[string]decimal.NullDecimal{"USD": rateCell("1.10")}},
		},
	}
	incoming := &RateTable{
		Currencies: []string{"CNY", "USD"},
		Rows: []RateRow{
			{Date: date(2019, 6, 28), Cells: map[string]decimal.NullDecimal{"USD": rateCell("1.11"), "CNY": rateCell("7.813")}},
			{Date: date(2019, 6, 27), Cells: map[string]decimal.NullDecimal{"USD": rateCell("1.09")}},
		},
	}

	merged := MergeRates(existing, incoming)
	assert.Equal(t, []string{"USD", "CNY"}, merged.Currencies)
	require.Len(t, merged.Rows, 2)
	assert.Equal(t, date(2019, 6, 27), merged.Rows[0].Date)

	rate, ok := merged.Rate(date(2019, 6, 28), "USD")
	require.True(t, ok)
	assert.Equal(t, "1.11", rate.String())
}
