package model

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func date(y, m, d int) time.Time {
	return time.Date(y, time.Month(m), d, 0, 0, 0, 0, time.UTC)
}

func TestSummaryEmpty(t *testing.T) {
	s := NewSummary("/downloads", "copy")

	assert.Equal(t, `$$$ Summary $$$
---------------
No CSV found in "/downloads".
---------------
Finished.`, s.String())
}

func TestSummaryReport(t *testing.T) {
	s := NewSummary("/downloads", "copy")
	s.AddSource("/downloads/E1231234.csv")
	s.AddTarget("/finance/2019-06/2019-06.credit-BNP-P15.csv")
	s.AddTarget("/finance/balance.credit-BNP-P15.EUR.csv")

	assert.Equal(t, `$$$ Summary $$$
---------------
1 files done (action: copy).
---------------
Sources:
- /downloads/E1231234.csv
Targets:
- /finance/2019-06/2019-06.credit-BNP-P15.csv
- /finance/balance.credit-BNP-P15.EUR.csv
Finished.`, s.String())

	assert.True(t, s.HasSource("/downloads/E1231234.csv"))
	assert.False(t, s.HasSource("/downloads/other.csv"))
	assert.True(t, s.HasTarget("/finance/balance.credit-BNP-P15.EUR.csv"))
}

func TestSummaryDeduplicates(t *testing.T) {
	s := NewSummary("/downloads", "copy")
	s.AddSource("/downloads/a.csv")
	s.AddSource("/downloads/a.csv")
	s.AddTarget("/finance/t.csv")
	s.AddTarget("/finance/t.csv")

	assert.Contains(t, s.String(), "1 files done")
}

func TestTransactionMonth(t *testing.T) {
	tx := Transaction{Date: date(2019, 8, 1)}
	assert.Equal(t, "2019-08", tx.Month())
}

func TestValidTxType(t *testing.T) {
	assert.True(t, ValidTxType(TxExpense))
	assert.True(t, ValidTxType(TxTax))
	assert.False(t, ValidTxType(TxUnknown))
	assert.False(t, ValidTxType(TxType("myType")))
}
