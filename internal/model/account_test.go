package model

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBNPAccountMatch(t *testing.T) {
	a := NewBNPAccount("CHQ", "credit-BNP-P15", "****1234", "EUR")

	assert.True(t, a.Match("E1231234.csv"))
	assert.True(t, a.Match("E1234.csv"))
	assert.False(t, a.Match("E0001235.csv"))
	assert.False(t, a.Match("export-operations-01-01-2019_12345.csv"))
}

func TestBoursoramaAccountMatch(t *testing.T) {
	a := NewBoursoramaAccount("CHQ", "user-BRS-CHQ", "001234", "EUR")

	assert.True(t, a.Match("export-operations-30-03-2019_08-50-51.csv"))
	assert.False(t, a.Match("export-operations-30-03-2019.csv"))
	assert.False(t, a.Match("E1231234.csv"))
}

func TestBoursoramaOperationsDate(t *testing.T) {
	a := NewBoursoramaAccount("CHQ", "user-BRS-CHQ", "001234", "EUR")

	d, err := a.OperationsDate("export-operations-30-03-2019_08-50-51.csv")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2019, time.March, 30, 0, 0, 0, 0, time.UTC), d)

	_, err = a.OperationsDate("not-an-export.csv")
	assert.Error(t, err)
}

func TestCaisseEpargneAccountMatch(t *testing.T) {
	full := NewCaisseEpargneAccount("CHQ", "test-CEP-CHQ", "12345678", "EUR")
	assert.True(t, full.Match("12345678_01112024_30112024.csv"))
	assert.False(t, full.Match("87654321_01112024_30112024.csv"))
	assert.False(t, full.Match("12345678.csv"))

	// The configured num may be a suffix of the full account number.
	suffix := NewCaisseEpargneAccount("CHQ", "test-CEP-CHQ", "5678", "EUR")
	assert.True(t, suffix.Match("12345678_01112024_30112024.csv"))
	assert.True(t, suffix.Match("99995678_01012025_31012025.csv"))
	assert.False(t, suffix.Match("12345679_01112024_30112024.csv"))
	assert.False(t, suffix.Match("56781234_01112024_30112024.csv"))
}

func TestFortuneoAccountMatch(t *testing.T) {
	a := NewFortuneoAccount("CHQ", "user-FTN-CHQ", "12345", "EUR")

	assert.True(t, a.Match("HistoriqueOperations_12345_du_14_01_2019_au_14_12_2019.csv"))
	assert.False(t, a.Match("HistoriqueOperations_12345.csv"))
}

func TestOctoberAccountMatch(t *testing.T) {
	a := NewOctoberAccount("LDG", "user-OCT-LDG", "octSomebody", "EUR")

	assert.True(t, a.Match("remboursements-octSomebody.xlsx"))
	assert.False(t, a.Match("remboursements-someoneElse.xlsx"))
}

func TestRevolutAccountMatch(t *testing.T) {
	a := NewRevolutAccount(RevolutTypeCash, "user-REV-USD", "abc123", "USD", nil)

	assert.True(t, a.Match("Revolut-USD-Statement-2019.csv"))
	assert.True(t, a.Match("account-statement_2021-01-01_2022-05-27_undefined-undefined_abc123.csv"))
	assert.False(t, a.Match("account-statement_2021-01-01_2022-05-27_undefined-undefined_zzz999.csv"))

	extra := NewRevolutAccount(RevolutTypeCash, "user-REV-USD", "abc123", "USD",
		[]string{`custom-export-.*\.csv`})
	assert.True(t, extra.Match("custom-export-2022.csv"))
}

func TestAccountIsAccount(t *testing.T) {
	a := NewBoursoramaAccount("CHQ", "user-BRS-CHQ", "001234", "EUR")

	assert.True(t, a.IsAccount("00001234"))
	assert.True(t, a.IsAccount("001234"))
	assert.False(t, a.IsAccount("003607"))
	assert.False(t, a.IsAccount("34"))
}

func TestAccountFilenames(t *testing.T) {
	a := NewRevolutAccount(RevolutTypeCash, "user-REV-USD", "abc123", "USD", nil)

	assert.Equal(t, "user-REV-USD.csv", a.Filename())
	assert.Equal(t, "balance.user-REV-USD.USD.csv", a.BalanceFilename())
	assert.Equal(t, "balance.user-REV-USD.EUR.csv", a.ConvertedBalanceFilename())
	assert.True(t, a.NeedsConversion())

	b := NewBNPAccount("CHQ", "user-BNP-CHQ", "****1234", "EUR")
	assert.False(t, b.NeedsConversion())
}

func TestAccountMaskedNum(t *testing.T) {
	assert.Equal(t, "****5678", NewCaisseEpargneAccount("CHQ", "x", "12345678", "EUR").MaskedNum())
	assert.Equal(t, "****1234", NewBNPAccount("CHQ", "x", "****1234", "EUR").MaskedNum())
}
