package ledger

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fintk-dev/fintk/internal/model"
)

type categorySet map[string]struct{}

func (s categorySet) HasCategory(cat string) bool {
	_, ok := s[cat]
	return ok
}

func TestValidateTransactions(t *testing.T) {
	cats := categorySet{"food/restaurant": {}}

	ok := tx("2019-06-05", "OK", "10")
	ok.MainCategory, ok.SubCategory = "food", "restaurant"

	badType := tx("2019-06-06", "BAD TYPE", "10")
	badType.Type = "bogus"

	badCat := tx("2019-06-07", "BAD CAT", "10")
	badCat.MainCategory, badCat.SubCategory = "food", "unknown"

	transfer := tx("2019-06-08", "TRANSFER", "10")
	transfer.Type = model.TxTransfer

	valid, errs := ValidateTransactions([]model.Transaction{ok, badType, badCat, transfer}, cats)
	require.Len(t, valid, 2)
	assert.Equal(t, "OK", valid[0].Label)
	assert.Equal(t, "TRANSFER", valid[1].Label)

	require.Len(t, errs, 2)
	assert.Equal(t, 3, errs[0].Line)
	assert.Contains(t, errs[0].Error(), `Line 3: unknown transaction type "bogus"`)
	assert.Equal(t, 4, errs[1].Line)
	assert.Contains(t, errs[1].Error(), `unknown category "food/unknown"`)
}

func TestValidateTransactionsNonExpenseSkipsCategoryCheck(t *testing.T) {
	income := tx("2019-06-05", "SALARY", "1000")
	income.Type = model.TxIncome

	valid, errs := ValidateTransactions([]model.Transaction{income}, categorySet{})
	assert.Len(t, valid, 1)
	assert.Empty(t, errs)
}

func TestRenameCategories(t *testing.T) {
	a := tx("2019-06-05", "A", "10")
	a.MainCategory, a.SubCategory = "food", "resto"
	b := tx("2019-06-06", "B", "10")
	b.MainCategory, b.SubCategory = "food", "restaurant"

	txs := []model.Transaction{a, b}
	RenameCategories(txs, map[string]string{"food/resto": "food/restaurant"})

	assert.Equal(t, "restaurant", txs[0].SubCategory)
	assert.Equal(t, "restaurant", txs[1].SubCategory)
	assert.Equal(t, "food", txs[0].MainCategory)
}
