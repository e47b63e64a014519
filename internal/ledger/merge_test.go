package ledger

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fintk-dev/fintk/internal/model"
)

func TestMergeTransactionsKeepsNewMetadata(t *testing.T) {
	existing := tx("2019-08-01", "L", "10.00")
	existing.Type = model.TxUnknown

	incoming := tx("2019-08-01", "L", "10.00")
	incoming.Type = model.TxExpense
	incoming.MainCategory = "food"
	incoming.SubCategory = "restaurant"

	merged := MergeTransactions([]model.Transaction{existing}, []model.Transaction{incoming})
	require.Len(t, merged, 1)
	assert.Equal(t, model.TxExpense, merged[0].Type)
	assert.Equal(t, "food", merged[0].MainCategory)
}

func TestMergeTransactionsSortsByDateThenLabel(t *testing.T) {
	merged := MergeTransactions(
		[]model.Transaction{tx("2019-08-02", "B", "1"), tx("2019-08-01", "Z", "1")},
		[]model.Transaction{tx("2019-08-02", "A", "1"), tx("2019-08-01", "A", "1")},
	)
	require.Len(t, merged, 4)
	assert.Equal(t, "A", merged[0].Label)
	assert.Equal(t, "Z", merged[1].Label)
	assert.Equal(t, "A", merged[2].Label)
	assert.Equal(t, "B", merged[3].Label)
}

func TestMergeTransactionsDifferentAmountsKept(t *testing.T) {
	merged := MergeTransactions(
		[]model.Transaction{tx("2019-08-01", "L", "10.00")},
		[]model.Transaction{tx("2019-08-01", "L", "20.00")},
	)
	assert.Len(t, merged, 2)
}

func TestMergeBalances(t *testing.T) {
	existing := []model.Balance{
		{Date: date(2019, 7, 3), Amount: decimal.NewFromInt(100), Currency: "EUR"},
	}
	incoming := []model.Balance{
		{Date: date(2019, 7, 3), Amount: decimal.NewFromInt(150), Currency: "EUR"},
		{Date: date(2019, 7, 1), Amount: decimal.NewFromInt(90), Currency: "EUR"},
	}

	merged := MergeBalances(existing, incoming)
	require.Len(t, merged, 2)
	assert.Equal(t, date(2019, 7, 1), merged[0].Date)
	assert.True(t, merged[1].Amount.Equal(decimal.NewFromInt(150)))
}

func TestAppendTransactionsIdempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "2019-06", "2019-06.user-BNP-CHQ.csv")
	txs := []model.Transaction{tx("2019-06-05", "A", "67.97")}

	require.NoError(t, AppendTransactions(path, "EUR", txs))
	first, err := os.ReadFile(path)
	require.NoError(t, err)

	require.NoError(t, AppendTransactions(path, "EUR", txs))
	second, err := os.ReadFile(path)
	require.NoError(t, err)

	assert.Equal(t, string(first), string(second))
}

func TestAppendTransactionsBackfillsCurrency(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "2019-06.user-REV-USD.csv")
	legacy := `Date,Label,Amount,Type,MainCategory,SubCategory
2019-06-01,OLD,10.00,expense,food,restaurant
`
	require.NoError(t, os.WriteFile(path, []byte(legacy), 0o644))

	require.NoError(t, AppendTransactions(path, "USD", []model.Transaction{
		{Date: date(2019, 6, 2), Label: "NEW", Amount: decimal.NewFromInt(5), Currency: "USD", Type: model.TxExpense},
	}))

	content, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, `Date,Label,Amount,Currency,Type,MainCategory,SubCategory
2019-06-01,OLD,10.00,USD,expense,food,restaurant
2019-06-02,NEW,5.00,USD,expense,,
`, string(content))
}

func TestInsertBalancesIdempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "balance.user-BNP-CHQ.EUR.csv")
	balances := []model.Balance{
		{Date: date(2019, 7, 3), Amount: decimal.RequireFromString("-123456.78"), Currency: "EUR"},
	}

	require.NoError(t, InsertBalances(path, balances))
	require.NoError(t, InsertBalances(path, balances))

	content, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "Date,Amount,Currency\n2019-07-03,-123456.78,EUR\n", string(content))
}
