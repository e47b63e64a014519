package ledger

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"

	"github.com/fintk-dev/fintk/internal/model"
)

// txKey identifies "the same" transaction across merges. Two exports of an
// overlapping period repeat rows; the key absorbs the replay.
func txKey(tx model.Transaction) string {
	return tx.Date.Format(model.DateFormat) + "\x00" + tx.Label + "\x00" + tx.Amount.StringFixed(2)
}

// MergeTransactions folds incoming rows into existing ones: duplicates on
// (Date, Label, Amount) keep the later-seen row, so re-integrating a file
// refreshes metadata instead of duplicating. The result is sorted by
// (Date, Label).
func MergeTransactions(existing, incoming []model.Transaction) []model.Transaction {
	index := make(map[string]int, len(existing)+len(incoming))
	merged := make([]model.Transaction, 0, len(existing)+len(incoming))
	for _, tx := range append(append([]model.Transaction{}, existing...), incoming...) {
		k := txKey(tx)
		if at, seen := index[k]; seen {
			merged[at] = tx
			continue
		}
		index[k] = len(merged)
		merged = append(merged, tx)
	}

	sort.SliceStable(merged, func(i, j int) bool {
		if !merged[i].Date.Equal(merged[j].Date) {
			return merged[i].Date.Before(merged[j].Date)
		}
		return merged[i].Label < merged[j].Label
	})
	return merged
}

// MergeBalances folds incoming balance snapshots into existing ones: one
// balance per day, the later-seen row wins, sorted by date.
func MergeBalances(existing, incoming []model.Balance) []model.Balance {
	index := make(map[string]int, len(existing)+len(incoming))
	merged := make([]model.Balance, 0, len(existing)+len(incoming))
	for _, b := range append(append([]model.Balance{}, existing...), incoming...) {
		k := b.Date.Format(model.DateFormat)
		if at, seen := index[k]; seen {
			merged[at] = b
			continue
		}
		index[k] = len(merged)
		merged = append(merged, b)
	}

	sort.SliceStable(merged, func(i, j int) bool {
		return merged[i].Date.Before(merged[j].Date)
	})
	return merged
}

// AppendTransactions merges txs into the ledger file at path, creating the
// parent directory if needed. The whole file is rewritten: load existing
// rows (backfilling the account currency on legacy files), merge, write.
func AppendTransactions(path, accountCurrency string, txs []model.Transaction) error {
	existing, err := readTransactionFile(path, accountCurrency)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating ledger dir: %w", err)
	}
	return writeFile(path, func(f *os.File) error {
		return WriteTransactions(f, MergeTransactions(existing, txs))
	})
}

// InsertBalances merges balances into the balance-history file at path and
// rewrites it.
func InsertBalances(path string, balances []model.Balance) error {
	existing, err := ReadBalanceFile(path)
	if err != nil {
		return err
	}
	return writeFile(path, func(f *os.File) error {
		return WriteBalances(f, MergeBalances(existing, balances))
	})
}

func readTransactionFile(path, accountCurrency string) ([]model.Transaction, error) {
	f, err := os.Open(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("opening ledger %s: %w", path, err)
	}
	defer f.Close()

	txs, err := ReadTransactions(f, accountCurrency)
	if err != nil {
		return nil, fmt.Errorf("ledger %s: %w", path, err)
	}
	return txs, nil
}

// ReadBalanceFile reads a balance history from disk; a missing file is an
// empty history.
func ReadBalanceFile(path string) ([]model.Balance, error) {
	f, err := os.Open(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("opening balance history %s: %w", path, err)
	}
	defer f.Close()

	balances, err := ReadBalances(f)
	if err != nil {
		return nil, fmt.Errorf("balance history %s: %w", path, err)
	}
	return balances, nil
}

func writeFile(path string, write func(*os.File) error) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}
	if err := write(f); err != nil {
		f.Close()
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return f.Close()
}
