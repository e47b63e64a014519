package ledger

import (
	"fmt"
	"strings"

	"github.com/fintk-dev/fintk/internal/model"
)

// CategoryChecker tests whether a "main/sub" category pair is configured.
type CategoryChecker interface {
	HasCategory(cat string) bool
}

// RowError describes one rejected ledger row. Line is 1-based and counts
// the header, matching what an editor shows on the source file.
type RowError struct {
	Line int
	Err  error
}

func (e RowError) Error() string {
	return fmt.Sprintf("Line %d: %s", e.Line, e.Err)
}

// ValidateTransactions partitions rows into valid ones and line-numbered
// diagnostics. A row is rejected when its type is unknown or when an
// expense references a category that is not configured. Rejected rows are
// dropped; processing continues.
func ValidateTransactions(txs []model.Transaction, categories CategoryChecker) ([]model.Transaction, []RowError) {
	valid := make([]model.Transaction, 0, len(txs))
	var errs []RowError
	for i, tx := range txs {
		if err := validateTransaction(tx, categories); err != nil {
			errs = append(errs, RowError{Line: i + 2, Err: err})
			continue
		}
		valid = append(valid, tx)
	}
	return valid, errs
}

func validateTransaction(tx model.Transaction, categories CategoryChecker) error {
	if !model.ValidTxType(tx.Type) {
		return fmt.Errorf("unknown transaction type %q", tx.Type)
	}
	if tx.Type == model.TxExpense && !categories.HasCategory(tx.Category()) {
		return fmt.Errorf("unknown category %q", tx.Category())
	}
	return nil
}

// RenameCategories applies the configured old "main/sub" to new "main/sub"
// renames in place. Only exact pair matches are renamed.
func RenameCategories(txs []model.Transaction, renames map[string]string) {
	if len(renames) == 0 {
		return
	}
	for i := range txs {
		to, ok := renames[txs[i].Category()]
		if !ok {
			continue
		}
		if main, sub, ok := strings.Cut(to, "/"); ok {
			txs[i].MainCategory = main
			txs[i].SubCategory = sub
		}
	}
}
