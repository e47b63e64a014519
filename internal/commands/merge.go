package commands

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/fintk-dev/fintk/internal/config"
	"github.com/fintk-dev/fintk/internal/ledger"
	"github.com/fintk-dev/fintk/internal/model"
	"github.com/fintk-dev/fintk/internal/pipeline"
)

func newMergeCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "merge",
		Short: "Rebuild total.csv and balance.csv from the monthly ledgers",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, err := opts.load()
			if err != nil {
				return err
			}
			return runMerge(cfg, log, cmd.OutOrStdout())
		},
	}
}

// mergedTransaction is a ledger row tagged with the account it belongs
// to, as written to total.csv.
type mergedTransaction struct {
	model.Transaction
	Account string
}

// runMerge collects every monthly ledger under the finance root into
// total.csv and every converted balance history into balance.csv.
// Invalid ledger rows are reported with their file and line number and
// excluded from the merge.
func runMerge(cfg *config.Configuration, log zerolog.Logger, out io.Writer) error {
	if err := mergeTransactions(cfg, out); err != nil {
		return err
	}
	if err := mergeBalances(cfg, log); err != nil {
		return err
	}
	fmt.Fprintln(out, "Merge done")
	return nil
}

func mergeTransactions(cfg *config.Configuration, out io.Writer) error {
	paths, err := filepath.Glob(filepath.Join(cfg.RootDir, "20[1-9]*", "*.csv"))
	if err != nil {
		return fmt.Errorf("listing monthly ledgers: %w", err)
	}
	sort.Strings(paths)

	parser := pipeline.NewAccountParser(cfg)
	var merged []mergedTransaction
	for _, path := range paths {
		account := parser.Parse(path)
		txs, err := readLedger(path, account.Currency)
		if err != nil {
			return err
		}

		valid, rowErrs := ledger.ValidateTransactions(txs, cfg)
		if len(rowErrs) > 0 {
			fmt.Fprintf(out, "%s:\n", path)
			for _, rowErr := range rowErrs {
				fmt.Fprintf(out, "  - %s\n", rowErr)
			}
		}

		ledger.RenameCategories(valid, cfg.CategoriesToRename)
		for _, tx := range valid {
			merged = append(merged, mergedTransaction{Transaction: tx, Account: account.ID})
		}
	}

	sort.SliceStable(merged, func(i, j int) bool {
		a, b := merged[i], merged[j]
		if !a.Date.Equal(b.Date) {
			return a.Date.Before(b.Date)
		}
		if a.Account != b.Account {
			return a.Account < b.Account
		}
		if a.Label != b.Label {
			return a.Label < b.Label
		}
		return a.Amount.LessThan(b.Amount)
	})

	return writeTotal(filepath.Join(cfg.RootDir, "total.csv"), merged)
}

func readLedger(path, accountCurrency string) ([]model.Transaction, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	txs, err := ledger.ReadTransactions(f, accountCurrency)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	return txs, nil
}

func writeTotal(path string, txs []mergedTransaction) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	cw := csv.NewWriter(f)
	cw.Write([]string{"Date", "Month", "Account", "Label", "Amount", "Type", "MainCategory", "SubCategory"})
	for _, tx := range txs {
		cw.Write([]string{
			tx.Date.Format(model.DateFormat),
			tx.Month(),
			tx.Account,
			tx.Label,
			tx.Amount.StringFixed(2),
			string(tx.Type),
			tx.MainCategory,
			tx.SubCategory,
		})
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// mergedBalance is a balance-history row tagged with its account, as
// written to balance.csv. Amount stays a raw string: converted series
// legitimately carry empty cells for dates without an exchange rate.
type mergedBalance struct {
	Date        string
	Account     string
	AccountID   string
	Amount      string
	AccountType string
}

func mergeBalances(cfg *config.Configuration, log zerolog.Logger) error {
	// Only base-currency series are merged, so that every amount in
	// balance.csv is comparable.
	paths, err := filepath.Glob(filepath.Join(cfg.RootDir, "balance.*."+model.BaseCurrency+".csv"))
	if err != nil {
		return fmt.Errorf("listing balance files: %w", err)
	}
	sort.Strings(paths)

	parser := pipeline.NewAccountParser(cfg)
	var merged []mergedBalance
	for _, path := range paths {
		file, ok := parser.ParseBalancePath(path)
		if !ok {
			log.Warn().Str("file", filepath.Base(path)).Msg("balance file matches no account")
			continue
		}
		rows, err := readBalanceRows(path)
		if err != nil {
			return err
		}
		for _, row := range rows {
			merged = append(merged, mergedBalance{
				Date:        row[0],
				Account:     file.Account.ID,
				AccountID:   file.Account.Num,
				Amount:      row[1],
				AccountType: file.Account.Type,
			})
		}
	}

	sort.SliceStable(merged, func(i, j int) bool {
		a, b := merged[i], merged[j]
		if a.Date != b.Date {
			return a.Date < b.Date
		}
		return a.Account < b.Account
	})

	return writeBalanceReport(filepath.Join(cfg.RootDir, "balance.csv"), merged)
}

// readBalanceRows reads a balance history without parsing the amounts,
// so empty cells from unconverted dates survive the merge.
func readBalanceRows(path string) ([][]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	records, err := csv.NewReader(f).ReadAll()
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	if len(records) == 0 {
		return nil, nil
	}
	return records[1:], nil
}

func writeBalanceReport(path string, rows []mergedBalance) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	cw := csv.NewWriter(f)
	cw.Write([]string{"Date", "Account", "AccountId", "Amount", "AccountType"})
	for _, row := range rows {
		cw.Write([]string{row.Date, row.Account, row.AccountID, row.Amount, row.AccountType})
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
