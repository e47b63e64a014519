// Package pipeline turns raw bank export files into canonical ledger rows.
// Each supported institution contributes a decoder; the shared transaction
// and balance pipelines handle classification, partitioning, and the
// idempotent merge into the ledger files.
package pipeline

import (
	"fmt"
	"path/filepath"
	"sort"

	"github.com/rs/zerolog"

	"github.com/fintk-dev/fintk/internal/config"
	"github.com/fintk-dev/fintk/internal/ledger"
	"github.com/fintk-dev/fintk/internal/model"
)

// TransactionPipeline integrates the transaction rows of one export file
// into the monthly ledgers. Run is idempotent: re-running on an already
// integrated file leaves the ledgers unchanged.
type TransactionPipeline interface {
	Run(path string, summary *model.Summary) error
}

// BalancePipeline integrates the balance snapshot of one export file into
// the account's balance history, converting to the base currency when
// needed.
type BalancePipeline interface {
	Run(path string, summary *model.Summary) error
}

// txDecoder reads the canonical transaction rows out of a raw export file.
type txDecoder func(account model.Account, path string) ([]model.Transaction, error)

// balanceDecoder reads the canonical balance rows out of a raw export file.
type balanceDecoder func(account model.Account, path string) ([]model.Balance, error)

// defaultTyper assigns the institution default classification to a row
// before autocomplete rules run.
type defaultTyper func(account model.Account, tx *model.Transaction)

type txPipeline struct {
	account  model.Account
	cfg      *config.Configuration
	log      zerolog.Logger
	decode   txDecoder
	defaults defaultTyper
}

func (p *txPipeline) Run(path string, summary *model.Summary) error {
	txs, err := p.decode(p.account, path)
	if err != nil {
		return err
	}
	summary.AddSource(path)

	for i := range txs {
		p.guessMeta(&txs[i])
	}

	byMonth := make(map[string][]model.Transaction)
	for _, tx := range txs {
		byMonth[tx.Month()] = append(byMonth[tx.Month()], tx)
	}
	months := make([]string, 0, len(byMonth))
	for m := range byMonth {
		months = append(months, m)
	}
	sort.Strings(months)

	for _, m := range months {
		target := filepath.Join(p.cfg.RootDir, m, fmt.Sprintf("%s.%s", m, p.account.Filename()))
		p.log.Debug().Str("path", target).Int("rows", len(byMonth[m])).Msg("appending transactions")
		if err := ledger.AppendTransactions(target, p.account.Currency, byMonth[m]); err != nil {
			return err
		}
		summary.AddTarget(target)
	}
	return nil
}

// guessMeta applies the institution default type, then the user's
// autocomplete rules in order; the first matching rule wins.
func (p *txPipeline) guessMeta(tx *model.Transaction) {
	if p.defaults != nil {
		p.defaults(p.account, tx)
	}
	for _, c := range p.cfg.Autocomplete {
		if c.Match(tx.Label) {
			c.Apply(tx)
			break
		}
	}
}

type balancePipeline struct {
	account model.Account
	cfg     *config.Configuration
	log     zerolog.Logger
	decode  balanceDecoder
}

func (p *balancePipeline) Run(path string, summary *model.Summary) error {
	balances, err := p.decode(p.account, path)
	if err != nil {
		return err
	}

	target := filepath.Join(p.cfg.RootDir, p.account.BalanceFilename())
	p.log.Debug().Str("path", target).Int("rows", len(balances)).Msg("inserting balances")
	if err := ledger.InsertBalances(target, balances); err != nil {
		return err
	}
	summary.AddSource(path)
	summary.AddTarget(target)

	if p.account.NeedsConversion() {
		converted, err := convertBalances(p.account, p.cfg, p.log)
		if err != nil {
			return err
		}
		summary.AddTarget(converted)
	}
	return nil
}

// noopTransactionPipeline skips integration for accounts that have no
// transaction data to offer (or that are intentionally excluded).
type noopTransactionPipeline struct{}

func (noopTransactionPipeline) Run(string, *model.Summary) error { return nil }

type noopBalancePipeline struct{}

func (noopBalancePipeline) Run(string, *model.Summary) error { return nil }
