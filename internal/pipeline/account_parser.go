package pipeline

import (
	"path/filepath"
	"strings"

	"github.com/fintk-dev/fintk/internal/config"
	"github.com/fintk-dev/fintk/internal/model"
)

// AccountParser reverse-maps a ledger or balance filename to the account
// that produced it. Filenames follow the conventions
// {YYYY-MM}.{account_id}.csv and balance.{account_id}.{currency}.csv.
type AccountParser struct {
	accounts map[string]model.Account
}

func NewAccountParser(cfg *config.Configuration) *AccountParser {
	return &AccountParser{accounts: cfg.AccountsByID()}
}

// Parse resolves a monthly ledger path to its account. Unrecognized ids
// return the sentinel unknown account; callers handle it gracefully.
func (p *AccountParser) Parse(path string) model.Account {
	parts := strings.Split(filepath.Base(path), ".")
	if len(parts) == 3 {
		if account, ok := p.accounts[parts[1]]; ok {
			return account
		}
	}
	return model.UnknownAccount()
}

// BalanceFile describes a resolved balance-history path.
type BalanceFile struct {
	Account model.Account
	Path    string
	// Original is true for the native-currency series, false for the
	// base-currency conversion.
	Original bool
}

// ParseBalancePath resolves a balance-history path. The second segment is
// the account id, the third the currency of the series.
func (p *AccountParser) ParseBalancePath(path string) (BalanceFile, bool) {
	parts := strings.Split(filepath.Base(path), ".")
	if len(parts) != 4 || parts[0] != "balance" {
		return BalanceFile{}, false
	}
	account, ok := p.accounts[parts[1]]
	if !ok {
		return BalanceFile{}, false
	}
	return BalanceFile{
		Account:  account,
		Path:     path,
		Original: parts[2] == account.Currency,
	}, true
}
