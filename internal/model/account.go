package model

import (
	"fmt"
	"regexp"
	"time"
)

// Company identifies the institution that produced an export file. The
// concrete value drives filename patterns, raw-format decoding, and default
// transaction classification.
type Company string

const (
	CompanyBNP           Company = "BNP"
	CompanyBoursorama    Company = "Boursorama"
	CompanyCaisseEpargne Company = "Caisse d'Epargne"
	CompanyDegiro        Company = "Degiro"
	CompanyFortuneo      Company = "Fortuneo"
	CompanyOctober       Company = "October"
	CompanyRevolut       Company = "Revolut"
	CompanyUnknown       Company = ""
)

// BaseCurrency is the target of all currency conversion. It is not
// configurable.
const BaseCurrency = "EUR"

// Revolut account sub-types. Commodities accounts (gold, silver) are
// intentionally never integrated.
const (
	RevolutTypeCash        = "cash"
	RevolutTypeCommodities = "commodities"
)

// Account identifies a financial account and knows how to recognize the
// export files it produces.
type Account struct {
	// Company is the institution tag used for pipeline dispatch.
	Company Company
	// Type is a short institution-specific code, e.g. CHQ (Compte de
	// Chèque), LVA (Livret A), LDD (Livret de Développement Durable),
	// CDI (Crédit Immobilier).
	Type string
	// ID is the symbolic name used in ledger filenames. Unique across the
	// configured account set.
	ID string
	// Num is the account number, or the suffix of it, used to select the
	// right sub-account inside multi-account export files.
	Num string
	// Currency is the ISO 4217 code of the account currency.
	Currency string
	// Patterns match the base names of downloaded export files. All
	// patterns are anchored at the start of the name.
	Patterns []*regexp.Regexp
}

// boursoramaDatePattern extracts the export date that Boursorama encodes
// only in the filename.
var boursoramaDatePattern = regexp.MustCompile(`^export-operations-(?P<date>\d{2}-\d{2}-\d{4})_.+\.csv`)

// anchor compiles a pattern anchored at the start of the filename.
func anchor(expr string) *regexp.Regexp {
	return regexp.MustCompile("^(?:" + expr + ")")
}

// NewAccount creates a generic account with user-supplied filename patterns.
func NewAccount(accountType, id, num, currency string, exprs []string) Account {
	patterns := make([]*regexp.Regexp, 0, len(exprs))
	for _, e := range exprs {
		patterns = append(patterns, anchor(e))
	}
	return Account{
		Company:  CompanyUnknown,
		Type:     accountType,
		ID:       id,
		Num:      num,
		Currency: currency,
		Patterns: patterns,
	}
}

// NewBNPAccount creates a BNP Paribas account. Export files are named
// E{digits}{last-4-digits-of-account}.csv.
func NewBNPAccount(accountType, id, num, currency string) Account {
	suffix := num
	if len(suffix) > 4 {
		suffix = suffix[len(suffix)-4:]
	}
	return Account{
		Company:  CompanyBNP,
		Type:     accountType,
		ID:       id,
		Num:      num,
		Currency: currency,
		Patterns: []*regexp.Regexp{anchor(`E\d{0,3}` + regexp.QuoteMeta(suffix) + `\.csv`)},
	}
}

// NewBoursoramaAccount creates a Boursorama account. Export files carry the
// operations date in the filename.
func NewBoursoramaAccount(accountType, id, num, currency string) Account {
	return Account{
		Company:  CompanyBoursorama,
		Type:     accountType,
		ID:       id,
		Num:      num,
		Currency: currency,
		Patterns: []*regexp.Regexp{boursoramaDatePattern},
	}
}

// NewCaisseEpargneAccount creates a Caisse d'Epargne account. Export files
// are named {accountNum}_{DDMMYYYY}_{DDMMYYYY}.csv; the configured num may
// be a suffix of the full account number.
func NewCaisseEpargneAccount(accountType, id, num, currency string) Account {
	return Account{
		Company:  CompanyCaisseEpargne,
		Type:     accountType,
		ID:       id,
		Num:      num,
		Currency: currency,
		Patterns: []*regexp.Regexp{anchor(`\d*` + regexp.QuoteMeta(num) + `_\d{8}_\d{8}\.csv`)},
	}
}

// NewDegiroAccount creates a Degiro account. The portfolio export has a
// fixed name.
func NewDegiroAccount(accountType, id, num, currency string) Account {
	return Account{
		Company:  CompanyDegiro,
		Type:     accountType,
		ID:       id,
		Num:      num,
		Currency: currency,
		Patterns: []*regexp.Regexp{anchor(`Portfolio\.csv`)},
	}
}

// NewFortuneoAccount creates a Fortuneo account.
func NewFortuneoAccount(accountType, id, num, currency string) Account {
	return Account{
		Company:  CompanyFortuneo,
		Type:     accountType,
		ID:       id,
		Num:      num,
		Currency: currency,
		Patterns: []*regexp.Regexp{
			anchor(`HistoriqueOperations_(\d+)_du_\d{2}_\d{2}_\d{4}_au_\d{2}_\d{2}_\d{4}\.csv`),
		},
	}
}

// NewOctoberAccount creates an October account. The full account num is
// required because it appears in the export filename.
func NewOctoberAccount(accountType, id, num, currency string) Account {
	return Account{
		Company:  CompanyOctober,
		Type:     accountType,
		ID:       id,
		Num:      num,
		Currency: currency,
		Patterns: []*regexp.Regexp{anchor(`remboursements-` + regexp.QuoteMeta(num) + `\.xlsx`)},
	}
}

// NewRevolutAccount creates a Revolut account. Revolut changed its export
// naming over time, so several patterns are recognized; extraExprs lets the
// user add more without waiting for a release.
func NewRevolutAccount(accountType, id, num, currency string, extraExprs []string) Account {
	patterns := []*regexp.Regexp{
		anchor(`Revolut-(.*)-Statement-(.*)\.csv`),
		anchor(`account-statement_(\d{4}-\d{2}-\d{2})_(\d{4}-\d{2}-\d{2})_undefined-undefined_` + regexp.QuoteMeta(num) + `\.csv`),
	}
	for _, e := range extraExprs {
		patterns = append(patterns, anchor(e))
	}
	return Account{
		Company:  CompanyRevolut,
		Type:     accountType,
		ID:       id,
		Num:      num,
		Currency: currency,
		Patterns: patterns,
	}
}

// UnknownAccount is the sentinel returned when a ledger filename cannot be
// mapped back to a configured account.
func UnknownAccount() Account {
	return NewAccount("unknown", "unknown", "unknown", BaseCurrency, []string{"unknown"})
}

// Match reports whether any of the account's patterns matches the file's
// base name.
func (a Account) Match(name string) bool {
	for _, p := range a.Patterns {
		if p.MatchString(name) {
			return true
		}
	}
	return false
}

// IsAccount reports whether fullNum designates this account. Banks bundle
// several sub-accounts in one export, identified by full account numbers;
// the configured num is a suffix of them.
func (a Account) IsAccount(fullNum string) bool {
	return len(fullNum) >= len(a.Num) && fullNum[len(fullNum)-len(a.Num):] == a.Num
}

// Filename returns the per-account ledger filename, without the month
// prefix.
func (a Account) Filename() string {
	return a.ID + ".csv"
}

// BalanceFilename returns the filename of the balance history in the
// account's own currency.
func (a Account) BalanceFilename() string {
	return fmt.Sprintf("balance.%s.%s.csv", a.ID, a.Currency)
}

// ConvertedBalanceFilename returns the filename of the balance history
// converted to the base currency.
func (a Account) ConvertedBalanceFilename() string {
	return fmt.Sprintf("balance.%s.%s.csv", a.ID, BaseCurrency)
}

// NeedsConversion reports whether balances must be converted to the base
// currency.
func (a Account) NeedsConversion() bool {
	return a.Currency != BaseCurrency
}

// MaskedNum returns a partially hidden account number for display.
func (a Account) MaskedNum() string {
	num := a.Num
	if len(num) > 4 {
		num = num[len(num)-4:]
	}
	return "****" + num
}

// OperationsDate extracts the export date that Boursorama encodes in the
// filename instead of in any data row.
func (a Account) OperationsDate(filename string) (time.Time, error) {
	m := boursoramaDatePattern.FindStringSubmatch(filename)
	if m == nil {
		return time.Time{}, fmt.Errorf("failed to find date in filename: %s", filename)
	}
	d, err := time.Parse("02-01-2006", m[boursoramaDatePattern.SubexpIndex("date")])
	if err != nil {
		return time.Time{}, fmt.Errorf("parsing date in filename %s: %w", filename, err)
	}
	return d, nil
}
