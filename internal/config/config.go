// Package config loads the finance-tools.yml user configuration and turns it
// into the Configuration bag consumed by the pipelines.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/fintk-dev/fintk/internal/model"
)

var validate = validator.New()

// fileConfig mirrors the YAML layout of finance-tools.yml.
type fileConfig struct {
	Accounts           map[string]fileAccount `yaml:"accounts" validate:"required,dive"`
	Categories         []string               `yaml:"categories"`
	CategoriesToRename map[string]string      `yaml:"categories_to_rename"`
	AutoComplete       []fileCompletion       `yaml:"auto-complete" validate:"dive"`
	ExchangeRate       fileExchangeRate       `yaml:"exchange-rate"`
	DownloadDir        string                 `yaml:"download-dir" validate:"required"`
}

type fileAccount struct {
	Company  string `yaml:"company" validate:"required"`
	Type     string `yaml:"type" validate:"required"`
	Num      string `yaml:"id" validate:"required"`
	Currency string `yaml:"currency" validate:"omitempty,iso4217"`
	// Expr overrides the filename pattern of generic accounts. Institutions
	// with a fixed naming convention reject it.
	Expr string `yaml:"expr"`
	// Expressions are additive extra patterns, honored by Revolut only.
	Expressions []string `yaml:"expressions"`
}

type fileCompletion struct {
	Expr string `yaml:"expr" validate:"required"`
	Type string `yaml:"type" validate:"required,oneof=income expense transfer credit tax"`
	Cat  string `yaml:"cat" validate:"required,contains=/"`
	Desc string `yaml:"desc"`
}

type fileExchangeRate struct {
	WatchedCurrencies []string `yaml:"watched-currencies" validate:"dive,iso4217"`
}

// Configuration is the read-only bag of settings threaded through every
// command. It is built once per run.
type Configuration struct {
	Accounts           []model.Account
	CategorySet        map[string]struct{}
	CategoriesToRename map[string]string
	Autocomplete       []model.TxCompletion
	DownloadDir        string
	RootDir            string
	WatchedCurrencies  []string
}

// Load reads and validates the configuration file, then applies environment
// overrides (DOWNLOAD_DIR). The configuration root directory is the folder
// containing the file.
func Load(path string) (*Configuration, error) {
	cfg, err := parseYAML(path)
	if err != nil {
		return nil, err
	}
	if dir := os.Getenv("DOWNLOAD_DIR"); dir != "" {
		cfg.DownloadDir = expandUser(dir)
	}
	return cfg, nil
}

func parseYAML(path string) (*Configuration, error) {
	buf, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading configuration: %w", err)
	}

	var fc fileConfig
	if err := yaml.Unmarshal(buf, &fc); err != nil {
		return nil, fmt.Errorf("parsing configuration %s: %w", path, err)
	}
	if err := validate.Struct(fc); err != nil {
		return nil, fmt.Errorf("invalid configuration %s: %w", path, err)
	}

	accounts, err := loadAccounts(fc.Accounts)
	if err != nil {
		return nil, err
	}

	autocomplete, err := loadAutocomplete(fc.AutoComplete)
	if err != nil {
		return nil, err
	}

	categorySet := make(map[string]struct{}, len(fc.Categories))
	for _, c := range fc.Categories {
		categorySet[c] = struct{}{}
	}

	renames := fc.CategoriesToRename
	if renames == nil {
		renames = map[string]string{}
	}

	return &Configuration{
		Accounts:           accounts,
		CategorySet:        categorySet,
		CategoriesToRename: renames,
		Autocomplete:       autocomplete,
		DownloadDir:        expandUser(fc.DownloadDir),
		RootDir:            filepath.Dir(path),
		WatchedCurrencies:  fc.ExchangeRate.WatchedCurrencies,
	}, nil
}

// fixedConvention lists the companies whose export filenames cannot be
// overridden by a user pattern.
var fixedConvention = map[string]bool{
	string(model.CompanyBNP):           true,
	string(model.CompanyBoursorama):    true,
	string(model.CompanyCaisseEpargne): true,
	string(model.CompanyDegiro):        true,
	string(model.CompanyFortuneo):      true,
	string(model.CompanyOctober):       true,
	string(model.CompanyRevolut):       true,
}

func loadAccounts(raw map[string]fileAccount) ([]model.Account, error) {
	accounts := make([]model.Account, 0, len(raw))
	for id, fields := range raw {
		currency := fields.Currency
		if currency == "" {
			currency = model.BaseCurrency
		}
		if fields.Expr != "" && fixedConvention[fields.Company] {
			fmt.Printf("%s has its own naming convention for downloaded files,"+
				" you cannot overwrite it: expr=%q\n", fields.Company, fields.Expr)
		}

		switch model.Company(fields.Company) {
		case model.CompanyBNP:
			accounts = append(accounts, model.NewBNPAccount(fields.Type, id, fields.Num, currency))
		case model.CompanyBoursorama:
			accounts = append(accounts, model.NewBoursoramaAccount(fields.Type, id, fields.Num, currency))
		case model.CompanyCaisseEpargne:
			accounts = append(accounts, model.NewCaisseEpargneAccount(fields.Type, id, fields.Num, currency))
		case model.CompanyDegiro:
			accounts = append(accounts, model.NewDegiroAccount(fields.Type, id, fields.Num, currency))
		case model.CompanyFortuneo:
			accounts = append(accounts, model.NewFortuneoAccount(fields.Type, id, fields.Num, currency))
		case model.CompanyOctober:
			// The full num is required by the filename lookup.
			accounts = append(accounts, model.NewOctoberAccount(fields.Type, id, fields.Num, currency))
		case model.CompanyRevolut:
			accounts = append(accounts, model.NewRevolutAccount(fields.Type, id, fields.Num, currency, fields.Expressions))
		default:
			expr := fields.Expr
			if expr == "" {
				expr = "unknown"
			}
			accounts = append(accounts, model.NewAccount(fields.Type, id, fields.Num, currency, []string{expr}))
		}
	}

	if err := checkDuplicateSuffixes(accounts); err != nil {
		return nil, err
	}

	sort.Slice(accounts, func(i, j int) bool { return accounts[i].ID < accounts[j].ID })
	return accounts, nil
}

// checkDuplicateSuffixes rejects Caisse d'Epargne account sets where two
// accounts share the same number suffix: since the suffix routes downloaded
// files, a duplicate makes the routing ambiguous.
func checkDuplicateSuffixes(accounts []model.Account) error {
	byNum := make(map[string][]string)
	for _, a := range accounts {
		if a.Company == model.CompanyCaisseEpargne {
			byNum[a.Num] = append(byNum[a.Num], a.ID)
		}
	}

	var details []string
	for num, ids := range byNum {
		if len(ids) > 1 {
			sort.Strings(ids)
			details = append(details, fmt.Sprintf("  - Account ID suffix %q is used by: %s", num, strings.Join(ids, ", ")))
		}
	}
	if len(details) > 0 {
		sort.Strings(details)
		return fmt.Errorf("duplicate Caisse d'Epargne account ID suffixes found,"+
			" this would cause ambiguous file matching:\n%s", strings.Join(details, "\n"))
	}
	return nil
}

func loadAutocomplete(raw []fileCompletion) ([]model.TxCompletion, error) {
	completions := make([]model.TxCompletion, 0, len(raw))
	for _, r := range raw {
		c, err := model.NewTxCompletion(r.Expr, model.TxType(r.Type), r.Cat)
		if err != nil {
			return nil, err
		}
		completions = append(completions, c)
	}
	return completions, nil
}

// expandUser resolves a leading ~ against the current user's home directory.
func expandUser(path string) string {
	if path == "~" || strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err == nil {
			return filepath.Join(home, strings.TrimPrefix(strings.TrimPrefix(path, "~"), "/"))
		}
	}
	return path
}

// AccountsByID indexes the configured accounts by symbolic id.
func (c *Configuration) AccountsByID() map[string]model.Account {
	byID := make(map[string]model.Account, len(c.Accounts))
	for _, a := range c.Accounts {
		byID[a.ID] = a
	}
	return byID
}

// Categories returns the sorted configured categories for which the filter
// returns true. A nil filter keeps everything.
func (c *Configuration) Categories(filter func(string) bool) []string {
	cats := make([]string, 0, len(c.CategorySet))
	for cat := range c.CategorySet {
		if filter == nil || filter(cat) {
			cats = append(cats, cat)
		}
	}
	sort.Strings(cats)
	return cats
}

// HasCategory reports whether the "main/sub" pair is configured.
func (c *Configuration) HasCategory(cat string) bool {
	_, ok := c.CategorySet[cat]
	return ok
}

// ExchangeRatePath returns the path of the canonical exchange-rate table.
func (c *Configuration) ExchangeRatePath() string {
	return filepath.Join(c.RootDir, "exchange-rate.csv")
}
