package pipeline

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"slices"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/fintk-dev/fintk/internal/config"
	"github.com/fintk-dev/fintk/internal/ledger"
	"github.com/fintk-dev/fintk/internal/model"
)

const webstatFormat = "Webstat: ';'-separated, 6 metadata lines " +
	"(Titre, Code série, Unité, Magnitude, Méthode d'observation, Source), dd/mm/yyyy dates, ',' decimals, '-' for missing"

var webstatPattern = regexp.MustCompile(`^Webstat_Export_(.+)\.csv$`)

// IsExchangeRateFile reports whether name is a Banque de France exchange
// rate export.
func IsExchangeRateFile(name string) bool {
	return webstatPattern.MatchString(name)
}

// currencyCodePattern extracts the ISO code from a parenthesized suffix in
// a unit label, e.g. "Dollar Australien (AUD)".
var currencyCodePattern = regexp.MustCompile(`\((\w+)\)`)

// ExchangeRatePipeline folds a Banque de France daily rate export into the
// canonical exchange-rate table. The output is restricted to the watched
// currencies, sorted ascending, and padded with empty rows up to today so
// that a later forward-fill has a row to land on for recent dates.
type ExchangeRatePipeline struct {
	cfg *config.Configuration
	log zerolog.Logger

	// nowFunc overrides the clock in tests.
	nowFunc func() time.Time
}

func (p *ExchangeRatePipeline) now() time.Time {
	if p.nowFunc != nil {
		return p.nowFunc()
	}
	return time.Now()
}

func (p *ExchangeRatePipeline) Run(path string, summary *model.Summary) error {
	incoming, err := p.parse(path)
	if err != nil {
		return err
	}

	target := p.cfg.ExchangeRatePath()
	existing, err := ledger.ReadRateFile(target)
	if err != nil {
		return err
	}

	merged := ledger.MergeRates(existing, incoming)
	merged.PadTo(p.now())

	p.log.Debug().Str("path", target).Int("rows", len(merged.Rows)).Msg("writing exchange rates")
	if err := ledger.WriteRateFile(target, merged); err != nil {
		return err
	}
	summary.AddSource(path)
	summary.AddTarget(target)
	return nil
}

// parse decodes the export. The first six lines describe the series; the
// third one (Unité) carries the currency code of each column.
func (p *ExchangeRatePipeline) parse(path string) (*ledger.RateTable, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, &DataError{Path: path, Format: webstatFormat, Err: err}
	}
	defer f.Close()

	cr := csv.NewReader(f)
	cr.Comma = ';'
	cr.FieldsPerRecord = -1

	records, err := cr.ReadAll()
	if err != nil {
		return nil, &DataError{Path: path, Format: webstatFormat, Err: err}
	}
	if len(records) < 6 {
		err := fmt.Errorf("expected 6 metadata lines, got %d lines in total", len(records))
		return nil, &DataError{Path: path, Format: webstatFormat, Err: err}
	}

	// Column code per position, from the unit labels.
	units := records[2]
	codes := make([]string, len(units))
	for i, u := range units {
		if m := currencyCodePattern.FindStringSubmatch(u); m != nil {
			codes[i] = m[1]
		}
	}

	watched := make(map[string]bool, len(p.cfg.WatchedCurrencies))
	for _, c := range p.cfg.WatchedCurrencies {
		watched[c] = true
	}

	table := &ledger.RateTable{}
	for _, c := range p.cfg.WatchedCurrencies {
		if slices.Contains(codes, c) {
			table.Currencies = append(table.Currencies, c)
		}
	}

	for i, rec := range records[6:] {
		if len(rec) == 0 || strings.TrimSpace(rec[0]) == "" {
			continue
		}
		date, err := parseFrenchDate(rec[0])
		if err != nil {
			return nil, &DataError{Path: path, Format: webstatFormat, Err: fmt.Errorf("row %d: %w", i+7, err)}
		}

		cells := make(map[string]decimal.NullDecimal)
		for j, raw := range rec {
			code := ""
			if j < len(codes) {
				code = codes[j]
			}
			if code == "" || !watched[code] {
				continue
			}
			raw = strings.TrimSpace(raw)
			if raw == "" || raw == "-" {
				continue
			}
			rate, err := parseFrenchAmount(raw)
			if err != nil {
				return nil, &DataError{Path: path, Format: webstatFormat, Err: fmt.Errorf("row %d: %s: %w", i+7, code, err)}
			}
			cells[code] = decimal.NullDecimal{Decimal: rate, Valid: true}
		}
		table.Rows = append(table.Rows, ledger.RateRow{Date: date, Cells: cells})
	}

	// Ascending by date; the source lists newest first.
	empty := &ledger.RateTable{}
	return ledger.MergeRates(empty, table), nil
}

// ConvertBalancePipeline converts a native-currency balance history into
// the base currency by a date join against the exchange-rate table:
// amount in EUR = native amount / rate, with the rate expressed as units
// of foreign currency per euro. Missing rates are forward-filled; a date
// before the earliest available rate yields an empty amount rather than a
// fabricated one.
type ConvertBalancePipeline struct {
	account model.Account
	cfg     *config.Configuration
	log     zerolog.Logger
}

func (p *ConvertBalancePipeline) Run(balanceCSV string, summary *model.Summary) error {
	target, err := convertBalances(p.account, p.cfg, p.log)
	if err != nil {
		return err
	}
	summary.AddSource(balanceCSV)
	summary.AddTarget(target)
	return nil
}

// convertBalances writes the base-currency variant of the account's
// balance history and returns its path.
func convertBalances(account model.Account, cfg *config.Configuration, log zerolog.Logger) (string, error) {
	source := filepath.Join(cfg.RootDir, account.BalanceFilename())
	balances, err := ledger.ReadBalanceFile(source)
	if err != nil {
		return "", err
	}

	rates, err := ledger.ReadRateFile(cfg.ExchangeRatePath())
	if err != nil {
		return "", err
	}
	rates.ForwardFill()

	log.Debug().
		Str("account", account.ID).
		Str("from", account.Currency).
		Str("to", model.BaseCurrency).
		Msg("converting balance history")

	target := filepath.Join(cfg.RootDir, account.ConvertedBalanceFilename())
	f, err := os.Create(target)
	if err != nil {
		return "", fmt.Errorf("creating %s: %w", target, err)
	}

	cw := csv.NewWriter(f)
	cw.Write(strings.Split(ledger.BalanceHeader, ","))
	for _, b := range balances {
		amount := ""
		if rate, ok := rates.Rate(b.Date, account.Currency); ok && !rate.IsZero() {
			amount = b.Amount.Div(rate).StringFixed(2)
		}
		cw.Write([]string{b.Date.Format(model.DateFormat), amount, model.BaseCurrency})
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		f.Close()
		return "", fmt.Errorf("writing %s: %w", target, err)
	}
	return target, f.Close()
}
