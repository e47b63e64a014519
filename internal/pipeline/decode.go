package pipeline

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/text/encoding/charmap"

	"github.com/fintk-dev/fintk/internal/model"
)

// frenchDateFormat is the day-first layout used by French banks.
const frenchDateFormat = "02/01/2006"

// latin1 wraps a reader of ISO-8859-1 bytes into a UTF-8 stream. Several
// French banks still export in that encoding.
func latin1(r io.Reader) io.Reader {
	return charmap.ISO8859_1.NewDecoder().Reader(r)
}

var frenchAmountReplacer = strings.NewReplacer(" ", "", " ", "", ",", ".")

// parseFrenchAmount parses a French-locale decimal: comma as decimal
// separator, space (or non-breaking space) as thousands separator.
func parseFrenchAmount(s string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(frenchAmountReplacer.Replace(strings.TrimSpace(s)))
	if err != nil {
		return decimal.Decimal{}, fmt.Errorf("parsing amount %q: %w", s, err)
	}
	return d, nil
}

func parseFrenchDate(s string) (time.Time, error) {
	d, err := time.Parse(frenchDateFormat, strings.TrimSpace(s))
	if err != nil {
		return time.Time{}, fmt.Errorf("parsing date %q: %w", s, err)
	}
	return d, nil
}

// parseFlexibleDate accepts either the canonical calendar date, an ISO
// datetime, or the French day-first form.
func parseFlexibleDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range []string{model.DateFormat, model.DateFormat + " 15:04:05", frenchDateFormat} {
		if d, err := time.Parse(layout, s); err == nil {
			return d, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized date %q", s)
}

// headerIndex maps lower-cased column names to their position. Boursorama
// renamed several columns over the years, only case changed.
func headerIndex(header []string) map[string]int {
	idx := make(map[string]int, len(header))
	for i, name := range header {
		idx[strings.ToLower(strings.TrimSpace(name))] = i
	}
	return idx
}
