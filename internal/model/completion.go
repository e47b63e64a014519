package model

import (
	"fmt"
	"regexp"
	"strings"
)

// TxCompletion auto-classifies a transaction from its label. Rules are
// evaluated in configured order and the first match wins.
type TxCompletion struct {
	Regex        *regexp.Regexp
	Type         TxType
	MainCategory string
	SubCategory  string
}

// NewTxCompletion compiles an auto-complete rule. The expression is anchored
// at the start of the label; cat is a "main/sub" pair.
func NewTxCompletion(expr string, txType TxType, cat string) (TxCompletion, error) {
	re, err := regexp.Compile("^(?:" + expr + ")")
	if err != nil {
		return TxCompletion{}, fmt.Errorf("compiling auto-complete expression %q: %w", expr, err)
	}
	main, sub, ok := strings.Cut(cat, "/")
	if !ok {
		return TxCompletion{}, fmt.Errorf("auto-complete category %q is not a main/sub pair", cat)
	}
	return TxCompletion{Regex: re, Type: txType, MainCategory: main, SubCategory: sub}, nil
}

// Match reports whether the rule applies to the given label.
func (c TxCompletion) Match(label string) bool {
	return c.Regex.MatchString(label)
}

// Apply assigns the rule's classification to the transaction.
func (c TxCompletion) Apply(tx *Transaction) {
	tx.Type = c.Type
	tx.MainCategory = c.MainCategory
	tx.SubCategory = c.SubCategory
}
