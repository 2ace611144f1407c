// Package normalize holds the field-level rules applied to spreadsheet
// values before they are persisted: dates, monetary amounts, identifiers
// and free text.
package normalize

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// ErrInvalidAmount reports a monetary value with digits that does not parse
// after cleaning. The amount is treated as absent.
var ErrInvalidAmount = errors.New("invalid amount")

// DateLayouts are tried in order; the first one that parses wins.
var DateLayouts = []string{"2/1/2006", "2-1-2006", "2006-1-2", "2.1.2006", "1/2/2006"}

var nonNumeric = regexp.MustCompile(`[^\d.]`)

// ParseDate returns the calendar date for s and false when no layout matches.
func ParseDate(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range DateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// ParseAmount converts a locale-formatted monetary string into a float.
// Commas become periods and every character other than a digit or a period
// is dropped. When more than one period survives only the last one is kept
// as the decimal point, so "R$ 1.234,56" yields 1234.56 while "1.234"
// yields 1.234.
//
// The result is nil when the value is absent: empty, "nan", or a
// placeholder with no digits such as "-" or "R$ -". A value with digits
// that still does not parse is also nil, reported with ErrInvalidAmount so
// callers can log it; it never invalidates the row.
func ParseAmount(s string) (*float64, error) {
	trimmed := strings.TrimSpace(s)
	if trimmed == "" || isNaN(trimmed) {
		return nil, nil
	}
	cleaned := nonNumeric.ReplaceAllString(strings.ReplaceAll(trimmed, ",", "."), "")
	if !strings.ContainsAny(cleaned, "0123456789") {
		return nil, nil
	}
	if i := strings.LastIndex(cleaned, "."); i >= 0 && strings.Count(cleaned, ".") > 1 {
		cleaned = strings.ReplaceAll(cleaned[:i], ".", "") + cleaned[i:]
	}
	value, err := strconv.ParseFloat(cleaned, 64)
	if err != nil {
		return nil, fmt.Errorf("%w: %q", ErrInvalidAmount, s)
	}
	return &value, nil
}

// Code normalizes a chart-of-accounts code: a value read as the float
// 1001.0 becomes "1001".
func Code(s string) string {
	s = strings.TrimSpace(s)
	if isNaN(s) {
		return ""
	}
	return strings.TrimSuffix(s, ".0")
}

// Identifier normalizes branch, bank branch and account numbers by removing
// every ".0" left behind by float coercion.
func Identifier(s string) string {
	s = strings.ReplaceAll(strings.TrimSpace(s), ".0", "")
	if isNaN(s) {
		return ""
	}
	return s
}

// Text trims free text and blanks out the "nan" placeholder.
func Text(s string) string {
	s = strings.TrimSpace(s)
	if isNaN(s) {
		return ""
	}
	return s
}

// Fold lower-cases s and strips diacritics ("Salário" -> "salario").
func Fold(s string) string {
	lower := strings.ToLower(s)
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	folded, _, err := transform.String(t, lower)
	if err != nil {
		return lower
	}
	return folded
}

func isNaN(s string) bool {
	return strings.EqualFold(s, "nan")
}
