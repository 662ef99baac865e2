package source

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Shared coercion helpers for the per-source mappers. Upstreams disagree on
// field names and on whether numbers arrive as strings, so every mapper
// funnels its guesswork through these. All helpers are total: bad input
// yields the documented default, never an error.

var numberRegex = regexp.MustCompile(`\d+(?:[.,]\d+)?`)

// FirstString returns the first non-blank value, or "" if none.
func FirstString(vals ...string) string {
	for _, v := range vals {
		if strings.TrimSpace(v) != "" {
			return strings.TrimSpace(v)
		}
	}
	return ""
}

// TitleOrFallback returns a trimmed non-empty title, falling back to
// "Untitled product" when the source omits one.
func TitleOrFallback(vals ...string) string {
	if t := FirstString(vals...); t != "" {
		return t
	}
	return "Untitled product"
}

// IDOrSynthesized returns the upstream id, or a synthesized one when the
// source omits it. Every product must carry an id unique within its source.
func IDOrSynthesized(id, sourceName string) string {
	if strings.TrimSpace(id) != "" {
		return strings.TrimSpace(id)
	}
	return sourceName + "-" + uuid.NewString()
}

// ParsePrice extracts a positive price from free-form upstream text such as
// "12.50", "US $1.20-3.40" or "¥8,5". Parse failures and non-positive values
// yield nil ("absent"), never zero-as-unknown.
func ParsePrice(raw string) *float64 {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}

	match := numberRegex.FindString(raw)
	if match == "" {
		return nil
	}
	match = strings.ReplaceAll(match, ",", ".")

	d, err := decimal.NewFromString(match)
	if err != nil || !d.IsPositive() {
		return nil
	}
	f, _ := d.Float64()
	return &f
}

// ParsePriceNumber converts an already-numeric upstream price, dropping
// non-positive values.
func ParsePriceNumber(v float64) *float64 {
	if v <= 0 {
		return nil
	}
	return &v
}

// ParseMOQ parses a minimum order quantity, defaulting to 1 when absent or
// unparsable.
func ParseMOQ(raw string) int {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 1
	}
	match := numberRegex.FindString(raw)
	if match == "" {
		return 1
	}
	n, err := strconv.Atoi(strings.SplitN(strings.ReplaceAll(match, ",", "."), ".", 2)[0])
	if err != nil || n < 1 {
		return 1
	}
	return n
}

// CurrencyOrDefault normalizes a currency code, defaulting to USD.
func CurrencyOrDefault(code string) string {
	code = strings.ToUpper(strings.TrimSpace(code))
	if code == "" {
		return "USD"
	}
	return code
}

// Rating returns a pointer to v when it falls in a plausible rating range.
func Rating(v float64) *float64 {
	if v <= 0 || v > 5 {
		return nil
	}
	return &v
}

// Count returns a pointer to n when it is positive; absent counts decode
// as zero and stay absent.
func Count(n int) *int {
	if n <= 0 {
		return nil
	}
	return &n
}
