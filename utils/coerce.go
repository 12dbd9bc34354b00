package utils

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Measurement fields arrive as free text from inspection forms. Parsing is
// lenient on purpose: a value that does not parse is stored as "no value"
// instead of failing the whole write.

func ParseDecimal(s string) *decimal.Decimal {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return nil
	}
	return &d
}

var dateTimeLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// ParseDateTime accepts the date shapes the legacy forms send. Unparseable
// input maps to nil, not an error.
func ParseDateTime(s string) *time.Time {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	for _, layout := range dateTimeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return &t
		}
	}
	return nil
}
