package util

import (
	"regexp"
	"strings"

	"github.com/shopspring/decimal"
)

var (
	reAmountNoise = regexp.MustCompile(`[^\d,.\-]`)
	reCentsNoise  = regexp.MustCompile(`[^\d\-]`)
)

// NormalizeAmount parses a bank-formatted amount such as "S/ 1.234,56" or
// "1,234.56". Anything unparseable is zero.
func NormalizeAmount(raw string) decimal.Decimal {
	s := reAmountNoise.ReplaceAllString(raw, "")

	dot := strings.LastIndex(s, ".")
	comma := strings.LastIndex(s, ",")
	switch {
	case dot >= 0 && comma >= 0:
		// the right-most separator is the decimal one
		if comma > dot {
			s = strings.ReplaceAll(s, ".", "")
			s = strings.ReplaceAll(s, ",", ".")
		} else {
			s = strings.ReplaceAll(s, ",", "")
		}
	case comma >= 0:
		s = strings.ReplaceAll(s, ",", ".")
	}

	if parts := strings.Split(s, "."); len(parts) > 2 {
		s = strings.Join(parts[:len(parts)-1], "") + "." + parts[len(parts)-1]
	}

	return parseDecimalOrZero(s)
}

// NormalizeCents reads the digits of raw as an integer number of cents.
func NormalizeCents(raw string) decimal.Decimal {
	s := reCentsNoise.ReplaceAllString(raw, "")
	return parseDecimalOrZero(s).Shift(-2)
}

func parseDecimalOrZero(s string) decimal.Decimal {
	if s == "" {
		return decimal.Zero
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero
	}
	return d
}
