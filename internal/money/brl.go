// Package money parses and formats Brazilian real amounts.
package money

import (
	"errors"
	"fmt"
	"math"
	"regexp"
	"strings"

	gomoney "github.com/Rhymond/go-money"
	"github.com/shopspring/decimal"
)

var ErrUnparseable = errors.New("unparseable amount")

var (
	reThousandsDot = regexp.MustCompile(`^-?\d{1,3}(\.\d{3})+$`)
	reDigits       = regexp.MustCompile(`^-?\d+(\.\d+)?$`)
)

// MaxAmount is the largest amount accepted as a single debt.
var MaxAmount = decimal.New(1, 13)

// maxCents is the largest cent count the int64 formatter can carry.
var maxCents = decimal.NewFromInt(math.MaxInt64)

var brlFormatter = func() *gomoney.Formatter {
	c := gomoney.GetCurrency(gomoney.BRL)
	return gomoney.NewFormatter(c.Fraction, c.Decimal, c.Thousand, c.Grapheme, "$ 1")
}()

// ParseBRL accepts "R$ 1.234,56", "1234,56", "1234.56" and "1.234" (thousands).
// The last of '.' or ',' is taken as the decimal separator when both appear.
func ParseBRL(s string) (decimal.Decimal, error) {
	clean := strings.TrimSpace(s)
	clean = strings.ReplaceAll(clean, "R$", "")
	clean = strings.Map(func(r rune) rune {
		switch r {
		case ' ', '\u00a0', '\t':
			return -1
		}
		return r
	}, clean)
	if clean == "" {
		return decimal.Zero, fmt.Errorf("%w: %q", ErrUnparseable, s)
	}

	dot := strings.LastIndex(clean, ".")
	comma := strings.LastIndex(clean, ",")
	switch {
	case dot >= 0 && comma >= 0:
		if comma > dot {
			clean = strings.ReplaceAll(clean, ".", "")
			clean = strings.Replace(clean, ",", ".", 1)
		} else {
			clean = strings.ReplaceAll(clean, ",", "")
		}
	case comma >= 0:
		if strings.Count(clean, ",") > 1 {
			clean = strings.ReplaceAll(clean, ",", "")
		} else {
			clean = strings.Replace(clean, ",", ".", 1)
		}
	case dot >= 0:
		if strings.Count(clean, ".") > 1 || reThousandsDot.MatchString(clean) {
			clean = strings.ReplaceAll(clean, ".", "")
		}
	}

	if !reDigits.MatchString(clean) {
		return decimal.Zero, fmt.Errorf("%w: %q", ErrUnparseable, s)
	}
	d, err := decimal.NewFromString(clean)
	if err != nil {
		return decimal.Zero, fmt.Errorf("%w: %q", ErrUnparseable, s)
	}
	return d, nil
}

// FormatBRL renders d as "R$ 1.234,56", rounding half away from zero to cents.
func FormatBRL(d decimal.Decimal) string {
	cents := d.Round(2).Shift(2)
	if cents.Abs().GreaterThan(maxCents) {
		return formatWide(d)
	}
	return brlFormatter.Format(cents.IntPart())
}

// formatWide groups the fixed-point string by hand for amounts past int64 cents.
func formatWide(d decimal.Decimal) string {
	whole, frac, _ := strings.Cut(d.Abs().StringFixed(2), ".")
	var b strings.Builder
	if d.IsNegative() {
		b.WriteByte('-')
	}
	b.WriteString("R$ ")
	for i, r := range whole {
		if i > 0 && (len(whole)-i)%3 == 0 {
			b.WriteByte('.')
		}
		b.WriteRune(r)
	}
	b.WriteByte(',')
	b.WriteString(frac)
	return b.String()
}
