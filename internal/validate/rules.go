// Package validate turns candidate objects into ClientRecords under strict field rules.
// Only the PENDENTE date and TEMP_ id sentinels are accepted in place of real values.
package validate

import (
	"regexp"
	"strings"
	"time"
	"unicode"

	"github.com/shopspring/decimal"

	"github.com/joseph-ayodele/debt-tracker/constants"
	"github.com/joseph-ayodele/debt-tracker/internal/money"
)

const (
	dateLayout = "02/01/2006"
	// day and month may come without the leading zero
	dateParseLayout = "2/1/2006"
)

var (
	reDocument = regexp.MustCompile(`^\d{11,14}$`)
	reTempID   = regexp.MustCompile(`^` + constants.TempIDPrefix + `[A-Za-z0-9]+$`)
)

// NormalizeID strips separators from a CPF/CNPJ. TEMP_ ids keep their form.
func NormalizeID(raw string) (string, bool) {
	s := strings.TrimSpace(raw)
	if strings.HasPrefix(strings.ToUpper(s), constants.TempIDPrefix) {
		s = constants.TempIDPrefix + s[len(constants.TempIDPrefix):]
		return s, reTempID.MatchString(s)
	}
	s = strings.Map(func(r rune) rune {
		switch r {
		case '.', '-', '/', ' ', '\t':
			return -1
		}
		return r
	}, s)
	return s, reDocument.MatchString(s)
}

// NormalizeName trims and collapses inner whitespace.
func NormalizeName(raw string) string {
	return strings.Join(strings.Fields(raw), " ")
}

// ParseAmount requires a strictly positive amount no larger than money.MaxAmount.
func ParseAmount(raw string) (decimal.Decimal, bool) {
	d, err := money.ParseBRL(raw)
	if err != nil || !d.IsPositive() || d.GreaterThan(money.MaxAmount) {
		return decimal.Zero, false
	}
	return d, true
}

// NormalizeDueDate accepts DD/MM/YYYY calendar dates or the PENDENTE sentinel.
func NormalizeDueDate(raw string) (string, bool) {
	s := strings.TrimSpace(raw)
	if strings.EqualFold(s, constants.PendingDueDate) {
		return constants.PendingDueDate, true
	}
	t, err := time.Parse(dateParseLayout, s)
	if err != nil {
		return "", false
	}
	return t.Format(dateLayout), true
}

// NormalizeStatus maps onto the fixed vocabulary.
func NormalizeStatus(raw string) (string, bool) {
	st, ok := constants.CanonicalizeDebtStatus(raw)
	return string(st), ok
}

// FormatPhone keeps digits only and renders (AA) NNNNN-NNNN or (AA) NNNN-NNNN.
// An 11-digit number whose subscriber part starts with 9 is a mobile line.
func FormatPhone(raw string) (formatted string, mobile bool, ok bool) {
	digits := strings.Map(func(r rune) rune {
		if unicode.IsDigit(r) && r < unicode.MaxASCII {
			return r
		}
		return -1
	}, raw)

	switch len(digits) {
	case 11:
		return "(" + digits[:2] + ") " + digits[2:7] + "-" + digits[7:], digits[2] == '9', true
	case 10:
		return "(" + digits[:2] + ") " + digits[2:6] + "-" + digits[6:], false, true
	}
	return "", false, false
}
