package constants

import (
	"strings"
)

// DebtStatus is the display form of a delinquency status.
type DebtStatus string

const (
	EmAtraso    DebtStatus = "Em atraso"
	Renegociado DebtStatus = "Renegociado"
	Pendente    DebtStatus = "Pendente"
	Vencido     DebtStatus = "Vencido"
	Aberto      DebtStatus = "Aberto"
)

var allDebtStatuses = []DebtStatus{
	EmAtraso,
	Renegociado,
	Pendente,
	Vencido,
	Aberto,
}

// DebtStatusesAsStrings returns the vocabulary in display form, e.g. for prompts.
func DebtStatusesAsStrings() []string {
	result := make([]string, len(allDebtStatuses))
	for i, s := range allDebtStatuses {
		result[i] = string(s)
	}
	return result
}

// CanonicalizeDebtStatus lowercases and trims input and maps it onto the fixed
// vocabulary. There is no fallback: unknown labels return ok=false.
func CanonicalizeDebtStatus(input string) (DebtStatus, bool) {
	normalized := strings.Join(strings.Fields(strings.ToLower(input)), " ")
	if normalized == "" {
		return "", false
	}
	for _, s := range allDebtStatuses {
		if normalized == strings.ToLower(string(s)) {
			return s, true
		}
	}
	return "", false
}
