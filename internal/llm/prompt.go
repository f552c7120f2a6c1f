package llm

import (
	"strings"

	"github.com/joseph-ayodele/debt-tracker/constants"
)

// BuildSystemPrompt fixes the output contract for every chunk.
func BuildSystemPrompt() string {
	parts := []string{
		"You extract overdue clients from Brazilian financial reports written in Portuguese.",
		"Identify any table or list containing pending or delinquent clients.",
		"The columns may be named: Nome/Cliente/Devedor, CPF/CNPJ/Documento, Valor/Dívida/Débito/Saldo, " +
			"Vencimento/Data/Data de vencimento, Status/Situação, Contato/Telefone/Celular/WhatsApp.",
		"If a column is missing or named differently, infer the data from context.",
		"Return a JSON array of objects with exactly these fields: " +
			"id (CPF/CNPJ digits only, no dots, dashes, slashes or spaces), " +
			"name (client name), " +
			"debt_amount (number without the R$ symbol, dot as decimal separator), " +
			"due_date (DD/MM/YYYY), " +
			"status (one of: " + strings.Join(constants.DebtStatusesAsStrings(), ", ") + "), " +
			"contact (phone as (AA) NNNNN-NNNN or (AA) NNNN-NNNN).",
		"If a client's CPF/CNPJ is missing or unreadable, use " + constants.TempIDPrefix + "NNN with a sequential three-digit number.",
		"If a due date is missing or unreadable, use " + constants.PendingDueDate + ".",
		"If this part of the report contains no client rows, return an empty array [].",
		"Wrap the array in a Markdown code block: ```json ... ```. Output nothing else.",
	}
	return strings.Join(parts, " ")
}

// BuildUserPrompt carries the raw chunk text untranslated.
func BuildUserPrompt(chunk string) string {
	var b strings.Builder
	b.WriteString("Report excerpt:\n")
	b.WriteString(chunk)
	return b.String()
}
