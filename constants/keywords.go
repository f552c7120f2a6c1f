package constants

// PrimaryDelinquencyTerms must appear (at least one) for a document to be
// treated as a delinquency report.
var PrimaryDelinquencyTerms = []string{
	"inadimplente",
	"inadimplência",
	"atraso",
	"vencimento",
	"vencido",
	"dívida",
	"pendente",
	"renegociado",
}

// SecondaryFinancialTerms provide the financial context (at least one required).
var SecondaryFinancialTerms = []string{
	"valor",
	"pagamento",
	"cliente",
	"cpf",
	"cnpj",
	"telefone",
}

// DefaultHeaderTokens gate whether a chunk looks like it carries a client table.
var DefaultHeaderTokens = []string{
	"nome",
	"cliente",
}

// Sentinels substituted for unusable source values.
const (
	PendingDueDate = "PENDENTE"
	TempIDPrefix   = "TEMP_"
)
