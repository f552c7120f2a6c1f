package llm

import (
	"maps"
	"slices"
	"strings"
	"unicode"

	"github.com/joseph-ayodele/debt-tracker/constants"
	"github.com/joseph-ayodele/debt-tracker/internal/entity"
	"github.com/joseph-ayodele/debt-tracker/internal/relevance"
)

// synonyms maps folded source keys (see foldKey) to canonical field names.
var synonyms = map[string]string{
	"id": "id", "cpf": "id", "cnpj": "id", "cpf_cnpj": "id", "cnpj_cpf": "id", "documento": "id",
	"doc": "id", "numero_documento": "id",
	"name": "name", "nome": "name", "cliente": "name", "devedor": "name", "nome_cliente": "name",
	"nome_devedor": "name", "razao_social": "name", "client_name": "name",
	"debt_amount": "debt_amount", "amount": "debt_amount", "valor": "debt_amount", "divida": "debt_amount",
	"debito": "debt_amount", "saldo": "debt_amount", "valor_divida": "debt_amount", "valor_debito": "debt_amount",
	"valor_devido": "debt_amount", "valor_aberto": "debt_amount", "valor_atraso": "debt_amount",
	"saldo_devedor": "debt_amount", "amount_due": "debt_amount",
	"due_date": "due_date", "vencimento": "due_date", "data": "due_date", "data_vencimento": "due_date",
	"venc": "due_date", "data_venc": "due_date", "dt_vencimento": "due_date", "dt_venc": "due_date",
	"status": "status", "situacao": "status", "status_pagamento": "status",
	"contact": "contact", "contato": "contact", "telefone": "contact", "phone": "contact", "celular": "contact",
	"whatsapp": "contact", "fone": "contact", "tel": "contact", "telefone_contato": "contact",
	"telefone_celular": "contact",
}

// connectives are dropped from multi-word keys, so "Data de Vencimento" folds to data_vencimento.
var connectives = map[string]bool{
	"de": true, "da": true, "do": true, "das": true, "dos": true, "em": true, "e": true, "of": true, "the": true,
}

// dateHints mark a key that carried a date even when it is not a known synonym.
var dateHints = []string{"venc", "data", "date", "prazo", "dt"}

var canonical = map[string]struct{}{
	"id": {}, "name": {}, "debt_amount": {}, "due_date": {}, "status": {}, "contact": {},
}

// missingDate holds cell placeholders that mean "no date given".
var missingDate = map[string]bool{
	"": true, "-": true, "--": true, "—": true, "–": true, "n/a": true, "s/d": true, "null": true,
}

// NormalizeCandidate renames key synonyms to the canonical field names and maps
// placeholder due dates to the pending sentinel. Canonical keys win over synonyms,
// then the first synonym in key order, unless that value is a blank placeholder.
// Unknown keys are dropped; an unknown date-like key keeps PENDENTE from being filled in.
func NormalizeCandidate(in entity.Candidate) (entity.Candidate, []string) {
	out := make(entity.Candidate, len(in))
	var changes []string

	keys := slices.Sorted(maps.Keys(in))
	// canonical keys first so they are never shadowed by a synonym
	slices.SortStableFunc(keys, func(a, b string) int {
		_, ca := canonical[a]
		_, cb := canonical[b]
		switch {
		case ca && !cb:
			return -1
		case cb && !ca:
			return 1
		}
		return 0
	})

	var unmappedDate bool
	for _, k := range keys {
		tokens := foldKey(k)
		canon, ok := synonyms[strings.Join(tokens, "_")]
		if !ok {
			changes = append(changes, k+"(unknown)")
			if looksLikeDate(tokens) {
				unmappedDate = true
			}
			continue
		}
		if _, exists := out[canon]; exists {
			if !isBlank(out.String(canon)) || isBlank(in.String(k)) {
				changes = append(changes, k+"(shadowed)")
				continue
			}
			changes = append(changes, k+"->"+canon+"(over blank)")
			out[canon] = in[k]
			continue
		}
		if canon != k {
			changes = append(changes, k+"->"+canon)
		}
		out[canon] = in[k]
	}

	_, hasDate := out["due_date"]
	switch {
	case !hasDate && unmappedDate:
		// a date column we could not map is left missing for the validator
		changes = append(changes, "due_date(unmapped)")
	case isBlank(out.String("due_date")):
		out["due_date"] = constants.PendingDueDate
		changes = append(changes, "due_date(pending)")
	}
	return out, changes
}

// foldKey lowercases, strips accents and splits a header on anything that is
// not a letter or digit, dropping connectives.
func foldKey(k string) []string {
	fields := strings.FieldsFunc(relevance.Fold(k), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	out := fields[:0]
	for _, f := range fields {
		if !connectives[f] {
			out = append(out, f)
		}
	}
	return out
}

func isBlank(v string) bool {
	return missingDate[strings.ToLower(v)]
}

func looksLikeDate(tokens []string) bool {
	for _, tok := range tokens {
		for _, h := range dateHints {
			if strings.HasPrefix(tok, h) {
				return true
			}
		}
	}
	return false
}
