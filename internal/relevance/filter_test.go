package relevance

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFold(t *testing.T) {
	assert.Equal(t, "divida inadimplencia", Fold("DÍVIDA Inadimplência"))
	assert.Equal(t, "situacao", Fold("Situação"))
}

func TestFilter_Check(t *testing.T) {
	f := Default()

	tests := []struct {
		name string
		text string
		want bool
	}{
		{"primary and secondary", "Relatório de clientes em ATRASO, valor total", true},
		{"only secondary terms", "Cliente: Ana, CPF 123, Telefone 11 99999-0000, valor R$ 10", false},
		{"only primary terms", "Dívida vencida e renegociado", false},
		{"accent-free spelling", "lista de divida por cliente", true},
		{"unrelated", "Receita de bolo de cenoura com cobertura", false},
		{"empty", "", false},
		{"substring match", "inadimplentes com pagamentos", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, f.Check(tt.text).Relevant)
		})
	}
}

func TestFilter_ReportsMatchedTerms(t *testing.T) {
	v := NewFilter([]string{"Atraso", "atraso"}, []string{"CPF"}).Check("em atraso - cpf")
	assert.True(t, v.Relevant)
	assert.Equal(t, []string{"atraso"}, v.Primary)
	assert.Equal(t, []string{"cpf"}, v.Secondary)
}
