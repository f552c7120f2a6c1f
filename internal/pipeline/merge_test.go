package pipeline

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/joseph-ayodele/debt-tracker/internal/entity"
)

func TestMerge(t *testing.T) {
	a1 := entity.Candidate{"id": "11111111111", "name": "Ana", "due_date": "01/01/2024", "debt_amount": "1"}
	a2 := entity.Candidate{"id": "111.111.111-11", "name": " Ana ", "due_date": "01/01/2024", "debt_amount": "2"}
	aOther := entity.Candidate{"id": "11111111111", "name": "Ana", "due_date": "02/01/2024", "debt_amount": "3"}
	b := entity.Candidate{"id": "22222222222", "name": "Bia", "due_date": "PENDENTE", "debt_amount": "4"}

	tests := []struct {
		name     string
		in       [][]entity.Candidate
		want     []entity.Candidate
		wantDups int
	}{
		{"empty", nil, nil, 0},
		{"nil chunk skipped", [][]entity.Candidate{nil, {b}}, []entity.Candidate{b}, 0},
		{"later chunk wins in place", [][]entity.Candidate{{a1, b}, {a2}}, []entity.Candidate{a2, b}, 1},
		{"different due date is distinct", [][]entity.Candidate{{a1}, {aOther}}, []entity.Candidate{a1, aOther}, 0},
		{"same chunk duplicate", [][]entity.Candidate{{a1, a2}}, []entity.Candidate{a2}, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, dups := Merge(tt.in)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.wantDups, dups)
		})
	}
}
