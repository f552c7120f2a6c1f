package pipeline

import (
	"github.com/joseph-ayodele/debt-tracker/internal/entity"
	"github.com/joseph-ayodele/debt-tracker/internal/validate"
)

// Merge folds per-chunk candidates in chunk index order. A later candidate with the
// same (id, name, due_date) replaces the earlier one but keeps its position.
func Merge(perChunk [][]entity.Candidate) (merged []entity.Candidate, duplicates int) {
	pos := make(map[entity.RecordKey]int)
	for _, cands := range perChunk {
		for _, c := range cands {
			k := validate.Key(c)
			if i, ok := pos[k]; ok {
				merged[i] = c
				duplicates++
				continue
			}
			pos[k] = len(merged)
			merged = append(merged, c)
		}
	}
	return merged, duplicates
}
