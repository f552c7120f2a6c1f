package jobs

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joseph-ayodele/debt-tracker/constants"
	"github.com/joseph-ayodele/debt-tracker/internal/common"
	"github.com/joseph-ayodele/debt-tracker/internal/entity"
	"github.com/joseph-ayodele/debt-tracker/internal/pipeline"
)

func TestStore_Lifecycle(t *testing.T) {
	s := NewStore()
	j := s.Create("report.pdf", 1234)
	assert.Equal(t, constants.JobStatusQueued, j.Status)
	assert.NotEqual(t, uuid.Nil, j.ID)

	require.NoError(t, s.MarkRunning(j.ID))
	got, err := s.Get(j.ID)
	require.NoError(t, err)
	assert.Equal(t, constants.JobStatusRunning, got.Status)
	assert.NotNil(t, got.StartedAt)

	res := &pipeline.Result{
		Records: []entity.ClientRecord{{ID: "12345678901", Name: "Ana"}},
		Summary: entity.RunSummary{RecordsAccepted: 1},
	}
	require.NoError(t, s.Finish(j.ID, res, "gpt-4o-mini"))

	got, err = s.Get(j.ID)
	require.NoError(t, err)
	assert.Equal(t, constants.JobStatusDone, got.Status)
	assert.Equal(t, "gpt-4o-mini", got.ModelName)
	require.Len(t, got.Records, 1)
	require.NotNil(t, got.Summary)
	assert.Equal(t, 1, got.Summary.RecordsAccepted)

	// copies do not alias the stored job
	got.Records[0].Name = "changed"
	again, _ := s.Get(j.ID)
	assert.Equal(t, "Ana", again.Records[0].Name)
}

func TestStore_NotFound(t *testing.T) {
	s := NewStore()
	_, err := s.Get(uuid.New())
	assert.ErrorIs(t, err, common.ErrNotFound)
	assert.ErrorIs(t, s.MarkRunning(uuid.New()), common.ErrNotFound)
}

func TestStore_ListNewestFirst(t *testing.T) {
	s := NewStore()
	first := s.Create("a.pdf", 1)
	second := s.Create("b.pdf", 1)
	s.mu.Lock()
	s.jobs[second.ID].CreatedAt = first.CreatedAt.Add(1)
	s.mu.Unlock()

	list := s.List()
	require.Len(t, list, 2)
	assert.Equal(t, second.ID, list[0].ID)
}

func TestStatusFor(t *testing.T) {
	tests := []struct {
		name string
		res  *pipeline.Result
		want constants.JobStatus
	}{
		{"records", &pipeline.Result{Records: []entity.ClientRecord{{}}}, constants.JobStatusDone},
		{"no records", &pipeline.Result{}, constants.JobStatusEmpty},
		{"absorbed failures with records", &pipeline.Result{Kind: common.KindRecordValidationFailure, Records: []entity.ClientRecord{{}}}, constants.JobStatusDone},
		{"empty document", &pipeline.Result{Kind: common.KindEmptyDocument}, constants.JobStatusEmpty},
		{"irrelevant", &pipeline.Result{Kind: common.KindIrrelevantDocument}, constants.JobStatusEmpty},
		{"service error", &pipeline.Result{Kind: common.KindExtractionServiceError}, constants.JobStatusFailed},
		{"invalid path", &pipeline.Result{Kind: common.KindInvalidPath}, constants.JobStatusFailed},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, StatusFor(tt.res))
		})
	}
}
