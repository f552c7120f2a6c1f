// Package jobs tracks asynchronous extraction runs in memory and feeds them to workers.
package jobs

import (
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/joseph-ayodele/debt-tracker/constants"
	"github.com/joseph-ayodele/debt-tracker/internal/common"
	"github.com/joseph-ayodele/debt-tracker/internal/entity"
	"github.com/joseph-ayodele/debt-tracker/internal/pipeline"
)

// Store is the run store owned by one service instance. Reads return copies.
type Store struct {
	mu   sync.RWMutex
	jobs map[uuid.UUID]*entity.ExtractJob
	now  func() time.Time
}

func NewStore() *Store {
	return &Store{jobs: make(map[uuid.UUID]*entity.ExtractJob), now: time.Now}
}

// Create registers a queued job.
func (s *Store) Create(fileName string, size int64) entity.ExtractJob {
	j := &entity.ExtractJob{
		ID:        uuid.New(),
		FileName:  fileName,
		FileSize:  size,
		Status:    constants.JobStatusQueued,
		CreatedAt: s.now().UTC(),
		Records:   []entity.ClientRecord{},
	}
	s.mu.Lock()
	s.jobs[j.ID] = j
	s.mu.Unlock()
	return clone(j)
}

func (s *Store) Get(id uuid.UUID) (entity.ExtractJob, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	j, ok := s.jobs[id]
	if !ok {
		return entity.ExtractJob{}, fmt.Errorf("job %s: %w", id, common.ErrNotFound)
	}
	return clone(j), nil
}

// List returns all jobs, newest first.
func (s *Store) List() []entity.ExtractJob {
	s.mu.RLock()
	out := make([]entity.ExtractJob, 0, len(s.jobs))
	for _, j := range s.jobs {
		out = append(out, clone(j))
	}
	s.mu.RUnlock()
	slices.SortFunc(out, func(a, b entity.ExtractJob) int {
		return b.CreatedAt.Compare(a.CreatedAt)
	})
	return out
}

func (s *Store) MarkRunning(id uuid.UUID) error {
	return s.update(id, func(j *entity.ExtractJob) {
		t := s.now().UTC()
		j.Status = constants.JobStatusRunning
		j.StartedAt = &t
	})
}

// Finish records a pipeline result against the job.
func (s *Store) Finish(id uuid.UUID, res *pipeline.Result, model string) error {
	return s.update(id, func(j *entity.ExtractJob) {
		t := s.now().UTC()
		j.FinishedAt = &t
		j.Status = StatusFor(res)
		j.ErrorKind = string(res.Kind)
		j.ErrorMessage = res.Message
		j.ModelName = model
		j.Records = slices.Clone(res.Records)
		summary := res.Summary
		j.Summary = &summary
	})
}

// Fail marks a job failed without a pipeline result, e.g. on shutdown.
func (s *Store) Fail(id uuid.UUID, msg string) error {
	return s.update(id, func(j *entity.ExtractJob) {
		t := s.now().UTC()
		j.FinishedAt = &t
		j.Status = constants.JobStatusFailed
		j.ErrorMessage = msg
	})
}

func (s *Store) update(id uuid.UUID, fn func(*entity.ExtractJob)) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	j, ok := s.jobs[id]
	if !ok {
		return fmt.Errorf("job %s: %w", id, common.ErrNotFound)
	}
	fn(j)
	return nil
}

// StatusFor maps a run outcome onto the job lifecycle.
func StatusFor(res *pipeline.Result) constants.JobStatus {
	switch res.Kind {
	case common.KindEmptyDocument, common.KindIrrelevantDocument:
		return constants.JobStatusEmpty
	case common.KindInvalidPath, common.KindExtractionServiceError:
		return constants.JobStatusFailed
	}
	if len(res.Records) == 0 {
		return constants.JobStatusEmpty
	}
	return constants.JobStatusDone
}

func clone(j *entity.ExtractJob) entity.ExtractJob {
	c := *j
	c.Records = slices.Clone(j.Records)
	if j.Summary != nil {
		s := *j.Summary
		c.Summary = &s
	}
	return c
}
