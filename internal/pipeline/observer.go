package pipeline

import (
	"time"

	"github.com/joseph-ayodele/debt-tracker/internal/common"
)

// Observer receives run and chunk outcomes, e.g. for metrics.
// Implementations must be safe for concurrent use.
type Observer interface {
	ChunkFinished(index int, kind common.ErrorKind, elapsed time.Duration)
	RunFinished(res *Result)
}

type NopObserver struct{}

func (NopObserver) ChunkFinished(int, common.ErrorKind, time.Duration) {}
func (NopObserver) RunFinished(*Result)                               {}
