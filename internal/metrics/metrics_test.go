package metrics

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joseph-ayodele/debt-tracker/internal/common"
	"github.com/joseph-ayodele/debt-tracker/internal/entity"
	"github.com/joseph-ayodele/debt-tracker/internal/llm"
	"github.com/joseph-ayodele/debt-tracker/internal/pipeline"
)

func TestObserver(t *testing.T) {
	m := New()
	m.ChunkFinished(0, common.KindNone, time.Millisecond)
	m.ChunkFinished(1, common.KindMalformedServiceResponse, time.Millisecond)
	m.ChunkFinished(2, common.KindExtractionServiceError, time.Millisecond)
	m.RunFinished(&pipeline.Result{
		Kind: common.KindMalformedServiceResponse,
		Summary: entity.RunSummary{
			ChunksSkipped: 2, RecordsAccepted: 3, RecordsRejected: 1, Duplicates: 1, ElapsedMs: 1500,
		},
	})
	m.RunFinished(&pipeline.Result{})

	assert.Equal(t, 3.0, testutil.ToFloat64(m.chunks.WithLabelValues("sent")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.chunks.WithLabelValues("malformed")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.chunks.WithLabelValues("failed")))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.chunks.WithLabelValues("skipped")))
	assert.Equal(t, 3.0, testutil.ToFloat64(m.records.WithLabelValues("accepted")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.records.WithLabelValues("rejected")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.runs.WithLabelValues("ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.runs.WithLabelValues(string(common.KindMalformedServiceResponse))))
}

type fakeCompleter struct{ err error }

func (f fakeCompleter) Name() string { return "fake" }

func (f fakeCompleter) Complete(context.Context, llm.CompletionRequest) (llm.CompletionResponse, error) {
	return llm.CompletionResponse{Text: "ok"}, f.err
}

func TestInstrumentCompleter(t *testing.T) {
	m := New()
	ok := m.InstrumentCompleter(fakeCompleter{})
	bad := m.InstrumentCompleter(fakeCompleter{err: errors.New("down")})

	assert.Equal(t, "fake", ok.Name())
	_, err := ok.Complete(context.Background(), llm.CompletionRequest{})
	require.NoError(t, err)
	_, err = bad.Complete(context.Background(), llm.CompletionRequest{})
	require.Error(t, err)

	assert.Equal(t, 2, testutil.CollectAndCount(m.llmSeconds))
}

func TestHandler(t *testing.T) {
	m := New()
	m.ObserveHTTP(http.MethodGet, "/healthz", http.StatusOK, time.Millisecond)

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `debtx_http_requests_total{code="200",method="GET",route="/healthz"} 1`)
}
