package server

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"sync"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joseph-ayodele/debt-tracker/constants"
	"github.com/joseph-ayodele/debt-tracker/internal/common"
	"github.com/joseph-ayodele/debt-tracker/internal/entity"
	"github.com/joseph-ayodele/debt-tracker/internal/jobs"
	"github.com/joseph-ayodele/debt-tracker/internal/pipeline"
)

type fakeQueue struct {
	mu   sync.Mutex
	jobs []jobs.Job
	err  error
}

func (q *fakeQueue) Enqueue(_ context.Context, j jobs.Job) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.err != nil {
		return q.err
	}
	q.jobs = append(q.jobs, j)
	return nil
}

func (q *fakeQueue) Shutdown(context.Context) {}

type testEnv struct {
	router *gin.Engine
	store  *jobs.Store
	queue  *fakeQueue
	dir    string
}

func newEnv(t *testing.T) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)
	env := &testEnv{store: jobs.NewStore(), queue: &fakeQueue{}, dir: t.TempDir()}
	h := NewHandler(env.store, env.queue, nil, HandlerConfig{UploadDir: env.dir, MaxUploadMB: 1}, nil)
	env.router = NewRouter(h, http.NotFoundHandler(), nil, nil)
	return env
}

func (e *testEnv) do(req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

func uploadRequest(t *testing.T, field, name string, content []byte) *http.Request {
	t.Helper()
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	fw, err := mw.CreateFormFile(field, name)
	require.NoError(t, err)
	_, err = fw.Write(content)
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/v1/extractions", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func TestHealth(t *testing.T) {
	env := newEnv(t)
	w := env.do(httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "healthy")
}

func TestCreateExtraction(t *testing.T) {
	env := newEnv(t)
	w := env.do(uploadRequest(t, "file", "relatorio.pdf", []byte("%PDF-1.4\nbody")))

	require.Equal(t, http.StatusAccepted, w.Code, w.Body.String())
	var job entity.ExtractJob
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &job))
	assert.Equal(t, constants.JobStatusQueued, job.Status)
	assert.Equal(t, "relatorio.pdf", job.FileName)
	assert.Equal(t, "/v1/extractions/"+job.ID.String(), w.Header().Get("Location"))

	require.Len(t, env.queue.jobs, 1)
	queued := env.queue.jobs[0]
	assert.Equal(t, job.ID, queued.ID)
	assert.NotEmpty(t, queued.RequestID)
	data, err := os.ReadFile(queued.Path)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(data), "%PDF-"))
}

func TestCreateExtraction_Rejects(t *testing.T) {
	tests := []struct {
		name    string
		field   string
		file    string
		content []byte
		code    int
	}{
		{"missing file field", "other", "a.pdf", []byte("%PDF-1.4"), http.StatusBadRequest},
		{"wrong extension", "file", "a.txt", []byte("%PDF-1.4"), http.StatusBadRequest},
		{"not a pdf", "file", "a.pdf", []byte("hello world"), http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newEnv(t)
			w := env.do(uploadRequest(t, tt.field, tt.file, tt.content))
			assert.Equal(t, tt.code, w.Code)
			assert.Empty(t, env.queue.jobs)
		})
	}
}

func TestCreateExtraction_TooLarge(t *testing.T) {
	env := newEnv(t)
	big := append([]byte("%PDF-1.4\n"), bytes.Repeat([]byte("x"), 2<<20)...)
	w := env.do(uploadRequest(t, "file", "big.pdf", big))
	assert.Contains(t, []int{http.StatusRequestEntityTooLarge, http.StatusBadRequest}, w.Code)
	assert.Empty(t, env.queue.jobs)
}

func TestCreateExtraction_QueueClosed(t *testing.T) {
	env := newEnv(t)
	env.queue.err = common.ErrQueueClosed

	w := env.do(uploadRequest(t, "file", "a.pdf", []byte("%PDF-1.4")))
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)

	list := env.store.List()
	require.Len(t, list, 1)
	assert.Equal(t, constants.JobStatusFailed, list[0].Status)
}

func TestGetExtraction(t *testing.T) {
	env := newEnv(t)
	job := env.store.Create("a.pdf", 10)

	tests := []struct {
		name string
		id   string
		code int
	}{
		{"bad id", "not-a-uuid", http.StatusBadRequest},
		{"unknown", uuid.NewString(), http.StatusNotFound},
		{"found", job.ID.String(), http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := env.do(httptest.NewRequest(http.MethodGet, "/v1/extractions/"+tt.id, nil))
			assert.Equal(t, tt.code, w.Code)
		})
	}

	w := env.do(httptest.NewRequest(http.MethodGet, "/v1/extractions", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), job.ID.String())
}

func TestExportExtraction(t *testing.T) {
	env := newEnv(t)
	pending := env.store.Create("pending.pdf", 1)
	done := env.store.Create("relatorio.pdf", 1)
	require.NoError(t, env.store.Finish(done.ID, &pipeline.Result{Records: []entity.ClientRecord{{
		ID: "12345678901", Name: "Ana Souza", DebtDisplay: "R$ 10,00", DueDate: "PENDENTE",
		Status: "Aberto", Contact: "(11) 98765-4321", Mobile: true, Reason: entity.DefaultReason,
	}}}, "stub"))

	tests := []struct {
		name        string
		url         string
		code        int
		contentType string
		disposition string
	}{
		{"still queued", "/v1/extractions/" + pending.ID.String() + "/export", http.StatusConflict, "", ""},
		{"bad format", "/v1/extractions/" + done.ID.String() + "/export?format=pdf", http.StatusBadRequest, "", ""},
		{"xlsx default", "/v1/extractions/" + done.ID.String() + "/export", http.StatusOK,
			"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", `"relatorio-inadimplentes.xlsx"`},
		{"csv", "/v1/extractions/" + done.ID.String() + "/export?format=csv", http.StatusOK,
			"text/csv; charset=utf-8", `"relatorio-inadimplentes.csv"`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := env.do(httptest.NewRequest(http.MethodGet, tt.url, nil))
			require.Equal(t, tt.code, w.Code, w.Body.String())
			if tt.contentType != "" {
				assert.Equal(t, tt.contentType, w.Header().Get("Content-Type"))
				assert.Contains(t, w.Header().Get("Content-Disposition"), tt.disposition)
				assert.NotEmpty(t, w.Body.Bytes())
			}
		})
	}
}
