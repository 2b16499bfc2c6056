package jobs

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/hibiken/asynq"
	"github.com/stretchr/testify/assert"
)

type fakeEnqueuer struct {
	err      error
	payloads []RenderPayload
}

func (f *fakeEnqueuer) EnqueueRender(ctx context.Context, payload RenderPayload) (*asynq.TaskInfo, error) {
	f.payloads = append(f.payloads, payload)
	if f.err != nil {
		return nil, f.err
	}
	return &asynq.TaskInfo{ID: "task-1", Queue: QueueDefault, Type: TaskRenderReports}, nil
}

type fakeInspector struct {
	info *asynq.QueueInfo
	err  error
}

func (f fakeInspector) GetQueueInfo(queue string) (*asynq.QueueInfo, error) {
	return f.info, f.err
}

func serveJobs(h *Handler, method, path string) *httptest.ResponseRecorder {
	r := chi.NewRouter()
	r.Route("/jobs", h.MountRoutes)
	r.Route("/api", h.MountAPI)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(method, path, nil))
	return rec
}

func TestEnqueueRender(t *testing.T) {
	enq := &fakeEnqueuer{}
	rec := serveJobs(NewHandler(nil, enq, nil), http.MethodPost, "/api/reports/render")

	assert.Equal(t, http.StatusAccepted, rec.Code)
	assert.JSONEq(t, `{"status":"queued"}`, rec.Body.String())
	assert.Equal(t, []RenderPayload{{Source: SourceAPI}}, enq.payloads)
}

func TestEnqueueRenderDuplicateIsAccepted(t *testing.T) {
	rec := serveJobs(NewHandler(nil, &fakeEnqueuer{err: asynq.ErrDuplicateTask}, nil), http.MethodPost, "/api/reports/render")

	assert.Equal(t, http.StatusAccepted, rec.Code)
	assert.JSONEq(t, `{"status":"queued","message":"Render already pending"}`, rec.Body.String())
}

func TestEnqueueRenderFailures(t *testing.T) {
	rec := serveJobs(NewHandler(nil, nil, nil), http.MethodPost, "/api/reports/render")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)

	rec = serveJobs(NewHandler(nil, &fakeEnqueuer{err: assert.AnError}, nil), http.MethodPost, "/api/reports/render")
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.JSONEq(t, `{"status":"error","message":"Internal error."}`, rec.Body.String())
}

func TestQueueHealth(t *testing.T) {
	inspector := fakeInspector{info: &asynq.QueueInfo{Queue: QueueDefault, Pending: 2, Active: 1}}
	rec := serveJobs(NewHandler(inspector, nil, nil), http.MethodGet, "/jobs/health")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"queue":"default","pending":2,"active":1,"failed":0}`, rec.Body.String())

	rec = serveJobs(NewHandler(fakeInspector{err: assert.AnError}, nil, nil), http.MethodGet, "/jobs/health")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)

	rec = serveJobs(NewHandler(nil, nil, nil), http.MethodGet, "/jobs/health")
	assert.JSONEq(t, `{"queue":"default","pending":0,"active":0,"failed":0}`, rec.Body.String())
}
