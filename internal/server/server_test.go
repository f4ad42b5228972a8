package server

import (
	"context"
	"encoding/json"
	"errors"
	"net"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abatilo/taskstats/internal/export"
	"github.com/abatilo/taskstats/internal/logging"
	"github.com/abatilo/taskstats/internal/metrics"
	"github.com/abatilo/taskstats/internal/stats"
	"github.com/abatilo/taskstats/internal/task"
)

// fakeSource serves an in-memory task list.
type fakeSource struct {
	mu    sync.Mutex
	tasks []*task.Task
	err   error
}

func (f *fakeSource) List(filter task.Filter) ([]*task.Task, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	return filter.Apply(f.tasks), nil
}

func (f *fakeSource) set(tasks []*task.Task) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.tasks = tasks
}

func sampleTasks() []*task.Task {
	return []*task.Task{
		{
			ID: "a1", Title: "Design schema", Status: task.StatusDone, Priority: task.PriorityHigh,
			Category: "work", EstimatedMinutes: task.Minutes(120), ActualMinutes: task.Minutes(90),
			CreatedAt: time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC),
		},
		{
			ID: "b2", Title: "Write tests", Status: task.StatusInProgress, Priority: task.PriorityNormal,
			Category: "work", EstimatedMinutes: task.Minutes(60),
			CreatedAt: time.Date(2024, 1, 9, 9, 0, 0, 0, time.UTC),
		},
		{
			ID: "c3", Title: "Groceries", Status: task.StatusBacklog, Priority: task.PriorityLow,
			Category: "home", ActualMinutes: task.Minutes(30),
			CreatedAt: time.Date(2024, 1, 16, 9, 0, 0, 0, time.UTC),
		},
	}
}

func newTestServer(t *testing.T, source Source) (*Server, *metrics.Metrics) {
	t.Helper()
	reg, m := metrics.NewRegistry()
	srv := New(source, m, reg, logging.Discard(), Config{Address: "127.0.0.1:0"})
	srv.now = func() time.Time { return time.Date(2024, 3, 5, 12, 0, 0, 0, time.UTC) }
	return srv, m
}

func get(t *testing.T, h http.Handler, target string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, target, nil))
	return rec
}

func TestHealthz(t *testing.T) {
	srv, _ := newTestServer(t, &fakeSource{})

	rec := get(t, srv.Handler(), "/healthz")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}

func TestTasksEndpointFilters(t *testing.T) {
	srv, _ := newTestServer(t, &fakeSource{tasks: sampleTasks()})
	h := srv.Handler()

	tests := []struct {
		name   string
		target string
		want   []string
	}{
		{"all", "/api/tasks", []string{"a1", "b2", "c3"}},
		{"search", "/api/tasks?q=SCHEMA", []string{"a1"}},
		{"status", "/api/tasks?status=in-progress", []string{"b2"}},
		{"priority", "/api/tasks?priority=low", []string{"c3"}},
		{"category", "/api/tasks?category=work", []string{"a1", "b2"}},
		{"no match", "/api/tasks?q=nothing", []string{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := get(t, h, tt.target)
			require.Equal(t, http.StatusOK, rec.Code)

			var records []export.Record
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &records))
			ids := make([]string, 0, len(records))
			for _, r := range records {
				ids = append(ids, r.ID)
			}
			assert.Equal(t, tt.want, ids)
		})
	}
}

func TestBurndownEndpoint(t *testing.T) {
	tasks := sampleTasks()
	srv, _ := newTestServer(t, &fakeSource{tasks: tasks})

	rec := get(t, srv.Handler(), "/api/burndown")
	require.Equal(t, http.StatusOK, rec.Code)

	var got stats.BurndownSeries
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, stats.Burndown(tasks), got)
}

func TestHoursEndpoint(t *testing.T) {
	tasks := sampleTasks()
	srv, _ := newTestServer(t, &fakeSource{tasks: tasks})
	h := srv.Handler()

	rec := get(t, h, "/api/hours")
	require.Equal(t, http.StatusOK, rec.Code)
	var got []stats.HourBucket
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, stats.WeeklyHours(tasks), got)

	rec = get(t, h, "/api/hours?weeks=1")
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	require.Len(t, got, 1)
	assert.Equal(t, "Week of Jan 15", got[0].Label)
}

func TestHoursEndpointRejectsBadWindow(t *testing.T) {
	srv, _ := newTestServer(t, &fakeSource{tasks: sampleTasks()})
	h := srv.Handler()

	for _, raw := range []string{"0", "-3", "abc", "521", "99999999"} {
		rec := get(t, h, "/api/hours?weeks="+raw)
		assert.Equal(t, http.StatusBadRequest, rec.Code, raw)
		assert.Contains(t, rec.Body.String(), "weeks must be an integer between 1 and 520")
	}

	rec := get(t, h, "/api/hours?weeks=520")
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestDistributionEndpoint(t *testing.T) {
	srv, _ := newTestServer(t, &fakeSource{tasks: sampleTasks()})

	rec := get(t, srv.Handler(), "/api/distribution")
	require.Equal(t, http.StatusOK, rec.Code)

	var got stats.Distribution
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, 3, got.Total)
	require.Len(t, got.Columns, 4)
	assert.Equal(t, 1, got.Columns[0].Count)
	assert.Equal(t, 1, got.Columns[1].Count)
	assert.Equal(t, 0, got.Columns[2].Count)
	assert.Equal(t, 1, got.Columns[3].Count)
}

func TestExportEndpoint(t *testing.T) {
	srv, _ := newTestServer(t, &fakeSource{tasks: sampleTasks()})
	h := srv.Handler()

	rec := get(t, h, "/api/export?format=csv")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "text/csv; charset=utf-8", rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "tasks-export-2024-03-05.csv")
	lines := strings.Split(strings.TrimSpace(rec.Body.String()), "\n")
	assert.Len(t, lines, 4)

	rec = get(t, h, "/api/export")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "tasks-export-2024-03-05.json")
	imported, err := export.ReadJSON(rec.Body)
	require.NoError(t, err)
	assert.Len(t, imported, 3)

	rec = get(t, h, "/api/export?format=xml")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestSourceErrorIsServerError(t *testing.T) {
	srv, _ := newTestServer(t, &fakeSource{err: errors.New("disk on fire")})
	h := srv.Handler()

	for _, target := range []string{"/api/tasks", "/api/burndown", "/api/hours", "/api/distribution", "/api/export"} {
		rec := get(t, h, target)
		assert.Equal(t, http.StatusInternalServerError, rec.Code, target)
	}
}

func TestSeriesCache(t *testing.T) {
	source := &fakeSource{tasks: sampleTasks()}
	srv, m := newTestServer(t, source)
	h := srv.Handler()

	get(t, h, "/api/burndown")
	get(t, h, "/api/burndown")
	get(t, h, "/api/hours?weeks=4")
	get(t, h, "/api/hours?weeks=4")
	get(t, h, "/api/hours?weeks=2")

	assert.InDelta(t, 2.0, testutil.ToFloat64(m.CacheHits), 0)
	assert.InDelta(t, 3.0, testutil.ToFloat64(m.CacheMisses), 0)
	assert.InDelta(t, 1.0, testutil.ToFloat64(m.Aggregations.WithLabelValues(metrics.KindBurndown)), 0)
	assert.InDelta(t, 2.0, testutil.ToFloat64(m.Aggregations.WithLabelValues(metrics.KindHours)), 0)
	assert.InDelta(t, 3.0, testutil.ToFloat64(m.TasksLoaded), 0)

	// Editing a task invalidates every cached series.
	edited := sampleTasks()
	edited[1].Status = task.StatusDone
	source.set(edited)

	rec := get(t, h, "/api/burndown")
	var got stats.BurndownSeries
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, stats.Burndown(edited), got)
	assert.InDelta(t, 4.0, testutil.ToFloat64(m.CacheMisses), 0)
}

func TestSeriesCacheStaysBounded(t *testing.T) {
	srv, _ := newTestServer(t, &fakeSource{tasks: sampleTasks()})
	h := srv.Handler()

	for n := 1; n <= MaxHoursWeeks+50; n++ {
		get(t, h, "/api/hours?weeks="+strconv.Itoa(n))
	}

	srv.cache.mu.Lock()
	defer srv.cache.mu.Unlock()
	assert.Len(t, srv.cache.entries, MaxHoursWeeks)
}

func TestContentHash(t *testing.T) {
	a, err := contentHash(sampleTasks())
	require.NoError(t, err)
	b, err := contentHash(sampleTasks())
	require.NoError(t, err)
	assert.Equal(t, a, b)

	changed := sampleTasks()
	changed[0].ActualMinutes = task.Minutes(91)
	c, err := contentHash(changed)
	require.NoError(t, err)
	assert.NotEqual(t, a, c)
}

func TestMetricsEndpoint(t *testing.T) {
	srv, _ := newTestServer(t, &fakeSource{tasks: sampleTasks()})
	h := srv.Handler()

	get(t, h, "/api/distribution")
	rec := get(t, h, "/metrics")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `taskstats_aggregations_total{kind="distribution"} 1`)
}

func TestServeShutsDownOnCancel(t *testing.T) {
	srv, _ := newTestServer(t, &fakeSource{tasks: sampleTasks()})

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- srv.Serve(ctx, ln) }()

	var resp *http.Response
	require.Eventually(t, func() bool {
		r, getErr := http.Get("http://" + ln.Addr().String() + "/healthz") //nolint:noctx // test helper
		if getErr != nil {
			return false
		}
		resp = r
		return true
	}, 2*time.Second, 10*time.Millisecond)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.NoError(t, resp.Body.Close())

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not shut down")
	}
}
