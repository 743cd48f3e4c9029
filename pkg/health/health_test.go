package health

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/go-faster/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakePinger struct {
	err atomic.Pointer[error]
}

func (p *fakePinger) Ping(context.Context) error {
	if e := p.err.Load(); e != nil {
		return *e
	}
	return nil
}

func (p *fakePinger) fail(err error) { p.err.Store(&err) }

func get(t *testing.T, h http.HandlerFunc) *httptest.ResponseRecorder {
	t.Helper()
	w := httptest.NewRecorder()
	h(w, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, "application/json", w.Header().Get("Content-Type"))
	return w
}

func TestReadyEndpoint_NotReadyUntilMarked(t *testing.T) {
	h := New()

	w := get(t, h.ReadyEndpoint)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.JSONEq(t, `{"status":"unhealthy","checks":{"_readiness":"service is not ready"}}`, w.Body.String())

	h.SetReady(true)
	w = get(t, h.ReadyEndpoint)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok"}`, w.Body.String())
	assert.True(t, h.IsReady())
}

func TestCheck_FailureThreshold(t *testing.T) {
	p := &fakePinger{}
	h := New()
	h.SetReady(true)
	h.AddReadinessCheck("store", time.Second, Ping(p))
	c := h.readiness[0]
	ctx := context.Background()

	p.fail(errors.New("connection refused"))
	for range FailureThreshold - 1 {
		c.run(ctx)
	}
	assert.True(t, h.IsReady(), "below threshold")

	c.run(ctx)
	assert.False(t, h.IsReady())
	w := get(t, h.ReadyEndpoint)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.JSONEq(t, `{"status":"unhealthy","checks":{"store":"connection refused"}}`, w.Body.String())

	p.err.Store(nil)
	c.run(ctx)
	assert.True(t, h.IsReady(), "one success recovers")
}

func TestLiveEndpoint(t *testing.T) {
	h := New()
	h.AddLivenessCheck("goroutines", time.Second, GoroutineCountCheck(0))

	assert.Equal(t, http.StatusOK, get(t, h.LiveEndpoint).Code)

	for range FailureThreshold {
		h.liveness[0].run(context.Background())
	}
	w := get(t, h.LiveEndpoint)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Contains(t, w.Body.String(), "exceeds threshold")
}

func TestStartStop(t *testing.T) {
	var calls atomic.Int32
	h := New()
	h.AddReadinessCheck("counter", time.Second, func(context.Context) error {
		calls.Add(1)
		return nil
	})

	h.Start(context.Background(), 10*time.Millisecond)
	require.Eventually(t, func() bool { return calls.Load() >= 2 }, time.Second, 5*time.Millisecond)
	h.Stop()

	stopped := calls.Load()
	time.Sleep(30 * time.Millisecond)
	assert.Equal(t, stopped, calls.Load())
	h.Stop()
}
