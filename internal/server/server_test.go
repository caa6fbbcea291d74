package server

import (
	"context"
	"encoding/json"
	"errors"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"go.uber.org/zap/zaptest"

	"github.com/verte-zerg/typer/internal/pool"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

type fakePassages struct {
	available bool
	text      string
	remaining int
	err       error
	got       pool.Request
}

func (f *fakePassages) Available() bool { return f.available }

func (f *fakePassages) Next(_ context.Context, req pool.Request) (string, int, error) {
	f.got = req
	return f.text, f.remaining, f.err
}

func do(t *testing.T, h http.Handler, method, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, Path, strings.NewReader(body))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&v))
	return v
}

func TestStatusProbe(t *testing.T) {
	h := NewHandler(&fakePassages{available: true}, Config{}, zaptest.NewLogger(t)).Routes()
	rec := do(t, h, http.MethodGet, "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "available", decode[StatusResponse](t, rec).Status)
	assert.NotEmpty(t, rec.Header().Get("X-Request-Id"))

	h = NewHandler(&fakePassages{}, Config{}, nil).Routes()
	rec = do(t, h, http.MethodGet, "")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.NotEmpty(t, decode[ErrorResponse](t, rec).Error)
}

func TestGenerateSuccess(t *testing.T) {
	fake := &fakePassages{available: true, text: "some passage", remaining: 3}
	h := NewHandler(fake, Config{}, zaptest.NewLogger(t))
	rec := do(t, h, http.MethodPost, `{"wordCount":30,"topic":"space","style":"technical"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, GenerateResponse{Text: "some passage", PoolRemaining: 3}, decode[GenerateResponse](t, rec))
	assert.Equal(t, pool.Request{WordCount: 30, Topic: "space", Style: "technical"}, fake.got)
}

func TestGenerateEmptyBodyUsesDefaults(t *testing.T) {
	fake := &fakePassages{available: true, text: "x"}
	h := NewHandler(fake, Config{}, nil)
	rec := do(t, h, http.MethodPost, "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "50-general-casual", fake.got.Key())
}

func TestGenerateErrors(t *testing.T) {
	cases := []struct {
		name   string
		fake   *fakePassages
		method string
		body   string
		want   int
	}{
		{"wrong method", &fakePassages{available: true}, http.MethodPut, "", http.StatusMethodNotAllowed},
		{"unconfigured", &fakePassages{}, http.MethodPost, "{}", http.StatusServiceUnavailable},
		{"pool unavailable", &fakePassages{available: true, err: pool.ErrUnavailable}, http.MethodPost, "{}", http.StatusServiceUnavailable},
		{"generation failed", &fakePassages{available: true, err: errors.New("boom")}, http.MethodPost, "{}", http.StatusInternalServerError},
		{"bad body", &fakePassages{available: true}, http.MethodPost, "{", http.StatusBadRequest},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := do(t, NewHandler(tc.fake, Config{}, zaptest.NewLogger(t)), tc.method, tc.body)
			assert.Equal(t, tc.want, rec.Code)
			assert.NotEmpty(t, decode[ErrorResponse](t, rec).Error)
		})
	}
}

func TestGenerateRateLimited(t *testing.T) {
	h := NewHandler(&fakePassages{available: true, text: "x"}, Config{RateLimit: 0.001, Burst: 1}, nil)
	assert.Equal(t, http.StatusOK, do(t, h, http.MethodPost, "{}").Code)
	assert.Equal(t, http.StatusTooManyRequests, do(t, h, http.MethodPost, "{}").Code)
	// Probes are not limited.
	assert.Equal(t, http.StatusOK, do(t, h, http.MethodGet, "").Code)
}

func TestServeShutsDownOnCancel(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- Serve(ctx, ln, NewHandler(&fakePassages{available: true}, Config{}, nil).Routes(), zaptest.NewLogger(t))
	}()

	client := &http.Client{Timeout: time.Second}
	require.Eventually(t, func() bool {
		resp, err := client.Get("http://" + ln.Addr().String() + Path)
		if err != nil {
			return false
		}
		_ = resp.Body.Close()
		return resp.StatusCode == http.StatusOK
	}, 2*time.Second, 10*time.Millisecond)
	client.CloseIdleConnections()

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not stop")
	}
}
