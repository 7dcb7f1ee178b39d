package poi

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	"go.uber.org/zap"
)

func newTestServer(t *testing.T, handler http.HandlerFunc) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return srv
}

func TestGet(t *testing.T) {
	srv := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/pois/Pharmacy", r.URL.Path)
		assert.Equal(t, "Bearer secret", r.Header.Get("Authorization"))
		w.Write([]byte(`{"message":"ok","data":{"_id":"Pharmacy","name":"Pharmacy","hours":"8-20","categories":["Health"]}}`))
	})

	c := NewClient(srv.URL+"/api/", WithToken("secret"))
	p, err := c.Get(context.Background(), "Pharmacy")
	require.NoError(t, err)
	assert.Equal(t, "Pharmacy", p.ID)
	assert.Equal(t, "8-20", p.Hours)
	assert.Equal(t, []string{"Health"}, p.Categories)
}

func TestEndpoints(t *testing.T) {
	var paths []string
	var mu sync.Mutex
	srv := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		paths = append(paths, r.URL.RequestURI())
		mu.Unlock()
		if r.URL.Path == "/pois/uuid/abc-1" {
			w.Write([]byte(`{"data":{"_id":"1","uuid":"abc-1","name":"Lobby"}}`))
			return
		}
		w.Write([]byte(`{"data":[{"_id":"1","name":"Lobby"},{"_id":"2","name":"Cafe"}]}`))
	})
	c := NewClient(srv.URL)
	ctx := context.Background()

	all, err := c.List(ctx, url.Values{"limit": {"10"}})
	require.NoError(t, err)
	assert.Len(t, all, 2)

	found, err := c.Search(ctx, url.Values{"q": {"caf"}})
	require.NoError(t, err)
	assert.Equal(t, "Cafe", found[1].Name)

	byFloor, err := c.ListByFloor(ctx, "L1")
	require.NoError(t, err)
	assert.Len(t, byFloor, 2)

	one, err := c.GetByUUID(ctx, "abc-1")
	require.NoError(t, err)
	assert.Equal(t, "abc-1", one.UUID)

	assert.Equal(t, []string{"/pois?limit=10", "/pois/search?q=caf", "/pois/floor/L1", "/pois/uuid/abc-1"}, paths)
}

func TestErrorClassification(t *testing.T) {
	tests := []struct {
		name       string
		status     int
		body       string
		wantIs     error
		wantStatus int
		wantMsg    string
	}{
		{"not found", http.StatusNotFound, `{"message":"no such poi"}`, ErrNotFound, 404, "no such poi"},
		{"unauthorized", http.StatusUnauthorized, ``, ErrUnauthorized, 401, "Unauthorized"},
		{"server error", http.StatusInternalServerError, `{"message":"db down"}`, nil, 500, "db down"},
		{"empty data", http.StatusOK, `{"message":"ok","data":null}`, ErrNotFound, 200, "empty response"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				w.Write([]byte(tt.body))
			})
			_, err := NewClient(srv.URL).Get(context.Background(), "x")
			require.Error(t, err)

			var apiErr *APIError
			require.True(t, errors.As(err, &apiErr))
			assert.Equal(t, tt.wantStatus, apiErr.Status)
			assert.Equal(t, tt.wantMsg, apiErr.Message)
			if tt.wantIs != nil {
				assert.ErrorIs(t, err, tt.wantIs)
			} else {
				assert.False(t, errors.Is(err, ErrNotFound))
			}
		})
	}
}

func TestUnauthorizedDropsToken(t *testing.T) {
	srv := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	})
	c := NewClient(srv.URL, WithToken("expired"))
	_, err := c.Get(context.Background(), "x")
	assert.ErrorIs(t, err, ErrUnauthorized)
	assert.Empty(t, c.Token())
}

func TestTransportFailure(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	addr := srv.URL
	srv.Close()

	_, err := NewClient(addr).Get(context.Background(), "x")
	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Zero(t, apiErr.Status)
	assert.False(t, errors.Is(err, ErrNotFound))
}

func TestTimeout(t *testing.T) {
	srv := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-time.After(time.Second):
		case <-r.Context().Done():
		}
	})
	c := NewClient(srv.URL, WithHTTPClient(&http.Client{Timeout: 20 * time.Millisecond}))
	_, err := c.Get(context.Background(), "x")
	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Zero(t, apiErr.Status)
}

func TestSpans(t *testing.T) {
	sr := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(sr))

	srv := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/pois/missing" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		w.Write([]byte(`{"data":{"_id":"ok","name":"OK"}}`))
	})
	c := NewClient(srv.URL, WithTracerProvider(tp))

	_, err := c.Get(context.Background(), "ok")
	require.NoError(t, err)
	_, err = c.Get(context.Background(), "missing")
	require.Error(t, err)

	spans := sr.Ended()
	require.Len(t, spans, 2)
	assert.Equal(t, "poi.get", spans[0].Name())
	assert.Equal(t, codes.Unset, spans[0].Status().Code)
	assert.Equal(t, codes.Error, spans[1].Status().Code)

	var status int64
	for _, kv := range spans[1].Attributes() {
		if kv.Key == "http.response.status_code" {
			status = kv.Value.AsInt64()
		}
	}
	assert.Equal(t, int64(404), status)
}

func TestResolverCoalescesLookups(t *testing.T) {
	var hits atomic.Int32
	release := make(chan struct{})
	srv := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		<-release
		w.Write([]byte(`{"data":{"_id":"Gym","name":"Gym"}}`))
	})
	r := NewResolver(NewClient(srv.URL), zap.NewNop())

	var wg sync.WaitGroup
	results := make([]POI, 4)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			p, err := r.Resolve(context.Background(), "Gym")
			assert.NoError(t, err)
			results[i] = p
		}(i)
	}
	// Give the goroutines time to join the in-flight call.
	time.Sleep(50 * time.Millisecond)
	close(release)
	wg.Wait()

	assert.Equal(t, int32(1), hits.Load())
	for _, p := range results {
		assert.Equal(t, "Gym", p.Name)
	}
}

func TestResolverNotFound(t *testing.T) {
	srv := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})
	_, err := NewResolver(NewClient(srv.URL), zap.NewNop()).Resolve(context.Background(), "Nowhere")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestGetCancelled(t *testing.T) {
	srv := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"data":{"_id":"x"}}`))
	})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewClient(srv.URL).Get(ctx, "x")
	assert.ErrorIs(t, err, context.Canceled)
	var apiErr *APIError
	assert.False(t, errors.As(err, &apiErr))
}

func TestResolverCancelledCallerDoesNotPoisonLookup(t *testing.T) {
	var hits atomic.Int32
	release := make(chan struct{})
	srv := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		select {
		case <-release:
		case <-r.Context().Done():
			return
		}
		w.Write([]byte(`{"data":{"_id":"Cafe","name":"Cafe"}}`))
	})
	r := NewResolver(NewClient(srv.URL), zap.NewNop())

	ctx, cancel := context.WithCancel(context.Background())
	errc := make(chan error, 1)
	go func() {
		_, err := r.Resolve(ctx, "Cafe")
		errc <- err
	}()
	// Let the first lookup reach the server before abandoning it.
	time.Sleep(50 * time.Millisecond)
	cancel()
	require.ErrorIs(t, <-errc, context.Canceled)

	go func() {
		time.Sleep(20 * time.Millisecond)
		close(release)
	}()
	p, err := r.Resolve(context.Background(), "Cafe")
	require.NoError(t, err)
	assert.Equal(t, "Cafe", p.Name)
	assert.Equal(t, int32(1), hits.Load())
}

func TestPlaceholder(t *testing.T) {
	p := Placeholder("Area_7")
	assert.Equal(t, "Area_7", p.Name)
	assert.NotEmpty(t, p.Description)
	assert.Equal(t, "Open daily 6:00 - 22:00", p.Hours)
}
