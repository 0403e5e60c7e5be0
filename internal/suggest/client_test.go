package suggest

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"brd-tui/internal/brd"
)

// fakeOllama serves /api/tags and /api/generate. generate receives the
// decoded request and writes the reply.
func fakeOllama(t *testing.T, generate func(w http.ResponseWriter, req generateRequest)) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/tags", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"models":[{"name":"mistral:latest"},{"name":"llama3.2:3b"},{"name":"llama3.2:latest"}]}`)
	})
	mux.HandleFunc("POST /api/generate", func(w http.ResponseWriter, r *http.Request) {
		var req generateRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		generate(w, req)
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func TestModelsStripsTags(t *testing.T) {
	srv := fakeOllama(t, nil)
	c := New(Options{BaseURL: srv.URL})

	models, err := c.Models(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"llama3.2", "mistral"}, models)
	assert.NoError(t, c.Ping(context.Background()))

	st := c.Status(context.Background())
	assert.True(t, st.Reachable)
	assert.Equal(t, srv.URL, st.BaseURL)
}

func TestPingUnreachable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	c := New(Options{BaseURL: url, ProbeTimeout: 500 * time.Millisecond})
	err := c.Ping(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUnavailable)

	var ge *GatewayError
	require.ErrorAs(t, err, &ge)
	assert.Equal(t, "models", ge.Op)

	st := c.Status(context.Background())
	assert.False(t, st.Reachable)
	assert.NotEmpty(t, st.Error)
	assert.Empty(t, st.Models)
}

func TestSuggestSingleShot(t *testing.T) {
	var got generateRequest
	srv := fakeOllama(t, func(w http.ResponseWriter, req generateRequest) {
		got = req
		json.NewEncoder(w).Encode(map[string]any{
			"response": `{"screen_component":"Order List","requirement_description":"List orders","priority":"Must"}`,
			"done":     true,
		})
	})
	reg := prometheus.NewRegistry()
	m := NewMetrics(reg)
	c := New(Options{BaseURL: srv.URL, Metrics: m})

	s, err := c.Suggest(context.Background(), Request{
		Kind: brd.KindUISpec, Hint: "order tracking", Model: brd.ModelMistral, Temperature: 0.4,
	})
	require.NoError(t, err)

	assert.Equal(t, "mistral", got.Model)
	assert.False(t, got.Stream)
	assert.Equal(t, 0.4, got.Options["temperature"])
	assert.Contains(t, got.Prompt, "order tracking")

	assert.Equal(t, brd.KindUISpec, s.Kind)
	assert.Equal(t, "Order List", s.Fields["screen_component"])
	assert.Equal(t, "Must", s.Fields["priority"])
	assert.Equal(t, 1.0, testutil.ToFloat64(m.requests.WithLabelValues("ui_specs", "ok")))
}

func TestSuggestStreaming(t *testing.T) {
	srv := fakeOllama(t, func(w http.ResponseWriter, req generateRequest) {
		assert.True(t, req.Stream)
		for _, part := range []string{`{"category":`, `"Backend",`, `"technology_tool":"Go"}`} {
			b, _ := json.Marshal(generateChunk{Response: part})
			fmt.Fprintf(w, "%s\n", b)
		}
		fmt.Fprintln(w, `{"response":"","done":true}`)
	})
	c := New(Options{BaseURL: srv.URL, Stream: true})

	s, err := c.Suggest(context.Background(), Request{Kind: brd.KindTechStack, Hint: "language"})
	require.NoError(t, err)
	assert.Equal(t, "Backend", s.Fields["category"])
	assert.Equal(t, "Go", s.Fields["technology_tool"])
	assert.Equal(t, `{"category":"Backend","technology_tool":"Go"}`, s.Raw)
}

func TestSuggestTimeout(t *testing.T) {
	release := make(chan struct{})
	srv := fakeOllama(t, func(w http.ResponseWriter, req generateRequest) {
		<-release
	})
	defer close(release)
	reg := prometheus.NewRegistry()
	m := NewMetrics(reg)
	c := New(Options{BaseURL: srv.URL, Timeout: 50 * time.Millisecond, Metrics: m})

	_, err := c.Suggest(context.Background(), Request{Kind: brd.KindUISpec, Hint: "x"})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrTimeout)
	assert.False(t, errors.Is(err, ErrUnavailable))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.requests.WithLabelValues("ui_specs", "timeout")))
}

func TestSuggestServerError(t *testing.T) {
	srv := fakeOllama(t, func(w http.ResponseWriter, req generateRequest) {
		http.Error(w, `{"error":"model not found"}`, http.StatusNotFound)
	})
	c := New(Options{BaseURL: srv.URL})

	_, err := c.Suggest(context.Background(), Request{Kind: brd.KindAPISpec, Hint: "x"})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUnavailable)
	assert.Contains(t, err.Error(), "model not found")
}

func TestSuggestErrorChunk(t *testing.T) {
	srv := fakeOllama(t, func(w http.ResponseWriter, req generateRequest) {
		fmt.Fprintln(w, `{"error":"out of memory"}`)
	})
	c := New(Options{BaseURL: srv.URL})

	_, err := c.Suggest(context.Background(), Request{Kind: brd.KindAPISpec, Hint: "x"})
	assert.ErrorIs(t, err, ErrUnavailable)
}

func TestSuggestUnknownKind(t *testing.T) {
	c := New(Options{BaseURL: "http://127.0.0.1:1"})
	_, err := c.Suggest(context.Background(), Request{Kind: "nope"})
	assert.ErrorIs(t, err, brd.ErrUnknownKind)
}

func TestSuggestOneAtATime(t *testing.T) {
	var inFlight, peak atomic.Int32
	srv := fakeOllama(t, func(w http.ResponseWriter, req generateRequest) {
		n := inFlight.Add(1)
		for {
			p := peak.Load()
			if n <= p || peak.CompareAndSwap(p, n) {
				break
			}
		}
		time.Sleep(20 * time.Millisecond)
		inFlight.Add(-1)
		fmt.Fprintln(w, `{"response":"{}","done":true}`)
	})
	c := New(Options{BaseURL: srv.URL})

	errs := make(chan error, 3)
	for range 3 {
		go func() {
			_, err := c.Suggest(context.Background(), Request{Kind: brd.KindDBField, Hint: "x"})
			errs <- err
		}()
	}
	for range 3 {
		require.NoError(t, <-errs)
	}
	assert.Equal(t, int32(1), peak.Load())
}
