package suggest

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"slices"
	"strings"
	"time"

	"brd-tui/internal/brd"
)

// Defaults used when Options leaves a field zero.
const (
	DefaultBaseURL      = "http://localhost:11434"
	DefaultTimeout      = 300 * time.Second
	DefaultProbeTimeout = 2 * time.Second
)

// Logger is the subset of the logging package the gateway writes to.
type Logger interface {
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

type nopLogger struct{}

func (nopLogger) Info(string, ...any)  {}
func (nopLogger) Warn(string, ...any)  {}
func (nopLogger) Error(string, ...any) {}

// Options configures a Client.
type Options struct {
	BaseURL      string
	Timeout      time.Duration
	ProbeTimeout time.Duration
	Stream       bool
	MaxInFlight  int
	HTTPClient   *http.Client
	Logger       Logger
	Metrics      *Metrics
}

// Client talks to a local Ollama server.
type Client struct {
	baseURL      string
	timeout      time.Duration
	probeTimeout time.Duration
	stream       bool
	http         *http.Client
	gate         *Gate
	log          Logger
	metrics      *Metrics
}

// New returns a client for opts, filling unset fields with defaults.
func New(opts Options) *Client {
	c := &Client{
		baseURL:      strings.TrimRight(opts.BaseURL, "/"),
		timeout:      opts.Timeout,
		probeTimeout: opts.ProbeTimeout,
		stream:       opts.Stream,
		http:         opts.HTTPClient,
		gate:         NewGate(opts.MaxInFlight),
		log:          opts.Logger,
		metrics:      opts.Metrics,
	}
	if c.baseURL == "" {
		c.baseURL = DefaultBaseURL
	}
	if c.timeout <= 0 {
		c.timeout = DefaultTimeout
	}
	if c.probeTimeout <= 0 {
		c.probeTimeout = DefaultProbeTimeout
	}
	if c.http == nil {
		c.http = &http.Client{}
	}
	if c.log == nil {
		c.log = nopLogger{}
	}
	return c
}

// BaseURL returns the server address the client targets.
func (c *Client) BaseURL() string { return c.baseURL }

// Request asks for one record of Kind. Hint is the user's short
// description of what the record should cover.
type Request struct {
	Kind        brd.Kind
	Hint        string
	Model       brd.ModelName
	Temperature float64
}

// Suggestion is a draft record. Fields holds a value, possibly empty, for
// every field of Kind.
type Suggestion struct {
	Kind   brd.Kind
	Fields map[string]string
	Raw    string
}

// Status is the result of a connectivity probe.
type Status struct {
	Reachable bool     `json:"reachable"`
	BaseURL   string   `json:"base_url"`
	Models    []string `json:"models"`
	Error     string   `json:"error,omitempty"`
}

type tagsResponse struct {
	Models []struct {
		Name string `json:"name"`
	} `json:"models"`
}

type generateRequest struct {
	Model   string         `json:"model"`
	Prompt  string         `json:"prompt"`
	Stream  bool           `json:"stream"`
	Format  string         `json:"format,omitempty"`
	Options map[string]any `json:"options,omitempty"`
}

type generateChunk struct {
	Response string `json:"response"`
	Done     bool   `json:"done"`
	Error    string `json:"error"`
}

// Ping reports whether the server answers within the probe timeout.
func (c *Client) Ping(ctx context.Context) error {
	_, err := c.Models(ctx)
	return err
}

// Models lists the models the server has pulled, without tag suffixes,
// sorted and de-duplicated.
func (c *Client) Models(ctx context.Context) ([]string, error) {
	ctx, cancel := context.WithTimeout(ctx, c.probeTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/api/tags", nil)
	if err != nil {
		return nil, &GatewayError{Op: "models", Kind: ErrUnavailable, Err: err}
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, classify(ctx, "models", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode/100 != 2 {
		return nil, &GatewayError{Op: "models", Kind: ErrUnavailable, Err: fmt.Errorf("status %d", resp.StatusCode)}
	}

	var tags tagsResponse
	if err := json.NewDecoder(resp.Body).Decode(&tags); err != nil {
		return nil, classify(ctx, "models", fmt.Errorf("decode tags: %w", err))
	}
	names := make([]string, 0, len(tags.Models))
	for _, m := range tags.Models {
		name, _, _ := strings.Cut(m.Name, ":")
		if name != "" {
			names = append(names, name)
		}
	}
	slices.Sort(names)
	return slices.Compact(names), nil
}

// Status probes the server and never fails; problems are reported in the
// returned value.
func (c *Client) Status(ctx context.Context) Status {
	st := Status{BaseURL: c.baseURL, Models: []string{}}
	models, err := c.Models(ctx)
	if err != nil {
		st.Error = err.Error()
		return st
	}
	st.Reachable = true
	st.Models = models
	return st
}

// Suggest generates a draft record. The call is bounded by the client
// timeout, waits its turn at the in-flight gate, and is never retried.
func (c *Client) Suggest(ctx context.Context, r Request) (Suggestion, error) {
	started := time.Now()
	s, err := c.suggest(ctx, r)
	c.metrics.observe(r.Kind, started, err)
	if err != nil {
		c.log.Warn("suggestion failed", "kind", string(r.Kind), "model", string(r.Model), "err", err)
		return Suggestion{}, err
	}
	c.log.Info("suggestion generated", "kind", string(r.Kind), "model", string(r.Model),
		"duration", time.Since(started).Round(time.Millisecond).String())
	return s, nil
}

func (c *Client) suggest(ctx context.Context, r Request) (Suggestion, error) {
	if brd.Schema(r.Kind) == nil {
		return Suggestion{}, fmt.Errorf("suggest: %w: %q", brd.ErrUnknownKind, r.Kind)
	}
	model := r.Model
	if model == "" {
		model = brd.ModelLlama32
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	if err := c.gate.Enter(ctx); err != nil {
		return Suggestion{}, classify(ctx, "generate", err)
	}
	defer c.gate.Leave()

	body, err := json.Marshal(generateRequest{
		Model:   string(model),
		Prompt:  Prompt(r.Kind, r.Hint),
		Stream:  c.stream,
		Format:  "json",
		Options: map[string]any{"temperature": r.Temperature},
	})
	if err != nil {
		return Suggestion{}, &GatewayError{Op: "generate", Kind: ErrUnavailable, Err: err}
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/generate", bytes.NewReader(body))
	if err != nil {
		return Suggestion{}, &GatewayError{Op: "generate", Kind: ErrUnavailable, Err: err}
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return Suggestion{}, classify(ctx, "generate", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode/100 != 2 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return Suggestion{}, &GatewayError{Op: "generate", Kind: ErrUnavailable,
			Err: fmt.Errorf("status %d: %s", resp.StatusCode, strings.TrimSpace(string(msg)))}
	}

	text, err := readGeneration(resp.Body)
	if err != nil {
		return Suggestion{}, classify(ctx, "generate", err)
	}
	return Suggestion{Kind: r.Kind, Fields: parseFields(r.Kind, text), Raw: text}, nil
}

// readGeneration concatenates the response field of every chunk. A
// single-shot reply is the one-chunk case.
func readGeneration(body io.Reader) (string, error) {
	var out strings.Builder
	dec := json.NewDecoder(body)
	chunks := 0
	for {
		var ch generateChunk
		err := dec.Decode(&ch)
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return "", fmt.Errorf("decode chunk: %w", err)
		}
		if ch.Error != "" {
			return "", fmt.Errorf("server error: %s", ch.Error)
		}
		out.WriteString(ch.Response)
		chunks++
		if ch.Done {
			break
		}
	}
	if chunks == 0 {
		return "", errors.New("empty response")
	}
	return out.String(), nil
}

// classify wraps err as a timeout when the deadline passed or the
// transport timed out, and as unavailable otherwise.
func classify(ctx context.Context, op string, err error) error {
	var netErr net.Error
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) ||
		(errors.As(err, &netErr) && netErr.Timeout()) {
		return &GatewayError{Op: op, Kind: ErrTimeout, Err: err}
	}
	return &GatewayError{Op: op, Kind: ErrUnavailable, Err: err}
}
