// Package remote implements transform.Registry over the web application's
// HTTP API.
package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/hay-kot/casekit/internal/core/transform"
)

const (
	methodsPath   = "/api/transformations"
	transformPath = "/api/transform"

	// DefaultTimeout bounds every request when no timeout is configured.
	DefaultTimeout = 5 * time.Second

	maxErrorBody = 4 << 10
)

type methodsResponse struct {
	Transformations []transform.Method `json:"transformations"`
}

type transformRequest struct {
	Transformation string            `json:"transformation"`
	Text           string            `json:"text"`
	Options        transform.Options `json:"options,omitempty"`
}

type transformResponse struct {
	Result string `json:"result"`
	Error  string `json:"error,omitempty"`
}

// Registry calls a remote transformation service. The method catalog is
// fetched on first use and cached until Refresh.
type Registry struct {
	baseURL *url.URL
	client  *http.Client
	timeout time.Duration
	log     zerolog.Logger

	mu      sync.RWMutex
	loaded  bool
	methods []transform.Method
	byName  map[string]transform.Method
}

var _ transform.Registry = (*Registry)(nil)

type Option func(*Registry)

// WithHTTPClient replaces the default HTTP client.
func WithHTTPClient(c *http.Client) Option {
	return func(r *Registry) {
		r.client = c
	}
}

// WithTimeout bounds each request.
func WithTimeout(d time.Duration) Option {
	return func(r *Registry) {
		if d > 0 {
			r.timeout = d
		}
	}
}

// WithLogger sets the logger.
func WithLogger(log zerolog.Logger) Option {
	return func(r *Registry) {
		r.log = log.With().Str("component", "remote").Logger()
	}
}

// New creates a registry rooted at baseURL.
func New(baseURL string, opts ...Option) (*Registry, error) {
	u, err := url.Parse(strings.TrimSuffix(baseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("parse registry url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("registry url %q: scheme must be http or https", baseURL)
	}

	r := &Registry{
		baseURL: u,
		client:  http.DefaultClient,
		timeout: DefaultTimeout,
		log:     zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r, nil
}

func (r *Registry) endpoint(path string) string {
	return r.baseURL.String() + path
}

// Refresh re-fetches the method catalog.
func (r *Registry) Refresh(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, r.endpoint(methodsPath), nil)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := r.client.Do(req)
	if err != nil {
		return fmt.Errorf("fetch transformations: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("fetch transformations: unexpected status %d", resp.StatusCode)
	}

	var body methodsResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return fmt.Errorf("decode transformations: %w", err)
	}

	methods := body.Transformations
	transform.SortMethods(methods)
	byName := make(map[string]transform.Method, len(methods))
	for _, m := range methods {
		byName[m.Name] = m
	}

	r.mu.Lock()
	r.methods = methods
	r.byName = byName
	r.loaded = true
	r.mu.Unlock()

	r.log.Debug().Int("count", len(methods)).Msg("loaded transformations")
	return nil
}

// ensure loads the catalog once. A failed load is retried on the next call.
func (r *Registry) ensure(ctx context.Context) error {
	r.mu.RLock()
	loaded := r.loaded
	r.mu.RUnlock()
	if loaded {
		return nil
	}

	if err := r.Refresh(ctx); err != nil {
		r.log.Warn().Err(err).Msg("failed to load transformations")
		return err
	}
	return nil
}

// Transform posts text to the remote service.
func (r *Registry) Transform(ctx context.Context, name, text string, opts transform.Options) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	if err := r.ensure(ctx); err != nil {
		if ctx.Err() != nil {
			return "", ctx.Err()
		}
		return "", &transform.Failure{Method: name, Err: err}
	}

	payload, err := json.Marshal(transformRequest{Transformation: name, Text: text, Options: opts})
	if err != nil {
		return "", &transform.Failure{Method: name, Err: err}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.endpoint(transformPath), bytes.NewReader(payload))
	if err != nil {
		return "", &transform.Failure{Method: name, Err: err}
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := r.client.Do(req)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
			return "", ctx.Err()
		}
		return "", &transform.Failure{Method: name, Err: err}
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode == http.StatusNotFound {
		return "", fmt.Errorf("%w: %s", transform.ErrNotFound, name)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", &transform.Failure{Method: name, Err: errors.New(errorMessage(resp))}
	}

	var body transformResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return "", &transform.Failure{Method: name, Err: fmt.Errorf("decode response: %w", err)}
	}
	return body.Result, nil
}

func errorMessage(resp *http.Response) string {
	data, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))

	var body transformResponse
	if err := json.Unmarshal(data, &body); err == nil && body.Error != "" {
		return body.Error
	}
	return fmt.Sprintf("transformation service returned %d", resp.StatusCode)
}

// Has reports true while the catalog cannot be loaded so Transform surfaces
// the load error.
func (r *Registry) Has(name string) bool {
	if err := r.ensure(context.Background()); err != nil {
		return true
	}

	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.byName[name]
	return ok
}

func (r *Registry) Method(name string) (transform.Method, bool) {
	_ = r.ensure(context.Background())

	r.mu.RLock()
	defer r.mu.RUnlock()
	m, ok := r.byName[name]
	return m, ok
}

func (r *Registry) Methods() []transform.Method {
	_ = r.ensure(context.Background())

	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]transform.Method, len(r.methods))
	copy(out, r.methods)
	return out
}

func (r *Registry) Grouped() map[string][]transform.Method {
	return transform.Group(r.Methods())
}
