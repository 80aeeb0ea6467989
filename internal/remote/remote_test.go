package remote

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hay-kot/casekit/internal/core/transform"
)

type fakeService struct {
	catalogCalls  atomic.Int32
	catalogStatus int
	delay         time.Duration
}

func (f *fakeService) handler(t *testing.T) http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /api/transformations", func(w http.ResponseWriter, r *http.Request) {
		f.catalogCalls.Add(1)
		if f.catalogStatus != 0 {
			w.WriteHeader(f.catalogStatus)
			return
		}
		_ = json.NewEncoder(w).Encode(methodsResponse{Transformations: []transform.Method{
			{Name: "upper-case", Label: "UPPER CASE", Category: "case"},
			{Name: "base64-encode", Category: "encoding"},
			{Name: "lower-case", Category: "case"},
		}})
	})

	mux.HandleFunc("POST /api/transform", func(w http.ResponseWriter, r *http.Request) {
		var req transformRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("decode request: %v", err)
			w.WriteHeader(http.StatusBadRequest)
			return
		}

		if f.delay > 0 {
			select {
			case <-time.After(f.delay):
			case <-r.Context().Done():
				return
			}
		}

		switch req.Transformation {
		case "upper-case":
			_ = json.NewEncoder(w).Encode(transformResponse{Result: strings.ToUpper(req.Text)})
		case "explode":
			w.WriteHeader(http.StatusUnprocessableEntity)
			_ = json.NewEncoder(w).Encode(transformResponse{Error: "input too long"})
		case "broken":
			w.WriteHeader(http.StatusInternalServerError)
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	})

	return mux
}

func newRegistry(t *testing.T, svc *fakeService, opts ...Option) *Registry {
	t.Helper()

	srv := httptest.NewServer(svc.handler(t))
	t.Cleanup(srv.Close)

	reg, err := New(srv.URL+"/", append([]Option{WithHTTPClient(srv.Client())}, opts...)...)
	require.NoError(t, err)
	return reg
}

func TestNew_RejectsBadURL(t *testing.T) {
	_, err := New("ftp://example.com")
	assert.Error(t, err)
}

func TestRegistry_Transform(t *testing.T) {
	reg := newRegistry(t, &fakeService{})

	got, err := reg.Transform(context.Background(), "upper-case", "hello", nil)
	require.NoError(t, err)
	assert.Equal(t, "HELLO", got)
}

func TestRegistry_TransformErrors(t *testing.T) {
	reg := newRegistry(t, &fakeService{})
	ctx := context.Background()

	_, err := reg.Transform(ctx, "missing", "x", nil)
	assert.ErrorIs(t, err, transform.ErrNotFound)

	_, err = reg.Transform(ctx, "explode", "x", nil)
	var failure *transform.Failure
	require.True(t, errors.As(err, &failure))
	assert.Equal(t, "input too long", failure.Error())

	_, err = reg.Transform(ctx, "broken", "x", nil)
	require.True(t, errors.As(err, &failure))
	assert.Equal(t, "transformation service returned 500", failure.Error())
}

func TestRegistry_TransformTimeout(t *testing.T) {
	reg := newRegistry(t, &fakeService{delay: time.Second}, WithTimeout(20*time.Millisecond))

	_, err := reg.Transform(context.Background(), "upper-case", "x", nil)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestRegistry_CatalogIsCached(t *testing.T) {
	svc := &fakeService{}
	reg := newRegistry(t, svc)

	assert.True(t, reg.Has("upper-case"))
	assert.False(t, reg.Has("nope"))

	m, ok := reg.Method("upper-case")
	require.True(t, ok)
	assert.Equal(t, "UPPER CASE", m.Label)

	names := make([]string, 0)
	for _, m := range reg.Methods() {
		names = append(names, m.Name)
	}
	assert.Equal(t, []string{"lower-case", "upper-case", "base64-encode"}, names)
	assert.Len(t, reg.Grouped()["case"], 2)

	assert.EqualValues(t, 1, svc.catalogCalls.Load())

	require.NoError(t, reg.Refresh(context.Background()))
	assert.EqualValues(t, 2, svc.catalogCalls.Load())
}

func TestRegistry_CatalogUnavailable(t *testing.T) {
	svc := &fakeService{catalogStatus: http.StatusInternalServerError}
	reg := newRegistry(t, svc)

	// the name is unknown until the catalog loads
	assert.True(t, reg.Has("upper-case"))
	_, ok := reg.Method("upper-case")
	assert.False(t, ok)

	_, err := reg.Transform(context.Background(), "upper-case", "x", nil)
	require.Error(t, err)
	assert.NotErrorIs(t, err, transform.ErrNotFound)

	var failure *transform.Failure
	require.True(t, errors.As(err, &failure))
	assert.Equal(t, "upper-case", failure.Method)
	assert.Contains(t, failure.Error(), "unexpected status 500")
}
