package handlers

import (
	"net/http"
	"net/http/httptest"
	"testing"

	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestChain_Order(t *testing.T) {
	var order []string
	mark := func(name string) func(http.Handler) http.Handler {
		return func(next http.Handler) http.Handler {
			return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				order = append(order, name)
				next.ServeHTTP(w, r)
			})
		}
	}
	h := Chain(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		order = append(order, "handler")
	}), mark("first"), mark("second"))

	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, []string{"first", "second", "handler"}, order)
}

func TestMiddleware_Stack(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	mws := Middleware(MiddlewareConfig{Logger: zap.New(core), RateLimitPerMinute: 2})

	var requestID string
	h := Chain(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID = chimiddleware.GetReqID(r.Context())
		w.WriteHeader(http.StatusTeapot)
	}), mws...)

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/empresas", nil))

	assert.Equal(t, http.StatusTeapot, rec.Code)
	assert.NotEmpty(t, requestID)
	assert.Equal(t, "DENY", rec.Header().Get("X-Frame-Options"))
	assert.Equal(t, "nosniff", rec.Header().Get("X-Content-Type-Options"))

	entries := logs.FilterMessage("request").All()
	require.Len(t, entries, 1)
	fields := entries[0].ContextMap()
	assert.Equal(t, "/empresas", fields["path"])
	assert.Equal(t, int64(http.StatusTeapot), fields["status"])
	assert.Equal(t, requestID, fields["request_id"])
}

func TestMiddleware_RateLimit(t *testing.T) {
	mws := Middleware(MiddlewareConfig{Logger: zap.NewNop(), RateLimitPerMinute: 2})
	h := Chain(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}), mws...)

	codes := make([]int, 0, 3)
	for i := 0; i < 3; i++ {
		req := httptest.NewRequest(http.MethodGet, "/fornecedores", nil)
		req.RemoteAddr = "203.0.113.9:4000"
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		codes = append(codes, rec.Code)
	}
	assert.Equal(t, []int{http.StatusOK, http.StatusOK, http.StatusTooManyRequests}, codes)
}

func TestMiddleware_RateLimitDisabled(t *testing.T) {
	withLimit := Middleware(MiddlewareConfig{Logger: zap.NewNop(), RateLimitPerMinute: 10})
	withoutLimit := Middleware(MiddlewareConfig{Logger: zap.NewNop()})
	assert.Len(t, withoutLimit, len(withLimit)-1)
}

func TestMiddleware_RecoversPanics(t *testing.T) {
	mws := Middleware(MiddlewareConfig{Logger: zap.NewNop()})
	h := Chain(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("boom")
	}), mws...)

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}
