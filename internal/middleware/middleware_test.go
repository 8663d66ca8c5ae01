package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"pokedex-backend/pkg/api"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestRequestIDMiddleware(t *testing.T) {
	t.Run("Should generate request ID when not provided", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/test", nil)
		w := httptest.NewRecorder()

		handler := RequestID(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			requestID := GetRequestIDFromRequest(r)
			assert.NotEmpty(t, requestID)
			assert.Equal(t, requestID, r.Header.Get(RequestIDHeader))
			w.WriteHeader(http.StatusOK)
		}))

		handler.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.NotEmpty(t, w.Header().Get("X-Request-ID"))
	})

	t.Run("Should use provided request ID", func(t *testing.T) {
		expectedID := "test-request-id"
		req := httptest.NewRequest("GET", "/test", nil)
		req.Header.Set("X-Request-ID", expectedID)
		w := httptest.NewRecorder()

		handler := RequestID(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, expectedID, GetRequestIDFromRequest(r))
			w.WriteHeader(http.StatusOK)
		}))

		handler.ServeHTTP(w, req)

		assert.Equal(t, expectedID, w.Header().Get("X-Request-ID"))
	})
}

func TestGetRequestID(t *testing.T) {
	assert.Equal(t, "test-id", GetRequestID(WithRequestID(context.Background(), "test-id")))
	assert.Empty(t, GetRequestID(context.Background()))
}

func TestRecoveryMiddleware(t *testing.T) {
	t.Run("Should handle panic gracefully", func(t *testing.T) {
		core, logs := observer.New(zap.ErrorLevel)
		req := httptest.NewRequest("GET", "/test", nil)
		w := httptest.NewRecorder()

		handler := Recovery(zap.New(core))(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			panic("test panic")
		}))

		handler.ServeHTTP(w, req)

		assert.Equal(t, http.StatusInternalServerError, w.Code)
		assert.JSONEq(t, `{"error":"Internal server error"}`, w.Body.String())
		assert.Equal(t, 1, logs.FilterMessage("panic recovered").Len())
	})

	t.Run("Should pass through normal requests", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/test", nil)
		w := httptest.NewRecorder()

		handler := Recovery(zap.NewNop())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			api.Success(w, http.StatusOK, map[string]string{"status": "ok"})
		}))

		handler.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
	})
}

func TestLoggerMiddleware(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	handler := RequestID(Logger(zap.New(core))(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		api.Error(w, http.StatusNotFound, "missing")
	})))

	req := httptest.NewRequest("GET", "/api/v2/pokemon/x", nil)
	req.Header.Set("X-Request-ID", "rid-1")
	handler.ServeHTTP(httptest.NewRecorder(), req)

	entries := logs.All()
	if assert.Len(t, entries, 1) {
		assert.Equal(t, zap.WarnLevel, entries[0].Level)
		fields := entries[0].ContextMap()
		assert.Equal(t, "rid-1", fields["request_id"])
		assert.Equal(t, int64(404), fields["status"])
	}
}

func TestCircuitBreakerMiddleware(t *testing.T) {
	t.Run("Should pass through successful requests", func(t *testing.T) {
		handler := CircuitBreaker(DefaultCircuitBreakerConfig("test"), zap.NewNop())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			api.Success(w, http.StatusOK, map[string]string{"status": "ok"})
		}))

		w := httptest.NewRecorder()
		handler.ServeHTTP(w, httptest.NewRequest("GET", "/test", nil))
		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("Should keep the handler's 5xx response", func(t *testing.T) {
		handler := CircuitBreaker(DefaultCircuitBreakerConfig("test-failure"), zap.NewNop())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			api.Error(w, http.StatusInternalServerError, "store down")
		}))

		w := httptest.NewRecorder()
		handler.ServeHTTP(w, httptest.NewRequest("GET", "/test", nil))
		assert.Equal(t, http.StatusInternalServerError, w.Code)
		assert.JSONEq(t, `{"error":"store down"}`, w.Body.String())
	})

	t.Run("Should open after repeated failures", func(t *testing.T) {
		config := CircuitBreakerConfig{
			Name:             "test-open",
			MaxRequests:      1,
			Interval:         time.Minute,
			Timeout:          time.Minute,
			FailureThreshold: 0.5,
			MinRequests:      2,
		}
		calls := 0
		handler := CircuitBreaker(config, zap.NewNop())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			calls++
			w.WriteHeader(http.StatusInternalServerError)
		}))

		for i := 0; i < 2; i++ {
			handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest("GET", "/test", nil))
		}

		w := httptest.NewRecorder()
		handler.ServeHTTP(w, httptest.NewRequest("GET", "/test", nil))
		assert.Equal(t, http.StatusServiceUnavailable, w.Code)
		assert.Equal(t, 2, calls)
	})

	t.Run("Client errors do not count as failures", func(t *testing.T) {
		config := CircuitBreakerConfig{Name: "test-4xx", MaxRequests: 1, Interval: time.Minute, Timeout: time.Minute, FailureThreshold: 0.5, MinRequests: 1}
		handler := CircuitBreaker(config, zap.NewNop())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusNotFound)
		}))

		for i := 0; i < 5; i++ {
			w := httptest.NewRecorder()
			handler.ServeHTTP(w, httptest.NewRequest("GET", "/test", nil))
			assert.Equal(t, http.StatusNotFound, w.Code)
		}
	})
}
