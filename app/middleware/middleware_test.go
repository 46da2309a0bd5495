package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestLogger(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	handler := RequestID(Logger(zap.New(core))(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	})))

	req := httptest.NewRequest("GET", "/test", nil)
	rw := httptest.NewRecorder()
	handler.ServeHTTP(rw, req)

	require.Equal(t, 1, logs.Len())
	fields := logs.All()[0].ContextMap()
	assert.Equal(t, "GET", fields["method"])
	assert.Equal(t, "/test", fields["path"])
	assert.EqualValues(t, http.StatusTeapot, fields["status"])
	assert.Equal(t, rw.Header().Get(RequestIDHeader), fields["request_id"])
}

func TestRequestID(t *testing.T) {
	var seen string
	handler := RequestID(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = GetRequestID(r.Context())
	}))

	t.Run("generated", func(t *testing.T) {
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, httptest.NewRequest("GET", "/", nil))
		_, err := uuid.Parse(seen)
		require.NoError(t, err)
		assert.Equal(t, seen, w.Header().Get(RequestIDHeader))
	})

	t.Run("propagated", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/", nil)
		req.Header.Set(RequestIDHeader, "abc-123")
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, req)
		assert.Equal(t, "abc-123", seen)
		assert.Equal(t, "abc-123", w.Header().Get(RequestIDHeader))
	})
}

func TestRecoverer(t *testing.T) {
	core, logs := observer.New(zap.ErrorLevel)
	handler := Recoverer(zap.New(core))(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("test panic")
	}))

	req := httptest.NewRequest("GET", "/test", nil)
	w := httptest.NewRecorder()

	handler.ServeHTTP(w, req)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, "Internal Server Error\n", w.Body.String())
	assert.Equal(t, 1, logs.FilterMessage("panic").Len())
}

func TestContentTypeJSON(t *testing.T) {
	tests := []struct {
		name           string
		path           string
		expectedHeader string
	}{
		{
			name:           "API route",
			path:           "/api/test",
			expectedHeader: "application/json",
		},
		{
			name:           "Non-API route",
			path:           "/test",
			expectedHeader: "",
		},
		{
			name:           "Short path",
			path:           "/",
			expectedHeader: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler := ContentTypeJSON(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusOK)
			}))

			req := httptest.NewRequest("GET", tt.path, nil)
			w := httptest.NewRecorder()

			handler.ServeHTTP(w, req)

			contentType := w.Header().Get("Content-Type")
			assert.Equal(t, tt.expectedHeader, contentType)
		})
	}
}

func TestMiddlewareChain(t *testing.T) {
	log := zap.NewNop()
	handler := RequestID(Logger(log)(Recoverer(log)(ContentTypeJSON(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.Contains(r.URL.Path, "panic") {
			panic("test panic")
		}
		w.WriteHeader(http.StatusOK)
	})))))

	tests := []struct {
		name           string
		path           string
		expectedStatus int
		expectedType   string
	}{
		{
			name:           "Normal API request",
			path:           "/api/test",
			expectedStatus: http.StatusOK,
			expectedType:   "application/json",
		},
		{
			name:           "Panic request",
			path:           "/api/panic",
			expectedStatus: http.StatusInternalServerError,
			expectedType:   "text/plain; charset=utf-8", // Error responses use text/plain
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest("GET", tt.path, nil)
			w := httptest.NewRecorder()

			handler.ServeHTTP(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)
			assert.Equal(t, tt.expectedType, w.Header().Get("Content-Type"))
			assert.NotEmpty(t, w.Header().Get(RequestIDHeader))
		})
	}
}
