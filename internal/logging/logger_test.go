package logging

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
)

func TestInitLoggerParsesLevel(t *testing.T) {
	InitLogger("debug")
	assert.Equal(t, zerolog.DebugLevel, zerolog.GlobalLevel())
}

func TestInitLoggerFallsBackToInfoOnUnknownLevel(t *testing.T) {
	InitLogger("nonsense")
	assert.Equal(t, zerolog.InfoLevel, zerolog.GlobalLevel())
}

func TestMiddleware(t *testing.T) {
	InitLogger("info")

	handler := Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// Verify correlation ID is present
		cid := GetCorrelationID(r.Context())
		assert.NotEmpty(t, cid)

		// Verify logger is in context
		logger := FromContext(r.Context())
		assert.NotNil(t, logger)

		w.WriteHeader(http.StatusOK)
	}))

	req, _ := http.NewRequest("GET", "/test", nil)
	rr := httptest.NewRecorder()

	handler.ServeHTTP(rr, req)
	assert.Equal(t, http.StatusOK, rr.Code)
}

func TestMiddleware_ExistingCorrelationID(t *testing.T) {
	InitLogger("info")

	existingID := "existing-id-123"

	handler := Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		cid := GetCorrelationID(r.Context())
		assert.Equal(t, existingID, cid)
	}))

	req, _ := http.NewRequest("GET", "/test", nil)
	req.Header.Set("X-Correlation-ID", existingID)
	rr := httptest.NewRecorder()

	handler.ServeHTTP(rr, req)
}
