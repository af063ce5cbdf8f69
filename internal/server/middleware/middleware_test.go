package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRequestID_GeneratesID(t *testing.T) {
	var seen uuid.UUID
	handler := RequestID(http.HandlerFunc(func(_ http.ResponseWriter, r *http.Request) {
		id, ok := GetRequestID(r)
		require.True(t, ok)
		seen = id
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/map", nil))

	assert.NotEqual(t, uuid.Nil, seen)
	assert.Equal(t, seen.String(), rec.Header().Get(RequestIDHeader))
}

func TestRequestID_ReusesValidIncomingID(t *testing.T) {
	incoming := uuid.New()
	handler := RequestID(http.HandlerFunc(func(_ http.ResponseWriter, r *http.Request) {
		id, _ := GetRequestID(r)
		assert.Equal(t, incoming, id)
	}))

	req := httptest.NewRequest(http.MethodGet, "/map", nil)
	req.Header.Set(RequestIDHeader, incoming.String())
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, incoming.String(), rec.Header().Get(RequestIDHeader))
}

func TestRequestID_ReplacesInvalidIncomingID(t *testing.T) {
	handler := RequestID(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))

	req := httptest.NewRequest(http.MethodGet, "/map", nil)
	req.Header.Set(RequestIDHeader, "not-a-uuid")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	_, err := uuid.Parse(rec.Header().Get(RequestIDHeader))
	assert.NoError(t, err)
}

func TestGetRequestID_Missing(t *testing.T) {
	_, ok := GetRequestID(httptest.NewRequest(http.MethodGet, "/", nil))
	assert.False(t, ok)
}

func TestRecover_Returns500(t *testing.T) {
	handler := Recover(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("boom")
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/map", nil))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}
