package testutil

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// DoJSON sends a request with an optional JSON body through engine
func DoJSON(t *testing.T, engine *gin.Engine, method, path string, body interface{}, headers map[string]string) *httptest.ResponseRecorder {
	t.Helper()

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err, "Failed to marshal request body")
		reader = bytes.NewReader(data)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)
	return w
}

// DecodeEnvelope parses the response envelope
func DecodeEnvelope(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()

	var result map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &result), "Failed to parse JSON response: %s", w.Body.String())
	return result
}

// AssertSuccess asserts a 2xx status and success=true
func AssertSuccess(t *testing.T, w *httptest.ResponseRecorder, status int) map[string]interface{} {
	t.Helper()

	require.Equal(t, status, w.Code, w.Body.String())
	resp := DecodeEnvelope(t, w)
	assert.Equal(t, true, resp["success"])
	return resp
}

// AssertError asserts the status and the error code of an error envelope
func AssertError(t *testing.T, w *httptest.ResponseRecorder, status int, code string) {
	t.Helper()

	require.Equal(t, status, w.Code, w.Body.String())
	resp := DecodeEnvelope(t, w)
	assert.Equal(t, false, resp["success"])
	errMap, ok := resp["error"].(map[string]interface{})
	require.True(t, ok, "Expected error object in response")
	assert.Equal(t, code, errMap["code"])
}

// Ping is a trivial handler used by middleware tests
func Ping(c *gin.Context) {
	c.String(http.StatusOK, "pong")
}
