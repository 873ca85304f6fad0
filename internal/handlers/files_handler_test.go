package handlers_test

import (
	"compress/gzip"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHealth(t *testing.T) {
	env := newTestEnv(t)

	rr := env.do(httptest.NewRequest(http.MethodGet, "/health", nil))
	require.Equal(t, http.StatusOK, rr.Code)
	body := decodeBody(t, rr)
	assert.Equal(t, true, body["ok"])
	assert.Equal(t, "heuristic", body["tag_provider"])
	assert.Equal(t, "mock", body["tryon_provider"])

	env.pingErr = errors.New("db down")
	rr = env.do(httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rr.Code)
	body = decodeBody(t, rr)
	assert.Equal(t, false, body["ok"])
	assert.Equal(t, "db down", body["error"])
}

func TestHealth_Gzip(t *testing.T) {
	env := newTestEnv(t)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set("Accept-Encoding", "gzip")
	rr := env.do(req)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "gzip", rr.Header().Get("Content-Encoding"))

	zr, err := gzip.NewReader(rr.Body)
	require.NoError(t, err)
	raw, err := io.ReadAll(zr)
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"ok":true`)
}

func TestFiles_NotFound(t *testing.T) {
	env := newTestEnv(t)

	for _, p := range []string{"/files/missing.jpg", "/files/.hidden"} {
		rr := env.do(httptest.NewRequest(http.MethodGet, p, nil))
		assert.Equal(t, http.StatusNotFound, rr.Code, p)
	}
}
