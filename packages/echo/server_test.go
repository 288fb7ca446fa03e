package echo

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func do(t *testing.T, method, target string, body io.Reader, setup func(*http.Request)) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, target, body)
	if setup != nil {
		setup(req)
	}
	rec := httptest.NewRecorder()
	NewServer().Handler().ServeHTTP(rec, req)
	return rec
}

func decodeEcho(t *testing.T, rec *httptest.ResponseRecorder) Echo {
	t.Helper()
	var e Echo
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &e))
	return e
}

func TestEcho_Methods(t *testing.T) {
	tests := []struct {
		method string
		path   string
	}{
		{http.MethodGet, "/get"},
		{http.MethodPost, "/post"},
		{http.MethodPut, "/put"},
		{http.MethodDelete, "/delete"},
		{http.MethodPatch, "/anything"},
		{http.MethodGet, "/anything/deep/path"},
	}

	for _, tt := range tests {
		t.Run(tt.method+" "+tt.path, func(t *testing.T) {
			rec := do(t, tt.method, tt.path, strings.NewReader("payload"), nil)
			require.Equal(t, http.StatusOK, rec.Code)
			assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

			e := decodeEcho(t, rec)
			assert.Equal(t, tt.method, e.Method)
			assert.Equal(t, tt.path, e.URL)
			assert.Equal(t, "payload", e.Data)
		})
	}
}

func TestEcho_WrongMethod(t *testing.T) {
	rec := do(t, http.MethodPost, "/get", nil, nil)
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestEcho_ArgsAndHeaders(t *testing.T) {
	rec := do(t, http.MethodGet, "/get?a=1&a=2&flag", nil, func(r *http.Request) {
		r.Header.Set("X-Test", "yes")
	})

	e := decodeEcho(t, rec)
	assert.Equal(t, "1,2", e.Args["a"])
	assert.Contains(t, e.Args, "flag")
	assert.Equal(t, "yes", e.Headers["X-Test"])
	assert.Equal(t, "/get?a=1&a=2&flag", e.URL)
}

func TestHeadersAndUserAgent(t *testing.T) {
	rec := do(t, http.MethodGet, "/user-agent", nil, func(r *http.Request) {
		r.Header.Set("User-Agent", "tester")
	})
	assert.JSONEq(t, `{"user-agent":"tester"}`, rec.Body.String())

	rec = do(t, http.MethodGet, "/headers", nil, func(r *http.Request) {
		r.Header.Set("Accept", "text/plain")
	})
	var out struct {
		Headers map[string]string `json:"headers"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	assert.Equal(t, "text/plain", out.Headers["Accept"])
	assert.Equal(t, "example.com", out.Headers["Host"])
}

func TestStatus(t *testing.T) {
	tests := []struct {
		path string
		want int
	}{
		{"/status/200", 200},
		{"/status/418", 418},
		{"/status/503", 503},
		{"/status/abc", 400},
		{"/status/42", 400},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			rec := do(t, http.MethodGet, tt.path, nil, nil)
			assert.Equal(t, tt.want, rec.Code)
		})
	}
}

func TestBasicAuth(t *testing.T) {
	rec := do(t, http.MethodGet, "/basic-auth/user/pass", nil, func(r *http.Request) {
		r.SetBasicAuth("user", "pass")
	})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"authenticated":true,"user":"user"}`, rec.Body.String())

	rec = do(t, http.MethodGet, "/basic-auth/user/pass", nil, func(r *http.Request) {
		r.SetBasicAuth("user", "nope")
	})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.NotEmpty(t, rec.Header().Get("WWW-Authenticate"))

	rec = do(t, http.MethodGet, "/basic-auth/user/pass", nil, nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRedirect(t *testing.T) {
	rec := do(t, http.MethodGet, "/redirect/3", nil, nil)
	assert.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "/redirect/2", rec.Header().Get("Location"))

	rec = do(t, http.MethodGet, "/redirect/1", nil, nil)
	assert.Equal(t, "/get", rec.Header().Get("Location"))

	rec = do(t, http.MethodGet, "/redirect/0", nil, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestRedirectTo(t *testing.T) {
	rec := do(t, http.MethodGet, "/redirect-to?url=http://example.org/&status_code=307", nil, nil)
	assert.Equal(t, http.StatusTemporaryRedirect, rec.Code)
	assert.Equal(t, "http://example.org/", rec.Header().Get("Location"))

	rec = do(t, http.MethodGet, "/redirect-to", nil, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(t, http.MethodGet, "/redirect-to?url=/get&status_code=200", nil, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestBytes(t *testing.T) {
	rec := do(t, http.MethodGet, "/bytes/5000", nil, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "5000", rec.Header().Get("Content-Length"))

	body := rec.Body.Bytes()
	require.Len(t, body, 5000)
	for i, b := range body {
		if b != byte(i) {
			t.Fatalf("byte %d = %d, want %d", i, b, byte(i))
		}
	}

	rec = do(t, http.MethodGet, "/bytes/-1", nil, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
