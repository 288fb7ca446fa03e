package cmd

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/abdul-hamid-achik/request/packages/echo"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// resetFlags puts every flag back to its default between runs of the shared
// command tree.
func resetFlags(c *cobra.Command) {
	reset := func(f *pflag.Flag) {
		if sv, ok := f.Value.(pflag.SliceValue); ok {
			_ = sv.Replace(nil)
		} else {
			_ = f.Value.Set(f.DefValue)
		}
		f.Changed = false
	}
	c.Flags().VisitAll(reset)
	c.PersistentFlags().VisitAll(reset)
	for _, sub := range c.Commands() {
		resetFlags(sub)
	}
}

func executeCommand(t *testing.T, args ...string) (string, error) {
	t.Helper()
	resetFlags(rootCmd)

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetArgs(args)

	err := rootCmd.Execute()
	return buf.String(), err
}

func newEchoServer(t *testing.T) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(echo.NewServer().Handler())
	t.Cleanup(server.Close)
	return server
}

type jsonResult struct {
	Method  string            `json:"method"`
	URL     string            `json:"url"`
	OK      bool              `json:"ok"`
	Status  int               `json:"status"`
	Headers map[string]string `json:"headers"`
	RawBody json.RawMessage   `json:"body"`
	Error   string            `json:"error"`

	// Body is RawBody decoded, when it is an echo document
	Body echo.Echo `json:"-"`
}

func decodeResult(t *testing.T, out string) jsonResult {
	t.Helper()
	var res jsonResult
	require.NoError(t, json.Unmarshal([]byte(out), &res), out)
	if bytes.HasPrefix(res.RawBody, []byte("{")) {
		require.NoError(t, json.Unmarshal(res.RawBody, &res.Body))
	}
	return res
}

func TestVersionCommand(t *testing.T) {
	version = "1.2.3"
	out, err := executeCommand(t, "version")

	require.NoError(t, err)
	assert.Contains(t, out, "request version 1.2.3")
}

func TestGetCommand_JSON(t *testing.T) {
	server := newEchoServer(t)

	out, err := executeCommand(t, "get", server.URL+"/get", "-o", "json",
		"-H", "X-Custom: bar", "-q", "all=the ducks", "-q", "foo", "-A", "cli-test")
	require.NoError(t, err)

	res := decodeResult(t, out)
	assert.True(t, res.OK)
	assert.Equal(t, 200, res.Status)
	assert.Equal(t, server.URL+"/get?all=the%20ducks&foo", res.URL)
	assert.Equal(t, "GET", res.Body.Method)
	assert.Equal(t, "bar", res.Body.Headers["X-Custom"])
	assert.Equal(t, "cli-test", res.Body.Headers["User-Agent"])
	assert.Equal(t, "the ducks", res.Body.Args["all"])
}

func TestGetCommand_Select(t *testing.T) {
	server := newEchoServer(t)

	out, err := executeCommand(t, "get", server.URL+"/anything", "--no-color",
		"-u", "user:pass", "--select", "headers.Authorization")
	require.NoError(t, err)
	assert.Equal(t, "Basic dXNlcjpwYXNz\n", out)

	out, err = executeCommand(t, "get", server.URL+"/get", "--no-color", "--select", "status")
	require.NoError(t, err)
	assert.Equal(t, "200\n", out)

	_, err = executeCommand(t, "get", server.URL+"/get", "--no-color", "--select", "body.missing")
	assert.Equal(t, ExitRequestFailed, ExitCode(err))
}

func TestPostCommand(t *testing.T) {
	server := newEchoServer(t)

	out, err := executeCommand(t, "post", server.URL+"/post", "-o", "json",
		"--type", "application/json", "-d", `{"name":"test"}`)
	require.NoError(t, err)

	res := decodeResult(t, out)
	assert.Equal(t, "POST", res.Body.Method)
	assert.Equal(t, `{"name":"test"}`, res.Body.Data)
	assert.Equal(t, "application/json", res.Body.Headers["Content-Type"])
}

func TestPutCommand_DataFile(t *testing.T) {
	server := newEchoServer(t)
	path := filepath.Join(t.TempDir(), "body.txt")
	require.NoError(t, os.WriteFile(path, []byte("from a file"), 0644))

	out, err := executeCommand(t, "put", server.URL+"/put", "-o", "json", "--data-file", path)
	require.NoError(t, err)
	assert.Equal(t, "from a file", decodeResult(t, out).Body.Data)
}

func TestDeleteCommand(t *testing.T) {
	server := newEchoServer(t)

	out, err := executeCommand(t, "delete", server.URL+"/delete", "-o", "json")
	require.NoError(t, err)
	assert.Equal(t, "DELETE", decodeResult(t, out).Body.Method)
}

func TestGetCommand_NotOK(t *testing.T) {
	server := newEchoServer(t)

	out, err := executeCommand(t, "get", server.URL+"/status/404", "--no-color")
	require.Error(t, err)
	assert.Equal(t, ExitRequestFailed, ExitCode(err))
	assert.True(t, reported(err))
	assert.Contains(t, out, "404")

	_, err = executeCommand(t, "get", server.URL+"/status/201", "--no-color")
	assert.Equal(t, ExitRequestFailed, ExitCode(err))
}

func TestGetCommand_Redirects(t *testing.T) {
	server := newEchoServer(t)

	out, err := executeCommand(t, "get", server.URL+"/redirect/2", "-o", "json")
	require.NoError(t, err)
	assert.Equal(t, "/get", decodeResult(t, out).Body.URL)

	out, err = executeCommand(t, "get", server.URL+"/redirect/2", "-o", "json", "--no-follow")
	assert.Equal(t, ExitRequestFailed, ExitCode(err))
	res := decodeResult(t, out)
	assert.Equal(t, 302, res.Status)
	assert.Equal(t, "/redirect/1", res.Headers["location"])
}

func TestGetCommand_NetworkError(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	url := server.URL
	server.Close()

	out, err := executeCommand(t, "get", url, "-o", "json")
	assert.Equal(t, ExitNetworkError, ExitCode(err))

	res := decodeResult(t, out)
	assert.False(t, res.OK)
	assert.Equal(t, 0, res.Status)
	assert.NotEmpty(t, res.Error)
}

func TestGetCommand_UsageErrors(t *testing.T) {
	tests := []struct {
		name string
		args []string
	}{
		{"bad header", []string{"get", "http://localhost", "-H", "no colon"}},
		{"bad credentials", []string{"get", "http://localhost", "-u", "nopass"}},
		{"bad timeout", []string{"get", "http://localhost", "--timeout", "soon"}},
		{"bad output", []string{"get", "http://localhost", "-o", "xml"}},
		{"missing url", []string{"get"}},
		{"data and data-file", []string{"post", "http://localhost", "-d", "x", "--data-file", "y"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := executeCommand(t, tt.args...)
			require.Error(t, err)
			assert.Equal(t, ExitUsageError, ExitCode(err))
		})
	}
}

func TestGetCommand_EnvFile(t *testing.T) {
	server := newEchoServer(t)
	path := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(path, []byte("BASE="+server.URL+"\nTOKEN=abc123\n"), 0644))

	out, err := executeCommand(t, "get", "{{BASE}}/get", "-o", "json",
		"--env-file", path, "-H", "Authorization: Bearer {{TOKEN}}")
	require.NoError(t, err)

	res := decodeResult(t, out)
	assert.True(t, res.OK)
	assert.Equal(t, "Bearer abc123", res.Body.Headers["Authorization"])

	_, err = executeCommand(t, "get", "{{BASE}}/get", "--env-file", filepath.Join(t.TempDir(), "missing"))
	assert.Equal(t, ExitConfigError, ExitCode(err))
}

func TestGetCommand_ConfigFile(t *testing.T) {
	server := newEchoServer(t)
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("userAgent: from-config\nheaders:\n  X-Default: yes\noutput: json\n"), 0644))

	out, err := executeCommand(t, "get", server.URL+"/get", "--config", path)
	require.NoError(t, err)

	res := decodeResult(t, out)
	assert.Equal(t, "from-config", res.Body.Headers["User-Agent"])
	assert.Equal(t, "yes", res.Body.Headers["X-Default"])

	bad := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(bad, []byte("timeout: -5"), 0644))
	_, err = executeCommand(t, "get", server.URL+"/get", "--config", bad)
	assert.Equal(t, ExitConfigError, ExitCode(err))
}

func TestGetCommand_Schema(t *testing.T) {
	server := newEchoServer(t)
	schema := filepath.Join(t.TempDir(), "schema.json")
	require.NoError(t, os.WriteFile(schema, []byte(`{"type":"object","required":["authenticated"]}`), 0644))

	_, err := executeCommand(t, "get", server.URL+"/basic-auth/u/p", "-u", "u:p", "--no-color", "--schema", schema)
	assert.NoError(t, err)

	out, err := executeCommand(t, "get", server.URL+"/get", "--no-color", "--schema", schema)
	assert.Equal(t, ExitRequestFailed, ExitCode(err))
	assert.Contains(t, out, "schema validation failed")
}

func TestGetCommand_Expect(t *testing.T) {
	server := newEchoServer(t)

	_, err := executeCommand(t, "get", server.URL+"/get?id=7", "--no-color",
		"--expect", "status == 200", "-e", "body.args.id == 7", "-e", "header.content-type contains json")
	assert.NoError(t, err)

	out, err := executeCommand(t, "get", server.URL+"/get", "--no-color",
		"-e", "body.method == POST", "-e", "status == 200")
	assert.Equal(t, ExitRequestFailed, ExitCode(err))
	assert.Contains(t, out, "expect body.method == POST: expected POST, got GET")
	assert.NotContains(t, out, "expect status")

	_, err = executeCommand(t, "get", server.URL+"/get", "-e", "status ~ 200")
	assert.Equal(t, ExitUsageError, ExitCode(err))
}

func TestBenchCommand(t *testing.T) {
	server := newEchoServer(t)

	out, err := executeCommand(t, "bench", "get", server.URL+"/get", "-n", "12", "-c", "3", "-o", "json")
	require.NoError(t, err)

	var summary struct {
		Total    int64            `json:"total"`
		OK       int64            `json:"ok"`
		Statuses map[string]int64 `json:"statuses"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &summary), out)
	assert.Equal(t, int64(12), summary.Total)
	assert.Equal(t, int64(12), summary.OK)
	assert.Equal(t, int64(12), summary.Statuses["200"])

	out, err = executeCommand(t, "bench", "get", server.URL+"/status/503", "-n", "3", "--no-color")
	assert.Equal(t, ExitRequestFailed, ExitCode(err))
	assert.Contains(t, out, "Requests:  3")

	_, err = executeCommand(t, "bench", "patch", server.URL+"/anything")
	assert.Equal(t, ExitUsageError, ExitCode(err))

	_, err = executeCommand(t, "bench", "get", server.URL+"/get", "-n", "0")
	assert.Equal(t, ExitUsageError, ExitCode(err))
}

func TestCurlCommand(t *testing.T) {
	server := newEchoServer(t)

	out, err := executeCommand(t, "curl", "curl -X PUT "+server.URL+"/put?x=1 -H 'X-From: curl' -d hello", "-o", "json")
	require.NoError(t, err)

	res := decodeResult(t, out)
	assert.Equal(t, "PUT", res.Body.Method)
	assert.Equal(t, "hello", res.Body.Data)
	assert.Equal(t, "curl", res.Body.Headers["X-From"])
	assert.Equal(t, "1", res.Body.Args["x"])

	_, err = executeCommand(t, "curl", "curl "+server.URL+"/redirect/1", "-o", "json")
	assert.Equal(t, ExitRequestFailed, ExitCode(err))

	_, err = executeCommand(t, "curl", "curl -L "+server.URL+"/redirect/1", "-o", "json")
	assert.NoError(t, err)

	_, err = executeCommand(t, "curl", "curl -X PATCH "+server.URL+"/anything")
	assert.Equal(t, ExitUsageError, ExitCode(err))
}

func TestHistoryCommand(t *testing.T) {
	server := newEchoServer(t)
	db := filepath.Join(t.TempDir(), "history.db")

	_, err := executeCommand(t, "get", server.URL+"/get", "--history", db, "-o", "json")
	require.NoError(t, err)
	_, err = executeCommand(t, "get", server.URL+"/status/500", "--history", db, "-o", "json")
	require.Error(t, err)

	out, err := executeCommand(t, "history", "--history", db, "-o", "json")
	require.NoError(t, err)

	var entries []map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &entries))
	require.Len(t, entries, 2)
	assert.Equal(t, float64(500), entries[0]["status"])
	assert.Equal(t, true, entries[1]["ok"])

	out, err = executeCommand(t, "history", "--history", db, "--clear")
	require.NoError(t, err)
	assert.Contains(t, out, "Deleted 2 entries")

	out, err = executeCommand(t, "history", "--history", db, "--no-color")
	require.NoError(t, err)
	assert.Contains(t, out, "No requests recorded")
}

func TestInitCommand(t *testing.T) {
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(t.TempDir()))
	t.Cleanup(func() { _ = os.Chdir(wd) })

	out, err := executeCommand(t, "init")
	require.NoError(t, err)
	assert.Contains(t, out, ".request.yaml")

	data, err := os.ReadFile(".request.yaml")
	require.NoError(t, err)
	assert.True(t, strings.Contains(string(data), "userAgent"))

	_, err = executeCommand(t, "init")
	assert.Error(t, err)

	_, err = executeCommand(t, "init", "--force")
	assert.NoError(t, err)
}

func TestExitCode(t *testing.T) {
	assert.Equal(t, ExitSuccess, ExitCode(nil))
	assert.Equal(t, ExitUsageError, ExitCode(errors.New("unknown flag")))
	assert.Equal(t, ExitConfigError, ExitCode(withExitCode(ExitConfigError, errors.New("bad"))))

	err := withExitCode(ExitNetworkError, nil)
	assert.True(t, reported(err))
	assert.Equal(t, "exit status 4", err.Error())
	assert.False(t, reported(withExitCode(ExitConfigError, errors.New("bad"))))
}

func TestGetEnvHelpers(t *testing.T) {
	t.Setenv("REQUEST_TEST_STRING", "value")
	t.Setenv("REQUEST_TEST_BOOL", "yes")
	t.Setenv("REQUEST_TEST_INT", "42")
	t.Setenv("REQUEST_TEST_BAD_INT", "forty")

	assert.Equal(t, "value", getEnvString("REQUEST_TEST_STRING", "x"))
	assert.Equal(t, "x", getEnvString("REQUEST_TEST_UNSET", "x"))
	assert.True(t, getEnvBool("REQUEST_TEST_BOOL", false))
	assert.Equal(t, 42, getEnvInt("REQUEST_TEST_INT", 1))
	assert.Equal(t, 1, getEnvInt("REQUEST_TEST_BAD_INT", 1))
}
