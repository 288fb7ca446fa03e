package capture

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/abdul-hamid-achik/request/packages/request"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func jsonResponse(body string) *request.Response {
	return &request.Response{
		OK:       true,
		Status:   200,
		Body:     []byte(body),
		Headers:  map[string]string{"content-type": "application/json", "x-request-id": "abc"},
		Duration: 150 * time.Millisecond,
	}
}

func TestParseExpression(t *testing.T) {
	tests := []struct {
		expr   string
		source Source
		path   string
	}{
		{"body.user.id", SourceBody, "user.id"},
		{"body", SourceBody, ""},
		{"header.Content-Type", SourceHeader, "Content-Type"},
		{"status", SourceStatus, ""},
		{"duration", SourceDuration, ""},
		{"items.0.name", SourceBody, "items.0.name"},
		{"  status  ", SourceStatus, ""},
	}

	for _, tt := range tests {
		t.Run(tt.expr, func(t *testing.T) {
			source, path := ParseExpression(tt.expr)
			assert.Equal(t, tt.source, source)
			assert.Equal(t, tt.path, path)
		})
	}
}

func TestExtractor_Get(t *testing.T) {
	resp := jsonResponse(`{"user":{"id":42,"name":"alice"},"items":[{"name":"a"},{"name":"b"}]}`)
	e := NewExtractor(resp)

	v, ok := e.Get("body.user.id")
	require.True(t, ok)
	assert.Equal(t, float64(42), v)

	v, ok = e.Get("items.1.name")
	require.True(t, ok)
	assert.Equal(t, "b", v)

	v, ok = e.Get("header.X-Request-Id")
	require.True(t, ok)
	assert.Equal(t, "abc", v)

	v, ok = e.Get("status")
	require.True(t, ok)
	assert.Equal(t, 200, v)

	v, ok = e.Get("duration")
	require.True(t, ok)
	assert.Equal(t, int64(150), v)

	_, ok = e.Get("body.missing")
	assert.False(t, ok)

	_, ok = e.Get("header.missing")
	assert.False(t, ok)
}

func TestExtractor_NonJSONBody(t *testing.T) {
	resp := &request.Response{Status: 200, Body: []byte("<html>hi</html>"), Headers: map[string]string{}}
	e := NewExtractor(resp)

	v, ok := e.Get("body")
	require.True(t, ok)
	assert.Equal(t, "<html>hi</html>", v)

	_, ok = e.Get("body.title")
	assert.False(t, ok)
}

func TestFormat(t *testing.T) {
	resp := jsonResponse(`{"name":"alice","tags":["a","b"],"n":3}`)

	tests := []struct {
		expr string
		want string
		ok   bool
	}{
		{"name", "alice", true},
		{"tags", `["a","b"]`, true},
		{"n", "3", true},
		{"status", "200", true},
		{"header.content-type", "application/json", true},
		{"nope", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.expr, func(t *testing.T) {
			got, ok := Format(resp, tt.expr)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

const userSchema = `{
  "type": "object",
  "required": ["id", "name"],
  "properties": {
    "id": {"type": "integer"},
    "name": {"type": "string"}
  }
}`

func TestValidateSchemaBytes(t *testing.T) {
	assert.NoError(t, ValidateSchemaBytes(jsonResponse(`{"id":1,"name":"a"}`), []byte(userSchema)))

	err := ValidateSchemaBytes(jsonResponse(`{"id":"x"}`), []byte(userSchema))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "schema validation failed")
	assert.Contains(t, err.Error(), "name")

	err = ValidateSchemaBytes(jsonResponse(`not json`), []byte(userSchema))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "schema validation error")
}

func TestValidateSchema_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "user.schema.json")
	require.NoError(t, os.WriteFile(path, []byte(userSchema), 0644))

	assert.NoError(t, ValidateSchema(jsonResponse(`{"id":1,"name":"a"}`), path))

	err := ValidateSchema(jsonResponse(`{}`), filepath.Join(t.TempDir(), "missing.json"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read schema file")
}
