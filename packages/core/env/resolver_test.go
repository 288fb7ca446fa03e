package env

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolver_Resolve(t *testing.T) {
	t.Setenv("RESOLVER_TEST_TOKEN", "from-os")

	tests := []struct {
		name     string
		input    string
		vars     map[string]string
		expected string
	}{
		{
			name:     "no expressions",
			input:    "http://example.com/",
			expected: "http://example.com/",
		},
		{
			name:     "variable",
			input:    "{{baseUrl}}/users",
			vars:     map[string]string{"baseUrl": "http://api.local"},
			expected: "http://api.local/users",
		},
		{
			name:     "whitespace inside braces",
			input:    "{{ baseUrl }}",
			vars:     map[string]string{"baseUrl": "x"},
			expected: "x",
		},
		{
			name:     "os environment",
			input:    "Bearer {{$RESOLVER_TEST_TOKEN}}",
			expected: "Bearer from-os",
		},
		{
			name:     "unresolved variable left in place",
			input:    "{{missing}}",
			expected: "{{missing}}",
		},
		{
			name:     "unresolved environment variable left in place",
			input:    "{{$RESOLVER_TEST_UNSET}}",
			expected: "{{$RESOLVER_TEST_UNSET}}",
		},
		{
			name:     "builtin call",
			input:    `{{base64("a:b")}}`,
			expected: "YTpi",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := NewResolver()
			r.SetVariables(tt.vars)
			assert.Equal(t, tt.expected, r.Resolve(tt.input))
		})
	}
}

func TestResolver_UUID(t *testing.T) {
	r := NewResolver()
	out := r.Resolve("{{uuid()}}")

	_, err := uuid.Parse(out)
	assert.NoError(t, err)
}

func TestResolver_Warnings(t *testing.T) {
	r := NewResolver()
	var warnings []string
	r.SetWarnFunc(func(format string, args ...any) {
		warnings = append(warnings, fmt.Sprintf(format, args...))
	})

	r.Resolve("{{a}} {{nope()}}")

	assert.Equal(t, []string{
		"unresolved variable: a",
		"unresolved function call: nope()",
	}, warnings)
}

func TestResolver_HasUnresolved(t *testing.T) {
	r := NewResolver()
	r.SetVariable("foo", "bar")

	assert.False(t, r.HasUnresolved("{{foo}}"))
	assert.True(t, r.HasUnresolved("{{foo}} {{bar}}"))
	assert.False(t, r.HasUnresolved("plain"))
}

func TestResolver_ResolveAll(t *testing.T) {
	r := NewResolver()
	r.SetVariable("token", "abc")

	got := r.ResolveAll(map[string]string{"Authorization": "Bearer {{token}}"})
	assert.Equal(t, map[string]string{"Authorization": "Bearer abc"}, got)
}

func TestResolver_WithDotEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(path, []byte("HOST=localhost:8080\n"), 0644))

	vars, err := LoadDotEnv(path)
	require.NoError(t, err)

	r := NewResolver()
	r.SetVariables(vars)
	assert.Equal(t, "http://localhost:8080/get", r.Resolve("http://{{HOST}}/get"))
}

func TestMergeVariables(t *testing.T) {
	merged := MergeVariables(
		map[string]string{"a": "1", "b": "1"},
		map[string]string{"b": "2"},
		nil,
	)
	assert.Equal(t, map[string]string{"a": "1", "b": "2"}, merged)
}

func TestLoadSystemEnv(t *testing.T) {
	t.Setenv("REQUEST_VAR_HOST", "example.com")

	vars := LoadSystemEnv("REQUEST_VAR_")
	assert.Equal(t, "example.com", vars["HOST"])
	_, hasPrefixed := vars["REQUEST_VAR_HOST"]
	assert.False(t, hasPrefixed)
}
