package mcputils

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Test Plan for CoerceBindArguments:
// - JSON-encoded arrays, booleans and numbers in strings decode into typed fields
// - Properly typed values pass through
// - Comma-separated strings fill []string fields
// - Missing fields keep their zero values
// - Undecodable values are reported as errors

type mockArgumentGetter struct {
	args map[string]any
}

func (m *mockArgumentGetter) GetArguments() map[string]any {
	return m.args
}

type testRequest struct {
	Project    string   `json:"project"`
	Extensions []string `json:"extensions,omitempty"`
	Workers    int      `json:"workers,omitempty"`
	Append     bool     `json:"append,omitempty"`
}

func TestCoerceBindArguments(t *testing.T) {
	tests := []struct {
		name string
		args map[string]any
		want testRequest
	}{
		{
			name: "JSON strings",
			args: map[string]any{"project": "/p", "extensions": `["java", "py"]`, "workers": "4", "append": "true"},
			want: testRequest{Project: "/p", Extensions: []string{"java", "py"}, Workers: 4, Append: true},
		},
		{
			name: "already typed",
			args: map[string]any{"project": "/p", "extensions": []any{"java"}, "workers": float64(2), "append": false},
			want: testRequest{Project: "/p", Extensions: []string{"java"}, Workers: 2},
		},
		{
			name: "comma separated",
			args: map[string]any{"project": "/p", "extensions": "java,rb"},
			want: testRequest{Project: "/p", Extensions: []string{"java", "rb"}},
		},
		{
			name: "missing fields",
			args: map[string]any{"project": "/p"},
			want: testRequest{Project: "/p"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got testRequest
			require.NoError(t, CoerceBindArguments(&mockArgumentGetter{args: tt.args}, &got))
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestCoerceBindArguments_Error(t *testing.T) {
	var got testRequest
	err := CoerceBindArguments(&mockArgumentGetter{args: map[string]any{"workers": "many"}}, &got)
	assert.Error(t, err)
}
