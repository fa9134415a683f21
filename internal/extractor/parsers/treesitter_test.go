package parsers

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Test Plan for the tree-sitter Parser:
// - Valid source parses and the tree carries its language and source
// - Syntax errors come back as *ParseError with a 1-based position
// - Garbage input never panics
// - A cancelled context fails before parsing
// - Registry resolves extensions case-insensitively, with or without a dot

func TestParser_ValidSource(t *testing.T) {
	t.Parallel()

	src := []byte("class A { void m() {} }")
	tree, err := NewParser(Java()).Parse(context.Background(), src)
	require.NoError(t, err)
	defer tree.Close()

	assert.Equal(t, "java", tree.Language().Name)
	assert.Equal(t, src, tree.Source())
	assert.Equal(t, "program", tree.Root().Kind())
}

func TestParser_SyntaxError(t *testing.T) {
	t.Parallel()

	src := []byte("class A {\n  void m( {\n}\n")
	tree, err := NewParser(Java()).Parse(context.Background(), src)
	require.Error(t, err)
	assert.Nil(t, tree)

	var perr *ParseError
	require.True(t, errors.As(err, &perr))
	assert.True(t, perr.HasPosition)
	assert.GreaterOrEqual(t, perr.Line, 1)
	assert.GreaterOrEqual(t, perr.Column, 1)
	assert.Contains(t, perr.Error(), "line")
}

func TestParser_GarbageDoesNotPanic(t *testing.T) {
	t.Parallel()

	inputs := [][]byte{
		[]byte("}}}}{{{{"),
		{0xff, 0xfe, 0x00, 0x01},
		[]byte("class"),
	}

	for _, in := range inputs {
		require.NotPanics(t, func() {
			tree, err := NewParser(Java()).Parse(context.Background(), in)
			if err == nil {
				tree.Close()
			}
		})
	}
}

func TestParser_EmptySourceIsValid(t *testing.T) {
	t.Parallel()

	tree, err := NewParser(Java()).Parse(context.Background(), []byte{})
	require.NoError(t, err)
	defer tree.Close()

	assert.Empty(t, Visit(tree, "empty.java"))
}

func TestParser_CancelledContext(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewParser(Java()).Parse(ctx, []byte("class A {}"))
	var perr *ParseError
	require.True(t, errors.As(err, &perr))
	assert.Contains(t, perr.Reason, "cancelled")
}

func TestParseError_Message(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "syntax error", (&ParseError{Reason: "syntax error"}).Error())
	assert.Equal(t, "missing ; at line 3, column 7",
		(&ParseError{Reason: "missing ;", Line: 3, Column: 7, HasPosition: true}).Error())
}

func TestRegistry_LanguageFor(t *testing.T) {
	t.Parallel()

	r := DefaultRegistry()

	for _, ext := range []string{"java", ".java", "JAVA", ".Java"} {
		l, ok := r.LanguageFor(ext)
		require.True(t, ok, ext)
		assert.Equal(t, "java", l.Name)
	}

	l, ok := r.LanguageFor("h")
	require.True(t, ok)
	assert.Equal(t, "c", l.Name)

	_, ok = r.LanguageFor("kt")
	assert.False(t, ok)

	assert.Contains(t, r.Extensions(), "tsx")
}
