package parsers

import (
	"context"
	"testing"

	"github.com/mvp-joe/methodex/internal/extractor/extraction"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Test Plan for Visit:
// - Nested local class methods are recorded after the enclosing method, before later siblings
// - Interface, enum and anonymous class methods are all found
// - Constructors are not method declarations
// - Declared order is 0-based and dense
// - A file with no methods yields an empty, non-nil slice
// - Visiting the same tree twice yields identical records
// - Other grammars report their own method kinds

func parseJava(t *testing.T, src string) *Tree {
	t.Helper()
	tree, err := NewParser(Java()).Parse(context.Background(), []byte(src))
	require.NoError(t, err)
	t.Cleanup(tree.Close)
	return tree
}

func names(records []extraction.MethodRecord) []string {
	out := make([]string, len(records))
	for i, r := range records {
		out[i] = r.Name
	}
	return out
}

func TestVisit_NestedPreOrder(t *testing.T) {
	t.Parallel()

	tree := parseJava(t, `class A { void m1(){ class B { void m2(){} } } void m3(){} }`)

	records := Visit(tree, "/src/A.java")

	assert.Equal(t, []string{"m1", "m2", "m3"}, names(records))
	for i, r := range records {
		assert.Equal(t, i, r.DeclaredOrder)
		assert.Equal(t, "/src/A.java", r.SourceFile)
		assert.Equal(t, "java", r.Language)
	}
}

func TestVisit_InnerTypesAndAnonymousClasses(t *testing.T) {
	t.Parallel()

	src := `package demo;

public class Outer {
    public Outer() {}

    interface Greeter {
        String greet(String name);
    }

    enum Color {
        RED;
        String label() { return "red"; }
    }

    static class Inner {
        int size() { return 0; }
    }

    Runnable task() {
        return new Runnable() {
            public void run() {}
        };
    }
}
`
	tree := parseJava(t, src)

	records := Visit(tree, "Outer.java")

	assert.Equal(t, []string{"greet", "label", "size", "task", "run"}, names(records))
	assert.Equal(t, 7, records[0].Line)
}

func TestVisit_NoMethods(t *testing.T) {
	t.Parallel()

	tree := parseJava(t, `class Empty { int x; Empty() {} }`)

	records := Visit(tree, "Empty.java")

	require.NotNil(t, records)
	assert.Empty(t, records)
}

func TestVisit_NilTree(t *testing.T) {
	t.Parallel()

	records := Visit(nil, "x.java")
	require.NotNil(t, records)
	assert.Empty(t, records)
}

func TestVisit_Deterministic(t *testing.T) {
	t.Parallel()

	tree := parseJava(t, `class A { void a(){} class B { void b(){} class C { void c(){} } } void d(){} }`)

	first := Visit(tree, "A.java")
	second := Visit(tree, "A.java")

	assert.Equal(t, first, second)
	assert.Equal(t, []string{"a", "b", "c", "d"}, names(first))
}

func TestVisit_OtherLanguages(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		lang *Language
		src  string
		want []string
	}{
		{
			name: "python",
			lang: Python(),
			src:  "def top():\n    pass\n\nclass K:\n    def method(self):\n        def inner():\n            pass\n",
			want: []string{"top", "method", "inner"},
		},
		{
			name: "ruby",
			lang: Ruby(),
			src:  "class K\n  def a\n  end\n  def self.b\n  end\nend\n",
			want: []string{"a", "b"},
		},
		{
			name: "rust",
			lang: Rust(),
			src:  "fn main() {}\nimpl S { fn go(&self) {} }\ntrait T { fn sig(&self); }\n",
			want: []string{"main", "go", "sig"},
		},
		{
			name: "c",
			lang: C(),
			src:  "int add(int a, int b) { return a + b; }\nchar *dup(const char *s) { return 0; }\n",
			want: []string{"add", "dup"},
		},
		{
			name: "php",
			lang: PHP(),
			src:  "<?php\nfunction helper() {}\nclass K { public function run() {} }\n",
			want: []string{"helper", "run"},
		},
		{
			name: "typescript",
			lang: TypeScript(),
			src:  "function f() {}\nclass K { m(): void {} }\ninterface I { s(): void; }\n",
			want: []string{"f", "m", "s"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			tree, err := NewParser(tt.lang).Parse(context.Background(), []byte(tt.src))
			require.NoError(t, err)
			defer tree.Close()

			assert.Equal(t, tt.want, names(Visit(tree, "file")))
		})
	}
}
