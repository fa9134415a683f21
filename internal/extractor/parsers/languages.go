package parsers

import (
	"sort"
	"strings"
	"sync"
	"unsafe"

	sitter "github.com/tree-sitter/go-tree-sitter"
	c "github.com/tree-sitter/tree-sitter-c/bindings/go"
	java "github.com/tree-sitter/tree-sitter-java/bindings/go"
	php "github.com/tree-sitter/tree-sitter-php/bindings/go"
	python "github.com/tree-sitter/tree-sitter-python/bindings/go"
	ruby "github.com/tree-sitter/tree-sitter-ruby/bindings/go"
	rust "github.com/tree-sitter/tree-sitter-rust/bindings/go"
	typescript "github.com/tree-sitter/tree-sitter-typescript/bindings/go"
)

// Language describes one grammar and which of its nodes are method declarations.
type Language struct {
	Name        string
	Extensions  []string
	MethodKinds []string

	grammar  func() *sitter.Language
	kinds    map[string]bool
	nameFunc func(node *sitter.Node, source []byte) string
}

// IsMethod reports whether a node kind is a method declaration in this language.
func (l *Language) IsMethod(kind string) bool {
	return l.kinds[kind]
}

// MethodName returns the identifier of a method-declaration node.
func (l *Language) MethodName(node *sitter.Node, source []byte) string {
	if l.nameFunc != nil {
		return l.nameFunc(node, source)
	}
	return fieldName(node, source)
}

func newLanguage(name string, exts, kinds []string, ptr func() unsafe.Pointer) *Language {
	kindSet := make(map[string]bool, len(kinds))
	for _, k := range kinds {
		kindSet[k] = true
	}
	return &Language{
		Name:        name,
		Extensions:  exts,
		MethodKinds: kinds,
		grammar: sync.OnceValue(func() *sitter.Language {
			return sitter.NewLanguage(ptr())
		}),
		kinds: kindSet,
	}
}

// fieldName reads the "name" field, which most grammars use for declarations.
func fieldName(node *sitter.Node, source []byte) string {
	return extractNodeText(node.ChildByFieldName("name"), source)
}

// cDeclaratorName follows the declarator chain of a C function_definition
// (pointer_declarator -> function_declarator -> identifier).
func cDeclaratorName(node *sitter.Node, source []byte) string {
	current := node.ChildByFieldName("declarator")
	for current != nil {
		switch current.Kind() {
		case "identifier", "field_identifier":
			return extractNodeText(current, source)
		}
		next := current.ChildByFieldName("declarator")
		if next == nil {
			break
		}
		current = next
	}
	return ""
}

// Registry maps file extensions to languages.
type Registry struct {
	byExt map[string]*Language
	langs []*Language
}

// NewRegistry builds a registry of the given languages. Later entries win on extension clashes.
func NewRegistry(langs ...*Language) *Registry {
	r := &Registry{byExt: make(map[string]*Language)}
	for _, l := range langs {
		r.langs = append(r.langs, l)
		for _, ext := range l.Extensions {
			r.byExt[strings.ToLower(ext)] = l
		}
	}
	return r
}

// DefaultRegistry returns every grammar methodex ships with.
func DefaultRegistry() *Registry {
	return NewRegistry(Java(), Python(), C(), PHP(), Ruby(), Rust(), TypeScript(), TSX())
}

// LanguageFor returns the language for an extension (with or without leading dot).
func (r *Registry) LanguageFor(ext string) (*Language, bool) {
	l, ok := r.byExt[strings.ToLower(strings.TrimPrefix(ext, "."))]
	return l, ok
}

// Extensions lists every registered extension, sorted.
func (r *Registry) Extensions() []string {
	exts := make([]string, 0, len(r.byExt))
	for ext := range r.byExt {
		exts = append(exts, ext)
	}
	sort.Strings(exts)
	return exts
}

// Java constructors are not method declarations.
func Java() *Language {
	return newLanguage("java", []string{"java"}, []string{"method_declaration"}, java.Language)
}

// Python treats every def, at module level or inside a class, as a method declaration.
func Python() *Language {
	return newLanguage("python", []string{"py"}, []string{"function_definition"}, python.Language)
}

func C() *Language {
	l := newLanguage("c", []string{"c", "h"}, []string{"function_definition"}, c.Language)
	l.nameFunc = cDeclaratorName
	return l
}

func PHP() *Language {
	return newLanguage("php", []string{"php"}, []string{"method_declaration", "function_definition"}, php.LanguagePHP)
}

func Ruby() *Language {
	return newLanguage("ruby", []string{"rb"}, []string{"method", "singleton_method"}, ruby.Language)
}

func Rust() *Language {
	return newLanguage("rust", []string{"rs"}, []string{"function_item", "function_signature_item"}, rust.Language)
}

var typeScriptMethodKinds = []string{
	"method_definition",
	"method_signature",
	"abstract_method_signature",
	"function_declaration",
}

func TypeScript() *Language {
	return newLanguage("typescript", []string{"ts"}, typeScriptMethodKinds, typescript.LanguageTypescript)
}

func TSX() *Language {
	return newLanguage("tsx", []string{"tsx"}, typeScriptMethodKinds, typescript.LanguageTSX)
}
