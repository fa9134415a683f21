package parsers

import (
	"context"
	"fmt"

	sitter "github.com/tree-sitter/go-tree-sitter"
)

// Parser turns the contents of one source file into a syntax tree.
type Parser interface {
	Parse(ctx context.Context, source []byte) (*Tree, error)
}

// Tree is a parsed source file. The caller owns it and must Close it.
type Tree struct {
	tree     *sitter.Tree
	source   []byte
	language *Language
}

// Root returns the root node of the tree.
func (t *Tree) Root() *sitter.Node {
	return t.tree.RootNode()
}

// Language returns the grammar the tree was parsed with.
func (t *Tree) Language() *Language {
	return t.language
}

// Source returns the bytes the tree was parsed from.
func (t *Tree) Source() []byte {
	return t.source
}

// Close releases the native tree.
func (t *Tree) Close() {
	if t.tree != nil {
		t.tree.Close()
		t.tree = nil
	}
}

// treeSitterParser parses one language with tree-sitter.
type treeSitterParser struct {
	language *Language
}

// NewParser creates a tree-sitter parser for lang.
func NewParser(lang *Language) Parser {
	return &treeSitterParser{language: lang}
}

// Parse parses source. Syntax errors that tree-sitter recovered from are still
// reported as a *ParseError positioned at the first error node.
func (p *treeSitterParser) Parse(ctx context.Context, source []byte) (*Tree, error) {
	if err := ctx.Err(); err != nil {
		return nil, &ParseError{Reason: fmt.Sprintf("parse cancelled: %v", err)}
	}

	parser := sitter.NewParser()
	defer parser.Close()

	if err := parser.SetLanguage(p.language.grammar()); err != nil {
		return nil, &ParseError{Reason: fmt.Sprintf("load %s grammar: %v", p.language.Name, err)}
	}

	tree := parser.Parse(source, nil)
	if tree == nil {
		return nil, &ParseError{Reason: fmt.Sprintf("failed to parse %s source", p.language.Name)}
	}

	root := tree.RootNode()
	if root.HasError() {
		perr := syntaxError(root)
		tree.Close()
		return nil, perr
	}

	return &Tree{tree: tree, source: source, language: p.language}, nil
}

// syntaxError builds a ParseError for the first ERROR or MISSING node in pre-order.
func syntaxError(root *sitter.Node) *ParseError {
	var bad *sitter.Node
	walkTree(root, func(n *sitter.Node) bool {
		if bad != nil {
			return false
		}
		if n.IsError() || n.IsMissing() {
			bad = n
			return false
		}
		// Only subtrees that contain an error are worth entering.
		return n.HasError()
	})

	if bad == nil {
		return &ParseError{Reason: "syntax error"}
	}

	reason := "syntax error"
	if bad.IsMissing() {
		reason = fmt.Sprintf("missing %s", bad.Kind())
	}
	pos := bad.StartPosition()
	return &ParseError{
		Reason:      reason,
		Line:        int(pos.Row) + 1,
		Column:      int(pos.Column) + 1,
		HasPosition: true,
	}
}

// extractNodeText extracts the text content of a tree-sitter node.
func extractNodeText(node *sitter.Node, source []byte) string {
	if node == nil {
		return ""
	}
	return string(source[node.StartByte():node.EndByte()])
}

// walkTree recursively walks a tree-sitter tree and calls the visitor for each node.
// Children are skipped when the visitor returns false.
func walkTree(node *sitter.Node, visitor func(*sitter.Node) bool) {
	if node == nil {
		return
	}

	if !visitor(node) {
		return
	}

	for i := 0; i < int(node.ChildCount()); i++ {
		child := node.Child(uint(i))
		walkTree(child, visitor)
	}
}
