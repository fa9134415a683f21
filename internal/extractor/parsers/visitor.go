package parsers

import (
	sitter "github.com/tree-sitter/go-tree-sitter"

	"github.com/mvp-joe/methodex/internal/extractor/extraction"
)

// Visit returns one record per method declaration in tree, in pre-order.
//
// A method is recorded before its own subtree is entered, so methods of local or
// anonymous classes declared inside a method body come after the enclosing method.
// Visit has no side effects and always returns the same order for the same tree.
func Visit(tree *Tree, sourceFile string) []extraction.MethodRecord {
	records := []extraction.MethodRecord{}
	if tree == nil || tree.tree == nil {
		return records
	}

	lang := tree.language
	source := tree.source

	walkTree(tree.Root(), func(n *sitter.Node) bool {
		if lang.IsMethod(n.Kind()) {
			records = append(records, extraction.MethodRecord{
				Name:          lang.MethodName(n, source),
				SourceFile:    sourceFile,
				DeclaredOrder: len(records),
				Line:          int(n.StartPosition().Row) + 1,
				Language:      lang.Name,
			})
		}
		return true
	})

	return records
}
