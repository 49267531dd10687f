package handler

import (
	"go/ast"
	"go/parser"
	"go/token"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Every swipe endpoint carries the annotations the API docs are built from.
func TestSwipeHandlerEndpointsAreAnnotated(t *testing.T) {
	file, err := parser.ParseFile(token.NewFileSet(), "swipe_handler.go", nil, parser.ParseComments)
	require.NoError(t, err)

	seen := 0
	for _, decl := range file.Decls {
		fn, ok := decl.(*ast.FuncDecl)
		if !ok || fn.Recv == nil || !fn.Name.IsExported() {
			continue
		}
		seen++
		require.NotNil(t, fn.Doc, fn.Name.Name)
		doc := fn.Doc.Text()
		for _, tag := range []string{"@Summary ", "@Tags swipe", "@Security BearerAuth", "@Success ", "@Router /swipe"} {
			assert.True(t, strings.Contains(doc, tag), "%s is missing %q", fn.Name.Name, tag)
		}
	}
	assert.Equal(t, 5, seen)
}
