package generator

import (
	"strings"

	"github.com/vektah/gqlparser/v2/ast"
)

const (
	localCacheMutationDirective = "apollo_client_ios_localCacheMutation"
	importDirectiveName         = "import"
	importModuleArgument        = "module"
	deprecatedDirectiveName     = "deprecated"
	typenameField               = "__typename"
)

// ReprintFragmentDefinition renders the fragment source as it ships inside
// fragmentDefinition: `__typename` injected as the first selection of every
// composite selection set, client-side directives stripped.
func ReprintFragmentDefinition(frag *ast.FragmentDefinition) string {
	var b strings.Builder
	b.WriteString("fragment " + frag.Name + " on " + frag.TypeCondition)
	printDirectives(&b, frag.Directives)
	b.WriteString(" ")
	printSelectionSet(&b, frag.SelectionSet)
	return b.String()
}

func printDirectives(b *strings.Builder, directives ast.DirectiveList) {
	for _, d := range directives {
		if d.Name == localCacheMutationDirective || d.Name == importDirectiveName {
			continue
		}
		b.WriteString(" @" + d.Name)
		printArguments(b, d.Arguments)
	}
}

func printArguments(b *strings.Builder, args ast.ArgumentList) {
	if len(args) == 0 {
		return
	}
	b.WriteString("(")
	for i, arg := range args {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(arg.Name + ": " + arg.Value.String())
	}
	b.WriteString(")")
}

func printSelectionSet(b *strings.Builder, selections ast.SelectionSet) {
	b.WriteString("{ " + typenameField)
	for _, sel := range selections {
		switch sel := sel.(type) {
		case *ast.Field:
			if sel.Name == typenameField && sel.Alias == sel.Name {
				continue
			}
			b.WriteString(" ")
			if sel.Alias != "" && sel.Alias != sel.Name {
				b.WriteString(sel.Alias + ": ")
			}
			b.WriteString(sel.Name)
			printArguments(b, sel.Arguments)
			printDirectives(b, sel.Directives)
			if len(sel.SelectionSet) > 0 {
				b.WriteString(" ")
				printSelectionSet(b, sel.SelectionSet)
			}
		case *ast.FragmentSpread:
			b.WriteString(" ..." + sel.Name)
			printDirectives(b, sel.Directives)
		case *ast.InlineFragment:
			b.WriteString(" ... on " + sel.TypeCondition)
			printDirectives(b, sel.Directives)
			b.WriteString(" ")
			printSelectionSet(b, sel.SelectionSet)
		}
	}
	b.WriteString(" }")
}
