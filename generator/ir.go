package generator

import (
	"github.com/pkg/errors"
	"github.com/vektah/gqlparser/v2/ast"
)

// CompositeKind names the schema-metadata namespace a composite type
// resolves through.
type CompositeKind string

const (
	KindObject    CompositeKind = "Objects"
	KindInterface CompositeKind = "Interfaces"
	KindUnion     CompositeKind = "Unions"
)

// FragmentIR is the renderer input for one named fragment.
type FragmentIR struct {
	Name                 string
	TypeCondition        string
	ParentKind           CompositeKind
	IsLocalCacheMutation bool
	ImportedModules      []string
	Definition           *ast.FragmentDefinition
	Selections           []SelectionIR
}

// renderedFragmentName is the generated struct name: first-uppercased, suffixed
// `_Fragment` on a reserved-keyword clash. Underscores survive.
func renderedFragmentName(name string) string {
	rendered := firstUppercased(name)
	if isTypeReserved(rendered) {
		rendered += "_Fragment"
	}
	return rendered
}

// SelectionIR is one rendered selection: a field (scalar or composite) or
// a named fragment spread.
type SelectionIR struct {
	IsSpread bool

	// Field selections.
	Name       string
	Alias      string
	SwiftType  string
	Arguments  []ArgumentIR
	StructName string
	ParentType *ast.Definition
	Children   []SelectionIR

	// Spread selections.
	FragmentName string
}

// ResponseKey is the DataDict key the selection reads through.
func (s SelectionIR) ResponseKey() string {
	if s.Alias != "" {
		return s.Alias
	}
	return s.Name
}

func (s SelectionIR) IsComposite() bool { return s.StructName != "" }

type ArgumentIR struct {
	Name  string
	Value string
}

// BuildFragmentIR compiles a parsed fragment against the schema into the
// renderer's input form.
func BuildFragmentIR(schema *ast.Schema, frag *ast.FragmentDefinition, cfg *Config) (*FragmentIR, error) {
	parent := schema.Types[frag.TypeCondition]
	if parent == nil {
		return nil, errors.Errorf("fragment %q: unknown type condition %q", frag.Name, frag.TypeCondition)
	}
	kind, err := compositeKind(parent)
	if err != nil {
		return nil, errors.Wrapf(err, "fragment %q", frag.Name)
	}

	selections, err := buildSelections(schema, parent, frag.SelectionSet, cfg)
	if err != nil {
		return nil, errors.Wrapf(err, "fragment %q", frag.Name)
	}

	return &FragmentIR{
		Name:                 renderedFragmentName(frag.Name),
		TypeCondition:        frag.TypeCondition,
		ParentKind:           kind,
		IsLocalCacheMutation: frag.Directives.ForName(localCacheMutationDirective) != nil,
		ImportedModules:      importedModules(frag.Directives),
		Definition:           frag,
		Selections:           selections,
	}, nil
}

func importedModules(directives ast.DirectiveList) []string {
	var modules []string
	for _, d := range directives {
		if d.Name != importDirectiveName {
			continue
		}
		if arg := d.Arguments.ForName(importModuleArgument); arg != nil && arg.Value != nil {
			modules = append(modules, arg.Value.Raw)
		}
	}
	return modules
}

func compositeKind(def *ast.Definition) (CompositeKind, error) {
	switch def.Kind {
	case ast.Object:
		return KindObject, nil
	case ast.Interface:
		return KindInterface, nil
	case ast.Union:
		return KindUnion, nil
	default:
		return "", errors.Errorf("type %q is not a composite type", def.Name)
	}
}

func buildSelections(schema *ast.Schema, parent *ast.Definition, selectionSet ast.SelectionSet, cfg *Config) ([]SelectionIR, error) {
	var out []SelectionIR
	for _, sel := range selectionSet {
		switch sel := sel.(type) {
		case *ast.Field:
			if sel.Name == typenameField {
				continue
			}
			ir, err := buildFieldSelection(schema, parent, sel, cfg)
			if err != nil {
				return nil, err
			}
			out = append(out, ir)
		case *ast.FragmentSpread:
			out = append(out, SelectionIR{
				IsSpread:     true,
				FragmentName: renderedFragmentName(sel.Name),
			})
		case *ast.InlineFragment:
			// Type cases fold into the enclosing selection set; their
			// fields resolve against the narrowed type.
			narrowed := parent
			if sel.TypeCondition != "" {
				if def := schema.Types[sel.TypeCondition]; def != nil {
					narrowed = def
				}
			}
			children, err := buildSelections(schema, narrowed, sel.SelectionSet, cfg)
			if err != nil {
				return nil, err
			}
			out = append(out, children...)
		}
	}
	return out, nil
}

func buildFieldSelection(schema *ast.Schema, parent *ast.Definition, field *ast.Field, cfg *Config) (SelectionIR, error) {
	def := parent.Fields.ForName(field.Name)
	if def == nil {
		return SelectionIR{}, errors.Errorf("field %q does not exist on type %q", field.Name, parent.Name)
	}

	ir := SelectionIR{Name: field.Name}
	if field.Alias != "" && field.Alias != field.Name {
		ir.Alias = field.Alias
	}
	for _, arg := range field.Arguments {
		ir.Arguments = append(ir.Arguments, ArgumentIR{
			Name:  arg.Name,
			Value: renderArgumentValue(arg.Value),
		})
	}

	baseType := schema.Types[def.Type.Name()]
	if baseType != nil && isComposite(baseType) {
		ir.StructName = firstUppercased(ir.ResponseKey())
		ir.ParentType = baseType
		children, err := buildSelections(schema, baseType, field.SelectionSet, cfg)
		if err != nil {
			return SelectionIR{}, err
		}
		ir.Children = children
		ir.SwiftType = wrapSwiftType(def.Type, ir.StructName)
	} else {
		ir.SwiftType = swiftType(schema, def.Type, cfg)
	}
	return ir, nil
}

func isComposite(def *ast.Definition) bool {
	return def.Kind == ast.Object || def.Kind == ast.Interface || def.Kind == ast.Union
}

// swiftType maps a GraphQL type reference onto its Swift spelling.
func swiftType(schema *ast.Schema, t *ast.Type, cfg *Config) string {
	return wrapSwiftType(t, baseSwiftType(schema, t.Name(), cfg))
}

func baseSwiftType(schema *ast.Schema, name string, cfg *Config) string {
	switch name {
	case "String", "ID":
		return "String"
	case "Int":
		return "Int"
	case "Float":
		return "Double"
	case "Boolean":
		return "Bool"
	}

	def := schema.Types[name]
	if def != nil && def.Kind == ast.Enum {
		enumName := firstUppercased(name)
		if isTypeReserved(enumName) {
			enumName += "_Enum"
		}
		return "GraphQLEnum<" + cfg.Namespace() + "." + enumName + ">"
	}
	// Custom scalars and input objects resolve through the schema module.
	return cfg.Namespace() + "." + firstUppercased(name)
}

// wrapSwiftType applies list and optionality wrappers around a base
// spelling following the GraphQL type's own structure.
func wrapSwiftType(t *ast.Type, base string) string {
	var spell func(t *ast.Type) string
	spell = func(t *ast.Type) string {
		var inner string
		if t.Elem != nil {
			inner = "[" + spell(t.Elem) + "]"
		} else {
			inner = base
		}
		if !t.NonNull {
			inner += "?"
		}
		return inner
	}
	return spell(t)
}

func renderArgumentValue(v *ast.Value) string {
	if v == nil {
		return "nil"
	}
	switch v.Kind {
	case ast.Variable:
		return `.variable("` + v.Raw + `")`
	case ast.StringValue, ast.EnumValue:
		return `"` + v.Raw + `"`
	case ast.NullValue:
		return "nil"
	default:
		return v.String()
	}
}
