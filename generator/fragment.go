package generator

import (
	"strings"
)

// RenderFragment emits the Swift declaration for a named fragment.
func RenderFragment(frag *FragmentIR, cfg *Config) string {
	r := &fragmentRenderer{cfg: cfg, frag: frag}
	var b strings.Builder
	r.renderStruct(&b, structSpec{
		name:       frag.Name,
		isRoot:     true,
		parentKind: frag.ParentKind,
		parentName: frag.TypeCondition,
		selections: frag.Selections,
	}, "")
	return b.String()
}

type fragmentRenderer struct {
	cfg  *Config
	frag *FragmentIR
}

type structSpec struct {
	name       string
	isRoot     bool
	parentKind CompositeKind
	parentName string
	selections []SelectionIR
}

func (r *fragmentRenderer) mutable() bool { return r.frag.IsLocalCacheMutation }

func (r *fragmentRenderer) declAccess() string {
	if r.cfg.Output.SchemaTypes.ModuleType.DeclarationAccess() == AccessPublic {
		return "public "
	}
	return ""
}

func (r *fragmentRenderer) staticAccess() string {
	if r.cfg.Output.SchemaTypes.ModuleType.StaticMemberAccess() == AccessPublic {
		return "public "
	}
	return ""
}

func (r *fragmentRenderer) selectionSetKind() string {
	if r.mutable() {
		return r.cfg.Namespace() + ".MutableSelectionSet"
	}
	return r.cfg.Namespace() + ".SelectionSet"
}

func (r *fragmentRenderer) renderStruct(b *strings.Builder, spec structSpec, indent string) {
	conformances := r.selectionSetKind()
	if spec.isRoot {
		conformances += ", Fragment"
	}
	b.WriteString(indent + r.declAccess() + "struct " + spec.name + ": " + conformances + " {\n")

	inner := indent + "  "

	if spec.isRoot && r.cfg.Options.OperationDocumentFormat != DocumentFormatOperationID {
		b.WriteString(inner + r.staticAccess() + "static var fragmentDefinition: StaticString {\n")
		b.WriteString(inner + "  #\"" + ReprintFragmentDefinition(r.frag.Definition) + "\"#\n")
		b.WriteString(inner + "}\n\n")
	}

	dataKeyword := "let"
	if r.mutable() {
		dataKeyword = "var"
	}
	b.WriteString(inner + r.declAccess() + dataKeyword + " __data: DataDict\n")
	b.WriteString(inner + r.declAccess() + "init(_dataDict: DataDict) { __data = _dataDict }\n\n")

	parentTypeExpr := r.cfg.Namespace() + "." + string(spec.parentKind) + "." + spec.parentName
	b.WriteString(inner + r.staticAccess() + "static var __parentType: any ParentType { " + parentTypeExpr + " }\n")

	if !r.omitSelections(spec) {
		b.WriteString(inner + r.staticAccess() + "static var __selections: [Selection] { [\n")
		b.WriteString(inner + "  .field(\"__typename\", String.self),\n")
		for _, sel := range spec.selections {
			b.WriteString(inner + "  " + renderSelectionEntry(sel) + ",\n")
		}
		b.WriteString(inner + "] }\n")
	}

	fields, spreads := splitSelections(spec.selections)

	if len(fields) > 0 {
		b.WriteString("\n")
		for _, sel := range fields {
			r.renderAccessor(b, sel, inner)
		}
	}

	if len(spreads) > 0 {
		b.WriteString("\n")
		r.renderFragmentsContainer(b, spreads, inner)
	}

	if r.shouldRenderInitializer(spec) {
		b.WriteString("\n")
		r.renderInitializer(b, spec, fields, inner)
	}

	for _, sel := range fields {
		if !sel.IsComposite() {
			continue
		}
		kind, err := compositeKind(sel.ParentType)
		if err != nil {
			continue
		}
		b.WriteString("\n")
		r.renderStruct(b, structSpec{
			name:       sel.StructName,
			parentKind: kind,
			parentName: sel.ParentType.Name,
			selections: sel.Children,
		}, inner)
	}

	b.WriteString(indent + "}\n")
}

// omitSelections applies the implicit-typename rule: a selection set whose
// only direct selection is __typename on an Object parent carries no
// __selections block.
func (r *fragmentRenderer) omitSelections(spec structSpec) bool {
	return len(spec.selections) == 0 && spec.parentKind == KindObject
}

func splitSelections(selections []SelectionIR) (fields, spreads []SelectionIR) {
	for _, sel := range selections {
		if sel.IsSpread {
			spreads = append(spreads, sel)
		} else {
			fields = append(fields, sel)
		}
	}
	return fields, spreads
}

func renderSelectionEntry(sel SelectionIR) string {
	if sel.IsSpread {
		return ".fragment(" + sel.FragmentName + ".self)"
	}

	var b strings.Builder
	b.WriteString(".field(\"" + sel.Name + "\"")
	if sel.Alias != "" {
		b.WriteString(", alias: \"" + sel.Alias + "\"")
	}
	b.WriteString(", " + sel.SwiftType + ".self")
	if len(sel.Arguments) > 0 {
		b.WriteString(", arguments: [")
		for i, arg := range sel.Arguments {
			if i > 0 {
				b.WriteString(", ")
			}
			b.WriteString("\"" + arg.Name + "\": " + arg.Value)
		}
		b.WriteString("]")
	}
	b.WriteString(")")
	return b.String()
}

func (r *fragmentRenderer) renderAccessor(b *strings.Builder, sel SelectionIR, indent string) {
	name := escapeCaseName(firstLowercased(sel.ResponseKey()))
	key := sel.ResponseKey()

	if r.mutable() {
		b.WriteString(indent + r.declAccess() + "var " + name + ": " + sel.SwiftType + " {\n")
		b.WriteString(indent + "  get { __data[\"" + key + "\"] }\n")
		b.WriteString(indent + "  set { __data[\"" + key + "\"] = newValue }\n")
		b.WriteString(indent + "}\n")
		return
	}
	b.WriteString(indent + r.declAccess() + "var " + name + ": " + sel.SwiftType + " { __data[\"" + key + "\"] }\n")
}

func (r *fragmentRenderer) renderFragmentsContainer(b *strings.Builder, spreads []SelectionIR, indent string) {
	b.WriteString(indent + r.declAccess() + "struct Fragments: FragmentContainer {\n")
	b.WriteString(indent + "  " + r.declAccess() + "let __data: DataDict\n")
	b.WriteString(indent + "  " + r.declAccess() + "init(_dataDict: DataDict) { __data = _dataDict }\n\n")
	for _, spread := range spreads {
		accessor := escapeCaseName(firstLowercased(spread.FragmentName))
		b.WriteString(indent + "  " + r.declAccess() + "var " + accessor + ": " + spread.FragmentName + " { _toFragment() }\n")
	}
	b.WriteString(indent + "}\n\n")
	b.WriteString(indent + r.declAccess() + "var fragments: Fragments { Fragments(_dataDict: __data) }\n")
}

// shouldRenderInitializer gates the convenience initializer: explicit
// selection in the config, or the fragment being a local cache mutation.
func (r *fragmentRenderer) shouldRenderInitializer(spec structSpec) bool {
	if r.frag.IsLocalCacheMutation {
		return true
	}
	return r.cfg.Options.SelectionSetInitializers.IncludesFragment(
		r.frag.Name,
		r.cfg.ExperimentalFeatures.FieldMergingIsAll(),
	)
}

func (r *fragmentRenderer) renderInitializer(b *strings.Builder, spec structSpec, fields []SelectionIR, indent string) {
	b.WriteString(indent + r.declAccess() + "init(\n")

	var params []string
	if spec.parentKind != KindObject {
		params = append(params, indent+"  __typename: String")
	}
	for _, sel := range fields {
		param := indent + "  " + firstLowercased(sel.ResponseKey()) + ": " + sel.SwiftType
		if strings.HasSuffix(sel.SwiftType, "?") {
			param += " = nil"
		}
		params = append(params, param)
	}
	b.WriteString(strings.Join(params, ",\n") + "\n")
	b.WriteString(indent + ") {\n")

	b.WriteString(indent + "  self.init(_dataDict: DataDict(\n")
	b.WriteString(indent + "    data: [\n")
	typenameValue := "__typename"
	if spec.parentKind == KindObject {
		typenameValue = r.cfg.Namespace() + "." + string(KindObject) + "." + spec.parentName + ".typename"
	}
	b.WriteString(indent + "      \"__typename\": " + typenameValue + ",\n")
	for _, sel := range fields {
		b.WriteString(indent + "      \"" + sel.ResponseKey() + "\": " + firstLowercased(sel.ResponseKey()) + ",\n")
	}
	b.WriteString(indent + "    ],\n")
	b.WriteString(indent + "    fulfilledFragments: [\n")
	b.WriteString(indent + "      ObjectIdentifier(" + spec.name + ".self)\n")
	b.WriteString(indent + "    ]\n")
	b.WriteString(indent + "  ))\n")
	b.WriteString(indent + "}\n")
}
