package generator

import (
	"strings"
)

// EnumValue is one value of a schema enum, pre-resolved against schema
// customization.
type EnumValue struct {
	Name              string
	Documentation     string
	DeprecationReason *string
	CustomName        string
}

func (v EnumValue) isDeprecated() bool { return v.DeprecationReason != nil }

// EnumDefinition is the renderer input for one schema enum.
type EnumDefinition struct {
	Name          string
	CustomName    string
	Documentation string
	Values        []EnumValue
}

// RenderedName is the Swift declaration name: the custom name verbatim when
// present, else the first-uppercased schema name, suffixed `_Enum` on a
// reserved-keyword clash.
func (e EnumDefinition) RenderedName() string {
	if e.CustomName != "" {
		return e.CustomName
	}
	name := firstUppercased(e.Name)
	if isTypeReserved(name) {
		name += "_Enum"
	}
	return name
}

// RenderEnum emits the Swift declaration for a schema enum.
func RenderEnum(def EnumDefinition, cfg *Config) string {
	var b strings.Builder

	if cfg.Options.SchemaDocumentation.Included() && def.Documentation != "" {
		writeDocComment(&b, "", def.Documentation)
	}
	if def.CustomName != "" {
		b.WriteString("// Renamed from GraphQL schema value: '" + def.Name + "'\n")
	}

	writeAccess(&b, enumAccess(cfg))
	b.WriteString("enum " + def.RenderedName() + ": String, EnumType {\n")

	for _, value := range def.Values {
		renderEnumValue(&b, value, cfg)
	}

	b.WriteString("}\n")
	return b.String()
}

func renderEnumValue(b *strings.Builder, value EnumValue, cfg *Config) {
	if value.isDeprecated() && !cfg.Options.DeprecatedEnumCases.Included() {
		return
	}

	hasDoc := cfg.Options.SchemaDocumentation.Included() && value.Documentation != ""
	hasDeprecation := value.isDeprecated() && cfg.Options.WarningsOnDeprecatedUsage.Included()

	if hasDoc {
		writeDocComment(b, "  ", value.Documentation)
	}
	if hasDeprecation {
		if hasDoc {
			b.WriteString("  ///\n")
		}
		writeDocComment(b, "  ", "**Deprecated**: "+*value.DeprecationReason)
	}

	caseName := value.CustomName
	if caseName == "" {
		caseName = value.Name
		if cfg.Options.ConversionStrategies.EnumCaseStrategy() == CaseConversionCamelCase {
			caseName = convertToCamelCase(caseName)
		}
		caseName = escapeCaseName(caseName)
	} else {
		b.WriteString("  // Renamed from GraphQL schema value: '" + value.Name + "'\n")
	}

	b.WriteString("  case " + caseName + " = \"" + value.Name + "\"\n")
}

// enumAccess resolves the keyword for enum declarations: public in
// module-producing modes, the target's own modifier when embedded.
func enumAccess(cfg *Config) AccessModifier {
	moduleType := cfg.Output.SchemaTypes.ModuleType
	if moduleType.EmbeddedInTarget != nil {
		return moduleType.EmbeddedInTarget.AccessModifier
	}
	return AccessPublic
}

func writeAccess(b *strings.Builder, access AccessModifier) {
	if access == AccessPublic {
		b.WriteString("public ")
	}
}

func writeDocComment(b *strings.Builder, indent, text string) {
	for _, line := range strings.Split(text, "\n") {
		if line == "" {
			b.WriteString(indent + "///\n")
			continue
		}
		b.WriteString(indent + "/// " + line + "\n")
	}
}
