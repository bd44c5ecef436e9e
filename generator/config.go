package generator

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
	yaml "gopkg.in/yaml.v2"
)

// DefaultConfigPath is where the CLI looks for configuration by default.
const DefaultConfigPath = "./apollo-codegen-config.json"

// ErrMissingSchemaDownloadConfig is returned when a schema fetch is
// requested without a schemaDownload block.
var ErrMissingSchemaDownloadConfig = errors.New("Missing schema download configuration.")

type Composition string

const (
	Include Composition = "include"
	Exclude Composition = "exclude"
)

// Included treats the zero value as include, matching the config defaults.
func (c Composition) Included() bool { return c != Exclude }

type CaseConversionStrategy string

const (
	CaseConversionCamelCase CaseConversionStrategy = "camelCase"
	CaseConversionNone      CaseConversionStrategy = "none"
)

type OperationDocumentFormat string

const (
	DocumentFormatDefinition  OperationDocumentFormat = "definition"
	DocumentFormatOperationID OperationDocumentFormat = "operationId"
)

// AccessModifier is the Swift access level generated declarations carry.
type AccessModifier string

const (
	AccessPublic   AccessModifier = "public"
	AccessInternal AccessModifier = "internal"
)

// Config is the codegen configuration document
// (apollo-codegen-config.json, or the same keys as YAML).
type Config struct {
	SchemaNamespace      string               `json:"schemaNamespace" yaml:"schemaNamespace"`
	Input                InputConfig          `json:"input" yaml:"input"`
	Output               OutputConfig         `json:"output" yaml:"output"`
	Options              OptionsConfig        `json:"options" yaml:"options"`
	ExperimentalFeatures ExperimentalFeatures `json:"experimentalFeatures" yaml:"experimentalFeatures"`
	SchemaDownload       *SchemaDownload      `json:"schemaDownload,omitempty" yaml:"schemaDownload"`
}

type InputConfig struct {
	SchemaPath           string   `json:"schemaPath" yaml:"schemaPath"`
	OperationSearchPaths []string `json:"operationSearchPaths" yaml:"operationSearchPaths"`
}

type OutputConfig struct {
	SchemaTypes SchemaTypesOutput `json:"schemaTypes" yaml:"schemaTypes"`
	Operations  string            `json:"operations,omitempty" yaml:"operations"`
}

type SchemaTypesOutput struct {
	Path       string     `json:"path" yaml:"path"`
	ModuleType ModuleType `json:"moduleType" yaml:"moduleType"`
}

// ModuleType mirrors the config's tagged union:
// {"swiftPackage": {}}, {"other": {}}, or
// {"embeddedInTarget": {"name": ..., "accessModifier": ...}}.
type ModuleType struct {
	SwiftPackage     *struct{}         `json:"swiftPackage,omitempty" yaml:"swiftPackage"`
	Other            *struct{}         `json:"other,omitempty" yaml:"other"`
	EmbeddedInTarget *EmbeddedInTarget `json:"embeddedInTarget,omitempty" yaml:"embeddedInTarget"`
}

type EmbeddedInTarget struct {
	Name           string         `json:"name" yaml:"name"`
	AccessModifier AccessModifier `json:"accessModifier" yaml:"accessModifier"`
}

// IsEmbedded reports whether generated code lands inside an app target
// rather than its own module.
func (m ModuleType) IsEmbedded() bool { return m.EmbeddedInTarget != nil }

// DeclarationAccess resolves the access keyword for type declarations and
// instance members: public for module-producing modes, omitted whenever the
// code is embedded in a target.
func (m ModuleType) DeclarationAccess() AccessModifier {
	if m.EmbeddedInTarget != nil {
		return AccessInternal
	}
	return AccessPublic
}

// StaticMemberAccess resolves the access keyword for static members, which
// stay public for embeddedInTarget(.public).
func (m ModuleType) StaticMemberAccess() AccessModifier {
	if m.EmbeddedInTarget != nil && m.EmbeddedInTarget.AccessModifier != AccessPublic {
		return AccessInternal
	}
	return AccessPublic
}

type OptionsConfig struct {
	DeprecatedEnumCases       Composition            `json:"deprecatedEnumCases" yaml:"deprecatedEnumCases"`
	WarningsOnDeprecatedUsage Composition            `json:"warningsOnDeprecatedUsage" yaml:"warningsOnDeprecatedUsage"`
	SchemaDocumentation       Composition            `json:"schemaDocumentation" yaml:"schemaDocumentation"`
	ConversionStrategies      ConversionStrategies   `json:"conversionStrategies" yaml:"conversionStrategies"`
	SelectionSetInitializers  SelectionSetInitializers `json:"selectionSetInitializers" yaml:"selectionSetInitializers"`
	OperationDocumentFormat   OperationDocumentFormat `json:"operationDocumentFormat" yaml:"operationDocumentFormat"`
	SchemaCustomization       SchemaCustomization    `json:"schemaCustomization" yaml:"schemaCustomization"`
}

type ConversionStrategies struct {
	EnumCases CaseConversionStrategy `json:"enumCases" yaml:"enumCases"`
}

// EnumCaseStrategy defaults to camelCase.
func (c ConversionStrategies) EnumCaseStrategy() CaseConversionStrategy {
	if c.EnumCases == "" {
		return CaseConversionCamelCase
	}
	return c.EnumCases
}

// SelectionSetInitializers selects which generated selection sets carry
// convenience initializers.
type SelectionSetInitializers struct {
	All            bool     `json:"all" yaml:"all"`
	NamedFragments bool     `json:"namedFragments" yaml:"namedFragments"`
	Operations     bool     `json:"operations" yaml:"operations"`
	Fragments      []string `json:"fragments" yaml:"fragments"`
}

// IncludesFragment decides initializer emission for the named fragment.
// The .all selection only counts when field merging is the full [.all]
// set; partial merging combinations suppress it.
func (s SelectionSetInitializers) IncludesFragment(name string, fieldMergingAll bool) bool {
	if s.All && fieldMergingAll {
		return true
	}
	if s.NamedFragments {
		return true
	}
	for _, n := range s.Fragments {
		if n == name {
			return true
		}
	}
	return false
}

type ExperimentalFeatures struct {
	FieldMerging []string `json:"fieldMerging" yaml:"fieldMerging"`
}

// FieldMergingIsAll reports whether field merging is the full [.all] set.
// An absent key defaults to all.
func (e ExperimentalFeatures) FieldMergingIsAll() bool {
	if len(e.FieldMerging) == 0 {
		return true
	}
	return len(e.FieldMerging) == 1 && e.FieldMerging[0] == "all"
}

// SchemaCustomization renames schema types and enum values.
type SchemaCustomization struct {
	CustomTypeNames map[string]CustomTypeName `json:"customTypeNames" yaml:"customTypeNames"`
}

type CustomTypeName struct {
	Name  string            `json:"name" yaml:"name"`
	Cases map[string]string `json:"cases,omitempty" yaml:"cases"`
}

type SchemaDownload struct {
	Endpoint string            `json:"endpoint" yaml:"endpoint"`
	Headers  map[string]string `json:"headers,omitempty" yaml:"headers"`
}

// LoadConfig reads configuration from path. `.yml`/`.yaml` files decode as
// YAML, anything else as JSON.
func LoadConfig(path string) (*Config, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "reading config %q", path)
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".yml", ".yaml":
		var cfg Config
		if err := yaml.Unmarshal(raw, &cfg); err != nil {
			return nil, errors.Wrapf(err, "decoding config %q", path)
		}
		return validated(&cfg)
	default:
		return ParseConfig(string(raw))
	}
}

// ParseConfig decodes an inline JSON configuration string.
func ParseConfig(raw string) (*Config, error) {
	var cfg Config
	if err := json.Unmarshal([]byte(raw), &cfg); err != nil {
		return nil, errors.Wrap(err, "decoding config")
	}
	return validated(&cfg)
}

func validated(cfg *Config) (*Config, error) {
	if cfg.SchemaNamespace == "" {
		return nil, errors.New("config: schemaNamespace is required")
	}
	if cfg.Input.SchemaPath == "" {
		return nil, errors.New("config: input.schemaPath is required")
	}
	if cfg.Output.SchemaTypes.Path == "" {
		return nil, errors.New("config: output.schemaTypes.path is required")
	}
	return cfg, nil
}

// Namespace returns the schema namespace as it appears in generated code:
// entirely-lowercase namespaces get their first letter uppercased, anything
// else is preserved.
func (c *Config) Namespace() string {
	ns := c.SchemaNamespace
	if ns == strings.ToLower(ns) {
		return firstUppercased(ns)
	}
	return ns
}
