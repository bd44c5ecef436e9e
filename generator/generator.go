// Package generator renders GraphQL schema types and fragments into Swift
// sources from a JSON (or YAML) configuration document.
package generator

import (
	"context"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/vektah/gqlparser/v2"
	"github.com/vektah/gqlparser/v2/ast"
	"github.com/vektah/gqlparser/v2/parser"
)

// Generator drives one code generation run.
type Generator struct {
	cfg *Config
	log logrus.FieldLogger
}

type GeneratorOption func(*Generator)

func WithGeneratorLogger(log logrus.FieldLogger) GeneratorOption {
	return func(g *Generator) { g.log = log }
}

func New(cfg *Config, opts ...GeneratorOption) *Generator {
	g := &Generator{cfg: cfg, log: logrus.StandardLogger()}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Generate loads the schema and operation documents, renders every enum and
// fragment, and writes the output tree.
func (g *Generator) Generate(ctx context.Context) error {
	schema, err := g.loadSchema()
	if err != nil {
		return err
	}

	fragments, err := g.loadFragments(schema)
	if err != nil {
		return err
	}

	files := g.renderEnumFiles(schema)

	for _, frag := range fragments {
		ir, err := BuildFragmentIR(schema, frag, g.cfg)
		if err != nil {
			return err
		}
		files = append(files, GeneratedFile{
			Path:            filepath.Join(g.cfg.Output.SchemaTypes.Path, "Fragments", ir.Name+".graphql.swift"),
			Content:         RenderFragment(ir, g.cfg),
			ImportedModules: ir.ImportedModules,
		})
	}

	g.log.WithField("files", len(files)).Debug("generator: writing output")
	return writeFiles(ctx, files)
}

func (g *Generator) loadSchema() (*ast.Schema, error) {
	raw, err := os.ReadFile(g.cfg.Input.SchemaPath)
	if err != nil {
		return nil, errors.Wrapf(err, "reading schema %q", g.cfg.Input.SchemaPath)
	}

	schema, gqlErr := gqlparser.LoadSchema(&ast.Source{
		Name:  g.cfg.Input.SchemaPath,
		Input: string(raw),
	})
	if gqlErr != nil {
		return nil, errors.Wrap(gqlErr, "parsing schema")
	}
	return schema, nil
}

// loadFragments parses every operation document under the configured search
// paths and collects the named fragments, sorted by name for stable output.
func (g *Generator) loadFragments(schema *ast.Schema) ([]*ast.FragmentDefinition, error) {
	var fragments []*ast.FragmentDefinition
	for _, pattern := range g.cfg.Input.OperationSearchPaths {
		matches, err := filepath.Glob(pattern)
		if err != nil {
			return nil, errors.Wrapf(err, "bad operation search path %q", pattern)
		}
		for _, path := range matches {
			raw, err := os.ReadFile(path)
			if err != nil {
				return nil, errors.Wrapf(err, "reading operations %q", path)
			}
			doc, gqlErr := parser.ParseQuery(&ast.Source{Name: path, Input: string(raw)})
			if gqlErr != nil {
				return nil, errors.Wrapf(gqlErr, "parsing operations %q", path)
			}
			fragments = append(fragments, doc.Fragments...)
		}
	}
	sort.Slice(fragments, func(i, j int) bool { return fragments[i].Name < fragments[j].Name })
	return fragments, nil
}

func (g *Generator) renderEnumFiles(schema *ast.Schema) []GeneratedFile {
	var names []string
	for name, def := range schema.Types {
		if def.Kind != ast.Enum || def.BuiltIn || strings.HasPrefix(name, "__") {
			continue
		}
		names = append(names, name)
	}
	sort.Strings(names)

	var files []GeneratedFile
	for _, name := range names {
		def := g.buildEnumDefinition(schema.Types[name])
		files = append(files, GeneratedFile{
			Path:    filepath.Join(g.cfg.Output.SchemaTypes.Path, "Enums", def.RenderedName()+".graphql.swift"),
			Content: RenderEnum(def, g.cfg),
		})
	}
	return files
}

func (g *Generator) buildEnumDefinition(def *ast.Definition) EnumDefinition {
	customization := g.cfg.Options.SchemaCustomization.CustomTypeNames[def.Name]

	out := EnumDefinition{
		Name:          def.Name,
		CustomName:    customization.Name,
		Documentation: def.Description,
	}
	for _, value := range def.EnumValues {
		ev := EnumValue{
			Name:          value.Name,
			Documentation: value.Description,
			CustomName:    customization.Cases[value.Name],
		}
		if deprecated := value.Directives.ForName(deprecatedDirectiveName); deprecated != nil {
			reason := ""
			if arg := deprecated.Arguments.ForName("reason"); arg != nil && arg.Value != nil {
				reason = arg.Value.Raw
			}
			ev.DeprecationReason = &reason
		}
		out.Values = append(out.Values, ev)
	}
	return out
}
