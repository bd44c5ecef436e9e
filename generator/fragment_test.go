package generator

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vektah/gqlparser/v2"
	"github.com/vektah/gqlparser/v2/ast"
	"github.com/vektah/gqlparser/v2/parser"
)

const testSchema = `
type Query {
  hero(episode: Episode): Hero
  animal: Animal
  search: SearchResult
}

type Hero {
  id: ID!
  name: String!
  episode: Episode
  height: Float
  friends: [Hero]
}

interface Animal {
  name: String!
}

union SearchResult = Hero

enum Episode {
  NEWHOPE
  EMPIRE
  JEDI
}
`

func loadTestSchema(t *testing.T) *ast.Schema {
	t.Helper()
	schema, err := gqlparser.LoadSchema(&ast.Source{Name: "schema.graphqls", Input: testSchema})
	require.Nil(t, err)
	return schema
}

func buildIR(t *testing.T, cfg *Config, source string) map[string]*FragmentIR {
	t.Helper()
	schema := loadTestSchema(t)

	doc, err := parser.ParseQuery(&ast.Source{Name: "operations.graphql", Input: source})
	require.Nil(t, err)

	out := make(map[string]*FragmentIR, len(doc.Fragments))
	for _, frag := range doc.Fragments {
		ir, irErr := BuildFragmentIR(schema, frag, cfg)
		require.NoError(t, irErr)
		out[frag.Name] = ir
	}
	return out
}

func renderOne(t *testing.T, cfg *Config, source, name string) string {
	t.Helper()
	ir, ok := buildIR(t, cfg, source)[name]
	require.True(t, ok, "fragment %q not found", name)
	return RenderFragment(ir, cfg)
}

func TestRenderFragmentBasic(t *testing.T) {
	got := renderOne(t, swiftPackageConfig(),
		`fragment heroDetails on Hero { name episode }`, "heroDetails")

	want := `public struct HeroDetails: MySchema.SelectionSet, Fragment {
  public static var fragmentDefinition: StaticString {
    #"fragment heroDetails on Hero { __typename name episode }"#
  }

  public let __data: DataDict
  public init(_dataDict: DataDict) { __data = _dataDict }

  public static var __parentType: any ParentType { MySchema.Objects.Hero }
  public static var __selections: [Selection] { [
    .field("__typename", String.self),
    .field("name", String.self),
    .field("episode", GraphQLEnum<MySchema.Episode>?.self),
  ] }

  public var name: String { __data["name"] }
  public var episode: GraphQLEnum<MySchema.Episode>? { __data["episode"] }
}
`
	assertRendered(t, want, got)
}

func TestReservedFragmentNameGetsSuffix(t *testing.T) {
	got := renderOne(t, swiftPackageConfig(),
		`fragment type on Hero { name }`, "type")

	assert.True(t, strings.HasPrefix(got, "public struct Type_Fragment: MySchema.SelectionSet, Fragment {"), got)
	assert.Contains(t, got, `#"fragment type on Hero { __typename name }"#`)
}

func TestLocalCacheMutationRendersMutableSelectionSet(t *testing.T) {
	got := renderOne(t, swiftPackageConfig(),
		`fragment heroNameMutable on Hero @apollo_client_ios_localCacheMutation { name }`,
		"heroNameMutable")

	want := `public struct HeroNameMutable: MySchema.MutableSelectionSet, Fragment {
  public static var fragmentDefinition: StaticString {
    #"fragment heroNameMutable on Hero { __typename name }"#
  }

  public var __data: DataDict
  public init(_dataDict: DataDict) { __data = _dataDict }

  public static var __parentType: any ParentType { MySchema.Objects.Hero }
  public static var __selections: [Selection] { [
    .field("__typename", String.self),
    .field("name", String.self),
  ] }

  public var name: String {
    get { __data["name"] }
    set { __data["name"] = newValue }
  }

  public init(
    name: String
  ) {
    self.init(_dataDict: DataDict(
      data: [
        "__typename": MySchema.Objects.Hero.typename,
        "name": name,
      ],
      fulfilledFragments: [
        ObjectIdentifier(HeroNameMutable.self)
      ]
    ))
  }
}
`
	assertRendered(t, want, got)
}

func TestTypenameOnlyObjectFragmentOmitsSelections(t *testing.T) {
	got := renderOne(t, swiftPackageConfig(),
		`fragment heroTypename on Hero { __typename }`, "heroTypename")

	assert.NotContains(t, got, "__selections")
	assert.Contains(t, got, "public static var __parentType: any ParentType { MySchema.Objects.Hero }")
}

func TestTypenameOnlyInterfaceFragmentKeepsSelections(t *testing.T) {
	got := renderOne(t, swiftPackageConfig(),
		`fragment animalTypename on Animal { __typename }`, "animalTypename")

	assert.Contains(t, got, "__selections")
	assert.Contains(t, got, "MySchema.Interfaces.Animal")
}

func TestUnionParentTypeResolution(t *testing.T) {
	got := renderOne(t, swiftPackageConfig(),
		`fragment searchItem on SearchResult { __typename }`, "searchItem")

	assert.Contains(t, got, "MySchema.Unions.SearchResult")
}

func TestFragmentSpreadRendersContainer(t *testing.T) {
	source := `
fragment heroDetails on Hero { name }
fragment heroWithDetails on Hero { name ...heroDetails }
`
	got := renderOne(t, swiftPackageConfig(), source, "heroWithDetails")

	assert.Contains(t, got, ".fragment(HeroDetails.self),")
	assert.Contains(t, got, "public struct Fragments: FragmentContainer {")
	assert.Contains(t, got, "public var heroDetails: HeroDetails { _toFragment() }")
	assert.Contains(t, got, "public var fragments: Fragments { Fragments(_dataDict: __data) }")
	assert.Contains(t, got, `#"fragment heroWithDetails on Hero { __typename name ...heroDetails }"#`)
}

func TestNestedCompositeFieldRendersChildStruct(t *testing.T) {
	got := renderOne(t, swiftPackageConfig(),
		`fragment heroWithFriends on Hero { name friends { name } }`, "heroWithFriends")

	assert.Contains(t, got, `public var friends: [Friends?]? { __data["friends"] }`)
	assert.Contains(t, got, "  public struct Friends: MySchema.SelectionSet {")
	assert.Contains(t, got, `    .field("friends", [Friends?]?.self),`)
}

func TestFieldArgumentsRenderInSelections(t *testing.T) {
	got := renderOne(t, swiftPackageConfig(),
		`fragment heroLookup on Query { hero(episode: JEDI) { name } }`, "heroLookup")

	assert.Contains(t, got, `.field("hero", Hero?.self, arguments: ["episode": "JEDI"]),`)
}

func TestFragmentDefinitionOmittedForOperationIDFormat(t *testing.T) {
	cfg := swiftPackageConfig()
	cfg.Options.OperationDocumentFormat = DocumentFormatOperationID

	got := renderOne(t, cfg, `fragment heroDetails on Hero { name }`, "heroDetails")
	assert.NotContains(t, got, "fragmentDefinition")
}

func TestInitializerGating(t *testing.T) {
	source := `fragment heroDetails on Hero { name }`

	t.Run("default config omits initializer", func(t *testing.T) {
		got := renderOne(t, swiftPackageConfig(), source, "heroDetails")
		assert.NotContains(t, got, "self.init(_dataDict:")
	})

	t.Run("all with full field merging", func(t *testing.T) {
		cfg := swiftPackageConfig()
		cfg.Options.SelectionSetInitializers.All = true
		got := renderOne(t, cfg, source, "heroDetails")
		assert.Contains(t, got, "self.init(_dataDict:")
	})

	t.Run("all suppressed under partial field merging", func(t *testing.T) {
		cfg := swiftPackageConfig()
		cfg.Options.SelectionSetInitializers.All = true
		cfg.ExperimentalFeatures.FieldMerging = []string{"ancestors", "namedFragments"}
		got := renderOne(t, cfg, source, "heroDetails")
		assert.NotContains(t, got, "self.init(_dataDict:")
	})

	t.Run("namedFragments", func(t *testing.T) {
		cfg := swiftPackageConfig()
		cfg.Options.SelectionSetInitializers.NamedFragments = true
		got := renderOne(t, cfg, source, "heroDetails")
		assert.Contains(t, got, "self.init(_dataDict:")
	})

	t.Run("fragment named explicitly", func(t *testing.T) {
		cfg := swiftPackageConfig()
		cfg.Options.SelectionSetInitializers.Fragments = []string{"HeroDetails"}
		got := renderOne(t, cfg, source, "heroDetails")
		assert.Contains(t, got, "self.init(_dataDict:")
	})
}

func TestFragmentAccessModifiers(t *testing.T) {
	source := `fragment heroDetails on Hero { name }`

	t.Run("swift package", func(t *testing.T) {
		got := renderOne(t, swiftPackageConfig(), source, "heroDetails")
		assert.True(t, strings.HasPrefix(got, "public struct"))
	})

	t.Run("embedded public keeps statics public only", func(t *testing.T) {
		got := renderOne(t, embeddedConfig(AccessPublic), source, "heroDetails")
		assert.True(t, strings.HasPrefix(got, "struct HeroDetails:"), got)
		assert.Contains(t, got, "public static var __parentType")
		assert.Contains(t, got, "\n  let __data: DataDict\n")
	})

	t.Run("embedded internal omits all access keywords", func(t *testing.T) {
		got := renderOne(t, embeddedConfig(AccessInternal), source, "heroDetails")
		assert.NotContains(t, got, "public")
	})
}

func TestImportDirectiveCollectsModules(t *testing.T) {
	irs := buildIR(t, swiftPackageConfig(),
		`fragment heroDetails on Hero @import(module: "SharedModels") @import(module: "Logging") { name }`)

	ir := irs["heroDetails"]
	assert.Equal(t, []string{"SharedModels", "Logging"}, ir.ImportedModules)
	// Client-side directives never leak into the reprinted definition.
	assert.NotContains(t, ReprintFragmentDefinition(ir.Definition), "@import")
}

func TestLowercaseNamespaceIsUppercased(t *testing.T) {
	cfg := swiftPackageConfig()
	cfg.SchemaNamespace = "myschema"
	got := renderOne(t, cfg, `fragment heroDetails on Hero { name }`, "heroDetails")
	assert.Contains(t, got, "Myschema.SelectionSet")

	cfg.SchemaNamespace = "MyAPI"
	got = renderOne(t, cfg, `fragment heroDetails on Hero { name }`, "heroDetails")
	assert.Contains(t, got, "MyAPI.SelectionSet")
}
