package cache

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"
)

// Selection is one entry of a compiled selection set. A nil Selections slice
// marks a scalar field; a non-nil slice marks a composite field whose value
// is a Reference (or list of References) in the store.
type Selection struct {
	Name      string
	Alias     string
	Arguments map[string]interface{}
	Selections []Selection
}

// ResponseKey is the field key the selection occupies in a DataDict.
func (s Selection) ResponseKey() string {
	if s.Alias != "" {
		return s.Alias
	}
	return s.Name
}

// StorageKey is the field key the selection occupies in a Record. Arguments
// are folded in canonically so distinct argument sets store distinct fields,
// e.g. `hero(episode:"JEDI")`.
func (s Selection) StorageKey() string {
	if len(s.Arguments) == 0 {
		return s.Name
	}

	names := make([]string, 0, len(s.Arguments))
	for name := range s.Arguments {
		names = append(names, name)
	}
	sort.Strings(names)

	var b strings.Builder
	b.WriteString(s.Name)
	b.WriteByte('(')
	for i, name := range names {
		if i > 0 {
			b.WriteByte(',')
		}
		value, err := json.Marshal(s.Arguments[name])
		if err != nil {
			value = []byte(fmt.Sprintf("%v", s.Arguments[name]))
		}
		fmt.Fprintf(&b, "%s:%s", name, value)
	}
	b.WriteByte(')')
	return b.String()
}

// SelectionSet is the compiled, typed view of a region of a response.
type SelectionSet struct {
	ParentType string
	Selections []Selection
}

// Field builds a scalar field selection.
func Field(name string) Selection {
	return Selection{Name: name}
}

// FieldWithArgs builds a scalar field selection carrying arguments.
func FieldWithArgs(name string, args map[string]interface{}) Selection {
	return Selection{Name: name, Arguments: args}
}

// Object builds a composite field selection.
func Object(name string, children ...Selection) Selection {
	if children == nil {
		children = []Selection{}
	}
	return Selection{Name: name, Selections: children}
}

// ObjectWithArgs builds a composite field selection carrying arguments.
func ObjectWithArgs(name string, args map[string]interface{}, children ...Selection) Selection {
	sel := Object(name, children...)
	sel.Arguments = args
	return sel
}
