package cache

import (
	"fmt"
	"strings"
)

// MissError reports a selection that could not be satisfied from the store.
// Path names the field the lookup died at, root first.
type MissError struct {
	Path []string
}

func (e *MissError) Error() string {
	return fmt.Sprintf("cache miss at %q", strings.Join(e.Path, "."))
}

func missAt(path []string) *MissError {
	p := make([]string, len(path))
	copy(p, path)
	return &MissError{Path: p}
}
