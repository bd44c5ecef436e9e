package generator

import (
	"context"
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"
)

const generatedFileHeader = `// @generated
// This file was automatically generated and should not be edited.
`

// GeneratedFile is one rendered output, plus the extra modules its
// declarations need imported.
type GeneratedFile struct {
	Path            string
	Content         string
	ImportedModules []string
}

// writeFiles emits every file concurrently. Directories are created as
// needed; existing files are overwritten.
func writeFiles(ctx context.Context, files []GeneratedFile) error {
	grp, _ := errgroup.WithContext(ctx)
	grp.SetLimit(8)

	for _, file := range files {
		file := file
		grp.Go(func() error {
			if err := os.MkdirAll(filepath.Dir(file.Path), 0o755); err != nil {
				return errors.Wrapf(err, "creating output directory for %q", file.Path)
			}
			return errors.Wrapf(os.WriteFile(file.Path, []byte(renderFile(file)), 0o644), "writing %q", file.Path)
		})
	}
	return grp.Wait()
}

func renderFile(file GeneratedFile) string {
	var b strings.Builder
	b.WriteString(generatedFileHeader)
	b.WriteString("\n@_exported import ApolloAPI\n")
	for _, module := range file.ImportedModules {
		b.WriteString("import " + module + "\n")
	}
	b.WriteString("\n")
	b.WriteString(file.Content)
	return b.String()
}
