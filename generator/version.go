package generator

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/pkg/errors"
)

// Version is the CLI's own version. It must match the runtime library
// pinned by the consuming project.
const Version = "1.9.3"

const libraryPackageIdentity = "apollograph"

// VersionMismatchError reports a CLI running against a project pinned to a
// different library version.
type VersionMismatchError struct {
	CLIVersion     string
	LibraryVersion string
}

func (e *VersionMismatchError) Error() string {
	return fmt.Sprintf(
		"CLI version %s does not match pinned library version %s; rerun with --ignore-version-mismatch to proceed anyway",
		e.CLIVersion, e.LibraryVersion,
	)
}

type packageResolved struct {
	Pins []struct {
		Identity string `json:"identity"`
		State    struct {
			Version string `json:"version"`
		} `json:"state"`
	} `json:"pins"`
}

// CheckVersionMatch compares the CLI version against the library version
// pinned in the project's Package.resolved. An absent file, or a file that
// does not pin the library, passes.
func CheckVersionMatch(projectRoot string) error {
	path := filepath.Join(projectRoot, "Package.resolved")
	raw, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return errors.Wrapf(err, "reading %q", path)
	}

	var resolved packageResolved
	if err := json.Unmarshal(raw, &resolved); err != nil {
		return errors.Wrapf(err, "decoding %q", path)
	}

	for _, pin := range resolved.Pins {
		if pin.Identity != libraryPackageIdentity {
			continue
		}
		if pin.State.Version != Version {
			return &VersionMismatchError{CLIVersion: Version, LibraryVersion: pin.State.Version}
		}
	}
	return nil
}
