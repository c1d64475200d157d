package testrun

import (
	"path/filepath"
	"strings"

	"machinerun.io/testrun/pkg/types"
)

// Displayer formats canonical test paths for status lines. The zero mode
// prints paths below the invocation directory as ./suffix and everything
// else absolute; localized mode prints paths relative to the tests root;
// absolute mode prints them untouched.
type Displayer struct {
	mode          types.PathMode
	invocationDir string
	root          string
}

// NewDisplayer builds a Displayer. invocationDir and root must be canonical
// absolute paths, the same form the resolver hands out, or the relative
// modes degrade to absolute output.
func NewDisplayer(mode types.PathMode, invocationDir, root string) *Displayer {
	return &Displayer{mode: mode, invocationDir: invocationDir, root: root}
}

// Format maps one canonical test path to its display form.
func (d *Displayer) Format(path string) string {
	switch d.mode {
	case types.PathAbsolute:
		return path
	case types.PathLocalized:
		if rel, ok := relUnder(d.root, path); ok {
			return rel
		}

		return path
	}

	if rel, ok := relUnder(d.invocationDir, path); ok {
		return "./" + rel
	}

	return path
}

// relUnder rewrites path relative to root, refusing to climb out of it.
func relUnder(root, path string) (string, bool) {
	rel, err := filepath.Rel(root, path)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", false
	}

	return rel, true
}
