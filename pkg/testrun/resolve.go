package testrun

import (
	"os"
	"path/filepath"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/pkg/errors"
	"machinerun.io/testrun/pkg/lib"
	"machinerun.io/testrun/pkg/log"
	"machinerun.io/testrun/pkg/types"
)

// Test is one resolved test: the canonical absolute path that gets executed,
// and the form shown in status lines.
type Test struct {
	Path    string
	Display string
}

// Resolver maps path arguments to the ordered test list.
type Resolver struct {
	config    types.RunConfig
	policy    types.Policy
	displayer *Displayer
}

// NewResolver validates the exclude patterns and builds a Resolver.
func NewResolver(config types.RunConfig, policy types.Policy, displayer *Displayer) (*Resolver, error) {
	for _, pattern := range config.Excludes {
		if !doublestar.ValidatePattern(pattern) {
			return nil, NewUsageError(errors.Errorf("bad exclude pattern %q", pattern))
		}
	}

	return &Resolver{config: config, policy: policy, displayer: displayer}, nil
}

// Resolve expands the path arguments into tests, in argument order. A
// directory argument contributes its qualifying descendants in walk order.
// Arguments are never deduplicated, so a file reachable through two
// arguments is listed (and later run) twice.
func (r *Resolver) Resolve(args []string) ([]Test, error) {
	tests := []Test{}

	for _, arg := range args {
		fi, err := os.Stat(arg)
		if err != nil {
			if !os.IsNotExist(err) {
				return nil, NewEnvError(errors.Wrapf(err, "couldn't stat %s", arg))
			}

			if err := r.finding(types.MissingPath, "%s: no such file or directory", arg); err != nil {
				return nil, err
			}

			continue
		}

		if !lib.IsExecutable(arg) {
			if err := r.finding(types.NotExecutable, "%s is not executable", arg); err != nil {
				return nil, err
			}

			continue
		}

		if fi.IsDir() {
			found, err := r.resolveDir(arg)
			if err != nil {
				return nil, err
			}

			tests = append(tests, found...)
			continue
		}

		t, err := r.resolveFile(arg)
		if err != nil {
			return nil, err
		}

		tests = append(tests, t)
	}

	if len(tests) == 0 {
		if err := r.finding(types.NoTestsFound, "the given paths contain no tests to run"); err != nil {
			return nil, err
		}
	}

	return tests, nil
}

// finding handles one validation finding: a halting category aborts the
// resolution, anything else is logged and skipped.
func (r *Resolver) finding(c types.Category, format string, args ...interface{}) error {
	if r.policy.Halts(c) {
		return NewPathError(errors.Errorf(format, args...))
	}

	log.Infof("skipping: "+format, args...)
	return nil
}

// resolveFile admits one explicitly named test. A name outside the naming
// convention is a caller error, regardless of the policy.
func (r *Resolver) resolveFile(arg string) (Test, error) {
	if !r.config.MatchesName(filepath.Base(arg)) {
		return Test{}, NewPathError(errors.Errorf(
			"%s does not start with the %q test prefix", arg, r.config.Prefix))
	}

	canonical, err := canonicalize(arg)
	if err != nil {
		return Test{}, err
	}

	return Test{Path: canonical, Display: r.displayer.Format(canonical)}, nil
}

// resolveDir walks one directory argument. Descendants must be regular
// executable files; the naming filter and the exclude globs apply to the
// path as it appears below the argument. An empty yield is not an error.
func (r *Resolver) resolveDir(arg string) ([]Test, error) {
	root, err := canonicalize(arg)
	if err != nil {
		return nil, err
	}

	keep := func(rel string) bool {
		if !r.config.MatchesName(filepath.Base(rel)) {
			return false
		}

		return !r.excluded(rel)
	}

	found, err := lib.FindExecutables(root, keep)
	if err != nil {
		return nil, NewEnvError(errors.Wrapf(err, "couldn't scan %s", arg))
	}

	tests := make([]Test, 0, len(found))
	for _, p := range found {
		tests = append(tests, Test{Path: p, Display: r.displayer.Format(p)})
	}

	return tests, nil
}

func (r *Resolver) excluded(rel string) bool {
	for _, pattern := range r.config.Excludes {
		// patterns were validated up front
		if ok, _ := doublestar.Match(pattern, filepath.ToSlash(rel)); ok {
			return true
		}
	}

	return false
}

// canonicalize turns an existing path argument into a symlink free absolute
// path.
func canonicalize(arg string) (string, error) {
	abs, err := filepath.Abs(arg)
	if err != nil {
		return "", NewEnvError(errors.Wrapf(err, "couldn't make %s absolute", arg))
	}

	canonical, err := filepath.EvalSymlinks(abs)
	if err != nil {
		return "", NewEnvError(errors.Wrapf(err, "couldn't resolve %s", arg))
	}

	return canonical, nil
}
