package types

import (
	"github.com/pkg/errors"
)

const (
	// MissingPath covers path arguments that do not exist.
	MissingPath Category = "missing_path"
	// NotExecutable covers path arguments that exist but lack execute
	// permission for the current user.
	NotExecutable Category = "not_executable"
	// NoTestsFound covers runs whose arguments resolve to zero tests.
	NoTestsFound Category = "no_tests_found"
	// TestFailed covers tests that exit nonzero.
	TestFailed Category = "test_failed"
)

// Category names one kind of finding the validation policy covers.
type Category string

// ParseCategory maps a user supplied category name to a Category.
func ParseCategory(s string) (Category, error) {
	switch Category(s) {
	case MissingPath, NotExecutable, NoTestsFound, TestFailed:
		return Category(s), nil
	}

	return "", errors.Errorf("unknown validation category %q (expected one of "+
		"missing_path, not_executable, no_tests_found, test_failed)", s)
}

// Directive is one halt-on/ignore occurrence from the command line, in the
// order it appeared there.
type Directive struct {
	Category Category
	Halt     bool
}

// Policy records, per finding category, whether the run halts or the finding
// is skipped over. It is built once and passed down by value.
type Policy struct {
	HaltMissingPath   bool
	HaltNotExecutable bool
	HaltNoTestsFound  bool
	HaltTestFailed    bool
}

// DefaultPolicy halts on missing paths and on empty resolution; it skips
// non-executable arguments and keeps running past failed tests.
func DefaultPolicy() Policy {
	return Policy{
		HaltMissingPath:  true,
		HaltNoTestsFound: true,
	}
}

// Apply folds the directives into p in order. Later directives overwrite
// earlier ones for the same category.
func (p Policy) Apply(directives []Directive) Policy {
	for _, d := range directives {
		switch d.Category {
		case MissingPath:
			p.HaltMissingPath = d.Halt
		case NotExecutable:
			p.HaltNotExecutable = d.Halt
		case NoTestsFound:
			p.HaltNoTestsFound = d.Halt
		case TestFailed:
			p.HaltTestFailed = d.Halt
		}
	}

	return p
}

// Halts reports whether a finding of category c stops the run.
func (p Policy) Halts(c Category) bool {
	switch c {
	case MissingPath:
		return p.HaltMissingPath
	case NotExecutable:
		return p.HaltNotExecutable
	case NoTestsFound:
		return p.HaltNoTestsFound
	case TestFailed:
		return p.HaltTestFailed
	}

	return false
}
