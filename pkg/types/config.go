package types

import (
	"os"
	"strings"

	"github.com/anmitsu/go-shlex"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v2"
)

// DefaultPrefix is the naming convention marking a file as a test.
const DefaultPrefix = "test-"

// Params is the argument vector handed to every test. In yaml it can be
// given either as a list of strings, or as a single string, which is split
// with shlex.Split() into a list.
type Params []string

// ParseParams splits a raw parameter string into the shared argument vector.
// Splitting follows POSIX shell rules, so quoted segments stay whole.
func ParseParams(s string) (Params, error) {
	if s == "" {
		return nil, nil
	}

	tokens, err := shlex.Split(s, true)
	if err != nil {
		return nil, errors.Wrapf(err, "couldn't split params %q", s)
	}

	return Params(tokens), nil
}

func (p *Params) UnmarshalYAML(unmarshal func(interface{}) error) error {
	var data interface{}
	err := unmarshal(&data)
	if err != nil {
		return errors.WithStack(err)
	}

	if line, ok := data.(string); ok {
		result, err := ParseParams(line)
		if err != nil {
			return err
		}

		*p = result
		return nil
	}

	ifs, ok := data.([]interface{})
	if !ok {
		return errors.Errorf("unknown params type: %T", data)
	}

	tokens := []string{}
	for _, i := range ifs {
		s, ok := i.(string)
		if !ok {
			return errors.Errorf("unknown params element type: %T", i)
		}

		tokens = append(tokens, s)
	}

	*p = Params(tokens)
	return nil
}

// SilenceMode says which of a test's output streams are discarded.
type SilenceMode int

const (
	SilenceNone SilenceMode = iota
	SilenceStdout
	SilenceStderr
	SilenceBoth
)

// ParseSilenceMode maps the user facing tokens ("1", "2", "b") to a
// SilenceMode. The empty string silences nothing.
func ParseSilenceMode(s string) (SilenceMode, error) {
	switch s {
	case "":
		return SilenceNone, nil
	case "1":
		return SilenceStdout, nil
	case "2":
		return SilenceStderr, nil
	case "b":
		return SilenceBoth, nil
	}

	return SilenceNone, errors.Errorf("bad silence mode %q (expected 1, 2, or b)", s)
}

func (m SilenceMode) String() string {
	switch m {
	case SilenceStdout:
		return "1"
	case SilenceStderr:
		return "2"
	case SilenceBoth:
		return "b"
	}

	return ""
}

// Stdout reports whether the mode discards test stdout.
func (m SilenceMode) Stdout() bool {
	return m == SilenceStdout || m == SilenceBoth
}

// Stderr reports whether the mode discards test stderr.
func (m SilenceMode) Stderr() bool {
	return m == SilenceStderr || m == SilenceBoth
}

func (m *SilenceMode) UnmarshalYAML(unmarshal func(interface{}) error) error {
	var s string
	if err := unmarshal(&s); err != nil {
		return errors.WithStack(err)
	}

	mode, err := ParseSilenceMode(s)
	if err != nil {
		return err
	}

	*m = mode
	return nil
}

// PathMode selects how test paths are displayed.
type PathMode int

const (
	// PathRelative prints paths under the invocation directory as
	// ./suffix and everything else absolute.
	PathRelative PathMode = iota
	// PathLocalized prints paths relative to the tests root.
	PathLocalized
	// PathAbsolute prints absolute paths.
	PathAbsolute
)

// RunConfig is a struct that contains global (or widely used) test-run
// options. The yaml tagged subset can be preset from the defaults file; the
// rest is flag only.
type RunConfig struct {
	Prefix       string      `yaml:"prefix"`
	AnyName      bool        `yaml:"any_name"`
	Params       Params      `yaml:"params"`
	Excludes     []string    `yaml:"exclude"`
	AppRootDir   string      `yaml:"app_root_dir"`
	SilenceTests SilenceMode `yaml:"silence_tests"`
	NoColor      bool        `yaml:"no_color"`

	ForkStdin  bool     `yaml:"-"`
	DryRun     bool     `yaml:"-"`
	Quiet      int      `yaml:"-"`
	Debug      bool     `yaml:"-"`
	PathOutput PathMode `yaml:"-"`
}

// LoadDefaults reads the defaults file at path into c. A missing file leaves
// c untouched.
func (c *RunConfig) LoadDefaults(path string) error {
	content, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}

		return errors.Wrapf(err, "couldn't read config file %s", path)
	}

	return errors.Wrapf(yaml.Unmarshal(content, c), "couldn't parse config file %s", path)
}

// MatchesName reports whether a file basename passes the naming filter.
func (c *RunConfig) MatchesName(basename string) bool {
	if c.AnyName {
		return true
	}

	return strings.HasPrefix(basename, c.Prefix)
}

// TestStdoutSilenced reports whether test stdout goes to the null device.
func (c *RunConfig) TestStdoutSilenced() bool {
	return c.Quiet > 1 || c.SilenceTests.Stdout()
}

// TestStderrSilenced reports whether test stderr goes to the null device.
func (c *RunConfig) TestStderrSilenced() bool {
	return c.Quiet > 1 || c.SilenceTests.Stderr()
}

// HarnessQuiet reports whether non-error harness output (status lines,
// summary) is suppressed.
func (c *RunConfig) HarnessQuiet() bool {
	return c.Quiet > 0
}
