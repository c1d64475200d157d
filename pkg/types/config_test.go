package types

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"gopkg.in/yaml.v2"
)

func TestParseParams(t *testing.T) {
	assert := assert.New(t)
	tables := []struct {
		desc     string
		raw      string
		expected Params
		errstr   string
	}{
		{desc: "empty string means no params",
			raw:      "",
			expected: nil},
		{desc: "whitespace splits",
			raw:      "-c=3 -f /my/file",
			expected: Params{"-c=3", "-f", "/my/file"}},
		{desc: "single quotes group",
			raw:      "a 'b c'",
			expected: Params{"a", "b c"}},
		{desc: "double quotes group",
			raw:      `--msg "hello world" -v`,
			expected: Params{"--msg", "hello world", "-v"}},
		{desc: "runs of whitespace collapse",
			raw:      "one    two\tthree",
			expected: Params{"one", "two", "three"}},
		{desc: "unterminated quote",
			raw:    "'oops",
			errstr: "couldn't split params"},
	}

	for _, t := range tables {
		found, err := ParseParams(t.raw)
		if t.errstr == "" {
			assert.NoError(err, t.desc)
			assert.Equal(t.expected, found, t.desc)
		} else {
			assert.ErrorContains(err, t.errstr, t.desc)
		}
	}
}

func TestUnmarshalParams(t *testing.T) {
	assert := assert.New(t)
	tables := []struct {
		desc     string
		yblob    string
		expected Params
		errstr   string
	}{
		{desc: "params can be a singular string",
			yblob:    `params: "-v --fast"`,
			expected: Params{"-v", "--fast"}},
		{desc: "quoting inside the string survives",
			yblob:    `params: "-m 'two words'"`,
			expected: Params{"-m", "two words"}},
		{desc: "params can be a list",
			yblob:    "params:\n  - -v\n  - --fast\n",
			expected: Params{"-v", "--fast"}},
		{desc: "list elements must be strings",
			yblob:  "params:\n  - -v\n  - 3\n",
			errstr: "unknown params element type"},
		{desc: "params cannot be a dict",
			yblob:  "params:\n  k: v\n",
			errstr: "unknown params type"},
	}

	for _, t := range tables {
		found := struct {
			Params Params `yaml:"params"`
		}{}
		err := yaml.Unmarshal([]byte(t.yblob), &found)
		if t.errstr == "" {
			assert.NoError(err, t.desc)
			assert.Equal(t.expected, found.Params, t.desc)
		} else {
			assert.ErrorContains(err, t.errstr, t.desc)
		}
	}
}

func TestParseSilenceMode(t *testing.T) {
	assert := assert.New(t)

	mode, err := ParseSilenceMode("")
	assert.NoError(err)
	assert.Equal(SilenceNone, mode)
	assert.False(mode.Stdout())
	assert.False(mode.Stderr())

	mode, err = ParseSilenceMode("1")
	assert.NoError(err)
	assert.Equal(SilenceStdout, mode)
	assert.True(mode.Stdout())
	assert.False(mode.Stderr())

	mode, err = ParseSilenceMode("2")
	assert.NoError(err)
	assert.Equal(SilenceStderr, mode)
	assert.False(mode.Stdout())
	assert.True(mode.Stderr())

	mode, err = ParseSilenceMode("b")
	assert.NoError(err)
	assert.Equal(SilenceBoth, mode)
	assert.True(mode.Stdout())
	assert.True(mode.Stderr())

	_, err = ParseSilenceMode("both")
	assert.ErrorContains(err, "bad silence mode")
}

func TestQuietSilencing(t *testing.T) {
	assert := assert.New(t)

	c := RunConfig{}
	assert.False(c.HarnessQuiet())
	assert.False(c.TestStdoutSilenced())
	assert.False(c.TestStderrSilenced())

	c.Quiet = 1
	assert.True(c.HarnessQuiet())
	assert.False(c.TestStdoutSilenced())
	assert.False(c.TestStderrSilenced())

	c.Quiet = 2
	assert.True(c.TestStdoutSilenced())
	assert.True(c.TestStderrSilenced())

	c = RunConfig{SilenceTests: SilenceStdout}
	assert.False(c.HarnessQuiet())
	assert.True(c.TestStdoutSilenced())
	assert.False(c.TestStderrSilenced())
}

func TestMatchesName(t *testing.T) {
	assert := assert.New(t)

	c := RunConfig{Prefix: DefaultPrefix}
	assert.True(c.MatchesName("test-foo"))
	assert.False(c.MatchesName("foo"))
	assert.False(c.MatchesName("tes-foo"))

	c.Prefix = "check_"
	assert.True(c.MatchesName("check_bar"))
	assert.False(c.MatchesName("test-foo"))

	c.AnyName = true
	assert.True(c.MatchesName("anything-at-all"))
}

func TestLoadDefaults(t *testing.T) {
	assert := assert.New(t)

	tf, err := os.CreateTemp("", "testrun_conf_")
	assert.NoError(err)
	defer tf.Close()
	defer os.Remove(tf.Name())

	content := `prefix: check_
params: "-v --level 2"
exclude:
  - "**/helpers/**"
silence_tests: "2"
`
	_, err = tf.WriteString(content)
	assert.NoError(err)

	c := RunConfig{}
	assert.NoError(c.LoadDefaults(tf.Name()))
	assert.Equal("check_", c.Prefix)
	assert.Equal(Params{"-v", "--level", "2"}, c.Params)
	assert.Equal([]string{"**/helpers/**"}, c.Excludes)
	assert.Equal(SilenceStderr, c.SilenceTests)

	// a missing defaults file leaves the config alone
	missing := RunConfig{Prefix: DefaultPrefix}
	assert.NoError(missing.LoadDefaults("/does/not/exist/conf.yaml"))
	assert.Equal(DefaultPrefix, missing.Prefix)

	_, err = tf.WriteString("\n\t: bad yaml\n")
	assert.NoError(err)
	assert.ErrorContains(c.LoadDefaults(tf.Name()), "couldn't parse config file")
}
