package testrun

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/udhos/equalfile"
)

func TestCaptureStdin(t *testing.T) {
	assert := assert.New(t)

	// NUL bytes must survive the round trip
	payload := []byte("alpha\x00beta\nmiddle\x00\x00end")

	fork, err := CaptureStdin(bytes.NewReader(payload))
	assert.NoError(err)
	defer fork.Remove()

	base := filepath.Base(fork.Path())
	assert.True(strings.HasPrefix(base, fmt.Sprintf("test-run__in_%d_", os.Getpid())), base)

	fi, err := os.Stat(fork.Path())
	assert.NoError(err)
	assert.Equal(os.FileMode(0600), fi.Mode().Perm())

	in1, err := fork.Open()
	assert.NoError(err)
	defer in1.Close()

	got, err := io.ReadAll(in1)
	assert.NoError(err)
	assert.Equal(payload, got)

	// a second handle rereads from the start, not from where the first
	// one stopped
	in2, err := fork.Open()
	assert.NoError(err)
	defer in2.Close()

	got, err = io.ReadAll(in2)
	assert.NoError(err)
	assert.Equal(payload, got)
}

func TestStdinForkReplaysAreIdentical(t *testing.T) {
	assert := assert.New(t)

	fork, err := CaptureStdin(strings.NewReader("replayed input\x00with a NUL"))
	assert.NoError(err)
	defer fork.Remove()

	in1, err := fork.Open()
	assert.NoError(err)
	defer in1.Close()

	in2, err := fork.Open()
	assert.NoError(err)
	defer in2.Close()

	eq, err := equalfile.New(nil, equalfile.Options{}).CompareReader(in1, in2)
	assert.NoError(err)
	assert.True(eq)
}

func TestStdinForkRemove(t *testing.T) {
	assert := assert.New(t)

	fork, err := CaptureStdin(strings.NewReader("x"))
	assert.NoError(err)

	assert.NoError(fork.Remove())

	_, err = os.Stat(fork.Path())
	assert.True(os.IsNotExist(err))

	// removing twice is fine
	assert.NoError(fork.Remove())

	_, err = fork.Open()
	assert.ErrorContains(err, "couldn't open stdin copy")
}

func TestCaptureStdinUnusableTempDir(t *testing.T) {
	assert := assert.New(t)

	t.Setenv("TMPDIR", "/nonexistent/testrun-tmp")

	_, err := CaptureStdin(strings.NewReader("x"))
	assert.ErrorContains(err, "couldn't create stdin copy")
	assert.True(IsEnvError(err))
	assert.Equal(ExitEnvironment, ExitCode(err))
}
