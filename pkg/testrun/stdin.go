package testrun

import (
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/pkg/errors"
	"golang.org/x/sys/unix"
	"machinerun.io/testrun/pkg/log"
)

// StdinFork is a private on-disk copy of the harness's standard input.
// Every test replays the copy from the start through its own handle, so
// tests never compete for the one shared cursor.
type StdinFork struct {
	path string
}

// stdinForkPath names the capture artifact. The pid and timestamp keep
// concurrent harness invocations from colliding.
func stdinForkPath() string {
	return filepath.Join(os.TempDir(),
		fmt.Sprintf("test-run__in_%d_%d", os.Getpid(), time.Now().Unix()))
}

// CaptureStdin drains r into a fresh capture artifact, built O_EXCL and
// readable only by the current user.
func CaptureStdin(r io.Reader) (*StdinFork, error) {
	path := stdinForkPath()

	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0600)
	if err != nil {
		return nil, NewEnvError(errors.Wrapf(err, "couldn't create stdin copy %s", path))
	}

	n, err := io.Copy(f, r)
	if err != nil {
		f.Close()
		os.Remove(path)
		return nil, NewEnvError(errors.Wrapf(err, "couldn't capture stdin to %s", path))
	}

	if err := f.Close(); err != nil {
		os.Remove(path)
		return nil, NewEnvError(errors.Wrapf(err, "couldn't write stdin copy %s", path))
	}

	log.Debugf("captured %s of stdin to %s", humanize.Bytes(uint64(n)), path)
	return &StdinFork{path: path}, nil
}

// Path returns the artifact location.
func (s *StdinFork) Path() string {
	return s.path
}

// Open returns an independent read handle positioned at the start of the
// copy.
func (s *StdinFork) Open() (*os.File, error) {
	f, err := os.Open(s.path)
	return f, errors.Wrapf(err, "couldn't open stdin copy %s", s.path)
}

// Remove deletes the artifact. Removing twice is fine.
func (s *StdinFork) Remove() error {
	err := os.Remove(s.path)
	if err != nil && !os.IsNotExist(err) {
		return errors.Wrapf(err, "couldn't remove stdin copy %s", s.path)
	}

	return nil
}

// RemoveOnSignal deletes the artifact and exits when the harness catches
// SIGINT or SIGTERM, so an interrupted run leaves nothing behind in the
// temp dir.
func (s *StdinFork) RemoveOnSignal() {
	ch := make(chan os.Signal, 1)
	go func() {
		sig := <-ch
		fmt.Fprintf(os.Stderr, "\ntest-run: caught %v signal; exiting\n", sig)
		s.Remove()
		os.Exit(ExitEnvironment)
	}()
	signal.Notify(ch, unix.SIGINT, unix.SIGTERM)
}
