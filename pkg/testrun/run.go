package testrun

import (
	"io"
	"os"
	"os/exec"
	"syscall"
	"time"

	"github.com/pkg/errors"
	"machinerun.io/testrun/pkg/types"
)

// Outcome is the result of one test execution. StartErr is set when the
// test could not be run at all; Code is meaningful only when it is nil.
type Outcome struct {
	Test     Test
	Code     int
	StartErr error
}

// Passed reports whether the test ran and exited zero.
func (o Outcome) Passed() bool {
	return o.StartErr == nil && o.Code == 0
}

// Runner resolves path arguments and executes the resolved tests one at a
// time, in order.
type Runner struct {
	config   types.RunConfig
	policy   types.Policy
	reporter *Reporter
	resolver *Resolver
	stdin    io.Reader
	fork     *StdinFork
}

// NewRunner wires the engine for one run. stdin is the harness's standard
// input: captured up front when fork-stdin is on, otherwise handed to every
// test as is.
func NewRunner(config types.RunConfig, policy types.Policy, reporter *Reporter, stdin io.Reader) (*Runner, error) {
	wd, err := os.Getwd()
	if err != nil {
		return nil, NewEnvError(errors.Wrapf(err, "couldn't get working directory"))
	}

	invocationDir, err := canonicalize(wd)
	if err != nil {
		return nil, err
	}

	root := invocationDir
	if config.AppRootDir != "" {
		fi, err := os.Stat(config.AppRootDir)
		if err != nil || !fi.IsDir() {
			return nil, NewUsageError(errors.Errorf("app root dir %s is not a directory", config.AppRootDir))
		}

		canonical, err := canonicalize(config.AppRootDir)
		if err != nil {
			return nil, err
		}

		root = canonical
		config.AppRootDir = canonical
	}

	displayer := NewDisplayer(config.PathOutput, invocationDir, root)

	resolver, err := NewResolver(config, policy, displayer)
	if err != nil {
		return nil, err
	}

	return &Runner{
		config:   config,
		policy:   policy,
		reporter: reporter,
		resolver: resolver,
		stdin:    stdin,
	}, nil
}

// Run expands paths into tests and executes them sequentially. It returns
// nil when everything passed, a TestsFailedError when tests ran and some
// failed, and a validation or environment error when the run never got that
// far.
func (r *Runner) Run(paths []string) error {
	tests, err := r.resolver.Resolve(paths)
	if err != nil {
		return err
	}

	if r.config.DryRun {
		r.reporter.DryRun(tests, r.config.Params)
		return nil
	}

	if r.config.ForkStdin {
		fork, err := CaptureStdin(r.stdin)
		if err != nil {
			return err
		}
		defer fork.Remove()
		fork.RemoveOnSignal()
		r.fork = fork
	}

	start := time.Now()
	outcomes := []Outcome{}
	failed := 0

	for _, t := range tests {
		o := r.runOne(t)
		outcomes = append(outcomes, o)
		r.reporter.Status(o)

		if o.Passed() {
			continue
		}

		failed++
		if r.policy.Halts(types.TestFailed) {
			break
		}
	}

	r.reporter.Summary(outcomes, time.Since(start))

	if failed > 0 {
		return &TestsFailedError{Failed: failed}
	}

	return nil
}

// runOne executes a single test with the shared parameter vector. Output
// streams are inherited unless silenced; exec treats a nil stream as the
// null device.
func (r *Runner) runOne(t Test) Outcome {
	cmd := exec.Command(t.Path, r.config.Params...)
	cmd.Dir = r.config.AppRootDir

	if r.fork != nil {
		in, err := r.fork.Open()
		if err != nil {
			return Outcome{Test: t, StartErr: err}
		}
		defer in.Close()

		cmd.Stdin = in
	} else {
		cmd.Stdin = r.stdin
	}

	if !r.config.TestStdoutSilenced() {
		cmd.Stdout = os.Stdout
	}

	if !r.config.TestStderrSilenced() {
		cmd.Stderr = os.Stderr
	}

	err := cmd.Run()
	if err == nil {
		return Outcome{Test: t, Code: 0}
	}

	code, ok := exitStatus(err)
	if !ok {
		return Outcome{Test: t, StartErr: err}
	}

	return Outcome{Test: t, Code: code}
}

// exitStatus digs the exit code out of an exec error. A child killed by a
// signal reports 128 plus the signal number, the way shells do. ok is false
// when the child never ran.
func exitStatus(err error) (int, bool) {
	exitErr, ok := err.(*exec.ExitError)
	if !ok {
		return 0, false
	}

	status, ok := exitErr.Sys().(syscall.WaitStatus)
	if !ok {
		return 0, false
	}

	if status.Signaled() {
		return 128 + int(status.Signal()), true
	}

	return status.ExitStatus(), true
}
