package main

import (
	"fmt"
	"os"
	"os/user"
	"path"
	"strings"

	"github.com/apex/log"
	"github.com/fatih/color"
	"github.com/pkg/errors"
	cli "github.com/urfave/cli/v2"
	"golang.org/x/term"
	testrunlog "machinerun.io/testrun/pkg/log"
	"machinerun.io/testrun/pkg/testrun"
	"machinerun.io/testrun/pkg/types"
)

var (
	config  types.RunConfig
	version = ""
)

func shouldColorize(config types.RunConfig) bool {
	/* if the user asked for no color anywhere, follow that */
	if config.NoColor || os.Getenv("NO_COLOR") != "" {
		return false
	}

	/* otherwise, colorize when we're attached to a terminal */
	return term.IsTerminal(int(os.Stdout.Fd()))
}

// policyDirectives collects --fail-exit, --halt-on, and --ignore occurrences
// from args in command line order. urfave/cli gathers the two list flags into
// separate slices, which loses the relative order that last-write-wins
// overriding depends on.
func policyDirectives(args []string) ([]types.Directive, error) {
	directives := []types.Directive{}
	for i := 0; i < len(args); i++ {
		arg := args[i]
		if arg == "--" {
			break
		}

		var halt bool
		var value string
		switch {
		case arg == "--fail-exit":
			directives = append(directives, types.Directive{Category: types.TestFailed, Halt: true})
			continue
		case arg == "--halt-on" || arg == "--ignore":
			halt = arg == "--halt-on"
			if i+1 >= len(args) {
				// the flag parser rejects the missing value itself
				return directives, nil
			}
			i++
			value = args[i]
		case strings.HasPrefix(arg, "--halt-on="):
			halt = true
			value = strings.TrimPrefix(arg, "--halt-on=")
		case strings.HasPrefix(arg, "--ignore="):
			halt = false
			value = strings.TrimPrefix(arg, "--ignore=")
		default:
			continue
		}

		category, err := types.ParseCategory(value)
		if err != nil {
			return nil, testrun.NewUsageError(err)
		}

		directives = append(directives, types.Directive{Category: category, Halt: halt})
	}

	return directives, nil
}

func doRun(ctx *cli.Context) error {
	if ctx.NArg() == 0 {
		return testrun.NewUsageError(errors.Errorf("at least one test path is required"))
	}

	directives, err := policyDirectives(os.Args[1:])
	if err != nil {
		return err
	}
	policy := types.DefaultPolicy().Apply(directives)

	color.NoColor = !shouldColorize(config)

	reporter := testrun.NewReporter(os.Stdout, config.HarnessQuiet())
	runner, err := testrun.NewRunner(config, policy, reporter, os.Stdin)
	if err != nil {
		return err
	}

	return runner.Run(ctx.Args().Slice())
}

func main() {
	user, err := user.Current()
	if err != nil {
		fmt.Fprintf(os.Stderr, "couldn't get current user: %s", err)
		os.Exit(testrun.ExitEnvironment)
	}

	app := cli.NewApp()
	app.Name = "test-run"
	app.Usage = "test-run runs suites of executable tests"
	app.ArgsUsage = "<path>..."
	app.Version = version
	app.Action = doRun
	// lets -qq count as two quiets
	app.UseShortOptionHandling = true

	configDir := os.Getenv("XDG_CONFIG_HOME")
	if configDir == "" {
		configDir = path.Join(user.HomeDir, ".config", app.Name)
	}

	app.Flags = []cli.Flag{
		&cli.StringFlag{
			Name:  "prefix",
			Usage: "filename prefix that marks an executable as a test",
			Value: types.DefaultPrefix,
		},
		&cli.BoolFlag{
			Name:  "any-name",
			Usage: "treat every executable found in a directory as a test, whatever its name",
		},
		&cli.StringSliceFlag{
			Name:  "exclude",
			Usage: "glob of directory-relative paths to skip during expansion; can be supplied multiple times",
		},
		&cli.StringFlag{
			Name:    "params",
			Aliases: []string{"p"},
			Usage:   "parameters to pass to every test, split like a shell command line",
		},
		&cli.BoolFlag{
			Name:  "fork-stdin",
			Usage: "copy stdin once and replay the copy to every test",
		},
		&cli.StringFlag{
			Name:  "app-root-dir",
			Usage: "directory to run every test from",
		},
		&cli.BoolFlag{
			Name:  "fail-exit",
			Usage: "halt the run after the first failing test",
		},
		&cli.StringSliceFlag{
			Name:  "halt-on",
			Usage: "halt the run when this validation category fails (missing_path, not_executable, no_tests_found, test_failed); can be supplied multiple times",
		},
		&cli.StringSliceFlag{
			Name:  "ignore",
			Usage: "skip over failures of this validation category instead of halting; can be supplied multiple times",
		},
		&cli.BoolFlag{
			Name:    "dry-run",
			Aliases: []string{"n"},
			Usage:   "print the commands that would run without running them",
		},
		&cli.BoolFlag{
			Name:  "localize-path-output",
			Usage: "print test paths relative to the app root dir",
		},
		&cli.BoolFlag{
			Name:  "absolute-path-output",
			Usage: "print absolute test paths",
		},
		&cli.StringFlag{
			Name:  "silence-tests",
			Usage: "discard test stdout (1), stderr (2), or both (b)",
		},
		&cli.StringFlag{
			Name:  "config",
			Usage: "test-run config file with defaults",
			Value: path.Join(configDir, "conf.yaml"),
		},
		&cli.BoolFlag{
			Name:  "debug",
			Usage: "enable test-run debug mode",
		},
		&cli.BoolFlag{
			Name:    "quiet",
			Aliases: []string{"q"},
			Usage:   "print less; once silences the harness, twice silences the tests too",
		},
		&cli.StringFlag{
			Name:  "log-file",
			Usage: "log to a file instead of stderr",
		},
		&cli.BoolFlag{
			Name:  "no-color",
			Usage: "disable colorized pass/fail markers",
		},
	}

	var logFile *os.File
	// close the log file if we happen to open it
	defer func() {
		if logFile != nil {
			logFile.Close()
		}
	}()
	debug := false
	app.Before = func(ctx *cli.Context) error {
		logLevel := log.InfoLevel
		config.Quiet = ctx.Count("quiet")
		if ctx.Bool("debug") {
			debug = true
			config.Debug = true
			logLevel = log.DebugLevel
			if config.Quiet > 0 {
				return errors.Errorf("debug and quiet don't make sense together")
			}
		} else if config.Quiet > 0 {
			logLevel = log.FatalLevel
		}

		err := config.LoadDefaults(ctx.String("config"))
		if err != nil {
			return err
		}

		if config.Prefix == "" || ctx.IsSet("prefix") {
			config.Prefix = ctx.String("prefix")
		}
		if ctx.Bool("any-name") {
			config.AnyName = true
		}
		if len(config.Excludes) == 0 || ctx.IsSet("exclude") {
			config.Excludes = ctx.StringSlice("exclude")
		}
		if len(config.Params) == 0 || ctx.IsSet("params") {
			config.Params, err = types.ParseParams(ctx.String("params"))
			if err != nil {
				return err
			}
		}
		if config.AppRootDir == "" || ctx.IsSet("app-root-dir") {
			config.AppRootDir = ctx.String("app-root-dir")
		}
		if config.SilenceTests == types.SilenceNone || ctx.IsSet("silence-tests") {
			config.SilenceTests, err = types.ParseSilenceMode(ctx.String("silence-tests"))
			if err != nil {
				return err
			}
		}
		if ctx.Bool("no-color") {
			config.NoColor = true
		}

		config.ForkStdin = ctx.Bool("fork-stdin")
		config.DryRun = ctx.Bool("dry-run")

		if ctx.Bool("localize-path-output") && ctx.Bool("absolute-path-output") {
			return errors.Errorf("localize-path-output and absolute-path-output don't make sense together")
		}
		if ctx.Bool("localize-path-output") {
			config.PathOutput = types.PathLocalized
		}
		if ctx.Bool("absolute-path-output") {
			config.PathOutput = types.PathAbsolute
		}

		var handler log.Handler
		handler = testrunlog.NewTextHandler(os.Stderr, false)
		if ctx.String("log-file") != "" {
			logFile, err = os.Create(ctx.String("log-file"))
			if err != nil {
				return errors.Wrapf(err, "failed to access %v", ctx.String("log-file"))
			}
			handler = testrunlog.NewTextHandler(logFile, true)
		}

		testrunlog.Setup(handler, logLevel)
		testrunlog.Debugf("test-run version %s", version)
		return nil
	}

	if err := app.Run(os.Args); err != nil {
		// test failures were already reported in full by the runner
		if !testrun.IsTestsFailedError(err) {
			format := "test-run: error: %v\n"
			if debug {
				format = "test-run: error: %+v\n"
			}

			fmt.Fprintf(os.Stderr, format, err)
		}

		os.Exit(testrun.ExitCode(err))
	}
}
