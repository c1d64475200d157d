package testrun

import (
	"fmt"
	"io"
	"time"

	"github.com/apparentlymart/go-shquot/shquot"
	"github.com/fatih/color"
	"github.com/jedib0t/go-pretty/v6/table"
	"machinerun.io/testrun/pkg/log"
	"machinerun.io/testrun/pkg/types"
)

// Reporter writes the user facing feedback of a run: one status line per
// outcome, dry-run command lines, and the end of run summary.
type Reporter struct {
	out   io.Writer
	quiet bool
	pass  func(a ...interface{}) string
	fail  func(a ...interface{}) string
}

// NewReporter builds a reporter writing to out. With quiet set it emits
// nothing except dry-run lines, which are the product of a dry run rather
// than commentary on one.
func NewReporter(out io.Writer, quiet bool) *Reporter {
	return &Reporter{
		out:   out,
		quiet: quiet,
		pass:  color.New(color.FgGreen).SprintFunc(),
		fail:  color.New(color.FgRed).SprintFunc(),
	}
}

// Status prints the verdict line for one finished test.
func (r *Reporter) Status(o Outcome) {
	if r.quiet {
		return
	}

	switch {
	case o.Passed():
		fmt.Fprintf(r.out, "%s (0) %s\n", r.pass("✓ pass"), o.Test.Display)
	case o.StartErr != nil:
		fmt.Fprintf(r.out, "%s (%v) %s\n", r.fail("✗ fail"), o.StartErr, o.Test.Display)
	default:
		fmt.Fprintf(r.out, "%s (%d) %s\n", r.fail("✗ fail"), o.Code, o.Test.Display)
	}
}

// DryRun prints the command line each test would have run as, one per line:
// the display path, then the parameter vector quoted so the output can be
// pasted back into a shell.
func (r *Reporter) DryRun(tests []Test, params types.Params) {
	for _, t := range tests {
		if len(params) == 0 {
			fmt.Fprintln(r.out, t.Display)
			continue
		}

		fmt.Fprintf(r.out, "%s %s\n", t.Display, shquot.POSIXShell(params))
	}
}

// Summary logs the run totals and, when tests failed, renders a table of
// the failures.
func (r *Reporter) Summary(outcomes []Outcome, elapsed time.Duration) {
	failed := []Outcome{}
	for _, o := range outcomes {
		if !o.Passed() {
			failed = append(failed, o)
		}
	}

	log.Infof("ran %d tests in %s: %d passed, %d failed",
		len(outcomes), elapsed.Round(time.Millisecond), len(outcomes)-len(failed), len(failed))

	if len(failed) == 0 || r.quiet {
		return
	}

	tw := table.NewWriter()
	tw.SetOutputMirror(r.out)
	tw.SetStyle(table.StyleLight)
	tw.AppendHeader(table.Row{"failed test", "status"})

	for _, o := range failed {
		tw.AppendRow(table.Row{o.Test.Display, statusString(o)})
	}

	tw.Render()
}

func statusString(o Outcome) string {
	if o.StartErr != nil {
		return fmt.Sprintf("did not run: %v", o.StartErr)
	}

	return fmt.Sprintf("exit %d", o.Code)
}
