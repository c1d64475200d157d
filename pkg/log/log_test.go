package log_test

import (
	"os"
	"strings"

	"testing"

	apexlog "github.com/apex/log"
	. "github.com/smartystreets/goconvey/convey"
	"machinerun.io/testrun/pkg/log"
)

func TestLog(t *testing.T) {
	Convey("With timestamps", t, func() {
		handler := log.NewTextHandler(os.Stderr, true)
		So(handler, ShouldNotBeNil)

		So(func() { log.Debugf("debug msg") }, ShouldNotPanic)
		So(func() { log.Infof("info msg") }, ShouldNotPanic)
		So(func() { log.Errorf("error msg") }, ShouldNotPanic)
	})

	Convey("Without timestamps", t, func() {
		handler := log.NewTextHandler(os.Stderr, false)
		So(handler, ShouldNotBeNil)

		So(func() { log.Debugf("debug msg") }, ShouldNotPanic)
		So(func() { log.Infof("info msg") }, ShouldNotPanic)
		So(func() { log.Errorf("error msg") }, ShouldNotPanic)
	})

	Convey("Handler output shape", t, func() {
		sb := &strings.Builder{}
		log.Setup(log.NewTextHandler(sb, false), apexlog.InfoLevel)

		log.Infof("ran %d tests", 3)
		So(sb.String(), ShouldEqual, "ran 3 tests\n")

		sb.Reset()
		log.Debugf("hidden at info level")
		So(sb.String(), ShouldBeEmpty)
	})
}
