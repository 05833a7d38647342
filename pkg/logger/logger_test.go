package logger

import (
	"bytes"
	"context"
	"errors"
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

func TestLoggerInit(t *testing.T) {
	Convey("Given an initialized global logger", t, func() {
		So(Init(), ShouldBeNil)

		Convey("Then Get returns a usable logger", func() {
			So(Get(), ShouldNotBeNil)
			So(Sync(), ShouldBeNil)
		})
	})

	Convey("Given a nil writer", t, func() {
		Convey("Then initialization fails", func() {
			So(InitWithWriter(nil), ShouldNotBeNil)
		})
	})
}

func TestLoggerOutput(t *testing.T) {
	Convey("Given a logger writing to a buffer", t, func() {
		var buf bytes.Buffer
		So(InitWithWriter(&buf), ShouldBeNil)
		ctx := context.Background()

		Convey("When logging with fields", func() {
			Get().Info(ctx, "chunk processed", String("dataset", "ggH"), Int("events", 12), Bool("mc", true))

			Convey("Then the record carries message, fields and caller", func() {
				out := buf.String()
				So(out, ShouldContainSubstring, "chunk processed")
				So(out, ShouldContainSubstring, "dataset=ggH")
				So(out, ShouldContainSubstring, "events=12")
				So(out, ShouldContainSubstring, "mc=true")
				So(out, ShouldContainSubstring, "logger_test.go")
			})
		})

		Convey("When logging through a named logger", func() {
			Named("selection").Warn(ctx, "empty chunk", Error(errors.New("boom")))

			Convey("Then attributes are grouped under the name", func() {
				So(buf.String(), ShouldContainSubstring, "selection.error=boom")
			})
		})

		Convey("When logging through a logger with preset fields", func() {
			Get().With(String("chunk", "c-1")).Info(ctx, "done")

			Convey("Then the preset fields are emitted", func() {
				So(buf.String(), ShouldContainSubstring, "chunk=c-1")
			})
		})

		Convey("When the level is raised above debug", func() {
			So(SetLevelString("warn"), ShouldBeNil)
			Get().Debug(ctx, "hidden")
			Get().Info(ctx, "also hidden")

			Convey("Then nothing is written", func() {
				So(buf.String(), ShouldBeEmpty)
			})
		})
	})
}

func TestSetLevelString(t *testing.T) {
	Convey("Given level strings", t, func() {
		So(Init(), ShouldBeNil)

		Convey("Then known levels are accepted regardless of case", func() {
			for _, lvl := range []string{"debug", "INFO", "", "warn", "Warning", " error "} {
				So(SetLevelString(lvl), ShouldBeNil)
			}
		})

		Convey("Then unknown levels are rejected", func() {
			So(SetLevelString("verbose"), ShouldNotBeNil)
		})
	})
}
