package types_test

import (
	"encoding/json"
	"testing"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/okian/h4l/internal/domain/types"
)

func TestCutflowEntry(t *testing.T) {
	Convey("Given a data cutflow entry", t, func() {
		entry := types.CutflowEntry{Step: "json", Events: 90, Efficiency: 0.9}

		Convey("When encoding it", func() {
			b, err := json.Marshal(entry)

			Convey("Then the weight sum is omitted", func() {
				So(err, ShouldBeNil)
				So(string(b), ShouldEqual, `{"step":"json","events":90,"efficiency":0.9}`)
			})
		})
	})
}

func TestEfficiency(t *testing.T) {
	Convey("Given pass and total counts", t, func() {
		So(types.Efficiency(1, 4), ShouldEqual, 0.25)
		So(types.Efficiency(0, 0), ShouldEqual, 0)
	})
}
