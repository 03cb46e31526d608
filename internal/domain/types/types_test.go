package types_test

import (
	"encoding/json"
	"testing"

	types "github.com/okian/gridcast/internal/domain/types"
	. "github.com/smartystreets/goconvey/convey"
)

func TestEntry(t *testing.T) {
	Convey("Given an Entry struct", t, func() {
		entry := types.Entry{Rank: 1, Competitor: "oscar piastri", Team: "mclaren", Score: 4.2}

		Convey("When encoding it as JSON", func() {
			b, err := json.Marshal(entry)

			Convey("Then it should use the API field names", func() {
				So(err, ShouldBeNil)
				So(string(b), ShouldContainSubstring, `"competitor":"oscar piastri"`)
				So(string(b), ShouldContainSubstring, `"score":4.2`)
			})
		})
	})
}

func TestTeamEntry(t *testing.T) {
	Convey("Given a team without reference-season history", t, func() {
		entry := types.TeamEntry{Team: "racing bulls"}

		Convey("Then it should report no strength", func() {
			So(entry.HasStrength, ShouldBeFalse)
			So(entry.Strength, ShouldEqual, 0)
		})
	})
}
