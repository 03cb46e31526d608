package api

import (
	"encoding/json"
	"math"
	"net/http"
	"net/http/httptest"
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

func TestWriteJSON(t *testing.T) {
	Convey("Given a response recorder", t, func() {
		rec := httptest.NewRecorder()

		Convey("An encodable value keeps the requested status", func() {
			writeJSON(rec, http.StatusCreated, map[string]float64{"final": 1.5})
			So(rec.Code, ShouldEqual, http.StatusCreated)
			So(rec.Header().Get("Content-Type"), ShouldStartWith, "application/json")
			var got map[string]float64
			So(json.Unmarshal(rec.Body.Bytes(), &got), ShouldBeNil)
			So(got["final"], ShouldEqual, 1.5)
		})

		Convey("A value that cannot be encoded becomes a 500 with a JSON error body", func() {
			writeJSON(rec, http.StatusOK, map[string]float64{"final": math.NaN()})
			So(rec.Code, ShouldEqual, http.StatusInternalServerError)
			var got errorResponse
			So(json.Unmarshal(rec.Body.Bytes(), &got), ShouldBeNil)
			So(got.Code, ShouldEqual, "internal")
			So(got.Message, ShouldEqual, "failed to encode response")
		})
	})
}
