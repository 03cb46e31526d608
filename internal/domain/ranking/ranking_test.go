package ranking_test

import (
	"testing"

	"github.com/okian/gridcast/internal/domain/model"
	ranking "github.com/okian/gridcast/internal/domain/ranking"
	. "github.com/smartystreets/goconvey/convey"
)

const tolerance = 1e-9

func fixture() ([]string, map[string]model.CompetitorMetrics, model.TeamStrength, model.Assignment) {
	roster := []string{"charlie", "bravo", "alpha"}
	metrics := map[string]model.CompetitorMetrics{
		"alpha":   {Competitor: "alpha", AvgScore: 5, Trend: 1, Bonus: 6, QualifyingScore: 1},
		"bravo":   {Competitor: "bravo", AvgScore: 6, Trend: 0, Bonus: 4, QualifyingScore: 0.5},
		"charlie": {Competitor: "charlie", AvgScore: 2, Trend: -1, Bonus: 8, QualifyingScore: 0},
	}
	teams := model.TeamStrength{"ferrari": 8, "mclaren": 9, "haas": 4}
	assignment := model.Assignment{"alpha": "ferrari", "bravo": "mclaren", "charlie": "haas"}
	return roster, metrics, teams, assignment
}

func TestWeights(t *testing.T) {
	Convey("Given the default weight table", t, func() {
		w := ranking.DefaultWeights

		Convey("Then it should sum to one and validate", func() {
			So(w.Sum(), ShouldAlmostEqual, 1.0, tolerance)
			So(w.Validate(), ShouldBeNil)
			So(w.QualifyingScore, ShouldEqual, 0.30)
			So(w.TeamScore, ShouldEqual, 0.15)
		})
	})

	Convey("Given weights that do not sum to one", t, func() {
		w := ranking.DefaultWeights
		w.Trend = 0.5

		Convey("Then validation fails", func() {
			So(w.Validate(), ShouldNotBeNil)
		})
	})

	Convey("Given a negative weight", t, func() {
		w := ranking.Weights{AvgScore: 1.2, Trend: -0.2}

		Convey("Then validation fails even though the sum is one", func() {
			So(w.Validate(), ShouldNotBeNil)
		})
	})
}

func TestEngine_Rank(t *testing.T) {
	Convey("Given three competitors with fixed metrics", t, func() {
		roster, metrics, teams, assignment := fixture()
		engine := ranking.NewEngine()

		Convey("When ranking them", func() {
			rows := engine.Rank(roster, metrics, teams, assignment)

			Convey("Then composites follow the published weights", func() {
				So(rows, ShouldHaveLength, 3)
				So(rows[0].Competitor, ShouldEqual, "alpha")
				So(rows[0].Final, ShouldAlmostEqual, 4.1, tolerance)
				So(rows[1].Competitor, ShouldEqual, "bravo")
				So(rows[1].Final, ShouldAlmostEqual, 3.7, tolerance)
				So(rows[2].Competitor, ShouldEqual, "charlie")
				So(rows[2].Final, ShouldAlmostEqual, 2.9, tolerance)
			})

			Convey("And ranks are 1-based and ordered", func() {
				for i, r := range rows {
					So(r.Rank, ShouldEqual, i+1)
					if i > 0 {
						So(rows[i-1].Final, ShouldBeGreaterThanOrEqualTo, r.Final)
					}
				}
			})

			Convey("And component scores are reported", func() {
				So(rows[0].Team, ShouldEqual, "ferrari")
				So(rows[0].TeamScore, ShouldEqual, 8)
				So(rows[0].QualifyingScore, ShouldEqual, 1)
			})
		})

		Convey("When ranking twice with the same inputs", func() {
			first := engine.Rank(roster, metrics, teams, assignment)
			second := engine.Rank(roster, metrics, teams, assignment)

			Convey("Then the output is identical", func() {
				So(second, ShouldResemble, first)
			})
		})

		Convey("When a competitor moves to a stronger team", func() {
			before := engine.Rank(roster, metrics, teams, assignment)
			moved := assignment.Clone()
			moved["charlie"] = "mclaren"
			after := engine.Rank(roster, metrics, teams, moved)

			Convey("Then their composite rises by 0.15 times the strength gap", func() {
				So(finalOf(after, "charlie"), ShouldBeGreaterThan, finalOf(before, "charlie"))
				So(finalOf(after, "charlie")-finalOf(before, "charlie"), ShouldAlmostEqual, 0.15*(9-4), tolerance)
			})

			Convey("And nobody else changes", func() {
				So(finalOf(after, "alpha"), ShouldEqual, finalOf(before, "alpha"))
				So(finalOf(after, "bravo"), ShouldEqual, finalOf(before, "bravo"))
			})

			Convey("And the original assignment is untouched", func() {
				So(assignment["charlie"], ShouldEqual, "haas")
			})
		})

		Convey("When a competitor is assigned a team without strength", func() {
			moved := assignment.Clone()
			moved["alpha"] = "cadillac"
			rows := engine.Rank(roster, metrics, teams, moved)

			Convey("Then the team score defaults to zero", func() {
				So(rowOf(rows, "alpha").TeamScore, ShouldEqual, 0)
				So(rowOf(rows, "alpha").Team, ShouldEqual, "cadillac")
			})
		})
	})

	Convey("Given competitors with equal composites", t, func() {
		roster := []string{"zed", "amy", "kim"}
		metrics := map[string]model.CompetitorMetrics{
			"zed": {AvgScore: 1},
			"amy": {AvgScore: 1},
			"kim": {AvgScore: 2},
		}
		rows := ranking.NewEngine().Rank(roster, metrics, model.TeamStrength{}, model.Assignment{})

		Convey("Then ties keep roster order", func() {
			So(rows[0].Competitor, ShouldEqual, "kim")
			So(rows[1].Competitor, ShouldEqual, "zed")
			So(rows[2].Competitor, ShouldEqual, "amy")
		})
	})

	Convey("Given custom weights", t, func() {
		roster, metrics, teams, assignment := fixture()
		engine := ranking.NewEngine(ranking.WithWeights(ranking.Weights{QualifyingScore: 1}))
		rows := engine.Rank(roster, metrics, teams, assignment)

		Convey("Then only the weighted component counts", func() {
			So(engine.Weights().QualifyingScore, ShouldEqual, 1)
			So(rows[0].Competitor, ShouldEqual, "alpha")
			So(rows[0].Final, ShouldEqual, 1)
			So(rows[2].Final, ShouldEqual, 0)
		})
	})
}

func TestComposite(t *testing.T) {
	Convey("Given unit components", t, func() {
		c := ranking.Components{AvgScore: 1, Trend: 1, Bonus: 1, QualifyingScore: 1, TeamScore: 1}

		Convey("Then the composite equals the weight sum", func() {
			So(ranking.Composite(ranking.DefaultWeights, c), ShouldAlmostEqual, 1.0, tolerance)
		})
	})
}

func finalOf(rows []model.RankedRow, name string) float64 {
	return rowOf(rows, name).Final
}

func rowOf(rows []model.RankedRow, name string) model.RankedRow {
	for _, r := range rows {
		if r.Competitor == name {
			return r
		}
	}
	return model.RankedRow{}
}
