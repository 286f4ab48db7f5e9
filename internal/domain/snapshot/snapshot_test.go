package snapshot_test

import (
	"errors"
	"testing"

	"github.com/okian/deliberation/internal/domain/model"
	"github.com/okian/deliberation/internal/domain/snapshot"
	. "github.com/smartystreets/goconvey/convey"
)

func intp(v int) *int { return &v }

func TestApply(t *testing.T) {
	Convey("Given a snapshot with one team", t, func() {
		base := model.Snapshot{
			Version: 4,
			Teams:   []model.Team{{ID: "t1", Number: 101, Arrived: true}},
		}

		Convey("When a new team is upserted", func() {
			out, err := snapshot.Apply(&base, &model.Event{Kind: model.EventTeamUpserted, Team: &model.Team{ID: "t2", Number: 102}})

			Convey("Then it is appended and the version advances", func() {
				So(err, ShouldBeNil)
				So(out.Teams, ShouldHaveLength, 2)
				So(out.Version, ShouldEqual, 5)
			})

			Convey("And the input is untouched", func() {
				So(base.Teams, ShouldHaveLength, 1)
				So(base.Version, ShouldEqual, 4)
			})
		})

		Convey("When an existing team is upserted", func() {
			out, err := snapshot.Apply(&base, &model.Event{Kind: model.EventTeamUpserted, Team: &model.Team{ID: "t1", Number: 7}})
			So(err, ShouldBeNil)
			So(out.Teams, ShouldHaveLength, 1)
			So(out.Teams[0].Number, ShouldEqual, 7)
		})

		Convey("When the team is disqualified and its session completes", func() {
			out, err := snapshot.Apply(&base, &model.Event{Kind: model.EventTeamDisqualified, TeamID: "t1", Flag: true})
			So(err, ShouldBeNil)
			out, err = snapshot.Apply(&out, &model.Event{Kind: model.EventSessionUpdated, TeamID: "t1", SessionStatus: model.SessionCompleted, RoomID: "r1"})
			So(err, ShouldBeNil)

			So(out.Teams[0].Disqualified, ShouldBeTrue)
			So(out.Teams[0].Active(), ShouldBeFalse)
			So(out.Teams[0].SessionStatus, ShouldEqual, model.SessionCompleted)
			So(out.Teams[0].RoomID, ShouldEqual, "r1")
			So(base.Teams[0].Disqualified, ShouldBeFalse)
		})

		Convey("When rubric fields and nominations are updated", func() {
			out, err := snapshot.Apply(&base, &model.Event{Kind: model.EventRubricFieldUpdated, TeamID: "t1", Category: model.RobotDesign, Field: "mechanical", Value: intp(4)})
			So(err, ShouldBeNil)
			out, err = snapshot.Apply(&out, &model.Event{Kind: model.EventRubricNominationUpdated, TeamID: "t1", Category: model.CoreValues, Award: "breakthrough", Flag: true})
			So(err, ShouldBeNil)

			So(*out.Teams[0].Rubrics[model.RobotDesign].Fields["mechanical"], ShouldEqual, 4)
			So(out.Teams[0].Rubrics[model.CoreValues].Awards["breakthrough"], ShouldBeTrue)
			So(base.Teams[0].Rubrics, ShouldBeNil)

			Convey("And clearing a field leaves it unscored", func() {
				out, err = snapshot.Apply(&out, &model.Event{Kind: model.EventRubricFieldUpdated, TeamID: "t1", Category: model.RobotDesign, Field: "mechanical"})
				So(err, ShouldBeNil)
				v, ok := out.Teams[0].Rubrics[model.RobotDesign].Fields["mechanical"]
				So(ok, ShouldBeTrue)
				So(v, ShouldBeNil)
			})
		})

		Convey("When scoresheets arrive out of order", func() {
			out, err := snapshot.Apply(&base, &model.Event{Kind: model.EventScoresheetUpdated, TeamID: "t1", Scoresheet: &model.Scoresheet{Round: 2, Score: 200}})
			So(err, ShouldBeNil)
			out, err = snapshot.Apply(&out, &model.Event{Kind: model.EventScoresheetUpdated, TeamID: "t1", Scoresheet: &model.Scoresheet{Round: 1, Score: 150, GP: intp(4)}})
			So(err, ShouldBeNil)
			out, err = snapshot.Apply(&out, &model.Event{Kind: model.EventScoresheetUpdated, TeamID: "t1", Scoresheet: &model.Scoresheet{Round: 2, Score: 210}})
			So(err, ShouldBeNil)

			So(out.Teams[0].Scoresheets, ShouldHaveLength, 2)
			So(out.Teams[0].Scoresheets[0].Round, ShouldEqual, 1)
			So(out.Teams[0].Scoresheets[1].Score, ShouldEqual, 210)
		})

		Convey("When awards and rooms are replaced", func() {
			out, err := snapshot.Apply(&base, &model.Event{Kind: model.EventAwardsReplaced, Awards: []model.Award{{Name: "champions", Count: 3}}})
			So(err, ShouldBeNil)
			out, err = snapshot.Apply(&out, &model.Event{Kind: model.EventRoomsReplaced, Rooms: []model.Room{{ID: "r1", Name: "Blue"}}})
			So(err, ShouldBeNil)

			So(out.AwardCount("champions"), ShouldEqual, 3)
			So(out.Rooms, ShouldHaveLength, 1)
			So(out.Version, ShouldEqual, 6)
		})

		Convey("When the event targets an unknown team", func() {
			_, err := snapshot.Apply(&base, &model.Event{Kind: model.EventTeamArrived, TeamID: "ghost", Flag: true})
			So(errors.Is(err, snapshot.ErrUnknownTeam), ShouldBeTrue)
		})

		Convey("When the event kind is unknown", func() {
			_, err := snapshot.Apply(&base, &model.Event{Kind: "team-renamed"})
			So(errors.Is(err, snapshot.ErrUnknownEvent), ShouldBeTrue)
		})

		Convey("When the payload is missing", func() {
			_, err := snapshot.Apply(&base, &model.Event{Kind: model.EventScoresheetUpdated, TeamID: "t1"})
			So(errors.Is(err, snapshot.ErrInvalidEvent), ShouldBeTrue)

			_, err = snapshot.Apply(&base, &model.Event{Kind: model.EventRubricFieldUpdated, TeamID: "t1", Category: "art", Field: "x"})
			So(errors.Is(err, snapshot.ErrInvalidEvent), ShouldBeTrue)
		})
	})
}

func TestGPValues(t *testing.T) {
	Convey("Given a snapshot and GP restricted to 2, 3 and 4", t, func() {
		base := model.Snapshot{Teams: []model.Team{{ID: "t1", Arrived: true}}}
		rule := snapshot.WithGPValues(2, 3, 4)

		Convey("When a scoresheet update carries GP 99", func() {
			_, err := snapshot.Apply(&base, &model.Event{Kind: model.EventScoresheetUpdated, TeamID: "t1",
				Scoresheet: &model.Scoresheet{Round: 1, GP: intp(99)}}, rule)
			So(errors.Is(err, snapshot.ErrInvalidEvent), ShouldBeTrue)
		})

		Convey("When an upserted team carries GP 99", func() {
			_, err := snapshot.Apply(&base, &model.Event{Kind: model.EventTeamUpserted,
				Team: &model.Team{ID: "t2", Scoresheets: []model.Scoresheet{{Round: 1, GP: intp(99)}}}}, rule)
			So(errors.Is(err, snapshot.ErrInvalidEvent), ShouldBeTrue)
		})

		Convey("When GP is allowed or missing", func() {
			out, err := snapshot.Apply(&base, &model.Event{Kind: model.EventScoresheetUpdated, TeamID: "t1",
				Scoresheet: &model.Scoresheet{Round: 1, GP: intp(3)}}, rule)
			So(err, ShouldBeNil)
			out, err = snapshot.Apply(&out, &model.Event{Kind: model.EventScoresheetUpdated, TeamID: "t1",
				Scoresheet: &model.Scoresheet{Round: 2}}, rule)
			So(err, ShouldBeNil)
			So(snapshot.Validate(&out, rule), ShouldBeNil)
		})

		Convey("When no GP values are configured", func() {
			_, err := snapshot.Apply(&base, &model.Event{Kind: model.EventScoresheetUpdated, TeamID: "t1",
				Scoresheet: &model.Scoresheet{Round: 1, GP: intp(99)}})
			So(err, ShouldBeNil)
		})

		Convey("When a whole snapshot carries GP 99", func() {
			bad := model.Snapshot{Teams: []model.Team{{ID: "x", Scoresheets: []model.Scoresheet{{Round: 1, GP: intp(99)}}}}}
			So(errors.Is(snapshot.Validate(&bad, rule), snapshot.ErrInvalidEvent), ShouldBeTrue)
		})
	})
}
