package model_test

import (
	"testing"

	"github.com/okian/deliberation/internal/domain/model"
	. "github.com/smartystreets/goconvey/convey"
)

func TestNewState(t *testing.T) {
	Convey("Given a fresh event state", t, func() {
		st := model.NewState("event-1")

		Convey("Then every category deliberation exists and is not started", func() {
			So(st.Categories, ShouldHaveLength, 3)
			for _, c := range model.Categories() {
				So(st.Categories[c].Status, ShouldEqual, model.StatusNotStarted)
				So(st.Categories[c].Picklist, ShouldBeEmpty)
			}
		})

		Convey("And the final deliberation starts at champions", func() {
			So(st.Final.Stage, ShouldEqual, model.StageChampions)
			So(st.Final.Status, ShouldEqual, model.StatusNotStarted)
			So(st.Final.StageStatus, ShouldHaveLength, 4)
		})
	})
}

func TestStateClone(t *testing.T) {
	Convey("Given a state with a picklist and awards", t, func() {
		st := model.NewState("event-1")
		d := st.Categories[model.RobotDesign]
		d.Picklist = []string{"a", "b"}
		st.Categories[model.RobotDesign] = d
		st.Final.Awards["robot-design"] = []string{"a"}
		st.Final.Champions[1] = "c"

		Convey("When the clone is mutated", func() {
			cp := st.Clone()
			cd := cp.Categories[model.RobotDesign]
			cd.Picklist[0] = "z"
			cp.Final.Awards["robot-design"][0] = "z"
			cp.Final.Champions[1] = "z"
			cp.Final.StageStatus[model.StageChampions] = model.StatusCompleted

			Convey("Then the source state is untouched", func() {
				So(st.Categories[model.RobotDesign].Picklist, ShouldResemble, []string{"a", "b"})
				So(st.Final.Awards["robot-design"], ShouldResemble, []string{"a"})
				So(st.Final.Champions[1], ShouldEqual, "c")
				So(st.Final.StageStatus[model.StageChampions], ShouldEqual, model.StatusNotStarted)
			})
		})
	})
}

func TestSnapshotClone(t *testing.T) {
	Convey("Given a snapshot with a scored team", t, func() {
		v, gp := 3, 4
		snap := model.Snapshot{
			Teams: []model.Team{{
				ID:          "t1",
				Arrived:     true,
				Rubrics:     map[model.Category]model.Rubric{model.CoreValues: {Fields: map[string]*int{"fun": &v}}},
				Scoresheets: []model.Scoresheet{{Round: 1, GP: &gp}},
			}},
			Awards: []model.Award{{Name: "champions", Count: 3}},
		}

		cp := snap.Clone()
		*cp.Teams[0].Rubrics[model.CoreValues].Fields["fun"] = 1
		*cp.Teams[0].Scoresheets[0].GP = 2

		So(*snap.Teams[0].Rubrics[model.CoreValues].Fields["fun"], ShouldEqual, 3)
		So(*snap.Teams[0].Scoresheets[0].GP, ShouldEqual, 4)
		So(snap.AwardCount("champions"), ShouldEqual, 3)
		So(snap.AwardCount("missing"), ShouldEqual, 0)

		team, ok := snap.Team("t1")
		So(ok, ShouldBeTrue)
		So(team.Active(), ShouldBeTrue)
	})
}
