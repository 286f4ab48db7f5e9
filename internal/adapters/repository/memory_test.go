package repository_test

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/okian/deliberation/internal/adapters/repository"
	"github.com/okian/deliberation/internal/domain/model"
	. "github.com/smartystreets/goconvey/convey"
)

func TestMemoryStore(t *testing.T) {
	ctx := context.Background()

	Convey("Given an empty memory store", t, func() {
		s := repository.NewMemoryStore()

		Convey("When an unknown event is loaded", func() {
			st, err := s.Load(ctx, "regional")

			Convey("Then a fresh state at version zero comes back", func() {
				So(err, ShouldBeNil)
				So(st.EventID, ShouldEqual, "regional")
				So(st.Version, ShouldEqual, 0)
				So(st.Final.Stage, ShouldEqual, model.StageChampions)
			})
		})

		Convey("When a state is saved at the expected version", func() {
			st, _ := s.Load(ctx, "regional")
			st.Final.Status = model.StatusInProgress
			saved, err := s.Save(ctx, st, 0)

			Convey("Then the version is bumped and reads see it", func() {
				So(err, ShouldBeNil)
				So(saved.Version, ShouldEqual, 1)
				got, err := s.Load(ctx, "regional")
				So(err, ShouldBeNil)
				So(got.Version, ShouldEqual, 1)
				So(got.Final.Status, ShouldEqual, model.StatusInProgress)
			})

			Convey("And a writer holding the old version conflicts", func() {
				_, err := s.Save(ctx, st, 0)
				So(errors.Is(err, repository.ErrVersionConflict), ShouldBeTrue)
			})
		})

		Convey("When a loaded state is mutated without saving", func() {
			st, _ := s.Load(ctx, "regional")
			_, _ = s.Save(ctx, st, 0)
			got, _ := s.Load(ctx, "regional")
			d := got.Categories[model.RobotDesign]
			d.Picklist = append(d.Picklist, "t1")
			got.Categories[model.RobotDesign] = d

			Convey("Then the stored state is unchanged", func() {
				again, _ := s.Load(ctx, "regional")
				So(again.Categories[model.RobotDesign].Picklist, ShouldBeEmpty)
			})
		})

		Convey("When the event id is missing", func() {
			_, err := s.Load(ctx, " ")
			So(errors.Is(err, repository.ErrMissingEventID), ShouldBeTrue)
			_, err = s.Save(ctx, model.State{}, 0)
			So(errors.Is(err, repository.ErrMissingEventID), ShouldBeTrue)
		})

		Convey("When the store is closed", func() {
			So(s.Close(), ShouldBeNil)
			_, err := s.Load(ctx, "regional")
			So(errors.Is(err, repository.ErrClosed), ShouldBeTrue)
		})
	})

	Convey("Given a seeded store and racing writers", t, func() {
		seed := model.NewState("regional")
		seed.Version = 5
		s := repository.NewMemoryStore(repository.WithStates(seed))

		var (
			wg        sync.WaitGroup
			mu        sync.Mutex
			conflicts int
		)
		for i := 0; i < 10; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				if _, err := s.Save(ctx, seed, 5); errors.Is(err, repository.ErrVersionConflict) {
					mu.Lock()
					conflicts++
					mu.Unlock()
				}
			}()
		}
		wg.Wait()

		Convey("Then exactly one save wins", func() {
			So(conflicts, ShouldEqual, 9)
			st, _ := s.Load(ctx, "regional")
			So(st.Version, ShouldEqual, 6)
		})
	})
}

func TestMemoryStoreHistory(t *testing.T) {
	ctx := context.Background()

	Convey("Given a memory store with two saves", t, func() {
		s := repository.NewMemoryStore()
		var _ repository.Historian = s
		st, _ := s.Load(ctx, "regional")
		first, err := s.Save(ctx, st, 0)
		So(err, ShouldBeNil)
		first.Final.Status = model.StatusInProgress
		_, err = s.Save(ctx, first, 1)
		So(err, ShouldBeNil)

		Convey("Then history lists every version oldest first", func() {
			h, err := s.History(ctx, "regional")
			So(err, ShouldBeNil)
			So(h, ShouldHaveLength, 2)
			So(h[0].Version, ShouldEqual, 1)
			So(h[1].Version, ShouldEqual, 2)
			So(h[1].Final.Status, ShouldEqual, model.StatusInProgress)
		})

		Convey("And a failed save adds nothing", func() {
			_, err := s.Save(ctx, st, 0)
			So(errors.Is(err, repository.ErrVersionConflict), ShouldBeTrue)
			h, _ := s.History(ctx, "regional")
			So(h, ShouldHaveLength, 2)
		})

		Convey("And an unknown event has no history", func() {
			h, err := s.History(ctx, "other")
			So(err, ShouldBeNil)
			So(h, ShouldBeEmpty)
		})

		Convey("And a closed store refuses", func() {
			So(s.Close(), ShouldBeNil)
			_, err := s.History(ctx, "regional")
			So(errors.Is(err, repository.ErrClosed), ShouldBeTrue)
		})
	})
}
