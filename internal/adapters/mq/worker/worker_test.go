package worker_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/okian/deliberation/internal/adapters/mq/queue"
	"github.com/okian/deliberation/internal/adapters/mq/worker"
	"github.com/okian/deliberation/internal/adapters/repository"
	"github.com/okian/deliberation/internal/domain/deliberation"
	"github.com/okian/deliberation/internal/domain/model"
	"github.com/okian/deliberation/internal/domain/snapshot"
	"github.com/okian/deliberation/pkg/logger"
	. "github.com/smartystreets/goconvey/convey"
)

func init() {
	_ = logger.Init()
}

type recorder struct {
	mu     sync.Mutex
	states []model.State
	snaps  []model.Snapshot
}

func (r *recorder) Publish(st model.State, snap model.Snapshot) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.states = append(r.states, st)
	r.snaps = append(r.snaps, snap)
}

func (r *recorder) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.states)
}

type failingStore struct {
	repository.Store
}

func (failingStore) Save(context.Context, model.State, int64) (model.State, error) {
	return model.State{}, repository.ErrVersionConflict
}

func teams(ids ...string) model.Snapshot {
	snap := model.Snapshot{}
	for i, id := range ids {
		snap.Teams = append(snap.Teams, model.Team{ID: id, Number: i + 1, Arrived: true, SessionStatus: model.SessionCompleted})
	}
	return snap
}

func send(q *queue.InMemoryQueue, job model.Job) model.JobResult {
	job.Reply = make(chan model.JobResult, 1)
	So(q.Enqueue(context.Background(), job), ShouldBeNil)
	select {
	case res := <-job.Reply:
		return res
	case <-time.After(2 * time.Second):
		panic("no reply from writer")
	}
}

func TestWriter(t *testing.T) {
	Convey("Given a running writer over a memory store", t, func() {
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		q := queue.NewInMemoryQueue(queue.WithCapacity(16))
		store := repository.NewMemoryStore()
		pub := &recorder{}
		stamp := time.Date(2026, 3, 14, 8, 0, 0, 0, time.UTC)
		w := worker.NewInMemoryWorker("regional", q, store, deliberation.NewMachine(),
			worker.WithPublisher(pub),
			worker.WithSnapshot(teams("a", "b", "c")),
			worker.WithClock(func() time.Time { return stamp }),
		)
		go w.Run(ctx)

		start := model.Command{ID: "c1", Kind: model.CommandStartDeliberation, Category: model.RobotDesign}

		Convey("When a command is accepted", func() {
			res := send(q, model.Job{Command: &start})

			Convey("Then the state is saved, versioned and published", func() {
				So(res.Err, ShouldBeNil)
				So(res.State.Version, ShouldEqual, 1)
				So(*res.State.Categories[model.RobotDesign].StartedAt, ShouldEqual, stamp)

				st, err := store.Load(context.Background(), "regional")
				So(err, ShouldBeNil)
				So(st.Categories[model.RobotDesign].Status, ShouldEqual, model.StatusInProgress)
				So(pub.count(), ShouldEqual, 1)
			})

			Convey("And a redelivery of the same id is reported as a duplicate", func() {
				again := send(q, model.Job{Command: &start})
				So(again.Duplicate, ShouldBeTrue)
				So(again.State.Version, ShouldEqual, 1)
			})

			Convey("And a repeat under a new id is an unchanged no-op", func() {
				repeat := start
				repeat.ID = "c2"
				again := send(q, model.Job{Command: &repeat})
				So(again.Err, ShouldBeNil)
				So(again.Duplicate, ShouldBeFalse)
				So(again.State.Version, ShouldEqual, 1)
			})
		})

		Convey("When a command is rejected", func() {
			add := model.Command{ID: "c9", Kind: model.CommandAddToPicklist, Category: model.RobotDesign, TeamID: "a"}
			res := send(q, model.Job{Command: &add})

			Convey("Then nothing is saved and the id may be retried", func() {
				So(errors.Is(res.Err, deliberation.ErrNotInProgress), ShouldBeTrue)
				st, _ := store.Load(context.Background(), "regional")
				So(st.Version, ShouldEqual, 0)

				send(q, model.Job{Command: &start})
				retry := send(q, model.Job{Command: &add})
				So(retry.Err, ShouldBeNil)
				So(retry.State.Categories[model.RobotDesign].Picklist, ShouldResemble, []string{"a"})
			})
		})

		Convey("When snapshot events arrive", func() {
			res := send(q, model.Job{Event: &model.Event{ID: "e1", Kind: model.EventTeamDisqualified, TeamID: "b", Flag: true}})
			So(res.Err, ShouldBeNil)
			So(res.Snapshot.Version, ShouldEqual, 1)

			Convey("Then later commands validate against the new snapshot", func() {
				send(q, model.Job{Command: &start})
				add := model.Command{ID: "c3", Kind: model.CommandAddToPicklist, Category: model.RobotDesign, TeamID: "b"}
				rejected := send(q, model.Job{Command: &add})
				So(errors.Is(rejected.Err, deliberation.ErrStaleEligibility), ShouldBeTrue)
			})

			Convey("And a redelivered event is dropped", func() {
				again := send(q, model.Job{Event: &model.Event{ID: "e1", Kind: model.EventTeamDisqualified, TeamID: "b", Flag: true}})
				So(again.Duplicate, ShouldBeTrue)
				So(again.Snapshot.Version, ShouldEqual, 1)
			})

			Convey("And a bad event leaves the snapshot alone", func() {
				bad := send(q, model.Job{Event: &model.Event{ID: "e2", Kind: model.EventTeamArrived, TeamID: "zz"}})
				So(errors.Is(bad.Err, snapshot.ErrUnknownTeam), ShouldBeTrue)
				So(bad.Snapshot.Version, ShouldEqual, 1)
			})
		})

		Convey("When the whole snapshot is replaced", func() {
			next := teams("x", "y")
			res := send(q, model.Job{Snapshot: &next})

			Convey("Then the writer holds the copy and publishes it", func() {
				So(res.Err, ShouldBeNil)
				So(res.Snapshot.Teams, ShouldHaveLength, 2)
				So(res.Snapshot.Version, ShouldEqual, 1)
				So(pub.count(), ShouldEqual, 1)
			})
		})

		Convey("When the writer is shut down", func() {
			sctx, scancel := context.WithTimeout(context.Background(), time.Second)
			defer scancel()
			So(w.Shutdown(sctx), ShouldBeNil)
			So(w.Shutdown(sctx), ShouldBeNil)
		})
	})

	Convey("Given a store that loses every save", t, func() {
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		q := queue.NewInMemoryQueue()
		w := worker.NewInMemoryWorker("regional", q, failingStore{repository.NewMemoryStore()}, deliberation.NewMachine())
		go w.Run(ctx)

		Convey("When a command is accepted by the decider", func() {
			res := send(q, model.Job{Command: &model.Command{ID: "c1", Kind: model.CommandStartFinal}})

			Convey("Then the conflict is surfaced without retry", func() {
				So(errors.Is(res.Err, repository.ErrVersionConflict), ShouldBeTrue)
			})
		})
	})
}

func TestWriterSnapshotRules(t *testing.T) {
	Convey("Given a writer that only accepts GP 2, 3 or 4", t, func() {
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		q := queue.NewInMemoryQueue()
		pub := &recorder{}
		w := worker.NewInMemoryWorker("regional", q, repository.NewMemoryStore(), deliberation.NewMachine(),
			worker.WithPublisher(pub),
			worker.WithSnapshot(teams("a")),
			worker.WithSnapshotRules(snapshot.WithGPValues(2, 3, 4)),
		)
		go w.Run(ctx)

		Convey("When a scoresheet carries GP 99", func() {
			gp := 99
			res := send(q, model.Job{Event: &model.Event{ID: "g1", Kind: model.EventScoresheetUpdated, TeamID: "a",
				Scoresheet: &model.Scoresheet{Round: 1, Score: 120, GP: &gp}}})

			Convey("Then the event is rejected and nothing is published", func() {
				So(errors.Is(res.Err, snapshot.ErrInvalidEvent), ShouldBeTrue)
				So(res.Snapshot.Version, ShouldEqual, 0)
				So(pub.count(), ShouldEqual, 0)
			})
		})

		Convey("When a replacement snapshot carries GP 99", func() {
			gp := 99
			next := teams("x")
			next.Teams[0].Scoresheets = []model.Scoresheet{{Round: 1, GP: &gp}}
			res := send(q, model.Job{Snapshot: &next})

			Convey("Then the current snapshot is kept", func() {
				So(errors.Is(res.Err, snapshot.ErrInvalidEvent), ShouldBeTrue)
				So(res.Snapshot.Teams[0].ID, ShouldEqual, "a")
				So(pub.count(), ShouldEqual, 0)
			})
		})

		Convey("When a scoresheet carries an allowed GP", func() {
			gp := 4
			res := send(q, model.Job{Event: &model.Event{ID: "g2", Kind: model.EventScoresheetUpdated, TeamID: "a",
				Scoresheet: &model.Scoresheet{Round: 1, Score: 120, GP: &gp}}})
			So(res.Err, ShouldBeNil)
			So(res.Snapshot.Version, ShouldEqual, 1)
		})
	})
}

func TestWriterDrainsOnQueueClose(t *testing.T) {
	Convey("Given queued jobs and a closed queue", t, func() {
		q := queue.NewInMemoryQueue()
		w := worker.NewInMemoryWorker("regional", q, repository.NewMemoryStore(), deliberation.NewMachine())

		reply := make(chan model.JobResult, 1)
		So(q.Enqueue(context.Background(), model.Job{Command: &model.Command{ID: "c1", Kind: model.CommandStartFinal}, Reply: reply}), ShouldBeNil)
		So(q.Close(), ShouldBeNil)

		Convey("When the writer runs", func() {
			w.Run(context.Background())

			Convey("Then the queued job is handled before it returns", func() {
				res := <-reply
				So(res.Err, ShouldBeNil)
				So(res.State.Final.Status, ShouldEqual, model.StatusInProgress)
			})
		})
	})
}
