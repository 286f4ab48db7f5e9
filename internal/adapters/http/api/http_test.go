package api_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/okian/deliberation/internal/adapters/http/api"
	"github.com/okian/deliberation/internal/adapters/http/swagger"
	service "github.com/okian/deliberation/internal/app"
	"github.com/okian/deliberation/internal/domain/model"
	"github.com/okian/deliberation/pkg/logger"
	. "github.com/smartystreets/goconvey/convey"
)

func init() {
	_ = logger.Init()
}

func snapshot() model.Snapshot {
	team := func(id string, n, rd int) model.Team {
		v := rd
		return model.Team{
			ID: id, Number: n, Arrived: true, RoomID: "r1", SessionStatus: model.SessionCompleted,
			Rubrics: map[model.Category]model.Rubric{
				model.RobotDesign: {Fields: map[string]*int{"design-features": &v}},
			},
		}
	}
	return model.Snapshot{
		Teams: []model.Team{
			team("a", 1, 9), team("b", 2, 7), team("c", 3, 5),
			team("d", 4, 4), team("e", 5, 3), team("f", 6, 2),
		},
		Rooms:  []model.Room{{ID: "r1"}},
		Awards: []model.Award{{Name: "champions", Count: 1}},
	}
}

type mockStatsProvider struct {
	stats map[string]interface{}
}

func (m *mockStatsProvider) GetStats() map[string]interface{} {
	return m.stats
}

type client struct {
	mux *http.ServeMux
}

func (c client) do(method, path, body string, headers ...string) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, http.NoBody)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	w := httptest.NewRecorder()
	c.mux.ServeHTTP(w, req)
	return w
}

func decodeBody(w *httptest.ResponseRecorder, v any) {
	So(json.Unmarshal(w.Body.Bytes(), v), ShouldBeNil)
}

type errorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type commandBody struct {
	State     model.State `json:"state"`
	Duplicate bool        `json:"duplicate"`
}

func TestServer_Register(t *testing.T) {
	Convey("Given an API server over a started service", t, func() {
		ctx := context.Background()
		svc := service.New(service.WithSnapshot(snapshot()))
		So(svc.Start(ctx), ShouldBeNil)
		defer func() { _ = svc.Stop(ctx) }()

		mux := http.NewServeMux()
		api.NewServer(svc, &mockStatsProvider{stats: map[string]interface{}{"started": true}}).Register(ctx, mux)
		c := client{mux: mux}

		Convey("Then the health endpoint serves metrics", func() {
			w := c.do("GET", "/healthz", "")
			So(w.Code, ShouldEqual, http.StatusOK)
		})

		Convey("Then the stats endpoint serves the provider's stats", func() {
			w := c.do("GET", "/stats", "")
			So(w.Code, ShouldEqual, http.StatusOK)
			So(w.Header().Get("Content-Type"), ShouldEqual, "application/json; charset=utf-8")
			var stats map[string]interface{}
			decodeBody(w, &stats)
			So(stats["started"], ShouldEqual, true)
		})

		Convey("Then a wrong method is refused", func() {
			w := c.do("POST", "/scores", "")
			So(w.Code, ShouldEqual, http.StatusMethodNotAllowed)
		})

		Convey("Then scores and state are readable", func() {
			w := c.do("GET", "/scores", "")
			So(w.Code, ShouldEqual, http.StatusOK)
			So(w.Body.String(), ShouldContainSubstring, `"robot-design":9`)

			w = c.do("GET", "/state", "")
			So(w.Code, ShouldEqual, http.StatusOK)
			var body struct {
				State        model.State      `json:"state"`
				Capacity     int              `json:"capacity"`
				OverCapacity []model.Category `json:"over_capacity"`
			}
			decodeBody(w, &body)
			So(body.Capacity, ShouldEqual, 3)
			So(body.State.Categories, ShouldHaveLength, 3)
			So(body.OverCapacity, ShouldNotBeNil)
			So(body.OverCapacity, ShouldBeEmpty)
		})

		Convey("Then every saved state version is listed", func() {
			So(c.do("POST", "/deliberations/robot-design/start", "").Code, ShouldEqual, http.StatusOK)
			So(c.do("POST", "/deliberations/robot-design/picklist", `{"team_id":"a"}`).Code, ShouldEqual, http.StatusOK)

			w := c.do("GET", "/state/history", "")
			So(w.Code, ShouldEqual, http.StatusOK)
			var body struct {
				History []model.State `json:"history"`
			}
			decodeBody(w, &body)
			So(body.History, ShouldHaveLength, 2)
			So(body.History[1].Categories[model.RobotDesign].Picklist, ShouldResemble, []string{"a"})
		})

		Convey("Then optional awards eligibility carries the nominations", func() {
			ev := `{"kind":"rubric-nomination-updated","team_id":"b","category":"core-values","award":"motivate","flag":true}`
			So(c.do("POST", "/events", ev).Code, ShouldEqual, http.StatusOK)

			w := c.do("GET", "/eligibility?stage=optional-awards", "")
			So(w.Code, ShouldEqual, http.StatusOK)
			var body struct {
				Teams       []string            `json:"teams"`
				Nominations map[string][]string `json:"nominations"`
			}
			decodeBody(w, &body)
			So(body.Teams, ShouldResemble, []string{"b"})
			So(body.Nominations, ShouldResemble, map[string][]string{"b": {"motivate"}})

			w = c.do("GET", "/eligibility?stage=robot-design", "")
			So(w.Body.String(), ShouldNotContainSubstring, "nominations")
		})

		Convey("Then rooms and ranks are readable", func() {
			w := c.do("GET", "/rooms", "")
			So(w.Code, ShouldEqual, http.StatusOK)
			So(w.Body.String(), ShouldContainSubstring, `"r1"`)

			w = c.do("GET", "/ranks", "")
			So(w.Code, ShouldEqual, http.StatusOK)
			So(w.Body.String(), ShouldContainSubstring, `"anomalies":[]`)
		})
	})
}

func TestCategoryRoutes(t *testing.T) {
	Convey("Given an API server over a started service", t, func() {
		ctx := context.Background()
		svc := service.New(service.WithSnapshot(snapshot()))
		So(svc.Start(ctx), ShouldBeNil)
		defer func() { _ = svc.Stop(ctx) }()

		mux := http.NewServeMux()
		api.NewServer(svc, svc).Register(ctx, mux)
		c := client{mux: mux}

		Convey("When robot design starts", func() {
			w := c.do("POST", "/deliberations/robot-design/start", "")
			So(w.Code, ShouldEqual, http.StatusOK)
			var body commandBody
			decodeBody(w, &body)
			So(body.State.Categories[model.RobotDesign].Status, ShouldEqual, model.StatusInProgress)

			Convey("Then the suggestion is the top raw score", func() {
				w := c.do("GET", "/suggestion?category=robot-design", "")
				So(w.Code, ShouldEqual, http.StatusOK)
				var sug service.Suggestion
				decodeBody(w, &sug)
				So(sug.Team, ShouldNotBeNil)
				So(sug.Team.TeamID, ShouldEqual, "a")
			})

			Convey("Then teams can be appended, reordered and removed", func() {
				So(c.do("POST", "/deliberations/robot-design/picklist", `{"team_id":"a"}`).Code, ShouldEqual, http.StatusOK)
				So(c.do("POST", "/deliberations/robot-design/picklist", `{"team_id":"b"}`).Code, ShouldEqual, http.StatusOK)

				w := c.do("POST", "/deliberations/robot-design/picklist/reorder", `{"from":1,"to":0}`)
				So(w.Code, ShouldEqual, http.StatusOK)
				var body commandBody
				decodeBody(w, &body)
				So(body.State.Categories[model.RobotDesign].Picklist, ShouldResemble, []string{"b", "a"})

				w = c.do("DELETE", "/deliberations/robot-design/picklist/b", "")
				So(w.Code, ShouldEqual, http.StatusOK)
				decodeBody(w, &body)
				So(body.State.Categories[model.RobotDesign].Picklist, ShouldResemble, []string{"a"})

				w = c.do("GET", "/eligibility?stage=robot-design", "")
				So(w.Code, ShouldEqual, http.StatusOK)
				So(w.Body.String(), ShouldNotContainSubstring, `"a"`)
			})

			Convey("Then a duplicate append conflicts", func() {
				c.do("POST", "/deliberations/robot-design/picklist", `{"team_id":"a"}`)
				w := c.do("POST", "/deliberations/robot-design/picklist", `{"team_id":"a"}`)
				So(w.Code, ShouldEqual, http.StatusConflict)
				var e errorBody
				decodeBody(w, &e)
				So(e.Code, ShouldEqual, "conflict")
			})

			Convey("Then a full picklist conflicts", func() {
				w := c.do("PUT", "/deliberations/robot-design/picklist", `{"picklist":["a","b","c","d"]}`)
				So(w.Code, ShouldEqual, http.StatusConflict)
			})

			Convey("Then an unknown team is not found", func() {
				w := c.do("POST", "/deliberations/robot-design/picklist", `{"team_id":"zz"}`)
				So(w.Code, ShouldEqual, http.StatusNotFound)
			})

			Convey("Then an out of range reorder is unprocessable", func() {
				w := c.do("POST", "/deliberations/robot-design/picklist/reorder", `{"from":0,"to":5}`)
				So(w.Code, ShouldEqual, http.StatusUnprocessableEntity)
			})

			Convey("Then a repeated idempotency key is a duplicate", func() {
				first := c.do("POST", "/deliberations/robot-design/picklist", `{"team_id":"c"}`, api.IdempotencyHeader, "k-1")
				second := c.do("POST", "/deliberations/robot-design/picklist", `{"team_id":"c"}`, api.IdempotencyHeader, "k-1")
				So(first.Code, ShouldEqual, http.StatusOK)
				So(second.Code, ShouldEqual, http.StatusOK)
				var body commandBody
				decodeBody(second, &body)
				So(body.Duplicate, ShouldBeTrue)
				So(body.State.Categories[model.RobotDesign].Picklist, ShouldResemble, []string{"c"})
			})
		})

		Convey("When the request is malformed", func() {
			Convey("Then bad JSON is a bad request", func() {
				w := c.do("POST", "/deliberations/robot-design/picklist", `{"team_id":`)
				So(w.Code, ShouldEqual, http.StatusBadRequest)
			})

			Convey("Then a missing field is unprocessable", func() {
				w := c.do("POST", "/deliberations/robot-design/picklist/reorder", `{"from":1}`)
				So(w.Code, ShouldEqual, http.StatusUnprocessableEntity)
			})

			Convey("Then an unknown category is not found", func() {
				w := c.do("POST", "/deliberations/robot-game/start", "")
				So(w.Code, ShouldEqual, http.StatusNotFound)
				w = c.do("GET", "/suggestion?category=robot-game", "")
				So(w.Code, ShouldEqual, http.StatusNotFound)
			})

			Convey("Then editing a picklist before start conflicts", func() {
				w := c.do("POST", "/deliberations/core-values/picklist", `{"team_id":"a"}`)
				So(w.Code, ShouldEqual, http.StatusConflict)
			})

			Convey("Then missing query parameters are bad requests", func() {
				So(c.do("GET", "/eligibility", "").Code, ShouldEqual, http.StatusBadRequest)
				So(c.do("GET", "/suggestion", "").Code, ShouldEqual, http.StatusBadRequest)
			})
		})
	})
}

func TestFinalRoutes(t *testing.T) {
	Convey("Given an API server over a started service", t, func() {
		ctx := context.Background()
		svc := service.New(service.WithSnapshot(snapshot()))
		So(svc.Start(ctx), ShouldBeNil)
		defer func() { _ = svc.Stop(ctx) }()

		mux := http.NewServeMux()
		api.NewServer(svc, svc).Register(ctx, mux)
		c := client{mux: mux}

		Convey("When the final deliberation starts", func() {
			So(c.do("POST", "/final/start", "").Code, ShouldEqual, http.StatusOK)

			Convey("Then the champions pool is the top ranked team", func() {
				w := c.do("GET", "/eligibility?stage=champions", "")
				So(w.Code, ShouldEqual, http.StatusOK)
				var body struct {
					Teams []string `json:"teams"`
				}
				decodeBody(w, &body)
				So(body.Teams, ShouldResemble, []string{"a"})
			})

			Convey("Then advancing with open places conflicts", func() {
				w := c.do("POST", "/final/advance", `{"stage":"champions"}`)
				So(w.Code, ShouldEqual, http.StatusConflict)
			})

			Convey("Then champions are placed and the stage advances", func() {
				w := c.do("PUT", "/final/awards/champions", `{"winners":["a"]}`)
				So(w.Code, ShouldEqual, http.StatusOK)

				w = c.do("POST", "/final/advance", "")
				So(w.Code, ShouldEqual, http.StatusOK)
				var body commandBody
				decodeBody(w, &body)
				So(body.State.Final.StageStatus[model.StageChampions], ShouldEqual, model.StatusCompleted)

				Convey("And a repeated advance from champions is a no-op", func() {
					w := c.do("POST", "/final/advance", `{"stage":"champions"}`)
					So(w.Code, ShouldEqual, http.StatusOK)
					var again commandBody
					decodeBody(w, &again)
					So(again.State.Version, ShouldEqual, body.State.Version)
				})
			})

			Convey("Then an unknown award is not found", func() {
				w := c.do("PUT", "/final/awards/best-hat", `{"winners":["a"]}`)
				So(w.Code, ShouldEqual, http.StatusNotFound)
			})

			Convey("Then manual eligibility for core awards is stored", func() {
				w := c.do("PUT", "/final/manual-eligibility/core-awards", `{"teams":["c","c"]}`)
				So(w.Code, ShouldEqual, http.StatusOK)
				var body commandBody
				decodeBody(w, &body)
				So(body.State.Final.CoreAwardsManualEligibility, ShouldResemble, []string{"c"})
			})

			Convey("Then approving before review conflicts", func() {
				So(c.do("POST", "/final/approve", "").Code, ShouldEqual, http.StatusConflict)
			})
		})
	})
}

func TestIntakeRoutes(t *testing.T) {
	Convey("Given an API server over a started service", t, func() {
		ctx := context.Background()
		svc := service.New(service.WithSnapshot(snapshot()))
		So(svc.Start(ctx), ShouldBeNil)
		defer func() { _ = svc.Stop(ctx) }()

		mux := http.NewServeMux()
		api.NewServer(svc, svc).Register(ctx, mux)
		c := client{mux: mux}

		Convey("When a team is disqualified by event", func() {
			w := c.do("POST", "/events", `{"id":"ev-1","kind":"team-disqualified","team_id":"a","flag":true}`)
			So(w.Code, ShouldEqual, http.StatusOK)
			So(w.Body.String(), ShouldContainSubstring, `"snapshot_version":1`)

			Convey("Then the team leaves the champions pool", func() {
				w := c.do("GET", "/eligibility?stage=champions", "")
				So(w.Body.String(), ShouldContainSubstring, `"b"`)
				So(w.Body.String(), ShouldNotContainSubstring, `"a"`)
			})

			Convey("Then redelivery is acknowledged as a duplicate", func() {
				w := c.do("POST", "/events", `{"id":"ev-1","kind":"team-disqualified","team_id":"a","flag":true}`)
				So(w.Code, ShouldEqual, http.StatusOK)
				So(w.Body.String(), ShouldContainSubstring, `"duplicate":true`)
			})
		})

		Convey("When an event is invalid", func() {
			Convey("Then a missing kind is a bad request", func() {
				So(c.do("POST", "/events", `{"id":"ev-2"}`).Code, ShouldEqual, http.StatusBadRequest)
			})

			Convey("Then an unknown kind is unprocessable", func() {
				So(c.do("POST", "/events", `{"kind":"team-teleported","team_id":"a"}`).Code, ShouldEqual, http.StatusUnprocessableEntity)
			})

			Convey("Then an unknown team is not found", func() {
				So(c.do("POST", "/events", `{"kind":"team-arrived","team_id":"zz","flag":true}`).Code, ShouldEqual, http.StatusNotFound)
			})
		})

		Convey("When the snapshot is replaced", func() {
			w := c.do("PUT", "/snapshot", `{"teams":[{"id":"x","number":9,"arrived":true}],"awards":[]}`)
			So(w.Code, ShouldEqual, http.StatusOK)

			Convey("Then queries see the new teams", func() {
				w := c.do("GET", "/state", "")
				So(w.Body.String(), ShouldContainSubstring, `"capacity":1`)
			})
		})
	})
}

func TestDocumentedRoutes(t *testing.T) {
	Convey("Given the routes of the OpenAPI document", t, func() {
		ctx := context.Background()
		svc := service.New(service.WithSnapshot(snapshot()))
		So(svc.Start(ctx), ShouldBeNil)
		defer func() { _ = svc.Stop(ctx) }()

		mux := http.NewServeMux()
		api.NewServer(svc, svc).Register(ctx, mux)
		c := client{mux: mux}

		routes, err := swagger.Routes()
		So(err, ShouldBeNil)

		Convey("Then every documented route is registered", func() {
			fill := strings.NewReplacer("{category}", "robot-design", "{team}", "a", "{award}", "champions", "{stage}", "core-awards")
			for _, route := range routes {
				method, path, _ := strings.Cut(route, " ")
				w := c.do(method, fill.Replace(path), "")
				So(w.Code, ShouldNotEqual, http.StatusMethodNotAllowed)
				So(w.Body.String(), ShouldNotEqual, "404 page not found\n")
			}
		})
	})
}
