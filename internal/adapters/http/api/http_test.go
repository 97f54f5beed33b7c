package api_test

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/ridershield/ridershield/internal/adapters/http/api"
	"github.com/ridershield/ridershield/internal/domain/contacts"
	"github.com/ridershield/ridershield/internal/domain/escalation"
	"github.com/ridershield/ridershield/internal/domain/model"
	"github.com/ridershield/ridershield/internal/domain/types"
)

// fakeDeps records calls and returns canned answers.
type fakeDeps struct {
	mu sync.Mutex

	armed     bool
	cancelled int
	events    []model.Event
	seen      map[string]bool
	full      bool
	riding    bool
	listening bool
	lang      model.Language
	profile   model.RiderProfile
	contacts  []model.EmergencyContact
	records   []model.EpisodeRecord
	lastLimit int
}

func newFakeDeps() *fakeDeps {
	return &fakeDeps{
		seen: make(map[string]bool),
		lang: model.LanguageEN,
		contacts: []model.EmergencyContact{
			{ID: "sos", Name: "Emergency Services", Phone: "999", Priority: 1, Protected: true},
			{ID: "wife", Name: "Wife", Phone: "+60123456789", Priority: 2},
		},
	}
}

func (f *fakeDeps) GetStats() map[string]interface{} {
	return map[string]interface{}{"started": true, "contacts": len(f.contacts)}
}

func (f *fakeDeps) Trigger(_ context.Context, severity string) (escalation.Snapshot, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	sev, err := model.ParseSeverity(severity)
	if err != nil {
		return escalation.Snapshot{}, false, err
	}
	if f.armed {
		return escalation.Snapshot{State: escalation.Armed, Severity: model.SeverityHigh, RemainingSeconds: 20}, false, nil
	}
	f.armed = true
	return escalation.Snapshot{State: escalation.Armed, Severity: sev, RemainingSeconds: 30}, true, nil
}

func (f *fakeDeps) Cancel(context.Context) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	was := f.armed
	f.armed = false
	if was {
		f.cancelled++
	}
	return was
}

func (f *fakeDeps) State() types.StateView {
	f.mu.Lock()
	defer f.mu.Unlock()
	st := escalation.Idle
	if f.armed {
		st = escalation.Armed
	}
	return types.StateView{Engine: escalation.Snapshot{State: st, Language: f.lang}, Riding: f.riding, Listening: f.listening}
}

func (f *fakeDeps) RecentAlerts(_ context.Context, limit int) ([]model.EpisodeRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lastLimit = limit
	return f.records, nil
}

func (f *fakeDeps) Submit(_ context.Context, e model.Event) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if e.EventID != "" && f.seen[e.EventID] {
		return true, nil
	}
	if f.full {
		return false, errors.New("event queue full")
	}
	if e.EventID != "" {
		f.seen[e.EventID] = true
	}
	f.events = append(f.events, e)
	return false, nil
}

func (f *fakeDeps) StartRide(context.Context) bool {
	was := f.riding
	f.riding = true
	return !was
}

func (f *fakeDeps) StopRide(context.Context) bool {
	was := f.riding
	f.riding = false
	return was
}

func (f *fakeDeps) SetListening(_ context.Context, active bool) bool {
	f.listening = active
	return active
}

func (f *fakeDeps) Contacts() types.ContactsView { return types.NewContactsView(f.contacts) }

func (f *fakeDeps) AddContact(_ context.Context, name, phone string) (model.EmergencyContact, error) {
	c := model.EmergencyContact{ID: fmt.Sprintf("c%d", len(f.contacts)+1), Name: name, Phone: phone, Priority: len(f.contacts) + 1}
	f.contacts = append(f.contacts, c)
	return c, nil
}

func (f *fakeDeps) find(id string) (int, error) {
	for i, c := range f.contacts {
		if c.ID == id {
			if c.Protected {
				return i, fmt.Errorf("%w: %s", contacts.ErrProtected, c.Name)
			}
			return i, nil
		}
	}
	return -1, fmt.Errorf("%w: %s", contacts.ErrNotFound, id)
}

func (f *fakeDeps) RemoveContact(_ context.Context, id string) error {
	i, err := f.find(id)
	if err != nil {
		return err
	}
	f.contacts = append(f.contacts[:i], f.contacts[i+1:]...)
	return nil
}

func (f *fakeDeps) ReassignContact(_ context.Context, id string, priority int) (model.EmergencyContact, error) {
	i, err := f.find(id)
	if err != nil {
		return model.EmergencyContact{}, err
	}
	f.contacts[i].Priority = priority
	return f.contacts[i], nil
}

func (f *fakeDeps) Profile() model.RiderProfile { return f.profile }

func (f *fakeDeps) ReplaceProfile(_ context.Context, p model.RiderProfile) { f.profile = p }

func (f *fakeDeps) SetLanguage(_ context.Context, l model.Language) { f.lang = l }

func newMux(deps *fakeDeps, opts ...api.Option) *http.ServeMux {
	mux := http.NewServeMux()
	api.NewServer(deps, opts...).Register(context.Background(), mux)
	return mux
}

func do(mux *http.ServeMux, method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	mux.ServeHTTP(w, req)
	return w
}

func TestServer_Register(t *testing.T) {
	Convey("Given a registered API", t, func() {
		mux := newMux(newFakeDeps())

		Convey("Then health serves Prometheus metrics", func() {
			w := do(mux, http.MethodGet, "/healthz", "")
			So(w.Code, ShouldEqual, http.StatusOK)
			So(w.Body.String(), ShouldContainSubstring, "ridershield_escalation")
		})

		Convey("Then stats are served as JSON", func() {
			w := do(mux, http.MethodGet, "/stats", "")
			So(w.Code, ShouldEqual, http.StatusOK)
			So(w.Header().Get("Content-Type"), ShouldEqual, "application/json; charset=utf-8")
			So(w.Body.String(), ShouldContainSubstring, `"started":true`)
		})

		Convey("Then the wrong method is rejected by the mux", func() {
			w := do(mux, http.MethodGet, "/alert/trigger", "")
			So(w.Code, ShouldEqual, http.StatusMethodNotAllowed)
		})

		Convey("Then /ws is absent without a device handler", func() {
			w := do(mux, http.MethodGet, "/ws", "")
			So(w.Code, ShouldEqual, http.StatusNotFound)
		})
	})
}

func TestAlertEndpoints(t *testing.T) {
	Convey("Given an idle system", t, func() {
		deps := newFakeDeps()
		mux := newMux(deps)

		Convey("When an alert is triggered", func() {
			w := do(mux, http.MethodPost, "/alert/trigger", `{"severity":"High"}`)

			Convey("Then it is armed", func() {
				So(w.Code, ShouldEqual, http.StatusOK)
				var snap map[string]any
				So(json.Unmarshal(w.Body.Bytes(), &snap), ShouldBeNil)
				So(snap["state"], ShouldEqual, "armed")
				So(snap["severity"], ShouldEqual, "High")
			})

			Convey("Then a second trigger conflicts", func() {
				again := do(mux, http.MethodPost, "/alert/trigger", `{"severity":"Low"}`)
				So(again.Code, ShouldEqual, http.StatusConflict)
				So(again.Body.String(), ShouldContainSubstring, `"remaining_seconds":20`)
			})

			Convey("Then the state reflects it", func() {
				st := do(mux, http.MethodGet, "/state", "")
				So(st.Code, ShouldEqual, http.StatusOK)
				So(st.Body.String(), ShouldContainSubstring, `"state":"armed"`)
			})

			Convey("Then cancel disarms once and stays idempotent", func() {
				first := do(mux, http.MethodPost, "/alert/cancel", "")
				So(first.Code, ShouldEqual, http.StatusOK)
				So(first.Body.String(), ShouldContainSubstring, `"cancelled":true`)
				second := do(mux, http.MethodPost, "/alert/cancel", "")
				So(second.Code, ShouldEqual, http.StatusOK)
				So(second.Body.String(), ShouldContainSubstring, `"cancelled":false`)
			})
		})

		Convey("When the body is empty", func() {
			w := do(mux, http.MethodPost, "/alert/trigger", "")

			Convey("Then the severity defaults to Medium", func() {
				So(w.Code, ShouldEqual, http.StatusOK)
				So(w.Body.String(), ShouldContainSubstring, `"severity":"Medium"`)
			})
		})

		Convey("When the severity is unknown", func() {
			w := do(mux, http.MethodPost, "/alert/trigger", `{"severity":"Catastrophic"}`)

			Convey("Then it is a bad request", func() {
				So(w.Code, ShouldEqual, http.StatusBadRequest)
				So(w.Body.String(), ShouldContainSubstring, "invalid_severity")
			})
		})

		Convey("When listing recent alerts", func() {
			deps.records = []model.EpisodeRecord{{Episode: "e1", Outcome: model.OutcomeCancelled}}

			Convey("Then the default limit applies", func() {
				w := do(mux, http.MethodGet, "/alerts", "")
				So(w.Code, ShouldEqual, http.StatusOK)
				So(deps.lastLimit, ShouldEqual, api.DefaultAlertsLimit)
				So(w.Body.String(), ShouldContainSubstring, `"episode":"e1"`)
			})

			Convey("Then invalid and excessive limits are rejected", func() {
				So(do(mux, http.MethodGet, "/alerts?limit=0", "").Code, ShouldEqual, http.StatusBadRequest)
				So(do(mux, http.MethodGet, "/alerts?limit=abc", "").Code, ShouldEqual, http.StatusBadRequest)
				So(do(mux, http.MethodGet, "/alerts?limit=101", "").Code, ShouldEqual, http.StatusBadRequest)
			})
		})

		Convey("When the alert limit is configured lower", func() {
			small := newMux(deps, api.WithMaxAlerts(5))

			Convey("Then the default is capped", func() {
				w := do(small, http.MethodGet, "/alerts", "")
				So(w.Code, ShouldEqual, http.StatusOK)
				So(w.Body.String(), ShouldEqual, "[]\n")
				So(deps.lastLimit, ShouldEqual, 5)
			})
		})
	})
}

func TestStreamEndpoints(t *testing.T) {
	Convey("Given a running system", t, func() {
		deps := newFakeDeps()
		mux := newMux(deps)

		Convey("When a telemetry sample is pushed", func() {
			body := `{"event_id":"g1","latitude":2.7258,"longitude":101.9424,"speed_kmh":45.5,"ts":"2026-01-02T15:04:05Z"}`
			w := do(mux, http.MethodPost, "/telemetry", body)

			Convey("Then it is accepted and queued", func() {
				So(w.Code, ShouldEqual, http.StatusAccepted)
				So(deps.events, ShouldHaveLength, 1)
				So(deps.events[0].Kind, ShouldEqual, model.EventTelemetry)
				So(deps.events[0].Telemetry.Speed(), ShouldEqual, 45.5)
				So(deps.events[0].Telemetry.Timestamp.Year(), ShouldEqual, 2026)
			})

			Convey("Then a replay is acknowledged as a duplicate", func() {
				again := do(mux, http.MethodPost, "/telemetry", body)
				So(again.Code, ShouldEqual, http.StatusOK)
				So(again.Body.String(), ShouldContainSubstring, `"duplicate":true`)
				So(deps.events, ShouldHaveLength, 1)
			})
		})

		Convey("When a sample is out of range", func() {
			w := do(mux, http.MethodPost, "/telemetry", `{"latitude":123,"longitude":0}`)

			Convey("Then it is rejected", func() {
				So(w.Code, ShouldEqual, http.StatusBadRequest)
				So(w.Body.String(), ShouldContainSubstring, "Latitude")
			})
		})

		Convey("When the queue is full", func() {
			deps.full = true
			w := do(mux, http.MethodPost, "/voice/transcripts", `{"event_id":"v1","text":"cancel"}`)

			Convey("Then the push is pushed back", func() {
				So(w.Code, ShouldEqual, http.StatusTooManyRequests)
				So(w.Body.String(), ShouldContainSubstring, "backpressure")
			})
		})

		Convey("When a transcript has no text", func() {
			w := do(mux, http.MethodPost, "/voice/transcripts", `{"text":""}`)

			Convey("Then it is a bad request", func() {
				So(w.Code, ShouldEqual, http.StatusBadRequest)
			})
		})

		Convey("When unknown fields are sent", func() {
			w := do(mux, http.MethodPost, "/voice/transcripts", `{"text":"call wife","volume":11}`)

			Convey("Then the body is refused", func() {
				So(w.Code, ShouldEqual, http.StatusBadRequest)
			})
		})

		Convey("When riding and listening are toggled", func() {
			start := do(mux, http.MethodPost, "/ride/start", "")
			listen := do(mux, http.MethodPost, "/voice/listen", `{"active":true}`)
			stop := do(mux, http.MethodPost, "/ride/stop", "")

			Convey("Then every toggle reports its result", func() {
				So(start.Body.String(), ShouldContainSubstring, `"changed":true`)
				So(listen.Body.String(), ShouldContainSubstring, `"listening":true`)
				So(stop.Body.String(), ShouldContainSubstring, `"riding":false`)
			})
		})

		Convey("When the listen flag is missing", func() {
			w := do(mux, http.MethodPost, "/voice/listen", `{}`)

			Convey("Then it is a bad request", func() {
				So(w.Code, ShouldEqual, http.StatusBadRequest)
			})
		})
	})
}

func TestContactEndpoints(t *testing.T) {
	Convey("Given a directory with a protected contact", t, func() {
		deps := newFakeDeps()
		mux := newMux(deps)

		Convey("Then listing shows both groups", func() {
			w := do(mux, http.MethodGet, "/contacts", "")
			So(w.Code, ShouldEqual, http.StatusOK)
			var view types.ContactsView
			So(json.Unmarshal(w.Body.Bytes(), &view), ShouldBeNil)
			So(view.All, ShouldHaveLength, 2)
			So(view.Primary, ShouldHaveLength, 2)
			So(view.Secondary, ShouldBeEmpty)
		})

		Convey("When adding a contact", func() {
			w := do(mux, http.MethodPost, "/contacts", `{"name":"Brother","phone":"+60199998888"}`)

			Convey("Then it is created", func() {
				So(w.Code, ShouldEqual, http.StatusCreated)
				So(w.Body.String(), ShouldContainSubstring, `"priority":3`)
			})
		})

		Convey("When a contact lacks a phone", func() {
			w := do(mux, http.MethodPost, "/contacts", `{"name":"Nobody"}`)

			Convey("Then validation fails", func() {
				So(w.Code, ShouldEqual, http.StatusBadRequest)
				So(w.Body.String(), ShouldContainSubstring, "Phone")
			})
		})

		Convey("Then removal maps directory errors", func() {
			So(do(mux, http.MethodDelete, "/contacts/sos", "").Code, ShouldEqual, http.StatusForbidden)
			So(do(mux, http.MethodDelete, "/contacts/ghost", "").Code, ShouldEqual, http.StatusNotFound)
			So(do(mux, http.MethodDelete, "/contacts/wife", "").Code, ShouldEqual, http.StatusNoContent)
		})

		Convey("Then reassignment maps directory errors", func() {
			So(do(mux, http.MethodPut, "/contacts/wife/priority", `{"priority":0}`).Code, ShouldEqual, http.StatusBadRequest)
			So(do(mux, http.MethodPut, "/contacts/sos/priority", `{"priority":3}`).Code, ShouldEqual, http.StatusForbidden)
			So(do(mux, http.MethodPut, "/contacts/ghost/priority", `{"priority":3}`).Code, ShouldEqual, http.StatusNotFound)

			w := do(mux, http.MethodPut, "/contacts/wife/priority", `{"priority":7}`)
			So(w.Code, ShouldEqual, http.StatusOK)
			So(w.Body.String(), ShouldContainSubstring, `"priority":7`)
		})
	})
}

func TestProfileEndpoints(t *testing.T) {
	Convey("Given a rider profile", t, func() {
		deps := newFakeDeps()
		deps.profile = model.RiderProfile{FullName: "John Rider", IDNumber: "950101-14-5555"}
		mux := newMux(deps)

		Convey("Then it can be read", func() {
			w := do(mux, http.MethodGet, "/profile", "")
			So(w.Code, ShouldEqual, http.StatusOK)
			So(w.Body.String(), ShouldContainSubstring, `"full_name":"John Rider"`)
		})

		Convey("When it is replaced", func() {
			w := do(mux, http.MethodPut, "/profile", `{"full_name":"Siti Rider","id_number":"990202-10-1234","vehicle_brand":"Yamaha Y15ZR"}`)

			Convey("Then the new profile is stored", func() {
				So(w.Code, ShouldEqual, http.StatusOK)
				So(deps.profile.FullName, ShouldEqual, "Siti Rider")
				So(deps.profile.VehicleBrand, ShouldEqual, "Yamaha Y15ZR")
			})
		})

		Convey("When the replacement has no name", func() {
			w := do(mux, http.MethodPut, "/profile", `{"id_number":"x"}`)

			Convey("Then it is refused", func() {
				So(w.Code, ShouldEqual, http.StatusBadRequest)
				So(deps.profile.FullName, ShouldEqual, "John Rider")
			})
		})

		Convey("When the language is switched", func() {
			w := do(mux, http.MethodPut, "/language", `{"language":"cn"}`)

			Convey("Then the locale follows", func() {
				So(w.Code, ShouldEqual, http.StatusOK)
				So(w.Body.String(), ShouldContainSubstring, `"locale":"zh-CN"`)
				So(deps.lang, ShouldEqual, model.LanguageCN)
			})
		})

		Convey("When the language is unknown", func() {
			w := do(mux, http.MethodPut, "/language", `{"language":"FR"}`)

			Convey("Then it is refused", func() {
				So(w.Code, ShouldEqual, http.StatusBadRequest)
				So(w.Body.String(), ShouldContainSubstring, "unknown_language")
			})
		})
	})
}

func TestError(t *testing.T) {
	Convey("Given an API error with kind and cause", t, func() {
		cause := errors.New("boom")
		err := api.WrapKind("api.op", api.ErrBadRequest, cause)

		Convey("Then both are reachable with errors.Is", func() {
			So(errors.Is(err, api.ErrBadRequest), ShouldBeTrue)
			So(errors.Is(err, cause), ShouldBeTrue)
			So(err.Error(), ShouldEqual, "api.op: bad request: boom")
		})

		Convey("Then kind-only and cause-only errors render cleanly", func() {
			So(api.NewKind("api.op", api.ErrConflict).Error(), ShouldEqual, "api.op: conflict")
			So(api.Wrap("api.op", cause).Error(), ShouldEqual, "api.op: boom")
		})
	})
}
