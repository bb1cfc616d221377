/*
 Licensed under the Apache License, Version 2.0 (the "License");
 you may not use this file except in compliance with the License.
 You may obtain a copy of the License at

     https://www.apache.org/licenses/LICENSE-2.0

 Unless required by applicable law or agreed to in writing, software
 distributed under the License is distributed on an "AS IS" BASIS,
 WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 See the License for the specific language governing permissions and
 limitations under the License.
*/

// go-scope API
//
// # RESTful APIs to interact with the go-scope server
//
// Schemes: http
// Host: localhost:8010
// Version: 1.0.0
//
//	Consumes:
//	- application/json
//
//	Produces:
//	- application/json
//
// swagger:meta
package scope

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"

	"jinr.ru/greenlab/go-scope/pkg/chart"
	"jinr.ru/greenlab/go-scope/pkg/config"
	"jinr.ru/greenlab/go-scope/pkg/log"
	"jinr.ru/greenlab/go-scope/pkg/srv"
)

// EnableSetup switches a channel on or off
type EnableSetup struct {
	Enabled bool `json:"enabled"`
}

// ScaleSetup changes the scale and/or offset of an axis. Absent fields are left alone.
// Voltage values are in mV, time values in us.
type ScaleSetup struct {
	Scale  *float32 `json:"scale,omitempty"`
	Offset *float32 `json:"offset,omitempty"`
}

// TriggerLevelSetup sets the trigger level either as an ADC code or in mV
type TriggerLevelSetup struct {
	Level   *uint16  `json:"level,omitempty"`
	Voltage *float32 `json:"voltage,omitempty"`
}

// TriggerSetup is the shared trigger polarity. Both false disables the trigger.
type TriggerSetup struct {
	Ascending  bool `json:"ascending"`
	Descending bool `json:"descending"`
}

// SnapshotSetup ...
type SnapshotSetup struct {
	Note string `json:"note,omitempty"`
}

// Status is the state of the whole scope
type Status struct {
	Channels []chart.ChannelStatus `json:"channels"`
	Trigger  TriggerSetup          `json:"trigger"`
}

type ApiServer struct {
	context.Context
	*config.Config
	*mux.Router
	scope *ScopeServer
}

func NewApiServer(ctx context.Context, cfg *config.Config, scope *ScopeServer) (*ApiServer, error) {
	log.Info("Initializing API server with address: %s port: %d", cfg.IP, cfg.ApiPort)

	docs, err := newApiDocs()
	if err != nil {
		return nil, err
	}

	s := &ApiServer{
		Context: ctx,
		Config:  cfg,
		scope:   scope,
	}
	s.configureRouter(docs)
	return s, nil
}

// Handler is the router wrapped into access logging and CORS.
func (s *ApiServer) Handler() http.Handler {
	cors := handlers.CORS(
		handlers.AllowedOrigins([]string{"*"}),
		handlers.AllowedMethods([]string{"GET", "POST", "DELETE", "OPTIONS"}),
		handlers.AllowedHeaders([]string{"Content-Type"}),
	)
	return handlers.LoggingHandler(log.Writer(), cors(s.Router))
}

// Run starts listening and stops when the context is done
func (s *ApiServer) Run() error {
	log.Info("Starting API server: address: %s", s.ApiAddress())
	httpServer := &http.Server{
		Handler:           s.Handler(),
		Addr:              s.ApiAddress(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		<-s.Context.Done()
		httpServer.Close()
	}()
	err := httpServer.ListenAndServe()
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

func (s *ApiServer) configureRouter(docs *apiDocs) {
	s.Router = mux.NewRouter()
	subRouter := s.Router.PathPrefix("/api").Subrouter()
	// swagger:operation GET /status status
	// ---
	// summary: state of all channels and the trigger
	subRouter.HandleFunc("/status", s.handleStatus()).Methods("GET")
	// swagger:operation GET /channel/{ch} channel
	// ---
	// summary: state of a channel
	subRouter.HandleFunc("/channel/{ch}", s.handleChannel()).Methods("GET")
	subRouter.HandleFunc("/channel/{ch}/enable", s.handleEnable()).Methods("POST")
	// swagger:operation GET /channel/{ch}/{action:run|pause|toggle} channel
	// ---
	// summary: run or pause acquisition, a pause takes effect once the window in flight is complete
	subRouter.HandleFunc("/channel/{ch}/{action:run|pause|toggle}", s.handleAction()).Methods("GET")
	subRouter.HandleFunc("/channel/{ch}/voltage", s.handleVoltage()).Methods("POST")
	subRouter.HandleFunc("/channel/{ch}/time", s.handleTime()).Methods("POST")
	subRouter.HandleFunc("/channel/{ch}/trigger", s.handleTriggerLevel()).Methods("POST")
	subRouter.HandleFunc("/trigger", s.handleTriggerGet()).Methods("GET")
	subRouter.HandleFunc("/trigger", s.handleTriggerSet()).Methods("POST")
	subRouter.HandleFunc("/frame/{ch}", s.handleFrame()).Methods("GET")
	subRouter.HandleFunc("/snapshot/{ch}", s.handleSnapshotSave()).Methods("POST")
	subRouter.HandleFunc("/snapshot/{ch}", s.handleSnapshotList()).Methods("GET")
	subRouter.HandleFunc("/snapshot/{ch}/{id:[0-9]+}", s.handleSnapshotGet()).Methods("GET")
	subRouter.HandleFunc("/snapshot/{ch}/{id:[0-9]+}", s.handleSnapshotDelete()).Methods("DELETE")
	s.Router.HandleFunc("/swagger.json", docs.handleSpec()).Methods("GET")
	s.Router.Handle("/docs", docs.handleRedoc()).Methods("GET")
}

func writeJSON(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Error("Error while encoding response: %s", err)
	}
}

func parseChannel(r *http.Request) (chart.Channel, error) {
	value := mux.Vars(r)["ch"]
	n, err := strconv.Atoi(value)
	if err != nil || n < 1 || n > int(chart.ChannelCount) {
		return 0, srv.ErrUnknownChannel{Channel: value}
	}
	return chart.Channel(n - 1), nil
}

// channelRequest parses the channel and the optional JSON body of a request.
func channelRequest(w http.ResponseWriter, r *http.Request, body interface{}) (chart.Channel, bool) {
	ch, err := parseChannel(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusNotFound)
		return 0, false
	}
	if body != nil {
		if err := json.NewDecoder(r.Body).Decode(body); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return 0, false
		}
	}
	return ch, true
}

// apply runs fn on the event loop and replies with the resulting channel state.
// Rejected values leave the state unchanged, which is what the caller gets back.
func (s *ApiServer) apply(w http.ResponseWriter, ch chart.Channel, fn func(h *chart.Handler)) {
	var status chart.ChannelStatus
	err := s.scope.Do(func(h *chart.Handler, _ *FrameSink) {
		fn(h)
		status = h.Status(ch)
	})
	if err != nil {
		http.Error(w, err.Error(), http.StatusServiceUnavailable)
		return
	}
	writeJSON(w, status)
}

func (s *ApiServer) handleStatus() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		status := &Status{}
		err := s.scope.Do(func(h *chart.Handler, _ *FrameSink) {
			for ch := chart.Channel1; ch < chart.ChannelCount; ch++ {
				status.Channels = append(status.Channels, h.Status(ch))
			}
			status.Trigger.Ascending, status.Trigger.Descending = h.TriggerPolarity()
		})
		if err != nil {
			http.Error(w, err.Error(), http.StatusServiceUnavailable)
			return
		}
		writeJSON(w, status)
	}
}

func (s *ApiServer) handleChannel() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ch, ok := channelRequest(w, r, nil)
		if !ok {
			return
		}
		s.apply(w, ch, func(*chart.Handler) {})
	}
}

func (s *ApiServer) handleEnable() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		setup := &EnableSetup{}
		ch, ok := channelRequest(w, r, setup)
		if !ok {
			return
		}
		log.Debug("Handling enable request: channel: %s enabled: %t", ch, setup.Enabled)
		s.apply(w, ch, func(h *chart.Handler) {
			h.SetEnabled(ch, setup.Enabled)
		})
	}
}

func (s *ApiServer) handleAction() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ch, ok := channelRequest(w, r, nil)
		if !ok {
			return
		}
		action := mux.Vars(r)["action"]
		log.Debug("Handling channel action request: channel: %s action: %s", ch, action)
		var fn func(h *chart.Handler)
		switch action {
		case "run":
			fn = func(h *chart.Handler) { h.SetRunning(ch, true) }
		case "pause":
			fn = func(h *chart.Handler) { h.SetRunning(ch, false) }
		case "toggle":
			fn = func(h *chart.Handler) { h.ToggleRunning(ch) }
		default:
			err := srv.ErrUnknownOperation{What: "Wrong channel action. Must be one of run/pause/toggle"}
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		s.apply(w, ch, fn)
	}
}

func (s *ApiServer) handleVoltage() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		setup := &ScaleSetup{}
		ch, ok := channelRequest(w, r, setup)
		if !ok {
			return
		}
		s.apply(w, ch, func(h *chart.Handler) {
			if setup.Scale != nil && !h.SetVoltageScale(ch, *setup.Scale) {
				log.Warning("Voltage scale %g rejected for %s", *setup.Scale, ch)
			}
			if setup.Offset != nil && !h.SetVoltageOffset(ch, *setup.Offset) {
				log.Warning("Voltage offset %g rejected for %s", *setup.Offset, ch)
			}
		})
	}
}

func (s *ApiServer) handleTime() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		setup := &ScaleSetup{}
		ch, ok := channelRequest(w, r, setup)
		if !ok {
			return
		}
		s.apply(w, ch, func(h *chart.Handler) {
			if setup.Scale != nil && !h.SetTimeScale(ch, *setup.Scale) {
				log.Warning("Time scale %g rejected for %s", *setup.Scale, ch)
			}
			if setup.Offset != nil && !h.SetTimeOffset(ch, *setup.Offset) {
				log.Warning("Time offset %g rejected for %s", *setup.Offset, ch)
			}
		})
	}
}

func (s *ApiServer) handleTriggerLevel() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		setup := &TriggerLevelSetup{}
		ch, ok := channelRequest(w, r, setup)
		if !ok {
			return
		}
		if setup.Level == nil && setup.Voltage == nil {
			http.Error(w, "Either level or voltage must be given", http.StatusBadRequest)
			return
		}
		s.apply(w, ch, func(h *chart.Handler) {
			var level uint16
			if setup.Level != nil {
				level = *setup.Level
			} else {
				level = h.Converter().VoltageToCode(*setup.Voltage)
			}
			if !h.SetTriggerLevel(ch, level) {
				log.Warning("Trigger level %d rejected for %s", level, ch)
			}
		})
	}
}

func (s *ApiServer) handleTriggerGet() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		setup := &TriggerSetup{}
		err := s.scope.Do(func(h *chart.Handler, _ *FrameSink) {
			setup.Ascending, setup.Descending = h.TriggerPolarity()
		})
		if err != nil {
			http.Error(w, err.Error(), http.StatusServiceUnavailable)
			return
		}
		writeJSON(w, setup)
	}
}

func (s *ApiServer) handleTriggerSet() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		setup := &TriggerSetup{}
		if err := json.NewDecoder(r.Body).Decode(setup); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		log.Debug("Handling trigger request: ascending: %t descending: %t", setup.Ascending, setup.Descending)
		err := s.scope.Do(func(h *chart.Handler, _ *FrameSink) {
			h.SetTriggerPolarity(setup.Ascending, setup.Descending)
		})
		if err != nil {
			http.Error(w, err.Error(), http.StatusServiceUnavailable)
			return
		}
		writeJSON(w, setup)
	}
}

func (s *ApiServer) handleFrame() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ch, ok := channelRequest(w, r, nil)
		if !ok {
			return
		}
		var frame *Frame
		err := s.scope.Do(func(_ *chart.Handler, sink *FrameSink) {
			frame = sink.Frame(ch)
		})
		if err != nil {
			http.Error(w, err.Error(), http.StatusServiceUnavailable)
			return
		}
		writeJSON(w, frame)
	}
}

func (s *ApiServer) handleSnapshotSave() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ch, ok := channelRequest(w, r, nil)
		if !ok {
			return
		}
		setup := &SnapshotSetup{}
		if r.ContentLength != 0 {
			if err := json.NewDecoder(r.Body).Decode(setup); err != nil {
				http.Error(w, err.Error(), http.StatusBadRequest)
				return
			}
		}
		snap := &Snapshot{Time: time.Now().UTC(), Note: setup.Note}
		err := s.scope.Do(func(h *chart.Handler, sink *FrameSink) {
			snap.Status = h.Status(ch)
			snap.Raw = h.RawWindow(ch)
			snap.Frame = sink.Frame(ch)
		})
		if err != nil {
			http.Error(w, err.Error(), http.StatusServiceUnavailable)
			return
		}
		if err := s.scope.Snapshots().Save(ch, snap); err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		log.Info("Saved snapshot %d of %s", snap.ID, ch)
		writeJSON(w, snap)
	}
}

func (s *ApiServer) handleSnapshotList() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ch, ok := channelRequest(w, r, nil)
		if !ok {
			return
		}
		snaps, err := s.scope.Snapshots().List(ch)
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		writeJSON(w, snaps)
	}
}

func snapshotID(r *http.Request) (uint64, error) {
	return strconv.ParseUint(mux.Vars(r)["id"], 10, 64)
}

func (s *ApiServer) handleSnapshotGet() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ch, ok := channelRequest(w, r, nil)
		if !ok {
			return
		}
		id, err := snapshotID(r)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		snap, err := s.scope.Snapshots().Get(ch, id)
		if errors.As(err, &srv.ErrNotFound{}) {
			http.Error(w, err.Error(), http.StatusNotFound)
			return
		}
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		writeJSON(w, snap)
	}
}

func (s *ApiServer) handleSnapshotDelete() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ch, ok := channelRequest(w, r, nil)
		if !ok {
			return
		}
		id, err := snapshotID(r)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		err = s.scope.Snapshots().Delete(ch, id)
		if errors.As(err, &srv.ErrNotFound{}) {
			http.Error(w, err.Error(), http.StatusNotFound)
			return
		}
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
	}
}
