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

package scope

import (
	"context"
	"net"
	"time"

	"github.com/google/gopacket"

	"jinr.ru/greenlab/go-scope/pkg/adc"
	"jinr.ru/greenlab/go-scope/pkg/chart"
	"jinr.ru/greenlab/go-scope/pkg/config"
	"jinr.ru/greenlab/go-scope/pkg/layers"
	"jinr.ru/greenlab/go-scope/pkg/log"
	"jinr.ru/greenlab/go-scope/pkg/srv"
)

const (
	InChSize      = 100
	CommandChSize = 16
)

// ScopeServer receives raw revolutions from a sample source and runs them
// through the chart pipeline.
//
// The event loop goroutine is the only one touching the chart handler and
// the frame sink. Frames, ticks and API commands are all serialized by it.
type ScopeServer struct {
	srv.Server
	handler  *chart.Handler
	sink     *FrameSink
	state    *SnapshotState
	api      *ApiServer
	frames   chan queuedFrame
	commands chan func()

	// owned by the decoder goroutine
	seq     uint32
	haveSeq bool
	// revolutions were lost since the last queued frame
	lost bool
}

// queuedFrame travels from the decoder to the event loop. restart marks the
// first frame after lost revolutions, the capture windows start over right
// before it is consumed.
type queuedFrame struct {
	*layers.FrameLayer
	restart bool
}

func NewScopeServer(ctx context.Context, cfg *config.Config) (*ScopeServer, error) {
	log.Info("Initializing scope server with address: %s port: %d", cfg.IP, cfg.SourcePort)

	uaddr, err := net.ResolveUDPAddr("udp", cfg.SourceAddress())
	if err != nil {
		return nil, err
	}

	state, err := NewSnapshotState(ctx, cfg.DBPath)
	if err != nil {
		return nil, err
	}

	queueSize := cfg.FrameQueueSize
	if queueSize <= 0 {
		queueSize = config.DefaultFrameQueueSize
	}

	sink := NewFrameSink(cfg.PointCount, cfg.AxisMax, cfg.YDivisions)
	s := &ScopeServer{
		Server: srv.Server{
			Context: ctx,
			Config:  cfg,
			UDPAddr: uaddr,
			ChIn:    make(chan srv.InPacket, InChSize),
		},
		handler:  chart.NewHandler(ChartParams(cfg), adc.NewConverter(cfg.Resolution, cfg.VRef), sink),
		sink:     sink,
		state:    state,
		frames:   make(chan queuedFrame, queueSize),
		commands: make(chan func(), CommandChSize),
	}
	apiServer, err := NewApiServer(ctx, cfg, s)
	if err != nil {
		state.Close()
		return nil, err
	}
	s.api = apiServer
	return s, nil
}

// ChartParams builds the chart bounds out of the chart section of the config.
func ChartParams(cfg *config.Config) chart.Params {
	return chart.Params{
		Divisions:         cfg.Divisions,
		ValuesPerDivision: cfg.ValuesPerDivision,
		MinTimeScale:      cfg.MinTimeScale,
		MaxTimeScale:      cfg.MaxTimeScale,
		MinVoltageScale:   cfg.MinVoltageScale,
		MaxVoltageScale:   cfg.MaxVoltageScale,
		MaxVoltageOffset:  cfg.MaxVoltageOffset,
		TimeScale:         cfg.TimeScale,
		VoltageScale:      cfg.VoltageScale,
	}
}

func (s *ScopeServer) Run() error {
	conn, err := net.ListenUDP("udp", s.UDPAddr)
	if err != nil {
		return err
	}
	defer conn.Close()
	defer s.state.Close()

	errChan := make(chan error, 2)
	buffer := make([]byte, layers.FrameMaxSize)

	// Read UDP packets from wire and put them to input queue
	go func() {
		for {
			length, addr, readErr := conn.ReadFromUDP(buffer)
			if readErr != nil {
				errChan <- readErr
				return
			}
			captureInfo := gopacket.CaptureInfo{
				Length:        length,
				CaptureLength: length,
				Timestamp:     time.Now(),
				AncillaryData: []interface{}{addr},
			}
			packet := srv.InPacket{CaptureInfo: captureInfo, Data: make([]byte, length)}
			copy(packet.Data, buffer[:length])
			// a dropped datagram shows up as a sequence gap in the decoder
			select {
			case s.ChIn <- packet:
			default:
				log.Debug("Input queue is full. Drop packet from %s", addr)
			}
		}
	}()

	go s.decode()
	go s.loop()

	go func() {
		if apiErr := s.api.Run(); apiErr != nil {
			errChan <- apiErr
		}
	}()

	select {
	case <-s.Context.Done():
		return s.Context.Err()
	case err = <-errChan:
		return err
	}
}

// decode parses queued datagrams and hands complete frames to the event loop.
func (s *ScopeServer) decode() {
	source := gopacket.NewPacketSource(s, layers.FrameLayerType)
	for packet := range source.Packets() {
		if errLayer := packet.ErrorLayer(); errLayer != nil {
			addr, _ := srv.GetAddrPort(packet)
			log.Error("Malformed frame from %s: %s", addr, errLayer.Error())
			s.fault()
			continue
		}
		frameLayer := packet.Layer(layers.FrameLayerType)
		if frameLayer == nil {
			continue
		}
		s.handleFrame(frameLayer.(*layers.FrameLayer))
	}
}

func (s *ScopeServer) handleFrame(fr *layers.FrameLayer) {
	if s.haveSeq && fr.Seq != s.seq+1 {
		log.Error("Frame sequence gap: expected %d got %d", s.seq+1, fr.Seq)
		s.fault()
	}
	s.seq = fr.Seq
	s.haveSeq = true

	select {
	case s.frames <- queuedFrame{FrameLayer: fr, restart: s.lost}:
		s.lost = false
	default:
		log.Debug("Frame queue is full. Drop revolution %d", fr.Seq)
		s.fault()
	}
}

// fault makes the event loop restart every capture window in flight before
// the next frame that makes it into the queue.
func (s *ScopeServer) fault() {
	s.lost = true
}

func (s *ScopeServer) loop() {
	period := time.Duration(s.RoutinePeriod) * time.Millisecond
	if period <= 0 {
		period = config.DefaultRoutinePeriod * time.Millisecond
	}
	ticker := time.NewTicker(period)
	defer ticker.Stop()

	for {
		select {
		case <-s.Context.Done():
			return
		case fr := <-s.frames:
			if fr.restart {
				log.Debug("Restarting capture windows after lost revolutions")
				s.handler.Restart()
			}
			s.update(fr.FrameLayer)
		case <-ticker.C:
			s.handler.Routine()
		case cmd := <-s.commands:
			cmd()
		}
	}
}

func (s *ScopeServer) update(fr *layers.FrameLayer) {
	var raw [chart.ChannelCount][]uint16
	for ch := range raw {
		raw[ch] = fr.Channel(ch)
	}
	s.handler.Update(raw, fr.ElapsedUs)
}

// Do runs fn on the event loop and waits for it to finish.
func (s *ScopeServer) Do(fn func(h *chart.Handler, sink *FrameSink)) error {
	done := make(chan struct{})
	cmd := func() {
		defer close(done)
		fn(s.handler, s.sink)
	}
	select {
	case s.commands <- cmd:
	case <-s.Context.Done():
		return s.Context.Err()
	}
	select {
	case <-done:
		return nil
	case <-s.Context.Done():
		return s.Context.Err()
	}
}

func (s *ScopeServer) Snapshots() *SnapshotState {
	return s.state
}

func (s *ScopeServer) Close() {
	s.state.Close()
}
