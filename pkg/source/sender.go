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

package source

import (
	"context"
	"net"
	"time"

	"github.com/cenkalti/backoff"

	"jinr.ru/greenlab/go-scope/pkg/layers"
	"jinr.ru/greenlab/go-scope/pkg/log"
)

// Sender ships one frame per revolution to the scope server.
type Sender struct {
	context.Context
	conn net.Conn
	gen  *Generator
	seq  uint32
}

func NewSender(ctx context.Context, address string, gen *Generator) (*Sender, error) {
	log.Info("Initializing sample source: destination: %s", address)
	conn, err := net.Dial("udp", address)
	if err != nil {
		return nil, err
	}
	return &Sender{
		Context: ctx,
		conn:    conn,
		gen:     gen,
	}, nil
}

func (s *Sender) NextSeq() uint32 {
	seq := s.seq
	s.seq++
	return seq
}

func (s *Sender) nextFrame() ([]byte, error) {
	samples, elapsed := s.gen.Next()
	fr, err := layers.NewFrameLayer(s.NextSeq(), elapsed, samples)
	if err != nil {
		return nil, err
	}
	log.Debug("Sending frame: seq: %d", fr.Seq)
	return layers.SerializeFrame(fr)
}

// Send generates and sends a single revolution.
func (s *Sender) Send() error {
	data, err := s.nextFrame()
	if err != nil {
		return err
	}
	_, err = s.conn.Write(data)
	return err
}

// sendRetry keeps writing the same frame while the server refuses it,
// e.g. when it has not been started yet.
func (s *Sender) sendRetry() error {
	data, err := s.nextFrame()
	if err != nil {
		return err
	}
	op := func() error {
		_, err := s.conn.Write(data)
		if err != nil {
			log.Warning("Error while sending frame: %s", err)
		}
		return err
	}
	return backoff.Retry(op, backoff.WithContext(&backoff.ExponentialBackOff{
		InitialInterval:     50 * time.Millisecond,
		RandomizationFactor: 0.,
		Multiplier:          2.,
		MaxInterval:         2 * time.Second,
		MaxElapsedTime:      0,
		Clock:               backoff.SystemClock,
	}, s.Context))
}

// Run sends revolutions in real time until the context is done.
func (s *Sender) Run() error {
	defer s.conn.Close()

	period := time.Duration(s.gen.ElapsedUs()) * time.Microsecond
	if period <= 0 {
		period = time.Millisecond
	}
	ticker := time.NewTicker(period)
	defer ticker.Stop()

	log.Info("Sending frames every %s", period)
	for {
		select {
		case <-s.Context.Done():
			return s.Context.Err()
		case <-ticker.C:
			if err := s.sendRetry(); err != nil {
				if s.Context.Err() != nil {
					return s.Context.Err()
				}
				log.Error("Error while sending frame: %s", err)
				return err
			}
		}
	}
}

func (s *Sender) Close() error {
	return s.conn.Close()
}
