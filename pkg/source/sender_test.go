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
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"jinr.ru/greenlab/go-scope/pkg/adc"
	"jinr.ru/greenlab/go-scope/pkg/layers"
)

func listen(t *testing.T) *net.UDPConn {
	conn, err := net.ListenUDP("udp", &net.UDPAddr{IP: net.IPv4(127, 0, 0, 1)})
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn
}

func receive(t *testing.T, conn *net.UDPConn) *layers.FrameLayer {
	buf := make([]byte, layers.FrameMaxSize)
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))
	n, _, err := conn.ReadFromUDP(buf)
	require.NoError(t, err)
	fr, err := layers.DecodeFrame(buf[:n])
	require.NoError(t, err)
	return fr
}

func TestSenderSendsSequencedFrames(t *testing.T) {
	conn := listen(t)
	gen, err := NewGenerator(adc.DefaultConverter(), 10240, 256, Wave{Waveform: WaveformSine, Frequency: 50, Amplitude: 1000, Offset: 1650})
	require.NoError(t, err)

	s, err := NewSender(context.Background(), conn.LocalAddr().String(), gen)
	require.NoError(t, err)
	defer s.Close()

	require.NoError(t, s.Send())
	require.NoError(t, s.Send())

	first := receive(t, conn)
	second := receive(t, conn)
	assert.Equal(t, uint32(0), first.Seq)
	assert.Equal(t, uint32(1), second.Seq)
	assert.Equal(t, uint32(25000), first.ElapsedUs)
	assert.Equal(t, uint16(1), first.ChannelCount)
	assert.Len(t, first.Channel(0), 256)
}

func TestSenderRunStopsWithContext(t *testing.T) {
	conn := listen(t)
	gen, err := NewGenerator(adc.DefaultConverter(), 100000, 100, Wave{Waveform: WaveformSquare, Frequency: 100, Amplitude: 100, Offset: 1000})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	s, err := NewSender(ctx, conn.LocalAddr().String(), gen)
	require.NoError(t, err)

	done := make(chan error, 1)
	go func() { done <- s.Run() }()

	fr := receive(t, conn)
	assert.Equal(t, uint32(1000), fr.ElapsedUs)

	cancel()
	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(5 * time.Second):
		t.Fatal("sender did not stop")
	}
}

func TestSenderRunWaitsForServer(t *testing.T) {
	probe := listen(t)
	addr := probe.LocalAddr().(*net.UDPAddr)
	probe.Close()

	gen, err := NewGenerator(adc.DefaultConverter(), 100000, 100, Wave{Waveform: WaveformSine, Frequency: 100, Amplitude: 100, Offset: 1000})
	require.NoError(t, err)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	s, err := NewSender(ctx, addr.String(), gen)
	require.NoError(t, err)

	done := make(chan error, 1)
	go func() { done <- s.Run() }()

	// let a few writes get refused before the server shows up
	time.Sleep(100 * time.Millisecond)
	conn, err := net.ListenUDP("udp", addr)
	require.NoError(t, err)
	defer conn.Close()

	fr := receive(t, conn)
	assert.Equal(t, uint16(1), fr.ChannelCount)

	cancel()
	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(5 * time.Second):
		t.Fatal("sender did not stop")
	}
}
