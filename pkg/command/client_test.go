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

package command

import (
	"context"
	"net"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"jinr.ru/greenlab/go-scope/pkg/adc"
	"jinr.ru/greenlab/go-scope/pkg/config"
	"jinr.ru/greenlab/go-scope/pkg/source"
	"jinr.ru/greenlab/go-scope/pkg/srv/scope"
)

func freeTCPPort(t *testing.T) int {
	l, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer l.Close()
	return l.Addr().(*net.TCPAddr).Port
}

func freeUDPPort(t *testing.T) int {
	c, err := net.ListenUDP("udp", &net.UDPAddr{IP: net.IPv4(127, 0, 0, 1)})
	require.NoError(t, err)
	defer c.Close()
	return c.LocalAddr().(*net.UDPAddr).Port
}

func startServer(t *testing.T) (*config.Config, context.Context) {
	cfg := config.NewDefaultConfig()
	cfg.DBPath = filepath.Join(t.TempDir(), "snapshots.db")
	cfg.ApiPort = freeTCPPort(t)
	cfg.SourcePort = freeUDPPort(t)

	ctx, cancel := context.WithCancel(context.Background())
	s, err := scope.NewScopeServer(ctx, cfg)
	require.NoError(t, err)
	done := make(chan struct{})
	go func() {
		defer close(done)
		s.Run()
	}()
	t.Cleanup(func() {
		cancel()
		<-done
	})

	client := NewApiClient(cfg)
	require.Eventually(t, func() bool {
		_, err := client.Status()
		return err == nil
	}, 5*time.Second, 10*time.Millisecond)
	return cfg, ctx
}

func float32p(v float32) *float32 {
	return &v
}

func TestApiClient(t *testing.T) {
	cfg, _ := startServer(t)
	client := NewApiClient(cfg)

	st, err := client.Channel(1)
	require.NoError(t, err)
	assert.Equal(t, "running", st.State)

	st, err = client.Enable(2, true)
	require.NoError(t, err)
	assert.Equal(t, "running", st.State)

	st, err = client.Action(2, "pause")
	require.NoError(t, err)
	assert.Equal(t, "pausing", st.State)

	st, err = client.Voltage(1, float32p(200), nil)
	require.NoError(t, err)
	assert.Equal(t, float32(200), st.VoltageScale)

	st, err = client.Time(1, nil, float32p(-1000))
	require.NoError(t, err)
	assert.Equal(t, float32(-1000), st.TimeOffset)

	trig, err := client.SetTrigger(false, true)
	require.NoError(t, err)
	assert.True(t, trig.Descending)
	trig, err = client.Trigger()
	require.NoError(t, err)
	assert.False(t, trig.Ascending)

	level := uint16(4000)
	st, err = client.TriggerLevel(1, &scope.TriggerLevelSetup{Level: &level})
	require.NoError(t, err)
	assert.Equal(t, level, st.TriggerLevel)

	_, err = client.Channel(7)
	assert.Error(t, err)

	snap, err := client.SaveSnapshot(1, "client")
	require.NoError(t, err)
	snaps, err := client.Snapshots(1)
	require.NoError(t, err)
	require.Len(t, snaps, 1)
	assert.Equal(t, "client", snaps[0].Note)
	got, err := client.Snapshot(1, snap.ID)
	require.NoError(t, err)
	assert.Len(t, got.Raw, 800)
	require.NoError(t, client.DeleteSnapshot(1, snap.ID))
	assert.Error(t, client.DeleteSnapshot(1, snap.ID))
}

func TestSimulatorFeedsServer(t *testing.T) {
	cfg, ctx := startServer(t)
	client := NewApiClient(cfg)

	gen, err := source.NewGenerator(adc.DefaultConverter(), 10240, 1024,
		source.Wave{Waveform: source.WaveformSine, Frequency: 50, Amplitude: 1000, Offset: 1650})
	require.NoError(t, err)
	sender, err := source.NewSender(ctx, cfg.SourceAddress(), gen)
	require.NoError(t, err)
	defer sender.Close()

	require.Eventually(t, func() bool {
		if err := sender.Send(); err != nil {
			return false
		}
		frame, err := client.Frame(1)
		return err == nil && frame.Published > 0
	}, 10*time.Second, 20*time.Millisecond)

	frame, err := client.Frame(1)
	require.NoError(t, err)
	assert.Len(t, frame.Points, cfg.PointCount)
}
