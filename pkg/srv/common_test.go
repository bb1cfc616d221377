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

package srv

import (
	"context"
	"io"
	"net"
	"testing"
	"time"

	"github.com/google/gopacket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReadPacketData(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	s := &Server{Context: ctx, ChIn: make(chan InPacket, 1)}

	addr := &net.UDPAddr{IP: net.IPv4(127, 0, 0, 1), Port: 4000}
	s.ChIn <- InPacket{
		Data:        []byte{1, 2, 3},
		CaptureInfo: gopacket.CaptureInfo{Length: 3, CaptureLength: 3, Timestamp: time.Now(), AncillaryData: []interface{}{addr}},
	}
	data, ci, err := s.ReadPacketData()
	require.NoError(t, err)
	assert.Equal(t, []byte{1, 2, 3}, data)
	assert.Equal(t, 3, ci.Length)

	cancel()
	_, _, err = s.ReadPacketData()
	assert.ErrorIs(t, err, io.EOF)
}

func TestPacketSourceStopsWithContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	s := &Server{Context: ctx, ChIn: make(chan InPacket)}
	addr := &net.UDPAddr{IP: net.IPv4(127, 0, 0, 1), Port: 4000}

	source := gopacket.NewPacketSource(s, gopacket.LayerTypePayload)
	packets := source.Packets()
	s.ChIn <- InPacket{
		Data:        []byte{0xaa},
		CaptureInfo: gopacket.CaptureInfo{Length: 1, CaptureLength: 1, AncillaryData: []interface{}{addr}},
	}
	packet := <-packets
	got, err := GetAddrPort(packet)
	require.NoError(t, err)
	assert.Equal(t, addr, got)

	cancel()
	select {
	case _, ok := <-packets:
		assert.False(t, ok)
	case <-time.After(5 * time.Second):
		t.Fatal("packet source did not stop")
	}
}

func TestGetAddrPortWithoutAncillaryData(t *testing.T) {
	packet := gopacket.NewPacket([]byte{1}, gopacket.LayerTypePayload, gopacket.Default)
	_, err := GetAddrPort(packet)
	assert.ErrorIs(t, err, ErrGetAddr{})
}
