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

package layers

import (
	"encoding/binary"
	"testing"

	"github.com/google/gopacket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testFrame(t *testing.T) *FrameLayer {
	fr, err := NewFrameLayer(7, 102400, [][]uint16{
		{1, 2, 3, 0x3fff},
		{10, 20, 30, 40},
	})
	require.NoError(t, err)
	return fr
}

func TestSerializeFrameLayout(t *testing.T) {
	data, err := SerializeFrame(testFrame(t))
	require.NoError(t, err)
	require.Len(t, data, FrameHeaderSize+2*2*4+FrameTrailerSize)

	assert.Equal(t, uint32(FrameSync), binary.LittleEndian.Uint32(data[0:4]))
	assert.Equal(t, uint32(7), binary.LittleEndian.Uint32(data[4:8]))
	assert.Equal(t, uint32(102400), binary.LittleEndian.Uint32(data[8:12]))
	assert.Equal(t, uint16(2), binary.LittleEndian.Uint16(data[12:14]))
	assert.Equal(t, uint16(4), binary.LittleEndian.Uint16(data[14:16]))
	// channel-major
	assert.Equal(t, uint16(0x3fff), binary.LittleEndian.Uint16(data[22:24]))
	assert.Equal(t, uint16(10), binary.LittleEndian.Uint16(data[24:26]))
}

func TestDecodeFrame(t *testing.T) {
	data, err := SerializeFrame(testFrame(t))
	require.NoError(t, err)

	fr, err := DecodeFrame(data)
	require.NoError(t, err)
	assert.Equal(t, uint32(7), fr.Seq)
	assert.Equal(t, uint32(102400), fr.ElapsedUs)
	assert.Equal(t, []uint16{1, 2, 3, 0x3fff}, fr.Channel(0))
	assert.Equal(t, []uint16{10, 20, 30, 40}, fr.Channel(1))
	assert.Nil(t, fr.Channel(2))
}

func TestDecodeFrameThroughPacket(t *testing.T) {
	data, err := SerializeFrame(testFrame(t))
	require.NoError(t, err)

	packet := gopacket.NewPacket(data, FrameLayerType, gopacket.Default)
	require.Nil(t, packet.ErrorLayer())
	layer := packet.Layer(FrameLayerType)
	require.NotNil(t, layer)
	assert.Equal(t, []uint16{10, 20, 30, 40}, layer.(*FrameLayer).Channel(1))
}

func TestDecodeFrameErrors(t *testing.T) {
	good, err := SerializeFrame(testFrame(t))
	require.NoError(t, err)

	_, err = DecodeFrame(good[:10])
	assert.ErrorAs(t, err, &ErrFrameTooShort{})

	_, err = DecodeFrame(good[:len(good)-2])
	assert.ErrorAs(t, err, &ErrFrameTooShort{})

	badSync := append([]byte{}, good...)
	badSync[0] ^= 0xff
	_, err = DecodeFrame(badSync)
	assert.ErrorAs(t, err, &ErrFrameSync{})

	badSample := append([]byte{}, good...)
	badSample[FrameHeaderSize] ^= 0x01
	_, err = DecodeFrame(badSample)
	var crcErr ErrFrameCrc
	require.ErrorAs(t, err, &crcErr)
	assert.NotEqual(t, crcErr.Want, crcErr.Got)

	packet := gopacket.NewPacket(badSample, FrameLayerType, gopacket.Default)
	assert.NotNil(t, packet.ErrorLayer())
	assert.Nil(t, packet.Layer(FrameLayerType))
}

func TestSerializeKeepsCrcWithoutComputeChecksums(t *testing.T) {
	fr := testFrame(t)
	fr.Crc = 0xdeadbeef
	buf := gopacket.NewSerializeBuffer()
	require.NoError(t, gopacket.SerializeLayers(buf, gopacket.SerializeOptions{}, fr))

	_, err := DecodeFrame(buf.Bytes())
	assert.ErrorAs(t, err, &ErrFrameCrc{})
}

func TestNewFrameLayerShape(t *testing.T) {
	_, err := NewFrameLayer(0, 1, nil)
	assert.ErrorAs(t, err, &ErrFrameShape{})

	_, err = NewFrameLayer(0, 1, [][]uint16{{1, 2}, {1}})
	assert.ErrorAs(t, err, &ErrFrameShape{})

	_, err = NewFrameLayer(0, 1, [][]uint16{make([]uint16, 20000), make([]uint16, 20000)})
	assert.ErrorAs(t, err, &ErrFrameShape{})
}
