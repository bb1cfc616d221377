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

	"github.com/google/gopacket"
	"github.com/google/gopacket/layers"
	"github.com/snksoft/crc"

	"jinr.ru/greenlab/go-scope/pkg/log"
)

const (
	// FrameLayerNum identifies the layer
	FrameLayerNum = 1996
	// FrameSync is a magic number that appears in the beginning of each frame
	FrameSync = 0x53434f50
	// FrameHeaderSize is Sync(4) Seq(4) ElapsedUs(4) ChannelCount(2) SampleCount(2)
	FrameHeaderSize = 16
	// FrameTrailerSize is the crc32 sum over header and samples
	FrameTrailerSize = 4
	// FrameMaxSize keeps a frame inside a single UDP datagram
	FrameMaxSize = 65507
)

// crcTable is CRC-32/ISO-HDLC, the same sum as zlib and Ethernet
var crcTable = crc.NewTable(crc.CRC32)

func checksum(data []byte) uint32 {
	return uint32(crcTable.CalculateCRC(data))
}

type FrameHeader struct {
	Sync uint32
	// Seq is incremented by the source for every revolution
	Seq uint32
	// ElapsedUs is how long the source took to fill one revolution
	ElapsedUs    uint32
	ChannelCount uint16
	SampleCount  uint16
}

// FrameLayer carries one revolution of the raw ADC ring for every channel.
// Samples are stored channel-major, little-endian.
type FrameLayer struct {
	layers.BaseLayer
	FrameHeader
	Samples [][]uint16
	Crc     uint32
}

var FrameLayerType = gopacket.RegisterLayerType(FrameLayerNum,
	gopacket.LayerTypeMetadata{Name: "FrameLayerType", Decoder: gopacket.DecodeFunc(decodeFrameLayer)})

// NewFrameLayer builds a frame out of per channel sample buffers of equal length.
func NewFrameLayer(seq, elapsedUs uint32, samples [][]uint16) (*FrameLayer, error) {
	if len(samples) == 0 || len(samples) > 0xffff {
		return nil, ErrFrameShape{What: "channel count must be in range 1..65535"}
	}
	n := len(samples[0])
	for _, s := range samples {
		if len(s) != n {
			return nil, ErrFrameShape{What: "all channels must have the same number of samples"}
		}
	}
	if n > 0xffff || frameSize(len(samples), n) > FrameMaxSize {
		return nil, ErrFrameShape{What: "frame does not fit into a datagram"}
	}
	return &FrameLayer{
		FrameHeader: FrameHeader{
			Sync:         FrameSync,
			Seq:          seq,
			ElapsedUs:    elapsedUs,
			ChannelCount: uint16(len(samples)),
			SampleCount:  uint16(n),
		},
		Samples: samples,
	}, nil
}

func frameSize(channels, samples int) int {
	return FrameHeaderSize + 2*channels*samples + FrameTrailerSize
}

// LayerType returns the type of the frame layer in the layer catalog
func (fr *FrameLayer) LayerType() gopacket.LayerType {
	return FrameLayerType
}

func (fr *FrameLayer) CanDecode() gopacket.LayerClass {
	return FrameLayerType
}

// NextLayerType returns LayerTypeZero since a frame is the only layer of a datagram
func (fr *FrameLayer) NextLayerType() gopacket.LayerType {
	return gopacket.LayerTypeZero
}

// SerializeHeader serializes only the frame header to a buffer
func (fr *FrameLayer) SerializeHeader(buf []byte) {
	binary.LittleEndian.PutUint32(buf[0:4], fr.Sync)
	binary.LittleEndian.PutUint32(buf[4:8], fr.Seq)
	binary.LittleEndian.PutUint32(buf[8:12], fr.ElapsedUs)
	binary.LittleEndian.PutUint16(buf[12:14], fr.ChannelCount)
	binary.LittleEndian.PutUint16(buf[14:16], fr.SampleCount)
}

// SerializeTo serializes the frame into bytes and writes the bytes to the SerializeBuffer.
// With ComputeChecksums the Crc field is recalculated, otherwise it is written as is.
func (fr *FrameLayer) SerializeTo(b gopacket.SerializeBuffer, opts gopacket.SerializeOptions) error {
	if opts.FixLengths {
		fr.ChannelCount = uint16(len(fr.Samples))
		fr.SampleCount = 0
		if len(fr.Samples) > 0 {
			fr.SampleCount = uint16(len(fr.Samples[0]))
		}
	}
	channels, samples := int(fr.ChannelCount), int(fr.SampleCount)
	if len(fr.Samples) < channels {
		return ErrFrameShape{What: "fewer sample buffers than ChannelCount"}
	}

	bytes, err := b.AppendBytes(frameSize(channels, samples))
	if err != nil {
		return err
	}
	fr.SerializeHeader(bytes[:FrameHeaderSize])
	offset := FrameHeaderSize
	for ch := 0; ch < channels; ch++ {
		if len(fr.Samples[ch]) < samples {
			return ErrFrameShape{What: "sample buffer shorter than SampleCount"}
		}
		for _, v := range fr.Samples[ch][:samples] {
			binary.LittleEndian.PutUint16(bytes[offset:offset+2], v)
			offset += 2
		}
	}
	if opts.ComputeChecksums {
		fr.Crc = checksum(bytes[:offset])
	}
	binary.LittleEndian.PutUint32(bytes[offset:offset+4], fr.Crc)
	return nil
}

// DecodeFromBytes attempts to decode the byte slice as a frame
func (fr *FrameLayer) DecodeFromBytes(data []byte, df gopacket.DecodeFeedback) error {
	if len(data) < FrameHeaderSize+FrameTrailerSize {
		df.SetTruncated()
		return ErrFrameTooShort{Length: len(data), Want: FrameHeaderSize + FrameTrailerSize}
	}
	sync := binary.LittleEndian.Uint32(data[0:4])
	if sync != FrameSync {
		return ErrFrameSync{Sync: sync}
	}

	fr.Sync = sync
	fr.Seq = binary.LittleEndian.Uint32(data[4:8])
	fr.ElapsedUs = binary.LittleEndian.Uint32(data[8:12])
	fr.ChannelCount = binary.LittleEndian.Uint16(data[12:14])
	fr.SampleCount = binary.LittleEndian.Uint16(data[14:16])

	size := frameSize(int(fr.ChannelCount), int(fr.SampleCount))
	if len(data) < size {
		df.SetTruncated()
		return ErrFrameTooShort{Length: len(data), Want: size}
	}
	body := data[:size-FrameTrailerSize]
	fr.Crc = binary.LittleEndian.Uint32(data[size-FrameTrailerSize : size])
	if sum := checksum(body); sum != fr.Crc {
		return ErrFrameCrc{Want: fr.Crc, Got: sum}
	}

	fr.BaseLayer = layers.BaseLayer{
		Contents: data[:size],
		Payload:  data[size:],
	}

	n := int(fr.SampleCount)
	fr.Samples = make([][]uint16, fr.ChannelCount)
	offset := FrameHeaderSize
	for ch := range fr.Samples {
		buf := make([]uint16, n)
		for i := range buf {
			buf[i] = binary.LittleEndian.Uint16(data[offset : offset+2])
			offset += 2
		}
		fr.Samples[ch] = buf
	}
	return nil
}

// Channel returns the samples of a channel or nil when the frame does not carry it
func (fr *FrameLayer) Channel(ch int) []uint16 {
	if ch < 0 || ch >= len(fr.Samples) {
		return nil
	}
	return fr.Samples[ch]
}

func decodeFrameLayer(data []byte, p gopacket.PacketBuilder) error {
	fr := &FrameLayer{}
	err := fr.DecodeFromBytes(data, p)
	if err != nil {
		log.Debug("Error while decoding frame layer: %s", err)
		return err
	}
	p.AddLayer(fr)
	return nil
}

// DecodeFrame decodes a datagram without building a gopacket.Packet
func DecodeFrame(data []byte) (*FrameLayer, error) {
	fr := &FrameLayer{}
	if err := fr.DecodeFromBytes(data, gopacket.NilDecodeFeedback); err != nil {
		return nil, err
	}
	return fr, nil
}

// SerializeFrame returns the wire form of a frame with a freshly computed crc
func SerializeFrame(fr *FrameLayer) ([]byte, error) {
	buf := gopacket.NewSerializeBuffer()
	opts := gopacket.SerializeOptions{FixLengths: true, ComputeChecksums: true}
	if err := gopacket.SerializeLayers(buf, opts, fr); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
