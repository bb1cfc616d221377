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
	"fmt"
)

// ErrFrameTooShort returned when a datagram is shorter than its header says
type ErrFrameTooShort struct {
	Length int
	Want   int
}

func (e ErrFrameTooShort) Error() string {
	return fmt.Sprintf("Frame too short: %d bytes, must be at least %d", e.Length, e.Want)
}

// ErrFrameSync returned when a datagram does not start with FrameSync
type ErrFrameSync struct {
	Sync uint32
}

func (e ErrFrameSync) Error() string {
	return fmt.Sprintf("Wrong frame sync 0x%08x. Must be 0x%08x", e.Sync, uint32(FrameSync))
}

// ErrFrameCrc returned when the crc32 trailer does not match the frame contents
type ErrFrameCrc struct {
	Want uint32
	Got  uint32
}

func (e ErrFrameCrc) Error() string {
	return fmt.Sprintf("Frame crc mismatch: trailer 0x%08x, computed 0x%08x", e.Want, e.Got)
}

// ErrFrameShape returned when sample buffers can not be put into a frame
type ErrFrameShape struct {
	What string
}

func (e ErrFrameShape) Error() string {
	return fmt.Sprintf("Wrong frame shape: %s", e.What)
}
