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
	"fmt"
)

// ErrGetAddr returned when we can not get the address and port of the source that sent a packet
type ErrGetAddr struct{}

func (e ErrGetAddr) Error() string {
	return "Error while getting peer address and port"
}

// ErrUnknownOperation returned when an API action is not supported
type ErrUnknownOperation struct {
	What string
}

func (e ErrUnknownOperation) Error() string {
	return fmt.Sprintf("Unknown operation: %s", e.What)
}

// ErrUnknownChannel returned when an API request names a channel the scope does not have
type ErrUnknownChannel struct {
	Channel string
}

func (e ErrUnknownChannel) Error() string {
	return fmt.Sprintf("Unknown channel: %s. Must be 1 or 2", e.Channel)
}

// ErrNotFound returned when a stored record does not exist
type ErrNotFound struct {
	What string
}

func (e ErrNotFound) Error() string {
	return fmt.Sprintf("Not found: %s", e.What)
}
