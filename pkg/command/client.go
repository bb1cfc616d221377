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
	"errors"
	"fmt"
	"strings"

	"github.com/imroc/req"

	"jinr.ru/greenlab/go-scope/pkg/chart"
	"jinr.ru/greenlab/go-scope/pkg/config"
	"jinr.ru/greenlab/go-scope/pkg/srv/scope"
)

type ApiClient struct {
	*config.Config
	ApiPrefix string
}

func NewApiClient(cfg *config.Config) *ApiClient {
	return &ApiClient{
		Config:    cfg,
		ApiPrefix: fmt.Sprintf("http://%s/api", cfg.ApiAddress()),
	}
}

func (c *ApiClient) channelUrl(ch int, action string) string {
	if action == "" {
		return fmt.Sprintf("%s/channel/%d", c.ApiPrefix, ch)
	}
	return fmt.Sprintf("%s/channel/%d/%s", c.ApiPrefix, ch, action)
}

func checkStatus(r *req.Resp) error {
	if r.Response().StatusCode != 200 {
		return errors.New(strings.TrimSpace(fmt.Sprintf("%s: %s", r.Response().Status, r.String())))
	}
	return nil
}

func (c *ApiClient) getJSON(url string, v interface{}) error {
	r, err := req.Get(url)
	if err != nil {
		return err
	}
	if err = checkStatus(r); err != nil {
		return err
	}
	return r.ToJSON(v)
}

func (c *ApiClient) postJSON(url string, body, v interface{}) error {
	r, err := req.Post(url, req.BodyJSON(body))
	if err != nil {
		return err
	}
	if err = checkStatus(r); err != nil {
		return err
	}
	if v == nil {
		return nil
	}
	return r.ToJSON(v)
}

// Status returns the state of all channels and the trigger
func (c *ApiClient) Status() (*scope.Status, error) {
	status := &scope.Status{}
	if err := c.getJSON(fmt.Sprintf("%s/status", c.ApiPrefix), status); err != nil {
		return nil, err
	}
	return status, nil
}

// Channel returns the state of a channel, ch is 1-based
func (c *ApiClient) Channel(ch int) (*chart.ChannelStatus, error) {
	status := &chart.ChannelStatus{}
	if err := c.getJSON(c.channelUrl(ch, ""), status); err != nil {
		return nil, err
	}
	return status, nil
}

// Enable switches a channel on or off
func (c *ApiClient) Enable(ch int, enabled bool) (*chart.ChannelStatus, error) {
	status := &chart.ChannelStatus{}
	if err := c.postJSON(c.channelUrl(ch, "enable"), &scope.EnableSetup{Enabled: enabled}, status); err != nil {
		return nil, err
	}
	return status, nil
}

// Action runs, pauses or toggles acquisition on a channel
func (c *ApiClient) Action(ch int, action string) (*chart.ChannelStatus, error) {
	status := &chart.ChannelStatus{}
	if err := c.getJSON(c.channelUrl(ch, action), status); err != nil {
		return nil, err
	}
	return status, nil
}

// Voltage sets the voltage scale and/or offset of a channel. Nil values are left alone.
func (c *ApiClient) Voltage(ch int, scale, offset *float32) (*chart.ChannelStatus, error) {
	status := &chart.ChannelStatus{}
	if err := c.postJSON(c.channelUrl(ch, "voltage"), &scope.ScaleSetup{Scale: scale, Offset: offset}, status); err != nil {
		return nil, err
	}
	return status, nil
}

// Time sets the time scale and/or offset of a channel. Nil values are left alone.
func (c *ApiClient) Time(ch int, scale, offset *float32) (*chart.ChannelStatus, error) {
	status := &chart.ChannelStatus{}
	if err := c.postJSON(c.channelUrl(ch, "time"), &scope.ScaleSetup{Scale: scale, Offset: offset}, status); err != nil {
		return nil, err
	}
	return status, nil
}

// TriggerLevel sets the trigger level of a channel either as a code or in mV
func (c *ApiClient) TriggerLevel(ch int, setup *scope.TriggerLevelSetup) (*chart.ChannelStatus, error) {
	status := &chart.ChannelStatus{}
	if err := c.postJSON(c.channelUrl(ch, "trigger"), setup, status); err != nil {
		return nil, err
	}
	return status, nil
}

// Trigger returns the trigger polarity
func (c *ApiClient) Trigger() (*scope.TriggerSetup, error) {
	setup := &scope.TriggerSetup{}
	if err := c.getJSON(fmt.Sprintf("%s/trigger", c.ApiPrefix), setup); err != nil {
		return nil, err
	}
	return setup, nil
}

// SetTrigger sets the trigger polarity
func (c *ApiClient) SetTrigger(ascending, descending bool) (*scope.TriggerSetup, error) {
	setup := &scope.TriggerSetup{}
	body := &scope.TriggerSetup{Ascending: ascending, Descending: descending}
	if err := c.postJSON(fmt.Sprintf("%s/trigger", c.ApiPrefix), body, setup); err != nil {
		return nil, err
	}
	return setup, nil
}

// Frame returns the latest screen of a channel
func (c *ApiClient) Frame(ch int) (*scope.Frame, error) {
	frame := &scope.Frame{}
	if err := c.getJSON(fmt.Sprintf("%s/frame/%d", c.ApiPrefix, ch), frame); err != nil {
		return nil, err
	}
	return frame, nil
}

// SaveSnapshot stores the current screen of a channel on the server
func (c *ApiClient) SaveSnapshot(ch int, note string) (*scope.Snapshot, error) {
	snap := &scope.Snapshot{}
	if err := c.postJSON(fmt.Sprintf("%s/snapshot/%d", c.ApiPrefix, ch), &scope.SnapshotSetup{Note: note}, snap); err != nil {
		return nil, err
	}
	return snap, nil
}

// Snapshots lists stored snapshots of a channel
func (c *ApiClient) Snapshots(ch int) ([]*scope.Snapshot, error) {
	var snaps []*scope.Snapshot
	if err := c.getJSON(fmt.Sprintf("%s/snapshot/%d", c.ApiPrefix, ch), &snaps); err != nil {
		return nil, err
	}
	return snaps, nil
}

// Snapshot returns a stored snapshot including its screen
func (c *ApiClient) Snapshot(ch int, id uint64) (*scope.Snapshot, error) {
	snap := &scope.Snapshot{}
	if err := c.getJSON(fmt.Sprintf("%s/snapshot/%d/%d", c.ApiPrefix, ch, id), snap); err != nil {
		return nil, err
	}
	return snap, nil
}

// DeleteSnapshot removes a stored snapshot
func (c *ApiClient) DeleteSnapshot(ch int, id uint64) error {
	r, err := req.Delete(fmt.Sprintf("%s/snapshot/%d/%d", c.ApiPrefix, ch, id))
	if err != nil {
		return err
	}
	return checkStatus(r)
}
