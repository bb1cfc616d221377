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
	"encoding/binary"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"go.etcd.io/bbolt"
	"sigs.k8s.io/yaml"

	"jinr.ru/greenlab/go-scope/pkg/chart"
	"jinr.ru/greenlab/go-scope/pkg/log"
	"jinr.ru/greenlab/go-scope/pkg/srv"
)

const (
	BucketNamePrefix = "snapshots_"
)

// Snapshot is a captured screen together with the settings it was taken with.
type Snapshot struct {
	ID     uint64              `json:"id"`
	Time   time.Time           `json:"time"`
	Note   string              `json:"note,omitempty"`
	Status chart.ChannelStatus `json:"status"`
	// Raw is the capture window in ADC codes in ring order
	Raw   []uint16 `json:"raw"`
	Frame *Frame   `json:"frame"`
}

type SnapshotState struct {
	context.Context
	DB *bbolt.DB
}

func NewSnapshotState(ctx context.Context, dbPath string) (*SnapshotState, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, err
	}
	db, err := bbolt.Open(dbPath, 0600, &bbolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, err
	}
	// create buckets for all channels
	if err = db.Update(func(tx *bbolt.Tx) error {
		for ch := chart.Channel1; ch < chart.ChannelCount; ch++ {
			if _, err := tx.CreateBucketIfNotExists([]byte(bucketName(ch))); err != nil {
				return err
			}
		}
		return nil
	}); err != nil {
		db.Close()
		return nil, err
	}
	return &SnapshotState{
		Context: ctx,
		DB:      db,
	}, nil
}

func uint64ToByte(v uint64) []byte {
	b := make([]byte, 8)
	binary.BigEndian.PutUint64(b, v)
	return b
}

func bucketName(ch chart.Channel) string {
	return fmt.Sprintf("%s%d", BucketNamePrefix, int(ch)+1)
}

func (s *SnapshotState) Close() {
	s.DB.Close()
}

// Save stores the snapshot and fills in its ID.
func (s *SnapshotState) Save(ch chart.Channel, snap *Snapshot) error {
	return s.DB.Update(func(tx *bbolt.Tx) error {
		b := tx.Bucket([]byte(bucketName(ch)))
		if b == nil {
			return srv.ErrNotFound{What: fmt.Sprintf("bucket %s", bucketName(ch))}
		}
		id, err := b.NextSequence()
		if err != nil {
			return err
		}
		snap.ID = id
		data, err := yaml.Marshal(snap)
		if err != nil {
			return err
		}
		log.Debug("Saving snapshot: channel: %s id: %d", ch, id)
		return b.Put(uint64ToByte(id), data)
	})
}

func (s *SnapshotState) Get(ch chart.Channel, id uint64) (*Snapshot, error) {
	snap := &Snapshot{}
	if err := s.DB.View(func(tx *bbolt.Tx) error {
		b := tx.Bucket([]byte(bucketName(ch)))
		if b == nil {
			return srv.ErrNotFound{What: fmt.Sprintf("bucket %s", bucketName(ch))}
		}
		data := b.Get(uint64ToByte(id))
		if data == nil {
			return srv.ErrNotFound{What: fmt.Sprintf("snapshot %d of %s", id, ch)}
		}
		return yaml.Unmarshal(data, snap)
	}); err != nil {
		return nil, err
	}
	return snap, nil
}

// List returns all snapshots of a channel, oldest first. Screens are left out.
func (s *SnapshotState) List(ch chart.Channel) ([]*Snapshot, error) {
	snaps := []*Snapshot{}
	if err := s.DB.View(func(tx *bbolt.Tx) error {
		b := tx.Bucket([]byte(bucketName(ch)))
		if b == nil {
			return srv.ErrNotFound{What: fmt.Sprintf("bucket %s", bucketName(ch))}
		}
		return b.ForEach(func(k, v []byte) error {
			snap := &Snapshot{}
			if err := yaml.Unmarshal(v, snap); err != nil {
				return err
			}
			snap.Raw = nil
			snap.Frame = nil
			snaps = append(snaps, snap)
			return nil
		})
	}); err != nil {
		return nil, err
	}
	return snaps, nil
}

func (s *SnapshotState) Delete(ch chart.Channel, id uint64) error {
	return s.DB.Update(func(tx *bbolt.Tx) error {
		b := tx.Bucket([]byte(bucketName(ch)))
		if b == nil {
			return srv.ErrNotFound{What: fmt.Sprintf("bucket %s", bucketName(ch))}
		}
		if b.Get(uint64ToByte(id)) == nil {
			return srv.ErrNotFound{What: fmt.Sprintf("snapshot %d of %s", id, ch)}
		}
		return b.Delete(uint64ToByte(id))
	})
}
