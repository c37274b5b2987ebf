package amqp

import (
	"encoding/json"
	"fmt"
	"time"
)

// Sync operations carried on the queue.
const (
	OpSync   = "sync"
	OpDelete = "delete"
)

// SyncMessage is a lightweight queue message for syncing an activity to the
// remote store. It carries only identifiers; the worker fetches the full row
// from the local database.
type SyncMessage struct {
	Op        string    `json:"op"`
	ID        int64     `json:"id"`
	Version   int64     `json:"version"`
	RemoteRef string    `json:"remote_ref,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// NewActivitySyncMessage builds a message asking the worker to push the
// activity to the remote store.
func NewActivitySyncMessage(id, version int64) *SyncMessage {
	return &SyncMessage{
		Op:        OpSync,
		ID:        id,
		Version:   version,
		Timestamp: time.Now(),
	}
}

// NewActivityDeleteMessage builds a message asking the worker to remove the
// remote document. RemoteRef may be empty when the row was never synced.
func NewActivityDeleteMessage(id, version int64, remoteRef string) *SyncMessage {
	return &SyncMessage{
		Op:        OpDelete,
		ID:        id,
		Version:   version,
		RemoteRef: remoteRef,
		Timestamp: time.Now(),
	}
}

func (m *SyncMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

func SyncMessageFromJSON(data []byte) (*SyncMessage, error) {
	var msg SyncMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	switch msg.Op {
	case OpSync, OpDelete:
		return &msg, nil
	default:
		return nil, fmt.Errorf("unknown sync operation %q", msg.Op)
	}
}
