package core

import "time"

// SyncOp is the remote write a pending sync entry stands for.
type SyncOp string

const (
	SyncInsert SyncOp = "insert"
	SyncUpdate SyncOp = "update"
	SyncDelete SyncOp = "delete"
)

func (op SyncOp) Valid() bool {
	switch op {
	case SyncInsert, SyncUpdate, SyncDelete:
		return true
	}
	return false
}

// PendingSync is a purchase write not yet acknowledged by the backend.
// Revision grows with every local change of the entry; a remote
// confirmation only clears the revision it was sent with.
type PendingSync struct {
	Op       SyncOp    `json:"op"`
	Purchase Purchase  `json:"purchase"`
	Revision int64     `json:"revision"`
	QueuedAt time.Time `json:"queued_at"`
}
