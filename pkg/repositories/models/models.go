package models

import "time"

// Run is one simulation of a scene.
type Run struct {
	ID        string    `json:"id"`
	Scene     string    `json:"scene"`
	Frames    uint64    `json:"frames"`
	Finished  bool      `json:"finished"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Checkpoint is the latest saved snapshot of a run.
type Checkpoint struct {
	RunID string `json:"runId"`
	Frame uint64 `json:"frame"`
	// Snapshot is the snapshot as produced by messages.SerializeSnapshot.
	Snapshot  []byte    `json:"-"`
	CreatedAt time.Time `json:"createdAt"`
}
