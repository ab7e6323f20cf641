package pipeline

import (
	"github.com/banshee-data/simlidar/internal/lidar"
)

// DefaultPointDiffThreshold is the point-count change that triggers a new
// snapshot.
const DefaultPointDiffThreshold = 100

// RecordPolicy decides whether a point set differs enough from the last
// recorded one to be worth writing.
type RecordPolicy struct {
	Threshold int

	prev    int
	hasPrev bool
}

// NewRecordPolicy returns a policy with the given threshold.
func NewRecordPolicy(threshold int) *RecordPolicy {
	return &RecordPolicy{Threshold: threshold}
}

// ShouldRecord reports whether n points should be recorded: always when
// nothing has been recorded yet, otherwise only when the count moved by
// strictly more than Threshold.
func (p *RecordPolicy) ShouldRecord(n int) bool {
	if !p.hasPrev {
		return true
	}
	diff := n - p.prev
	if diff < 0 {
		diff = -diff
	}
	return diff > p.Threshold
}

// Commit marks n as the last recorded count. Call it only after a
// successful write.
func (p *RecordPolicy) Commit(n int) {
	p.prev = n
	p.hasPrev = true
}

// Previous returns the last committed count.
func (p *RecordPolicy) Previous() (int, bool) {
	return p.prev, p.hasPrev
}

// SnapshotSink persists a frame. index is the loop tick the snapshot was
// taken on; the returned path identifies the written file.
type SnapshotSink interface {
	Snapshot(index int, f *lidar.Frame) (string, error)
}
