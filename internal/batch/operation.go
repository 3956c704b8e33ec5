package batch

import (
	"math"
	"sync"
	"sync/atomic"
	"time"
)

// maxStoredResults caps the per-item result list kept in memory. Results past
// the cap are dropped from the list but still counted in the tallies.
const maxStoredResults = 1000

// Operation is the mutable record of one batch run. The runner goroutine is
// the only writer; pollers read snapshots through Progress and Summary. All
// field access goes through the mutex so readers never observe a torn record.
type Operation struct {
	mu sync.Mutex

	batchID     string
	status      Status
	total       int
	processed   int
	success     int
	failed      int
	skipped     int
	currentItem string
	message     string
	results     []ItemResult
	startTime   time.Time
	endTime     time.Time

	cancelRequested atomic.Bool
}

func newOperation(batchID string) *Operation {
	return &Operation{
		batchID:   batchID,
		status:    StatusPending,
		startTime: time.Now(),
	}
}

func (o *Operation) markRunning(message string) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.status = StatusRunning
	o.message = message
}

func (o *Operation) setMessage(message string) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.message = message
}

func (o *Operation) setTotal(total int) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.total = total
}

// beginItem records that the runner moved on to the next item.
func (o *Operation) beginItem(title string) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.processed++
	o.currentItem = title
}

// record tallies one item outcome and appends it, subject to the cap.
func (o *Operation) record(res ItemResult) {
	o.mu.Lock()
	defer o.mu.Unlock()
	switch {
	case res.Success && res.Skipped:
		o.skipped++
	case res.Success:
		o.success++
	default:
		o.failed++
	}
	if len(o.results) < maxStoredResults {
		o.results = append(o.results, res)
	}
}

// finish moves the operation to a terminal status, records the end time and
// clears the current item. A second call on an already-terminal operation is
// a no-op so the runner's recover path cannot overwrite the real outcome.
func (o *Operation) finish(status Status, message string) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.status.Terminal() {
		return
	}
	o.status = status
	o.message = message
	o.endTime = time.Now()
	o.currentItem = ""
}

// RequestCancel flags a running operation for cooperative cancellation. The
// runner honors the flag between items. Returns false when the operation is
// not running.
func (o *Operation) RequestCancel() bool {
	o.mu.Lock()
	running := o.status == StatusRunning
	o.mu.Unlock()
	if !running {
		return false
	}
	o.cancelRequested.Store(true)
	return true
}

func (o *Operation) isCancelRequested() bool {
	return o.cancelRequested.Load()
}

// isExpired reports whether the operation is terminal and ended before cutoff.
func (o *Operation) isExpired(cutoff time.Time) bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.status.Terminal() && !o.endTime.IsZero() && o.endTime.Before(cutoff)
}

// Progress returns a consistent snapshot for pollers.
func (o *Operation) Progress() Progress {
	o.mu.Lock()
	defer o.mu.Unlock()
	return Progress{
		BatchID:     o.batchID,
		Status:      o.status,
		Total:       o.total,
		Processed:   o.processed,
		Success:     o.success,
		Failed:      o.failed,
		Skipped:     o.skipped,
		CurrentItem: o.currentItem,
		Message:     o.message,
	}
}

// Summary returns the full result view. Meaningful once the status is
// terminal; callers are expected to check.
func (o *Operation) Summary() ResultSummary {
	o.mu.Lock()
	defer o.mu.Unlock()

	var duration float64
	if !o.endTime.IsZero() {
		duration = math.Round(o.endTime.Sub(o.startTime).Seconds()*100) / 100
	}

	results := make([]ItemResult, len(o.results))
	copy(results, o.results)

	return ResultSummary{
		BatchID:         o.batchID,
		Status:          o.status,
		Total:           o.total,
		Success:         o.success,
		Failed:          o.failed,
		Skipped:         o.skipped,
		DurationSeconds: duration,
		Results:         results,
	}
}
