package batch

import (
	"fmt"
	"testing"
	"time"
)

func TestStore_CreateGetDelete(t *testing.T) {
	store := NewStore()

	op := store.Create("abc123")
	if op == nil {
		t.Fatal("Create returned nil")
	}
	if p := op.Progress(); p.Status != StatusPending {
		t.Errorf("new operation should be pending, got %s", p.Status)
	}

	got, ok := store.Get("abc123")
	if !ok || got != op {
		t.Error("Get did not return the created operation")
	}

	if _, ok := store.Get("missing"); ok {
		t.Error("Get should miss for unknown IDs")
	}

	store.Delete("abc123")
	if _, ok := store.Get("abc123"); ok {
		t.Error("operation still present after Delete")
	}
	if store.Len() != 0 {
		t.Errorf("expected empty store, got %d", store.Len())
	}
}

func TestStore_PurgeRemovesOnlyExpiredTerminalOps(t *testing.T) {
	store := NewStore()

	old := store.Create("old")
	old.markRunning("x")
	old.finish(StatusCompleted, "done")
	// Age the operation past the TTL by hand.
	old.mu.Lock()
	old.endTime = time.Now().Add(-2 * time.Hour)
	old.mu.Unlock()

	fresh := store.Create("fresh")
	fresh.markRunning("x")
	fresh.finish(StatusCompleted, "done")

	running := store.Create("running")
	running.markRunning("x")

	purged := store.Purge(time.Hour)
	if purged != 1 {
		t.Errorf("expected 1 purged, got %d", purged)
	}
	if _, ok := store.Get("old"); ok {
		t.Error("expired operation survived the purge")
	}
	if _, ok := store.Get("fresh"); !ok {
		t.Error("fresh terminal operation was purged")
	}
	if _, ok := store.Get("running"); !ok {
		t.Error("running operation was purged")
	}
}

func TestOperation_ResultListIsCapped(t *testing.T) {
	op := newOperation("cap")
	op.markRunning("x")

	for i := 0; i < 1500; i++ {
		op.beginItem(fmt.Sprintf("item %d", i))
		op.record(ItemResult{RatingKey: fmt.Sprintf("k%d", i), Success: true})
	}
	op.finish(StatusCompleted, "done")

	summary := op.Summary()
	if len(summary.Results) != maxStoredResults {
		t.Errorf("expected %d stored results, got %d", maxStoredResults, len(summary.Results))
	}
	// The tallies still cover every item.
	if summary.Success != 1500 {
		t.Errorf("expected success count 1500, got %d", summary.Success)
	}
	if p := op.Progress(); p.Processed != 1500 {
		t.Errorf("expected processed 1500, got %d", p.Processed)
	}
}

func TestOperation_FinishIsIdempotent(t *testing.T) {
	op := newOperation("once")
	op.markRunning("x")
	op.finish(StatusCancelled, "Cancelled after 2 of 5 items")
	op.finish(StatusFailed, "should not overwrite")

	p := op.Progress()
	if p.Status != StatusCancelled {
		t.Errorf("terminal status was overwritten: %s", p.Status)
	}
	if p.Message != "Cancelled after 2 of 5 items" {
		t.Errorf("terminal message was overwritten: %s", p.Message)
	}
}

func TestOperation_RequestCancelOnlyWhenRunning(t *testing.T) {
	op := newOperation("c")
	if op.RequestCancel() {
		t.Error("cancel should fail while pending")
	}
	op.markRunning("x")
	if !op.RequestCancel() {
		t.Error("cancel should succeed while running")
	}
	op.finish(StatusCompleted, "done")

	done := newOperation("d")
	done.markRunning("x")
	done.finish(StatusCompleted, "done")
	if done.RequestCancel() {
		t.Error("cancel should fail once terminal")
	}
}

func TestOperation_SummaryDuration(t *testing.T) {
	op := newOperation("t")
	op.markRunning("x")
	op.mu.Lock()
	op.startTime = time.Now().Add(-1500 * time.Millisecond)
	op.mu.Unlock()
	op.finish(StatusCompleted, "done")

	d := op.Summary().DurationSeconds
	if d < 1.4 || d > 1.7 {
		t.Errorf("expected duration around 1.5s, got %v", d)
	}
}
