// Package history implements the History handler actor: an append-only,
// in-memory event log serving synchronous snapshot requests, serialized by
// a single goroutine so snapshots never race with concurrent appends.
package history

import (
	"context"

	"github.com/arzg/nunitius/internal/log"
	"github.com/arzg/nunitius/internal/model"
)

type appendRequest struct {
	event model.Event
	done  chan struct{}
}

type snapshotRequest struct {
	reply chan []model.Event
}

// Handler owns the complete event log.
type Handler struct {
	appendCh   chan appendRequest
	snapshotCh chan snapshotRequest
	done       chan struct{}
}

// New creates a Handler. Call Run to start serving requests.
func New() *Handler {
	return &Handler{
		appendCh:   make(chan appendRequest),
		snapshotCh: make(chan snapshotRequest),
		done:       make(chan struct{}),
	}
}

// Run serves Append/Snapshot requests until ctx is cancelled. It must be
// called exactly once, typically in its own goroutine.
func (h *Handler) Run(ctx context.Context) {
	log.Info(log.CatHistory, "history handler started")
	defer log.Info(log.CatHistory, "history handler stopped")
	defer close(h.done)

	var events []model.Event

	for {
		select {
		case req := <-h.appendCh:
			events = append(events, req.event)
			close(req.done)
		case req := <-h.snapshotCh:
			snapshot := make([]model.Event, len(events))
			copy(snapshot, events)
			req.reply <- snapshot
		case <-ctx.Done():
			return
		}
	}
}

// Append adds an event to the log. It returns only once the event has been
// recorded, so a Snapshot requested after Append returns is guaranteed to
// include it — this is what lets the fan-out splitter deliver to the
// history handler strictly before a viewer's greeting snapshot can miss it.
func (h *Handler) Append(ev model.Event) {
	req := appendRequest{event: ev, done: make(chan struct{})}
	h.appendCh <- req
	<-req.done
}

// Snapshot returns every event appended so far, in append order. It is
// serialized with Append by the handler's single event loop: a snapshot
// always reflects every append that returned before the snapshot request
// was made.
func (h *Handler) Snapshot() []model.Event {
	reply := make(chan []model.Event, 1)
	h.snapshotCh <- snapshotRequest{reply: reply}
	return <-reply
}

// Wait blocks until Run has returned.
func (h *Handler) Wait() {
	<-h.done
}
