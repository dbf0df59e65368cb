// Package timeline implements the viewer's scroll window over the event
// list: a top index into a growing slice of non-Typing events.
package timeline

import "github.com/arzg/nunitius/internal/model"

// Timeline is a scroll window over a list of events, excluding Typing
// events, which are rendered separately as a status line.
type Timeline struct {
	events   []model.Event
	height   int
	topIndex int
}

// New creates an empty Timeline with the given visible height.
func New(height int) *Timeline {
	return &Timeline{height: height}
}

// AddEvent appends e (unless it is a Typing event) and scrolls to the
// bottom, so the newest event is fully visible.
func (t *Timeline) AddEvent(e model.Event) {
	if e.IsTyping() {
		return
	}
	t.events = append(t.events, e)
	t.scrollToBottom()
}

func (t *Timeline) scrollToBottom() {
	if len(t.events) <= t.height {
		t.topIndex = 0
		return
	}
	t.topIndex = len(t.events) - t.height
}

// ScrollUp moves the top index up by one, clamped at 0.
func (t *Timeline) ScrollUp() {
	if t.topIndex > 0 {
		t.topIndex--
	}
}

// ScrollDown moves the top index down by one, clamped so the window never
// scrolls past the point where it would show fewer than min(height, len)
// events.
func (t *Timeline) ScrollDown() {
	if t.topIndex < t.maxTopIndex() {
		t.topIndex++
	}
}

func (t *Timeline) maxTopIndex() int {
	if len(t.events) <= t.height {
		return 0
	}
	return len(t.events) - t.height
}

// Resize changes the visible height. If the current window would extend
// past the last event, the window is pulled up to fit; otherwise the top
// index is kept.
func (t *Timeline) Resize(h int) {
	t.height = h
	if max := t.maxTopIndex(); t.topIndex > max {
		t.topIndex = max
	}
}

// VisibleEvents returns the [topIndex, topIndex+height) slice, or all
// events when they fit within height.
func (t *Timeline) VisibleEvents() []model.Event {
	end := t.topIndex + t.height
	if end > len(t.events) {
		end = len(t.events)
	}
	return t.events[t.topIndex:end]
}

// TopIndex returns the current top index, always a valid index into the
// accumulated event list (or 0 for an empty list).
func (t *Timeline) TopIndex() int {
	return t.topIndex
}

// Len returns the total number of non-Typing events accumulated.
func (t *Timeline) Len() int {
	return len(t.events)
}
