package logic

import "github.com/erickhammersmark/dogfoodtimer/internal/mono"

// historyStack is a bounded stack of past baseline instants. Pushing at
// capacity evicts the oldest entry.
type historyStack struct {
	entries []mono.Millis
}

func newHistoryStack() *historyStack {
	return &historyStack{
		entries: make([]mono.Millis, 0, HistoryCap),
	}
}

// push appends an entry, evicting the oldest when at capacity.
func (h *historyStack) push(t mono.Millis) {
	if len(h.entries) == HistoryCap {
		copy(h.entries, h.entries[1:])
		h.entries[len(h.entries)-1] = t
		return
	}
	h.entries = append(h.entries, t)
}

// pop removes and returns the most recent entry.
func (h *historyStack) pop() (mono.Millis, bool) {
	if len(h.entries) == 0 {
		return 0, false
	}
	t := h.entries[len(h.entries)-1]
	h.entries = h.entries[:len(h.entries)-1]
	return t, true
}

// depth returns the number of stored entries.
func (h *historyStack) depth() int {
	return len(h.entries)
}
