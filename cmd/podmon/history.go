package main

import (
	"fmt"
	"io"
	"time"

	"github.com/hedzr/go-ringbuf/v2/mpmc"
	"github.com/srg/podmon/state"
)

// statusChange is one observed transition, stamped on arrival.
type statusChange struct {
	At  time.Time          `json:"at"`
	Old state.DeviceStatus `json:"old"`
	New state.DeviceStatus `json:"new"`
}

// changeHistory keeps the most recent status changes, overwriting the oldest.
type changeHistory struct {
	limit  int
	buffer mpmc.RichOverlappedRingBuffer[statusChange]
}

func newChangeHistory(limit int) *changeHistory {
	// the ring keeps one slot free
	return &changeHistory{
		limit:  limit,
		buffer: mpmc.NewOverlappedRingBuffer[statusChange](uint32(limit + 1)),
	}
}

func (h *changeHistory) add(c statusChange) error {
	if _, err := h.buffer.EnqueueM(c); err != nil {
		return fmt.Errorf("recording status change: %w", err)
	}
	return nil
}

// drain empties the ring and returns at most limit changes, oldest first.
func (h *changeHistory) drain() []statusChange {
	var out []statusChange
	for !h.buffer.IsEmpty() {
		c, err := h.buffer.Dequeue()
		if err != nil {
			break
		}
		out = append(out, c)
	}
	if len(out) > h.limit {
		out = out[len(out)-h.limit:]
	}
	return out
}

func (h *changeHistory) print(w io.Writer, r *batteryRenderer) {
	changes := h.drain()
	if len(changes) == 0 {
		return
	}
	fmt.Fprintf(w, "\nLast %d change(s):\n", len(changes))
	for _, c := range changes {
		fmt.Fprintf(w, "  %s  %s\n", c.At.Format(time.TimeOnly), r.status(c.New))
	}
}
