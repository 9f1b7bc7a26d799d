package engine

import (
	"container/ring"
	"time"
)

// historySize bounds how many parameter edits the engine remembers.
const historySize = 64

// ParamChange records one live parameter edit applied via UpdateParameter.
type ParamChange struct {
	Scope string
	Field string
	Value float64
	At    time.Time
}

// paramHistory is a fixed-size circular log of the most recent edits,
// oldest entries simply overwritten once the ring fills.
type paramHistory struct {
	r     *ring.Ring
	count int
}

func newParamHistory() *paramHistory {
	return &paramHistory{r: ring.New(historySize)}
}

func (h *paramHistory) record(c ParamChange) {
	h.r.Value = c
	h.r = h.r.Next()
	if h.count < historySize {
		h.count++
	}
}

// recent returns up to n most recent changes, newest first.
func (h *paramHistory) recent(n int) []ParamChange {
	if n > h.count {
		n = h.count
	}
	out := make([]ParamChange, 0, n)
	cur := h.r.Prev()
	for i := 0; i < n; i++ {
		if c, ok := cur.Value.(ParamChange); ok {
			out = append(out, c)
		}
		cur = cur.Prev()
	}
	return out
}
