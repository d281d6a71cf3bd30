package catalog

// Reveal tracks how many items of a result set are currently visible under
// the load-more paging scheme. The visible count starts at one page, grows
// by a page per LoadMore, and never exceeds the total.
type Reveal struct {
	pageSize int
	total    int
	visible  int
}

// NewReveal returns a window over total items showing at most one page.
// A non-positive pageSize is treated as 1.
func NewReveal(pageSize, total int) *Reveal {
	if pageSize < 1 {
		pageSize = 1
	}
	if total < 0 {
		total = 0
	}
	r := &Reveal{pageSize: pageSize}
	r.Reset(total)
	return r
}

// Reset rebinds the window to a new total, collapsing back to the first
// page. Called whenever the underlying result set changes.
func (r *Reveal) Reset(total int) {
	if total < 0 {
		total = 0
	}
	r.total = total
	r.visible = min(r.pageSize, total)
}

// LoadMore grows the window by one page, capped at the total, and returns
// the new visible count.
func (r *Reveal) LoadMore() int {
	r.visible = min(r.visible+r.pageSize, r.total)
	return r.visible
}

// Visible returns the current visible count.
func (r *Reveal) Visible() int { return r.visible }

// Total returns the size of the underlying result set.
func (r *Reveal) Total() int { return r.total }

// HasMore reports whether further items remain beyond the window.
func (r *Reveal) HasMore() bool { return r.visible < r.total }
