package oem

import "time"

// At returns the epoch at positional index i, or false if out of range.
func (d *Dataset) At(i int) (Epoch, bool) {
	if i < 0 || i >= len(d.Epochs) {
		return Epoch{}, false
	}
	return d.Epochs[i], true
}

// ByTimestamp returns the epoch whose timestamp equals t exactly,
// or false if no such epoch exists.
func (d *Dataset) ByTimestamp(t time.Time) (Epoch, bool) {
	for _, e := range d.Epochs {
		if e.Timestamp.Equal(t) {
			return e, true
		}
	}
	return Epoch{}, false
}

// Slice returns a contiguous run of up to limit epochs starting at offset,
// preserving source order. A negative limit means "to the end". An offset
// beyond the end yields an empty slice.
func (d *Dataset) Slice(offset, limit int) []Epoch {
	if offset < 0 {
		offset = 0
	}
	if offset >= len(d.Epochs) {
		return []Epoch{}
	}
	rest := d.Epochs[offset:]
	if limit < 0 || limit > len(rest) {
		limit = len(rest)
	}
	return rest[:limit]
}

// Nearest returns the epoch minimizing absolute time distance to t.
// Ties are broken by earliest occurrence in source order. Does not assume
// a chronologically sorted dataset. Returns false only when the dataset
// has no epochs, which cannot happen for a parsed document.
func (d *Dataset) Nearest(t time.Time) (Epoch, bool) {
	if len(d.Epochs) == 0 {
		return Epoch{}, false
	}
	best := d.Epochs[0]
	bestDelta := absDuration(t.Sub(best.Timestamp))
	for _, e := range d.Epochs[1:] {
		delta := absDuration(t.Sub(e.Timestamp))
		if delta < bestDelta {
			best = e
			bestDelta = delta
		}
	}
	return best, true
}

func absDuration(d time.Duration) time.Duration {
	if d < 0 {
		return -d
	}
	return d
}
