package session

import "strings"

// StopDetector incrementally matches configured stop strings against a
// stream of text chunks. It retains only a bounded suffix of the text seen
// so far, long enough that a candidate split across chunk boundaries is
// still found.
type StopDetector struct {
	candidates []string
	// keep is the retained suffix length: max candidate length - 1.
	keep    int
	tail    string
	matched bool
}

// NewStopDetector builds a detector for the given candidates. Empty strings
// are dropped entirely; they never match and never error.
func NewStopDetector(candidates []string) *StopDetector {
	d := &StopDetector{}
	for _, c := range candidates {
		if c == "" {
			continue
		}
		d.candidates = append(d.candidates, c)
		if len(c)-1 > d.keep {
			d.keep = len(c) - 1
		}
	}
	return d
}

// Feed consumes one chunk and reports whether any candidate has appeared in
// the concatenation of all chunks fed so far. Once true, the result is
// stable for subsequent calls.
func (d *StopDetector) Feed(chunk string) bool {
	if d.matched {
		return true
	}
	if len(d.candidates) == 0 {
		return false
	}
	window := d.tail + chunk
	for _, c := range d.candidates {
		if strings.Contains(window, c) {
			d.matched = true
			return true
		}
	}
	if len(window) > d.keep {
		window = window[len(window)-d.keep:]
	}
	d.tail = window
	return false
}
