package session

import "testing"

func TestStopDetector_SplitAcrossChunks(t *testing.T) {
	d := NewStopDetector([]string{"lo wor"})
	chunks := []string{"Hel", "lo ", "world"}
	want := []bool{false, false, true}
	for i, ch := range chunks {
		if got := d.Feed(ch); got != want[i] {
			t.Fatalf("Feed(%q) = %v, want %v", ch, got, want[i])
		}
	}
}

func TestStopDetector_MultipleCandidates(t *testing.T) {
	d := NewStopDetector([]string{"END", "<stop>"})
	if d.Feed("hello ") {
		t.Fatalf("unexpected match on %q", "hello ")
	}
	if !d.Feed("<stop>") {
		t.Fatalf("expected match on %q", "<stop>")
	}
}

func TestStopDetector_EmptyCandidatesNeverMatch(t *testing.T) {
	for _, cands := range [][]string{nil, {}, {""}, {"", ""}} {
		d := NewStopDetector(cands)
		for _, ch := range []string{"a", "", "abc", "anything at all"} {
			if d.Feed(ch) {
				t.Fatalf("candidates %q matched %q", cands, ch)
			}
		}
	}
}

func TestStopDetector_EmptyCandidatesIgnoredAmongReal(t *testing.T) {
	d := NewStopDetector([]string{"", "DONE", ""})
	if d.Feed("not yet") {
		t.Fatalf("unexpected match")
	}
	if d.Feed("DO") {
		t.Fatalf("premature match")
	}
	if !d.Feed("NE") {
		t.Fatalf("split candidate should match across chunks")
	}
}

func TestStopDetector_StableAfterMatch(t *testing.T) {
	d := NewStopDetector([]string{"X"})
	if !d.Feed("aXb") {
		t.Fatalf("expected match")
	}
	for i := 0; i < 3; i++ {
		if !d.Feed("no match here") {
			t.Fatalf("result must stay true after first match")
		}
	}
}

func TestStopDetector_DuplicateCandidates(t *testing.T) {
	a := NewStopDetector([]string{"ab"})
	b := NewStopDetector([]string{"ab", "ab", "ab"})
	chunks := []string{"a", "a", "b"}
	for _, ch := range chunks {
		if a.Feed(ch) != b.Feed(ch) {
			t.Fatalf("duplicate candidate set diverged from canonical set on %q", ch)
		}
	}
}

func TestStopDetector_BoundedBuffer(t *testing.T) {
	d := NewStopDetector([]string{"abcd"})
	for i := 0; i < 10000; i++ {
		if d.Feed("xyz") {
			t.Fatalf("unexpected match")
		}
		if len(d.tail) > 3 {
			t.Fatalf("retained suffix grew to %d, want <= max candidate length - 1", len(d.tail))
		}
	}
	// "ab" then "cd" spans the retained suffix.
	if d.Feed("ab") {
		t.Fatalf("premature match")
	}
	if !d.Feed("cd") {
		t.Fatalf("cross-chunk match lost after long stream")
	}
}

func TestStopDetector_SingleChunkContainment(t *testing.T) {
	d := NewStopDetector([]string{"needle"})
	if !d.Feed("hay needle stack") {
		t.Fatalf("substring containment should match within one chunk")
	}
}
