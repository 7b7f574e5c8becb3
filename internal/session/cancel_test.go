package session

import (
	"sync"
	"testing"
)

func TestCancelFlag_DefaultFalse(t *testing.T) {
	var f CancelFlag
	if f.Get() {
		t.Fatalf("zero-value flag must read false")
	}
}

func TestCancelFlag_SetAndReset(t *testing.T) {
	var f CancelFlag
	f.Set(true)
	if !f.Get() {
		t.Fatalf("Get after Set(true) = false")
	}
	f.Reset()
	if f.Get() {
		t.Fatalf("Get after Reset = true")
	}
	f.Set(true)
	f.Set(false)
	if f.Get() {
		t.Fatalf("Get after Set(false) = true")
	}
}

func TestCancelFlag_ConcurrentAccess(t *testing.T) {
	var f CancelFlag
	var wg sync.WaitGroup
	done := make(chan struct{})

	// Reader polls like a generation loop.
	wg.Add(1)
	go func() {
		defer wg.Done()
		for {
			if f.Get() {
				close(done)
				return
			}
		}
	}()

	f.Set(true)
	<-done
	wg.Wait()
	if !f.Get() {
		t.Fatalf("flag lost its value")
	}
}
