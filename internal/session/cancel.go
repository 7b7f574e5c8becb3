package session

import "sync/atomic"

// CancelFlag is a shared boolean set by a caller goroutine and polled by the
// generation loop at fragment boundaries. The zero value is ready to use and
// reads false.
type CancelFlag struct {
	v atomic.Bool
}

// Get reports whether cancellation has been requested.
func (f *CancelFlag) Get() bool { return f.v.Load() }

// Set requests (or withdraws) cancellation.
func (f *CancelFlag) Set(v bool) { f.v.Store(v) }

// Reset clears the flag. Equivalent to Set(false); kept as a distinct
// operation so call sites that re-arm a session read explicitly.
func (f *CancelFlag) Reset() { f.v.Store(false) }
