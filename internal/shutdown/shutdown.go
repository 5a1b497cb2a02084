// Package shutdown provides the process-wide graceful termination signal: a
// broadcast that fires exactly once and supports any number of waiters.
package shutdown

import "sync"

// Shutdown is a multi-reader signal that becomes permanently fired once for
// the process lifetime. The zero value is not usable; call New.
type Shutdown struct {
	once sync.Once
	done chan struct{}
}

// New returns an unfired shutdown signal.
func New() *Shutdown {
	return &Shutdown{done: make(chan struct{})}
}

// Fire marks the process as terminating. Safe to call more than once;
// every call after the first is a no-op.
func (s *Shutdown) Fire() {
	s.once.Do(func() {
		close(s.done)
	})
}

// Done returns a channel closed when shutdown has fired. Safe for unlimited
// concurrent awaiters.
func (s *Shutdown) Done() <-chan struct{} {
	return s.done
}

// Fired reports whether shutdown has already happened.
func (s *Shutdown) Fired() bool {
	select {
	case <-s.done:
		return true
	default:
		return false
	}
}
