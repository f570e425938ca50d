package service

import (
	"sync"

	"sysdvr/internal/ipc"
)

// Switcher applies a transport mode change.  A returned error leaves the
// previous mode in place.
type Switcher interface {
	Switch(from, to ipc.Mode) error
}

// SwitcherFunc adapts a function to [Switcher].
type SwitcherFunc func(from, to ipc.Mode) error

func (f SwitcherFunc) Switch(from, to ipc.Mode) error { return f(from, to) }

// State holds the active transport mode for the lifetime of the service.
// Writers are serialized; readers always see a whole value.
type State struct {
	mu   sync.RWMutex
	mode ipc.Mode
}

// NewState returns a State starting in mode.
func NewState(mode ipc.Mode) *State {
	return &State{mode: mode}
}

// Mode returns the active mode.
func (s *State) Mode() ipc.Mode {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.mode
}

// Set makes mode active.  sw, when non-nil, runs under the write lock and
// only for an actual change; if it fails the mode is not updated.
// Setting the active mode again succeeds without calling sw.
func (s *State) Set(mode ipc.Mode, sw Switcher) (changed bool, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if mode == s.mode {
		return false, nil
	}
	if sw != nil {
		if err := sw.Switch(s.mode, mode); err != nil {
			return false, err
		}
	}
	s.mode = mode
	return true, nil
}
