package overlay

import (
	"sync/atomic"
)

// State is the single shared Transform value between the gesture input
// path (writer) and the compositor sampling path (reader). Writers publish
// a complete new Transform; readers always observe a fully-formed prior or
// current value, never a mix of fields from two updates.
type State struct {
	value    atomic.Pointer[Transform]
	version  atomic.Uint64
	onChange atomic.Pointer[func(old, new Transform)]
}

// NewState creates a State holding the identity transform.
func NewState() *State {
	s := &State{}
	initial := Identity()
	s.value.Store(&initial)
	s.version.Store(1)
	return s
}

// Get returns the latest published transform.
func (s *State) Get() Transform {
	return *s.value.Load()
}

// Set publishes a new transform. The scale clamp is enforced here so no
// reader can ever observe an out-of-range scale regardless of the writer.
func (s *State) Set(t Transform) {
	t = t.Normalized()
	old := s.value.Load()
	s.value.Store(&t)
	s.version.Add(1)

	if fn := s.onChange.Load(); fn != nil {
		(*fn)(*old, t)
	}
}

// Reset publishes the identity transform. Used whenever no pose is active
// or a pose is newly selected, generated or cleared.
func (s *State) Reset() {
	s.Set(Identity())
}

// Version returns the publication counter, incremented on every Set.
func (s *State) Version() uint64 {
	return s.version.Load()
}

// OnChange registers a callback invoked synchronously after each publish.
func (s *State) OnChange(fn func(old, new Transform)) {
	s.onChange.Store(&fn)
}
