// Package scope implements chained lexical scopes as an arena of frames.
// Each frame refers to its parent by index, so a chain is never a shared
// pointer graph. The checker binds names to types and the evaluator binds
// names to values using the same arena.
package scope

import "fmt"

// FrameID indexes a frame inside an Arena.
type FrameID int

// Root is the parent of outermost frames.
const Root FrameID = -1

// AlreadyBoundError is returned when a name is bound twice in one frame.
type AlreadyBoundError struct {
	Name string
}

func (e *AlreadyBoundError) Error() string {
	return fmt.Sprintf("name %q is already bound in this scope", e.Name)
}

type frame[T any] struct {
	parent FrameID
	names  map[string]T
}

// Arena owns every frame of one checking or evaluation pass. Frames are
// pushed and popped in LIFO order, matching the recursion that creates
// them.
type Arena[T any] struct {
	frames []frame[T]
}

// New returns an empty arena.
func New[T any]() *Arena[T] {
	return &Arena[T]{}
}

// Push opens a frame chained to parent and returns its ID.
func (a *Arena[T]) Push(parent FrameID) FrameID {
	if parent != Root && !a.valid(parent) {
		panic(fmt.Sprintf("scope: push with unknown parent frame %d", parent))
	}
	a.frames = append(a.frames, frame[T]{parent: parent})
	return FrameID(len(a.frames) - 1)
}

// Pop discards frame id and every frame opened after it.
func (a *Arena[T]) Pop(id FrameID) {
	if !a.valid(id) {
		return
	}
	for i := int(id); i < len(a.frames); i++ {
		a.frames[i] = frame[T]{}
	}
	a.frames = a.frames[:id]
}

// Bind adds name to frame id. Shadowing a name of an enclosing frame is
// allowed; binding it twice in the same frame is not.
func (a *Arena[T]) Bind(id FrameID, name string, v T) error {
	if !a.valid(id) {
		panic(fmt.Sprintf("scope: bind in unknown frame %d", id))
	}
	f := &a.frames[id]
	if f.names == nil {
		f.names = make(map[string]T)
	}
	if _, exists := f.names[name]; exists {
		return &AlreadyBoundError{Name: name}
	}
	f.names[name] = v
	return nil
}

// Lookup resolves name starting at frame id and walking outward.
func (a *Arena[T]) Lookup(id FrameID, name string) (T, bool) {
	for id != Root && a.valid(id) {
		f := &a.frames[id]
		if v, ok := f.names[name]; ok {
			return v, true
		}
		id = f.parent
	}
	var zero T
	return zero, false
}

// Depth reports how many frames are open.
func (a *Arena[T]) Depth() int { return len(a.frames) }

func (a *Arena[T]) valid(id FrameID) bool {
	return id >= 0 && int(id) < len(a.frames)
}
