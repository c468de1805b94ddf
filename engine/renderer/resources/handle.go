package resources

import (
	"fmt"
)

const invalidIndex = ^uint32(0)

/**
 * @brief A typed index into one of the manager's resource pools. The zero
 * value is not a valid handle; use None to spell "no resource" explicitly.
 */
type Handle[T any] struct {
	index uint32
	valid bool
}

// None returns the handle that refers to nothing.
func None[T any]() Handle[T] {
	return Handle[T]{index: invalidIndex}
}

// HandleFromIndex rebuilds a handle from a raw index, as stored in shader
// input buffers. invalidIndex maps back to None.
func HandleFromIndex[T any](index uint32) Handle[T] {
	if index == invalidIndex {
		return None[T]()
	}
	return Handle[T]{index: index, valid: true}
}

func (h Handle[T]) Valid() bool {
	return h.valid
}

// Index returns the raw pool index, or invalidIndex for None.
func (h Handle[T]) Index() uint32 {
	if !h.valid {
		return invalidIndex
	}
	return h.index
}

func (h Handle[T]) String() string {
	if !h.valid {
		return "none"
	}
	return fmt.Sprintf("#%d", h.index)
}
