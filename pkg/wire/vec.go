package wire

import (
	"iter"
	"slices"
)

// Capacity fixes the maximum length of a Vec.
type Capacity interface {
	Cap() int
}

// Cap8 bounds a Vec to 8 items.
type Cap8 struct{}

func (_ Cap8) Cap() int {
	return 8
}

// Vec is a bounded list. It never grows past C.Cap() items.
// The zero Vec is empty and ready to use.
type Vec[T any, C Capacity] struct {
	items []T
}

// VecOf returns a Vec holding items. It errors with ErrCapacity if items does not fit.
func VecOf[T any, C Capacity](items ...T) (Vec[T, C], error) {
	var rv Vec[T, C]
	for _, item := range items {
		err := rv.Push(item)
		if nil != err {
			return Vec[T, C]{}, err
		}
	}
	return rv, nil
}

// Push appends item. It errors with ErrCapacity when the Vec is full.
func (self *Vec[T, C]) Push(item T) error {
	capacity := self.Cap()
	if len(self.items) >= capacity {
		return newError(ErrCapacity, "can not hold more than %d items", capacity)
	}
	if nil == self.items {
		self.items = make([]T, 0, capacity)
	}
	self.items = append(self.items, item)
	return nil
}

// Len returns the number of items.
func (self Vec[T, C]) Len() int {
	return len(self.items)
}

// Cap returns the maximum number of items.
func (self Vec[T, C]) Cap() int {
	var c C
	return c.Cap()
}

// At returns the item at pos. It panics if pos is out of range.
func (self Vec[T, C]) At(pos int) T {
	return self.items[pos]
}

// Items returns a copy of the items.
func (self Vec[T, C]) Items() []T {
	return slices.Clone(self.items)
}

// All iterates over the items.
func (self Vec[T, C]) All() iter.Seq2[int, T] {
	return slices.All(self.items)
}
