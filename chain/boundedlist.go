package chain

import "github.com/r3e-network/nft-runtime/runtimeerrors"

// BoundedList is a length-capped ordered sequence, the Go stand-in for
// Substrate's BoundedVec (spec.md §9 "BoundedVec -> a length-checked
// sequence with compile-time capacity"). Capacity is fixed at construction;
// insertion past capacity is a typed error, never a silent truncation.
type BoundedList[T any] struct {
	items    []T
	capacity int
}

// NewBoundedList creates an empty list with the given capacity.
func NewBoundedList[T any](capacity int) *BoundedList[T] {
	return &BoundedList[T]{capacity: capacity}
}

// Len returns the current number of items.
func (b *BoundedList[T]) Len() int { return len(b.items) }

// Cap returns the configured capacity.
func (b *BoundedList[T]) Cap() int { return b.capacity }

// Full reports whether the list is at capacity.
func (b *BoundedList[T]) Full() bool { return len(b.items) >= b.capacity }

// Items returns the underlying slice. Callers must not retain a reference
// across a mutating call.
func (b *BoundedList[T]) Items() []T { return b.items }

// Push appends item, failing with a KindCapacity "CapacityExceeded" error
// if the list is full.
func (b *BoundedList[T]) Push(item T) error {
	if b.Full() {
		return runtimeerrors.New(runtimeerrors.KindCapacity, "CapacityExceeded", "bounded list is at capacity")
	}
	b.items = append(b.items, item)
	return nil
}

// RemoveAt removes the item at index i via swap-remove, matching the
// "Collection insertion...removal...uses swap-remove" rule in spec.md §4.1
// where intra-collection order is not observable. Returns the removed item.
func (b *BoundedList[T]) RemoveAt(i int) T {
	removed := b.items[i]
	last := len(b.items) - 1
	b.items[i] = b.items[last]
	var zero T
	b.items[last] = zero
	b.items = b.items[:last]
	return removed
}

// RemoveOrderedAt removes the item at index i preserving the relative order
// of the remaining items. Used where ordering is a stated invariant (e.g.
// the ascending-by-amount BidderList).
func (b *BoundedList[T]) RemoveOrderedAt(i int) T {
	removed := b.items[i]
	b.items = append(b.items[:i], b.items[i+1:]...)
	return removed
}

// Set replaces the contents wholesale (used when a caller has computed a new
// slice directly, e.g. after a sort-preserving insert).
func (b *BoundedList[T]) Set(items []T) {
	b.items = items
}

// Reset empties the list.
func (b *BoundedList[T]) Reset() {
	b.items = nil
}
