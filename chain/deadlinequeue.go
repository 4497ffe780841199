package chain

import (
	"sort"

	"github.com/r3e-network/nft-runtime/runtimeerrors"
)

// deadlineEntry pairs a key (e.g. an nft.ID) with the block at which it is
// due, the shared shape behind every DeadlineList in spec.md §3/§4
// (AuctionEngine, RentEngine's three queues, TransmissionEngine's
// AtBlockQueue).
type deadlineEntry[K comparable] struct {
	Key      K
	Deadline BlockNumber
}

// DeadlineQueue is a capacity-bounded, deadline-ordered queue. It keeps its
// entries sorted ascending by deadline as an invariant (spec.md §5
// "Queues remain sorted as an invariant"), supporting the Insert/Update/
// Remove/PopDue operations spec.md §3 names for DeadlineList<block>.
type DeadlineQueue[K comparable] struct {
	capacity int
	entries  []deadlineEntry[K]
}

// NewDeadlineQueue constructs an empty queue with the given capacity.
func NewDeadlineQueue[K comparable](capacity int) *DeadlineQueue[K] {
	return &DeadlineQueue[K]{capacity: capacity}
}

// Len returns the number of queued entries.
func (q *DeadlineQueue[K]) Len() int { return len(q.entries) }

func (q *DeadlineQueue[K]) indexOf(key K) int {
	for i, e := range q.entries {
		if e.Key == key {
			return i
		}
	}
	return -1
}

// Insert adds a new (key, deadline) pair, failing with a capacity error if
// the queue is full. The caller is responsible for ensuring key is not
// already present (spec.md §3 "exactly one active auction per nft_id").
func (q *DeadlineQueue[K]) Insert(key K, deadline BlockNumber) error {
	if len(q.entries) >= q.capacity {
		return runtimeerrors.New(runtimeerrors.KindCapacity, "DeadlineQueueFull", "deadline queue is at capacity")
	}
	q.entries = append(q.entries, deadlineEntry[K]{Key: key, Deadline: deadline})
	q.sort()
	return nil
}

// Update changes the deadline of an existing entry, re-sorting the queue.
// Returns false if key is not present.
func (q *DeadlineQueue[K]) Update(key K, deadline BlockNumber) bool {
	i := q.indexOf(key)
	if i < 0 {
		return false
	}
	q.entries[i].Deadline = deadline
	q.sort()
	return true
}

// Remove deletes an entry by key. Returns false if key was not present.
func (q *DeadlineQueue[K]) Remove(key K) bool {
	i := q.indexOf(key)
	if i < 0 {
		return false
	}
	q.entries = append(q.entries[:i], q.entries[i+1:]...)
	return true
}

// PopDue removes and returns, in ascending-deadline order, every entry whose
// deadline is <= now, capped at limit entries (the ActionsInBlockLimit
// budget from spec.md §5).
func (q *DeadlineQueue[K]) PopDue(now BlockNumber, limit int) []K {
	var due []K
	i := 0
	for ; i < len(q.entries) && len(due) < limit; i++ {
		if q.entries[i].Deadline > now {
			break
		}
		due = append(due, q.entries[i].Key)
	}
	q.entries = q.entries[i:]
	return due
}

func (q *DeadlineQueue[K]) sort() {
	sort.SliceStable(q.entries, func(i, j int) bool {
		return q.entries[i].Deadline < q.entries[j].Deadline
	})
}
