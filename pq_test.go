package balance

import (
	"container/heap"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestPriorityQueue_TieBreakByInsertion(t *testing.T) {
	t.Parallel()

	q := make(priorityQueue, 0)
	heap.Init(&q)
	heap.Push(&q, &node{f: 5, seq: 0})
	heap.Push(&q, &node{f: 3, seq: 1})
	heap.Push(&q, &node{f: 5, seq: 2})
	heap.Push(&q, &node{f: 3, seq: 3})
	heap.Push(&q, &node{f: unreachable(), seq: 4})

	var got []uint64
	for q.Len() > 0 {
		got = append(got, heap.Pop(&q).(*node).seq)
	}

	require.Equal(t, []uint64{1, 3, 0, 2, 4}, got)
}
