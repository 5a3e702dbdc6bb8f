package balance

// node is one search state waiting in or popped from the open set.
type node struct {
	f     float64
	seq   uint64
	g     int
	grid  Grid
	moves []Move
	crane Position
	index int
}

// priorityQueue orders nodes by f, then by insertion sequence. Grids are never
// compared.
type priorityQueue []*node

func (q priorityQueue) Len() int { return len(q) }

func (q priorityQueue) Less(i, j int) bool {
	if q[i].f != q[j].f {
		return q[i].f < q[j].f
	}
	return q[i].seq < q[j].seq
}

func (q priorityQueue) Swap(i, j int) {
	q[i], q[j] = q[j], q[i]
	q[i].index = i
	q[j].index = j
}

func (q *priorityQueue) Push(x any) {
	n := x.(*node)
	n.index = len(*q)
	*q = append(*q, n)
}

func (q *priorityQueue) Pop() any {
	old := *q
	last := len(old) - 1
	n := old[last]
	old[last] = nil
	n.index = -1
	*q = old[:last]
	return n
}
