package engine

import "container/heap"

// item is one entry in the scheduler's priority queue: a node name waiting
// to be (re-)evaluated, ordered by rank first and insertion order second so
// that equal-rank nodes are processed FIFO, matching the order they were
// marked dirty in.
type item struct {
	name string
	rank int
	seq  int
}

// waveQueue is a min-heap over (rank, seq), plus a membership set so a
// node already queued for this wave is never enqueued twice.
type waveQueue struct {
	items  []item
	queued map[string]bool
	nextSeq int
}

func newWaveQueue() *waveQueue {
	return &waveQueue{queued: make(map[string]bool)}
}

func (q *waveQueue) Len() int { return len(q.items) }

func (q *waveQueue) Less(i, j int) bool {
	if q.items[i].rank != q.items[j].rank {
		return q.items[i].rank < q.items[j].rank
	}
	return q.items[i].seq < q.items[j].seq
}

func (q *waveQueue) Swap(i, j int) {
	q.items[i], q.items[j] = q.items[j], q.items[i]
}

func (q *waveQueue) Push(x any) {
	q.items = append(q.items, x.(item))
}

func (q *waveQueue) Pop() any {
	old := q.items
	n := len(old)
	it := old[n-1]
	q.items = old[:n-1]
	return it
}

// Enqueue adds name to the queue at the given rank if it isn't already
// queued for this wave.
func (q *waveQueue) Enqueue(name string, rank int) {
	if q.queued[name] {
		return
	}
	q.queued[name] = true
	heap.Push(q, item{name: name, rank: rank, seq: q.nextSeq})
	q.nextSeq++
}

// Dequeue removes and returns the lowest (rank, seq) name in the queue.
func (q *waveQueue) Dequeue() (string, bool) {
	if q.Len() == 0 {
		return "", false
	}
	it := heap.Pop(q).(item)
	delete(q.queued, it.name)
	return it.name, true
}
