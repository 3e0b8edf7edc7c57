package ltemac

// metric-heap.go holds the priority structure the proportional-fair policy
// draws its (UE, RBG) choices from.  Entries are never updated in place:  when a
// UE's allocation changes its entries are pushed again with a newer version, and
// stale entries are discarded as they surface.

import (
	"container/heap"
)

// pfCandidate is the PF metric of giving one RBG to one target UE
type pfCandidate struct {
	metric  float64
	ueIdx   int // position of the UE in the target list
	rbg     int
	version int // allocation version of the UE the metric was computed for
}

// metricHeap and its methods implement a max-priority heap on the metric,
// ties going to the earlier target and then the lower RBG
type metricHeap []*pfCandidate

func (h metricHeap) Len() int { return len(h) }
func (h metricHeap) Less(i, j int) bool {
	if h[i].metric != h[j].metric {
		return h[i].metric > h[j].metric
	}
	if h[i].ueIdx != h[j].ueIdx {
		return h[i].ueIdx < h[j].ueIdx
	}
	return h[i].rbg < h[j].rbg
}
func (h metricHeap) Swap(i, j int) { h[i], h[j] = h[j], h[i] }

func (h *metricHeap) Push(x any) {
	*h = append(*h, x.(*pfCandidate))
}

func (h *metricHeap) Pop() any {
	old := *h
	n := len(old)
	x := old[n-1]
	*h = old[0 : n-1]
	return x
}

// candidateQueue wraps the heap with the staleness test
type candidateQueue struct {
	entries metricHeap
}

func createCandidateQueue() *candidateQueue {
	cq := new(candidateQueue)
	cq.entries = metricHeap{}
	heap.Init(&cq.entries)
	return cq
}

func (cq *candidateQueue) push(cand *pfCandidate) {
	heap.Push(&cq.entries, cand)
}

// popBest removes and returns the best entry still valid according to valid,
// or nil when none remains
func (cq *candidateQueue) popBest(valid func(*pfCandidate) bool) *pfCandidate {
	for cq.entries.Len() > 0 {
		cand := heap.Pop(&cq.entries).(*pfCandidate)
		if valid(cand) {
			return cand
		}
	}
	return nil
}
