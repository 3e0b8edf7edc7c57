package ltemac

// rr.go holds the round-robin policy.  Each TTI the connected UEs are visited
// starting from the UE recorded as next-in-line at the end of the previous TTI.
// Downlink RBGs are dealt out one at a time to the target UEs in that order, after
// the RBG list has been shuffled; uplink blocks are cut into near-equal contiguous
// chunks.  Retransmissions are served before either.

import (
	"golang.org/x/exp/slices"
	"k8s.io/klog/v2"
)

// RoundRobin is the round-robin policy for one direction
type RoundRobin struct {
	dir      Direction
	nextRnti Rnti // first in line next TTI
	hasNext  bool
}

// createRoundRobin is a constructor
func createRoundRobin(dir Direction) *RoundRobin {
	rr := new(RoundRobin)
	rr.dir = dir
	rr.nextRnti = InvalidRnti
	return rr
}

func (rr *RoundRobin) Kind() PolicyKind {
	return PolicyRoundRobin
}

func (rr *RoundRobin) Direction() Direction {
	return rr.dir
}

// NextInLine returns the UE the next TTI starts from
func (rr *RoundRobin) NextInLine() (Rnti, bool) {
	return rr.nextRnti, rr.hasNext
}

func (rr *RoundRobin) prepare(e *EnbScheduler) {}

func (rr *RoundRobin) notifyAttach(rnti Rnti) {}

// notifyDetach forgets the pointer if it refers to the departing UE
func (rr *RoundRobin) notifyDetach(rnti Rnti) {
	if rr.hasNext && rr.nextRnti == rnti {
		rr.nextRnti = InvalidRnti
		rr.hasNext = false
	}
}

// rotate returns the list started at the next-in-line UE, or the list unchanged
// when that UE is no longer present
func (rr *RoundRobin) rotate(ues []Rnti) []Rnti {
	rotated := make([]Rnti, 0, len(ues))
	start := -1
	if rr.hasNext {
		start = slices.Index(ues, rr.nextRnti)
	}
	if start < 0 {
		return append(rotated, ues...)
	}
	rotated = append(rotated, ues[start:]...)
	return append(rotated, ues[:start]...)
}

// advance records who goes first next TTI, given that the first served UEs of
// targets were given resources
func (rr *RoundRobin) advance(targets []Rnti, served int) {
	if len(targets) == 0 {
		return
	}
	rr.nextRnti = targets[served%len(targets)]
	rr.hasNext = true
}

// scheduleDownlink deals the RBGs left over by retransmissions to the target UEs
func (rr *RoundRobin) scheduleDownlink(e *EnbScheduler) []*DlSchedulingResult {
	retx, claimed, retxUes := e.selectDlRetransmissions()
	targets := e.dlTargets(rr.rotate(e.connSnapshot), retxUes)
	if len(targets) == 0 {
		return retx
	}

	// RBGs not touched by a retransmission
	free := []int{}
	for rbg := 0; rbg < e.dlGeom.NumRbg; rbg++ {
		if !e.dlGeom.RbsOf(rbg).Overlaps(claimed) {
			free = append(free, rbg)
		}
	}
	shuffle(e.rng, free)

	assigned := make([][]int, len(targets))
	for idx, rbg := range free {
		ueIdx := idx % len(targets)
		assigned[ueIdx] = append(assigned[ueIdx], rbg)
	}
	rr.advance(targets, len(free))

	released := []int{}
	for ueIdx, rnti := range targets {
		if len(assigned[ueIdx]) == 0 {
			continue
		}
		kept := e.trimDlRbgs(rnti, assigned[ueIdx])
		released = append(released, assigned[ueIdx][len(kept):]...)
		assigned[ueIdx] = kept
	}
	e.redealDlRbgs(targets, assigned, released, len(free))

	pid := HarqProcessFor(e.tti)
	newData := []*DlSchedulingResult{}
	for ueIdx, rnti := range targets {
		if len(assigned[ueIdx]) == 0 {
			continue
		}
		newData = append(newData, e.buildDlNewData(rnti, e.dlGeom.RbsOfGroups(assigned[ueIdx]), pid))
	}
	newData = e.purgeDl(newData)

	klog.V(4).InfoS("round robin downlink", "scheduler", e.name, "tti", e.tti, "targets", len(targets),
		"freeRbgs", len(free), "retx", len(retx), "next", rr.nextRnti)
	return append(retx, newData...)
}

// trimDlRbgs releases the most recently dealt RBGs of a UE for as long as the
// remaining ones still carry its whole buffer
func (e *EnbScheduler) trimDlRbgs(rnti Rnti, rbgs []int) []int {
	demand := e.cell.BufferOccupancy(rnti, DefaultBearer)
	for len(rbgs) > 1 {
		fewer := rbgs[:len(rbgs)-1]
		if e.dlCapacityBytes(rnti, e.dlGeom.RbsOfGroups(fewer)) < demand {
			break
		}
		rbgs = fewer
	}
	return rbgs
}

// redealDlRbgs deals the RBGs released by trimming, continuing the cyclic order
// from target start, to the targets whose allocation still falls short of their
// buffer.  An RBG is left unused only when every target is satisfied.
func (e *EnbScheduler) redealDlRbgs(targets []Rnti, assigned [][]int, released []int, start int) {
	cursor := start % len(targets)
	for _, rbg := range released {
		taker := -1
		for step := 0; step < len(targets) && taker < 0; step++ {
			ueIdx := (cursor + step) % len(targets)
			if len(assigned[ueIdx]) == 0 || e.dlCapacityBytes(targets[ueIdx],
				e.dlGeom.RbsOfGroups(assigned[ueIdx])) < e.cell.BufferOccupancy(targets[ueIdx], DefaultBearer) {
				taker = ueIdx
			}
		}
		if taker < 0 {
			return
		}
		assigned[taker] = append(assigned[taker], rbg)
		cursor = (taker + 1) % len(targets)
	}
}

// ulPlacement is an uplink allocation waiting for its position on the PUSCH
type ulPlacement struct {
	rnti  Rnti
	numRb int
	retx  *UlSchedulingResult // nil for new data
}

// scheduleUplink splits the PUSCH blocks not needed by retransmissions among the
// target UEs, then lays all allocations out in random order
func (rr *RoundRobin) scheduleUplink(e *EnbScheduler) []*UlSchedulingResult {
	retx, _, retxUes := e.selectUlRetransmissions(false)
	retxRbs := 0
	for _, ur := range retx {
		retxRbs += ur.NumRb
	}
	targets := e.ulTargets(rr.rotate(e.connSnapshot), retxUes)

	placements := make([]ulPlacement, 0, len(retx)+len(targets))
	for _, ur := range retx {
		placements = append(placements, ulPlacement{rnti: ur.Rnti, numRb: ur.NumRb, retx: ur})
	}

	availRb := e.puschRbs - retxRbs
	units := availRb / e.ulGeom.RbgSize
	served := min(len(targets), units)
	if served > 0 {
		chunks := make([]int, served)
		share, extra := units/served, units%served
		for idx := range chunks {
			chunks[idx] = share * e.ulGeom.RbgSize
			if idx < extra {
				chunks[idx] += e.ulGeom.RbgSize
			}
		}
		shuffle(e.rng, chunks)
		// blocks too few to make a unit go to the last chunk
		chunks[served-1] += availRb - units*e.ulGeom.RbgSize
		for idx := 0; idx < served; idx++ {
			placements = append(placements, ulPlacement{rnti: targets[idx], numRb: chunks[idx]})
		}
	}
	rr.advance(targets, served)
	shuffle(e.rng, placements)

	pid := HarqProcessFor(e.tti)
	results := make([]*UlSchedulingResult, 0, len(placements))
	newData := []*UlSchedulingResult{}
	offset := 0
	for _, pl := range placements {
		startRb := e.puschStart + offset
		offset += pl.numRb
		if pl.retx != nil {
			pl.retx.StartRb = startRb
			results = append(results, pl.retx)
			continue
		}
		newData = append(newData, e.buildUlNewData(pl.rnti, startRb, pl.numRb, pid))
	}
	results = append(results, e.purgeUl(newData)...)

	klog.V(4).InfoS("round robin uplink", "scheduler", e.name, "tti", e.tti, "targets", len(targets),
		"served", served, "retx", len(retx), "next", rr.nextRnti)
	return results
}
