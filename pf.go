package ltemac

// pf.go holds the proportional-fair policy.  The RBGs left over by retransmissions
// are given out greedily:  each step gives the RBG with the highest metric (bits the
// UE's allocation would carry with the RBG added, over the UE's average throughput)
// to its UE, and recomputes the metrics of that UE only.  Uplink allocations must
// stay contiguous, so an uplink UE can only grow into the RBGs at either end of the
// range it holds.

import (
	"k8s.io/klog/v2"
)

// satisfiedMetric marks a UE whose allocation already carries its whole buffer
const satisfiedMetric = -1.0

// ProportionalFair is the proportional-fair policy for one direction
type ProportionalFair struct {
	dir Direction
	avg *pfAverages
}

// createProportionalFair is a constructor
func createProportionalFair(dir Direction, filterCoefficient int) *ProportionalFair {
	pf := new(ProportionalFair)
	pf.dir = dir
	pf.avg = createPfAverages(filterCoefficient)
	return pf
}

func (pf *ProportionalFair) Kind() PolicyKind {
	return PolicyProportionalFair
}

func (pf *ProportionalFair) Direction() Direction {
	return pf.dir
}

// AverageThroughput returns the filtered throughput (bps) of an attached UE
func (pf *ProportionalFair) AverageThroughput(rnti Rnti) float64 {
	return pf.avg.get(rnti)
}

// SetAverageThroughput overwrites the filtered throughput of an attached UE
func (pf *ProportionalFair) SetAverageThroughput(rnti Rnti, bps float64) {
	pf.avg.set(rnti, bps)
}

func (pf *ProportionalFair) prepare(e *EnbScheduler) {}

func (pf *ProportionalFair) notifyAttach(rnti Rnti) {
	pf.avg.attach(rnti)
}

func (pf *ProportionalFair) notifyDetach(rnti Rnti) {
	pf.avg.detach(rnti)
}

// metricOf divides the bits an allocation would carry by the UE's average
func (pf *ProportionalFair) metricOf(rnti Rnti, bits int) float64 {
	return float64(bits) / max(pf.avg.get(rnti), pfMinAvg)
}

// dlMetric is the metric of adding RBG rbg to the allocation current of UE rnti
func (pf *ProportionalFair) dlMetric(e *EnbScheduler, rnti Rnti, current RbSet, rbg int) float64 {
	if !current.Empty() && e.dlCapacityBytes(rnti, current) >= e.cell.BufferOccupancy(rnti, DefaultBearer) {
		return satisfiedMetric
	}
	hyp := current.Union(e.dlGeom.RbsOf(rbg))
	return pf.metricOf(rnti, e.dlCapacityBits(rnti, hyp))
}

// scheduleDownlink gives the free RBGs out greedily by metric
func (pf *ProportionalFair) scheduleDownlink(e *EnbScheduler) []*DlSchedulingResult {
	retx, claimed, retxUes := e.selectDlRetransmissions()
	targets := e.dlTargets(e.connSnapshot, retxUes)
	if len(targets) == 0 {
		pf.avg.update(nil)
		return retx
	}

	available := make([]bool, e.dlGeom.NumRbg)
	for rbg := range available {
		available[rbg] = !e.dlGeom.RbsOf(rbg).Overlaps(claimed)
	}
	alloc := make([]RbSet, len(targets))
	version := make([]int, len(targets))

	cq := createCandidateQueue()
	pushUe := func(ueIdx int) {
		for rbg, free := range available {
			if free {
				cq.push(&pfCandidate{metric: pf.dlMetric(e, targets[ueIdx], alloc[ueIdx], rbg),
					ueIdx: ueIdx, rbg: rbg, version: version[ueIdx]})
			}
		}
	}
	for ueIdx := range targets {
		pushUe(ueIdx)
	}
	valid := func(cand *pfCandidate) bool {
		return available[cand.rbg] && cand.version == version[cand.ueIdx]
	}

	for {
		best := cq.popBest(valid)
		if best == nil || best.metric <= 0.0 {
			break
		}
		alloc[best.ueIdx] = alloc[best.ueIdx].Union(e.dlGeom.RbsOf(best.rbg))
		available[best.rbg] = false
		version[best.ueIdx] += 1
		pushUe(best.ueIdx)
	}

	pid := HarqProcessFor(e.tti)
	newData := []*DlSchedulingResult{}
	for ueIdx, rnti := range targets {
		if alloc[ueIdx].Empty() {
			continue
		}
		newData = append(newData, e.buildDlNewData(rnti, alloc[ueIdx], pid))
	}
	newData = e.purgeDl(newData)

	delivered := make(map[Rnti]int)
	for _, dr := range newData {
		for _, tb := range dr.Tbs {
			delivered[dr.Rnti] += tb.TbSizeBits
		}
	}
	pf.avg.update(delivered)

	klog.V(4).InfoS("proportional fair downlink", "scheduler", e.name, "tti", e.tti,
		"targets", len(targets), "allocated", len(newData), "retx", len(retx))
	return append(retx, newData...)
}

// rbgRange is the contiguous span of uplink RBGs held by a UE
type rbgRange struct {
	lower int
	upper int
	set   bool
}

// adjacent reports whether the range could grow to take rbg
func (rg rbgRange) adjacent(rbg int) bool {
	return !rg.set || rbg == rg.lower-1 || rbg == rg.upper+1
}

// extend returns the range grown to take rbg
func (rg rbgRange) extend(rbg int) rbgRange {
	if !rg.set {
		return rbgRange{lower: rbg, upper: rbg, set: true}
	}
	return rbgRange{lower: min(rg.lower, rbg), upper: max(rg.upper, rbg), set: true}
}

// ulMetric is the metric of extending the range current of UE rnti by RBG rbg.  An
// RBG that does not touch the range is worth nothing.
func (pf *ProportionalFair) ulMetric(e *EnbScheduler, rnti Rnti, current rbgRange, rbg int) float64 {
	if !current.adjacent(rbg) {
		return 0.0
	}
	if current.set {
		startRb, numRb := e.ulRbgRun(current.lower, current.upper)
		if e.ulCapacityBytes(rnti, startRb, numRb) >= e.cell.BufferStatusReport(rnti) {
			return satisfiedMetric
		}
	}
	hyp := current.extend(rbg)
	startRb, numRb := e.ulRbgRun(hyp.lower, hyp.upper)
	mcs := e.ulSelectMcs(rnti, startRb, numRb)
	return pf.metricOf(rnti, e.tables.TransportBlockSize(mcs, numRb, Uplink))
}

// scheduleUplink grows a contiguous range per UE, greedily by metric
func (pf *ProportionalFair) scheduleUplink(e *EnbScheduler) []*UlSchedulingResult {
	retx, claimed, retxUes := e.selectUlRetransmissions(true)
	targets := e.ulTargets(e.connSnapshot, retxUes)
	if len(targets) == 0 {
		pf.avg.update(nil)
		return retx
	}

	available := make([]bool, e.ulGeom.NumRbg)
	for rbg := range available {
		available[rbg] = !e.ulRbgRbs(rbg).Overlaps(claimed)
	}
	ranges := make([]rbgRange, len(targets))
	version := make([]int, len(targets))

	cq := createCandidateQueue()
	pushUe := func(ueIdx int) {
		for rbg, free := range available {
			if free {
				cq.push(&pfCandidate{metric: pf.ulMetric(e, targets[ueIdx], ranges[ueIdx], rbg),
					ueIdx: ueIdx, rbg: rbg, version: version[ueIdx]})
			}
		}
	}
	for ueIdx := range targets {
		pushUe(ueIdx)
	}
	valid := func(cand *pfCandidate) bool {
		return available[cand.rbg] && cand.version == version[cand.ueIdx]
	}

	for {
		best := cq.popBest(valid)
		if best == nil || best.metric <= 0.0 {
			break
		}
		ranges[best.ueIdx] = ranges[best.ueIdx].extend(best.rbg)
		available[best.rbg] = false
		version[best.ueIdx] += 1
		pushUe(best.ueIdx)
	}

	pid := HarqProcessFor(e.tti)
	newData := []*UlSchedulingResult{}
	for ueIdx, rnti := range targets {
		if !ranges[ueIdx].set {
			continue
		}
		startRb, numRb := e.ulRbgRun(ranges[ueIdx].lower, ranges[ueIdx].upper)
		newData = append(newData, e.buildUlNewData(rnti, startRb, numRb, pid))
	}
	newData = e.purgeUl(newData)

	delivered := make(map[Rnti]int)
	for _, ur := range newData {
		delivered[ur.Rnti] += ur.Tb.TbSizeBits
	}
	pf.avg.update(delivered)

	klog.V(4).InfoS("proportional fair uplink", "scheduler", e.name, "tti", e.tti,
		"targets", len(targets), "allocated", len(newData), "retx", len(retx))
	return append(retx, newData...)
}
