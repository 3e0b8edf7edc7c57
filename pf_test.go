package ltemac

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPfAlpha(t *testing.T) {
	assert.Equal(t, 1.0, pfAlpha(0))
	assert.Equal(t, 0.5, pfAlpha(4))
	assert.Equal(t, 0.25, pfAlpha(8))
}

func TestPfAverages(t *testing.T) {
	pa := createPfAverages(4)
	ues := testUes(2)
	pa.attach(ues[0])
	pa.attach(ues[1])
	assert.Equal(t, PfInitAvgThroughput, pa.get(ues[0]))
	assert.PanicsWithError(t, "PF average throughput entry already exists for UE 1:0", func() { pa.attach(ues[0]) })

	pa.update(map[Rnti]int{ues[0]: 1000})
	assert.InDelta(t, 0.5*PfInitAvgThroughput+0.5*1.0e6, pa.get(ues[0]), 1e-9)
	assert.InDelta(t, 0.5*PfInitAvgThroughput, pa.get(ues[1]), 1e-12, "unserved UEs decay")

	pa.detach(ues[1])
	_, present := pa.lookup(ues[1])
	assert.False(t, present)
	assert.PanicsWithError(t, "PF average throughput entry not found for UE 2:0", func() { pa.detach(ues[1]) })
	assert.Panics(t, func() { pa.set(ues[1], 3.0) })
}

func TestPfAttachDetachFollowsScheduler(t *testing.T) {
	cell := newFakeCell()
	ue := CreateRnti(4, 2)
	e := newTestEnb(t, testCfg(func(cfg *SchedCfg) {
		cfg.DlPolicy = PolicyProportionalFair
		cfg.UlPolicy = PolicyProportionalFair
	}), cell, ue)

	for _, dir := range []Direction{Downlink, Uplink} {
		avg, present := e.PfAverageThroughput(dir, ue)
		assert.True(t, present)
		assert.Equal(t, PfInitAvgThroughput, avg)
	}
	e.NotifyDetach(ue)
	_, present := e.PfAverageThroughput(Downlink, ue)
	assert.False(t, present)

	rr := newTestEnb(t, testCfg(nil), cell, ue)
	_, present = rr.PfAverageThroughput(Downlink, ue)
	assert.False(t, present, "round robin keeps no averages")
}

func TestPfMetricFavoursUnderservedUe(t *testing.T) {
	cell := newFakeCell()
	ues := testUes(2)
	served, starved := ues[0], ues[1]
	for _, ue := range ues {
		cell.addUe(ue, 100000, 0, 10, 1, 100.0)
	}
	e := newTestEnb(t, testCfg(func(cfg *SchedCfg) { cfg.DlPolicy = PolicyProportionalFair }), cell, ues...)
	pf := e.Policy(Downlink).(*ProportionalFair)
	pf.SetAverageThroughput(served, 1.0e6)
	pf.SetAverageThroughput(starved, 1.0e3)

	e.PrepareForScheduleTti(0)
	for rbg := 0; rbg < e.DlGeometry().NumRbg; rbg++ {
		assert.Greater(t, pf.dlMetric(e, starved, RbSet{}, rbg), pf.dlMetric(e, served, RbSet{}, rbg), "rbg %d", rbg)
	}

	results := e.ScheduleDownlink()
	require.Len(t, results, 1)
	assert.Equal(t, starved, results[0].Rnti)
	assert.Equal(t, 50, results[0].Rbs.Count())

	// the served UE's average decays until it wins again
	won := false
	for tti := uint64(1); tti < 30 && !won; tti++ {
		e.PrepareForScheduleTti(tti)
		won = findDl(e.ScheduleDownlink(), served) != nil
	}
	assert.True(t, won)
}

func TestPfStopsWhenBufferCovered(t *testing.T) {
	cell := newFakeCell()
	a := CreateRnti(1, 0)
	cell.addUe(a, 50, 0, 15, 1, 100.0)
	e := newTestEnb(t, testCfg(func(cfg *SchedCfg) { cfg.DlPolicy = PolicyProportionalFair }), cell, a)
	pf := e.Policy(Downlink).(*ProportionalFair)

	e.PrepareForScheduleTti(0)
	assert.Equal(t, satisfiedMetric, pf.dlMetric(e, a, e.DlGeometry().RbsOf(0), 1))

	results := e.ScheduleDownlink()
	require.Len(t, results, 1)
	assert.Equal(t, e.DlGeometry().RbsOf(0), results[0].Rbs)
	assert.Equal(t, 50, results[0].DequeueSize())
}

func TestPfUplinkStarvedUeWins(t *testing.T) {
	cell := newFakeCell()
	ues := testUes(2)
	x, y := ues[0], ues[1]
	for _, ue := range ues {
		cell.addUe(ue, 0, 1000000, 7, 1, 100.0)
	}
	e := newTestEnb(t, testCfg(func(cfg *SchedCfg) { cfg.UlPolicy = PolicyProportionalFair }), cell, ues...)
	pf := e.Policy(Uplink).(*ProportionalFair)
	pf.SetAverageThroughput(x, 1.0)
	pf.SetAverageThroughput(y, 1000.0)

	e.PrepareForScheduleTti(0)
	for rbg := 0; rbg < e.UlGeometry().NumRbg; rbg++ {
		assert.Greater(t, pf.ulMetric(e, x, rbgRange{}, rbg), pf.ulMetric(e, y, rbgRange{}, rbg), "rbg %d", rbg)
	}

	results := e.ScheduleUplink()
	require.Len(t, results, 1)
	assert.Equal(t, x, results[0].Rnti)
	puschStart, puschRbs := e.PuschRange()
	assert.Equal(t, puschStart, results[0].StartRb)
	assert.Equal(t, puschRbs, results[0].NumRb)
}

func TestPfUplinkAdjacency(t *testing.T) {
	cell := newFakeCell()
	a := CreateRnti(1, 0)
	cell.addUe(a, 0, 1000000, 7, 1, 100.0)
	e := newTestEnb(t, testCfg(func(cfg *SchedCfg) { cfg.UlPolicy = PolicyProportionalFair }), cell, a)
	pf := e.Policy(Uplink).(*ProportionalFair)
	e.PrepareForScheduleTti(0)

	held := rbgRange{lower: 3, upper: 5, set: true}
	assert.Equal(t, 0.0, pf.ulMetric(e, a, held, 10))
	assert.Equal(t, 0.0, pf.ulMetric(e, a, held, 4))
	assert.Greater(t, pf.ulMetric(e, a, held, 6), 0.0)
	assert.Greater(t, pf.ulMetric(e, a, held, 2), 0.0)
	assert.Equal(t, rbgRange{lower: 2, upper: 5, set: true}, held.extend(2))
}

func TestCandidateQueueOrder(t *testing.T) {
	cq := createCandidateQueue()
	cq.push(&pfCandidate{metric: 2.0, ueIdx: 1, rbg: 4})
	cq.push(&pfCandidate{metric: 5.0, ueIdx: 2, rbg: 1})
	cq.push(&pfCandidate{metric: 5.0, ueIdx: 0, rbg: 7})
	cq.push(&pfCandidate{metric: 5.0, ueIdx: 0, rbg: 3})
	cq.push(&pfCandidate{metric: 9.0, ueIdx: 3, rbg: 0, version: 1})

	current := func(cand *pfCandidate) bool { return cand.version == 0 }
	order := [][2]int{}
	for cand := cq.popBest(current); cand != nil; cand = cq.popBest(current) {
		order = append(order, [2]int{cand.ueIdx, cand.rbg})
	}
	assert.Equal(t, [][2]int{{0, 3}, {0, 7}, {2, 1}, {1, 4}}, order)
	assert.Zero(t, cq.entries.Len())
}
