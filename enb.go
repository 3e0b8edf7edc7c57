package ltemac

// enb.go holds EnbScheduler, the scheduler of an eNB interface.  It owns the
// state shared by the policies (connected UEs, HARQ entities, RBG geometry) and
// provides the procedures both policies rely on:  deciding which UEs want new
// data, choosing MCS, estimating uplink SINR, selecting HARQ retransmissions,
// and recording what was scheduled into the HARQ entities.
//
// The allocation algorithms themselves live in the policies (rr.go, pf.go); one
// policy instance serves each direction.

import (
	"fmt"
	"math"

	"github.com/iti/rngstream"
	"golang.org/x/exp/slices"
	"k8s.io/klog/v2"
)

// PolicyKind names a scheduling policy
type PolicyKind string

const (
	PolicyRoundRobin       PolicyKind = "rr"
	PolicyProportionalFair PolicyKind = "pf"
)

// SchedulingPolicy is implemented by RoundRobin and ProportionalFair
type SchedulingPolicy interface {
	Kind() PolicyKind
	Direction() Direction

	prepare(e *EnbScheduler)
	scheduleDownlink(e *EnbScheduler) []*DlSchedulingResult
	scheduleUplink(e *EnbScheduler) []*UlSchedulingResult
	notifyAttach(rnti Rnti)
	notifyDetach(rnti Rnti)
}

// createPolicy builds the policy of kind serving direction dir
func createPolicy(kind PolicyKind, dir Direction, cfg *SchedCfg) SchedulingPolicy {
	switch kind {
	case PolicyRoundRobin:
		return createRoundRobin(dir)
	case PolicyProportionalFair:
		return createProportionalFair(dir, cfg.PfFilterCoefficient)
	}
	panic(fmt.Errorf("unknown scheduling policy %q", kind))
}

var _ MacScheduler = (*EnbScheduler)(nil)

// EnbScheduler schedules both directions of one eNB interface
type EnbScheduler struct {
	schedBase

	cfg     SchedCfg
	cell    CellContext
	tables  LinkTables
	harq    *HarqTable
	metrics *SchedMetrics

	dlGeom     RbgGeometry
	ulGeom     RbgGeometry // over the PUSCH blocks, indices relative to puschStart
	puschStart int
	puschRbs   int

	connected    []Rnti // attached UEs, ascending
	connSnapshot []Rnti // connected UEs as of PrepareForScheduleTti

	dlPolicy SchedulingPolicy
	ulPolicy SchedulingPolicy
}

// CreateEnbScheduler is a constructor.  An invalid configuration is fatal.  A nil
// rng gives the scheduler its own RNG stream named after it, a nil tables
// selects the built-in link tables, and a nil metrics disables metrics.
func CreateEnbScheduler(cfg *SchedCfg, cell CellContext, tables LinkTables, rng RandSource,
	metrics *SchedMetrics) *EnbScheduler {

	err := cfg.Validate()
	if err != nil {
		panic(fmt.Errorf("scheduler configuration %s: %w", cfg.Name, err))
	}
	if cell == nil {
		panic(fmt.Errorf("scheduler %s created without a cell context", cfg.Name))
	}
	if tables == nil {
		tables = CreateStdLinkTables(nil)
	}
	if rng == nil {
		rng = rngstream.New(cfg.Name)
	}

	e := new(EnbScheduler)
	e.initBase(cfg.Name, rng)
	e.cfg = *cfg
	e.cell = cell
	e.tables = tables
	e.metrics = metrics
	e.harq = CreateHarqTable()

	e.dlGeom = CreateRbgGeometry(cfg.NumRb, 0)
	e.puschStart = cfg.PucchOverhead / 2
	e.puschRbs = cfg.NumRb - cfg.PucchOverhead
	e.ulGeom = CreateRbgGeometry(e.puschRbs, cfg.UlRbgSize)

	e.connected = []Rnti{}
	e.connSnapshot = []Rnti{}

	e.dlPolicy = createPolicy(cfg.DlPolicy, Downlink, cfg)
	e.ulPolicy = createPolicy(cfg.UlPolicy, Uplink, cfg)

	klog.InfoS("created eNB scheduler", "scheduler", cfg.Name, "numRb", cfg.NumRb,
		"dlPolicy", cfg.DlPolicy, "ulPolicy", cfg.UlPolicy, "rbgSize", e.dlGeom.RbgSize)
	return e
}

// Config returns a copy of the configuration the scheduler was built with
func (e *EnbScheduler) Config() SchedCfg {
	return e.cfg
}

// Harq gives access to the HARQ entities, so feedback can be recorded
func (e *EnbScheduler) Harq() *HarqTable {
	return e.harq
}

// Tables returns the link tables in use
func (e *EnbScheduler) Tables() LinkTables {
	return e.tables
}

// DlGeometry describes the downlink RBGs
func (e *EnbScheduler) DlGeometry() RbgGeometry {
	return e.dlGeom
}

// UlGeometry describes the uplink RBGs, relative to the first PUSCH block
func (e *EnbScheduler) UlGeometry() RbgGeometry {
	return e.ulGeom
}

// PuschRange gives the first PUSCH block and the number of PUSCH blocks
func (e *EnbScheduler) PuschRange() (int, int) {
	return e.puschStart, e.puschRbs
}

// Policy returns the policy serving direction dir
func (e *EnbScheduler) Policy(dir Direction) SchedulingPolicy {
	if dir == Uplink {
		return e.ulPolicy
	}
	return e.dlPolicy
}

// Connected lists the attached UEs in ascending order
func (e *EnbScheduler) Connected() []Rnti {
	return append([]Rnti{}, e.connected...)
}

// NotifyAttach creates the per-UE state of a newly attached UE
func (e *EnbScheduler) NotifyAttach(rnti Rnti) {
	e.harq.Attach(rnti)
	e.connected = append(e.connected, rnti)
	sortRntis(e.connected)
	e.dlPolicy.notifyAttach(rnti)
	e.ulPolicy.notifyAttach(rnti)
	klog.InfoS("UE attached", "scheduler", e.name, "rnti", rnti)
}

// NotifyDetach removes the per-UE state of a UE
func (e *EnbScheduler) NotifyDetach(rnti Rnti) {
	e.harq.Detach(rnti)
	idx := slices.Index(e.connected, rnti)
	e.connected = slices.Delete(e.connected, idx, idx+1)
	// a UE leaving after PrepareForScheduleTti takes no part in this TTI
	idx = slices.Index(e.connSnapshot, rnti)
	if idx >= 0 {
		e.connSnapshot = slices.Delete(e.connSnapshot, idx, idx+1)
	}
	e.dlPolicy.notifyDetach(rnti)
	e.ulPolicy.notifyDetach(rnti)
	klog.InfoS("UE detached", "scheduler", e.name, "rnti", rnti)
}

// PrepareForScheduleTti records the TTI and takes the snapshot of connected UEs the
// schedule calls of this TTI work from
func (e *EnbScheduler) PrepareForScheduleTti(tti uint64) {
	e.schedBase.PrepareForScheduleTti(tti)
	e.connSnapshot = append(e.connSnapshot[:0], e.connected...)
	e.dlPolicy.prepare(e)
	e.ulPolicy.prepare(e)
	klog.V(4).InfoS("prepare TTI", "scheduler", e.name, "tti", tti, "connected", len(e.connSnapshot))
}

// ScheduleDownlink runs the downlink policy for the prepared TTI
func (e *EnbScheduler) ScheduleDownlink() []*DlSchedulingResult {
	if !e.readyToSchedule() {
		return []*DlSchedulingResult{}
	}
	results := e.dlPolicy.scheduleDownlink(e)
	checkDlDisjoint(results)
	e.commitDl(results)
	e.metrics.observeDl(e.dlPolicy.Kind(), results)
	klog.V(4).InfoS("scheduled downlink", "scheduler", e.name, "tti", e.tti, "allocations", len(results))
	return results
}

// ScheduleUplink runs the uplink policy for the prepared TTI
func (e *EnbScheduler) ScheduleUplink() []*UlSchedulingResult {
	if !e.readyToSchedule() {
		return []*UlSchedulingResult{}
	}
	results := e.ulPolicy.scheduleUplink(e)
	checkUlDisjoint(results)
	e.commitUl(results)
	e.metrics.observeUl(e.ulPolicy.Kind(), results)
	klog.V(4).InfoS("scheduled uplink", "scheduler", e.name, "tti", e.tti, "allocations", len(results))
	return results
}

// PfAverageThroughput returns the filtered throughput (bps) kept for a UE by a
// proportional-fair policy in direction dir
func (e *EnbScheduler) PfAverageThroughput(dir Direction, rnti Rnti) (float64, bool) {
	pf, isPf := e.Policy(dir).(*ProportionalFair)
	if !isPf {
		return 0.0, false
	}
	return pf.avg.lookup(rnti)
}

// purgeDl drops empty new-data downlink allocations, counting them
func (e *EnbScheduler) purgeDl(results []*DlSchedulingResult) []*DlSchedulingResult {
	kept := PurgeInvalidDlResults(results)
	e.metrics.addPurged(Downlink, len(results)-len(kept))
	return kept
}

// purgeUl drops empty new-data uplink grants, counting them
func (e *EnbScheduler) purgeUl(results []*UlSchedulingResult) []*UlSchedulingResult {
	kept := PurgeInvalidUlResults(results)
	e.metrics.addPurged(Uplink, len(results)-len(kept))
	return kept
}

// dlIsTargetUe is true when the UE has downlink data and valid channel feedback
func (e *EnbScheduler) dlIsTargetUe(rnti Rnti) bool {
	if e.cell.BufferOccupancy(rnti, DefaultBearer) <= 0 {
		return false
	}
	_, present := e.cell.CqiReport(rnti)
	return present
}

// ulIsTargetUe is true when the UE reported uplink data and has been measured
func (e *EnbScheduler) ulIsTargetUe(rnti Rnti) bool {
	if e.cell.BufferStatusReport(rnti) <= 0 {
		return false
	}
	_, present := e.cell.UlPathloss(rnti)
	return present
}

// blockedForNewData is true for a UE being retransmitted to this TTI, and for a
// UE whose current HARQ process still waits for a retransmission that did not fit
func (e *EnbScheduler) blockedForNewData(rnti Rnti, dir Direction, retxUes []Rnti) bool {
	if slices.Contains(retxUes, rnti) {
		return true
	}
	return e.harq.Entity(rnti, dir).pendingRetx(HarqProcessFor(e.tti), e.cfg.MaxHarqTx)
}

// dlTargets filters candidates down to the UEs to consider for new downlink data, keeping their order
func (e *EnbScheduler) dlTargets(candidates []Rnti, retxUes []Rnti) []Rnti {
	targets := []Rnti{}
	for _, rnti := range candidates {
		if e.dlIsTargetUe(rnti) && !e.blockedForNewData(rnti, Downlink, retxUes) {
			targets = append(targets, rnti)
		}
	}
	return targets
}

// ulTargets filters candidates down to the UEs to consider for new uplink data, keeping their order
func (e *EnbScheduler) ulTargets(candidates []Rnti, retxUes []Rnti) []Rnti {
	targets := []Rnti{}
	for _, rnti := range candidates {
		if e.ulIsTargetUe(rnti) && !e.blockedForNewData(rnti, Uplink, retxUes) {
			targets = append(targets, rnti)
		}
	}
	return targets
}

// dlScheme picks the transmission scheme from the antenna count and reported rank
func (e *EnbScheduler) dlScheme(rnti Rnti) TxScheme {
	if e.cfg.NumTxAntennas < 2 {
		return SingleAntenna
	}
	report, present := e.cell.CqiReport(rnti)
	if present && report.Rank >= 2 {
		return SpatialMultiplexing
	}
	return TxDiversity
}

// dlSelectMcs chooses the MCS of transport block tbIdx over the blocks rbs
func (e *EnbScheduler) dlSelectMcs(rnti Rnti, rbs RbSet, tbIdx int) int {
	report, present := e.cell.CqiReport(rnti)
	if !present {
		return 0
	}
	cqi := report.Wideband[tbIdx]
	if e.cfg.EnableSubbandCqi && len(report.Subband[tbIdx]) > 0 {
		minCqi := math.MaxInt
		for _, rbg := range e.dlGeom.RbgsTouched(rbs) {
			if rbg < len(report.Subband[tbIdx]) {
				minCqi = min(minCqi, report.Subband[tbIdx][rbg])
			}
		}
		if minCqi != math.MaxInt {
			cqi = minCqi
		}
	}
	mcs := e.tables.CqiToMcs(cqi, rbs.Count())
	if mcs < 0 {
		mcs = 0
	}
	return min(mcs, e.tables.MaxMcs(Downlink))
}

// dlCapacityBits is the number of bits the UE's transport blocks would carry on rbs
func (e *EnbScheduler) dlCapacityBits(rnti Rnti, rbs RbSet) int {
	total := 0
	numRb := rbs.Count()
	for tbIdx := 0; tbIdx < e.dlScheme(rnti).numTbs(); tbIdx++ {
		mcs := e.dlSelectMcs(rnti, rbs, tbIdx)
		total += e.tables.TransportBlockSize(mcs, numRb, Downlink)
	}
	return total
}

// dlCapacityBytes is the number of payload bytes the UE's transport blocks would carry on rbs
func (e *EnbScheduler) dlCapacityBytes(rnti Rnti, rbs RbSet) int {
	total := 0
	numRb := rbs.Count()
	for tbIdx := 0; tbIdx < e.dlScheme(rnti).numTbs(); tbIdx++ {
		mcs := e.dlSelectMcs(rnti, rbs, tbIdx)
		total += e.DetermineDequeueSize(e.tables.TransportBlockSize(mcs, numRb, Downlink))
	}
	return total
}

// buildDlNewData builds the new-data allocation of a UE on rbs.  The UE's buffer is
// split over the transport blocks in order, so a block may carry nothing.
func (e *EnbScheduler) buildDlNewData(rnti Rnti, rbs RbSet, pid int) *DlSchedulingResult {
	dr := new(DlSchedulingResult)
	dr.Rnti = rnti
	dr.Scheme = e.dlScheme(rnti)
	dr.Rbs = rbs
	dr.Tbs = make([]TbDesc, 0, dr.Scheme.numTbs())

	remaining := e.cell.BufferOccupancy(rnti, DefaultBearer)
	numRb := rbs.Count()
	for tbIdx := 0; tbIdx < dr.Scheme.numTbs(); tbIdx++ {
		mcs := e.dlSelectMcs(rnti, rbs, tbIdx)
		tbsBits := e.tables.TransportBlockSize(mcs, numRb, Downlink)
		deq := min(e.DetermineDequeueSize(tbsBits), max(remaining, 0))
		remaining -= deq
		dr.Tbs = append(dr.Tbs, TbDesc{Mcs: mcs, TbSizeBits: tbsBits, DequeueSize: deq,
			BearerID: DefaultBearer, HarqProcess: pid, TbIndex: tbIdx, NewData: true,
			RvIndex: RedundancyVersion(0)})
	}
	return dr
}

// calculateEstimatedSinrUl estimates the linear SINR on each of the numRb blocks
// starting at startRb, were the UE to transmit on them with open-loop power control
func (e *EnbScheduler) calculateEstimatedSinrUl(rnti Rnti, numRb, startRb int) []float64 {
	if numRb <= 0 {
		return []float64{}
	}
	pl, present := e.cell.UlPathloss(rnti)
	if !present {
		return []float64{}
	}
	txDbm := math.Min(e.cell.MaxUlTxPower(rnti),
		10.0*math.Log10(float64(numRb))+e.cfg.P0Pusch+e.cfg.Alpha*pl.FilteredDb)
	txPerRbMw := math.Pow(10.0, txDbm/10.0) / float64(numRb)

	antennas := pl.PerAntennaDb
	if len(antennas) == 0 {
		antennas = []float64{pl.FilteredDb}
	}
	rxPerRbMw := 0.0
	for _, plDb := range antennas {
		rxPerRbMw += txPerRbMw * math.Pow(10.0, -plDb/10.0)
	}

	noise := e.cell.ThermalNoise()
	sinr := make([]float64, numRb)
	for idx := range sinr {
		interference := e.cell.UlInterferencePower(startRb+idx, e.cfg.UseFilteredInterference)
		sinr[idx] = rxPerRbMw / (noise + interference)
	}
	return sinr
}

// ulSelectMcs picks the highest MCS whose estimated BLER on the run meets the target,
// falling back to MCS 0
func (e *EnbScheduler) ulSelectMcs(rnti Rnti, startRb, numRb int) int {
	sinr := e.calculateEstimatedSinrUl(rnti, numRb, startRb)
	if len(sinr) == 0 {
		return 0
	}
	history := [][]float64{sinr}
	for mcs := e.tables.MaxMcs(Uplink); mcs >= 0; mcs-- {
		if e.tables.EstimateBler(mcs, history, e.cfg.BlerOffsetDb) <= e.cfg.BlerTarget {
			return mcs
		}
	}
	klog.V(5).InfoS("no uplink MCS meets BLER target", "scheduler", e.name, "rnti", rnti,
		"startRb", startRb, "numRb", numRb)
	return 0
}

// ulCapacityBytes is the payload a grant of the run would carry
func (e *EnbScheduler) ulCapacityBytes(rnti Rnti, startRb, numRb int) int {
	mcs := e.ulSelectMcs(rnti, startRb, numRb)
	return e.DetermineDequeueSize(e.tables.TransportBlockSize(mcs, numRb, Uplink))
}

// buildUlNewData builds a new-data grant on the run, startRb being an absolute block index
func (e *EnbScheduler) buildUlNewData(rnti Rnti, startRb, numRb, pid int) *UlSchedulingResult {
	mcs := e.ulSelectMcs(rnti, startRb, numRb)
	tbsBits := e.tables.TransportBlockSize(mcs, numRb, Uplink)
	deq := min(e.DetermineDequeueSize(tbsBits), max(e.cell.BufferStatusReport(rnti), 0))
	ur := new(UlSchedulingResult)
	ur.Rnti = rnti
	ur.StartRb = startRb
	ur.NumRb = numRb
	ur.Tb = TbDesc{Mcs: mcs, TbSizeBits: tbsBits, DequeueSize: deq, BearerID: DefaultBearer,
		HarqProcess: pid, TbIndex: 0, NewData: true, RvIndex: RedundancyVersion(0)}
	return ur
}

// ulRbgRbs gives the absolute blocks of uplink RBG rbg
func (e *EnbScheduler) ulRbgRbs(rbg int) RbSet {
	start, num := e.ulRbgRun(rbg, rbg)
	return RbRange(start, num)
}

// ulRbgRun gives the absolute first block and block count of uplink RBGs lower..upper
func (e *EnbScheduler) ulRbgRun(lower, upper int) (int, int) {
	start := lower * e.ulGeom.RbgSize
	end := min((upper+1)*e.ulGeom.RbgSize, e.puschRbs)
	return e.puschStart + start, end - start
}

// selectDlRetransmissions visits the connected UEs in random order and builds a
// retransmission for each whose current HARQ process holds a NACKed block.  It
// returns them, the blocks they claim, and the UEs they serve.
func (e *EnbScheduler) selectDlRetransmissions() ([]*DlSchedulingResult, RbSet, []Rnti) {
	retx := []*DlSchedulingResult{}
	retxUes := []Rnti{}
	var claimed RbSet

	ues := append([]Rnti{}, e.connSnapshot...)
	shuffle(e.rng, ues)
	pid := HarqProcessFor(e.tti)

	for _, rnti := range ues {
		if len(retx) >= e.dlGeom.NumRbg {
			break
		}
		hp := e.harq.Entity(rnti, Downlink).Process(pid)
		var dr *DlSchedulingResult
		for tbIdx := range hp.Tbs {
			tb := &hp.Tbs[tbIdx]
			if !tb.awaitingRetx(e.cfg.MaxHarqTx) {
				continue
			}
			if dr == nil {
				dr = &DlSchedulingResult{Rnti: rnti, Scheme: tb.Scheme, Rbs: tb.Rbs, Tbs: []TbDesc{}}
			}
			dr.Tbs = append(dr.Tbs, TbDesc{Mcs: tb.Mcs, TbSizeBits: tb.TbSizeBits, DequeueSize: tb.DataBytes,
				BearerID: tb.BearerID, HarqProcess: pid, TbIndex: tbIdx, NewData: false,
				RvIndex: RedundancyVersion(tb.TxCount)})
		}
		if dr == nil {
			continue
		}
		if dr.Rbs.Overlaps(claimed) {
			klog.V(4).InfoS("downlink retransmission deferred, blocks in use", "scheduler", e.name,
				"rnti", rnti, "harq", pid)
			continue
		}
		claimed = claimed.Union(dr.Rbs)
		retx = append(retx, dr)
		retxUes = append(retxUes, rnti)
	}
	return retx, claimed, retxUes
}

// selectUlRetransmissions is the uplink counterpart of selectDlRetransmissions.  When
// pinned is true the retransmissions keep their recorded blocks and may not overlap;
// otherwise only their block counts are reserved, their position is decided later.
func (e *EnbScheduler) selectUlRetransmissions(pinned bool) ([]*UlSchedulingResult, RbSet, []Rnti) {
	retx := []*UlSchedulingResult{}
	retxUes := []Rnti{}
	var claimed RbSet
	claimedRbs := 0

	ues := append([]Rnti{}, e.connSnapshot...)
	shuffle(e.rng, ues)
	pid := HarqProcessFor(e.tti)

	for _, rnti := range ues {
		if claimedRbs >= e.puschRbs {
			break
		}
		tb := &e.harq.Entity(rnti, Uplink).Process(pid).Tbs[0]
		if !tb.awaitingRetx(e.cfg.MaxHarqTx) {
			continue
		}
		if claimedRbs+tb.NumRb > e.puschRbs {
			continue
		}
		rbs := RbRange(tb.StartRb, tb.NumRb)
		if pinned && rbs.Overlaps(claimed) {
			klog.V(4).InfoS("uplink retransmission deferred, blocks in use", "scheduler", e.name,
				"rnti", rnti, "harq", pid)
			continue
		}
		ur := &UlSchedulingResult{Rnti: rnti, StartRb: tb.StartRb, NumRb: tb.NumRb,
			Tb: TbDesc{Mcs: tb.Mcs, TbSizeBits: tb.TbSizeBits, DequeueSize: tb.DataBytes,
				BearerID: tb.BearerID, HarqProcess: pid, TbIndex: 0, NewData: false,
				RvIndex: RedundancyVersion(tb.TxCount)}}
		if pinned {
			claimed = claimed.Union(rbs)
		}
		claimedRbs += tb.NumRb
		retx = append(retx, ur)
		retxUes = append(retxUes, rnti)
	}
	return retx, claimed, retxUes
}

// commitDl records the downlink allocations of this TTI in the HARQ entities
func (e *EnbScheduler) commitDl(results []*DlSchedulingResult) {
	for _, dr := range results {
		he := e.harq.Entity(dr.Rnti, Downlink)
		for _, tb := range dr.Tbs {
			if !tb.NewData {
				he.recordRetx(tb.HarqProcess, tb.TbIndex, tb.RvIndex, e.tti)
				continue
			}
			he.recordNewTx(tb.HarqProcess, tb.TbIndex, HarqTb{TbSizeBits: tb.TbSizeBits,
				DataBytes: tb.DequeueSize, Rbs: dr.Rbs, Mcs: tb.Mcs,
				ModOrder: e.tables.ModulationOrder(tb.Mcs, Downlink), Scheme: dr.Scheme,
				BearerID: tb.BearerID, LastTti: e.tti})
		}
		// a block of the process not sent this time no longer belongs with it
		if dr.NewData() && len(dr.Tbs) < MaxTbPerProcess {
			hp := he.Process(dr.Tbs[0].HarqProcess)
			for tbIdx := len(dr.Tbs); tbIdx < MaxTbPerProcess; tbIdx++ {
				hp.Tbs[tbIdx] = HarqTb{}
			}
		}
	}
}

// commitUl records the uplink grants of this TTI in the HARQ entities
func (e *EnbScheduler) commitUl(results []*UlSchedulingResult) {
	for _, ur := range results {
		he := e.harq.Entity(ur.Rnti, Uplink)
		if !ur.Tb.NewData {
			he.recordRetx(ur.Tb.HarqProcess, 0, ur.Tb.RvIndex, e.tti)
			tb := &he.Process(ur.Tb.HarqProcess).Tbs[0]
			tb.StartRb = ur.StartRb
			tb.Rbs = ur.Rbs()
			continue
		}
		he.recordNewTx(ur.Tb.HarqProcess, 0, HarqTb{TbSizeBits: ur.Tb.TbSizeBits,
			DataBytes: ur.Tb.DequeueSize, Rbs: ur.Rbs(), StartRb: ur.StartRb, NumRb: ur.NumRb,
			Mcs: ur.Tb.Mcs, ModOrder: e.tables.ModulationOrder(ur.Tb.Mcs, Uplink),
			BearerID: ur.Tb.BearerID, LastTti: e.tti})
	}
}
