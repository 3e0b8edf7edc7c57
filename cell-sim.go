package ltemac

// cell-sim.go holds CellSim, a discrete-event simulation of one cell that drives an
// EnbScheduler TTI by TTI.  CellSim plays every part the scheduler expects from its
// surroundings:  it queues offered traffic, invents channel feedback around each
// UE's configured mean, decides the fate of every transport block from the link
// tables' BLER model, and reports ACK/NACK a few TTIs later as a HARQ entity would
// receive it.  Uplink grants pass through a UeScheduler per UE before data is taken
// from the UE's buffer.

import (
	"fmt"
	"math"

	"github.com/iti/evt/evtm"
	"github.com/iti/evt/vrtime"
	"github.com/iti/rngstream"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
	"k8s.io/klog/v2"
)

// TtiSeconds is the duration of a TTI
const TtiSeconds = 0.001

// simUe is the simulated state of one UE
type simUe struct {
	desc    UeDesc
	rnti    Rnti
	dl      *trafficQueue
	ul      *trafficQueue
	cqi     CqiReport
	cqiSet  bool
	ueSched *UeScheduler

	dlDelivered int
	ulDelivered int
	dlRetx      int
	ulRetx      int
	dlLost      int
	ulLost      int
}

// UlBufferOccupancy makes simUe the UeBuffer of its UE scheduler
func (su *simUe) UlBufferOccupancy(bearerID int) int {
	if bearerID != DefaultBearer {
		return 0
	}
	return su.ul.occupancy()
}

// harqKey names one transport block of one HARQ process
type harqKey struct {
	rnti  Rnti
	dir   Direction
	pid   int
	tbIdx int
}

// feedbackEvent carries the outcome of a transmission to the TTI it is reported in
type feedbackEvent struct {
	key   harqKey
	ack   bool
	bytes int
	final bool // a NACK loses the block
}

// CellSim simulates one cell around an eNB scheduler
type CellSim struct {
	cfg     CellSimCfg
	sched   *EnbScheduler
	tables  LinkTables
	rng     *rngstream.RngStream
	trace   *TraceManager
	ues     []*simUe
	byRnti  map[Rnti]*simUe
	noiseMw float64
	intfMw  float64

	ulIntf []float64 // instantaneous uplink interference per RB this TTI

	// per-RB SINR of every transmission of each block still in a HARQ process
	sinrHistory map[harqKey][][]float64

	tti uint64
}

// CreateCellSim is a constructor.  An invalid configuration is fatal.  A nil
// tables selects the built-in link tables, trace and metrics may be nil.
func CreateCellSim(cfg *CellSimCfg, tables LinkTables, metrics *SchedMetrics, trace *TraceManager) *CellSim {
	err := cfg.Validate()
	if err != nil {
		panic(fmt.Errorf("cell simulation %s: %w", cfg.Name, err))
	}
	if tables == nil {
		tables = CreateStdLinkTables(nil)
	}

	cs := new(CellSim)
	cs.cfg = *cfg
	cs.tables = tables
	cs.trace = trace
	cs.rng = rngstream.New(cfg.Name)
	cs.noiseMw = math.Pow(10.0, cfg.NoiseDbm/10.0)
	cs.intfMw = math.Pow(10.0, cfg.InterferenceDbm/10.0)
	cs.ulIntf = make([]float64, cfg.Sched.NumRb)
	for rb := range cs.ulIntf {
		cs.ulIntf[rb] = cs.intfMw
	}
	cs.sinrHistory = make(map[harqKey][][]float64)
	cs.byRnti = make(map[Rnti]*simUe)

	cs.sched = CreateEnbScheduler(&cfg.Sched, cs, tables, nil, metrics)

	for _, ud := range cfg.UEs {
		su := new(simUe)
		su.desc = ud
		su.rnti = ud.Rnti()
		trafficRng := rngstream.New(ud.Name)
		su.dl = createTrafficQueue(ud.DlRateMbps, ud.FrameSize, ud.ArrivalModel, trafficRng)
		su.ul = createTrafficQueue(ud.UlRateMbps, ud.FrameSize, ud.ArrivalModel, trafficRng)
		su.ueSched = CreateUeScheduler(ud.Name, su.rnti, su)
		cs.ues = append(cs.ues, su)
		cs.byRnti[su.rnti] = su

		cs.sched.NotifyAttach(su.rnti)
		if trace != nil {
			trace.AddName(su.rnti, ud.Name)
		}
	}
	return cs
}

// Scheduler returns the scheduler the simulation drives
func (cs *CellSim) Scheduler() *EnbScheduler {
	return cs.sched
}

func (cs *CellSim) ue(rnti Rnti) *simUe {
	su, present := cs.byRnti[rnti]
	if !present {
		panic(fmt.Errorf("cell simulation %s has no UE %s", cs.cfg.Name, rnti))
	}
	return su
}

// BufferOccupancy is the downlink backlog of the UE
func (cs *CellSim) BufferOccupancy(rnti Rnti, bearerID int) int {
	if bearerID != DefaultBearer {
		return 0
	}
	return cs.ue(rnti).dl.occupancy()
}

// BufferStatusReport is the uplink backlog of the UE
func (cs *CellSim) BufferStatusReport(rnti Rnti) int {
	return cs.ue(rnti).ul.occupancy()
}

func (cs *CellSim) CqiReport(rnti Rnti) (CqiReport, bool) {
	su := cs.ue(rnti)
	return su.cqi, su.cqiSet
}

// UlPathloss reports the configured pathloss on two receive antennas
func (cs *CellSim) UlPathloss(rnti Rnti) (PathlossEstimate, bool) {
	pl := cs.ue(rnti).desc.PathlossDb
	return PathlossEstimate{FilteredDb: pl, PerAntennaDb: []float64{pl, pl}}, true
}

func (cs *CellSim) MaxUlTxPower(rnti Rnti) float64 {
	return cs.cfg.MaxUlTxPowerDbm
}

func (cs *CellSim) ThermalNoise() float64 {
	return cs.noiseMw
}

// UlInterferencePower gives the mean interference when filtered, this TTI's draw otherwise
func (cs *CellSim) UlInterferencePower(rb int, filtered bool) float64 {
	if filtered || rb < 0 || rb >= len(cs.ulIntf) {
		return cs.intfMw
	}
	return cs.ulIntf[rb]
}

// drawCqi gives a CQI within spread of mean, never below 1 nor above 15
func (cs *CellSim) drawCqi(mean float64, spread int) int {
	offset := int(cs.rng.RandU01()*float64(2*spread+1)) - spread
	return min(max(int(math.Round(mean))+offset, 1), 15)
}

// refreshChannel draws this TTI's feedback and interference
func (cs *CellSim) refreshChannel() {
	numRbg := cs.sched.DlGeometry().NumRbg
	for _, su := range cs.ues {
		su.cqi.Rank = su.desc.Rank
		for cw := 0; cw < 2; cw++ {
			su.cqi.Wideband[cw] = cs.drawCqi(su.desc.MeanCqi, su.desc.CqiSpread)
			su.cqi.Subband[cw] = make([]int, numRbg)
			for rbg := range su.cqi.Subband[cw] {
				su.cqi.Subband[cw][rbg] = cs.drawCqi(float64(su.cqi.Wideband[cw]), 1)
			}
		}
		su.cqiSet = true
	}
	for rb := range cs.ulIntf {
		// exponential fading of the interference around its mean
		cs.ulIntf[rb] = cs.intfMw * expRV(cs.rng.RandU01(), 1.0)
	}
}

// dlSinr is the per-RB linear SINR a UE sees on its downlink allocation, taken to
// sit 1 dB above the 10% BLER point of the MCS its CQI maps to
func (cs *CellSim) dlSinr(su *simUe, tbIdx int, rbs RbSet) []float64 {
	sinr := make([]float64, 0, rbs.Count())
	for range rbs.Indices() {
		mcs := max(cs.tables.CqiToMcs(su.cqi.Wideband[tbIdx], rbs.Count()), 0)
		sinrDb := -6.0 + 0.9*float64(mcs)
		sinr = append(sinr, math.Pow(10.0, sinrDb/10.0))
	}
	return sinr
}

// transmit draws the fate of one transport block and reports it after the feedback delay
func (cs *CellSim) transmit(evtMgr *evtm.EventManager, key harqKey, newData bool, mcs, bytes int, sinr []float64) {
	if newData {
		cs.sinrHistory[key] = [][]float64{}
	}
	cs.sinrHistory[key] = append(cs.sinrHistory[key], sinr)
	bler := cs.tables.EstimateBler(mcs, cs.sinrHistory[key], 0.0)
	ack := cs.rng.RandU01() >= bler

	tb := cs.sched.Harq().Entity(key.rnti, key.dir).Process(key.pid).Tbs[key.tbIdx]
	fb := feedbackEvent{key: key, ack: ack, bytes: bytes, final: tb.TxCount >= cs.cfg.Sched.MaxHarqTx}
	evtMgr.Schedule(cs, fb, reportFeedback, vrtime.SecondsToTime(float64(cs.cfg.FeedbackDelayTti)*TtiSeconds))
}

// reportFeedback is the event handler delivering ACK/NACK to the scheduler's HARQ entity
func reportFeedback(evtMgr *evtm.EventManager, context any, data any) any {
	cs := context.(*CellSim)
	fb := data.(feedbackEvent)
	cs.sched.Harq().Entity(fb.key.rnti, fb.key.dir).SetFeedback(fb.key.pid, fb.key.tbIdx, fb.ack)

	su := cs.ue(fb.key.rnti)
	switch {
	case fb.ack && fb.key.dir == Downlink:
		su.dlDelivered += fb.bytes
	case fb.ack:
		su.ulDelivered += fb.bytes
	case fb.final && fb.key.dir == Downlink:
		su.dlLost += fb.bytes
	case fb.final:
		su.ulLost += fb.bytes
	}
	if fb.ack || fb.final {
		delete(cs.sinrHistory, fb.key)
	}
	return nil
}

// subframeTick is the event handler run once per TTI
func subframeTick(evtMgr *evtm.EventManager, context any, data any) any {
	cs := context.(*CellSim)
	now := evtMgr.CurrentSeconds()
	for _, su := range cs.ues {
		su.dl.advance(now)
		su.ul.advance(now)
	}
	cs.refreshChannel()

	cs.sched.PrepareForScheduleTti(cs.tti)

	dl := cs.sched.ScheduleDownlink()
	for _, dr := range dl {
		su := cs.ue(dr.Rnti)
		for _, tb := range dr.Tbs {
			if tb.NewData {
				su.dl.dequeue(tb.DequeueSize)
			} else {
				su.dlRetx += 1
			}
			key := harqKey{rnti: dr.Rnti, dir: Downlink, pid: tb.HarqProcess, tbIdx: tb.TbIndex}
			cs.transmit(evtMgr, key, tb.NewData, tb.Mcs, tb.DequeueSize, cs.dlSinr(su, tb.TbIndex, dr.Rbs))
		}
	}
	AddDlTrace(cs.trace, evtMgr.CurrentTime(), cs.tti, dl)

	ul := cs.sched.ScheduleUplink()
	sent := []*UlSchedulingResult{}
	for _, grant := range ul {
		su := cs.ue(grant.Rnti)
		su.ueSched.NotifyUlGrant(*grant, cs.tti)
		su.ueSched.PrepareForScheduleTti(cs.tti)
		for _, ur := range su.ueSched.ScheduleUplink() {
			if ur.Tb.NewData {
				su.ul.dequeue(ur.Tb.DequeueSize)
			} else {
				su.ulRetx += 1
			}
			key := harqKey{rnti: ur.Rnti, dir: Uplink, pid: ur.Tb.HarqProcess}
			sinr := cs.sched.calculateEstimatedSinrUl(ur.Rnti, ur.NumRb, ur.StartRb)
			cs.transmit(evtMgr, key, ur.Tb.NewData, ur.Tb.Mcs, ur.Tb.DequeueSize, sinr)
			sent = append(sent, ur)
		}
	}
	AddUlTrace(cs.trace, evtMgr.CurrentTime(), cs.tti, sent)

	klog.V(4).InfoS("subframe", "cell", cs.cfg.Name, "tti", cs.tti, "dl", len(dl), "ul", len(sent))

	cs.tti += 1
	if cs.tti < uint64(cs.cfg.Ttis) {
		evtMgr.Schedule(cs, nil, subframeTick, vrtime.SecondsToTime(TtiSeconds))
	}
	return nil
}

// Run simulates the configured number of TTIs and summarizes the outcome
func (cs *CellSim) Run() *SimSummary {
	evtMgr := evtm.New()
	evtMgr.Schedule(cs, nil, subframeTick, vrtime.SecondsToTime(0.0))
	evtMgr.Run(float64(cs.cfg.Ttis+cs.cfg.FeedbackDelayTti+1) * TtiSeconds)
	klog.InfoS("cell simulation complete", "cell", cs.cfg.Name, "ttis", cs.tti)
	return cs.summarize()
}

// UeSummary is the outcome of a run for one UE
type UeSummary struct {
	Name        string  `json:"name" yaml:"name"`
	Rnti        string  `json:"rnti" yaml:"rnti"`
	DlBytes     int     `json:"dlbytes" yaml:"dlbytes"`
	UlBytes     int     `json:"ulbytes" yaml:"ulbytes"`
	DlMbps      float64 `json:"dlmbps" yaml:"dlmbps"`
	UlMbps      float64 `json:"ulmbps" yaml:"ulmbps"`
	DlRetx      int     `json:"dlretx" yaml:"dlretx"`
	UlRetx      int     `json:"ulretx" yaml:"ulretx"`
	DlLostBytes int     `json:"dllostbytes" yaml:"dllostbytes"`
	UlLostBytes int     `json:"ullostbytes" yaml:"ullostbytes"`
	DlBacklog   int     `json:"dlbacklog" yaml:"dlbacklog"`
	UlBacklog   int     `json:"ulbacklog" yaml:"ulbacklog"`
}

// SimSummary is the outcome of a run
type SimSummary struct {
	Name       string      `json:"name" yaml:"name"`
	Ttis       uint64      `json:"ttis" yaml:"ttis"`
	DlPolicy   PolicyKind  `json:"dlpolicy" yaml:"dlpolicy"`
	UlPolicy   PolicyKind  `json:"ulpolicy" yaml:"ulpolicy"`
	MeanDlMbps float64     `json:"meandlmbps" yaml:"meandlmbps"`
	MeanUlMbps float64     `json:"meanulmbps" yaml:"meanulmbps"`
	JainDl     float64     `json:"jaindl" yaml:"jaindl"`
	JainUl     float64     `json:"jainul" yaml:"jainul"`
	UEs        []UeSummary `json:"ues" yaml:"ues"`
}

// WriteToFile stores the summary, as yaml or json according to the file extension
func (ss *SimSummary) WriteToFile(filename string) error {
	return writeDesc(*ss, filename)
}

// JainIndex is Jain's fairness index of the values, 1 when all are equal (or all zero)
func JainIndex(values []float64) float64 {
	if len(values) == 0 {
		return 1.0
	}
	sumSq := floats.Dot(values, values)
	if sumSq == 0.0 {
		return 1.0
	}
	sum := floats.Sum(values)
	return sum * sum / (float64(len(values)) * sumSq)
}

func (cs *CellSim) summarize() *SimSummary {
	ss := new(SimSummary)
	ss.Name = cs.cfg.Name
	ss.Ttis = cs.tti
	ss.DlPolicy = cs.cfg.Sched.DlPolicy
	ss.UlPolicy = cs.cfg.Sched.UlPolicy
	ss.UEs = make([]UeSummary, 0, len(cs.ues))

	seconds := max(float64(cs.tti)*TtiSeconds, TtiSeconds)
	dlMbps := make([]float64, 0, len(cs.ues))
	ulMbps := make([]float64, 0, len(cs.ues))
	for _, su := range cs.ues {
		us := UeSummary{Name: su.desc.Name, Rnti: su.rnti.String(), DlBytes: su.dlDelivered, UlBytes: su.ulDelivered,
			DlRetx: su.dlRetx, UlRetx: su.ulRetx, DlLostBytes: su.dlLost, UlLostBytes: su.ulLost,
			DlBacklog: su.dl.occupancy(), UlBacklog: su.ul.occupancy()}
		us.DlMbps = roundFloat(float64(8*su.dlDelivered)/seconds/1e6, 6)
		us.UlMbps = roundFloat(float64(8*su.ulDelivered)/seconds/1e6, 6)
		dlMbps = append(dlMbps, us.DlMbps)
		ulMbps = append(ulMbps, us.UlMbps)
		ss.UEs = append(ss.UEs, us)
	}
	ss.MeanDlMbps = stat.Mean(dlMbps, nil)
	ss.MeanUlMbps = stat.Mean(ulMbps, nil)
	ss.JainDl = JainIndex(dlMbps)
	ss.JainUl = JainIndex(ulMbps)
	return ss
}
