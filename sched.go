package ltemac

// sched.go holds what every scheduler shares: the per-TTI contract, the
// structures a scheduling decision is reported in, and small utilities
// (dequeue size, shuffling, purging) used by the policies.
//
// A scheduler is driven once per TTI:  PrepareForScheduleTti is called first,
// then ScheduleDownlink and ScheduleUplink, each returning the allocations
// for that TTI.  No two allocations returned by one call share a resource block.

import (
	"fmt"

	"k8s.io/klog/v2"
)

// MacScheduler is the contract offered to the MAC layer of an interface
type MacScheduler interface {
	// PrepareForScheduleTti must be called once per TTI, before either schedule call
	PrepareForScheduleTti(tti uint64)

	// ScheduleDownlink returns the downlink allocations of the current TTI
	ScheduleDownlink() []*DlSchedulingResult

	// ScheduleUplink returns the uplink allocations of the current TTI
	ScheduleUplink() []*UlSchedulingResult

	NotifyPowerOn()
	NotifyPowerOff()
	NotifyAttach(rnti Rnti)
	NotifyDetach(rnti Rnti)
}

// RandSource supplies uniform samples in [0,1).  *rngstream.RngStream satisfies it.
type RandSource interface {
	RandU01() float64
}

// TbDesc describes one transport block of an allocation
type TbDesc struct {
	Mcs         int  `json:"mcs" yaml:"mcs"`
	TbSizeBits  int  `json:"tbsizebits" yaml:"tbsizebits"`
	DequeueSize int  `json:"dequeuesize" yaml:"dequeuesize"` // bytes to take from the bearer
	BearerID    int  `json:"bearerid" yaml:"bearerid"`
	HarqProcess int  `json:"harqprocess" yaml:"harqprocess"`
	TbIndex     int  `json:"tbindex" yaml:"tbindex"` // transport block within the HARQ process
	NewData     bool `json:"newdata" yaml:"newdata"`
	RvIndex     int  `json:"rvindex" yaml:"rvindex"`
}

// DlSchedulingResult is the downlink allocation of one UE in one TTI
type DlSchedulingResult struct {
	Rnti   Rnti     `json:"rnti" yaml:"rnti"`
	Scheme TxScheme `json:"scheme" yaml:"scheme"`
	Rbs    RbSet    `json:"-" yaml:"-"`
	Tbs    []TbDesc `json:"tbs" yaml:"tbs"`
}

// NewData is true when the allocation carries first transmissions
func (dr *DlSchedulingResult) NewData() bool {
	return len(dr.Tbs) > 0 && dr.Tbs[0].NewData
}

// DequeueSize is the total bytes the allocation takes from the bearer
func (dr *DlSchedulingResult) DequeueSize() int {
	total := 0
	for _, tb := range dr.Tbs {
		total += tb.DequeueSize
	}
	return total
}

// UlSchedulingResult is the uplink allocation (grant) of one UE in one TTI.
// Uplink resource blocks are always one contiguous run.
type UlSchedulingResult struct {
	Rnti    Rnti   `json:"rnti" yaml:"rnti"`
	StartRb int    `json:"startrb" yaml:"startrb"`
	NumRb   int    `json:"numrb" yaml:"numrb"`
	Tb      TbDesc `json:"tb" yaml:"tb"`
}

// Rbs is the set of blocks of the run
func (ur *UlSchedulingResult) Rbs() RbSet {
	return RbRange(ur.StartRb, ur.NumRb)
}

// NewData is true when the grant is for a first transmission
func (ur *UlSchedulingResult) NewData() bool {
	return ur.Tb.NewData
}

// PurgeInvalidDlResults drops the new-data transport blocks that would carry
// nothing, and the allocations left with no transport block.  Retransmissions
// are never dropped.
func PurgeInvalidDlResults(results []*DlSchedulingResult) []*DlSchedulingResult {
	kept := make([]*DlSchedulingResult, 0, len(results))
	for _, dr := range results {
		tbs := make([]TbDesc, 0, len(dr.Tbs))
		for _, tb := range dr.Tbs {
			if tb.NewData && tb.DequeueSize <= 0 {
				continue
			}
			tbs = append(tbs, tb)
		}
		if len(tbs) == 0 {
			continue
		}
		dr.Tbs = tbs
		kept = append(kept, dr)
	}
	return kept
}

// PurgeInvalidUlResults drops new-data grants that would carry nothing
func PurgeInvalidUlResults(results []*UlSchedulingResult) []*UlSchedulingResult {
	kept := make([]*UlSchedulingResult, 0, len(results))
	for _, ur := range results {
		if ur.Tb.NewData && ur.Tb.DequeueSize <= 0 {
			continue
		}
		kept = append(kept, ur)
	}
	return kept
}

// defaultDequeueSize converts a transport block size to payload bytes
func defaultDequeueSize(tbSizeBits int) int {
	return tbSizeBits / 8
}

// shuffle puts list in a uniformly random order (Fisher-Yates), drawing from rng
func shuffle[T any](rng RandSource, list []T) {
	for idx := len(list) - 1; idx > 0; idx-- {
		jdx := int(rng.RandU01() * float64(idx+1))
		if jdx > idx {
			jdx = idx
		}
		list[idx], list[jdx] = list[jdx], list[idx]
	}
}

// checkDlDisjoint panics when two downlink allocations share a resource block
func checkDlDisjoint(results []*DlSchedulingResult) {
	var used RbSet
	for _, dr := range results {
		if used.Overlaps(dr.Rbs) {
			panic(fmt.Errorf("downlink resource block double allocation for UE %s: %s overlaps %s",
				dr.Rnti, dr.Rbs, used))
		}
		used = used.Union(dr.Rbs)
	}
}

// checkUlDisjoint panics when two uplink grants share a resource block
func checkUlDisjoint(results []*UlSchedulingResult) {
	var used RbSet
	for _, ur := range results {
		rbs := ur.Rbs()
		if used.Overlaps(rbs) {
			panic(fmt.Errorf("uplink resource block double allocation for UE %s: %s overlaps %s",
				ur.Rnti, rbs, used))
		}
		used = used.Union(rbs)
	}
}

// schedBase is embedded by the eNB and UE schedulers
type schedBase struct {
	name        string
	tti         uint64
	prepared    bool
	poweredOn   bool
	rng         RandSource
	dequeueSize func(int) int
}

func (sb *schedBase) initBase(name string, rng RandSource) {
	sb.name = name
	sb.rng = rng
	sb.poweredOn = true
	sb.dequeueSize = defaultDequeueSize
}

// Name identifies the scheduler in logs and traces
func (sb *schedBase) Name() string {
	return sb.name
}

// Tti returns the TTI most recently prepared
func (sb *schedBase) Tti() uint64 {
	return sb.tti
}

// PrepareForScheduleTti records the TTI about to be scheduled
func (sb *schedBase) PrepareForScheduleTti(tti uint64) {
	sb.tti = tti
	sb.prepared = true
}

// DetermineDequeueSize converts a transport block size (bits) into the number of bytes
// to take from the bearer
func (sb *schedBase) DetermineDequeueSize(tbSizeBits int) int {
	return sb.dequeueSize(tbSizeBits)
}

// SetDequeueSizeFunc replaces the transport-block-size-to-bytes conversion
func (sb *schedBase) SetDequeueSizeFunc(f func(int) int) {
	if f == nil {
		f = defaultDequeueSize
	}
	sb.dequeueSize = f
}

// NotifyPowerOn enables scheduling
func (sb *schedBase) NotifyPowerOn() {
	sb.poweredOn = true
	klog.InfoS("scheduler powered on", "scheduler", sb.name)
}

// NotifyPowerOff disables scheduling, schedule calls return nothing until power on
func (sb *schedBase) NotifyPowerOff() {
	sb.poweredOn = false
	klog.InfoS("scheduler powered off", "scheduler", sb.name)
}

// readyToSchedule panics if the TTI was not prepared and reports whether the scheduler is on
func (sb *schedBase) readyToSchedule() bool {
	if !sb.prepared {
		panic(fmt.Errorf("scheduler %s asked to schedule before PrepareForScheduleTti", sb.name))
	}
	return sb.poweredOn
}
