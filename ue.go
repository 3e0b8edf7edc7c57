package ltemac

// ue.go holds the scheduler of a UE interface.  A UE allocates nothing itself:  the
// uplink grants the eNB sends it are held until the TTI they apply to, and then
// handed back with the amount to send fitted to what the UE has buffered.

import (
	"fmt"

	"k8s.io/klog/v2"
)

// UeMacScheduler is the contract offered to the MAC layer of a UE interface
type UeMacScheduler interface {
	PrepareForScheduleTti(tti uint64)
	ScheduleUplink() []*UlSchedulingResult
	NotifyUlGrant(grant UlSchedulingResult, applyTti uint64)
	NotifyPowerOn()
	NotifyPowerOff()
}

// UeBuffer gives the bytes waiting in a UE's uplink bearer
type UeBuffer interface {
	UlBufferOccupancy(bearerID int) int
}

var _ UeMacScheduler = (*UeScheduler)(nil)

// UeScheduler passes the eNB's uplink grants through to the UE's MAC
type UeScheduler struct {
	schedBase

	rnti   Rnti
	buffer UeBuffer
	grants map[uint64]UlSchedulingResult // grants by the TTI they apply to
}

// CreateUeScheduler is a constructor
func CreateUeScheduler(name string, rnti Rnti, buffer UeBuffer) *UeScheduler {
	if buffer == nil {
		panic(fmt.Errorf("UE scheduler %s created without a buffer", name))
	}
	us := new(UeScheduler)
	us.initBase(name, nil)
	us.rnti = rnti
	us.buffer = buffer
	us.grants = make(map[uint64]UlSchedulingResult)
	return us
}

// Rnti identifies the UE the scheduler serves
func (us *UeScheduler) Rnti() Rnti {
	return us.rnti
}

// NotifyUlGrant stores a grant to be used in TTI applyTti.  A later grant for
// the same TTI replaces the earlier one.
func (us *UeScheduler) NotifyUlGrant(grant UlSchedulingResult, applyTti uint64) {
	if grant.Rnti != us.rnti {
		panic(fmt.Errorf("UE %s given a grant addressed to %s", us.rnti, grant.Rnti))
	}
	us.grants[applyTti] = grant
}

// PendingGrants is the number of grants held for future TTIs
func (us *UeScheduler) PendingGrants() int {
	return len(us.grants)
}

// PrepareForScheduleTti records the TTI and discards grants for TTIs already past
func (us *UeScheduler) PrepareForScheduleTti(tti uint64) {
	us.schedBase.PrepareForScheduleTti(tti)
	for applyTti := range us.grants {
		if applyTti < tti {
			klog.V(4).InfoS("uplink grant expired", "scheduler", us.name, "rnti", us.rnti, "tti", applyTti)
			delete(us.grants, applyTti)
		}
	}
}

// ScheduleUplink returns the grant for this TTI, if any.  New data is limited to what
// the UE holds, a new-data grant it has nothing to send on is dropped.
func (us *UeScheduler) ScheduleUplink() []*UlSchedulingResult {
	if !us.readyToSchedule() {
		return []*UlSchedulingResult{}
	}
	grant, present := us.grants[us.tti]
	if !present {
		return []*UlSchedulingResult{}
	}
	delete(us.grants, us.tti)

	ur := new(UlSchedulingResult)
	*ur = grant
	if ur.Tb.NewData {
		ur.Tb.DequeueSize = min(us.DetermineDequeueSize(ur.Tb.TbSizeBits),
			max(us.buffer.UlBufferOccupancy(ur.Tb.BearerID), 0))
	}
	return PurgeInvalidUlResults([]*UlSchedulingResult{ur})
}
