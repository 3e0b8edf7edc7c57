package ltemac

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fixedBuffer int

func (fb fixedBuffer) UlBufferOccupancy(bearerID int) int {
	return int(fb)
}

func ueGrant(rnti Rnti, bits int, newData bool) UlSchedulingResult {
	return UlSchedulingResult{Rnti: rnti, StartRb: 3, NumRb: 4,
		Tb: TbDesc{Mcs: 9, TbSizeBits: bits, DequeueSize: bits / 8, NewData: newData, RvIndex: 0}}
}

func TestUeSchedulerPassesGrantThrough(t *testing.T) {
	rnti := CreateRnti(7, 1)
	tests := []struct {
		name     string
		buffered int
		grant    UlSchedulingResult
		results  int
		dequeue  int
	}{
		{"buffer larger than grant", 5000, ueGrant(rnti, 1000, true), 1, 125},
		{"grant larger than buffer", 40, ueGrant(rnti, 1000, true), 1, 40},
		{"nothing to send", 0, ueGrant(rnti, 1000, true), 0, 0},
		{"retransmission untouched", 0, ueGrant(rnti, 1000, false), 1, 125},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			us := CreateUeScheduler("ue", rnti, fixedBuffer(tc.buffered))
			us.NotifyUlGrant(tc.grant, 12)
			assert.Equal(t, 1, us.PendingGrants())

			us.PrepareForScheduleTti(11)
			assert.Empty(t, us.ScheduleUplink(), "grant applies to a later TTI")

			us.PrepareForScheduleTti(12)
			results := us.ScheduleUplink()
			require.Len(t, results, tc.results)
			assert.Zero(t, us.PendingGrants())
			if tc.results == 0 {
				return
			}
			assert.Equal(t, tc.dequeue, results[0].Tb.DequeueSize)
			assert.Equal(t, tc.grant.StartRb, results[0].StartRb)
			assert.Equal(t, tc.grant.NumRb, results[0].NumRb)
			assert.Equal(t, tc.grant.Tb.Mcs, results[0].Tb.Mcs)
		})
	}
}

func TestUeSchedulerExpiresOldGrants(t *testing.T) {
	rnti := CreateRnti(7, 1)
	us := CreateUeScheduler("ue", rnti, fixedBuffer(100))
	us.NotifyUlGrant(ueGrant(rnti, 800, true), 3)
	us.NotifyUlGrant(ueGrant(rnti, 800, true), 9)

	us.PrepareForScheduleTti(5)
	assert.Equal(t, 1, us.PendingGrants())
	assert.Empty(t, us.ScheduleUplink())

	// a later grant for the same TTI replaces the earlier one
	us.NotifyUlGrant(ueGrant(rnti, 1600, true), 9)
	us.PrepareForScheduleTti(9)
	results := us.ScheduleUplink()
	require.Len(t, results, 1)
	assert.Equal(t, 1600, results[0].Tb.TbSizeBits)
	assert.Equal(t, 100, results[0].Tb.DequeueSize)
}

func TestUeSchedulerContract(t *testing.T) {
	rnti := CreateRnti(7, 1)
	assert.Panics(t, func() { CreateUeScheduler("ue", rnti, nil) })

	us := CreateUeScheduler("ue", rnti, fixedBuffer(100))
	assert.Equal(t, rnti, us.Rnti())
	assert.Panics(t, func() { us.ScheduleUplink() }, "schedule before prepare")
	assert.PanicsWithError(t, "UE 7:1 given a grant addressed to 8:1", func() {
		us.NotifyUlGrant(ueGrant(CreateRnti(8, 1), 800, true), 1)
	})

	us.NotifyUlGrant(ueGrant(rnti, 800, true), 2)
	us.NotifyPowerOff()
	us.PrepareForScheduleTti(2)
	assert.Empty(t, us.ScheduleUplink())

	us.NotifyUlGrant(ueGrant(rnti, 800, true), 3)
	us.NotifyPowerOn()
	us.PrepareForScheduleTti(3)
	assert.Len(t, us.ScheduleUplink(), 1)
}
