package ltemac

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRedundancyVersionCycle(t *testing.T) {
	expected := []int{0, 2, 3, 1, 0, 2, 3, 1}
	for txCount, rv := range expected {
		assert.Equal(t, rv, RedundancyVersion(txCount), "txCount %d", txCount)
	}
	assert.Equal(t, 3, HarqProcessFor(11))
	assert.Equal(t, 0, HarqProcessFor(16))
}

func TestHarqTableAttachDetach(t *testing.T) {
	ht := CreateHarqTable()
	ue := CreateRnti(7, 1)

	ht.Attach(ue)
	assert.True(t, ht.Has(ue))
	assert.PanicsWithError(t, "HARQ entity already exists for UE 7:1", func() { ht.Attach(ue) })

	assert.Equal(t, Uplink, ht.Entity(ue, Uplink).Dir)
	ht.Detach(ue)
	assert.False(t, ht.Has(ue))
	assert.PanicsWithError(t, "HARQ entity not found for UE 7:1", func() { ht.Detach(ue) })
	assert.Panics(t, func() { ht.Entity(ue, Downlink) })
}

func TestHarqFeedbackAndRetxEligibility(t *testing.T) {
	ht := CreateHarqTable()
	ue := CreateRnti(1, 0)
	ht.Attach(ue)
	he := ht.Entity(ue, Downlink)

	// feedback for an empty block is ignored
	he.SetFeedback(2, 0, false)
	assert.False(t, he.Process(2).Tbs[0].Valid)
	assert.False(t, he.pendingRetx(2, 4))

	he.recordNewTx(2, 0, HarqTb{TbSizeBits: 1000, DataBytes: 125, Rbs: RbRange(0, 3), Mcs: 10})
	tb := &he.Process(2).Tbs[0]
	assert.Equal(t, 1, tb.TxCount)
	assert.Equal(t, FeedbackPending, tb.Feedback)
	assert.False(t, he.pendingRetx(2, 4), "pending feedback is not a NACK")

	he.SetFeedback(2, 0, false)
	assert.True(t, he.pendingRetx(2, 4))

	for txCount := 2; txCount <= 4; txCount++ {
		he.recordRetx(2, 0, RedundancyVersion(txCount-1), uint64(txCount*8))
		he.SetFeedback(2, 0, false)
		assert.Equal(t, txCount, tb.TxCount)
	}
	assert.False(t, he.pendingRetx(2, 4), "no retransmission past the maximum")

	he.SetFeedback(2, 0, true)
	assert.Equal(t, "ack", tb.Feedback.String())

	assert.Panics(t, func() { he.recordRetx(5, 1, 0, 0) })
	assert.Panics(t, func() { he.Process(NumHarqProcesses) })
}

func TestHarqTableReset(t *testing.T) {
	ht := CreateHarqTable()
	ue := CreateRnti(1, 0)
	ht.Attach(ue)
	for _, dir := range []Direction{Downlink, Uplink} {
		he := ht.Entity(ue, dir)
		he.recordNewTx(0, 0, HarqTb{TbSizeBits: 16})
		he.SetFeedback(0, 0, false)
		require.True(t, he.pendingRetx(0, 4))
	}

	ht.Reset(ue)
	assert.False(t, ht.Entity(ue, Downlink).pendingRetx(0, 4))
	assert.False(t, ht.Entity(ue, Uplink).Process(0).Tbs[0].Valid)
}
