package ltemac

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCqiToMcs(t *testing.T) {
	lt := CreateStdLinkTables(nil)
	tests := []struct {
		cqi int
		mcs int
	}{
		{-1, -1},
		{0, -1},
		{1, 0},
		{7, 11},
		{15, 28},
		{20, 28},
	}
	for _, tc := range tests {
		assert.Equal(t, tc.mcs, lt.CqiToMcs(tc.cqi, 10), "cqi %d", tc.cqi)
	}
}

func TestTransportBlockSize(t *testing.T) {
	lt := CreateStdLinkTables(nil)

	assert.Equal(t, 256, lt.TransportBlockSize(0, 10, Downlink))
	assert.Equal(t, 7480, lt.TransportBlockSize(28, 10, Downlink))
	assert.Equal(t, 24, lt.TransportBlockSize(0, 1, Downlink))
	assert.Equal(t, 0, lt.TransportBlockSize(29, 10, Downlink))
	assert.Equal(t, 0, lt.TransportBlockSize(5, 0, Uplink))

	for _, dir := range []Direction{Downlink, Uplink} {
		prev := 0
		for mcs := 0; mcs <= lt.MaxMcs(dir); mcs++ {
			tbs := lt.TransportBlockSize(mcs, 25, dir)
			assert.GreaterOrEqual(t, tbs, prev, "%s mcs %d", dir, mcs)
			assert.Zero(t, tbs%8)
			prev = tbs
		}
	}
}

func TestModulationOrder(t *testing.T) {
	lt := CreateStdLinkTables(nil)
	assert.Equal(t, 2, lt.ModulationOrder(9, Downlink))
	assert.Equal(t, 4, lt.ModulationOrder(10, Downlink))
	assert.Equal(t, 6, lt.ModulationOrder(17, Downlink))
	assert.Equal(t, 2, lt.ModulationOrder(10, Uplink))
	assert.Equal(t, 4, lt.ModulationOrder(11, Uplink))
	assert.Equal(t, 6, lt.ModulationOrder(21, Uplink))
}

func TestEstimateBler(t *testing.T) {
	lt := CreateStdLinkTables(nil)
	desc := DefaultLinkTableDesc()

	// 10% BLER at the reference SINR plus the offset
	sinr := math.Pow(10.0, (desc.BlerSinrDb[10]+2.0)/10.0)
	single := lt.EstimateBler(10, [][]float64{{sinr, sinr, sinr}}, 2.0)
	assert.InDelta(t, 0.1, single, 1e-9)

	combined := lt.EstimateBler(10, [][]float64{{sinr}, {sinr}}, 2.0)
	assert.Less(t, combined, single, "chase combining lowers the error rate")

	assert.Greater(t, lt.EstimateBler(20, [][]float64{{sinr}}, 2.0), single)
	assert.Equal(t, 1.0, lt.EstimateBler(10, [][]float64{}, 2.0))
	assert.Equal(t, 1.0, lt.EstimateBler(-1, [][]float64{{sinr}}, 2.0))
}

func TestCreateStdLinkTablesRejectsBadDescriptor(t *testing.T) {
	desc := DefaultLinkTableDesc()
	desc.CqiToMcs = []int{0, 1, 2}
	assert.Panics(t, func() { CreateStdLinkTables(desc) })

	desc = DefaultLinkTableDesc()
	desc.Name = "short"
	desc.BlerSinrDb = desc.BlerSinrDb[:10]
	assert.Error(t, desc.Validate())
}
