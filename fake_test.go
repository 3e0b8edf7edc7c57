package ltemac

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/require"
)

// seededRand is a reproducible RandSource
type seededRand struct {
	rng *rand.Rand
}

func newSeededRand(seed int64) *seededRand {
	return &seededRand{rng: rand.New(rand.NewSource(seed))}
}

func (sr *seededRand) RandU01() float64 {
	return sr.rng.Float64()
}

// fakeCell is a CellContext whose state the test sets directly
type fakeCell struct {
	dlBuf map[Rnti]int
	bsr   map[Rnti]int
	cqi   map[Rnti]CqiReport
	pl    map[Rnti]PathlossEstimate
	maxTx float64
	noise float64
	intf  map[int]float64
	intfI map[int]float64 // instantaneous, when different from filtered
}

func newFakeCell() *fakeCell {
	return &fakeCell{
		dlBuf: make(map[Rnti]int),
		bsr:   make(map[Rnti]int),
		cqi:   make(map[Rnti]CqiReport),
		pl:    make(map[Rnti]PathlossEstimate),
		maxTx: 23.0,
		noise: 1.0e-12,
		intf:  make(map[int]float64),
		intfI: make(map[int]float64),
	}
}

// addUe gives a UE buffers in both directions, a wideband CQI on both codewords and a pathloss
func (fc *fakeCell) addUe(rnti Rnti, dlBytes, ulBytes, cqi, rank int, pathlossDb float64) {
	fc.dlBuf[rnti] = dlBytes
	fc.bsr[rnti] = ulBytes
	fc.cqi[rnti] = CqiReport{Wideband: [2]int{cqi, cqi}, Rank: rank}
	fc.pl[rnti] = PathlossEstimate{FilteredDb: pathlossDb, PerAntennaDb: []float64{pathlossDb, pathlossDb}}
}

func (fc *fakeCell) BufferOccupancy(rnti Rnti, bearerID int) int {
	if bearerID != DefaultBearer {
		return 0
	}
	return fc.dlBuf[rnti]
}

func (fc *fakeCell) BufferStatusReport(rnti Rnti) int {
	return fc.bsr[rnti]
}

func (fc *fakeCell) CqiReport(rnti Rnti) (CqiReport, bool) {
	report, present := fc.cqi[rnti]
	return report, present
}

func (fc *fakeCell) UlPathloss(rnti Rnti) (PathlossEstimate, bool) {
	pl, present := fc.pl[rnti]
	return pl, present
}

func (fc *fakeCell) MaxUlTxPower(rnti Rnti) float64 {
	return fc.maxTx
}

func (fc *fakeCell) ThermalNoise() float64 {
	return fc.noise
}

func (fc *fakeCell) UlInterferencePower(rb int, filtered bool) float64 {
	if !filtered {
		if v, present := fc.intfI[rb]; present {
			return v
		}
	}
	return fc.intf[rb]
}

// testCfg is the default configuration altered by mutate
func testCfg(mutate func(*SchedCfg)) *SchedCfg {
	cfg := DefaultSchedCfg("test")
	if mutate != nil {
		mutate(cfg)
	}
	return cfg
}

// newTestEnb builds a scheduler over cell with a seeded RNG and attaches the UEs
func newTestEnb(t *testing.T, cfg *SchedCfg, cell CellContext, ues ...Rnti) *EnbScheduler {
	t.Helper()
	require.NoError(t, cfg.Validate())
	e := CreateEnbScheduler(cfg, cell, nil, newSeededRand(1), nil)
	for _, rnti := range ues {
		e.NotifyAttach(rnti)
	}
	return e
}

// testUes returns n UE identifiers
func testUes(n int) []Rnti {
	ues := make([]Rnti, n)
	for idx := range ues {
		ues[idx] = CreateRnti(idx+1, 0)
	}
	return ues
}

// dlRbsOf is the union of the downlink allocations
func dlRbsOf(results []*DlSchedulingResult) RbSet {
	var used RbSet
	for _, dr := range results {
		used = used.Union(dr.Rbs)
	}
	return used
}

func findDl(results []*DlSchedulingResult, rnti Rnti) *DlSchedulingResult {
	for _, dr := range results {
		if dr.Rnti == rnti {
			return dr
		}
	}
	return nil
}

func findUl(results []*UlSchedulingResult, rnti Rnti) *UlSchedulingResult {
	for _, ur := range results {
		if ur.Rnti == rnti {
			return ur
		}
	}
	return nil
}
