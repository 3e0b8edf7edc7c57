package ltemac

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testSimCfg(dl, ul PolicyKind) *CellSimCfg {
	csc := DefaultCellSimCfg("sim-" + string(dl) + "-" + string(ul))
	csc.Ttis = 200
	csc.Sched.NumRb = 25
	csc.Sched.DlPolicy = dl
	csc.Sched.UlPolicy = ul
	for idx, cqi := range []float64{4.0, 9.0, 14.0} {
		ud := testUeDesc("ue"+string(rune('a'+idx)), idx+1)
		ud.MeanCqi = cqi
		ud.DlRateMbps = 2.0
		ud.UlRateMbps = 0.5
		csc.AddUe(ud)
	}
	return csc
}

func TestCellSimRuns(t *testing.T) {
	for _, pols := range [][2]PolicyKind{
		{PolicyRoundRobin, PolicyRoundRobin},
		{PolicyProportionalFair, PolicyProportionalFair},
	} {
		csc := testSimCfg(pols[0], pols[1])
		tm := CreateTraceManager(csc.Name, true)
		cs := CreateCellSim(csc, nil, nil, tm)
		ss := cs.Run()

		assert.Equal(t, uint64(200), ss.Ttis)
		assert.Equal(t, pols[0], ss.DlPolicy)
		require.Len(t, ss.UEs, 3)
		for _, us := range ss.UEs {
			assert.Positive(t, us.DlBytes, us.Name)
			assert.Positive(t, us.UlBytes, us.Name)
			assert.LessOrEqual(t, us.DlBytes, int(2.0e6*0.2/8.0*1.5), us.Name)
		}
		assert.Greater(t, ss.JainDl, 1.0/3.0)
		assert.LessOrEqual(t, ss.JainDl, 1.0)
		assert.NotEmpty(t, tm.Traces)
		assert.Equal(t, "uea", tm.NameByRnti["1:0"])

		filename := filepath.Join(t.TempDir(), "summary.yaml")
		assert.NoError(t, ss.WriteToFile(filename))
	}
}

func TestCellSimRejectsBadConfig(t *testing.T) {
	csc := DefaultCellSimCfg("empty")
	assert.Panics(t, func() { CreateCellSim(csc, nil, nil, nil) })
}

func TestJainIndex(t *testing.T) {
	assert.Equal(t, 1.0, JainIndex([]float64{}))
	assert.Equal(t, 1.0, JainIndex([]float64{0, 0}))
	assert.InDelta(t, 1.0, JainIndex([]float64{2, 2, 2}), 1e-12)
	assert.InDelta(t, 1.0/3.0, JainIndex([]float64{5, 0, 0}), 1e-12)
	assert.InDelta(t, 36.0/42.0, JainIndex([]float64{1, 2, 3}), 1e-12)
}
