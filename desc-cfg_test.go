package ltemac

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSchedCfgValidate(t *testing.T) {
	require.NoError(t, DefaultSchedCfg("cell").Validate())

	tests := []struct {
		name   string
		mutate func(*SchedCfg)
	}{
		{"no name", func(cfg *SchedCfg) { cfg.Name = "" }},
		{"odd bandwidth", func(cfg *SchedCfg) { cfg.NumRb = 40 }},
		{"unknown policy", func(cfg *SchedCfg) { cfg.DlPolicy = "mt" }},
		{"filter coefficient", func(cfg *SchedCfg) { cfg.PfFilterCoefficient = 20 }},
		{"zero uplink RBG", func(cfg *SchedCfg) { cfg.UlRbgSize = 0 }},
		{"uplink RBG wider than PUSCH", func(cfg *SchedCfg) { cfg.NumRb = 6; cfg.UlRbgSize = 5 }},
		{"HARQ limit", func(cfg *SchedCfg) { cfg.MaxHarqTx = 0 }},
		{"odd PUCCH", func(cfg *SchedCfg) { cfg.PucchOverhead = 3 }},
		{"PUCCH fills the band", func(cfg *SchedCfg) { cfg.NumRb = 6; cfg.PucchOverhead = 6 }},
		{"antennas", func(cfg *SchedCfg) { cfg.NumTxAntennas = 4 }},
		{"alpha", func(cfg *SchedCfg) { cfg.Alpha = 1.5 }},
		{"BLER target", func(cfg *SchedCfg) { cfg.BlerTarget = 0.0 }},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Error(t, testCfg(tc.mutate).Validate())
		})
	}
}

func TestSchedCfgValidateReportsEveryProblem(t *testing.T) {
	cfg := testCfg(func(cfg *SchedCfg) {
		cfg.Name = "multi"
		cfg.PucchOverhead = 3
		cfg.MaxHarqTx = 9
	})
	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "MaxHarqTx")
	assert.Contains(t, err.Error(), "PUCCH overhead 3 is not even")
}

func TestReadSchedCfgKeepsDefaults(t *testing.T) {
	dict := []byte("name: partial\nnumrb: 25\ndlpolicy: pf\n")
	cfg, err := ReadSchedCfg("", true, dict)
	require.NoError(t, err)
	assert.Equal(t, "partial", cfg.Name)
	assert.Equal(t, 25, cfg.NumRb)
	assert.Equal(t, PolicyProportionalFair, cfg.DlPolicy)
	assert.Equal(t, PolicyRoundRobin, cfg.UlPolicy)
	assert.Equal(t, 4, cfg.MaxHarqTx)
	assert.NoError(t, cfg.Validate())
}

func TestSchedCfgFileRoundTrip(t *testing.T) {
	dir := t.TempDir()
	cfg := testCfg(func(cfg *SchedCfg) {
		cfg.UlPolicy = PolicyProportionalFair
		cfg.EnableSubbandCqi = true
	})
	for _, name := range []string{"sched.json", "sched.yaml"} {
		filename := filepath.Join(dir, name)
		require.NoError(t, cfg.WriteToFile(filename))
		back, err := ReadSchedCfg(filename, filepath.Ext(name) == ".yaml", []byte{})
		require.NoError(t, err)
		assert.Equal(t, cfg, back, name)
	}

	assert.Error(t, cfg.WriteToFile(filepath.Join(dir, "sched.txt")))
	_, err := ReadSchedCfg(filepath.Join(dir, "missing.yaml"), true, []byte{})
	assert.Error(t, err)
}

func TestLinkTableDescRoundTrip(t *testing.T) {
	filename := filepath.Join(t.TempDir(), "tables.yaml")
	desc := DefaultLinkTableDesc()
	require.NoError(t, desc.WriteToFile(filename))

	back, err := ReadLinkTableDesc(filename, true, []byte{})
	require.NoError(t, err)
	assert.Equal(t, desc, back)
	assert.NoError(t, back.Validate())
}

func testUeDesc(name string, nodeID int) UeDesc {
	return UeDesc{Name: name, NodeID: nodeID, DlRateMbps: 1.0, UlRateMbps: 0.5, FrameSize: 500,
		ArrivalModel: ArrivalExponential, MeanCqi: 9.0, CqiSpread: 2, Rank: 1, PathlossDb: 110.0}
}

func TestCellSimCfgValidate(t *testing.T) {
	csc := DefaultCellSimCfg("sim")
	assert.Error(t, csc.Validate(), "no UEs")

	csc.AddUe(testUeDesc("ue-a", 1))
	csc.AddUe(testUeDesc("ue-b", 2))
	require.NoError(t, csc.Validate())

	csc.AddUe(testUeDesc("ue-c", 2))
	err := csc.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "UEs ue-b and ue-c share identifier 2:0")

	csc = DefaultCellSimCfg("sim")
	bad := testUeDesc("ue-d", 4)
	bad.ArrivalModel = "poisson"
	csc.AddUe(bad)
	csc.Sched.NumRb = 7
	err = csc.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "ArrivalModel")
	assert.Contains(t, err.Error(), "NumRb")
}

func TestCellSimCfgFileRoundTrip(t *testing.T) {
	filename := filepath.Join(t.TempDir(), "sim.json")
	csc := DefaultCellSimCfg("sim")
	csc.AddUe(testUeDesc("ue-a", 1))
	require.NoError(t, csc.WriteToFile(filename))

	back, err := ReadCellSimCfg(filename, false, []byte{})
	require.NoError(t, err)
	assert.Equal(t, csc, back)
}
