package ltemac

// linktables.go holds StdLinkTables, the default LinkTables implementation.  It is
// built once from a LinkTableDesc and never modified afterwards, so one instance
// can be shared by every scheduler in a simulation.

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// StdLinkTables maps CQI, MCS and SINR to the quantities the scheduler needs
type StdLinkTables struct {
	name      string
	cqiToMcs  []int
	tbs10     []int     // transport block size at 10 RBs, by TBS index
	sinr10    []float64 // SINR (dB) giving 10% BLER, by MCS
	blerSlope float64
	maxMcs    map[Direction]int
}

// CreateStdLinkTables is a constructor.  A nil descriptor selects the built-in tables.
func CreateStdLinkTables(desc *LinkTableDesc) *StdLinkTables {
	if desc == nil {
		desc = DefaultLinkTableDesc()
	}
	err := desc.Validate()
	if err != nil {
		panic(err)
	}
	lt := new(StdLinkTables)
	lt.name = desc.Name
	lt.cqiToMcs = append([]int{}, desc.CqiToMcs...)
	lt.tbs10 = append([]int{}, desc.TbsAt10Rb...)
	lt.sinr10 = append([]float64{}, desc.BlerSinrDb...)
	lt.blerSlope = desc.BlerSlope
	lt.maxMcs = map[Direction]int{Downlink: desc.MaxMcsDl, Uplink: desc.MaxMcsUl}
	return lt
}

// Name returns the name of the descriptor the tables were built from
func (lt *StdLinkTables) Name() string {
	return lt.name
}

// CqiToMcs maps a CQI to an MCS.  The result is -1 for CQI 0 (out of range).
func (lt *StdLinkTables) CqiToMcs(cqi, numRb int) int {
	if cqi < 0 {
		return -1
	}
	if cqi >= len(lt.cqiToMcs) {
		cqi = len(lt.cqiToMcs) - 1
	}
	return lt.cqiToMcs[cqi]
}

// tbsIndex converts an MCS to its TBS index
func tbsIndex(mcs int, dir Direction) int {
	if dir == Uplink {
		switch {
		case mcs <= 10:
			return mcs
		case mcs <= 20:
			return mcs - 1
		default:
			return mcs - 2
		}
	}
	switch {
	case mcs <= 9:
		return mcs
	case mcs <= 16:
		return mcs - 1
	default:
		return mcs - 2
	}
}

// ModulationOrder gives bits per modulation symbol for an MCS
func (lt *StdLinkTables) ModulationOrder(mcs int, dir Direction) int {
	if dir == Uplink {
		switch {
		case mcs <= 10:
			return 2
		case mcs <= 20:
			return 4
		default:
			return 6
		}
	}
	switch {
	case mcs <= 9:
		return 2
	case mcs <= 16:
		return 4
	default:
		return 6
	}
}

// TransportBlockSize scales the 10-RB column of the TBS table to numRb blocks,
// rounded down to whole bytes, never below the 16-bit minimum block
func (lt *StdLinkTables) TransportBlockSize(mcs, numRb int, dir Direction) int {
	if numRb <= 0 || numRb > MaxRb || mcs < 0 || mcs > lt.maxMcs[dir] {
		return 0
	}
	itbs := tbsIndex(mcs, dir)
	if itbs >= len(lt.tbs10) {
		itbs = len(lt.tbs10) - 1
	}
	bitsRb := float64(lt.tbs10[itbs]) / 10.0
	tbs := int(bitsRb*float64(numRb)/8.0) * 8
	return max(tbs, 16)
}

// EstimateBler returns the block error probability of a transport block sent
// with mcs, given the per-RB linear SINR of every transmission so far.  The
// transmissions are chase-combined, and offsetDb is subtracted as a margin.
func (lt *StdLinkTables) EstimateBler(mcs int, sinrHistory [][]float64, offsetDb float64) float64 {
	if mcs < 0 || mcs >= len(lt.sinr10) {
		return 1.0
	}
	perTx := []float64{}
	for _, sinrs := range sinrHistory {
		if len(sinrs) == 0 {
			continue
		}
		perTx = append(perTx, stat.Mean(sinrs, nil))
	}
	if len(perTx) == 0 {
		return 1.0
	}
	combined := floats.Sum(perTx)
	if combined <= 0.0 {
		return 1.0
	}
	effDb := 10.0*math.Log10(combined) - offsetDb
	x := effDb - lt.sinr10[mcs]

	// logistic curve through 10% at x == 0
	return 1.0 / (1.0 + math.Exp(lt.blerSlope*x+math.Log(9.0)))
}

// MaxMcs is the highest MCS usable in the direction
func (lt *StdLinkTables) MaxMcs(dir Direction) int {
	return lt.maxMcs[dir]
}

func (lt *StdLinkTables) String() string {
	return fmt.Sprintf("link tables %s (mcs dl<=%d ul<=%d)", lt.name, lt.maxMcs[Downlink], lt.maxMcs[Uplink])
}
