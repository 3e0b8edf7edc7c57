package ltemac

// phy.go declares what the scheduler consumes from the layers around it: channel
// feedback and buffer occupancy from the cell, and the link-quality tables.
// The scheduler reads these snapshots and never changes them.

// Direction of a transmission
type Direction int

const (
	Downlink Direction = iota
	Uplink
)

var dirToStr map[Direction]string = map[Direction]string{Downlink: "dl", Uplink: "ul"}

func (d Direction) String() string {
	return dirToStr[d]
}

// TxScheme is the downlink transmission scheme
type TxScheme int

const (
	SingleAntenna TxScheme = iota
	TxDiversity
	SpatialMultiplexing
)

var schemeToStr map[TxScheme]string = map[TxScheme]string{SingleAntenna: "single",
	TxDiversity: "diversity", SpatialMultiplexing: "spatial-mux"}

func (ts TxScheme) String() string {
	return schemeToStr[ts]
}

// numTbs is how many transport blocks the scheme carries
func (ts TxScheme) numTbs() int {
	if ts == SpatialMultiplexing {
		return 2
	}
	return 1
}

// DefaultBearer is the radio bearer whose buffer decides downlink eligibility
const DefaultBearer = 0

// CqiReport is the most recent channel quality feedback of a UE
type CqiReport struct {
	Wideband [2]int   // wideband CQI, per codeword
	Subband  [2][]int // sub-band CQI per codeword, indexed by RBG (optional)
	Rank     int      // rank indicator, 1 or 2 spatial layers
}

// PathlossEstimate is the uplink pathloss measured from a UE's sounding signal
type PathlossEstimate struct {
	FilteredDb   float64   // layer-3 filtered pathloss
	PerAntennaDb []float64 // instant pathloss per receive antenna
}

// CellContext is implemented by whatever holds the feedback and buffer state of
// a cell: the RLC queues, the PHY measurement functions.  All calls are
// synchronous reads of state that is current for the TTI being scheduled.
type CellContext interface {
	// bytes the RLC entity of the bearer could send now
	BufferOccupancy(rnti Rnti, bearerID int) int

	// bytes the UE reported waiting in its uplink buffers
	BufferStatusReport(rnti Rnti) int

	// latest CQI feedback, false when none is valid
	CqiReport(rnti Rnti) (CqiReport, bool)

	// latest uplink pathloss estimate, false when none exists
	UlPathloss(rnti Rnti) (PathlossEstimate, bool)

	// maximum UE transmit power in dBm
	MaxUlTxPower(rnti Rnti) float64

	// thermal noise power per resource block in mW
	ThermalNoise() float64

	// uplink interference power on a resource block in mW
	UlInterferencePower(rb int, filtered bool) float64
}

// LinkTables are the pure-function link-level lookups the scheduler relies on
type LinkTables interface {
	// CqiToMcs maps a CQI to an MCS index, negative when no MCS fits
	CqiToMcs(cqi, numRb int) int

	// TransportBlockSize is the size in bits of a transport block
	TransportBlockSize(mcs, numRb int, dir Direction) int

	// ModulationOrder gives the bits per symbol of an MCS
	ModulationOrder(mcs int, dir Direction) int

	// EstimateBler gives the block error probability of an MCS from the per-RB
	// linear SINR of each transmission of the block so far
	EstimateBler(mcs int, sinrHistory [][]float64, offsetDb float64) float64

	// MaxMcs is the highest MCS index usable in the direction
	MaxMcs(dir Direction) int
}
