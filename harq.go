package ltemac

// harq.go holds the per-link HARQ bookkeeping.  Every UE attached to a scheduler
// has one HarqEntity per direction; each entity holds a fixed array of processes,
// each process a fixed pair of transport block records.  A retransmission replays
// the allocation remembered here, only the redundancy version advances.

import (
	"fmt"
)

// NumHarqProcesses is the number of HARQ processes per link, in both directions
const NumHarqProcesses = 8

// MaxTbPerProcess is the most transport blocks a process carries (2 with spatial multiplexing)
const MaxTbPerProcess = 2

// rvCycle is the order in which redundancy versions are sent
var rvCycle [4]int = [4]int{0, 2, 3, 1}

// RedundancyVersion gives the redundancy version for the transmission that
// follows txCount earlier transmissions of the same block
func RedundancyVersion(txCount int) int {
	return rvCycle[txCount%len(rvCycle)]
}

// HarqProcessFor is the process serving TTI tti
func HarqProcessFor(tti uint64) int {
	return int(tti % NumHarqProcesses)
}

// HarqFeedback is the outcome reported for the last transmission of a block
type HarqFeedback int

const (
	FeedbackPending HarqFeedback = iota
	FeedbackAck
	FeedbackNack
)

var fbToStr map[HarqFeedback]string = map[HarqFeedback]string{FeedbackPending: "pending",
	FeedbackAck: "ack", FeedbackNack: "nack"}

func (fb HarqFeedback) String() string {
	return fbToStr[fb]
}

// HarqTb records the state of one transport block in a HARQ process
type HarqTb struct {
	Valid      bool         // holds a block that has been sent
	TbSizeBits int          // size of the block
	DataBytes  int          // payload bytes carried
	Feedback   HarqFeedback // outcome of the last transmission
	TxCount    int          // transmissions so far
	Rbs        RbSet        // blocks used by the last transmission
	StartRb    int          // uplink only, first block of the contiguous run
	NumRb      int          // uplink only, length of the run
	Mcs        int
	ModOrder   int
	Scheme     TxScheme
	RvIndex    int
	BearerID   int
	LastTti    uint64
}

// awaitingRetx is true when the block was NACKed and may be sent again
func (tb *HarqTb) awaitingRetx(maxTx int) bool {
	return tb.Valid && tb.Feedback == FeedbackNack && tb.TxCount >= 1 && tb.TxCount < maxTx
}

// HarqProcess holds the transport blocks of one process
type HarqProcess struct {
	Tbs [MaxTbPerProcess]HarqTb
}

// clear returns the process to its initial state
func (hp *HarqProcess) clear() {
	*hp = HarqProcess{}
}

// HarqEntity is the HARQ state of one link in one direction
type HarqEntity struct {
	Rnti  Rnti
	Dir   Direction
	Procs [NumHarqProcesses]HarqProcess
}

// createHarqEntity is a constructor
func createHarqEntity(rnti Rnti, dir Direction) *HarqEntity {
	he := new(HarqEntity)
	he.Rnti = rnti
	he.Dir = dir
	return he
}

// Process returns the process with id pid, for reading or updating
func (he *HarqEntity) Process(pid int) *HarqProcess {
	if pid < 0 || pid >= NumHarqProcesses {
		panic(fmt.Errorf("HARQ process %d out of range for UE %s", pid, he.Rnti))
	}
	return &he.Procs[pid]
}

// Reset clears every process, as when RLC signals a re-establishment
func (he *HarqEntity) Reset() {
	for pid := range he.Procs {
		he.Procs[pid].clear()
	}
}

// SetFeedback records the ACK or NACK received for transport block tbIdx of process pid.
// Feedback for a block that holds nothing is ignored.
func (he *HarqEntity) SetFeedback(pid, tbIdx int, ack bool) {
	hp := he.Process(pid)
	if tbIdx < 0 || tbIdx >= MaxTbPerProcess {
		panic(fmt.Errorf("transport block %d out of range for UE %s process %d", tbIdx, he.Rnti, pid))
	}
	tb := &hp.Tbs[tbIdx]
	if !tb.Valid {
		return
	}
	if ack {
		tb.Feedback = FeedbackAck
	} else {
		tb.Feedback = FeedbackNack
	}
}

// pendingRetx is true when some block of process pid waits for a retransmission
func (he *HarqEntity) pendingRetx(pid int, maxTx int) bool {
	hp := he.Process(pid)
	for idx := range hp.Tbs {
		if hp.Tbs[idx].awaitingRetx(maxTx) {
			return true
		}
	}
	return false
}

// recordNewTx stores a first transmission of a block
func (he *HarqEntity) recordNewTx(pid, tbIdx int, tb HarqTb) {
	hp := he.Process(pid)
	tb.Valid = true
	tb.TxCount = 1
	tb.Feedback = FeedbackPending
	tb.RvIndex = RedundancyVersion(0)
	hp.Tbs[tbIdx] = tb
}

// recordRetx notes that block tbIdx of process pid was sent again
func (he *HarqEntity) recordRetx(pid, tbIdx int, rv int, tti uint64) {
	tb := &he.Process(pid).Tbs[tbIdx]
	if !tb.Valid {
		panic(fmt.Errorf("retransmission of empty block %d of process %d for UE %s", tbIdx, pid, he.Rnti))
	}
	tb.TxCount += 1
	tb.Feedback = FeedbackPending
	tb.RvIndex = rv
	tb.LastTti = tti
}

// HarqTable holds the HARQ entities of all attached UEs, per direction
type HarqTable struct {
	entities map[Direction]map[Rnti]*HarqEntity
}

// CreateHarqTable is a constructor
func CreateHarqTable() *HarqTable {
	ht := new(HarqTable)
	ht.entities = map[Direction]map[Rnti]*HarqEntity{
		Downlink: make(map[Rnti]*HarqEntity),
		Uplink:   make(map[Rnti]*HarqEntity),
	}
	return ht
}

// Attach creates the entities of a UE in both directions
func (ht *HarqTable) Attach(rnti Rnti) {
	for dir, entities := range ht.entities {
		_, present := entities[rnti]
		if present {
			panic(fmt.Errorf("HARQ entity already exists for UE %s", rnti))
		}
		entities[rnti] = createHarqEntity(rnti, dir)
	}
}

// Detach removes the entities of a UE
func (ht *HarqTable) Detach(rnti Rnti) {
	for _, entities := range ht.entities {
		_, present := entities[rnti]
		if !present {
			panic(fmt.Errorf("HARQ entity not found for UE %s", rnti))
		}
		delete(entities, rnti)
	}
}

// Has reports whether the UE is attached
func (ht *HarqTable) Has(rnti Rnti) bool {
	_, present := ht.entities[Downlink][rnti]
	return present
}

// Entity returns the HARQ entity of a UE in one direction.  Asking for a UE that
// is not attached is a contract breach by the caller.
func (ht *HarqTable) Entity(rnti Rnti, dir Direction) *HarqEntity {
	he, present := ht.entities[dir][rnti]
	if !present {
		panic(fmt.Errorf("HARQ lookup for unknown UE %s (%s)", rnti, dir))
	}
	return he
}

// Reset clears both entities of a UE
func (ht *HarqTable) Reset(rnti Rnti) {
	ht.Entity(rnti, Downlink).Reset()
	ht.Entity(rnti, Uplink).Reset()
}
