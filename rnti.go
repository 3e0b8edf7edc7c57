package ltemac

// rnti.go holds the identifier used for every UE known to a scheduler.

import (
	"fmt"
	"sort"
)

// Rnti identifies a UE (or eNB) on a link by the id of the node that owns it
// and the index of the interface on that node.  It is comparable and is used
// as a map key throughout the package.
type Rnti struct {
	NodeID    int `json:"nodeid" yaml:"nodeid"`
	IntrfcIdx int `json:"intrfcidx" yaml:"intrfcidx"`
}

// InvalidRnti never names a UE
var InvalidRnti Rnti = Rnti{NodeID: -1, IntrfcIdx: -1}

// CreateRnti is a constructor
func CreateRnti(nodeID, intrfcIdx int) Rnti {
	return Rnti{NodeID: nodeID, IntrfcIdx: intrfcIdx}
}

// Less orders Rntis lexicographically on (NodeID, IntrfcIdx)
func (r Rnti) Less(other Rnti) bool {
	if r.NodeID != other.NodeID {
		return r.NodeID < other.NodeID
	}
	return r.IntrfcIdx < other.IntrfcIdx
}

func (r Rnti) String() string {
	return fmt.Sprintf("%d:%d", r.NodeID, r.IntrfcIdx)
}

// sortRntis puts the list in ascending order, in place
func sortRntis(rntis []Rnti) {
	sort.Slice(rntis, func(i, j int) bool { return rntis[i].Less(rntis[j]) })
}
