package ltemac

// rbset.go holds the bitmap of resource blocks a transmission occupies, and the
// geometry that groups resource blocks into resource block groups (RBGs)

import (
	"fmt"
	"math/bits"
	"strconv"
	"strings"
)

// MaxRb is the largest number of resource blocks a cell may have (20 MHz)
const MaxRb = 100

const rbWords = (MaxRb + 63) / 64

// RbSet is a bitmap with one flag per resource block index.  The number of
// blocks held is always computed from the bits themselves.
type RbSet struct {
	w [rbWords]uint64
}

// RbRange returns the set of numRb contiguous blocks starting at startRb
func RbRange(startRb, numRb int) RbSet {
	var rs RbSet
	for rb := startRb; rb < startRb+numRb; rb++ {
		rs.Set(rb)
	}
	return rs
}

func checkRb(rb int) {
	if rb < 0 || rb >= MaxRb {
		panic(fmt.Errorf("resource block index %d outside [0,%d)", rb, MaxRb))
	}
}

// Set marks resource block rb as allocated
func (rs *RbSet) Set(rb int) {
	checkRb(rb)
	rs.w[rb/64] |= 1 << uint(rb%64)
}

// Has reports whether resource block rb is in the set
func (rs RbSet) Has(rb int) bool {
	if rb < 0 || rb >= MaxRb {
		return false
	}
	return rs.w[rb/64]&(1<<uint(rb%64)) != 0
}

// Count is the number of resource blocks in the set
func (rs RbSet) Count() int {
	n := 0
	for _, w := range rs.w {
		n += bits.OnesCount64(w)
	}
	return n
}

// Empty is true when no block is set
func (rs RbSet) Empty() bool {
	return rs.Count() == 0
}

// Overlaps reports whether any block is in both sets
func (rs RbSet) Overlaps(other RbSet) bool {
	for idx := range rs.w {
		if rs.w[idx]&other.w[idx] != 0 {
			return true
		}
	}
	return false
}

// Union returns the blocks in either set
func (rs RbSet) Union(other RbSet) RbSet {
	var u RbSet
	for idx := range rs.w {
		u.w[idx] = rs.w[idx] | other.w[idx]
	}
	return u
}

// Indices lists the blocks in ascending order
func (rs RbSet) Indices() []int {
	idxs := make([]int, 0, rs.Count())
	for wdx, w := range rs.w {
		for w != 0 {
			tz := bits.TrailingZeros64(w)
			idxs = append(idxs, wdx*64+tz)
			w &^= 1 << uint(tz)
		}
	}
	return idxs
}

func (rs RbSet) String() string {
	strs := []string{}
	for _, rb := range rs.Indices() {
		strs = append(strs, strconv.Itoa(rb))
	}
	return "{" + strings.Join(strs, ",") + "}"
}

// RbgGeometry describes how the resource blocks of a cell are grouped
type RbgGeometry struct {
	NumRb   int // resource blocks in the cell
	RbgSize int // resource blocks per group, the last group may be short
	NumRbg  int // number of groups
}

// dlRbgSize gives the downlink RBG size for a cell bandwidth (type 0 allocation)
func dlRbgSize(numRb int) int {
	switch {
	case numRb <= 10:
		return 1
	case numRb <= 26:
		return 2
	case numRb <= 63:
		return 3
	default:
		return 4
	}
}

// CreateRbgGeometry is a constructor. A non-positive rbgSize selects the
// standard downlink group size for numRb
func CreateRbgGeometry(numRb, rbgSize int) RbgGeometry {
	if numRb <= 0 || numRb > MaxRb {
		panic(fmt.Errorf("number of resource blocks %d outside (0,%d]", numRb, MaxRb))
	}
	if rbgSize <= 0 {
		rbgSize = dlRbgSize(numRb)
	}
	return RbgGeometry{NumRb: numRb, RbgSize: rbgSize, NumRbg: (numRb + rbgSize - 1) / rbgSize}
}

// RbsOf returns the blocks of group rbg
func (g RbgGeometry) RbsOf(rbg int) RbSet {
	start := rbg * g.RbgSize
	end := min(start+g.RbgSize, g.NumRb)
	return RbRange(start, end-start)
}

// RbgOf returns the group holding block rb
func (g RbgGeometry) RbgOf(rb int) int {
	return rb / g.RbgSize
}

// RbgsTouched lists, ascending, every group holding at least one block of rs
func (g RbgGeometry) RbgsTouched(rs RbSet) []int {
	rbgs := []int{}
	last := -1
	for _, rb := range rs.Indices() {
		rbg := g.RbgOf(rb)
		if rbg != last {
			rbgs = append(rbgs, rbg)
			last = rbg
		}
	}
	return rbgs
}

// RbsOfGroups is the union of the blocks of the listed groups
func (g RbgGeometry) RbsOfGroups(rbgs []int) RbSet {
	var rs RbSet
	for _, rbg := range rbgs {
		rs = rs.Union(g.RbsOf(rbg))
	}
	return rs
}
