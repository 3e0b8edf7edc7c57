package ltemac

// pfavg.go holds the filtered throughput kept per UE by a proportional-fair
// policy.  Every attached UE is updated every scheduled TTI, a UE given nothing
// sees its average decay towards zero.

import (
	"fmt"
	"math"
)

// PfInitAvgThroughput is the average throughput (bps) given to a newly attached UE
const PfInitAvgThroughput = 1.0

// pfMinAvg bounds the metric denominator away from zero
const pfMinAvg = 1.0e-6

// ttisPerSecond converts bits per TTI to bits per second
const ttisPerSecond = 1000.0

// pfAlpha is the filter weight given to the newest sample, 1/2^(fc/4)
func pfAlpha(filterCoefficient int) float64 {
	return 1.0 / math.Pow(2.0, float64(filterCoefficient)/4.0)
}

// pfAverages maps each attached UE to its filtered throughput
type pfAverages struct {
	alpha float64
	avg   map[Rnti]float64
}

// createPfAverages is a constructor
func createPfAverages(filterCoefficient int) *pfAverages {
	pa := new(pfAverages)
	pa.alpha = pfAlpha(filterCoefficient)
	pa.avg = make(map[Rnti]float64)
	return pa
}

func (pa *pfAverages) attach(rnti Rnti) {
	_, present := pa.avg[rnti]
	if present {
		panic(fmt.Errorf("PF average throughput entry already exists for UE %s", rnti))
	}
	pa.avg[rnti] = PfInitAvgThroughput
}

func (pa *pfAverages) detach(rnti Rnti) {
	_, present := pa.avg[rnti]
	if !present {
		panic(fmt.Errorf("PF average throughput entry not found for UE %s", rnti))
	}
	delete(pa.avg, rnti)
}

func (pa *pfAverages) lookup(rnti Rnti) (float64, bool) {
	avg, present := pa.avg[rnti]
	return avg, present
}

// get returns the average of an attached UE
func (pa *pfAverages) get(rnti Rnti) float64 {
	avg, present := pa.avg[rnti]
	if !present {
		panic(fmt.Errorf("PF average throughput entry not found for UE %s", rnti))
	}
	return avg
}

// set overwrites the average of an attached UE
func (pa *pfAverages) set(rnti Rnti, avg float64) {
	_, present := pa.avg[rnti]
	if !present {
		panic(fmt.Errorf("PF average throughput entry not found for UE %s", rnti))
	}
	pa.avg[rnti] = avg
}

// update folds one TTI into every average.  deliveredBits holds the bits given
// to each UE this TTI, UEs missing from it are counted as receiving nothing.
func (pa *pfAverages) update(deliveredBits map[Rnti]int) {
	for rnti, avg := range pa.avg {
		inst := float64(deliveredBits[rnti]) * ttisPerSecond
		pa.avg[rnti] = (1.0-pa.alpha)*avg + pa.alpha*inst
	}
}
