package ltemac

// traffic.go holds trafficQueue, the bearer buffer of one direction of a
// simulated UE.  Frames arrive at random (or constant) intervals at the rate the
// UE description gives, and leave when the scheduler dequeues bytes.

import (
	"fmt"
	"math"
)

// trafficQueue accumulates arrivals and holds the bytes not yet sent
type trafficQueue struct {
	rate     float64 // frames per second, 0 when the direction is idle
	frameLen int     // bytes per frame
	time     float64 // time the queue has been advanced to
	nxtArr   float64 // time of the next arrival
	buffered int     // bytes waiting
	arrived  int     // bytes that have ever arrived
	sent     int     // bytes dequeued

	// function that computes inter-arrival times.  First argument
	// is U01 random number, second argument is vector of parameters for distribution
	sampleNxtArrival func(float64, []float64) float64

	rng RandSource
}

// createTrafficQueue is a constructor.  rateMbps is the offered load.
func createTrafficQueue(rateMbps float64, frameLen int, model string, rng RandSource) *trafficQueue {
	tq := new(trafficQueue)
	tq.frameLen = frameLen
	tq.rate = rateMbps * 1e6 / (8.0 * float64(frameLen))
	tq.rng = rng

	switch model {
	case ArrivalExponential:
		tq.sampleNxtArrival = sampleExpRV
	case ArrivalConstant:
		tq.sampleNxtArrival = sampleConst
	default:
		panic(fmt.Errorf("unknown arrival model %q", model))
	}

	tq.nxtArr = math.Inf(1)
	if tq.rate > 0.0 {
		tq.nxtArr = roundFloat(tq.sampleNxtArrival(tq.rng.RandU01(), []float64{tq.rate}), rdigits)
	}
	return tq
}

// advance brings the arrivals up to time now
func (tq *trafficQueue) advance(now float64) {
	for tq.nxtArr <= now {
		tq.buffered += tq.frameLen
		tq.arrived += tq.frameLen
		tq.nxtArr = roundFloat(tq.nxtArr+tq.sampleNxtArrival(tq.rng.RandU01(), []float64{tq.rate}), rdigits)
	}
	tq.time = now
}

// occupancy is the number of bytes waiting
func (tq *trafficQueue) occupancy() int {
	return tq.buffered
}

// dequeue removes up to n bytes and returns how many were removed
func (tq *trafficQueue) dequeue(n int) int {
	taken := min(max(n, 0), tq.buffered)
	tq.buffered -= taken
	tq.sent += taken
	return taken
}

var rdigits uint = 12

// roundFloat rounds computed simulation time to avoid non-sensical comparisons
// induced by rounding error
func roundFloat(val float64, precision uint) float64 {
	ratio := math.Pow(10, float64(precision))
	return math.Round(val*ratio) / ratio
}

// expRV returns a sample of a exponentially distributed random number
func expRV(u01, rate float64) float64 {
	return -math.Log(1.0-u01) / rate
}

// sampleExpRV gives an exponential inter-arrival time, params[0] being the rate
func sampleExpRV(u01 float64, params []float64) float64 {
	return expRV(u01, params[0])
}

// sampleConst gives the constant inter-arrival time 1/params[0]
func sampleConst(u01 float64, params []float64) float64 {
	return 1.0 / params[0]
}
