package ltemac

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTrafficQueueConstantArrivals(t *testing.T) {
	tq := createTrafficQueue(0.8, 1000, ArrivalConstant, newSeededRand(3))
	tq.advance(0.05)
	assert.Equal(t, 5000, tq.occupancy())

	assert.Equal(t, 1200, tq.dequeue(1200))
	assert.Equal(t, 3800, tq.occupancy())
	assert.Equal(t, 3800, tq.dequeue(10000))
	assert.Equal(t, 0, tq.dequeue(-4))
	assert.Equal(t, 5000, tq.sent)
	assert.Equal(t, 5000, tq.arrived)
}

func TestTrafficQueueExponentialRate(t *testing.T) {
	tq := createTrafficQueue(2.0, 500, ArrivalExponential, newSeededRand(5))
	tq.advance(10.0)
	// 500 frames per second over ten seconds
	assert.InDelta(t, 2.0e6*10.0/8.0, float64(tq.arrived), 0.05*2.0e6*10.0/8.0)
}

func TestTrafficQueueIdle(t *testing.T) {
	tq := createTrafficQueue(0.0, 1000, ArrivalExponential, newSeededRand(3))
	tq.advance(100.0)
	assert.Zero(t, tq.occupancy())
	assert.Panics(t, func() { createTrafficQueue(1.0, 1000, "poisson", newSeededRand(3)) })
}

func TestRoundFloat(t *testing.T) {
	assert.Equal(t, 0.3, roundFloat(0.1+0.2, rdigits))
	assert.Equal(t, 1.25, roundFloat(1.2500000000001, rdigits))
}
