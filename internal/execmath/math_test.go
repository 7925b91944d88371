package execmath

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNotional(t *testing.T) {
	assert.Equal(t, 30000.0, Notional(0.5, 60000))
	assert.Zero(t, Notional(0, 60000))
	assert.Zero(t, Notional(1, -1))
}

func TestWorstStopDistance(t *testing.T) {
	// 多头取离入场最远的最低止损
	assert.Equal(t, 1500.0, WorstStopDistance(60000, true, []float64{59500, 58500, 59000}))
	// 空头反过来
	assert.Equal(t, 300.0, WorstStopDistance(3200, false, []float64{3300, 3500}))
	assert.Zero(t, WorstStopDistance(60000, true, nil))
	// 非法止损价被跳过
	assert.Zero(t, WorstStopDistance(60000, true, []float64{0, -5}))
}

func TestRiskExposure(t *testing.T) {
	assert.Equal(t, 750.0, RiskExposure(60000, true, []float64{58500}, 0.5))
}

func TestLeverageEstimate(t *testing.T) {
	assert.Equal(t, 3.0, LeverageEstimate(30000, 10000))
	assert.Zero(t, LeverageEstimate(30000, 0))
}

func TestClampAndRound(t *testing.T) {
	assert.Equal(t, 0.0, Clamp01(-0.5))
	assert.Equal(t, 1.0, Clamp01(1.5))
	assert.Equal(t, 0.3, Clamp01(0.3))
	assert.Equal(t, 3.33, Round2(3.3333))
	assert.Equal(t, 3.34, Round2(3.336))
}
