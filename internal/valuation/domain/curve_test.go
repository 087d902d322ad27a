package domain

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleCurve(t *testing.T) *Curve {
	t.Helper()
	curve, err := NewCurve("USD-Discount", USD, []CurveNode{
		{Label: "3M", TimeYears: 0.25, ZeroRate: 0.02},
		{Label: "1Y", TimeYears: 1, ZeroRate: 0.03},
		{Label: "5Y", TimeYears: 5, ZeroRate: 0.04},
	})
	require.NoError(t, err)
	return curve
}

func TestNewCurveRejectsEmptyNodes(t *testing.T) {
	_, err := NewCurve("empty", USD, nil)
	assert.Error(t, err)
}

func TestNewCurveRejectsUnorderedNodes(t *testing.T) {
	_, err := NewCurve("unordered", USD, []CurveNode{
		{Label: "1Y", TimeYears: 1, ZeroRate: 0.03},
		{Label: "3M", TimeYears: 0.25, ZeroRate: 0.02},
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "strictly increasing")
}

func TestZeroRateInterpolation(t *testing.T) {
	curve := sampleCurve(t)

	// 节点上取节点值
	assert.InDelta(t, 0.03, curve.ZeroRateAt(1), 1e-12)
	// 节点间线性插值
	assert.InDelta(t, 0.025, curve.ZeroRateAt(0.625), 1e-12)
	// 端点外平推
	assert.InDelta(t, 0.02, curve.ZeroRateAt(0.1), 1e-12)
	assert.InDelta(t, 0.04, curve.ZeroRateAt(10), 1e-12)
}

func TestDiscountFactor(t *testing.T) {
	curve := sampleCurve(t)

	assert.Equal(t, 1.0, curve.DiscountFactor(0))
	assert.Equal(t, 1.0, curve.DiscountFactor(-1))
	assert.InDelta(t, math.Exp(-0.03), curve.DiscountFactor(1), 1e-12)
}

func TestParallelShiftedLeavesOriginalUntouched(t *testing.T) {
	curve := sampleCurve(t)

	shifted := curve.ParallelShifted(0.0001)

	assert.InDelta(t, 0.0301, shifted.ZeroRateAt(1), 1e-12)
	assert.InDelta(t, 0.03, curve.ZeroRateAt(1), 1e-12)
}

func TestNodeShifted(t *testing.T) {
	curve := sampleCurve(t)

	shifted, err := curve.NodeShifted(1, 0.0001)
	require.NoError(t, err)
	assert.InDelta(t, 0.0301, shifted.ZeroRateAt(1), 1e-12)
	assert.InDelta(t, 0.02, shifted.ZeroRateAt(0.25), 1e-12)
	assert.InDelta(t, 0.03, curve.ZeroRateAt(1), 1e-12)

	_, err = curve.NodeShifted(3, 0.0001)
	assert.Error(t, err)
}
