package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

var testNow = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func fptr(v float64) *float64 { return &v }

func TestBuildProfile_EmptyInputs(t *testing.T) {
	p := BuildProfile(nil, nil, testNow)

	assert.Equal(t, 0.0, p.Stake.AvgUSDCSize)
	assert.Equal(t, 0.0, p.Stake.MedianUSDCSize)
	assert.Empty(t, p.Categories)
	assert.NotNil(t, p.Categories) // serializa como {} no como null
	assert.Empty(t, p.Tags)
	assert.NotNil(t, p.Tags)
	assert.Equal(t, 0.0, p.Risk.AvgDistFromMid)
	assert.Equal(t, 21, p.Horizon.MedianDays)
	assert.Equal(t, "high", p.LiquidityPreference)
}

func TestBuildProfile_StakeStats(t *testing.T) {
	activity := []ActivityRecord{
		{UsdcSize: 10},
		{UsdcSize: 30},
		{UsdcSize: 20},
	}
	p := BuildProfile(activity, nil, testNow)

	assert.InDelta(t, 20.0, p.Stake.AvgUSDCSize, 0.0001)
	assert.InDelta(t, 20.0, p.Stake.MedianUSDCSize, 0.0001)
}

func TestBuildProfile_StakeMedian_EvenCount(t *testing.T) {
	// n=4, índice floor(4/2)=2 del slice ordenado → 30
	activity := []ActivityRecord{
		{UsdcSize: 40},
		{UsdcSize: 10},
		{UsdcSize: 30},
		{UsdcSize: 20},
	}
	p := BuildProfile(activity, nil, testNow)

	assert.InDelta(t, 25.0, p.Stake.AvgUSDCSize, 0.0001)
	assert.InDelta(t, 30.0, p.Stake.MedianUSDCSize, 0.0001)
}

func TestBuildProfile_NotionalFallbackChain(t *testing.T) {
	activity := []ActivityRecord{
		{UsdSize: 50},             // sin usdcSize → usa usdSize
		{Notional: 150},           // solo notional
		{UsdcSize: -5, UsdSize: 0}, // nada positivo → se ignora
	}
	p := BuildProfile(activity, nil, testNow)

	assert.InDelta(t, 100.0, p.Stake.AvgUSDCSize, 0.0001)
	assert.InDelta(t, 150.0, p.Stake.MedianUSDCSize, 0.0001)
}

func TestBuildProfile_RiskDistance(t *testing.T) {
	activity := []ActivityRecord{
		{Price: fptr(0.5)},
		{Price: fptr(0.9)},
	}
	p := BuildProfile(activity, nil, testNow)

	// (|0.5-0.5| + |0.9-0.5|) / 2 = 0.2
	assert.InDelta(t, 0.2, p.Risk.AvgDistFromMid, 0.0001)
}

func TestBuildProfile_RiskAvgPriceFallback(t *testing.T) {
	activity := []ActivityRecord{
		{AvgPrice: fptr(0.1)}, // sin price → usa avgPrice
		{UsdcSize: 25},        // sin precio → no aporta al riesgo
	}
	p := BuildProfile(activity, nil, testNow)

	assert.InDelta(t, 0.4, p.Risk.AvgDistFromMid, 0.0001)
}

func TestBuildProfile_CategoryTagCounts(t *testing.T) {
	positions := []Position{
		{Category: "Politics", Tags: []string{"elections", "us"}},
		{Category: "Politics", Tags: []string{"elections"}},
		{Category: "Sports"},
		{Tags: []string{"nba"}}, // sin categoría: solo cuenta tags
	}
	p := BuildProfile(nil, positions, testNow)

	assert.Equal(t, map[string]int{"Politics": 2, "Sports": 1}, p.Categories)
	assert.Equal(t, map[string]int{"elections": 2, "us": 1, "nba": 1}, p.Tags)
}

func TestBuildProfile_HorizonFromEndDates(t *testing.T) {
	positions := []Position{
		// end - (now-21d) = 30d
		{EndDate: testNow.AddDate(0, 0, 9)},
		// mercado ya resuelto: clamp a 1 día
		{EndDate: testNow.AddDate(0, 0, -30)},
		// sin EndDate: no cuenta
		{},
	}
	p := BuildProfile(nil, positions, testNow)

	// round((30+1)/2) = 16
	assert.Equal(t, 16, p.Horizon.MedianDays)
}

func TestBuildProfile_HorizonDefault(t *testing.T) {
	positions := []Position{{Category: "Crypto"}}
	p := BuildProfile(nil, positions, testNow)

	assert.Equal(t, 21, p.Horizon.MedianDays)
}

func TestBuildProfile_Deterministic(t *testing.T) {
	activity := []ActivityRecord{
		{UsdcSize: 42, Price: fptr(0.33)},
		{UsdSize: 17, AvgPrice: fptr(0.81)},
	}
	positions := []Position{
		{Category: "Crypto", Tags: []string{"btc"}, EndDate: testNow.AddDate(0, 0, 14)},
	}

	a := BuildProfile(activity, positions, testNow)
	b := BuildProfile(activity, positions, testNow)

	assert.Equal(t, a, b)
}
