package domain

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testProfile() FeatureProfile {
	return FeatureProfile{
		Stake:               StakeProfile{AvgUSDCSize: 50, MedianUSDCSize: 40},
		Categories:          map[string]int{"Politics": 2, "Sports": 2},
		Tags:                map[string]int{"politics": 3, "crypto": 1},
		Risk:                RiskProfile{AvgDistFromMid: 0.2},
		Horizon:             HorizonProfile{MedianDays: 30},
		LiquidityPreference: "high",
	}
}

// --- tagSimilarity ---

func TestTagSimilarity_Overlap(t *testing.T) {
	p := testProfile()
	// politics=3 de un total de 4 observaciones
	assert.InDelta(t, 0.75, tagSimilarity(p.Tags, []string{"politics"}), 0.0001)
}

func TestTagSimilarity_NoMarketTags(t *testing.T) {
	assert.Equal(t, 0.0, tagSimilarity(testProfile().Tags, nil))
}

func TestTagSimilarity_UnknownTags(t *testing.T) {
	assert.Equal(t, 0.0, tagSimilarity(testProfile().Tags, []string{"nba"}))
}

func TestTagSimilarity_EmptyProfile(t *testing.T) {
	// total 0 → divisor 1, nunca división por cero
	assert.Equal(t, 0.0, tagSimilarity(map[string]int{}, []string{"politics"}))
}

// --- categoryMatch ---

func TestCategoryMatch_Known(t *testing.T) {
	assert.InDelta(t, 0.5, categoryMatch(testProfile().Categories, "Politics"), 0.0001)
}

func TestCategoryMatch_NoCategory(t *testing.T) {
	assert.Equal(t, 0.0, categoryMatch(testProfile().Categories, ""))
}

// --- horizonMatch ---

func TestHorizonMatch_NoEndDate(t *testing.T) {
	assert.Equal(t, 0.2, horizonMatch(30, Market{}, testNow))
}

func TestHorizonMatch_ExactHorizon(t *testing.T) {
	m := Market{EndDate: testNow.AddDate(0, 0, 30)}
	assert.InDelta(t, 1.0, horizonMatch(30, m, testNow), 0.0001)
}

func TestHorizonMatch_LinearDecay(t *testing.T) {
	// tol = max(3, round(30*0.3)) = 9; diff = 3 → 1 - 3/9
	m := Market{EndDate: testNow.AddDate(0, 0, 33)}
	assert.InDelta(t, 1.0-3.0/9.0, horizonMatch(30, m, testNow), 0.0001)
}

func TestHorizonMatch_BeyondTolerance(t *testing.T) {
	// diff = 18 > tol = 9 → 0, nunca negativo
	m := Market{EndDate: testNow.AddDate(0, 0, 48)}
	assert.Equal(t, 0.0, horizonMatch(30, m, testNow))
}

func TestHorizonMatch_MinTolerance(t *testing.T) {
	// median=5 → round(1.5)=2 < 3 → tol=3; diff=3 → 0
	m := Market{EndDate: testNow.AddDate(0, 0, 8)}
	assert.InDelta(t, 0.0, horizonMatch(5, m, testNow), 0.0001)
}

// --- riskMatch ---

func TestRiskMatch_ExactMatch(t *testing.T) {
	// mid = (0.6+0.8)/2 = 0.7, dist = 0.2 = apetito del perfil
	m := Market{BestBid: fptr(0.6), BestAsk: fptr(0.8)}
	assert.InDelta(t, 1.0, riskMatch(0.2, m), 0.0001)
}

func TestRiskMatch_MissingQuotes(t *testing.T) {
	// sin bid/ask: mid = 0.5, dist = 0; diff 0.2 > tol 0.12 → 0
	assert.Equal(t, 0.0, riskMatch(0.2, Market{}))
}

func TestRiskMatch_ZeroAppetite(t *testing.T) {
	// tol floor 0.05 evita división por cero con perfiles neutros
	m := Market{BestBid: fptr(0.48), BestAsk: fptr(0.52)}
	assert.InDelta(t, 1.0, riskMatch(0, m), 0.0001)
}

// --- liquidityScore ---

func TestLiquidityScore_Unknown(t *testing.T) {
	assert.Equal(t, 0.1, liquidityScore(nil))
	assert.Equal(t, 0.1, liquidityScore(fptr(0)))
	assert.Equal(t, 0.1, liquidityScore(fptr(-10)))
}

func TestLiquidityScore_Scale(t *testing.T) {
	// log10(1+999)/3 = 1.0
	assert.InDelta(t, 1.0, liquidityScore(fptr(999)), 0.0001)
	// cap en 1 para liquidez muy alta
	assert.Equal(t, 1.0, liquidityScore(fptr(5_000_000)))
	// log10(100)/3 ≈ 0.667
	assert.InDelta(t, 2.0/3.0, liquidityScore(fptr(99)), 0.0001)
}

// --- momentum ---

func TestMomentum_AllMissing(t *testing.T) {
	assert.Equal(t, 0.0, momentum(nil, nil))
}

func TestMomentum_Blend(t *testing.T) {
	// (0.4 + log10(1000)/6) / 2 = (0.4 + 0.5) / 2 = 0.45
	assert.InDelta(t, 0.45, momentum(fptr(0.4), fptr(999)), 0.0001)
}

// --- ScoreMarkets ---

func TestScoreMarkets_EmptyCatalog(t *testing.T) {
	recs := ScoreMarkets(testProfile(), nil, nil, testNow, DefaultWeights())
	assert.Empty(t, recs)
}

func TestScoreMarkets_CapAt20(t *testing.T) {
	var markets []Market
	for i := 0; i < 25; i++ {
		markets = append(markets, Market{
			ConditionID: fmt.Sprintf("0x%02d", i),
			Liquidity:   fptr(float64(100 * (i + 1))),
		})
	}
	recs := ScoreMarkets(testProfile(), markets, nil, testNow, DefaultWeights())
	assert.Len(t, recs, 20)
}

func TestScoreMarkets_DescendingScores(t *testing.T) {
	markets := []Market{
		{ConditionID: "0xa", Tags: []string{"politics"}, Category: "Politics"},
		{ConditionID: "0xb"},
		{ConditionID: "0xc", Liquidity: fptr(50000), Volume24h: fptr(10000)},
		{ConditionID: "0xd", Tags: []string{"crypto"}},
	}
	recs := ScoreMarkets(testProfile(), markets, nil, testNow, DefaultWeights())

	require.Len(t, recs, 4)
	for i := 1; i < len(recs); i++ {
		assert.GreaterOrEqual(t, recs[i-1].Score, recs[i].Score)
	}
}

func TestScoreMarkets_StableTies(t *testing.T) {
	markets := []Market{
		{ConditionID: "0xfirst"},
		{ConditionID: "0xsecond"},
	}
	recs := ScoreMarkets(testProfile(), markets, nil, testNow, DefaultWeights())

	require.Len(t, recs, 2)
	assert.Equal(t, "0xfirst", recs[0].ConditionID)
	assert.Equal(t, "0xsecond", recs[1].ConditionID)
}

func TestScoreMarkets_NoveltyPenalty(t *testing.T) {
	market := Market{ConditionID: "0xheld", Liquidity: fptr(1000)}

	base := ScoreMarkets(testProfile(), []Market{market}, nil, testNow, DefaultWeights())
	held := ScoreMarkets(testProfile(), []Market{market},
		map[string]bool{"0xheld": true}, testNow, DefaultWeights())

	require.Len(t, base, 1)
	require.Len(t, held, 1)

	// término de novedad: 0.05×(1+0) vs 0.05×(1-0.2) → 0.01 menos
	assert.InDelta(t, base[0].Score-0.01, held[0].Score, 1e-9)
	assert.Contains(t, held[0].Reasons, "You already hold this (lowered rank)")
}

func TestScoreMarkets_ReasonsOrderAndCap(t *testing.T) {
	profile := FeatureProfile{
		Categories:          map[string]int{"Sports": 1},
		Tags:                map[string]int{"nba": 3},
		Risk:                RiskProfile{},
		Horizon:             HorizonProfile{MedianDays: 21},
		LiquidityPreference: "high",
	}
	// Dispara todos los umbrales a la vez; solo sobreviven los 3 primeros
	// en el orden fijo de evaluación.
	market := Market{
		ConditionID: "0xhot",
		Category:    "Sports",
		Tags:        []string{"nba"},
		EndDate:     testNow.AddDate(0, 0, 21),
		BestBid:     fptr(0.49),
		BestAsk:     fptr(0.51),
		Liquidity:   fptr(100000),
		Volume24h:   fptr(100000),
		OneDayPriceChange: fptr(0.6),
	}
	recs := ScoreMarkets(profile, []Market{market},
		map[string]bool{"0xhot": true}, testNow, DefaultWeights())

	require.Len(t, recs, 1)
	assert.Equal(t, []string{
		"Matches your usual time frame",
		"Tags you trade often",
		"You like Sports",
	}, recs[0].Reasons)
}

func TestScoreMarkets_NeutralMarketScore(t *testing.T) {
	// Mercado sin datos: tagSim=0, catMatch=0, horMatch=0.2, riskMatch=0
	// (perfil con apetito 0.2), liq=0.1, mom=0 →
	// 0.20×0.2 + 0.10×0.1 + 0.05×1 = 0.10
	recs := ScoreMarkets(testProfile(), []Market{{ConditionID: "0xbare"}},
		nil, testNow, DefaultWeights())

	require.Len(t, recs, 1)
	assert.InDelta(t, 0.10, recs[0].Score, 1e-9)
	assert.Empty(t, recs[0].Reasons)
}
