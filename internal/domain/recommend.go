package domain

// recommend.go — scorer multi-factor de mercados.
//
// ScoreMarkets rankea un catálogo de mercados contra el FeatureProfile de
// la wallet. Cinco funciones de afinidad independientes (tags, categoría,
// horizonte, riesgo, liquidez) más un término de momentum y un ajuste de
// novedad, combinados con pesos lineales fijos. Puro y determinista:
// mismos inputs → mismo output, sin I/O.

import (
	"fmt"
	"math"
	"sort"
	"time"
)

const (
	// Máximo de recomendaciones devueltas por llamada.
	maxRecommendations = 20
	// Máximo de razones legibles por recomendación.
	maxReasons = 3

	// Score fijo para mercados sin fecha de resolución: penalización
	// suave por incertidumbre, no exclusión.
	horizonUnknownScore = 0.2
	// Floor para liquidez desconocida o cero.
	liquidityUnknownScore = 0.1
	// Penalización de novedad para mercados ya en cartera. Baja el rank
	// sin excluirlos: el usuario puede querer ampliar posición.
	noveltyHeldPenalty = -0.2
)

// Weights son los pesos del blend lineal del score final. Son política
// ajustable, no fórmula derivada: los defaults deben mantenerse para
// paridad de comportamiento.
type Weights struct {
	TagSimilarity float64
	CategoryMatch float64
	HorizonMatch  float64
	RiskMatch     float64
	Liquidity     float64
	Momentum      float64
	Novelty       float64
}

// DefaultWeights devuelve los pesos de producción.
// Suman 1.0 sobre los seis primeros términos más el offset de novedad.
func DefaultWeights() Weights {
	return Weights{
		TagSimilarity: 0.25,
		CategoryMatch: 0.15,
		HorizonMatch:  0.20,
		RiskMatch:     0.15,
		Liquidity:     0.10,
		Momentum:      0.10,
		Novelty:       0.05,
	}
}

// Recommendation es un mercado puntuado para la respuesta de /recommend.
// Efímera: se recalcula en cada request, no se persiste.
// Los nombres JSON son contrato estable con el frontend.
type Recommendation struct {
	ConditionID string     `json:"conditionId"`
	Slug        string     `json:"slug,omitempty"`
	Question    string     `json:"question,omitempty"`
	Category    string     `json:"category,omitempty"`
	Tags        []string   `json:"tags"`
	EndDate     *time.Time `json:"endDate"`
	BestBid     *float64   `json:"bestBid"`
	BestAsk     *float64   `json:"bestAsk"`
	Volume24h   *float64   `json:"volume24h"`
	Score       float64    `json:"score"`
	Reasons     []string   `json:"reasons"`
}

// ScoreMarkets puntúa el catálogo contra el perfil y devuelve como máximo
// 20 recomendaciones en orden descendente de score (empates: orden de
// entrada). held marca los conditionIDs ya en cartera. now se inyecta para
// tests deterministas.
func ScoreMarkets(profile FeatureProfile, markets []Market, held map[string]bool, now time.Time, w Weights) []Recommendation {
	recs := make([]Recommendation, 0, len(markets))

	for _, m := range markets {
		isHeld := held[m.ConditionID]

		tagSim := tagSimilarity(profile.Tags, m.Tags)
		catMatch := categoryMatch(profile.Categories, m.Category)
		horMatch := horizonMatch(profile.Horizon.MedianDays, m, now)
		rMatch := riskMatch(profile.Risk.AvgDistFromMid, m)
		liq := liquidityScore(m.Liquidity)
		mom := momentum(m.OneDayPriceChange, m.Volume24h)

		novelty := 0.0
		if isHeld {
			novelty = noveltyHeldPenalty
		}

		score := w.TagSimilarity*tagSim +
			w.CategoryMatch*catMatch +
			w.HorizonMatch*horMatch +
			w.RiskMatch*rMatch +
			w.Liquidity*liq +
			w.Momentum*mom +
			w.Novelty*(1+novelty)

		var endDate *time.Time
		if !m.EndDate.IsZero() {
			t := m.EndDate
			endDate = &t
		}

		recs = append(recs, Recommendation{
			ConditionID: m.ConditionID,
			Slug:        m.Slug,
			Question:    m.Question,
			Category:    m.Category,
			Tags:        m.Tags,
			EndDate:     endDate,
			BestBid:     m.BestBid,
			BestAsk:     m.BestAsk,
			Volume24h:   m.Volume24h,
			Score:       score,
			Reasons:     reasons(m, isHeld, tagSim, catMatch, horMatch, rMatch, liq, mom),
		})
	}

	// SliceStable preserva el orden de entrada en empates.
	sort.SliceStable(recs, func(i, j int) bool {
		return recs[i].Score > recs[j].Score
	})

	if len(recs) > maxRecommendations {
		recs = recs[:maxRecommendations]
	}
	return recs
}

// tagSimilarity mide el solape entre los tags del mercado y la frecuencia
// de tags del perfil, normalizado por el total de observaciones.
// Sin tags en el mercado → 0.
func tagSimilarity(profileTags map[string]int, marketTags []string) float64 {
	if len(marketTags) == 0 {
		return 0
	}
	var s int
	for _, t := range marketTags {
		s += profileTags[t]
	}
	return float64(s) / float64(countTotal(profileTags))
}

// categoryMatch es la fracción de posiciones del usuario en la categoría
// del mercado. Sin categoría → 0.
func categoryMatch(profileCats map[string]int, category string) float64 {
	if category == "" {
		return 0
	}
	return float64(profileCats[category]) / float64(countTotal(profileCats))
}

// horizonMatch compara los días a resolución con el horizonte preferido.
// Decae linealmente a 0 fuera de la tolerancia (±30% del horizonte,
// mínimo 3 días). Sin EndDate → 0.2 fijo.
func horizonMatch(medianDays int, m Market, now time.Time) float64 {
	daysToEnd := m.DaysToEnd(now)
	if daysToEnd == 0 {
		return horizonUnknownScore
	}

	diff := math.Abs(float64(daysToEnd - medianDays))
	tol := math.Max(3, math.Round(float64(medianDays)*0.3))
	return math.Max(0, 1-diff/tol)
}

// riskMatch compara la distancia del mid al 0.50 con el apetito de riesgo
// del perfil. Tolerancia: 60% del apetito, mínimo 0.05.
func riskMatch(userAvgDist float64, m Market) float64 {
	dist := math.Abs(m.MidPrice() - 0.5)
	diff := math.Abs(dist - userAvgDist)
	tol := math.Max(0.05, userAvgDist*0.6)
	return math.Max(0, 1-diff/tol)
}

// liquidityScore mapea la liquidez a [0,1] con escala logarítmica:
// ~$1k → 1.0. Desconocida o cero → floor de 0.1 (baja confianza, no cero).
func liquidityScore(liquidity *float64) float64 {
	if liquidity == nil || *liquidity <= 0 {
		return liquidityUnknownScore
	}
	return math.Min(1, math.Log10(1+*liquidity)/3)
}

// momentum mezcla el cambio de precio de 24h con el volumen en un solo
// término. No está acotado pero en la práctica es pequeño.
func momentum(oneDayChange, volume24h *float64) float64 {
	change := 0.0
	if oneDayChange != nil {
		change = *oneDayChange
	}
	vol := 0.0
	if volume24h != nil {
		vol = *volume24h
	}
	return (change + math.Log10(1+vol)/6) / 2
}

// reasons evalúa los umbrales en orden fijo y devuelve las primeras 3
// razones que aplican. El orden importa: solo las 3 primeras sobreviven.
func reasons(m Market, held bool, tagSim, catMatch, horMatch, rMatch, liq, mom float64) []string {
	var rs []string
	if horMatch > 0.7 {
		rs = append(rs, "Matches your usual time frame")
	}
	if tagSim > 0.5 {
		rs = append(rs, "Tags you trade often")
	}
	if catMatch > 0.4 {
		rs = append(rs, fmt.Sprintf("You like %s", m.Category))
	}
	if rMatch > 0.6 {
		rs = append(rs, "Fits your risk pattern")
	}
	if liq > 0.6 {
		rs = append(rs, "High liquidity")
	}
	if mom > 0.5 {
		rs = append(rs, "Active in the last 24h")
	}
	if held {
		rs = append(rs, "You already hold this (lowered rank)")
	}
	if len(rs) > maxReasons {
		rs = rs[:maxReasons]
	}
	return rs
}

// countTotal suma las frecuencias de un mapa de afinidad, mínimo 1 para
// evitar división por cero con perfiles vacíos.
func countTotal(counts map[string]int) int {
	var total int
	for _, v := range counts {
		total += v
	}
	if total == 0 {
		return 1
	}
	return total
}
