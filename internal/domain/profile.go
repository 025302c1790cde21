package domain

// profile.go — extracción de features de comportamiento.
//
// BuildProfile convierte el historial crudo (activity + positions) en una
// firma estadística compacta. Es una función pura y total: cualquier input
// finito, incluido el vacío, produce un perfil válido con defaults neutros.
// Nunca NaN, nunca error.

import (
	"math"
	"sort"
	"time"
)

const (
	// Horizonte por defecto cuando ninguna posición tiene fecha de
	// resolución. También fija la entrada asumida: no hay timestamp real
	// de entrada en el input, así que asumimos now - 21d. Es un proxy
	// conocido; mantenerlo literal hasta que la API exponga el dato real.
	DefaultHorizonDays = 21

	// Placeholder hasta que podamos derivar la preferencia real
	// comparando fills contra la liquidez del mercado.
	defaultLiquidityPreference = "high"
)

// FeatureProfile es la firma de comportamiento derivada de una wallet.
// Los nombres JSON son contrato estable: persistencia y frontend dependen
// de ellos tal cual.
type FeatureProfile struct {
	Stake               StakeProfile   `json:"stake"`
	Categories          map[string]int `json:"categories"`
	Tags                map[string]int `json:"tags"`
	Risk                RiskProfile    `json:"risk"`
	Horizon             HorizonProfile `json:"horizon"`
	LiquidityPreference string         `json:"liquidityPreference"`
}

// StakeProfile resume el tamaño de apuesta típico en USDC.
type StakeProfile struct {
	AvgUSDCSize    float64 `json:"avg_usdc_size"`
	MedianUSDCSize float64 `json:"median_usdc_size"`
}

// RiskProfile resume el apetito de riesgo: distancia media del precio de
// entrada al 0.50 (coin flip). 0 = entra en mercados inciertos,
// 0.5 = entra en mercados casi resueltos.
type RiskProfile struct {
	AvgDistFromMid float64 `json:"avg_dist_from_mid"`
}

// HorizonProfile resume el horizonte temporal preferido en días.
type HorizonProfile struct {
	MedianDays int `json:"median_days"`
}

// BuildProfile calcula el FeatureProfile de una wallet a partir de su
// actividad y posiciones actuales. now se inyecta para que los tests sean
// deterministas.
func BuildProfile(activity []ActivityRecord, positions []Position, now time.Time) FeatureProfile {
	p := FeatureProfile{
		Categories:          make(map[string]int),
		Tags:                make(map[string]int),
		LiquidityPreference: defaultLiquidityPreference,
		Horizon:             HorizonProfile{MedianDays: DefaultHorizonDays},
	}

	p.Stake = stakeProfile(activity)
	p.Risk = riskProfile(activity)

	for _, pos := range positions {
		if pos.Category != "" {
			p.Categories[pos.Category]++
		}
		for _, t := range pos.Tags {
			p.Tags[t]++
		}
	}

	if days, ok := horizonDays(positions, now); ok {
		p.Horizon.MedianDays = days
	}

	return p
}

// stakeProfile calcula media y mediana del notional por trade.
// La mediana es el elemento en el índice floor(n/2) del slice ordenado.
func stakeProfile(activity []ActivityRecord) StakeProfile {
	var sizes []float64
	for _, a := range activity {
		if v := a.NotionalUSDC(); v > 0 {
			sizes = append(sizes, v)
		}
	}
	if len(sizes) == 0 {
		return StakeProfile{}
	}

	var sum float64
	for _, v := range sizes {
		sum += v
	}
	sort.Float64s(sizes)

	return StakeProfile{
		AvgUSDCSize:    sum / float64(len(sizes)),
		MedianUSDCSize: sizes[len(sizes)/2],
	}
}

// riskProfile promedia |price - 0.5| sobre los records con precio.
func riskProfile(activity []ActivityRecord) RiskProfile {
	var sum float64
	var n int
	for _, a := range activity {
		if price, ok := a.EntryPrice(); ok {
			sum += math.Abs(price - 0.5)
			n++
		}
	}
	if n == 0 {
		return RiskProfile{}
	}
	return RiskProfile{AvgDistFromMid: sum / float64(n)}
}

// horizonDays estima el horizonte medio en días usando la entrada asumida
// (now - 21d) contra la EndDate de cada posición. ok=false si ninguna
// posición tiene fecha.
func horizonDays(positions []Position, now time.Time) (int, bool) {
	assumedEntry := now.AddDate(0, 0, -DefaultHorizonDays)

	var sum float64
	var n int
	for _, pos := range positions {
		if pos.EndDate.IsZero() {
			continue
		}
		days := roundDays(pos.EndDate.Sub(assumedEntry))
		if days < 1 {
			days = 1
		}
		sum += days
		n++
	}
	if n == 0 {
		return 0, false
	}
	return int(math.Round(sum / float64(n))), true
}

// roundDays convierte una duración a días redondeados al entero más cercano.
func roundDays(d time.Duration) float64 {
	return math.Round(d.Hours() / 24)
}
