package domain

import "time"

// Market representa un mercado de predicción del catálogo Gamma.
// Los punteros son campos nullable en la API: nil = dato no disponible,
// y el scorer degrada a un valor neutro en vez de fallar.
type Market struct {
	ConditionID string
	Slug        string
	Question    string
	Category    string
	Tags        []string
	EndDate     time.Time // zero = sin fecha de resolución

	BestBid           *float64 // en [0,1]
	BestAsk           *float64 // en [0,1]
	Volume24h         *float64 // USDC últimas 24h
	OneDayPriceChange *float64 // cambio de precio con signo
	Liquidity         *float64 // USDC en el book
	EnableOrderBook   *bool
}

// MidPrice devuelve el punto medio bid/ask como proxy de la probabilidad
// implícita del mercado. Los lados ausentes cuentan como 0.50.
func (m Market) MidPrice() float64 {
	bid, ask := 0.5, 0.5
	if m.BestBid != nil {
		bid = *m.BestBid
	}
	if m.BestAsk != nil {
		ask = *m.BestAsk
	}
	return (bid + ask) / 2
}

// DaysToEnd devuelve los días hasta la resolución, mínimo 1.
// Devuelve 0 si el mercado no tiene EndDate.
func (m Market) DaysToEnd(now time.Time) int {
	if m.EndDate.IsZero() {
		return 0
	}
	days := int(roundDays(m.EndDate.Sub(now)))
	if days < 1 {
		return 1
	}
	return days
}
