package polymarket

import "encoding/json"

// DTOs raw de la API de Polymarket. Solo se usan dentro de este paquete.
// La conversión a domain entities se hace en mapping.go.
//
// La Data API es notoriamente laxa con los nombres de campos (conditionId
// vs condition_id vs marketId) y con los tipos numéricos (number vs
// string). Usamos *json.Number para distinguir "ausente" de "cero".

// --- Data API ---

// rawPosition es una posición de GET /positions.
type rawPosition struct {
	ConditionID  string `json:"conditionId"`
	ConditionID2 string `json:"condition_id"`
	MarketID     string `json:"marketId"`
	ID           string `json:"id"`

	OutcomeIndex  *json.Number `json:"outcomeIndex"`
	OutcomeIndex2 *json.Number `json:"outcome_index"`

	Size         *json.Number `json:"size"`
	AvgPrice     *json.Number `json:"avgPrice"`
	InitialValue *json.Number `json:"initialValue"`
	CurrentValue *json.Number `json:"currentValue"`
	CashPnl      *json.Number `json:"cashPnl"`
	PercentPnl   *json.Number `json:"percentPnl"`

	EndDate  string   `json:"endDate"`
	Slug     string   `json:"slug"`
	Title    string   `json:"title"`
	Question string   `json:"question"`
	Category string   `json:"category"`
	Tags     []string `json:"tags"`
}

// rawActivity es una entrada de GET /activity.
type rawActivity struct {
	ConditionID string `json:"conditionId"`
	Type        string `json:"type"`
	Side        string `json:"side"`
	ProxyWallet string `json:"proxyWallet"`

	UsdcSize *json.Number `json:"usdcSize"`
	UsdSize  *json.Number `json:"usdSize"`
	Notional *json.Number `json:"notional"`
	Price    *json.Number `json:"price"`
	AvgPrice *json.Number `json:"avgPrice"`

	Timestamp json.Number `json:"timestamp"`
}

// rawValue es la respuesta de GET /value.
type rawValue struct {
	User  string       `json:"user"`
	Total *json.Number `json:"total"`
}

// --- Gamma API ---

// gammaMarketsResponse es la respuesta de GET /markets de Gamma.
type gammaMarketsResponse []gammaMarket

// gammaMarket es un mercado del catálogo. Gamma devuelve algunos campos
// numéricos como strings JSON, json.Number acepta ambos.
type gammaMarket struct {
	ConditionID  string `json:"conditionId"`
	ID           string `json:"id"`
	ConditionID2 string `json:"condition_id"`

	Slug     string   `json:"slug"`
	Question string   `json:"question"`
	Category string   `json:"category"`
	Tags     []string `json:"tags"`
	EndDate  string   `json:"endDate"`

	BestBid           *json.Number `json:"bestBid"`
	BestAsk           *json.Number `json:"bestAsk"`
	Volume24h         *json.Number `json:"volume24hr"`
	OneDayPriceChange *json.Number `json:"oneDayPriceChange"`
	Liquidity         *json.Number `json:"liquidityNum"`
	EnableOrderBook   *bool        `json:"enableOrderBook"`
}
