package domain

import "time"

// ActivityRecord es un evento del historial de trading de una wallet
// (Data API /activity). Los campos numéricos son opcionales: la API
// devuelve payloads heterogéneos y la ausencia de un campo solo reduce
// señal, nunca rompe el cálculo del perfil.
type ActivityRecord struct {
	ConditionID string
	Type        string // TRADE | SPLIT | MERGE | REDEEM...
	Side        string
	ProxyWallet string // wallet proxy detectada, si la actividad la expone

	// Notional en USDC. La API usa distintos nombres según el endpoint;
	// 0 = campo ausente o no positivo.
	UsdcSize float64
	UsdSize  float64
	Notional float64

	// Precio de entrada en [0,1]. nil = ausente.
	Price    *float64
	AvgPrice *float64

	Timestamp time.Time
}

// NotionalUSDC devuelve el primer notional positivo disponible
// (usdcSize > usdSize > notional), o 0 si ninguno está presente.
func (a ActivityRecord) NotionalUSDC() float64 {
	for _, v := range []float64{a.UsdcSize, a.UsdSize, a.Notional} {
		if v > 0 {
			return v
		}
	}
	return 0
}

// EntryPrice devuelve el precio de entrada (price > avgPrice) y si existe.
func (a ActivityRecord) EntryPrice() (float64, bool) {
	if a.Price != nil {
		return *a.Price, true
	}
	if a.AvgPrice != nil {
		return *a.AvgPrice, true
	}
	return 0, false
}

// Position es una posición abierta de la wallet en un mercado.
type Position struct {
	ConditionID  string
	OutcomeIndex int

	Size         *float64
	AvgPrice     *float64
	InitialValue *float64
	CurrentValue *float64
	CashPnl      *float64
	PercentPnl   *float64

	EndDate  time.Time // zero = el mercado no tiene fecha de resolución
	Slug     string
	Title    string
	Category string
	Tags     []string
}

// User es la identidad persistida de una wallet ingestada.
// WalletInput es la dirección tal y como llegó (normalizada);
// ProxyWallet es la wallet efectiva si Polymarket opera vía proxy.
type User struct {
	WalletInput   string
	ProxyWallet   string
	TotalValueUSD *float64
}

// ResolvedWallet devuelve la wallet efectiva para lookups de datos.
func (u User) ResolvedWallet() string {
	if u.ProxyWallet != "" {
		return u.ProxyWallet
	}
	return u.WalletInput
}
