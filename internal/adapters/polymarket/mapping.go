package polymarket

import (
	"encoding/json"
	"strconv"
	"time"

	"github.com/alejandrodnm/polyrec/internal/domain"
)

// mapPosition convierte un rawPosition a domain.Position.
func mapPosition(r rawPosition) domain.Position {
	title := r.Title
	if title == "" {
		title = r.Question
	}

	return domain.Position{
		ConditionID:  firstNonEmpty(r.ConditionID, r.ConditionID2, r.MarketID, r.ID),
		OutcomeIndex: intOrZero(firstNumber(r.OutcomeIndex, r.OutcomeIndex2)),
		Size:         numPtr(r.Size),
		AvgPrice:     numPtr(r.AvgPrice),
		InitialValue: numPtr(r.InitialValue),
		CurrentValue: numPtr(r.CurrentValue),
		CashPnl:      numPtr(r.CashPnl),
		PercentPnl:   numPtr(r.PercentPnl),
		EndDate:      parseEndDate(r.EndDate),
		Slug:         r.Slug,
		Title:        title,
		Category:     r.Category,
		Tags:         r.Tags,
	}
}

// mapActivity convierte un rawActivity a domain.ActivityRecord.
func mapActivity(r rawActivity) domain.ActivityRecord {
	return domain.ActivityRecord{
		ConditionID: r.ConditionID,
		Type:        r.Type,
		Side:        r.Side,
		ProxyWallet: r.ProxyWallet,
		UsdcSize:    numOrZero(r.UsdcSize),
		UsdSize:     numOrZero(r.UsdSize),
		Notional:    numOrZero(r.Notional),
		Price:       numPtr(r.Price),
		AvgPrice:    numPtr(r.AvgPrice),
		Timestamp:   parseUnixTimestamp(r.Timestamp),
	}
}

// mapGammaMarket convierte un gammaMarket a domain.Market.
func mapGammaMarket(r gammaMarket) domain.Market {
	return domain.Market{
		ConditionID:       firstNonEmpty(r.ConditionID, r.ID, r.ConditionID2),
		Slug:              r.Slug,
		Question:          r.Question,
		Category:          r.Category,
		Tags:              r.Tags,
		EndDate:           parseEndDate(r.EndDate),
		BestBid:           numPtr(r.BestBid),
		BestAsk:           numPtr(r.BestAsk),
		Volume24h:         numPtr(r.Volume24h),
		OneDayPriceChange: numPtr(r.OneDayPriceChange),
		Liquidity:         numPtr(r.Liquidity),
		EnableOrderBook:   r.EnableOrderBook,
	}
}

// parseEndDate parsea una fecha de resolución.
// Polymarket usa varios formatos; intentamos los más comunes.
func parseEndDate(s string) time.Time {
	if s == "" {
		return time.Time{}
	}
	for _, layout := range []string{
		time.RFC3339,
		"2006-01-02T15:04:05.000Z",
		"2006-01-02T15:04:05Z",
		"2006-01-02",
	} {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC()
		}
	}
	return time.Time{}
}

// parseUnixTimestamp convierte un timestamp unix (segundos) a time.Time.
func parseUnixTimestamp(n json.Number) time.Time {
	if n == "" {
		return time.Time{}
	}
	if secs, err := n.Int64(); err == nil && secs > 0 {
		return time.Unix(secs, 0).UTC()
	}
	// algunos endpoints devuelven el timestamp como float
	if f, err := strconv.ParseFloat(n.String(), 64); err == nil && f > 0 {
		return time.Unix(int64(f), 0).UTC()
	}
	return time.Time{}
}

// --- helpers de campos opcionales ---

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

func firstNumber(values ...*json.Number) *json.Number {
	for _, v := range values {
		if v != nil {
			return v
		}
	}
	return nil
}

// numPtr convierte *json.Number a *float64 preservando la ausencia.
func numPtr(n *json.Number) *float64 {
	if n == nil {
		return nil
	}
	f, err := n.Float64()
	if err != nil {
		return nil
	}
	return &f
}

// numOrZero convierte *json.Number a float64, 0 si falta o no parsea.
func numOrZero(n *json.Number) float64 {
	if n == nil {
		return 0
	}
	f, err := n.Float64()
	if err != nil {
		return 0
	}
	return f
}

// intOrZero convierte *json.Number a int, 0 si falta o no parsea.
func intOrZero(n *json.Number) int {
	if n == nil {
		return 0
	}
	i, err := n.Int64()
	if err != nil {
		return 0
	}
	return int(i)
}
