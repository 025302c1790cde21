package polymarket

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/alejandrodnm/polyrec/internal/domain"
)

const (
	gammaMarketsPath = "/markets"
	gammaMarketsMax  = 1000
)

// FetchMarkets obtiene el catálogo de mercados abiertos desde Gamma,
// ordenado por volumen 24h descendente. Los mercados sin conditionId se
// descartan: sin identidad no se pueden indexar ni puntuar.
func (c *Client) FetchMarkets(ctx context.Context) ([]domain.Market, error) {
	url := fmt.Sprintf("%s%s?closed=false&limit=%d&order=-volume24hr&include_tag=true",
		c.gammaBase, gammaMarketsPath, gammaMarketsMax)

	var resp gammaMarketsResponse
	if err := c.get(ctx, c.gammaLimiter, url, &resp); err != nil {
		return nil, fmt.Errorf("gamma.FetchMarkets: %w", err)
	}

	markets := make([]domain.Market, 0, len(resp))
	skipped := 0
	for _, r := range resp {
		m := mapGammaMarket(r)
		if m.ConditionID == "" {
			skipped++
			continue
		}
		markets = append(markets, m)
	}

	slog.Debug("fetched gamma catalog", "markets", len(markets), "skipped", skipped)
	return markets, nil
}
