package polymarket

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"

	"github.com/alejandrodnm/polyrec/internal/domain"
)

const defaultActivityLimit = 1000

// FetchPositions obtiene las posiciones abiertas de una wallet desde la
// Data API pública.
func (c *Client) FetchPositions(ctx context.Context, user string) ([]domain.Position, error) {
	u := fmt.Sprintf("%s/positions?user=%s", c.dataBase, url.QueryEscape(user))

	var resp []rawPosition
	if err := c.get(ctx, c.dataLimiter, u, &resp); err != nil {
		return nil, fmt.Errorf("data-api.FetchPositions: %w", err)
	}

	positions := make([]domain.Position, 0, len(resp))
	for _, r := range resp {
		positions = append(positions, mapPosition(r))
	}

	slog.Debug("fetched positions", "user", shortWallet(user), "count", len(positions))
	return positions, nil
}

// FetchActivity obtiene el log de actividad reciente de una wallet.
func (c *Client) FetchActivity(ctx context.Context, user string, limit int) ([]domain.ActivityRecord, error) {
	if limit <= 0 {
		limit = defaultActivityLimit
	}
	u := fmt.Sprintf("%s/activity?user=%s&limit=%d", c.dataBase, url.QueryEscape(user), limit)

	var resp []rawActivity
	if err := c.get(ctx, c.dataLimiter, u, &resp); err != nil {
		return nil, fmt.Errorf("data-api.FetchActivity: %w", err)
	}

	activity := make([]domain.ActivityRecord, 0, len(resp))
	for _, r := range resp {
		activity = append(activity, mapActivity(r))
	}

	slog.Debug("fetched activity", "user", shortWallet(user), "count", len(activity))
	return activity, nil
}

// FetchValue obtiene el valor total de la cartera en USD.
// ok=false si la API no devuelve el campo.
func (c *Client) FetchValue(ctx context.Context, user string) (float64, bool, error) {
	u := fmt.Sprintf("%s/value?user=%s", c.dataBase, url.QueryEscape(user))

	var resp rawValue
	if err := c.get(ctx, c.dataLimiter, u, &resp); err != nil {
		return 0, false, fmt.Errorf("data-api.FetchValue: %w", err)
	}

	if resp.Total == nil {
		return 0, false, nil
	}
	total, err := resp.Total.Float64()
	if err != nil {
		return 0, false, nil
	}
	return total, true, nil
}

// shortWallet trunca una dirección para logs.
func shortWallet(w string) string {
	if len(w) > 10 {
		return w[:10] + "..."
	}
	return w
}
