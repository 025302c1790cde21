package ports

import (
	"context"

	"github.com/alejandrodnm/polyrec/internal/domain"
)

// WalletData obtiene el historial on-chain de una wallet desde la Data API.
type WalletData interface {
	// FetchPositions devuelve las posiciones abiertas de la wallet.
	FetchPositions(ctx context.Context, user string) ([]domain.Position, error)

	// FetchActivity devuelve el log de actividad reciente, hasta limit
	// entradas.
	FetchActivity(ctx context.Context, user string, limit int) ([]domain.ActivityRecord, error)

	// FetchValue devuelve el valor total de la cartera en USD.
	// ok=false si la API no devuelve el dato.
	FetchValue(ctx context.Context, user string) (float64, bool, error)
}

// MarketCatalog obtiene el catálogo de mercados abiertos desde Gamma.
type MarketCatalog interface {
	// FetchMarkets devuelve los mercados abiertos ordenados por volumen
	// 24h descendente.
	FetchMarkets(ctx context.Context) ([]domain.Market, error)
}
