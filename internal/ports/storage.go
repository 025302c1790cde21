package ports

import (
	"context"

	"github.com/alejandrodnm/polyrec/internal/domain"
)

// Storage persiste usuarios, posiciones, el índice de mercados y los
// perfiles de features. Todas las escrituras son reemplazos completos
// (upsert): una ingesta recalcula y sobreescribe, nunca hay updates
// parciales.
type Storage interface {
	// UpsertUser crea o actualiza la identidad de una wallet.
	UpsertUser(ctx context.Context, user domain.User) error

	// GetUser devuelve el usuario por wallet de entrada, o nil si no existe.
	GetUser(ctx context.Context, walletInput string) (*domain.User, error)

	// SetUserValue actualiza el valor total en USD de la wallet.
	SetUserValue(ctx context.Context, walletInput string, totalUSD float64) error

	// ReplacePositions sobreescribe las posiciones guardadas de la wallet.
	ReplacePositions(ctx context.Context, wallet string, positions []domain.Position) error

	// GetPositions devuelve las posiciones guardadas de la wallet.
	GetPositions(ctx context.Context, wallet string) ([]domain.Position, error)

	// UpsertMarkets actualiza el índice de mercados y devuelve cuántos
	// se escribieron.
	UpsertMarkets(ctx context.Context, markets []domain.Market) (int, error)

	// GetMarkets devuelve el catálogo completo indexado.
	GetMarkets(ctx context.Context) ([]domain.Market, error)

	// SaveProfile guarda el FeatureProfile keyed por wallet resuelta.
	SaveProfile(ctx context.Context, wallet string, profile domain.FeatureProfile) error

	// GetProfile devuelve el perfil guardado, o nil si nunca se ingirió.
	GetProfile(ctx context.Context, wallet string) (*domain.FeatureProfile, error)

	// Close cierra la conexión a la base de datos limpiamente.
	Close() error
}
