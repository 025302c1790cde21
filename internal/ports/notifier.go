package ports

import (
	"context"

	"github.com/alejandrodnm/polyrec/internal/domain"
)

// Notifier presenta recomendaciones al usuario fuera del HTTP API.
type Notifier interface {
	// Notify muestra las recomendaciones ya ordenadas por score.
	// En la implementación de consola, imprime una tabla formateada.
	Notify(ctx context.Context, recs []domain.Recommendation) error
}
