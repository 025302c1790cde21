package application

// service.go — orquestación de los workflows de ingesta y recomendación.
//
// Sin matemática de negocio: el cálculo del perfil y el scoring viven en
// internal/domain. Aquí solo se secuencian fetchers, persistencia y la
// resolución de proxy wallets.

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/alejandrodnm/polyrec/internal/domain"
	"github.com/alejandrodnm/polyrec/internal/ports"
)

// ErrNoProfile indica que la wallet nunca pasó por Ingest.
// El HTTP layer lo traduce a un 400.
var ErrNoProfile = errors.New("no profile found")

// Config contiene los parámetros del servicio.
type Config struct {
	// ActivityLimit es cuántas entradas de actividad se piden por ingesta.
	ActivityLimit int
	// Weights son los pesos del scorer. Zero value → DefaultWeights.
	Weights domain.Weights
}

// Service implementa los workflows del recomendador sobre los ports.
type Service struct {
	storage ports.Storage
	wallet  ports.WalletData
	catalog ports.MarketCatalog

	activityLimit int
	weights       domain.Weights
	now           func() time.Time
}

// New crea un Service con todas las dependencias inyectadas.
func New(cfg Config, storage ports.Storage, wallet ports.WalletData, catalog ports.MarketCatalog) *Service {
	if cfg.ActivityLimit <= 0 {
		cfg.ActivityLimit = 1000
	}
	if cfg.Weights == (domain.Weights{}) {
		cfg.Weights = domain.DefaultWeights()
	}
	return &Service{
		storage:       storage,
		wallet:        wallet,
		catalog:       catalog,
		activityLimit: cfg.ActivityLimit,
		weights:       cfg.Weights,
		now:           time.Now,
	}
}

// WithClock fija el reloj del servicio. Solo para tests.
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

// IngestResult resume una ingesta para la respuesta HTTP.
type IngestResult struct {
	WalletInput    string `json:"walletInput"`
	ResolvedWallet string `json:"resolvedWallet"`
	FeaturesCount  int    `json:"featuresCount"`
	Positions      int    `json:"positions"`
}

// featureGroupCount es el número de grupos top-level del FeatureProfile
// (stake, categories, tags, risk, horizon, liquidityPreference).
const featureGroupCount = 6

// Ingest descarga el historial de la wallet, resuelve la proxy wallet,
// persiste posiciones y valor, y recalcula el FeatureProfile completo.
// wallet debe llegar ya normalizada.
func (s *Service) Ingest(ctx context.Context, wallet string) (IngestResult, error) {
	var positions []domain.Position
	var activity []domain.ActivityRecord

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		p, err := s.wallet.FetchPositions(gctx, wallet)
		positions = p
		return err
	})
	g.Go(func() error {
		a, err := s.wallet.FetchActivity(gctx, wallet, s.activityLimit)
		activity = a
		return err
	})
	if err := g.Wait(); err != nil {
		return IngestResult{}, fmt.Errorf("application.Ingest: %w", err)
	}

	// Polymarket opera vía proxy wallets: si la wallet directa no tiene
	// posiciones pero la actividad expone una proxy, los datos están ahí.
	proxy := proxyWalletFrom(activity)
	if len(positions) == 0 && proxy != "" {
		p, err := s.wallet.FetchPositions(ctx, proxy)
		if err != nil {
			return IngestResult{}, fmt.Errorf("application.Ingest: proxy positions: %w", err)
		}
		positions = p
	}

	resolved := wallet
	if proxy != "" && len(positions) > 0 {
		resolved = proxy
	}

	if err := s.storage.UpsertUser(ctx, domain.User{
		WalletInput: wallet,
		ProxyWallet: proxy,
	}); err != nil {
		return IngestResult{}, fmt.Errorf("application.Ingest: %w", err)
	}

	if err := s.storage.ReplacePositions(ctx, resolved, positions); err != nil {
		return IngestResult{}, fmt.Errorf("application.Ingest: %w", err)
	}

	// El valor de cartera es señal secundaria: si falla, la ingesta sigue.
	if total, ok, err := s.wallet.FetchValue(ctx, resolved); err != nil {
		slog.Warn("portfolio value fetch failed", "wallet", wallet, "err", err)
	} else if ok {
		if err := s.storage.SetUserValue(ctx, wallet, total); err != nil {
			return IngestResult{}, fmt.Errorf("application.Ingest: %w", err)
		}
	}

	profile := domain.BuildProfile(activity, positions, s.now())
	if err := s.storage.SaveProfile(ctx, resolved, profile); err != nil {
		return IngestResult{}, fmt.Errorf("application.Ingest: %w", err)
	}

	slog.Info("wallet ingested",
		"wallet", wallet,
		"resolved", resolved,
		"positions", len(positions),
		"activity", len(activity),
	)

	return IngestResult{
		WalletInput:    wallet,
		ResolvedWallet: resolved,
		FeaturesCount:  featureGroupCount,
		Positions:      len(positions),
	}, nil
}

// ProfileResult es la respuesta de GET /profile.
type ProfileResult struct {
	WalletInput    string                 `json:"walletInput"`
	ResolvedWallet string                 `json:"resolvedWallet"`
	Features       *domain.FeatureProfile `json:"features"`
}

// Profile devuelve el perfil guardado de la wallet.
// Features es nil si la wallet nunca se ingirió.
func (s *Service) Profile(ctx context.Context, wallet string) (ProfileResult, error) {
	resolved, err := s.resolveWallet(ctx, wallet)
	if err != nil {
		return ProfileResult{}, fmt.Errorf("application.Profile: %w", err)
	}

	profile, err := s.storage.GetProfile(ctx, resolved)
	if err != nil {
		return ProfileResult{}, fmt.Errorf("application.Profile: %w", err)
	}

	return ProfileResult{
		WalletInput:    wallet,
		ResolvedWallet: resolved,
		Features:       profile,
	}, nil
}

// RefreshMarkets reindexa el catálogo de mercados abiertos desde Gamma.
func (s *Service) RefreshMarkets(ctx context.Context) (int, error) {
	markets, err := s.catalog.FetchMarkets(ctx)
	if err != nil {
		return 0, fmt.Errorf("application.RefreshMarkets: %w", err)
	}

	n, err := s.storage.UpsertMarkets(ctx, markets)
	if err != nil {
		return 0, fmt.Errorf("application.RefreshMarkets: %w", err)
	}

	slog.Info("market catalog refreshed", "indexed", n)
	return n, nil
}

// Recommend puntúa el catálogo indexado contra el perfil de la wallet.
// Devuelve ErrNoProfile si la wallet nunca pasó por Ingest.
func (s *Service) Recommend(ctx context.Context, wallet string) ([]domain.Recommendation, error) {
	resolved, err := s.resolveWallet(ctx, wallet)
	if err != nil {
		return nil, fmt.Errorf("application.Recommend: %w", err)
	}

	profile, err := s.storage.GetProfile(ctx, resolved)
	if err != nil {
		return nil, fmt.Errorf("application.Recommend: %w", err)
	}
	if profile == nil {
		return nil, ErrNoProfile
	}

	markets, err := s.storage.GetMarkets(ctx)
	if err != nil {
		return nil, fmt.Errorf("application.Recommend: %w", err)
	}

	positions, err := s.storage.GetPositions(ctx, resolved)
	if err != nil {
		return nil, fmt.Errorf("application.Recommend: %w", err)
	}
	held := make(map[string]bool, len(positions))
	for _, p := range positions {
		held[p.ConditionID] = true
	}

	return domain.ScoreMarkets(*profile, markets, held, s.now(), s.weights), nil
}

// resolveWallet devuelve la wallet efectiva para lookups: la proxy
// guardada si existe, la de entrada si no.
func (s *Service) resolveWallet(ctx context.Context, wallet string) (string, error) {
	user, err := s.storage.GetUser(ctx, wallet)
	if err != nil {
		return "", err
	}
	if user != nil && user.ProxyWallet != "" {
		return user.ProxyWallet, nil
	}
	return wallet, nil
}

// proxyWalletFrom devuelve la primera proxy wallet que aparezca en la
// actividad, o "" si ninguna entrada la expone.
func proxyWalletFrom(activity []domain.ActivityRecord) string {
	for _, a := range activity {
		if a.ProxyWallet != "" {
			return a.ProxyWallet
		}
	}
	return ""
}
