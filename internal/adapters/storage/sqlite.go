package storage

// sqlite.go — persistencia de usuarios, posiciones, índice de mercados y
// perfiles de features.
//
// Estrategia:
//   - Todas las escrituras son upserts: una ingesta reemplaza el estado
//     completo de la wallet (posiciones y perfil), nunca updates parciales.
//   - `profiles.features` guarda el FeatureProfile como JSON: sus nombres
//     de campo son contrato estable con el frontend y se preservan tal cual.
//   - Prune automático al arrancar: mercados no reindexados en 7d,
//     posiciones no refrescadas en 30d.
//   - Fechas como TEXT RFC3339 UTC, NULL para fechas ausentes.

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/alejandrodnm/polyrec/internal/domain"
	_ "modernc.org/sqlite"
)

const schema = `
CREATE TABLE IF NOT EXISTS users (
    wallet_input    TEXT PRIMARY KEY,
    proxy_wallet    TEXT,
    total_value_usd REAL,
    updated_at      TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS positions (
    id            TEXT PRIMARY KEY,
    wallet        TEXT NOT NULL,
    condition_id  TEXT NOT NULL,
    outcome_index INTEGER NOT NULL DEFAULT 0,
    size          REAL,
    avg_price     REAL,
    initial_value REAL,
    current_value REAL,
    cash_pnl      REAL,
    percent_pnl   REAL,
    end_date      TEXT,
    slug          TEXT,
    title         TEXT,
    category      TEXT,
    tags          TEXT NOT NULL DEFAULT '[]',
    updated_at    TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS markets (
    condition_id         TEXT PRIMARY KEY,
    slug                 TEXT,
    question             TEXT,
    category             TEXT,
    tags                 TEXT NOT NULL DEFAULT '[]',
    end_date             TEXT,
    best_bid             REAL,
    best_ask             REAL,
    volume_24h           REAL,
    one_day_price_change REAL,
    liquidity            REAL,
    enable_order_book    INTEGER,
    indexed_at           TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS profiles (
    wallet      TEXT PRIMARY KEY,
    features    TEXT NOT NULL,
    computed_at TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_positions_wallet ON positions(wallet);
CREATE INDEX IF NOT EXISTS idx_markets_indexed  ON markets(indexed_at DESC);
`

const (
	retentionMarkets   = 7 * 24 * time.Hour  // mercados sin reindexar: 7 días
	retentionPositions = 30 * 24 * time.Hour // posiciones sin refrescar: 30 días
)

// SQLiteStorage implementa ports.Storage usando SQLite (pure Go, sin CGo).
type SQLiteStorage struct {
	db *sql.DB
}

// NewSQLiteStorage abre (o crea) la base de datos en la ruta dada.
// Aplica el schema y limpia datos antiguos.
func NewSQLiteStorage(path string) (*SQLiteStorage, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("storage.NewSQLiteStorage: open %q: %w", path, err)
	}
	db.SetMaxOpenConns(1) // SQLite es single-writer
	db.SetMaxIdleConns(1)

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("storage.NewSQLiteStorage: apply schema: %w", err)
	}

	s := &SQLiteStorage{db: db}
	s.pruneOld(context.Background())
	return s, nil
}

// UpsertUser crea o actualiza la identidad de una wallet.
// No toca total_value_usd: ese campo lo escribe SetUserValue.
func (s *SQLiteStorage) UpsertUser(ctx context.Context, user domain.User) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO users (wallet_input, proxy_wallet, total_value_usd, updated_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(wallet_input) DO UPDATE SET
			proxy_wallet = excluded.proxy_wallet,
			updated_at   = excluded.updated_at
	`, user.WalletInput, nullString(user.ProxyWallet), user.TotalValueUSD, nowRFC3339())
	if err != nil {
		return fmt.Errorf("storage.UpsertUser: %w", err)
	}
	return nil
}

// GetUser devuelve el usuario por wallet de entrada, o nil si no existe.
func (s *SQLiteStorage) GetUser(ctx context.Context, walletInput string) (*domain.User, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT wallet_input, proxy_wallet, total_value_usd
		FROM users WHERE wallet_input = ?
	`, walletInput)

	var u domain.User
	var proxy sql.NullString
	var total sql.NullFloat64
	if err := row.Scan(&u.WalletInput, &proxy, &total); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("storage.GetUser: %w", err)
	}
	u.ProxyWallet = proxy.String
	if total.Valid {
		u.TotalValueUSD = &total.Float64
	}
	return &u, nil
}

// SetUserValue actualiza el valor total en USD de la wallet.
func (s *SQLiteStorage) SetUserValue(ctx context.Context, walletInput string, totalUSD float64) error {
	_, err := s.db.ExecContext(ctx, `
		UPDATE users SET total_value_usd = ?, updated_at = ? WHERE wallet_input = ?
	`, totalUSD, nowRFC3339(), walletInput)
	if err != nil {
		return fmt.Errorf("storage.SetUserValue: %w", err)
	}
	return nil
}

// ReplacePositions sobreescribe las posiciones guardadas de la wallet.
// Borrado + insert en una transacción: el estado guardado siempre refleja
// la última ingesta completa.
func (s *SQLiteStorage) ReplacePositions(ctx context.Context, wallet string, positions []domain.Position) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("storage.ReplacePositions: begin tx: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM positions WHERE wallet = ?`, wallet); err != nil {
		return fmt.Errorf("storage.ReplacePositions: delete: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO positions
			(id, wallet, condition_id, outcome_index, size, avg_price,
			 initial_value, current_value, cash_pnl, percent_pnl,
			 end_date, slug, title, category, tags, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			size          = excluded.size,
			avg_price     = excluded.avg_price,
			initial_value = excluded.initial_value,
			current_value = excluded.current_value,
			cash_pnl      = excluded.cash_pnl,
			percent_pnl   = excluded.percent_pnl,
			end_date      = excluded.end_date,
			slug          = excluded.slug,
			title         = excluded.title,
			category      = excluded.category,
			tags          = excluded.tags,
			updated_at    = excluded.updated_at
	`)
	if err != nil {
		return fmt.Errorf("storage.ReplacePositions: prepare: %w", err)
	}
	defer stmt.Close()

	now := nowRFC3339()
	for _, p := range positions {
		id := fmt.Sprintf("%s-%s-%d", wallet, p.ConditionID, p.OutcomeIndex)
		if _, err := stmt.ExecContext(ctx,
			id, wallet, p.ConditionID, p.OutcomeIndex,
			p.Size, p.AvgPrice, p.InitialValue, p.CurrentValue,
			p.CashPnl, p.PercentPnl,
			timeOrNull(p.EndDate), p.Slug, p.Title, p.Category,
			marshalTags(p.Tags), now,
		); err != nil {
			return fmt.Errorf("storage.ReplacePositions: insert %s: %w", id, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("storage.ReplacePositions: commit: %w", err)
	}
	return nil
}

// GetPositions devuelve las posiciones guardadas de la wallet.
func (s *SQLiteStorage) GetPositions(ctx context.Context, wallet string) ([]domain.Position, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT condition_id, outcome_index, size, avg_price, initial_value,
		       current_value, cash_pnl, percent_pnl, end_date, slug, title,
		       category, tags
		FROM positions WHERE wallet = ?
	`, wallet)
	if err != nil {
		return nil, fmt.Errorf("storage.GetPositions: query: %w", err)
	}
	defer rows.Close()

	var positions []domain.Position
	for rows.Next() {
		var p domain.Position
		var size, avgPrice, initVal, curVal, cashPnl, pctPnl sql.NullFloat64
		var endDate, slug, title, category sql.NullString
		var tags string

		if err := rows.Scan(
			&p.ConditionID, &p.OutcomeIndex,
			&size, &avgPrice, &initVal, &curVal, &cashPnl, &pctPnl,
			&endDate, &slug, &title, &category, &tags,
		); err != nil {
			return nil, fmt.Errorf("storage.GetPositions: scan row: %w", err)
		}

		p.Size = nullableFloat(size)
		p.AvgPrice = nullableFloat(avgPrice)
		p.InitialValue = nullableFloat(initVal)
		p.CurrentValue = nullableFloat(curVal)
		p.CashPnl = nullableFloat(cashPnl)
		p.PercentPnl = nullableFloat(pctPnl)
		p.EndDate = parseStoredTime(endDate)
		p.Slug = slug.String
		p.Title = title.String
		p.Category = category.String
		p.Tags = unmarshalTags(tags)

		positions = append(positions, p)
	}

	return positions, rows.Err()
}

// UpsertMarkets actualiza el índice de mercados y devuelve cuántos escribió.
func (s *SQLiteStorage) UpsertMarkets(ctx context.Context, markets []domain.Market) (int, error) {
	if len(markets) == 0 {
		return 0, nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("storage.UpsertMarkets: begin tx: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO markets
			(condition_id, slug, question, category, tags, end_date,
			 best_bid, best_ask, volume_24h, one_day_price_change,
			 liquidity, enable_order_book, indexed_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(condition_id) DO UPDATE SET
			slug                 = excluded.slug,
			question             = excluded.question,
			category             = excluded.category,
			tags                 = excluded.tags,
			end_date             = excluded.end_date,
			best_bid             = excluded.best_bid,
			best_ask             = excluded.best_ask,
			volume_24h           = excluded.volume_24h,
			one_day_price_change = excluded.one_day_price_change,
			liquidity            = excluded.liquidity,
			enable_order_book    = excluded.enable_order_book,
			indexed_at           = excluded.indexed_at
	`)
	if err != nil {
		return 0, fmt.Errorf("storage.UpsertMarkets: prepare: %w", err)
	}
	defer stmt.Close()

	now := nowRFC3339()
	written := 0
	for _, m := range markets {
		if _, err := stmt.ExecContext(ctx,
			m.ConditionID, m.Slug, m.Question, m.Category,
			marshalTags(m.Tags), timeOrNull(m.EndDate),
			m.BestBid, m.BestAsk, m.Volume24h, m.OneDayPriceChange,
			m.Liquidity, boolOrNull(m.EnableOrderBook), now,
		); err != nil {
			return written, fmt.Errorf("storage.UpsertMarkets: upsert %s: %w", m.ConditionID, err)
		}
		written++
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("storage.UpsertMarkets: commit: %w", err)
	}
	return written, nil
}

// GetMarkets devuelve el catálogo completo, más volumen primero.
func (s *SQLiteStorage) GetMarkets(ctx context.Context) ([]domain.Market, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT condition_id, slug, question, category, tags, end_date,
		       best_bid, best_ask, volume_24h, one_day_price_change,
		       liquidity, enable_order_book
		FROM markets
		ORDER BY volume_24h DESC
	`)
	if err != nil {
		return nil, fmt.Errorf("storage.GetMarkets: query: %w", err)
	}
	defer rows.Close()

	var markets []domain.Market
	for rows.Next() {
		var m domain.Market
		var slug, question, category, endDate sql.NullString
		var tags string
		var bid, ask, vol, change, liq sql.NullFloat64
		var eob sql.NullInt64

		if err := rows.Scan(
			&m.ConditionID, &slug, &question, &category, &tags, &endDate,
			&bid, &ask, &vol, &change, &liq, &eob,
		); err != nil {
			return nil, fmt.Errorf("storage.GetMarkets: scan row: %w", err)
		}

		m.Slug = slug.String
		m.Question = question.String
		m.Category = category.String
		m.Tags = unmarshalTags(tags)
		m.EndDate = parseStoredTime(endDate)
		m.BestBid = nullableFloat(bid)
		m.BestAsk = nullableFloat(ask)
		m.Volume24h = nullableFloat(vol)
		m.OneDayPriceChange = nullableFloat(change)
		m.Liquidity = nullableFloat(liq)
		if eob.Valid {
			b := eob.Int64 == 1
			m.EnableOrderBook = &b
		}

		markets = append(markets, m)
	}

	return markets, rows.Err()
}

// SaveProfile guarda el FeatureProfile serializado keyed por wallet
// resuelta. Reemplazo completo: cada ingesta recalcula el perfil entero.
func (s *SQLiteStorage) SaveProfile(ctx context.Context, wallet string, profile domain.FeatureProfile) error {
	features, err := json.Marshal(profile)
	if err != nil {
		return fmt.Errorf("storage.SaveProfile: marshal: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO profiles (wallet, features, computed_at)
		VALUES (?, ?, ?)
		ON CONFLICT(wallet) DO UPDATE SET
			features    = excluded.features,
			computed_at = excluded.computed_at
	`, wallet, string(features), nowRFC3339())
	if err != nil {
		return fmt.Errorf("storage.SaveProfile: %w", err)
	}
	return nil
}

// GetProfile devuelve el perfil guardado, o nil si nunca se ingirió.
func (s *SQLiteStorage) GetProfile(ctx context.Context, wallet string) (*domain.FeatureProfile, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT features FROM profiles WHERE wallet = ?`, wallet)

	var features string
	if err := row.Scan(&features); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("storage.GetProfile: %w", err)
	}

	var p domain.FeatureProfile
	if err := json.Unmarshal([]byte(features), &p); err != nil {
		return nil, fmt.Errorf("storage.GetProfile: unmarshal: %w", err)
	}
	return &p, nil
}

// Close cierra la conexión a la base de datos.
func (s *SQLiteStorage) Close() error {
	return s.db.Close()
}

// --- helpers internos ---

// pruneOld elimina datos antiguos para mantener la DB ligera.
func (s *SQLiteStorage) pruneOld(ctx context.Context) {
	cutoffMarkets := time.Now().UTC().Add(-retentionMarkets).Format(time.RFC3339)
	cutoffPositions := time.Now().UTC().Add(-retentionPositions).Format(time.RFC3339)
	s.db.ExecContext(ctx, `DELETE FROM markets WHERE indexed_at < ?`, cutoffMarkets)
	s.db.ExecContext(ctx, `DELETE FROM positions WHERE updated_at < ?`, cutoffPositions)
}

func nowRFC3339() string {
	return time.Now().UTC().Format(time.RFC3339)
}

// timeOrNull serializa una fecha como RFC3339 UTC, NULL si es zero.
func timeOrNull(t time.Time) any {
	if t.IsZero() {
		return nil
	}
	return t.UTC().Format(time.RFC3339)
}

// parseStoredTime deserializa una fecha guardada, zero si NULL o inválida.
func parseStoredTime(s sql.NullString) time.Time {
	if !s.Valid || s.String == "" {
		return time.Time{}
	}
	t, err := time.Parse(time.RFC3339, s.String)
	if err != nil {
		return time.Time{}
	}
	return t.UTC()
}

func nullableFloat(v sql.NullFloat64) *float64 {
	if !v.Valid {
		return nil
	}
	f := v.Float64
	return &f
}

func nullString(s string) any {
	if s == "" {
		return nil
	}
	return s
}

func boolOrNull(b *bool) any {
	if b == nil {
		return nil
	}
	if *b {
		return 1
	}
	return 0
}

func marshalTags(tags []string) string {
	if len(tags) == 0 {
		return "[]"
	}
	b, err := json.Marshal(tags)
	if err != nil {
		return "[]"
	}
	return string(b)
}

func unmarshalTags(s string) []string {
	if s == "" || s == "[]" {
		return nil
	}
	var tags []string
	if err := json.Unmarshal([]byte(s), &tags); err != nil {
		return nil
	}
	return tags
}
