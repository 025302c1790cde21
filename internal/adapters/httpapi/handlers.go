package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/alejandrodnm/polyrec/internal/application"
	"github.com/alejandrodnm/polyrec/internal/domain"
)

// Recommender es la fachada del servicio que consumen los handlers.
// Definida aquí para poder stubearla en tests sin levantar storage real.
type Recommender interface {
	Ingest(ctx context.Context, wallet string) (application.IngestResult, error)
	Profile(ctx context.Context, wallet string) (application.ProfileResult, error)
	RefreshMarkets(ctx context.Context) (int, error)
	Recommend(ctx context.Context, wallet string) ([]domain.Recommendation, error)
}

type handlers struct {
	svc       Recommender
	normalize func(string) (string, error)
}

func newHandlers(svc Recommender, normalize func(string) (string, error)) *handlers {
	return &handlers{svc: svc, normalize: normalize}
}

// health responde el liveness check.
func (h *handlers) health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

// ingest descarga y procesa el historial de una wallet.
func (h *handlers) ingest(w http.ResponseWriter, r *http.Request) {
	wallet, ok := h.walletParam(w, r)
	if !ok {
		return
	}

	res, err := h.svc.Ingest(r.Context(), wallet)
	if err != nil {
		slog.Error("ingest failed", "wallet", wallet, "err", err)
		writeError(w, http.StatusInternalServerError, "ingest failed")
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// profile devuelve el FeatureProfile guardado de la wallet.
func (h *handlers) profile(w http.ResponseWriter, r *http.Request) {
	wallet, ok := h.walletParam(w, r)
	if !ok {
		return
	}

	res, err := h.svc.Profile(r.Context(), wallet)
	if err != nil {
		slog.Error("profile lookup failed", "wallet", wallet, "err", err)
		writeError(w, http.StatusInternalServerError, "profile failed")
		return
	}

	// sin perfil devolvemos features: {} — el frontend lo espera así
	resp := map[string]any{
		"walletInput":    res.WalletInput,
		"resolvedWallet": res.ResolvedWallet,
	}
	if res.Features != nil {
		resp["features"] = res.Features
	} else {
		resp["features"] = map[string]any{}
	}
	writeJSON(w, http.StatusOK, resp)
}

// refreshMarkets reindexa el catálogo de mercados.
func (h *handlers) refreshMarkets(w http.ResponseWriter, r *http.Request) {
	n, err := h.svc.RefreshMarkets(r.Context())
	if err != nil {
		slog.Error("market index refresh failed", "err", err)
		writeError(w, http.StatusInternalServerError, "index failed")
		return
	}
	writeJSON(w, http.StatusOK, map[string]int{"indexed": n})
}

// recommend puntúa el catálogo contra el perfil de la wallet.
func (h *handlers) recommend(w http.ResponseWriter, r *http.Request) {
	wallet, ok := h.walletParam(w, r)
	if !ok {
		return
	}

	recs, err := h.svc.Recommend(r.Context(), wallet)
	if err != nil {
		if errors.Is(err, application.ErrNoProfile) {
			writeError(w, http.StatusBadRequest,
				fmt.Sprintf("No profile found. Call /ingest/%s first.", wallet))
			return
		}
		slog.Error("recommend failed", "wallet", wallet, "err", err)
		writeError(w, http.StatusInternalServerError, "recommend failed")
		return
	}

	// lista vacía serializa como [] no como null
	if recs == nil {
		recs = []domain.Recommendation{}
	}
	writeJSON(w, http.StatusOK, recs)
}

// notFound responde rutas desconocidas con JSON.
func (h *handlers) notFound(w http.ResponseWriter, _ *http.Request) {
	writeError(w, http.StatusNotFound, "not found")
}

// walletParam extrae y normaliza el path param {wallet}.
// Escribe el 400 y devuelve ok=false si la dirección es inválida.
func (h *handlers) walletParam(w http.ResponseWriter, r *http.Request) (string, bool) {
	raw := mux.Vars(r)["wallet"]
	wallet, err := h.normalize(raw)
	if err != nil {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("invalid wallet %q", raw))
		return "", false
	}
	return wallet, true
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		slog.Warn("response encode failed", "err", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
