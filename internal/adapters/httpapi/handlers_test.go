package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alejandrodnm/polyrec/internal/application"
	"github.com/alejandrodnm/polyrec/internal/domain"
)

// stubService implementa Recommender con respuestas fijas.
type stubService struct {
	ingestRes    application.IngestResult
	ingestErr    error
	profileRes   application.ProfileResult
	refreshN     int
	refreshErr   error
	recommendRes []domain.Recommendation
	recommendErr error
}

func (s *stubService) Ingest(_ context.Context, _ string) (application.IngestResult, error) {
	return s.ingestRes, s.ingestErr
}

func (s *stubService) Profile(_ context.Context, wallet string) (application.ProfileResult, error) {
	res := s.profileRes
	res.WalletInput = wallet
	return res, nil
}

func (s *stubService) RefreshMarkets(_ context.Context) (int, error) {
	return s.refreshN, s.refreshErr
}

func (s *stubService) Recommend(_ context.Context, _ string) ([]domain.Recommendation, error) {
	return s.recommendRes, s.recommendErr
}

func identityNormalize(s string) (string, error) { return s, nil }

func newTestServer(svc Recommender) *Server {
	return NewServer(Config{RequestTimeout: 5 * time.Second}, svc, identityNormalize)
}

func doRequest(t *testing.T, srv *Server, method, path string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, nil)
	rec := httptest.NewRecorder()
	srv.router.ServeHTTP(rec, req)
	return rec
}

func TestHealth(t *testing.T) {
	srv := newTestServer(&stubService{})
	rec := doRequest(t, srv, http.MethodGet, "/health")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"ok":true}`, rec.Body.String())
	assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))
}

func TestIngest_OK(t *testing.T) {
	srv := newTestServer(&stubService{
		ingestRes: application.IngestResult{
			WalletInput:    "0xW",
			ResolvedWallet: "0xProxy",
			FeaturesCount:  6,
			Positions:      3,
		},
	})
	rec := doRequest(t, srv, http.MethodPost, "/ingest/0xW")

	require.Equal(t, http.StatusOK, rec.Code)

	var body application.IngestResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "0xProxy", body.ResolvedWallet)
	assert.Equal(t, 3, body.Positions)
}

func TestIngest_ServiceError(t *testing.T) {
	srv := newTestServer(&stubService{ingestErr: errors.New("data-api down")})
	rec := doRequest(t, srv, http.MethodPost, "/ingest/0xW")

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestIngest_InvalidWallet(t *testing.T) {
	srv := NewServer(Config{}, &stubService{}, func(string) (string, error) {
		return "", errors.New("invalid address")
	})
	rec := doRequest(t, srv, http.MethodPost, "/ingest/nonsense")

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestProfile_NeverIngested(t *testing.T) {
	srv := newTestServer(&stubService{})
	rec := doRequest(t, srv, http.MethodGet, "/profile/0xW")

	require.Equal(t, http.StatusOK, rec.Code)

	var body map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	// sin perfil: features es {} no null
	assert.JSONEq(t, `{}`, string(body["features"]))
}

func TestRefreshMarkets_OK(t *testing.T) {
	srv := newTestServer(&stubService{refreshN: 42})
	rec := doRequest(t, srv, http.MethodPost, "/markets/index")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"indexed":42}`, rec.Body.String())
}

func TestRecommend_NoProfile400(t *testing.T) {
	srv := newTestServer(&stubService{recommendErr: application.ErrNoProfile})
	rec := doRequest(t, srv, http.MethodGet, "/recommend/0xW")

	require.Equal(t, http.StatusBadRequest, rec.Code)

	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "No profile found. Call /ingest/0xW first.", body["error"])
}

func TestRecommend_EmptyListSerializesAsArray(t *testing.T) {
	srv := newTestServer(&stubService{})
	rec := doRequest(t, srv, http.MethodGet, "/recommend/0xW")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `[]`, rec.Body.String())
}

func TestRecommend_ReturnsScoredMarkets(t *testing.T) {
	srv := newTestServer(&stubService{recommendRes: []domain.Recommendation{
		{ConditionID: "0xa", Score: 0.42, Reasons: []string{"High liquidity"}},
	}})
	rec := doRequest(t, srv, http.MethodGet, "/recommend/0xW")

	require.Equal(t, http.StatusOK, rec.Code)

	var recs []domain.Recommendation
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &recs))
	require.Len(t, recs, 1)
	assert.Equal(t, "0xa", recs[0].ConditionID)
	assert.InDelta(t, 0.42, recs[0].Score, 0.0001)
}

func TestNotFound(t *testing.T) {
	srv := newTestServer(&stubService{})
	rec := doRequest(t, srv, http.MethodGet, "/nope")

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestCORS_Preflight(t *testing.T) {
	srv := newTestServer(&stubService{})
	rec := doRequest(t, srv, http.MethodOptions, "/recommend/0xW")

	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
}
