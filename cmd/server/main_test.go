package main

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iho/goinvest/internal/adapter/repository/memory"
	"github.com/iho/goinvest/internal/domain"
	"github.com/iho/goinvest/internal/infrastructure/config"
)

const fixture = `{
  "investments": [{"id": "INV-1", "name": "Plan Oro", "client_id": "C1", "active_projection_id": "P1"}],
  "projections": [
    {"id": "P1", "product_type": "fixed", "capital": "10000", "term": 12, "nominal_rate": "0.12"},
    {"id": "P2", "product_type": "fixed", "capital": "15000", "term": 12, "nominal_rate": "0.12"}
  ],
  "schedules": [
    {"id": "S1", "projection_id": "P1", "active": true, "periods": [
      {"index": 1, "start_date": "2026-01-01T00:00:00Z", "end_date": "2026-02-01T00:00:00Z", "rate": "0.01", "capital": "10000"}
    ]},
    {"id": "S2", "projection_id": "P2"}
  ]
}`

func writeFixture(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "seed.json")
	require.NoError(t, os.WriteFile(path, []byte(fixture), 0o600))
	return path
}

func memoryConfig(t *testing.T) *config.Config {
	t.Helper()
	t.Setenv("STORAGE_DRIVER", config.StorageDriverMemory)
	cfg, err := config.Load()
	require.NoError(t, err)
	cfg.SeedFile = writeFixture(t)
	return cfg
}

func TestLoadSeedFile(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()

	require.NoError(t, loadSeedFile(ctx, store, writeFixture(t)))

	inv, err := memory.NewInvestmentRepository(store).GetByID(ctx, "INV-1")
	require.NoError(t, err)
	assert.Equal(t, "P1", inv.ActiveProjectionID)
	assert.Equal(t, domain.SystemActor, inv.CreatedBy)

	p, err := memory.NewProjectionRepository(store).GetByID(ctx, "P2")
	require.NoError(t, err)
	assert.Equal(t, "15000", p.Capital.String())

	sch, err := memory.NewScheduleRepository(store).GetByID(ctx, "S1", true)
	require.NoError(t, err)
	require.Len(t, sch.Periods, 1)
	assert.Equal(t, "0.01", sch.Periods[0].Rate.String())
}

func TestLoadSeedFileErrors(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	err := loadSeedFile(ctx, memory.NewStore(), filepath.Join(dir, "missing.json"))
	require.Error(t, err)

	bad := filepath.Join(dir, "bad.json")
	require.NoError(t, os.WriteFile(bad, []byte(`{"investments": [`), 0o600))
	require.Error(t, loadSeedFile(ctx, memory.NewStore(), bad))

	noID := filepath.Join(dir, "noid.json")
	require.NoError(t, os.WriteFile(noID, []byte(`{"schedules": [{"id": "S1"}]}`), 0o600))
	require.ErrorIs(t, loadSeedFile(ctx, memory.NewStore(), noID), domain.ErrMissingID)
}

func TestBuildAppMemoryServesAmendments(t *testing.T) {
	cfg := memoryConfig(t)

	app, err := buildApp(context.Background(), cfg, zerolog.Nop(), prometheus.NewRegistry())
	require.NoError(t, err)
	t.Cleanup(app.Close)

	srv := httptest.NewServer(app.handler)
	t.Cleanup(srv.Close)

	resp, err := http.Get(srv.URL + "/ready")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	body := `{"original_projection_id": "P1", "increment_period": 6, "increment_amount": "5000"}`
	resp, err = http.Post(srv.URL+"/api/v1/investments/INV-1/amendments", "application/json", strings.NewReader(body))
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var created struct {
		Name  string `json:"name"`
		State string `json:"state"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&created))
	assert.Equal(t, "Plan Oro - AD-01", created.Name)

	require.ErrorIs(t, app.relay.Start(canceledContext()), context.Canceled)

	resp, err = http.Get(srv.URL + "/metrics")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestBuildAppWithRedisAndRateLimit(t *testing.T) {
	mr := miniredis.RunT(t)
	cfg := memoryConfig(t)
	cfg.RedisEnabled = true
	cfg.RedisURL = "redis://" + mr.Addr()
	cfg.RateLimitRPS = 5

	app, err := buildApp(context.Background(), cfg, zerolog.Nop(), prometheus.NewRegistry())
	require.NoError(t, err)
	t.Cleanup(app.Close)

	require.NotNil(t, app.limiter)

	rec := httptest.NewRecorder()
	app.handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/ready", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "redis")
}

func TestBuildAppRejectsBadSeed(t *testing.T) {
	cfg := memoryConfig(t)
	cfg.SeedFile = filepath.Join(t.TempDir(), "missing.json")

	_, err := buildApp(context.Background(), cfg, zerolog.Nop(), prometheus.NewRegistry())
	require.Error(t, err)
}

func canceledContext() context.Context {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	return ctx
}
