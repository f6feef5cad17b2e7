package api

import (
	"datacensus-service/service"
	"datacensus-service/service/config"
	"datacensus-service/service/dataset"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupRouter(t *testing.T) http.Handler {
	cfg := config.DefaultAppConfig()
	cfg.Database.SQLitePath = filepath.Join(t.TempDir(), "routes.db")
	cfg.SeedDemoData = true
	require.NoError(t, service.Init(cfg))
	t.Cleanup(service.Shutdown)

	r := chi.NewRouter()
	InitRoute(r)
	return r
}

func TestRoutes_CompletenessOnDemoDataset(t *testing.T) {
	router := setupRouter(t)

	for _, path := range []string{"/completitud", "/completeness"} {
		req := httptest.NewRequest(http.MethodGet, path+"?dataset_id="+dataset.DemoDatasetID, nil)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		var body map[string]interface{}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
		assert.Equal(t, dataset.DemoDatasetID, body["dataset_id"])
		assert.Equal(t, "completitud", body["metric"])
		assert.Equal(t, float64(10), body["max_score"])
	}
}

func TestRoutes_UnknownDataset(t *testing.T) {
	router := setupRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/completitud?dataset_id=no-existe", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestRoutes_HealthAndConfig(t *testing.T) {
	router := setupRouter(t)

	for _, path := range []string{"/health", "/ready", "/config", "/datasets"} {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		assert.Equal(t, http.StatusOK, w.Code, path)
	}
}
