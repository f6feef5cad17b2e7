package controllers

import (
	"datacensus-service/service/config"
	"datacensus-service/testutil"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newConfigRouter(t *testing.T) (*chi.Mux, *config.ConfigService) {
	tdb := testutil.NewTestDB()
	t.Cleanup(tdb.Close)

	service := config.NewConfigService(tdb.DB, "default")
	controller := NewConfigController(service)

	r := chi.NewRouter()
	r.Get("/config", controller.GetAllConfigs)
	r.Get("/config/{key}", controller.GetConfig)
	r.Put("/config/{key}", controller.UpdateConfig)
	return r, service
}

func TestConfigController_GetAll(t *testing.T) {
	router, _ := newConfigRouter(t)
	helper := testutil.NewHTTPTestHelper()

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/config", nil))
	require.Equal(t, http.StatusOK, w.Code)

	var response struct {
		Data []config.ConfigItem `json:"data"`
	}
	helper.DecodeJSON(t, w, &response)
	require.NotEmpty(t, response.Data)
	assert.Equal(t, config.ConfigKeySparseThreshold, response.Data[0].Key)
	assert.Equal(t, "0.5", response.Data[0].Value)
}

func TestConfigController_Update(t *testing.T) {
	router, service := newConfigRouter(t)
	helper := testutil.NewHTTPTestHelper()

	req, err := helper.CreateJSONRequest(http.MethodPut, "/config/"+config.ConfigKeySparseThreshold, UpdateConfigRequest{Value: "0.4"})
	require.NoError(t, err)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, 0.4, service.GetSparseThreshold())

	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/config/"+config.ConfigKeySparseThreshold, nil))
	require.Equal(t, http.StatusOK, w.Code)
	helper.AssertJSONResponse(t, w, http.StatusOK, map[string]interface{}{
		"status": 200,
		"msg":    "获取配置成功",
		"data": map[string]interface{}{
			"key":   config.ConfigKeySparseThreshold,
			"value": "0.4",
		},
	})
}

func TestConfigController_UpdateErrors(t *testing.T) {
	router, _ := newConfigRouter(t)
	helper := testutil.NewHTTPTestHelper()

	testCases := []struct {
		name   string
		key    string
		value  string
		status int
	}{
		{name: "未知配置键", key: "otra.cosa", value: "1", status: http.StatusNotFound},
		{name: "阈值越界", key: config.ConfigKeySparseThreshold, value: "1.2", status: http.StatusBadRequest},
		{name: "cron无效", key: config.ConfigKeyReportCron, value: "cada hora", status: http.StatusBadRequest},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			req, err := helper.CreateJSONRequest(http.MethodPut, "/config/"+tc.key, UpdateConfigRequest{Value: tc.value})
			require.NoError(t, err)
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)
			assert.Equal(t, tc.status, w.Code)
		})
	}

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/config/otra.cosa", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)
}
