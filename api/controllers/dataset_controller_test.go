package controllers

import (
	"bytes"
	"datacensus-service/service/dataset"
	"datacensus-service/service/models"
	"datacensus-service/testutil"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newDatasetRouter(t *testing.T) (*chi.Mux, *testutil.TestDB) {
	tdb := testutil.NewTestDB()
	t.Cleanup(tdb.Close)

	controller := NewDatasetController(dataset.NewService(tdb.DB))
	r := chi.NewRouter()
	r.Route("/datasets", func(r chi.Router) {
		r.Get("/", controller.ListDatasets)
		r.Post("/", controller.CreateDataset)
		r.Post("/import", controller.ImportCSV)
		r.Get("/{id}", controller.GetDataset)
		r.Put("/{id}/metadata", controller.UpdateMetadata)
		r.Delete("/{id}", controller.DeleteDataset)
	})
	return r, tdb
}

func multipartRequest(t *testing.T, url string, fields map[string]string, content string) *http.Request {
	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	for k, v := range fields {
		require.NoError(t, writer.WriteField(k, v))
	}
	if content != "" {
		part, err := writer.CreateFormFile("file", "data.csv")
		require.NoError(t, err)
		_, err = part.Write([]byte(content))
		require.NoError(t, err)
	}
	require.NoError(t, writer.Close())

	req := httptest.NewRequest(http.MethodPost, url, &body)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	return req
}

func TestDatasetController_CreateAndGet(t *testing.T) {
	router, _ := newDatasetRouter(t)
	helper := testutil.NewHTTPTestHelper()

	req, err := helper.CreateJSONRequest(http.MethodPost, "/datasets", map[string]interface{}{
		"id":   "ds-1",
		"name": "personas",
		"columns": []map[string]string{
			{"name": "edad", "kind": "numeric"},
			{"name": "ciudad", "kind": "text"},
		},
		"rows": [][]interface{}{
			{30, "NYC"},
			{nil, "LA"},
		},
		"metadata": map[string]interface{}{"total_columnas": 2},
	})
	require.NoError(t, err)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/datasets/ds-1", nil))
	require.Equal(t, http.StatusOK, w.Code)

	var response struct {
		Data models.Dataset `json:"data"`
	}
	helper.DecodeJSON(t, w, &response)
	assert.Equal(t, "personas", response.Data.Name)
	assert.Equal(t, 2, response.Data.RowCount)

	// 重复ID
	req, err = helper.CreateJSONRequest(http.MethodPost, "/datasets", map[string]interface{}{
		"id":      "ds-1",
		"name":    "otra",
		"columns": []map[string]string{{"name": "a"}},
	})
	require.NoError(t, err)
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestDatasetController_CreateInvalid(t *testing.T) {
	router, _ := newDatasetRouter(t)
	helper := testutil.NewHTTPTestHelper()

	testCases := []struct {
		name string
		body interface{}
	}{
		{name: "缺少名称", body: map[string]interface{}{"columns": []map[string]string{{"name": "a"}}}},
		{name: "缺少列", body: map[string]interface{}{"name": "x"}},
		{name: "行长度不一致", body: map[string]interface{}{
			"name":    "x",
			"columns": []map[string]string{{"name": "a"}, {"name": "b"}},
			"rows":    [][]interface{}{{1}},
		}},
		{name: "元数据无效", body: map[string]interface{}{
			"name":     "x",
			"columns":  []map[string]string{{"name": "a"}},
			"metadata": map[string]interface{}{"total_columnas": "doce"},
		}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			req, err := helper.CreateJSONRequest(http.MethodPost, "/datasets", tc.body)
			require.NoError(t, err)
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)
			assert.Equal(t, http.StatusBadRequest, w.Code, w.Body.String())
		})
	}

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/datasets", bytes.NewBufferString("{not json"))
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestDatasetController_ImportCSV(t *testing.T) {
	router, _ := newDatasetRouter(t)
	helper := testutil.NewHTTPTestHelper()

	req := multipartRequest(t, "/datasets/import", map[string]string{
		"id":               "csv-1",
		"name":             "ventas",
		"expected_columns": "3",
		"delimiter":        ";",
	}, "producto;precio\nmanzana;1.5\npera;NA\n")

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var response struct {
		Data models.Dataset `json:"data"`
	}
	helper.DecodeJSON(t, w, &response)
	assert.Equal(t, "csv-1", response.Data.ID)
	assert.Equal(t, "csv", response.Data.SourceFormat)
	assert.Equal(t, 2, response.Data.RowCount)
	require.Len(t, response.Data.Columns, 2)
	assert.Equal(t, "numeric", response.Data.Columns[1].Kind)
	assert.EqualValues(t, 3, response.Data.Metadata["total_columnas"])
	assert.Len(t, response.Data.Checksum, 64)
}

func TestDatasetController_ImportCSVErrors(t *testing.T) {
	router, _ := newDatasetRouter(t)

	testCases := []struct {
		name    string
		fields  map[string]string
		content string
	}{
		{name: "缺少文件", fields: map[string]string{"name": "x"}},
		{name: "列数不是整数", fields: map[string]string{"name": "x", "expected_columns": "tres"}, content: "a\n1\n"},
		{name: "分隔符过长", fields: map[string]string{"name": "x", "delimiter": ";;"}, content: "a\n1\n"},
		{name: "编码不支持", fields: map[string]string{"name": "x", "encoding": "ebcdic"}, content: "a\n1\n"},
		{name: "缺少名称", fields: map[string]string{}, content: "a\n1\n"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			router.ServeHTTP(w, multipartRequest(t, "/datasets/import", tc.fields, tc.content))
			assert.Equal(t, http.StatusBadRequest, w.Code, w.Body.String())
		})
	}
}

func TestDatasetController_ListUpdateDelete(t *testing.T) {
	router, tdb := newDatasetRouter(t)
	helper := testutil.NewHTTPTestHelper()
	factory := testutil.NewTestDataFactory(tdb.DB)
	columns := []models.DatasetColumn{{Name: "a", Kind: "numeric"}}
	factory.CreateDataset(columns, [][]interface{}{{1.0}}, testutil.WithDatasetID("d1"))
	factory.CreateDataset(columns, [][]interface{}{{2.0}}, testutil.WithDatasetID("d2"))

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/datasets?page=1&size=1", nil))
	require.Equal(t, http.StatusOK, w.Code)
	var page PaginatedResponse
	helper.DecodeJSON(t, w, &page)
	assert.Equal(t, int64(2), page.Total)
	assert.Equal(t, 1, page.Size)

	req, err := helper.CreateJSONRequest(http.MethodPut, "/datasets/d1/metadata", UpdateMetadataRequest{
		Metadata: map[string]interface{}{"total_columnas": 3},
	})
	require.NoError(t, err)
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	req, err = helper.CreateJSONRequest(http.MethodPut, "/datasets/missing/metadata", UpdateMetadataRequest{})
	require.NoError(t, err)
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodDelete, "/datasets/d2", nil))
	assert.Equal(t, http.StatusOK, w.Code)

	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodDelete, "/datasets/d2", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/datasets/d2", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)
}
