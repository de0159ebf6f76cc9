package web

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JonMunkholm/catalog/internal/config"
	"github.com/JonMunkholm/catalog/internal/core"
	"github.com/JonMunkholm/catalog/internal/store/sqlstore"
)

const sampleCSV = "name,price_ngn,stock_level,category,voice_tags\n" +
	"Garri,1200,30,grains,\"garri,gari\"\n" +
	"Palm Oil,3500,5,oils,\n" +
	",100,1,,\n"

func testConfig(t *testing.T, env map[string]string) *config.Config {
	t.Helper()
	base := map[string]string{
		"STORE_DRIVER":       "sqlite",
		"RATE_LIMIT_ENABLED": "false",
	}
	for k, v := range env {
		base[k] = v
	}
	cfg, err := config.LoadFrom(func(k string) string { return base[k] })
	require.NoError(t, err)
	return cfg
}

type testEnv struct {
	server *Server
	store  *sqlstore.Store
}

func newTestEnv(t *testing.T, env map[string]string) *testEnv {
	t.Helper()
	db, err := sqlstore.Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	store := sqlstore.New(db)
	require.NoError(t, store.Migrate(context.Background()))

	cfg := testConfig(t, env)
	svc := core.NewService(store,
		core.WithAuditSink(store),
		core.WithImportLimiter(core.NewImportLimiter(cfg.Import.MaxConcurrent, cfg.Import.MaxWaitTime)),
	)
	return &testEnv{
		server: NewServer(svc, cfg, WithAuditReader(store)),
		store:  store,
	}
}

func (e *testEnv) do(t *testing.T, req *http.Request) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	e.server.Router().ServeHTTP(rec, req)
	return rec
}

func decodeBody[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

func importRequest(vendor, body, query string) *http.Request {
	req := httptest.NewRequest(http.MethodPost, "/api/vendors/"+vendor+"/products/import"+query, strings.NewReader(body))
	req.Header.Set("Content-Type", "text/csv")
	return req
}

// =============================================================================
// Import
// =============================================================================

func TestImportRawBody(t *testing.T) {
	env := newTestEnv(t, nil)

	rec := env.do(t, importRequest("v1", sampleCSV, ""))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	res := decodeBody[core.ImportResult](t, rec)
	assert.Equal(t, 2, res.SuccessCount)
	assert.Equal(t, 1, res.ErrorCount)
	assert.Len(t, res.CreatedIDs, 2)
	require.Len(t, res.Errors, 1)
	assert.Equal(t, 4, res.Errors[0].Row)
	assert.Equal(t, "name is required", res.Errors[0].Message)
}

func TestImportMultipart(t *testing.T) {
	env := newTestEnv(t, nil)

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile("file", "products.csv")
	require.NoError(t, err)
	_, err = fw.Write([]byte(sampleCSV))
	require.NoError(t, err)
	require.NoError(t, mw.WriteField("update_existing", "true"))
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/vendors/v1/products/import", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())

	rec := env.do(t, req)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, 2, decodeBody[core.ImportResult](t, rec).SuccessCount)
}

func TestImportUpdateExistingQueryParam(t *testing.T) {
	env := newTestEnv(t, nil)
	require.Equal(t, http.StatusOK, env.do(t, importRequest("v1", sampleCSV, "")).Code)

	skipped := decodeBody[core.ImportResult](t, env.do(t, importRequest("v1", sampleCSV, "")))
	assert.Equal(t, 0, skipped.SuccessCount)
	assert.Equal(t, 2, skipped.SkippedCount)

	updated := decodeBody[core.ImportResult](t, env.do(t, importRequest("v1", sampleCSV, "?update_existing=true")))
	assert.Equal(t, 2, updated.SuccessCount)

	products, err := env.store.ListByVendor(context.Background(), "v1")
	require.NoError(t, err)
	assert.Len(t, products, 2)
}

func TestImportEmptyBody(t *testing.T) {
	env := newTestEnv(t, nil)

	rec := env.do(t, importRequest("v1", "", ""))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "FILE004", decodeBody[ErrorResponse](t, rec).Code)
}

func TestImportTooLarge(t *testing.T) {
	env := newTestEnv(t, map[string]string{"IMPORT_MAX_FILE_SIZE": "64"})

	rec := env.do(t, importRequest("v1", sampleCSV+strings.Repeat("x", 100), ""))
	assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
	assert.Equal(t, "FILE001", decodeBody[ErrorResponse](t, rec).Code)
}

func TestImportHTMXRendersSummary(t *testing.T) {
	env := newTestEnv(t, nil)

	req := importRequest("v1", sampleCSV, "")
	req.Header.Set("HX-Request", "true")
	rec := env.do(t, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Type"), "text/html")
	assert.Contains(t, rec.Body.String(), "<strong>2</strong> imported")
	assert.Contains(t, rec.Body.String(), "name is required")
}

func TestPreviewDoesNotWrite(t *testing.T) {
	env := newTestEnv(t, nil)

	req := httptest.NewRequest(http.MethodPost, "/api/vendors/v1/products/import/preview", strings.NewReader(sampleCSV))
	rec := env.do(t, req)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	preview := decodeBody[core.ImportPreview](t, rec)
	assert.Equal(t, 2, preview.CreateCount)
	assert.Equal(t, 1, preview.ErrorCount)

	products, err := env.store.ListByVendor(context.Background(), "v1")
	require.NoError(t, err)
	assert.Empty(t, products)
}

// =============================================================================
// Export and template
// =============================================================================

func TestExportCSVAndJSON(t *testing.T) {
	env := newTestEnv(t, nil)
	require.Equal(t, http.StatusOK, env.do(t, importRequest("v1", sampleCSV, "")).Code)

	rec := env.do(t, httptest.NewRequest(http.MethodGet, "/api/vendors/v1/products/export", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Type"), "text/csv")
	assert.Contains(t, rec.Header().Get("Content-Disposition"), `filename="products-v1-`)
	assert.Equal(t, "2", rec.Header().Get("X-Row-Count"))
	assert.True(t, strings.HasPrefix(rec.Body.String(), strings.Join(core.Columns, ",")+"\n"))

	rec = env.do(t, httptest.NewRequest(http.MethodGet, "/api/vendors/v1/products/export?format=json", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	res := decodeBody[core.ExportResult](t, rec)
	assert.Equal(t, 2, res.RowCount)
	assert.Contains(t, res.CSV, "Garri,1200,30,grains,,\"garri,gari\",")
}

func TestTemplateDownload(t *testing.T) {
	env := newTestEnv(t, nil)

	rec := env.do(t, httptest.NewRequest(http.MethodGet, "/api/products/template", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, core.GenerateTemplate(), rec.Body.String())
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "product_import_template.csv")
}

// =============================================================================
// Batch mutations
// =============================================================================

func TestAdjustPrices(t *testing.T) {
	env := newTestEnv(t, nil)
	require.Equal(t, http.StatusOK, env.do(t, importRequest("v1", sampleCSV, "")).Code)

	req := httptest.NewRequest(http.MethodPost, "/api/vendors/v1/products/prices/adjust",
		strings.NewReader(`{"percent": 10, "category": "grains"}`))
	rec := env.do(t, req)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	summary := decodeBody[core.BatchSummary](t, rec)
	assert.True(t, summary.Success)
	assert.Equal(t, 1, summary.UpdatedCount)
	assert.Equal(t, "grains", summary.Category)

	p, err := env.store.FindByVendorAndName(context.Background(), "v1", "Garri")
	require.NoError(t, err)
	assert.Equal(t, "1320", p.Price.String())
}

func TestAdjustPricesRequiresPercent(t *testing.T) {
	env := newTestEnv(t, nil)

	longCategory := `{"percent": 5, "category": "` + strings.Repeat("x", 256) + `"}`
	for _, body := range []string{`{"category":"grains"}`, `not json`, longCategory} {
		req := httptest.NewRequest(http.MethodPost, "/api/vendors/v1/products/prices/adjust", strings.NewReader(body))
		rec := env.do(t, req)
		assert.Equal(t, http.StatusBadRequest, rec.Code, body)
		assert.Equal(t, "VAL005", decodeBody[ErrorResponse](t, rec).Code, body)
	}
}

func TestRestock(t *testing.T) {
	env := newTestEnv(t, nil)
	res := decodeBody[core.ImportResult](t, env.do(t, importRequest("v1", sampleCSV, "")))
	require.Len(t, res.CreatedIDs, 2)

	body := `{"items":[{"product_id":"` + res.CreatedIDs[0] + `","quantity":5},{"product_id":"missing","quantity":1}]}`
	rec := env.do(t, httptest.NewRequest(http.MethodPost, "/api/vendors/v1/products/restock", strings.NewReader(body)))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	summary := decodeBody[core.BatchSummary](t, rec)
	assert.True(t, summary.Success)
	assert.Equal(t, 1, summary.UpdatedCount)
	require.Len(t, summary.Errors, 1)
	assert.Equal(t, "product not found", summary.Errors[0].Message)

	p, err := env.store.FindByIDAndVendor(context.Background(), res.CreatedIDs[0], "v1")
	require.NoError(t, err)
	assert.Equal(t, 35, p.StockLevel)
}

func TestRestockOtherVendorsProduct(t *testing.T) {
	env := newTestEnv(t, nil)
	res := decodeBody[core.ImportResult](t, env.do(t, importRequest("v1", sampleCSV, "")))

	body := `{"items":[{"product_id":"` + res.CreatedIDs[0] + `","quantity":5}]}`
	rec := env.do(t, httptest.NewRequest(http.MethodPost, "/api/vendors/v2/products/restock", strings.NewReader(body)))

	summary := decodeBody[core.BatchSummary](t, rec)
	assert.Equal(t, 0, summary.UpdatedCount)
	assert.Equal(t, 1, summary.ErrorCount)
}

// =============================================================================
// Audit, health and cross-cutting middleware
// =============================================================================

func TestAuditLogRecordsRequestMeta(t *testing.T) {
	env := newTestEnv(t, nil)

	req := importRequest("v1", sampleCSV, "")
	req.RemoteAddr = "192.0.2.10:5555"
	req.Header.Set("User-Agent", "catalog-test")
	require.Equal(t, http.StatusOK, env.do(t, req).Code)

	rec := env.do(t, httptest.NewRequest(http.MethodGet, "/api/vendors/v1/audit-log", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Entries []core.AuditEntry `json:"entries"`
		Count   int               `json:"count"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Equal(t, 1, body.Count)
	assert.Equal(t, core.AuditImport, body.Entries[0].Action)
	assert.Equal(t, "192.0.2.10", body.Entries[0].IPAddress)
	assert.Equal(t, "catalog-test", body.Entries[0].UserAgent)
}

func TestHealth(t *testing.T) {
	env := newTestEnv(t, nil)

	rec := env.do(t, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	body := decodeBody[map[string]any](t, rec)
	assert.Equal(t, "ok", body["status"])
	assert.Equal(t, true, body["store"])
}

func TestHealthWithoutStore(t *testing.T) {
	srv := NewServer(core.NewService(nil), testConfig(t, nil))

	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, "degraded", decodeBody[map[string]any](t, rec)["status"])

	rec = httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/vendors/v1/products/export", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Equal(t, "DB004", decodeBody[ErrorResponse](t, rec).Code)
}

func TestAPIKeyRequired(t *testing.T) {
	env := newTestEnv(t, map[string]string{
		"REQUIRE_API_KEY": "true",
		"API_KEYS":        "k1,k2",
	})

	rec := env.do(t, httptest.NewRequest(http.MethodGet, "/api/products/template", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	req := httptest.NewRequest(http.MethodGet, "/api/products/template", nil)
	req.Header.Set("X-API-Key", "wrong")
	assert.Equal(t, http.StatusForbidden, env.do(t, req).Code)

	req = httptest.NewRequest(http.MethodGet, "/api/products/template", nil)
	req.Header.Set("X-API-Key", "k2")
	assert.Equal(t, http.StatusOK, env.do(t, req).Code)

	assert.Equal(t, http.StatusOK, env.do(t, httptest.NewRequest(http.MethodGet, "/healthz", nil)).Code)
}

func TestRateLimited(t *testing.T) {
	env := newTestEnv(t, map[string]string{
		"RATE_LIMIT_ENABLED":             "true",
		"RATE_LIMIT_REQUESTS_PER_MINUTE": "1",
		"RATE_LIMIT_BURST":               "2",
	})

	var last *httptest.ResponseRecorder
	for i := 0; i < 3; i++ {
		last = env.do(t, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	}
	assert.Equal(t, http.StatusTooManyRequests, last.Code)
	assert.Equal(t, "RATE001", decodeBody[ErrorResponse](t, last).Code)
	assert.NotEmpty(t, last.Header().Get("Retry-After"))
}

func TestSecurityHeaders(t *testing.T) {
	env := newTestEnv(t, nil)

	rec := env.do(t, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, "nosniff", rec.Header().Get("X-Content-Type-Options"))
	assert.Equal(t, "DENY", rec.Header().Get("X-Frame-Options"))
	assert.NotEmpty(t, rec.Header().Get("Content-Security-Policy"))
}
