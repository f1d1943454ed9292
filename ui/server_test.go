package ui

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"gokeyword/app"
	"gokeyword/domain/region"
	"gokeyword/internal"
	"gokeyword/internal/config"
	"gokeyword/internal/errors"
	"gokeyword/ports"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

type memoryRegionRepo struct {
	records []region.Record
}

func (m *memoryRegionRepo) List(ctx context.Context) ([]region.Record, error) {
	return m.records, nil
}

func (m *memoryRegionRepo) ReplaceAll(ctx context.Context, records []region.Record) error {
	m.records = append([]region.Record(nil), records...)
	return nil
}

func (m *memoryRegionRepo) Count(ctx context.Context) (int, error) {
	return len(m.records), nil
}

func testConfig(maxRows int) *config.Config {
	return &config.Config{
		Server:   config.ServerConfig{Port: "0", GinMode: gin.TestMode, MaxUploadMB: 1},
		Generate: config.GenerateConfig{MaxRows: maxRows},
		Export:   config.ExportConfig{Basename: "combined_keywords"},
		LogLevel: internal.LogLevelError,
	}
}

func newTestServer(t *testing.T, repo ports.RegionRepository, maxRows int) http.Handler {
	t.Helper()
	cfg := testConfig(maxRows)
	logger := internal.NewLogger(internal.LogLevelError)
	svc := app.NewKeywordService(repo, app.KeywordServiceConfig{MaxRows: maxRows}, logger)
	srv, err := NewServer(svc, cfg, logger)
	require.NoError(t, err)
	return srv.Handler()
}

func doJSON(t *testing.T, h http.Handler, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func workbookBytes(t *testing.T, rows [][]interface{}) []byte {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, err)
		require.NoError(t, f.SetSheetRow("Sheet1", cell, &row))
	}
	buf, err := f.WriteToBuffer()
	require.NoError(t, err)
	return buf.Bytes()
}

func multipartRequest(t *testing.T, path, filename string, file []byte, fields map[string]string) *http.Request {
	t.Helper()
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	part, err := mw.CreateFormFile("file", filename)
	require.NoError(t, err)
	_, err = part.Write(file)
	require.NoError(t, err)
	for k, v := range fields {
		require.NoError(t, mw.WriteField(k, v))
	}
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, path, &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var out map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	return out
}

func TestHealth(t *testing.T) {
	h := newTestServer(t, nil, 100)
	w := doJSON(t, h, http.MethodGet, "/healthz", nil)
	require.Equal(t, http.StatusOK, w.Code)
	body := decode(t, w)
	assert.Equal(t, "ok", body["status"])
	assert.Equal(t, false, body["reference_loaded"])
}

func TestHelpPage(t *testing.T) {
	h := newTestServer(t, nil, 100)
	w := doJSON(t, h, http.MethodGet, "/help", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Content-Type"), "text/html")
	assert.Contains(t, w.Body.String(), "<h1")
	assert.Contains(t, w.Body.String(), "지역 키워드 조합기")
}

func TestGenerateJSON(t *testing.T) {
	repo := &memoryRegionRepo{records: []region.Record{
		{ID: 1, Name: "강남구", Level1: "서울특별시", Level2: "강남구"},
	}}
	h := newTestServer(t, repo, 100)

	w := doJSON(t, h, http.MethodPost, "/api/keywords/generate", map[string]interface{}{
		"regions": []interface{}{"강남구", 1004},
		"groups": []map[string]interface{}{
			{"text": "맛집\n\n카페"},
			{"values": []string{"추천"}, "prepend_space": false},
		},
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var resp generateResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, []string{"Region", "Keyword_B", "Keyword_C", "Combined_Keyword", "광역시도", "시군구", "읍면동"}, resp.Columns)
	require.Equal(t, 4, resp.RowCount)
	assert.Equal(t, []string{"강남구", "맛집", "추천", "강남구 맛집추천", "서울특별시", "강남구", ""}, resp.Rows[0])
	assert.Equal(t, "1004 카페추천", resp.Rows[3][3])
	assert.Equal(t, 2, resp.MatchedRows)
	assert.Empty(t, resp.Warnings)
	assert.NotEmpty(t, resp.RunID)
}

func TestGenerateEmptyGroupWarns(t *testing.T) {
	h := newTestServer(t, nil, 100)
	w := doJSON(t, h, http.MethodPost, "/api/keywords/generate", map[string]interface{}{
		"regions": []string{"Seoul"},
		"groups":  []map[string]interface{}{{"text": "Park"}, {"text": "  \n "}},
	})
	require.Equal(t, http.StatusOK, w.Code)

	var resp generateResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, 0, resp.RowCount)
	assert.NotEmpty(t, resp.Warnings)
}

func TestGenerateRowLimit(t *testing.T) {
	h := newTestServer(t, nil, 3)
	w := doJSON(t, h, http.MethodPost, "/api/keywords/generate", map[string]interface{}{
		"regions": []string{"a", "b"},
		"groups":  []map[string]interface{}{{"text": "x\ny"}},
	})
	assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code)
	assert.Equal(t, "ROW_LIMIT_EXCEEDED", decode(t, w)["code"])
}

func TestGenerateRejectsBadBody(t *testing.T) {
	h := newTestServer(t, nil, 100)
	req := httptest.NewRequest(http.MethodPost, "/api/keywords/generate", strings.NewReader("{"))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestGenerateMultipart(t *testing.T) {
	h := newTestServer(t, nil, 100)
	book := workbookBytes(t, [][]interface{}{
		{"Region", "Alt"},
		{"Seoul", "Busan"},
		{"Incheon", nil},
	})
	req := multipartRequest(t, "/api/keywords/generate", "book.xlsx", book, map[string]string{
		"selection": `[{"sheet":"Sheet1","columns":["Region","Alt"]}]`,
		"groups":    `[{"text":"cafe"}]`,
	})
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var resp generateResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Equal(t, 3, resp.RowCount)
	assert.Equal(t, "Seoul cafe", resp.Rows[0][2])
	assert.Equal(t, "Busan cafe", resp.Rows[1][2])
	assert.Equal(t, "Incheon cafe", resp.Rows[2][2])
}

func TestGenerateMultipartMissingColumn(t *testing.T) {
	h := newTestServer(t, nil, 100)
	book := workbookBytes(t, [][]interface{}{{"Region"}, {"Seoul"}})
	req := multipartRequest(t, "/api/keywords/generate", "book.xlsx", book, map[string]string{
		"selection": `[{"sheet":"Sheet1","columns":["Nope"]}]`,
		"groups":    `[{"text":"cafe"}]`,
	})
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "MISSING_COLUMN", decode(t, w)["code"])
}

func TestExportCSV(t *testing.T) {
	h := newTestServer(t, nil, 100)
	w := doJSON(t, h, http.MethodPost, "/api/keywords/export?format=csv", map[string]interface{}{
		"regions": []string{"Seoul"},
		"groups":  []map[string]interface{}{{"text": "cafe"}},
	})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, `attachment; filename="combined_keywords.csv"`, w.Header().Get("Content-Disposition"))
	assert.True(t, bytes.HasPrefix(w.Body.Bytes(), []byte{0xEF, 0xBB, 0xBF}))
	assert.Contains(t, w.Body.String(), "Seoul,cafe,Seoul cafe,,,")
}

func TestExportXLSX(t *testing.T) {
	h := newTestServer(t, nil, 100)
	w := doJSON(t, h, http.MethodPost, "/api/keywords/export?format=xlsx", map[string]interface{}{
		"regions": []string{"Seoul"},
		"groups":  []map[string]interface{}{{"text": "cafe"}},
	})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, `attachment; filename="combined_keywords.xlsx"`, w.Header().Get("Content-Disposition"))

	f, err := excelize.OpenReader(bytes.NewReader(w.Body.Bytes()))
	require.NoError(t, err)
	defer f.Close()
	rows, err := f.GetRows("Combined Keywords")
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "Seoul cafe", rows[1][2])
}

func TestExportUnknownFormat(t *testing.T) {
	h := newTestServer(t, nil, 100)
	w := doJSON(t, h, http.MethodPost, "/api/keywords/export?format=pdf", map[string]interface{}{
		"regions": []string{"Seoul"},
		"groups":  []map[string]interface{}{{"text": "cafe"}},
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestInspectWorkbook(t *testing.T) {
	h := newTestServer(t, nil, 100)
	book := workbookBytes(t, [][]interface{}{{"Region", "Alt"}, {"Seoul", "Busan"}})
	w := httptest.NewRecorder()
	h.ServeHTTP(w, multipartRequest(t, "/api/workbook/inspect", "book.xlsx", book, nil))
	require.Equal(t, http.StatusOK, w.Code)

	body := decode(t, w)
	sheets := body["sheets"].([]interface{})
	require.Len(t, sheets, 1)
	sheet := sheets[0].(map[string]interface{})
	assert.Equal(t, "Sheet1", sheet["name"])
	assert.Equal(t, []interface{}{"Region", "Alt"}, sheet["headers"])
}

func TestRegionsWithoutDatabase(t *testing.T) {
	h := newTestServer(t, nil, 100)
	w := doJSON(t, h, http.MethodGet, "/api/regions", nil)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}

func TestImportRegions(t *testing.T) {
	repo := &memoryRegionRepo{}
	h := newTestServer(t, repo, 100)
	book := workbookBytes(t, [][]interface{}{
		{"name", "level_1", "level_2", "level_3"},
		{"강남구", "서울특별시", "강남구", nil},
		{"", "서울특별시", nil, nil},
	})
	w := httptest.NewRecorder()
	h.ServeHTTP(w, multipartRequest(t, "/api/regions/import", "ref.xlsx", book, map[string]string{"sheet": "Sheet1"}))
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, float64(1), decode(t, w)["imported"])
	require.Len(t, repo.records, 1)
	assert.Equal(t, "서울특별시", repo.records[0].Level1)

	list := doJSON(t, h, http.MethodGet, "/api/regions", nil)
	require.Equal(t, http.StatusOK, list.Code)
	assert.Equal(t, float64(1), decode(t, list)["count"])
}

func TestImportRegionsMissingSheet(t *testing.T) {
	h := newTestServer(t, &memoryRegionRepo{}, 100)
	book := workbookBytes(t, [][]interface{}{{"name", "level_1"}, {"a", "b"}})
	w := httptest.NewRecorder()
	h.ServeHTTP(w, multipartRequest(t, "/api/regions/import", "ref.xlsx", book, map[string]string{"sheet": "Other"}))
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestOversizedUploadIsRejected(t *testing.T) {
	h := newTestServer(t, nil, 100)
	big := bytes.Repeat([]byte("x"), 2<<20)

	w := httptest.NewRecorder()
	h.ServeHTTP(w, multipartRequest(t, "/api/workbook/inspect", "book.xlsx", big, nil))
	assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code)
	assert.Equal(t, "PAYLOAD_TOO_LARGE", decode(t, w)["code"])

	body := `{"regions":["` + strings.Repeat("a", 2<<20) + `"],"groups":[{"text":"x"}]}`
	req := httptest.NewRequest(http.MethodPost, "/api/keywords/generate", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w = httptest.NewRecorder()
	h.ServeHTTP(w, req)
	assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code)
}

func TestBindingError(t *testing.T) {
	tooLarge := bindingError(fmt.Errorf("multipart: NextPart: %w", &http.MaxBytesError{Limit: 8}), "upload")
	assert.Equal(t, "PAYLOAD_TOO_LARGE", errors.GetCode(tooLarge))

	malformed := bindingError(fmt.Errorf("unexpected EOF"), "upload")
	assert.Equal(t, "INVALID_INPUT", errors.GetCode(malformed))
	assert.Equal(t, http.StatusBadRequest, errors.HTTPStatus(malformed))
}
