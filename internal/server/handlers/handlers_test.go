package handlers

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/xuri/excelize/v2"

	"abcost/internal/config"
	"abcost/internal/service/store"
)

func newTestRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	// 导出副本写到临时目录，避免污染工作目录
	cfg := config.DefaultConfig()
	cfg.Data.DataDir = t.TempDir()

	h := NewHandlers(store.NewMemoryStore(), cfg)
	router := gin.New()
	h.RegisterRoutes(router.Group("/api"))
	return router
}

// uploadWorkbook 构造一份含成本池表与事件表的工作簿
func uploadWorkbook(t *testing.T) []byte {
	t.Helper()

	wb := excelize.NewFile()
	defer wb.Close()

	wb.SetSheetName("Sheet1", "Costpools")
	costRows := [][]interface{}{
		{"Activity", "Type", "Total_Cost", "Driver"},
		{"Fuel", "Direct", 1000, "Distance"},
		{"Handling", "Indirect", 400, "Passengers"},
	}
	for i, row := range costRows {
		cell, _ := excelize.CoordinatesToCellName(1, i+1)
		wb.SetSheetRow("Costpools", cell, &row)
	}

	wb.NewSheet("Events")
	eventRows := [][]interface{}{
		{"Flight", "Continent", "Destination Code", "Departure Time", "Distance", "Passengers"},
		{"FL001", "Europe", "LHR", "2024-05-01 08:30:00", 100, 150},
		{"FL002", "Asia", "NRT", "2024-05-01 22:10:00", 400, 250},
		{"Total", "", "", "", 500, 400},
	}
	for i, row := range eventRows {
		cell, _ := excelize.CoordinatesToCellName(1, i+1)
		wb.SetSheetRow("Events", cell, &row)
	}

	buf, err := wb.WriteToBuffer()
	if err != nil {
		t.Fatalf("WriteToBuffer failed: %v", err)
	}
	return buf.Bytes()
}

func doUpload(t *testing.T, router *gin.Engine) *httptest.ResponseRecorder {
	t.Helper()

	body := &bytes.Buffer{}
	mw := multipart.NewWriter(body)
	part, err := mw.CreateFormFile("file", "abc_data.xlsx")
	if err != nil {
		t.Fatalf("CreateFormFile failed: %v", err)
	}
	if _, err := part.Write(uploadWorkbook(t)); err != nil {
		t.Fatalf("write form file failed: %v", err)
	}
	mw.Close()

	req := httptest.NewRequest(http.MethodPost, "/api/upload", body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func doGet(router *gin.Engine, path string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func decodeResponse(t *testing.T, w *httptest.ResponseRecorder) (int, map[string]interface{}) {
	t.Helper()

	var resp struct {
		Code    int                    `json:"code"`
		Message string                 `json:"message"`
		Data    map[string]interface{} `json:"data"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal response failed: %v, body=%s", err, w.Body.String())
	}
	return resp.Code, resp.Data
}

func TestStatusBeforeUpload(t *testing.T) {
	router := newTestRouter(t)

	code, data := decodeResponse(t, doGet(router, "/api/status"))
	if code != 0 {
		t.Fatalf("code = %d, want 0", code)
	}
	if loaded, _ := data["loaded"].(bool); loaded {
		t.Error("loaded = true, want false")
	}
}

func TestQueryBeforeUpload(t *testing.T) {
	router := newTestRouter(t)

	for _, path := range []string{"/api/costpools", "/api/allocation", "/api/summary", "/api/flights", "/api/dashboard"} {
		w := doGet(router, path)
		code, _ := decodeResponse(t, w)
		if code != 4040 {
			t.Errorf("%s code = %d, want 4040", path, code)
		}
	}
}

func TestUploadMissingFile(t *testing.T) {
	router := newTestRouter(t)

	req := httptest.NewRequest(http.MethodPost, "/api/upload", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	code, _ := decodeResponse(t, w)
	if code != 4001 {
		t.Errorf("code = %d, want 4001", code)
	}
}

func TestUploadAndStatus(t *testing.T) {
	router := newTestRouter(t)

	code, data := decodeResponse(t, doUpload(t, router))
	if code != 0 {
		t.Fatalf("upload code = %d", code)
	}
	if data["costSheet"] != "Costpools" || data["eventSheet"] != "Events" {
		t.Errorf("resolved sheets = %v / %v", data["costSheet"], data["eventSheet"])
	}
	if data["flights"] != float64(2) {
		t.Errorf("flights = %v, want 2", data["flights"])
	}

	code, data = decodeResponse(t, doGet(router, "/api/status"))
	if code != 0 {
		t.Fatalf("status code = %d", code)
	}
	if loaded, _ := data["loaded"].(bool); !loaded {
		t.Error("loaded = false after upload")
	}
	if data["fileName"] != "abc_data.xlsx" {
		t.Errorf("fileName = %v", data["fileName"])
	}
}

func TestDashboardAfterUpload(t *testing.T) {
	router := newTestRouter(t)
	doUpload(t, router)

	code, data := decodeResponse(t, doGet(router, "/api/dashboard"))
	if code != 0 {
		t.Fatalf("dashboard code = %d", code)
	}

	kpi, ok := data["kpi"].(map[string]interface{})
	if !ok {
		t.Fatalf("kpi missing: %v", data)
	}
	if kpi["flights"] != float64(2) {
		t.Errorf("kpi.flights = %v, want 2", kpi["flights"])
	}
	// Fuel 1000 + Handling 400 全部分摊出去
	if kpi["totalCost"] != float64(1400) {
		t.Errorf("kpi.totalCost = %v, want 1400", kpi["totalCost"])
	}

	// 过滤到单个大洲
	code, data = decodeResponse(t, doGet(router, "/api/dashboard?continent=Asia"))
	if code != 0 {
		t.Fatalf("filtered dashboard code = %d", code)
	}
	kpi = data["kpi"].(map[string]interface{})
	if kpi["flights"] != float64(1) {
		t.Errorf("filtered kpi.flights = %v, want 1", kpi["flights"])
	}
}

func TestFilterOptionsAfterUpload(t *testing.T) {
	router := newTestRouter(t)
	doUpload(t, router)

	code, data := decodeResponse(t, doGet(router, "/api/filters"))
	if code != 0 {
		t.Fatalf("filters code = %d", code)
	}

	continents, _ := data["continents"].([]interface{})
	if len(continents) != 2 {
		t.Errorf("continents = %v, want [Asia Europe]", continents)
	}
	periods, _ := data["timePeriods"].([]interface{})
	if len(periods) != 5 {
		t.Errorf("timePeriods = %v, want 5 entries", periods)
	}
}

func TestExportExcelAfterUpload(t *testing.T) {
	router := newTestRouter(t)
	doUpload(t, router)

	w := doGet(router, "/api/export/excel")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	if ct := w.Header().Get("Content-Type"); ct != "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet" {
		t.Errorf("Content-Type = %q", ct)
	}

	out, err := excelize.OpenReader(bytes.NewReader(w.Body.Bytes()))
	if err != nil {
		t.Fatalf("OpenReader failed: %v", err)
	}
	defer out.Close()

	if len(out.GetSheetList()) != 4 {
		t.Errorf("sheets = %v, want 4 sheets", out.GetSheetList())
	}
}

func TestExportCSVAfterUpload(t *testing.T) {
	router := newTestRouter(t)
	doUpload(t, router)

	w := doGet(router, "/api/export/csv")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	if ct := w.Header().Get("Content-Type"); ct != "application/zip" {
		t.Errorf("Content-Type = %q", ct)
	}
	if w.Body.Len() == 0 {
		t.Error("empty zip body")
	}
}

func TestGetConfig(t *testing.T) {
	router := newTestRouter(t)

	w := doGet(router, "/api/config")
	var resp struct {
		Code int             `json:"code"`
		Data excelConfigView `json:"data"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal failed: %v", err)
	}
	if resp.Code != 0 {
		t.Fatalf("code = %d", resp.Code)
	}
	if resp.Data.CostSheetKeyword != "cost" || resp.Data.EventSheetKeyword != "event" {
		t.Errorf("config = %+v", resp.Data)
	}
	if resp.Data.DepartureTimeColumn != "Departure Time" {
		t.Errorf("departureTimeColumn = %q", resp.Data.DepartureTimeColumn)
	}
}
