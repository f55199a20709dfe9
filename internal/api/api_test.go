package api

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/lontuktak/backend-go/internal/domain"
	"github.com/lontuktak/backend-go/internal/reorder"
	"github.com/lontuktak/backend-go/internal/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSnapshotRepo struct {
	dates     []time.Time
	snapshots map[string][]reorder.SnapshotRow
	levels    []domain.StockLevel
	stats     *domain.DashboardStats

	insertedRows []domain.StockRecord
}

func (f *fakeSnapshotRepo) LatestWeekDates(_ context.Context, limit int) ([]time.Time, error) {
	if len(f.dates) > limit {
		return f.dates[:limit], nil
	}
	return f.dates, nil
}

func (f *fakeSnapshotRepo) SnapshotAt(_ context.Context, weekDate time.Time) ([]reorder.SnapshotRow, error) {
	return f.snapshots[weekDate.Format("2006-01-02")], nil
}

func (f *fakeSnapshotRepo) InsertSnapshot(_ context.Context, _ time.Time, records []domain.StockRecord) error {
	f.insertedRows = records
	return nil
}

func (f *fakeSnapshotRepo) StockLevels(_ context.Context) ([]domain.StockLevel, error) {
	return f.levels, nil
}

func (f *fakeSnapshotRepo) DashboardStats(_ context.Context) (*domain.DashboardStats, error) {
	return f.stats, nil
}

type fakeOverrideRepo struct {
	overrides reorder.MapOverrides

	lastKey    string
	lastMin    *int
	lastBuffer *int
}

func (f *fakeOverrideRepo) GetAll(_ context.Context) (reorder.MapOverrides, error) {
	return f.overrides, nil
}

func (f *fakeOverrideRepo) Upsert(_ context.Context, productKey string, minStock, buffer *int) error {
	f.lastKey = productKey
	f.lastMin = minStock
	f.lastBuffer = buffer
	return nil
}

func mustDate(s string) time.Time {
	d, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return d
}

func newTestRouter(snapshots *fakeSnapshotRepo, overrides *fakeOverrideRepo) *gin.Engine {
	gin.SetMode(gin.TestMode)
	services := &Services{
		ReportService: service.NewReportService(snapshots, overrides, nil),
		StockService:  service.NewStockService(snapshots, nil, nil),
	}
	return NewRouter(services, nil)
}

func twoWeekRepo() *fakeSnapshotRepo {
	return &fakeSnapshotRepo{
		dates: []time.Time{mustDate("2025-06-16"), mustDate("2025-06-09")},
		snapshots: map[string][]reorder.SnapshotRow{
			"2025-06-09": {{ProductKey: "SKU-001", Stock: 25}},
			"2025-06-16": {{ProductKey: "SKU-001", Stock: 12}},
		},
	}
}

func TestHealthRoute(t *testing.T) {
	router := newTestRouter(&fakeSnapshotRepo{}, &fakeOverrideRepo{})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"status":"ok"`)
}

func TestListNotifications(t *testing.T) {
	router := newTestRouter(twoWeekRepo(), &fakeOverrideRepo{})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/notifications", nil)
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Success bool                `json:"success"`
		Data    []reorder.ReportRow `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
	require.Len(t, resp.Data, 1)
	assert.Equal(t, "SKU-001", resp.Data[0].ProductKey)
	assert.Equal(t, reorder.StatusRed, resp.Data[0].Status)
}

func TestListNotificationsInsufficientData(t *testing.T) {
	snapshots := &fakeSnapshotRepo{dates: []time.Time{mustDate("2025-06-16")}}
	router := newTestRouter(snapshots, &fakeOverrideRepo{})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/notifications", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Contains(t, w.Body.String(), "not enough stock data")
}

func TestNotificationDetailRoute(t *testing.T) {
	router := newTestRouter(twoWeekRepo(), &fakeOverrideRepo{})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/notifications/SKU-001", nil)
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "52.0%/week")

	w = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodGet, "/api/notifications/SKU-999", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestSetOverrideRoute(t *testing.T) {
	overrides := &fakeOverrideRepo{}
	router := newTestRouter(twoWeekRepo(), overrides)

	body := strings.NewReader(`{"min_stock": 60, "buffer": 15}`)
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPut, "/api/notifications/SKU-001/override", body)
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "SKU-001", overrides.lastKey)
	require.NotNil(t, overrides.lastMin)
	assert.Equal(t, 60, *overrides.lastMin)
	require.NotNil(t, overrides.lastBuffer)
	assert.Equal(t, 15, *overrides.lastBuffer)
}

func TestSetOverrideRouteRejectsEmptyBody(t *testing.T) {
	router := newTestRouter(twoWeekRepo(), &fakeOverrideRepo{})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPut, "/api/notifications/SKU-001/override", strings.NewReader(`{}`))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestStockLevelsRoute(t *testing.T) {
	snapshots := twoWeekRepo()
	snapshots.levels = []domain.StockLevel{
		{ProductSKU: "SKU-001", ProductName: "Shampoo", Stock: 3, Status: domain.StockStatusLow},
	}
	router := newTestRouter(snapshots, &fakeOverrideRepo{})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/stock/levels", nil)
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Low Stock")
}

func TestDashboardRoute(t *testing.T) {
	snapshots := twoWeekRepo()
	snapshots.stats = &domain.DashboardStats{TotalStockItems: 42, LowStockAlerts: 5, OutOfStock: 2}
	router := newTestRouter(snapshots, &fakeOverrideRepo{})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/analysis/dashboard", nil)
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"total_stock_items":42`)
}

func TestUploadRoute(t *testing.T) {
	snapshots := twoWeekRepo()
	router := newTestRouter(snapshots, &fakeOverrideRepo{})

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	part, err := writer.CreateFormFile("file", "stock.csv")
	require.NoError(t, err)
	_, err = part.Write([]byte("Product_SKU,Product_name,Stock\nSKU-001,Shampoo,25\n"))
	require.NoError(t, err)
	require.NoError(t, writer.WriteField("week_date", "2025-06-23"))
	require.NoError(t, writer.Close())

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/stock/upload", &buf)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"rows":1`)
	require.Len(t, snapshots.insertedRows, 1)
	assert.Equal(t, "SKU-001", snapshots.insertedRows[0].ProductSKU)
}

func TestUploadRouteRejectsBadDate(t *testing.T) {
	router := newTestRouter(twoWeekRepo(), &fakeOverrideRepo{})

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	part, err := writer.CreateFormFile("file", "stock.csv")
	require.NoError(t, err)
	_, err = part.Write([]byte("Product_SKU,Stock\nSKU-001,25\n"))
	require.NoError(t, err)
	require.NoError(t, writer.WriteField("week_date", "23-06-2025"))
	require.NoError(t, writer.Close())

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/stock/upload", &buf)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}
