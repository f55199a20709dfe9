package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/lontuktak/backend-go/internal/domain"
	"github.com/lontuktak/backend-go/internal/reorder"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSnapshotRepo struct {
	dates     []time.Time
	snapshots map[string][]reorder.SnapshotRow

	latestErr error

	insertedDate time.Time
	insertedRows []domain.StockRecord
	levels       []domain.StockLevel
	stats        *domain.DashboardStats
}

func (f *fakeSnapshotRepo) LatestWeekDates(_ context.Context, limit int) ([]time.Time, error) {
	if f.latestErr != nil {
		return nil, f.latestErr
	}
	if len(f.dates) > limit {
		return f.dates[:limit], nil
	}
	return f.dates, nil
}

func (f *fakeSnapshotRepo) SnapshotAt(_ context.Context, weekDate time.Time) ([]reorder.SnapshotRow, error) {
	return f.snapshots[weekDate.Format("2006-01-02")], nil
}

func (f *fakeSnapshotRepo) InsertSnapshot(_ context.Context, weekDate time.Time, records []domain.StockRecord) error {
	f.insertedDate = weekDate
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

	upserts     int
	lastKey     string
	lastMin     *int
	lastBuffer  *int
	upsertErr   error
	getAllCalls int
}

func (f *fakeOverrideRepo) GetAll(_ context.Context) (reorder.MapOverrides, error) {
	f.getAllCalls++
	return f.overrides, nil
}

func (f *fakeOverrideRepo) Upsert(_ context.Context, productKey string, minStock, buffer *int) error {
	if f.upsertErr != nil {
		return f.upsertErr
	}
	f.upserts++
	f.lastKey = productKey
	f.lastMin = minStock
	f.lastBuffer = buffer
	return nil
}

type recordingCache struct {
	stored        map[string][]reorder.ReportRow
	invalidations int
}

func newRecordingCache() *recordingCache {
	return &recordingCache{stored: make(map[string][]reorder.ReportRow)}
}

func (c *recordingCache) key(prev, curr time.Time) string {
	return prev.Format("2006-01-02") + ":" + curr.Format("2006-01-02")
}

func (c *recordingCache) GetReport(_ context.Context, prev, curr time.Time) ([]reorder.ReportRow, bool, error) {
	report, ok := c.stored[c.key(prev, curr)]
	return report, ok, nil
}

func (c *recordingCache) SetReport(_ context.Context, prev, curr time.Time, report []reorder.ReportRow) error {
	c.stored[c.key(prev, curr)] = report
	return nil
}

func (c *recordingCache) InvalidateAll(_ context.Context) error {
	c.invalidations++
	c.stored = make(map[string][]reorder.ReportRow)
	return nil
}

func weekDate(s string) time.Time {
	d, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return d
}

func newTestReportService(snapshots *fakeSnapshotRepo, overrides *fakeOverrideRepo) (*ReportService, *recordingCache) {
	c := newRecordingCache()
	return NewReportService(snapshots, overrides, c), c
}

func TestNotifications(t *testing.T) {
	snapshots := &fakeSnapshotRepo{
		dates: []time.Time{weekDate("2025-06-16"), weekDate("2025-06-09")},
		snapshots: map[string][]reorder.SnapshotRow{
			"2025-06-09": {{ProductKey: "SKU-001", Stock: 25}},
			"2025-06-16": {{ProductKey: "SKU-001", Stock: 12}},
		},
	}
	svc, cacheImpl := newTestReportService(snapshots, &fakeOverrideRepo{})

	report, err := svc.Notifications(context.Background())
	require.NoError(t, err)
	require.Len(t, report, 1)
	assert.Equal(t, "SKU-001", report[0].ProductKey)
	assert.Equal(t, reorder.StatusRed, report[0].Status)
	assert.Equal(t, 47, report[0].ReorderQty)

	// second call is served from the cache
	_, err = svc.Notifications(context.Background())
	require.NoError(t, err)
	assert.Len(t, cacheImpl.stored, 1)
}

func TestNotificationsInsufficientData(t *testing.T) {
	snapshots := &fakeSnapshotRepo{dates: []time.Time{weekDate("2025-06-16")}}
	svc, _ := newTestReportService(snapshots, &fakeOverrideRepo{})

	_, err := svc.Notifications(context.Background())
	assert.ErrorIs(t, err, reorder.ErrInsufficientData)
}

func TestNotificationsRepoError(t *testing.T) {
	snapshots := &fakeSnapshotRepo{latestErr: errors.New("connection refused")}
	svc, _ := newTestReportService(snapshots, &fakeOverrideRepo{})

	_, err := svc.Notifications(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "snapshot dates")
}

func TestNotificationDetail(t *testing.T) {
	snapshots := &fakeSnapshotRepo{
		dates: []time.Time{weekDate("2025-06-16"), weekDate("2025-06-09")},
		snapshots: map[string][]reorder.SnapshotRow{
			"2025-06-09": {{ProductKey: "SKU-001", Stock: 25}},
			"2025-06-16": {{ProductKey: "SKU-001", Stock: 12}},
		},
	}
	svc, _ := newTestReportService(snapshots, &fakeOverrideRepo{})

	detail, err := svc.NotificationDetail(context.Background(), "SKU-001")
	require.NoError(t, err)
	assert.Equal(t, 12, detail.CurrentStock)
	assert.Equal(t, "52.0%/week", detail.DecreaseRatePerWeek)
	assert.Equal(t, "0.92 weeks", detail.TimeToRunOut)
	assert.Equal(t, 47, detail.RecommendedRestock)

	_, err = svc.NotificationDetail(context.Background(), "SKU-999")
	assert.ErrorIs(t, err, domain.ErrProductNotFound)
}

func TestSetOverride(t *testing.T) {
	snapshots := &fakeSnapshotRepo{
		dates: []time.Time{weekDate("2025-06-16"), weekDate("2025-06-09")},
		snapshots: map[string][]reorder.SnapshotRow{
			"2025-06-09": {{ProductKey: "SKU-001", Stock: 25}},
			"2025-06-16": {{ProductKey: "SKU-001", Stock: 12}},
		},
	}
	overrides := &fakeOverrideRepo{}
	svc, cacheImpl := newTestReportService(snapshots, overrides)

	// warm the cache, then override and check it was dropped
	_, err := svc.Notifications(context.Background())
	require.NoError(t, err)
	require.Len(t, cacheImpl.stored, 1)

	minStock := 60
	err = svc.SetOverride(context.Background(), "SKU-001", &minStock, nil)
	require.NoError(t, err)
	assert.Equal(t, 1, overrides.upserts)
	assert.Equal(t, "SKU-001", overrides.lastKey)
	assert.Equal(t, 1, cacheImpl.invalidations)
	assert.Empty(t, cacheImpl.stored)
}

func TestSetOverrideRequiresValue(t *testing.T) {
	svc, cacheImpl := newTestReportService(&fakeSnapshotRepo{}, &fakeOverrideRepo{})

	err := svc.SetOverride(context.Background(), "SKU-001", nil, nil)
	require.Error(t, err)
	assert.Zero(t, cacheImpl.invalidations)
}
