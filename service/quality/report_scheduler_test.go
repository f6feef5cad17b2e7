package quality

import (
	"context"
	"datacensus-service/service/config"
	"datacensus-service/service/dataset"
	"datacensus-service/service/models"
	"datacensus-service/testutil"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeLocker struct {
	mu       sync.Mutex
	acquire  bool
	err      error
	locked   []string
	unlocked []string
}

func (l *fakeLocker) TryLock(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.err != nil {
		return false, l.err
	}
	if l.acquire {
		l.locked = append(l.locked, key)
	}
	return l.acquire, nil
}

func (l *fakeLocker) Unlock(ctx context.Context, key string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.unlocked = append(l.unlocked, key)
	return nil
}

type staticSchedule struct {
	cron string
	days int
}

func (s staticSchedule) GetReportCron() string { return s.cron }
func (s staticSchedule) GetReportRetentionDays() int { return s.days }

func newSchedulerFixture(t *testing.T, locker Locker) (*testutil.TestDB, *ReportScheduler) {
	tdb := testutil.NewTestDB()
	t.Cleanup(tdb.Close)

	testutil.NewTestDataFactory(tdb.DB).CreateDataset(reportColumns, reportRows, testutil.WithDatasetID("ds-1"))
	reports := NewReportService(tdb.DB, dataset.NewService(tdb.DB), nil, nil)
	return tdb, NewReportScheduler(reports, staticSchedule{cron: "0 0 0 1 1 *", days: 30}, locker)
}

func countReports(t *testing.T, tdb *testutil.TestDB) int64 {
	var count int64
	require.NoError(t, tdb.DB.Model(&models.CompletenessReport{}).Count(&count).Error)
	return count
}

func TestReportScheduler_RunEvaluation(t *testing.T) {
	testCases := []struct {
		name         string
		locker       *fakeLocker
		expected     int64
		expectUnlock bool
	}{
		{name: "无锁直接执行", locker: nil, expected: 1},
		{name: "获取锁成功", locker: &fakeLocker{acquire: true}, expected: 1, expectUnlock: true},
		{name: "锁被其他实例持有", locker: &fakeLocker{acquire: false}, expected: 0},
		{name: "锁服务异常", locker: &fakeLocker{err: errors.New("redis down")}, expected: 0},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			var locker Locker
			if tc.locker != nil {
				locker = tc.locker
			}
			tdb, scheduler := newSchedulerFixture(t, locker)

			scheduler.RunEvaluation(context.Background())
			assert.Equal(t, tc.expected, countReports(t, tdb))

			if tc.locker != nil {
				if tc.expectUnlock {
					assert.Equal(t, []string{evaluateLockKey}, tc.locker.unlocked)
				} else {
					assert.Empty(t, tc.locker.unlocked)
				}
			}
		})
	}
}

func TestReportScheduler_RunEvaluationTrigger(t *testing.T) {
	tdb, scheduler := newSchedulerFixture(t, nil)
	scheduler.RunEvaluation(context.Background())

	var report models.CompletenessReport
	require.NoError(t, tdb.DB.First(&report).Error)
	assert.Equal(t, models.ReportTriggerSchedule, report.Trigger)
}

func TestReportScheduler_RunCleanup(t *testing.T) {
	locker := &fakeLocker{acquire: true}
	tdb, scheduler := newSchedulerFixture(t, locker)

	require.NoError(t, tdb.DB.Create(&models.CompletenessReport{
		DatasetID: "ds-1",
		Metric:    "completitud",
		Trigger:   models.ReportTriggerSchedule,
		CreatedAt: time.Now().AddDate(0, 0, -31),
	}).Error)
	require.NoError(t, tdb.DB.Create(&models.CompletenessReport{
		DatasetID: "ds-1",
		Metric:    "completitud",
		Trigger:   models.ReportTriggerSchedule,
		CreatedAt: time.Now().AddDate(0, 0, -29),
	}).Error)

	scheduler.RunCleanup(context.Background())

	assert.Equal(t, int64(1), countReports(t, tdb))
	assert.Equal(t, []string{cleanupLockKey}, locker.unlocked)
}

func TestReportScheduler_StartStop(t *testing.T) {
	_, scheduler := newSchedulerFixture(t, nil)

	require.NoError(t, scheduler.Start())
	assert.Error(t, scheduler.Start(), "重复启动应返回错误")

	scheduler.Stop()
	scheduler.Stop()
}

func TestReportScheduler_StartInvalidCron(t *testing.T) {
	tdb := testutil.NewTestDB()
	defer tdb.Close()

	reports := NewReportService(tdb.DB, dataset.NewService(tdb.DB), nil, nil)
	scheduler := NewReportScheduler(reports, staticSchedule{cron: "not a cron", days: 30}, nil)

	assert.Error(t, scheduler.Start())
}

func TestReportScheduler_Reschedule(t *testing.T) {
	tdb := testutil.NewTestDB()
	t.Cleanup(tdb.Close)

	cfg := config.NewConfigService(tdb.DB, "default")
	reports := NewReportService(tdb.DB, dataset.NewService(tdb.DB), cfg, nil)
	scheduler := NewReportScheduler(reports, cfg, nil)
	cfg.OnChange(func(key, value string) {
		if key == config.ConfigKeyReportCron {
			assert.NoError(t, scheduler.Reschedule(value))
		}
	})

	from := time.Date(2026, 1, 1, 5, 0, 0, 0, time.UTC)
	assert.True(t, scheduler.NextEvaluation(from).IsZero(), "未启动时没有下一次执行时间")

	require.NoError(t, scheduler.Start())
	defer scheduler.Stop()
	assert.Equal(t, time.Date(2026, 1, 1, 6, 0, 0, 0, time.UTC), scheduler.NextEvaluation(from))

	require.NoError(t, cfg.SetSystemConfig(config.ConfigKeyReportCron, "0 30 * * * *", ""))
	assert.Equal(t, time.Date(2026, 1, 1, 5, 30, 0, 0, time.UTC), scheduler.NextEvaluation(from))

	// 无效表达式保留原任务
	assert.Error(t, scheduler.Reschedule("not a cron"))
	assert.Equal(t, time.Date(2026, 1, 1, 5, 30, 0, 0, time.UTC), scheduler.NextEvaluation(from))
}
