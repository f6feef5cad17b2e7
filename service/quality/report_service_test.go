/*
 * @module service/quality/report_service_test
 * @description 完整性报告服务测试
 * @architecture 测试层 - 单元测试
 */

package quality

import (
	"context"
	"datacensus-service/service/completeness"
	"datacensus-service/service/config"
	"datacensus-service/service/dataset"
	"datacensus-service/service/models"
	"datacensus-service/testutil"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

var reportColumns = []models.DatasetColumn{
	{Name: "edad", Kind: "numeric"},
	{Name: "ciudad", Kind: "text"},
}

var reportRows = [][]interface{}{
	{1.0, "NYC"},
	{nil, "LA"},
	{3.0, "CHI"},
	{4.0, "NYC"},
}

type reportFixture struct {
	tdb       *testutil.TestDB
	factory   *testutil.TestDataFactory
	config    *config.ConfigService
	publisher *testutil.MockReportPublisher
	service   *ReportService
}

func newReportFixture(t *testing.T) *reportFixture {
	tdb := testutil.NewTestDB()
	t.Cleanup(tdb.Close)

	cfg := config.NewConfigService(tdb.DB, "default")
	publisher := new(testutil.MockReportPublisher)

	return &reportFixture{
		tdb:       tdb,
		factory:   testutil.NewTestDataFactory(tdb.DB),
		config:    cfg,
		publisher: publisher,
		service:   NewReportService(tdb.DB, dataset.NewService(tdb.DB), cfg, publisher),
	}
}

func TestReportService_Evaluate(t *testing.T) {
	f := newReportFixture(t)
	f.factory.CreateDataset(reportColumns, reportRows, testutil.WithDatasetID("ds-1"))
	f.publisher.On("Publish", mock.Anything, mock.AnythingOfType("*models.CompletenessReport")).Return(nil).Once()

	report, err := f.service.Evaluate(context.Background(), "ds-1", models.ReportTriggerManual)
	require.NoError(t, err)

	assert.NotEmpty(t, report.ID)
	assert.Equal(t, "ds-1", report.DatasetID)
	assert.Equal(t, completeness.MetricName, report.Metric)
	assert.Equal(t, 9.85, report.Score)
	assert.Equal(t, 98.5, report.Percentage)
	assert.Equal(t, 9.56, report.DataCompleteness)
	assert.Equal(t, 8, report.TotalCells)
	assert.Equal(t, 1, report.TotalNulls)
	assert.Equal(t, 0, report.SparseColumns)
	assert.Equal(t, 0.5, report.SparseThreshold)
	assert.Equal(t, models.ReportTriggerManual, report.Trigger)

	f.publisher.AssertExpectations(t)

	var count int64
	require.NoError(t, f.tdb.DB.Model(&models.CompletenessReport{}).Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

func TestReportService_EvaluateUsesConfiguredThreshold(t *testing.T) {
	f := newReportFixture(t)
	f.factory.CreateDataset(reportColumns, reportRows, testutil.WithDatasetID("ds-1"))
	f.publisher.On("Publish", mock.Anything, mock.Anything).Return(nil)

	require.NoError(t, f.config.SetSystemConfig(config.ConfigKeySparseThreshold, "0.25", ""))

	report, err := f.service.Evaluate(context.Background(), "ds-1", models.ReportTriggerManual)
	require.NoError(t, err)

	assert.Equal(t, 1, report.SparseColumns)
	assert.Equal(t, 7.5, report.ColumnCompleteness)
	assert.Equal(t, 9.02, report.Score)
	assert.Equal(t, 0.25, report.SparseThreshold)
}

func TestReportService_EvaluatePublishFailureKeepsReport(t *testing.T) {
	f := newReportFixture(t)
	f.factory.CreateDataset(reportColumns, reportRows, testutil.WithDatasetID("ds-1"))
	f.publisher.On("Publish", mock.Anything, mock.Anything).Return(errors.New("broker unavailable"))

	report, err := f.service.Evaluate(context.Background(), "ds-1", models.ReportTriggerChange)
	require.NoError(t, err)

	reports, err := f.service.ListReports(context.Background(), "ds-1", 0)
	require.NoError(t, err)
	require.Len(t, reports, 1)
	assert.Equal(t, report.ID, reports[0].ID)
	assert.Equal(t, models.ReportTriggerChange, reports[0].Trigger)
}

func TestReportService_EvaluateErrors(t *testing.T) {
	f := newReportFixture(t)
	f.factory.CreateDataset(reportColumns, nil, testutil.WithDatasetID("empty"))

	_, err := f.service.Evaluate(context.Background(), "missing", models.ReportTriggerManual)
	assert.ErrorIs(t, err, dataset.ErrDatasetNotFound)

	_, err = f.service.Evaluate(context.Background(), "empty", models.ReportTriggerManual)
	assert.ErrorIs(t, err, completeness.ErrEmptyDataset)

	f.publisher.AssertNotCalled(t, "Publish", mock.Anything, mock.Anything)
}

func TestReportService_EvaluateWithoutPublisher(t *testing.T) {
	tdb := testutil.NewTestDB()
	defer tdb.Close()

	testutil.NewTestDataFactory(tdb.DB).CreateDataset(reportColumns, reportRows,
		testutil.WithDatasetID("ds-1"),
		testutil.WithMetadata(models.JSONB{"total_columnas": 4}))

	service := NewReportService(tdb.DB, dataset.NewService(tdb.DB), nil, nil)
	report, err := service.Evaluate(context.Background(), "ds-1", models.ReportTriggerManual)
	require.NoError(t, err)

	// 期望4列实际2列，覆盖度封顶为10
	assert.Equal(t, 4, report.ExpectedColumns)
	assert.Equal(t, 10.0, report.ColumnCoverage)
}

func TestReportService_EvaluateAll(t *testing.T) {
	f := newReportFixture(t)
	f.factory.CreateDataset(reportColumns, reportRows, testutil.WithDatasetID("a"))
	f.factory.CreateDataset(reportColumns, reportRows, testutil.WithDatasetID("b"))
	f.factory.CreateDataset(reportColumns, nil, testutil.WithDatasetID("c"))
	f.factory.CreateDataset(reportColumns, reportRows,
		testutil.WithDatasetID("d"),
		testutil.WithMetadata(models.JSONB{"total_columnas": "muchas"}))
	f.publisher.On("Publish", mock.Anything, mock.Anything).Return(nil)

	summary, err := f.service.EvaluateAll(context.Background(), models.ReportTriggerSchedule)
	require.NoError(t, err)

	assert.Equal(t, 4, summary.Total)
	assert.Equal(t, 2, summary.Succeeded)
	assert.Equal(t, 1, summary.Skipped)
	assert.Equal(t, 1, summary.Failed)
	assert.Contains(t, summary.Errors, "d")
	f.publisher.AssertNumberOfCalls(t, "Publish", 2)
}

func TestReportService_ListReportsNewestFirst(t *testing.T) {
	f := newReportFixture(t)
	base := time.Now().Add(-time.Hour)
	for i := 0; i < 3; i++ {
		require.NoError(t, f.tdb.DB.Create(&models.CompletenessReport{
			DatasetID: "ds-1",
			Metric:    completeness.MetricName,
			Score:     float64(i),
			Trigger:   models.ReportTriggerSchedule,
			CreatedAt: base.Add(time.Duration(i) * time.Minute),
		}).Error)
	}
	require.NoError(t, f.tdb.DB.Create(&models.CompletenessReport{
		DatasetID: "other",
		Metric:    completeness.MetricName,
		Trigger:   models.ReportTriggerSchedule,
	}).Error)

	reports, err := f.service.ListReports(context.Background(), "ds-1", 2)
	require.NoError(t, err)
	require.Len(t, reports, 2)
	assert.Equal(t, 2.0, reports[0].Score)
	assert.Equal(t, 1.0, reports[1].Score)
}

func TestReportService_PurgeReportsBefore(t *testing.T) {
	f := newReportFixture(t)
	require.NoError(t, f.tdb.DB.Create(&models.CompletenessReport{
		DatasetID: "ds-1",
		Metric:    completeness.MetricName,
		Trigger:   models.ReportTriggerSchedule,
		CreatedAt: time.Now().AddDate(0, 0, -100),
	}).Error)
	require.NoError(t, f.tdb.DB.Create(&models.CompletenessReport{
		DatasetID: "ds-1",
		Metric:    completeness.MetricName,
		Trigger:   models.ReportTriggerSchedule,
	}).Error)

	deleted, err := f.service.PurgeReportsBefore(context.Background(), time.Now().AddDate(0, 0, -90))
	require.NoError(t, err)
	assert.Equal(t, int64(1), deleted)

	reports, err := f.service.ListReports(context.Background(), "ds-1", 0)
	require.NoError(t, err)
	assert.Len(t, reports, 1)
}
