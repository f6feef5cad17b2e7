/*
 * @module service/quality/report_scheduler
 * @description 完整性报告调度器，按配置的 cron 表达式定时评分所有数据集，并每天清理过期报告
 * @architecture 分层架构 - 业务服务层
 * @stateFlow 定时触发 -> 获取分布式锁 -> 批量评分 -> 释放锁
 * @rules 多实例部署时通过分布式锁保证同一时刻只有一个实例执行批量评分；cron 配置变更后立即重新调度
 * @dependencies github.com/robfig/cron/v3, datacensus-service/service/config
 * @refs service/quality/report_service.go, service/distributed_lock/redis_lock.go
 */

package quality

import (
	"context"
	"datacensus-service/service/models"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
)

const (
	evaluateLockKey = "completeness_reports"
	evaluateLockTTL = 30 * time.Minute
	cleanupLockKey  = "completeness_reports_cleanup"
	cleanupLockTTL  = 10 * time.Minute

	// 每天凌晨3点清理过期报告
	cleanupCron = "0 0 3 * * *"
)

// Locker 分布式锁
type Locker interface {
	TryLock(ctx context.Context, key string, ttl time.Duration) (bool, error)
	Unlock(ctx context.Context, key string) error
}

// ScheduleSource 调度配置来源
type ScheduleSource interface {
	GetReportCron() string
	GetReportRetentionDays() int
}

// ReportScheduler 报告调度器
type ReportScheduler struct {
	reports  *ReportService
	schedule ScheduleSource
	locker   Locker
	cron     *cron.Cron
	ctx      context.Context
	cancel   context.CancelFunc

	mu             sync.Mutex
	started        bool
	evaluationID   cron.EntryID
	evaluationSpec string
}

// NewReportScheduler 创建报告调度器，locker 为 nil 时不加锁
func NewReportScheduler(reports *ReportService, schedule ScheduleSource, locker Locker) *ReportScheduler {
	ctx, cancel := context.WithCancel(context.Background())

	return &ReportScheduler{
		reports:  reports,
		schedule: schedule,
		locker:   locker,
		cron:     cron.New(cron.WithSeconds()),
		ctx:      ctx,
		cancel:   cancel,
	}
}

// Start 启动调度器
func (s *ReportScheduler) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return fmt.Errorf("报告调度器已经启动")
	}

	spec := s.schedule.GetReportCron()
	id, err := s.cron.AddFunc(spec, s.runScheduledEvaluation)
	if err != nil {
		return fmt.Errorf("添加定时评分任务失败: %w", err)
	}
	s.evaluationID = id
	s.evaluationSpec = spec
	if _, err := s.cron.AddFunc(cleanupCron, func() { s.RunCleanup(s.ctx) }); err != nil {
		return fmt.Errorf("添加报告清理任务失败: %w", err)
	}

	s.cron.Start()
	s.started = true

	slog.Info("报告调度器启动成功", "cron", spec, "cleanup_cron", cleanupCron)
	return nil
}

// Stop 停止调度器，等待正在执行的任务结束
func (s *ReportScheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return
	}

	slog.Info("停止报告调度器")
	s.cancel()
	<-s.cron.Stop().Done()
	s.started = false
	slog.Info("报告调度器已停止")
}

// Reschedule 按新的 cron 表达式重新调度批量评分，表达式无效时保留原任务
func (s *ReportScheduler) Reschedule(spec string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started || spec == s.evaluationSpec {
		return nil
	}

	id, err := s.cron.AddFunc(spec, s.runScheduledEvaluation)
	if err != nil {
		return fmt.Errorf("重新调度定时评分任务失败: %w", err)
	}
	s.cron.Remove(s.evaluationID)

	slog.Info("定时评分任务已重新调度", "old_cron", s.evaluationSpec, "cron", spec)
	s.evaluationID = id
	s.evaluationSpec = spec
	return nil
}

// NextEvaluation 返回 from 之后的下一次批量评分时间，未启动时返回零值
func (s *ReportScheduler) NextEvaluation(from time.Time) time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return time.Time{}
	}
	entry := s.cron.Entry(s.evaluationID)
	if entry.Schedule == nil {
		return time.Time{}
	}
	return entry.Schedule.Next(from)
}

func (s *ReportScheduler) runScheduledEvaluation() {
	s.RunEvaluation(s.ctx)
}

// RunEvaluation 执行一次批量评分
func (s *ReportScheduler) RunEvaluation(ctx context.Context) {
	s.withLock(ctx, evaluateLockKey, evaluateLockTTL, func() {
		slog.Info("开始执行定时完整性评分")
		start := time.Now()

		summary, err := s.reports.EvaluateAll(ctx, models.ReportTriggerSchedule)
		if err != nil {
			slog.Error("定时完整性评分失败", "error", err)
			return
		}

		slog.Info("定时完整性评分完成",
			"total", summary.Total,
			"succeeded", summary.Succeeded,
			"skipped", summary.Skipped,
			"failed", summary.Failed,
			"duration_ms", time.Since(start).Milliseconds())
	})
}

// RunCleanup 清理过期报告
func (s *ReportScheduler) RunCleanup(ctx context.Context) {
	s.withLock(ctx, cleanupLockKey, cleanupLockTTL, func() {
		retentionDays := s.schedule.GetReportRetentionDays()
		cutoff := time.Now().AddDate(0, 0, -retentionDays)

		deleted, err := s.reports.PurgeReportsBefore(ctx, cutoff)
		if err != nil {
			slog.Error("清理过期报告失败", "error", err)
			return
		}
		slog.Info("清理过期报告完成", "deleted_count", deleted, "retention_days", retentionDays)
	})
}

func (s *ReportScheduler) withLock(ctx context.Context, key string, ttl time.Duration, fn func()) {
	if s.locker == nil {
		fn()
		return
	}

	acquired, err := s.locker.TryLock(ctx, key, ttl)
	if err != nil {
		slog.Error("获取分布式锁失败", "key", key, "error", err)
		return
	}
	if !acquired {
		slog.Debug("其他实例正在执行，跳过本次任务", "key", key)
		return
	}
	defer func() {
		if err := s.locker.Unlock(context.Background(), key); err != nil {
			slog.Warn("释放分布式锁失败", "key", key, "error", err)
		}
	}()

	fn()
}
