/*
 * @module service/event/dataset_listener
 * @description 数据集变更监听器，监听 postgres 通知并对变更的数据集重新评分
 * @architecture 发布订阅模式 - 数据库事件监听
 * @stateFlow LISTEN dataset_changes -> 收到通知 -> 重新评分 -> 保存报告
 * @rules 仅在 postgres 下启用；已删除或为空的数据集跳过
 * @dependencies github.com/lib/pq
 * @refs service/dataset/dataset_service.go, service/quality/report_service.go
 */

package event

import (
	"context"
	"datacensus-service/service/completeness"
	"datacensus-service/service/dataset"
	"datacensus-service/service/models"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/lib/pq"
)

const (
	listenerMinReconnect = 10 * time.Second
	listenerMaxReconnect = time.Minute
	listenerPingInterval = 90 * time.Second
)

// Evaluator 数据集评分
type Evaluator interface {
	Evaluate(ctx context.Context, datasetID, trigger string) (*models.CompletenessReport, error)
}

// DatasetListener 数据集变更监听器
type DatasetListener struct {
	connStr   string
	evaluator Evaluator
	listener  *pq.Listener
	ctx       context.Context
	cancel    context.CancelFunc
	wg        sync.WaitGroup
}

// NewDatasetListener 创建监听器
func NewDatasetListener(connStr string, evaluator Evaluator) *DatasetListener {
	ctx, cancel := context.WithCancel(context.Background())
	return &DatasetListener{
		connStr:   connStr,
		evaluator: evaluator,
		ctx:       ctx,
		cancel:    cancel,
	}
}

// Start 开始监听
func (l *DatasetListener) Start() error {
	l.listener = pq.NewListener(l.connStr, listenerMinReconnect, listenerMaxReconnect, func(ev pq.ListenerEventType, err error) {
		if err != nil {
			slog.Warn("PostgreSQL监听器事件", "event", ev, "error", err)
		}
	})

	if err := l.listener.Listen(models.DatasetChangeChannel); err != nil {
		l.listener.Close()
		return fmt.Errorf("监听数据集变更失败: %w", err)
	}

	l.wg.Add(1)
	go l.loop()

	slog.Info("数据集变更监听器已启动", "channel", models.DatasetChangeChannel)
	return nil
}

func (l *DatasetListener) loop() {
	defer l.wg.Done()

	ticker := time.NewTicker(listenerPingInterval)
	defer ticker.Stop()

	for {
		select {
		case notification := <-l.listener.Notify:
			// 重连后收到 nil，期间的通知可能丢失
			if notification == nil {
				slog.Info("PostgreSQL监听器已重连")
				continue
			}
			l.handleNotification(notification.Extra)
		case <-ticker.C:
			if err := l.listener.Ping(); err != nil {
				slog.Warn("PostgreSQL监听器心跳失败", "error", err)
			}
		case <-l.ctx.Done():
			return
		}
	}
}

// handleNotification 处理一条变更通知，payload 为数据集ID
func (l *DatasetListener) handleNotification(payload string) {
	datasetID := strings.TrimSpace(payload)
	if datasetID == "" {
		return
	}

	slog.Debug("收到数据集变更通知", "dataset_id", datasetID)

	report, err := l.evaluator.Evaluate(l.ctx, datasetID, models.ReportTriggerChange)
	switch {
	case err == nil:
		slog.Info("数据集变更后已重新评分", "dataset_id", datasetID, "score", report.Score)
	case errors.Is(err, dataset.ErrDatasetNotFound), errors.Is(err, completeness.ErrEmptyDataset):
		slog.Debug("跳过数据集重新评分", "dataset_id", datasetID, "reason", err)
	default:
		slog.Error("数据集重新评分失败", "dataset_id", datasetID, "error", err)
	}
}

// Stop 停止监听
func (l *DatasetListener) Stop() {
	l.cancel()
	l.wg.Wait()
	if l.listener != nil {
		if err := l.listener.Close(); err != nil {
			slog.Warn("关闭PostgreSQL监听器失败", "error", err)
		}
	}
	slog.Info("数据集变更监听器已停止")
}
