/*
 * @module service/monitoring/metrics
 * @description 完整性评分相关的 Prometheus 指标
 * @architecture 分层架构 - 业务服务层
 * @stateFlow 业务调用 -> 指标更新 -> /metrics 暴露
 * @rules 指标注册到默认注册表，由 promhttp 统一输出
 * @dependencies github.com/prometheus/client_golang
 * @refs api/controllers/completeness_controller.go, service/quality/report_service.go
 */

package monitoring

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "datacensus"

// 请求结果状态
const (
	StatusOK          = "ok"
	StatusBadRequest  = "bad_request"
	StatusNotFound    = "not_found"
	StatusError       = "error"
	StatusRateLimited = "rate_limited"
)

var (
	// CompletenessRequests 完整性评分请求数
	CompletenessRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "completeness_requests_total",
		Help:      "完整性评分请求总数，按结果状态分组",
	}, []string{"status"})

	// CompletenessScore 评分分布
	CompletenessScore = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "completeness_score",
		Help:      "完整性评分分布",
		Buckets:   prometheus.LinearBuckets(0, 1, 11),
	})

	// ReportsTotal 已保存的评分报告数
	ReportsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "reports_total",
		Help:      "已保存的完整性报告总数，按触发方式分组",
	}, []string{"trigger"})

	// PublishFailures 报告事件发布失败次数
	PublishFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "report_publish_failures_total",
		Help:      "报告事件发布失败次数，按发布目标分组",
	}, []string{"sink"})
)

// RecordRequest 记录一次评分请求
func RecordRequest(status string) {
	CompletenessRequests.WithLabelValues(status).Inc()
}

// ObserveScore 记录一次评分结果
func ObserveScore(score float64) {
	CompletenessScore.Observe(score)
}

// RecordReport 记录一次报告保存
func RecordReport(trigger string) {
	ReportsTotal.WithLabelValues(trigger).Inc()
}

// RecordPublishFailure 记录一次事件发布失败
func RecordPublishFailure(sink string) {
	PublishFailures.WithLabelValues(sink).Inc()
}
