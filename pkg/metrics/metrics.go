// Package metrics 提供基于Prometheus的指标收集
//
// 核心概念：
// 1. Counter（计数器）：只增不减的累计值（如HTTP请求总数、借阅审批总数）
// 2. Gauge（仪表盘）：可增可减的瞬时值（如正在处理的请求数）
// 3. Histogram（直方图）：观测值的分布，自动计算分位数（如请求耗时P99）
//
// 使用方式：
// 1. 程序启动时调用InitMetrics()注册所有指标
// 2. 在main中暴露/metrics端点（promhttp.Handler）
// 3. Prometheus Server定期抓取/metrics端点并存储时序数据
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// initialized 标记是否已初始化（防止重复注册）
	initialized bool

	// HTTP请求相关指标

	// HTTPRequestsTotal HTTP请求总数（Counter）
	// 标签：method（GET/POST）、path（/api/v1/borrow/request）、status（200/500）
	HTTPRequestsTotal *prometheus.CounterVec

	// HTTPRequestDuration HTTP请求耗时（Histogram）
	HTTPRequestDuration *prometheus.HistogramVec

	// HTTPRequestsInProgress 正在处理的HTTP请求数（Gauge）
	HTTPRequestsInProgress prometheus.Gauge

	// 借阅生命周期业务指标

	// LoansRequestedTotal 借阅申请总数（Counter）
	LoansRequestedTotal prometheus.Counter

	// LoanTransitionsTotal 借阅单状态流转总数（Counter）
	// 标签：transition（approve_borrow/reject_borrow/request_return/approve_return/reject_return）、
	//      result（success/failure）
	LoanTransitionsTotal *prometheus.CounterVec

	// LoanTransitionDuration 状态流转事务耗时（Histogram）
	// 流转内部持有行锁（借阅单行+图书行），耗时上涨意味着锁竞争加剧
	LoanTransitionDuration prometheus.Histogram

	// FinesAssessedTotal 累计计收罚金（Counter，单位：分）
	FinesAssessedTotal prometheus.Counter
)

// InitMetrics 初始化所有Prometheus指标
//
// 必须在程序启动时调用一次，用于注册所有指标到全局Registry
func InitMetrics() {
	// 防止重复初始化
	if initialized {
		return
	}
	initialized = true

	// HTTP请求指标
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "HTTP请求总数",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: "http_request_duration_seconds",
			Help: "HTTP请求耗时（秒）",
			// 桶设置：1ms、10ms、100ms、500ms、1s、5s、10s
			Buckets: []float64{0.001, 0.01, 0.1, 0.5, 1, 5, 10},
		},
		[]string{"method", "path"},
	)

	HTTPRequestsInProgress = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "http_requests_in_progress",
			Help: "正在处理的HTTP请求数",
		},
	)

	// 借阅业务指标
	LoansRequestedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "loans_requested_total",
			Help: "借阅申请总数",
		},
	)

	LoanTransitionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "loan_transitions_total",
			Help: "借阅单状态流转总数",
		},
		[]string{"transition", "result"},
	)

	LoanTransitionDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "loan_transition_duration_seconds",
			Help:    "借阅单状态流转事务耗时（秒）",
			Buckets: []float64{0.001, 0.01, 0.1, 0.5, 1, 5},
		},
	)

	FinesAssessedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "fines_assessed_total",
			Help: "累计计收罚金（分）",
		},
	)
}

// ObserveTransition 记录一次状态流转结果
// 说明：封装常用的两个指标写入，调用方只关心流转名称和结果
func ObserveTransition(transition string, err error, seconds float64) {
	result := "success"
	if err != nil {
		result = "failure"
	}
	LoanTransitionsTotal.WithLabelValues(transition, result).Inc()
	LoanTransitionDuration.Observe(seconds)
}
