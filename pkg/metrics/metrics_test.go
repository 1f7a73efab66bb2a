package metrics

import (
	"errors"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
)

// TestInitMetrics 测试指标初始化
func TestInitMetrics(t *testing.T) {
	InitMetrics()

	if HTTPRequestsTotal == nil {
		t.Error("HTTPRequestsTotal未初始化")
	}
	if HTTPRequestDuration == nil {
		t.Error("HTTPRequestDuration未初始化")
	}
	if HTTPRequestsInProgress == nil {
		t.Error("HTTPRequestsInProgress未初始化")
	}
	if LoansRequestedTotal == nil {
		t.Error("LoansRequestedTotal未初始化")
	}
	if LoanTransitionsTotal == nil {
		t.Error("LoanTransitionsTotal未初始化")
	}
	if FinesAssessedTotal == nil {
		t.Error("FinesAssessedTotal未初始化")
	}

	// 重复调用应安全（幂等）
	InitMetrics()

	t.Log("✅ 所有指标初始化成功")
}

// TestLoansRequestedCounter 测试借阅申请计数器
func TestLoansRequestedCounter(t *testing.T) {
	InitMetrics()

	initialValue := getCounterValue(t, LoansRequestedTotal)

	LoansRequestedTotal.Inc()
	LoansRequestedTotal.Inc()
	LoansRequestedTotal.Inc()

	value := getCounterValue(t, LoansRequestedTotal)
	if value != initialValue+3 {
		t.Errorf("Counter值错误: expected=%f, got=%f", initialValue+3, value)
	}

	t.Log("✅ 借阅申请计数器测试通过")
}

// TestObserveTransition 测试状态流转指标封装
func TestObserveTransition(t *testing.T) {
	InitMetrics()

	// 成功流转
	ObserveTransition("approve_borrow", nil, 0.05)
	ObserveTransition("approve_borrow", nil, 0.1)

	// 失败流转
	ObserveTransition("approve_borrow", errors.New("无可借副本"), 0.02)

	successCount := getCounterVecValue(t, LoanTransitionsTotal, map[string]string{
		"transition": "approve_borrow",
		"result":     "success",
	})
	if successCount != 2 {
		t.Errorf("成功流转计数错误: expected=2, got=%f", successCount)
	}

	failureCount := getCounterVecValue(t, LoanTransitionsTotal, map[string]string{
		"transition": "approve_borrow",
		"result":     "failure",
	})
	if failureCount != 1 {
		t.Errorf("失败流转计数错误: expected=1, got=%f", failureCount)
	}

	// 成功与失败都应记录耗时
	count := getHistogramCount(t, LoanTransitionDuration)
	if count < 3 {
		t.Errorf("流转耗时观测次数错误: expected>=3, got=%d", count)
	}

	t.Log("✅ 状态流转指标测试通过")
}

// TestFinesAssessed 测试罚金累计指标
func TestFinesAssessed(t *testing.T) {
	InitMetrics()

	initialValue := getCounterValue(t, FinesAssessedTotal)

	// 两笔罚金：3天和1天（每天1000分）
	FinesAssessedTotal.Add(3000)
	FinesAssessedTotal.Add(1000)

	value := getCounterValue(t, FinesAssessedTotal)
	if value != initialValue+4000 {
		t.Errorf("罚金累计错误: expected=%f, got=%f", initialValue+4000, value)
	}

	t.Log("✅ 罚金累计指标测试通过")
}

// TestInProgressGauge 测试正在处理请求数Gauge
func TestInProgressGauge(t *testing.T) {
	InitMetrics()

	HTTPRequestsInProgress.Set(0)

	HTTPRequestsInProgress.Inc()
	HTTPRequestsInProgress.Inc()
	if v := getGaugeValue(t, HTTPRequestsInProgress); v != 2 {
		t.Errorf("Gauge递增后值错误: expected=2, got=%f", v)
	}

	HTTPRequestsInProgress.Dec()
	HTTPRequestsInProgress.Dec()
	if v := getGaugeValue(t, HTTPRequestsInProgress); v != 0 {
		t.Errorf("Gauge递减后值错误: expected=0, got=%f", v)
	}

	t.Log("✅ Gauge测试通过")
}

// 辅助函数：获取Counter值
func getCounterValue(t *testing.T, counter prometheus.Counter) float64 {
	var metric dto.Metric
	if err := counter.Write(&metric); err != nil {
		t.Fatalf("读取Counter值失败: %v", err)
	}
	return metric.Counter.GetValue()
}

// 辅助函数：获取CounterVec值
func getCounterVecValue(t *testing.T, counterVec *prometheus.CounterVec, labels map[string]string) float64 {
	var metric dto.Metric
	counter := counterVec.With(labels)
	if err := counter.(prometheus.Counter).Write(&metric); err != nil {
		t.Fatalf("读取CounterVec值失败: %v", err)
	}
	return metric.Counter.GetValue()
}

// 辅助函数：获取Gauge值
func getGaugeValue(t *testing.T, gauge prometheus.Gauge) float64 {
	var metric dto.Metric
	if err := gauge.Write(&metric); err != nil {
		t.Fatalf("读取Gauge值失败: %v", err)
	}
	return metric.Gauge.GetValue()
}

// 辅助函数：获取Histogram观测次数
func getHistogramCount(t *testing.T, histogram prometheus.Histogram) uint64 {
	var metric dto.Metric
	if err := histogram.Write(&metric); err != nil {
		t.Fatalf("读取Histogram值失败: %v", err)
	}
	return metric.Histogram.GetSampleCount()
}
