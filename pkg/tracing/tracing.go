// Package tracing 提供基于OpenTelemetry的分布式追踪初始化
//
// 核心概念：
// 1. Trace（追踪）：一个完整的请求链路，包含多个Span
// 2. Span（跨度）：一个操作单元（如"ApproveBorrow事务"），记录耗时与状态
// 3. SpanContext：跨组件传递的TraceID/SpanID
//
// 借阅生命周期的每次状态流转都在一个Span内执行，
// 在Jaeger UI中可以直接看到某次审批在锁等待上花了多少时间。
package tracing

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.24.0"
	"go.opentelemetry.io/otel/trace"
)

// InitTracer 初始化全局Tracer Provider
//
// 参数：
//   - serviceName: 服务名称（在Jaeger UI中显示）
//   - endpoint: Collector的OTLP gRPC端点（如：localhost:4317）
//
// 返回：
//   - shutdown: 关闭函数（程序退出时调用，确保数据刷新）
//   - error: 初始化失败时返回错误
//
// 设计要点：
// 1. 使用OTLP协议，厂商中立，可无缝切换到Zipkin、Datadog
// 2. 采样策略：AlwaysSample适合开发/测试环境，
//    生产环境建议TraceIDRatioBased（如1%采样）
func InitTracer(serviceName, endpoint string) (func(context.Context) error, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	// 1. 创建OTLP gRPC Exporter
	exporter, err := otlptracegrpc.New(
		ctx,
		otlptracegrpc.WithEndpoint(endpoint),
		otlptracegrpc.WithInsecure(), // 禁用TLS（生产环境应启用）
	)
	if err != nil {
		return nil, fmt.Errorf("创建OTLP exporter失败: %w", err)
	}

	// 2. 创建Resource（资源属性）
	// service.name是必需属性，用于在Jaeger UI中分组
	res, err := resource.New(
		ctx,
		resource.WithAttributes(
			semconv.ServiceName(serviceName),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("创建资源属性失败: %w", err)
	}

	// 3. 创建Tracer Provider
	tp := sdktrace.NewTracerProvider(
		sdktrace.WithSampler(sdktrace.AlwaysSample()),
		// BatchSpanProcessor批量发送Span（性能优于SimpleSpanProcessor）
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(res),
	)

	// 4. 设置全局TracerProvider与传播器
	// 全局Provider让业务代码直接用otel.Tracer()获取Tracer
	otel.SetTracerProvider(tp)
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	))

	return tp.Shutdown, nil
}

// Tracer 获取本服务的Tracer
func Tracer() trace.Tracer {
	return otel.Tracer("library")
}
