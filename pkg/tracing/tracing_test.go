package tracing

import (
	"context"
	"testing"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

// TestInitTracer 测试Tracer初始化
func TestInitTracer(t *testing.T) {
	shutdown, err := InitTracer("library-test", "localhost:4317")
	if err != nil {
		t.Fatalf("初始化Tracer失败: %v", err)
	}
	defer func() {
		if err := shutdown(context.Background()); err != nil {
			t.Logf("关闭Tracer: %v", err)
		}
	}()

	if Tracer() == nil {
		t.Error("全局TracerProvider未设置")
	}

	t.Log("✅ Tracer初始化成功")
}

// TestSpanCreation 测试Span创建与父子关系
func TestSpanCreation(t *testing.T) {
	shutdown, err := InitTracer("library-test", "localhost:4317")
	if err != nil {
		t.Fatalf("初始化Tracer失败: %v", err)
	}
	defer shutdown(context.Background())

	t.Run("创建根Span", func(t *testing.T) {
		ctx := context.Background()

		_, span := Tracer().Start(ctx, "ApproveBorrow")
		defer span.End()

		if !span.SpanContext().IsValid() {
			t.Error("Span无效")
		}

		traceID := span.SpanContext().TraceID().String()
		if traceID == "" || traceID == "00000000000000000000000000000000" {
			t.Errorf("TraceID无效: %s", traceID)
		}

		t.Logf("✅ 根Span创建成功, TraceID=%s", traceID)
	})

	t.Run("子Span继承TraceID", func(t *testing.T) {
		ctx := context.Background()

		ctx, rootSpan := Tracer().Start(ctx, "RequestReturn")
		defer rootSpan.End()

		_, childSpan := Tracer().Start(ctx, "CalculateFine")
		defer childSpan.End()

		if childSpan.SpanContext().TraceID() != rootSpan.SpanContext().TraceID() {
			t.Errorf("子Span的TraceID不匹配: root=%s, child=%s",
				rootSpan.SpanContext().TraceID(), childSpan.SpanContext().TraceID())
		}
		if childSpan.SpanContext().SpanID() == rootSpan.SpanContext().SpanID() {
			t.Error("子Span的SpanID不应与根Span相同")
		}

		t.Logf("✅ 子Span创建成功, TraceID=%s", childSpan.SpanContext().TraceID())
	})
}

// TestSpanBusinessAttributes 测试业务属性与状态记录
func TestSpanBusinessAttributes(t *testing.T) {
	shutdown, err := InitTracer("library-test", "localhost:4317")
	if err != nil {
		t.Fatalf("初始化Tracer失败: %v", err)
	}
	defer shutdown(context.Background())

	ctx := context.Background()
	_, span := Tracer().Start(ctx, "ApproveReturn")
	defer span.End()

	// 记录借阅审批的业务属性
	span.SetAttributes(
		attribute.Int("loan_id", 42),
		attribute.Int("admin_id", 1),
		attribute.Int("days_overdue", 3),
		attribute.Int64("fine", 3000),
	)

	// 模拟失败路径
	span.RecordError(context.DeadlineExceeded)
	span.SetStatus(codes.Error, "锁等待超时")

	t.Log("✅ Span属性与状态设置成功（可在Jaeger UI查看）")
}
