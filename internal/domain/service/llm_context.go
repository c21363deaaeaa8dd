package service

import (
	"context"
	"strings"
)

type llmCtxKey string

const (
	llmCtxKeyWorkflow llmCtxKey = "llm_workflow"
	llmCtxKeyProvider llmCtxKey = "llm_provider"
	llmCtxKeyTenant   llmCtxKey = "llm_tenant"
	llmCtxKeyJob      llmCtxKey = "llm_job"
	llmCtxKeyRun      llmCtxKey = "llm_run"
)

// WithWorkflow 标记当前调用所属的流水线阶段
func WithWorkflow(ctx context.Context, workflow string) context.Context {
	return withTrimmed(ctx, llmCtxKeyWorkflow, workflow)
}

func WithProvider(ctx context.Context, provider string) context.Context {
	return withTrimmed(ctx, llmCtxKeyProvider, provider)
}

func WithWorkflowProvider(ctx context.Context, workflow, provider string) context.Context {
	return WithProvider(WithWorkflow(ctx, workflow), provider)
}

// WithRun 绑定计费归属：租户、任务与本次运行
func WithRun(ctx context.Context, tenantID, jobID, runID string) context.Context {
	ctx = withTrimmed(ctx, llmCtxKeyTenant, tenantID)
	ctx = withTrimmed(ctx, llmCtxKeyJob, jobID)
	return withTrimmed(ctx, llmCtxKeyRun, runID)
}

func WorkflowFromContext(ctx context.Context) string {
	return valueOr(ctx, llmCtxKeyWorkflow, "unknown")
}

func ProviderFromContext(ctx context.Context) string {
	return valueOr(ctx, llmCtxKeyProvider, "unknown")
}

func TenantFromContext(ctx context.Context) string {
	return valueOr(ctx, llmCtxKeyTenant, "")
}

func JobFromContext(ctx context.Context) string {
	return valueOr(ctx, llmCtxKeyJob, "")
}

func RunFromContext(ctx context.Context) string {
	return valueOr(ctx, llmCtxKeyRun, "")
}

func withTrimmed(ctx context.Context, key llmCtxKey, v string) context.Context {
	if ctx == nil {
		return nil
	}
	v = strings.TrimSpace(v)
	if v == "" {
		return ctx
	}
	return context.WithValue(ctx, key, v)
}

func valueOr(ctx context.Context, key llmCtxKey, fallback string) string {
	if ctx == nil {
		return fallback
	}
	s, ok := ctx.Value(key).(string)
	if !ok || strings.TrimSpace(s) == "" {
		return fallback
	}
	return s
}
