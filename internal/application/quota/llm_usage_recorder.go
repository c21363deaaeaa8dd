package quota

import (
	"context"
	"fmt"
	"strings"

	"z-article-ai-api/internal/domain/entity"
	"z-article-ai-api/internal/domain/repository"
	"z-article-ai-api/internal/domain/service"
)

// LLMUsageRecorder 记录每次调用的 token 流水，并累加到所属任务
type LLMUsageRecorder struct {
	usageRepo repository.LLMUsageEventRepository
	jobRepo   repository.JobRepository
}

func NewLLMUsageRecorder(usageRepo repository.LLMUsageEventRepository, jobRepo repository.JobRepository) *LLMUsageRecorder {
	return &LLMUsageRecorder{
		usageRepo: usageRepo,
		jobRepo:   jobRepo,
	}
}

func (r *LLMUsageRecorder) Record(ctx context.Context, in service.LLMUsageInput) error {
	if r == nil || r.usageRepo == nil {
		return nil
	}

	tenantID := strings.TrimSpace(in.TenantID)
	if tenantID == "" {
		return nil
	}
	if in.PromptTokens < 0 || in.CompletionTokens < 0 {
		return fmt.Errorf("invalid token usage")
	}

	evt := &entity.LLMUsageEvent{
		TenantID:         tenantID,
		JobID:            strings.TrimSpace(in.JobID),
		RunID:            strings.TrimSpace(in.RunID),
		Provider:         strings.TrimSpace(in.Provider),
		Model:            strings.TrimSpace(in.Model),
		Workflow:         strings.TrimSpace(in.Workflow),
		TokensPrompt:     in.PromptTokens,
		TokensCompletion: in.CompletionTokens,
		DurationMs:       in.DurationMs,
	}
	if err := r.usageRepo.Create(ctx, evt); err != nil {
		return err
	}

	if r.jobRepo != nil && evt.JobID != "" && in.PromptTokens+in.CompletionTokens > 0 {
		return r.jobRepo.AddTokens(ctx, evt.JobID, in.PromptTokens, in.CompletionTokens)
	}
	return nil
}
