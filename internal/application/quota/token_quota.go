// Package quota 提供租户配额相关能力
package quota

import (
	"context"
	"fmt"
	"time"

	"z-article-ai-api/internal/domain/entity"
	"z-article-ai-api/internal/domain/repository"
)

// TokenQuotaExceededError 表示租户 Token 日配额已耗尽
type TokenQuotaExceededError struct {
	TenantID string
	Max      int64
	Used     int64
}

func (e TokenQuotaExceededError) Error() string {
	return fmt.Sprintf("token quota exceeded: tenant=%s used=%d max=%d", e.TenantID, e.Used, e.Max)
}

// TokenQuotaChecker 用于检查租户 Token 日配额
type TokenQuotaChecker struct {
	tenantRepo    repository.TenantRepository
	llmRepo       repository.LLMUsageEventRepository
	defaultBudget int64
	now           func() time.Time
}

// NewTokenQuotaChecker defaultBudget 在租户未单独配置时生效，0 表示不限
func NewTokenQuotaChecker(tenantRepo repository.TenantRepository, llmRepo repository.LLMUsageEventRepository, defaultBudget int64) *TokenQuotaChecker {
	return &TokenQuotaChecker{
		tenantRepo:    tenantRepo,
		llmRepo:       llmRepo,
		defaultBudget: defaultBudget,
		now:           time.Now,
	}
}

// Check 检查租户当日是否还有 Token 配额
func (c *TokenQuotaChecker) Check(ctx context.Context, tenantID string) error {
	budget := c.defaultBudget
	if c.tenantRepo != nil {
		tenant, err := c.tenantRepo.GetByID(ctx, tenantID)
		if err != nil {
			return err
		}
		if tenant != nil && tenant.Quota != nil && tenant.Quota.MaxTokensPerDay > 0 {
			budget = tenant.Quota.MaxTokensPerDay
		}
	}
	_, _, err := c.CheckDailyTokens(ctx, tenantID, &entity.TenantQuota{MaxTokensPerDay: budget})
	return err
}

// CheckDailyTokens 检查租户是否还有当日 Token 配额。
// 返回：used/max（便于客户端展示），以及是否超过配额的 error。
func (c *TokenQuotaChecker) CheckDailyTokens(ctx context.Context, tenantID string, quota *entity.TenantQuota) (used int64, max int64, err error) {
	if quota == nil || quota.MaxTokensPerDay <= 0 || c.llmRepo == nil {
		return 0, 0, nil
	}

	now := c.now().UTC()
	start := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	end := start.Add(24 * time.Hour)

	used, err = c.llmRepo.GetTokenUsage(ctx, tenantID, start, end)
	if err != nil {
		return 0, quota.MaxTokensPerDay, err
	}
	if used >= quota.MaxTokensPerDay {
		return used, quota.MaxTokensPerDay, TokenQuotaExceededError{
			TenantID: tenantID,
			Max:      quota.MaxTokensPerDay,
			Used:     used,
		}
	}
	return used, quota.MaxTokensPerDay, nil
}
