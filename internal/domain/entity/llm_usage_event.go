// Package entity 定义领域实体
package entity

import "time"

type LLMUsageEvent struct {
	ID               string    `json:"id" gorm:"type:varchar(64);primaryKey"`
	TenantID         string    `json:"tenant_id" gorm:"type:varchar(64);index:idx_llm_usage_tenant_created,priority:1;not null"`
	JobID            string    `json:"job_id,omitempty" gorm:"type:varchar(64);index"`
	RunID            string    `json:"run_id,omitempty" gorm:"type:varchar(64)"`
	Workflow         string    `json:"workflow" gorm:"type:varchar(32)"`
	Provider         string    `json:"provider" gorm:"type:varchar(32);not null"`
	Model            string    `json:"model" gorm:"type:varchar(64);not null"`
	TokensPrompt     int       `json:"tokens_prompt" gorm:"not null;default:0"`
	TokensCompletion int       `json:"tokens_completion" gorm:"not null;default:0"`
	DurationMs       int       `json:"duration_ms" gorm:"not null;default:0"`
	CreatedAt        time.Time `json:"created_at" gorm:"autoCreateTime;index:idx_llm_usage_tenant_created,priority:2"`
}

func (LLMUsageEvent) TableName() string {
	return "llm_usage_events"
}
