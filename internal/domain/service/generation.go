package service

import "context"

// Provider LLM 提供方名称，对应 llm.providers 下的配置项
type Provider string

const (
	// ProviderReasoning 具备联网检索能力，用于选词与调研
	ProviderReasoning Provider = "reasoning"
	// ProviderGeneral 用于标题、大纲、正文等纯文本改写
	ProviderGeneral Provider = "general"
)

// TextGenerator 文本生成
type TextGenerator interface {
	Complete(ctx context.Context, provider Provider, system, user string, temperature float32, maxTokens int) (string, error)
}

// ImageGenerator 图片生成，返回临时 URL 或 data URL
type ImageGenerator interface {
	GenerateImage(ctx context.Context, prompt, size string) (string, error)
}
