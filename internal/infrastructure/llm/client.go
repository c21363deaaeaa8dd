package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	einocb "github.com/cloudwego/eino/callbacks"
	"github.com/cloudwego/eino/components"
	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"

	"z-article-ai-api/internal/domain/service"
	"z-article-ai-api/pkg/logger"
)

// ErrEmptyCompletion 模型返回了空内容
var ErrEmptyCompletion = errors.New("llm: empty completion")

// TextClient 文本生成客户端，一次调用对应一组 system/user 提示词
type TextClient struct {
	source   ChatModelSource
	recorder service.LLMUsageRecorder
}

// NewTextClient 创建文本生成客户端，recorder 可为 nil
func NewTextClient(source ChatModelSource, recorder service.LLMUsageRecorder) *TextClient {
	return &TextClient{source: source, recorder: recorder}
}

// Complete 调用指定提供方生成文本。不做重试，错误直接返回。
func (c *TextClient) Complete(ctx context.Context, provider service.Provider, system, user string, temperature float32, maxTokens int) (string, error) {
	name := string(provider)
	ctx = service.WithProvider(ctx, name)

	chatModel, err := c.source.Get(ctx, name)
	if err != nil {
		return "", err
	}

	ctx = einocb.InitCallbacks(ctx, &einocb.RunInfo{
		Name:      service.WorkflowFromContext(ctx),
		Type:      "OpenAI",
		Component: components.ComponentOfChatModel,
	})

	msgs := make([]*schema.Message, 0, 2)
	if strings.TrimSpace(system) != "" {
		msgs = append(msgs, schema.SystemMessage(system))
	}
	msgs = append(msgs, schema.UserMessage(user))

	var opts []model.Option
	if temperature > 0 {
		opts = append(opts, model.WithTemperature(temperature))
	}
	if maxTokens > 0 {
		opts = append(opts, model.WithMaxTokens(maxTokens))
	}

	start := time.Now()
	out, err := chatModel.Generate(ctx, msgs, opts...)
	if err != nil {
		return "", fmt.Errorf("%s completion failed: %w", name, err)
	}
	if out == nil {
		return "", ErrEmptyCompletion
	}

	c.record(ctx, name, out, time.Since(start))

	content := strings.TrimSpace(out.Content)
	if content == "" {
		return "", ErrEmptyCompletion
	}
	return content, nil
}

func (c *TextClient) record(ctx context.Context, provider string, out *schema.Message, elapsed time.Duration) {
	if c.recorder == nil {
		return
	}

	in := service.LLMUsageInput{
		TenantID:   service.TenantFromContext(ctx),
		JobID:      service.JobFromContext(ctx),
		RunID:      service.RunFromContext(ctx),
		Workflow:   service.WorkflowFromContext(ctx),
		Provider:   provider,
		DurationMs: int(elapsed.Milliseconds()),
	}
	if out.ResponseMeta != nil && out.ResponseMeta.Usage != nil {
		in.PromptTokens = out.ResponseMeta.Usage.PromptTokens
		in.CompletionTokens = out.ResponseMeta.Usage.CompletionTokens
	}
	if m, ok := c.source.(interface{ ModelName(string) string }); ok {
		in.Model = m.ModelName(provider)
	}

	if err := c.recorder.Record(ctx, in); err != nil {
		logger.Warn(ctx, "failed to record llm usage", "error", err, "provider", provider)
	}
}
