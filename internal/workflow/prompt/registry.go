// Package prompt 管理各阶段的提示词模板
package prompt

import (
	"context"
	"embed"
	"fmt"
	"strings"
	"sync"

	einoprompt "github.com/cloudwego/eino/components/prompt"
	"github.com/cloudwego/eino/schema"
)

//go:embed templates/*.txt
var templatesFS embed.FS

type PromptID string

const (
	PromptKeywordV1      PromptID = "keyword_v1"
	PromptResearchV1     PromptID = "research_v1"
	PromptTitleV1        PromptID = "title_v1"
	PromptOutlineV1      PromptID = "outline_v1"
	PromptIntroductionV1 PromptID = "introduction_v1"
	PromptBodyV1         PromptID = "body_v1"
	PromptMetadataV1     PromptID = "metadata_v1"
	PromptFAQV1          PromptID = "faq_v1"
	PromptTagSlugV1      PromptID = "tag_slug_v1"
	PromptTranslateV1    PromptID = "translate_v1"
)

var knownPrompts = map[PromptID]struct{}{
	PromptKeywordV1:      {},
	PromptResearchV1:     {},
	PromptTitleV1:        {},
	PromptOutlineV1:      {},
	PromptIntroductionV1: {},
	PromptBodyV1:         {},
	PromptMetadataV1:     {},
	PromptFAQV1:          {},
	PromptTagSlugV1:      {},
	PromptTranslateV1:    {},
}

type Registry struct {
	mu    sync.RWMutex
	cache map[PromptID]einoprompt.ChatTemplate
}

func NewRegistry() *Registry {
	return &Registry{
		cache: make(map[PromptID]einoprompt.ChatTemplate),
	}
}

func (r *Registry) ChatTemplate(id PromptID) (einoprompt.ChatTemplate, error) {
	if r == nil {
		return nil, fmt.Errorf("prompt registry is nil")
	}

	r.mu.RLock()
	if tpl, ok := r.cache[id]; ok {
		r.mu.RUnlock()
		return tpl, nil
	}
	r.mu.RUnlock()

	r.mu.Lock()
	defer r.mu.Unlock()
	if tpl, ok := r.cache[id]; ok {
		return tpl, nil
	}

	if _, ok := knownPrompts[id]; !ok {
		return nil, fmt.Errorf("unknown prompt id: %s", id)
	}
	system, err := readEmbeddedText("templates/" + string(id) + ".system.txt")
	if err != nil {
		return nil, err
	}
	user, err := readEmbeddedText("templates/" + string(id) + ".user.txt")
	if err != nil {
		return nil, err
	}

	tpl := einoprompt.FromMessages(
		schema.FString,
		schema.SystemMessage(system),
		schema.UserMessage(user),
	)
	r.cache[id] = tpl
	return tpl, nil
}

// Render 填充模板变量，返回 system 与 user 提示词
func (r *Registry) Render(ctx context.Context, id PromptID, vars map[string]any) (system, user string, err error) {
	tpl, err := r.ChatTemplate(id)
	if err != nil {
		return "", "", err
	}
	msgs, err := tpl.Format(ctx, vars)
	if err != nil {
		return "", "", fmt.Errorf("failed to render prompt %s: %w", id, err)
	}
	for _, m := range msgs {
		switch m.Role {
		case schema.System:
			system = m.Content
		case schema.User:
			user = m.Content
		}
	}
	return system, user, nil
}

func readEmbeddedText(path string) (string, error) {
	b, err := templatesFS.ReadFile(path)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(b)), nil
}
