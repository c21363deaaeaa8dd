package parser

import (
	"bytes"
	"regexp"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/renderer/html"
)

// FieldHTML 正文 HTML
const FieldHTML = "html"

var (
	blockTag = regexp.MustCompile(`(?i)<(?:h[1-6]|p|ul|ol|section|div|table|blockquote)[\s>]`)

	markdown = goldmark.New(
		goldmark.WithExtensions(extension.GFM),
		goldmark.WithRendererOptions(html.WithUnsafe()),
	)
)

// ParseHTMLBody 把模型输出规整为 HTML：去掉代码围栏，纯 Markdown 时用 goldmark 渲染
func ParseHTMLBody(text string) Result {
	body := StripCodeFence(text)
	if body == "" {
		return newResult(map[string]string{}, []string{FieldHTML})
	}
	if !blockTag.MatchString(body) {
		var buf bytes.Buffer
		if err := markdown.Convert([]byte(body), &buf); err == nil {
			body = strings.TrimSpace(buf.String())
		}
	}
	return newResult(map[string]string{FieldHTML: body}, []string{FieldHTML})
}
