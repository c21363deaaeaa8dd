package parser

import (
	"regexp"
	"strings"

	"z-article-ai-api/internal/domain/entity"
)

var (
	questionLine = regexp.MustCompile(`(?i)^\s*(?:[-*#>]+\s*)?\**\s*(?:q\d*\s*[.:：)]|question\s*\d*\s*[.:：]|質問\s*\d*\s*[:：]|問\s*\d*\s*[.:：])\s*\**\s*(.*)$`)
	answerLine   = regexp.MustCompile(`(?i)^\s*(?:[-*#>]+\s*)?\**\s*(?:a\d*\s*[.:：)]|answer\s*\d*\s*[.:：]|回答\s*\d*\s*[:：]|答\s*\d*\s*[.:：])\s*\**\s*(.*)$`)
)

// ParseFAQ 解析问答对。答案可以跨多行；不完整的问答被丢弃，没有任何问答时返回空切片
func ParseFAQ(text string) []entity.FAQEntry {
	entries := make([]entity.FAQEntry, 0)

	var q, a strings.Builder
	inAnswer := false
	flush := func() {
		question := cleanValue(q.String())
		answer := cleanValue(a.String())
		if question != "" && answer != "" {
			entries = append(entries, entity.FAQEntry{Question: question, Answer: answer})
		}
		q.Reset()
		a.Reset()
		inAnswer = false
	}

	for _, line := range strings.Split(StripCodeFence(text), "\n") {
		if m := questionLine.FindStringSubmatch(line); m != nil {
			flush()
			q.WriteString(m[1])
			continue
		}
		if m := answerLine.FindStringSubmatch(line); m != nil {
			if q.Len() == 0 {
				continue
			}
			if inAnswer {
				a.WriteString("\n")
			}
			a.WriteString(m[1])
			inAnswer = true
			continue
		}

		l := strings.TrimSpace(line)
		if l == "" {
			continue
		}
		switch {
		case inAnswer:
			a.WriteString("\n")
			a.WriteString(l)
		case q.Len() > 0:
			q.WriteString(" ")
			q.WriteString(l)
		}
	}
	flush()

	return entries
}
