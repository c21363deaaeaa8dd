package parser

import (
	"regexp"
	"strings"
)

// Label 一个字段及其可接受的行首标签（不区分大小写）
type Label struct {
	Field   string
	Aliases []string
}

// labelLine 匹配 "Label: value"，容忍列表符号、Markdown 加粗与全角冒号
var labelLine = regexp.MustCompile(`^\s*(?:[-*#>]+\s*)?\**\s*([^:：*]{1,40}?)\s*\**\s*[:：]\s*(.*)$`)

// ParseLabels 按行首标签抽取字段。同一字段以首次出现为准；
// 标签行本身没有值时取其后第一行非标签文本。
func ParseLabels(text string, labels ...Label) Result {
	index := make(map[string]string)
	order := make([]string, 0, len(labels))
	for _, l := range labels {
		order = append(order, l.Field)
		for _, a := range l.Aliases {
			index[normalizeLabel(a)] = l.Field
		}
	}

	fields := make(map[string]string)
	pending := ""
	for _, line := range strings.Split(StripCodeFence(text), "\n") {
		if m := labelLine.FindStringSubmatch(line); m != nil {
			if field, ok := index[normalizeLabel(m[1])]; ok {
				pending = ""
				if _, seen := fields[field]; seen {
					continue
				}
				if v := cleanValue(m[2]); v != "" {
					fields[field] = v
				} else {
					pending = field
				}
				continue
			}
		}
		if pending != "" {
			if v := cleanValue(line); v != "" {
				fields[pending] = v
				pending = ""
			}
		}
	}

	return newResult(fields, order)
}

func normalizeLabel(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	s = strings.NewReplacer("_", " ", "-", " ").Replace(s)
	return strings.Join(strings.Fields(s), " ")
}

// cleanValue 去掉包裹的加粗、引号与首尾空白
func cleanValue(s string) string {
	s = strings.TrimSpace(s)
	s = strings.Trim(s, "*")
	s = strings.TrimSpace(s)
	return TrimQuotes(s)
}

// TrimQuotes 去掉成对的引号或日文括号
func TrimQuotes(s string) string {
	pairs := [][2]string{{`"`, `"`}, {"'", "'"}, {"“", "”"}, {"「", "」"}, {"『", "』"}, {"`", "`"}}
	for _, p := range pairs {
		if len(s) >= len(p[0])+len(p[1]) && strings.HasPrefix(s, p[0]) && strings.HasSuffix(s, p[1]) {
			return strings.TrimSpace(s[len(p[0]) : len(s)-len(p[1])])
		}
	}
	return s
}

var listMarker = regexp.MustCompile(`^\s*(?:[-*•]|\d+[.)])\s+`)

var codeFence = regexp.MustCompile("(?m)^\\s*```[a-zA-Z0-9_-]*\\s*$")

// StripCodeFence 去掉 ``` 围栏行，保留内容
func StripCodeFence(text string) string {
	return strings.TrimSpace(codeFence.ReplaceAllString(text, ""))
}

// SplitList 按常见中日英分隔符拆分、去重（不区分大小写）并截断
func SplitList(s string, max int) []string {
	parts := strings.FieldsFunc(s, func(r rune) bool {
		switch r {
		case ',', '、', ';', '；', '，', '\n', '|':
			return true
		}
		return false
	})

	out := make([]string, 0, len(parts))
	seen := make(map[string]struct{}, len(parts))
	for _, p := range parts {
		p = cleanValue(listMarker.ReplaceAllString(p, ""))
		if p == "" {
			continue
		}
		key := strings.ToLower(p)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, p)
		if max > 0 && len(out) == max {
			break
		}
	}
	return out
}
