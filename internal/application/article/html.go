package article

import (
	"fmt"
	"html"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"
)

// Heading 一个 <h2> 标题及其闭合标签结束位置
type Heading struct {
	Text     string
	CloseEnd int
}

// Insertion 在 Offset 处插入 HTML，Offset 相对原始字符串
type Insertion struct {
	Offset int
	HTML   string
}

const h2Close = "</h2>"

// FindH2 按文档顺序返回所有 <h2>，标签大小写不敏感，偏移始终相对 body 本身
func FindH2(body string) []Heading {
	var out []Heading
	from := 0
	for {
		closeStart := indexFold(body, h2Close, from)
		if closeStart < 0 {
			return out
		}
		closeEnd := closeStart + len(h2Close)

		inner := ""
		if open := lastIndexFold(body[:closeStart], "<h2"); open >= 0 {
			if gt := strings.IndexByte(body[open:closeStart], '>'); gt >= 0 {
				inner = body[open+gt+1 : closeStart]
			}
		}
		out = append(out, Heading{Text: PlainText(inner), CloseEnd: closeEnd})
		from = closeEnd
	}
}

// indexFold 从 from 开始查找 ASCII 标签 sub，逐字节比较，不改变 s 的长度
func indexFold(s, sub string, from int) int {
	for i := from; i+len(sub) <= len(s); i++ {
		if s[i] == sub[0] && strings.EqualFold(s[i:i+len(sub)], sub) {
			return i
		}
	}
	return -1
}

func lastIndexFold(s, sub string) int {
	for i := len(s) - len(sub); i >= 0; i-- {
		if s[i] == sub[0] && strings.EqualFold(s[i:i+len(sub)], sub) {
			return i
		}
	}
	return -1
}

// InsertAfter 按 Offset 从大到小依次插入，保证每个 Offset 都对应原始字符串位置
func InsertAfter(body string, points []Insertion) string {
	sorted := make([]Insertion, len(points))
	copy(sorted, points)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Offset > sorted[j].Offset })

	for _, p := range sorted {
		if p.Offset < 0 || p.Offset > len(body) {
			continue
		}
		body = body[:p.Offset] + p.HTML + body[p.Offset:]
	}
	return body
}

// FigureHTML 内嵌图片片段
func FigureHTML(url, alt string, width, height int) string {
	return fmt.Sprintf(`<figure class="inline-image"><img src="%s" alt="%s" width="%d" height="%d" loading="lazy"></figure>`,
		html.EscapeString(url), html.EscapeString(alt), width, height)
}

// PlainText 提取纯文本并折叠空白
func PlainText(fragment string) string {
	if strings.TrimSpace(fragment) == "" {
		return ""
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(fragment))
	if err != nil {
		return strings.TrimSpace(fragment)
	}
	return strings.Join(strings.Fields(doc.Text()), " ")
}

// TruncateRunes 按字符截断
func TruncateRunes(s string, max int) string {
	if max <= 0 {
		return ""
	}
	if utf8.RuneCountInString(s) <= max {
		return s
	}
	n := 0
	for i := range s {
		if n == max {
			return strings.TrimSpace(s[:i])
		}
		n++
	}
	return s
}
