package parser

import (
	"strings"

	"z-article-ai-api/internal/domain/entity"
)

// 字段名
const (
	FieldKeyword         = "keyword"
	FieldPersona         = "persona"
	FieldExplicitNeed    = "explicit_need"
	FieldLatentNeed      = "latent_need"
	FieldGoal            = "goal"
	FieldRequirements    = "requirements"
	FieldRelatedKeywords = "related_keywords"
	FieldTitle           = "title"
	FieldOutline         = "outline"
	FieldMetaTitle       = "meta_title"
	FieldMetaDescription = "meta_description"
	FieldSummary         = "summary"
	FieldSlug            = "slug"
)

// MaxRelatedKeywords 调研阶段保留的相关关键词上限
const MaxRelatedKeywords = 4

var researchLabels = []Label{
	{Field: FieldPersona, Aliases: []string{"persona", "target audience", "audience", "ペルソナ", "ターゲット"}},
	{Field: FieldExplicitNeed, Aliases: []string{"explicit need", "explicit needs", "顕在ニーズ"}},
	{Field: FieldLatentNeed, Aliases: []string{"latent need", "latent needs", "潜在ニーズ"}},
	{Field: FieldGoal, Aliases: []string{"goal", "article goal", "記事のゴール", "ゴール"}},
	{Field: FieldRequirements, Aliases: []string{"requirements", "content requirements", "必要な要素"}},
	{Field: FieldRelatedKeywords, Aliases: []string{"related keywords", "keywords", "関連キーワード"}},
}

// ParseKeyword 取 "Keyword:" 标签值，没有标签时取第一行非空文本
func ParseKeyword(text string) Result {
	res := ParseLabels(text, Label{Field: FieldKeyword, Aliases: []string{"keyword", "キーワード"}})
	if res.Has(FieldKeyword) {
		return res
	}
	for _, line := range strings.Split(StripCodeFence(text), "\n") {
		v := cleanValue(listMarker.ReplaceAllString(line, ""))
		v = TrimQuotes(strings.TrimRight(v, ".。"))
		if v != "" {
			return newResult(map[string]string{FieldKeyword: v}, []string{FieldKeyword})
		}
	}
	return res
}

// ParseResearch 解析调研结果
func ParseResearch(text string) (entity.ResearchBrief, Result) {
	res := ParseLabels(text, researchLabels...)
	brief := entity.ResearchBrief{
		Persona:         res.Get(FieldPersona),
		ExplicitNeed:    res.Get(FieldExplicitNeed),
		LatentNeed:      res.Get(FieldLatentNeed),
		Goal:            res.Get(FieldGoal),
		Requirements:    res.Get(FieldRequirements),
		RelatedKeywords: SplitList(res.Get(FieldRelatedKeywords), MaxRelatedKeywords),
	}
	return brief, res
}

// ParseTitle 解析 "Title:" 行
func ParseTitle(text string) Result {
	return ParseLabels(text, Label{Field: FieldTitle, Aliases: []string{"title", "タイトル"}})
}

// ParseOutline 保留含 <h2>/<h3> 的行
func ParseOutline(text string) Result {
	var lines []string
	for _, line := range strings.Split(StripCodeFence(text), "\n") {
		l := strings.TrimSpace(line)
		lower := strings.ToLower(l)
		if strings.Contains(lower, "<h2") || strings.Contains(lower, "<h3") {
			lines = append(lines, l)
		}
	}
	return newResult(map[string]string{FieldOutline: strings.Join(lines, "\n")}, []string{FieldOutline})
}

// ParseMetadata 解析 meta 标题、描述与摘要
func ParseMetadata(text string) Result {
	return ParseLabels(text,
		Label{Field: FieldMetaTitle, Aliases: []string{"meta title", "metatitle", "seo title"}},
		Label{Field: FieldMetaDescription, Aliases: []string{"meta description", "metadescription", "description"}},
		Label{Field: FieldSummary, Aliases: []string{"summary", "excerpt", "要約"}},
	)
}

// ParseSlug 解析模型给出的拉丁字母 slug
func ParseSlug(text string) Result {
	res := ParseLabels(text, Label{Field: FieldSlug, Aliases: []string{"slug"}})
	if res.Has(FieldSlug) {
		return res
	}
	first, _, _ := strings.Cut(StripCodeFence(text), "\n")
	return newResult(map[string]string{FieldSlug: cleanValue(first)}, []string{FieldSlug})
}

// ParseTranslation 翻译结果：去掉 "Translation:" 前缀与引号
func ParseTranslation(text string) string {
	res := ParseLabels(text, Label{Field: "translation", Aliases: []string{"translation", "translated"}})
	if v := res.Get("translation"); v != "" {
		return v
	}
	first, _, _ := strings.Cut(StripCodeFence(text), "\n")
	return cleanValue(first)
}
