// Package parser 从模型的自由文本输出中抽取结构化字段
package parser

// Status 解析结果状态
type Status int

const (
	// Parsed 所有字段均已解析
	Parsed Status = iota
	// PartiallyParsed 至少一个字段缺失
	PartiallyParsed
)

func (s Status) String() string {
	if s == Parsed {
		return "parsed"
	}
	return "partially_parsed"
}

// Result 解析结果。缺失的字段不在 Fields 中，并按声明顺序列在 Missing 里
type Result struct {
	Status  Status
	Fields  map[string]string
	Missing []string
}

// Get 取字段值，缺失时为空串
func (r Result) Get(field string) string {
	return r.Fields[field]
}

// GetOr 取字段值，缺失时返回 fallback
func (r Result) GetOr(field, fallback string) string {
	if v, ok := r.Fields[field]; ok && v != "" {
		return v
	}
	return fallback
}

// Has 字段是否解析成功
func (r Result) Has(field string) bool {
	_, ok := r.Fields[field]
	return ok
}

func newResult(fields map[string]string, order []string) Result {
	res := Result{Status: Parsed, Fields: fields}
	for _, f := range order {
		if v, ok := fields[f]; !ok || v == "" {
			delete(fields, f)
			res.Missing = append(res.Missing, f)
		}
	}
	if len(res.Missing) > 0 {
		res.Status = PartiallyParsed
	}
	return res
}
