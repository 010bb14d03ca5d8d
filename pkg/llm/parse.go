package llm

import (
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strings"
)

// ErrParse 表示无法从模型输出中提取出期望结构的 JSON。
var ErrParse = errors.New("llm: could not extract structured output")

// Shape 是期望的 JSON 顶层结构。
type Shape int

const (
	ShapeArray Shape = iota
	ShapeObject
)

func (s Shape) brackets() (byte, byte) {
	if s == ShapeObject {
		return '{', '}'
	}
	return '[', ']'
}

var fencedBlockRe = regexp.MustCompile("(?s)```(?:json)?\\s*(.*?)\\s*```")

// ParseStructured 依次尝试：整体直接解析、``` 代码块内容、文本中第一个可解析的平衡括号片段。
func ParseStructured[T any](text string, shape Shape) (T, error) {
	var out T
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return out, fmt.Errorf("%w: empty text", ErrParse)
	}

	if decode(trimmed, shape, &out) {
		return out, nil
	}

	for _, m := range fencedBlockRe.FindAllStringSubmatch(trimmed, -1) {
		var candidate T
		if decode(strings.TrimSpace(m[1]), shape, &candidate) {
			return candidate, nil
		}
	}

	open, _ := shape.brackets()
	for i := 0; i < len(trimmed); i++ {
		if trimmed[i] != open {
			continue
		}
		span, ok := balancedSpan(trimmed[i:], shape)
		if !ok {
			continue
		}
		var candidate T
		if decode(span, shape, &candidate) {
			return candidate, nil
		}
	}

	return out, fmt.Errorf("%w: no %s found", ErrParse, shape)
}

func (s Shape) String() string {
	if s == ShapeObject {
		return "object"
	}
	return "array"
}

func decode(raw string, shape Shape, dst any) bool {
	open, _ := shape.brackets()
	if raw == "" || raw[0] != open {
		return false
	}
	return json.Unmarshal([]byte(raw), dst) == nil
}

// balancedSpan 返回从 s[0] 开始到对应闭合括号为止的片段，跳过字符串字面量中的括号。
func balancedSpan(s string, shape Shape) (string, bool) {
	open, closing := shape.brackets()
	depth := 0
	inString := false
	escaped := false
	for i := 0; i < len(s); i++ {
		c := s[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}
		switch c {
		case '"':
			inString = true
		case open:
			depth++
		case closing:
			depth--
			if depth == 0 {
				return s[:i+1], true
			}
		}
	}
	return "", false
}
