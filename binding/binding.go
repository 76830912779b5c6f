// Package binding 负责把 JSON 数据填入文档文本中的 ${...} 占位符。
package binding

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

var exprPattern = regexp.MustCompile(`\$\{([^}]+)\}`)

// MissingError 在严格模式下表示某个占位符既无法解析也没有默认值。
type MissingError struct {
	Path string
}

func (e *MissingError) Error() string {
	return fmt.Sprintf("数据中缺少字段 %q", e.Path)
}

// Binder 持有一份数据并负责插值。
//
// 占位符语法为 ${path.to.value}、${items[0].name} 以及带默认值的 ${path|默认值}。
// 非严格模式下无法解析的占位符原样保留；严格模式下 Interpolate 返回 *MissingError。
type Binder struct {
	Data   any
	Strict bool
}

// New 创建非严格模式的 Binder。
func New(data any) *Binder {
	return &Binder{Data: data}
}

// Interpolate 替换 text 中的所有占位符。严格模式下遇到第一个缺失字段即返回错误。
func (b *Binder) Interpolate(text string) (string, error) {
	if !strings.Contains(text, "${") {
		return text, nil
	}
	var firstErr error
	out := exprPattern.ReplaceAllStringFunc(text, func(match string) string {
		groups := exprPattern.FindStringSubmatch(match)
		if len(groups) < 2 {
			return match
		}
		path, fallback, hasFallback := splitFallback(groups[1])
		if path == "" {
			return match
		}
		if b.Data != nil {
			if val, ok := resolvePath(b.Data, path); ok && val != nil {
				return format(val)
			}
		}
		if hasFallback {
			return fallback
		}
		if b.Strict && firstErr == nil {
			firstErr = &MissingError{Path: path}
		}
		return match
	})
	if firstErr != nil {
		return "", firstErr
	}
	return out, nil
}

// Lookup 返回 path 指向的原始值（用于展开数组等非文本场景）。
// 路径不存在时，严格模式返回 *MissingError，否则返回 nil。
func (b *Binder) Lookup(path string) (any, error) {
	path = strings.TrimSpace(path)
	if b.Data != nil {
		if val, ok := resolvePath(b.Data, path); ok {
			return val, nil
		}
	}
	if b.Strict {
		return nil, &MissingError{Path: path}
	}
	return nil, nil
}

// Interpolate 将文本中的 ${path.to.value} 替换为 data 中的值。
// 若 data 为空或路径不存在，则使用默认值；没有默认值时返回原占位符。
func Interpolate(text string, data any) string {
	out, _ := New(data).Interpolate(text)
	return out
}

func splitFallback(expr string) (path, fallback string, ok bool) {
	path = expr
	if i := strings.IndexByte(expr, '|'); i != -1 {
		path = expr[:i]
		fallback = strings.TrimSpace(expr[i+1:])
		ok = true
	}
	return strings.TrimSpace(path), fallback, ok
}

// format 让 JSON 数字中的整数不带小数点输出。
func format(val any) string {
	switch v := val.(type) {
	case string:
		return v
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(v)
	default:
		return fmt.Sprint(v)
	}
}

func resolvePath(data any, path string) (any, bool) {
	current := data
	segments := strings.Split(path, ".")
	for _, segment := range segments {
		name, indexes := parseSegment(segment)
		if name != "" {
			var ok bool
			current, ok = descendMap(current, name)
			if !ok {
				return nil, false
			}
		}
		for _, idxStr := range indexes {
			idx, err := strconv.Atoi(idxStr)
			if err != nil {
				return nil, false
			}
			var ok bool
			current, ok = descendArray(current, idx)
			if !ok {
				return nil, false
			}
		}
	}
	return current, true
}

func parseSegment(segment string) (string, []string) {
	name := segment
	var indexes []string
	if i := strings.Index(segment, "["); i != -1 {
		name = segment[:i]
		rest := segment[i:]
		for len(rest) > 0 && rest[0] == '[' {
			end := strings.IndexByte(rest, ']')
			if end == -1 {
				break
			}
			indexes = append(indexes, rest[1:end])
			rest = rest[end+1:]
		}
	}
	return name, indexes
}

func descendMap(current any, key string) (any, bool) {
	switch c := current.(type) {
	case map[string]any:
		val, ok := c[key]
		return val, ok
	case map[string]string:
		val, ok := c[key]
		return val, ok
	default:
		return nil, false
	}
}

func descendArray(current any, idx int) (any, bool) {
	switch c := current.(type) {
	case []any:
		if idx < 0 || idx >= len(c) {
			return nil, false
		}
		return c[idx], true
	case []string:
		if idx < 0 || idx >= len(c) {
			return nil, false
		}
		return c[idx], true
	default:
		return nil, false
	}
}
