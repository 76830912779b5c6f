// Package fonts 提供内置字体的字节数据，渲染后端无需读取任何字体文件即可工作。
//
// 内置字体来自 Go 字体家族：无衬线族（Helvetica、Arial、Times 等均映射到它）与等宽族（Courier）。
package fonts

import (
	"fmt"
	"strings"

	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/gobolditalic"
	"golang.org/x/image/font/gofont/goitalic"
	"golang.org/x/image/font/gofont/gomono"
	"golang.org/x/image/font/gofont/gomonobold"
	"golang.org/x/image/font/gofont/gomonobolditalic"
	"golang.org/x/image/font/gofont/gomonoitalic"
	"golang.org/x/image/font/gofont/goregular"
)

// 内置字体族名称。
const (
	Sans = "sans"
	Mono = "mono"
)

var files = map[string][]byte{
	"Go-Regular.ttf":        goregular.TTF,
	"Go-Bold.ttf":           gobold.TTF,
	"Go-Italic.ttf":         goitalic.TTF,
	"Go-BoldItalic.ttf":     gobolditalic.TTF,
	"GoMono-Regular.ttf":    gomono.TTF,
	"GoMono-Bold.ttf":       gomonobold.TTF,
	"GoMono-Italic.ttf":     gomonoitalic.TTF,
	"GoMono-BoldItalic.ttf": gomonobolditalic.TTF,
}

// Load 返回内置字体的字节数据，path 可写为 "embed:Go-Regular.ttf" 或直接 "Go-Regular.ttf"。
func Load(path string) ([]byte, error) {
	name := strings.TrimPrefix(path, "embed:")
	data, ok := files[name]
	if !ok {
		return nil, fmt.Errorf("读取内置字体 %s 失败: 不存在", name)
	}
	return data, nil
}

// Family 把样式中的字体名映射到内置字体族。
func Family(name string) string {
	n := strings.ToLower(strings.TrimSpace(name))
	switch {
	case strings.Contains(n, "courier"), strings.Contains(n, "mono"):
		return Mono
	default:
		return Sans
	}
}

// File 返回内置字体族某个变体的文件名。
func File(family string, bold, italic bool) string {
	prefix := "Go"
	if Family(family) == Mono {
		prefix = "GoMono"
	}
	switch {
	case bold && italic:
		return prefix + "-BoldItalic.ttf"
	case bold:
		return prefix + "-Bold.ttf"
	case italic:
		return prefix + "-Italic.ttf"
	default:
		return prefix + "-Regular.ttf"
	}
}

// Face 返回内置字体族某个变体的字节数据。
func Face(family string, bold, italic bool) []byte {
	return files[File(family, bold, italic)]
}
