// Package renderer 定义渲染后端的公共接口与绘制辅助函数。
package renderer

import (
	"github.com/ByLCY/platen/content"
	"github.com/ByLCY/platen/layout"
	"github.com/ByLCY/platen/style"
)

// Renderer 将布局结果输出为最终文件，例如 PDF 或图像。
// Render 返回生成的二进制数据（例如 PDF 字节切片）以及可能的错误。
type Renderer interface {
	Render(result *layout.Result) ([]byte, error)
}

// Backend 同时负责测量与绘制，排版时使用它作为 layout.Measurer 可以保证测量结果与绘制一致。
type Backend interface {
	Renderer
	layout.Measurer
}

// RowFill 返回表格行的背景色：表头使用 HeaderBackground，带状行使用 BandBackground。
// 第二个返回值为 false 时该行不填充。
func RowFill(rg *layout.RowGroup, tbl content.Table) (style.Color, bool) {
	switch {
	case rg == nil:
		return style.Color{}, false
	case rg.IsHeader && !tbl.HeaderBackground.IsZero():
		return tbl.HeaderBackground, true
	case rg.Banded && !tbl.BandBackground.IsZero():
		return tbl.BandBackground, true
	default:
		return style.Color{}, false
	}
}

// Walk 按绘制顺序遍历页面上的块：box 先交给 fn 绘制背景，再依次遍历子块。
// 表格行组作为一个整体交给 fn。
func Walk(blocks []layout.Placed, fn func(p layout.Placed) error) error {
	for _, p := range blocks {
		if err := fn(p); err != nil {
			return err
		}
		if len(p.Children) > 0 {
			if err := Walk(p.Children, fn); err != nil {
				return err
			}
		}
	}
	return nil
}
