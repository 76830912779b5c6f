// Package errs 定义排版引擎的错误分类：配置错误、布局错误、资源错误与后端错误。
// 具体错误类型通过 Is 归入对应的哨兵错误，调用方可用 errors.Is 判断类别，
// 用 errors.As 取出出错的样式名、块序号等上下文。
package errs

import (
	"errors"
	"fmt"
)

// 错误类别哨兵。
var (
	ErrConfiguration  = errors.New("platen: configuration error")
	ErrLayout         = errors.New("platen: layout error")
	ErrAsset          = errors.New("platen: asset error")
	ErrBackend        = errors.New("platen: backend error")
	ErrRegistryFrozen = errors.New("platen: style registry is frozen")
	ErrNotFound       = errors.New("platen: not found")
)

// DuplicateStyleError 表示重复注册同名样式。
type DuplicateStyleError struct {
	Name string
}

func (e *DuplicateStyleError) Error() string {
	return fmt.Sprintf("样式 %q 已注册", e.Name)
}

func (e *DuplicateStyleError) Is(target error) bool { return target == ErrConfiguration }

// UnknownStyleError 表示引用了未注册的样式。
type UnknownStyleError struct {
	Name string
}

func (e *UnknownStyleError) Error() string {
	return fmt.Sprintf("样式 %q 未定义", e.Name)
}

func (e *UnknownStyleError) Is(target error) bool { return target == ErrConfiguration }

// ColumnWidthOverflowError 表示表格列宽之和超过可用宽度。
type ColumnWidthOverflowError struct {
	Total     float64
	Available float64
}

func (e *ColumnWidthOverflowError) Error() string {
	return fmt.Sprintf("表格列宽之和 %.2fpt 超过可用宽度 %.2fpt", e.Total, e.Available)
}

func (e *ColumnWidthOverflowError) Is(target error) bool { return target == ErrConfiguration }

// TableShapeError 表示某一行的单元格数量超过列数。
type TableShapeError struct {
	Row     int
	Cells   int
	Columns int
}

func (e *TableShapeError) Error() string {
	return fmt.Sprintf("表格第 %d 行有 %d 个单元格，但只有 %d 列", e.Row, e.Cells, e.Columns)
}

func (e *TableShapeError) Is(target error) bool { return target == ErrConfiguration }

// InvalidBlockError 表示内容块的构造参数不合法（例如 box 中出现 pagebreak）。
type InvalidBlockError struct {
	Kind   string
	Reason string
}

func (e *InvalidBlockError) Error() string {
	return fmt.Sprintf("%s 块不合法: %s", e.Kind, e.Reason)
}

func (e *InvalidBlockError) Is(target error) bool { return target == ErrConfiguration }

// BlockTooTallError 表示一个不可拆分的块比整页可用高度还高。
type BlockTooTallError struct {
	Index     int
	Kind      string
	Height    float64
	Available float64
}

func (e *BlockTooTallError) Error() string {
	return fmt.Sprintf("第 %d 个块（%s）高 %.2fpt，超过整页可用高度 %.2fpt", e.Index, e.Kind, e.Height, e.Available)
}

func (e *BlockTooTallError) Is(target error) bool { return target == ErrLayout }

// UnsplittableRowError 表示表格中某一行无法放入一整页（含重复表头）。
type UnsplittableRowError struct {
	Index     int
	Row       int
	Height    float64
	Available float64
}

func (e *UnsplittableRowError) Error() string {
	return fmt.Sprintf("第 %d 个块的表格第 %d 行高 %.2fpt，无法放入可用高度 %.2fpt", e.Index, e.Row, e.Height, e.Available)
}

func (e *UnsplittableRowError) Is(target error) bool { return target == ErrLayout }

// AssetError 表示资源（图片等）加载失败。该错误不是致命的：调用方应省略对应块并继续排版。
type AssetError struct {
	Path string
	Err  error
}

func (e *AssetError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("资源 %s 加载失败: %v", e.Path, e.Err)
	}
	return fmt.Sprintf("资源 %s 加载失败", e.Path)
}

func (e *AssetError) Unwrap() error { return e.Err }

func (e *AssetError) Is(target error) bool { return target == ErrAsset }

// BackendError 包装渲染后端返回的错误，Op 记录出错的操作名。
type BackendError struct {
	Backend string
	Op      string
	Err     error
}

func (e *BackendError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s.%s: %v", e.Backend, e.Op, e.Err)
	}
	return fmt.Sprintf("%s.%s: unknown error", e.Backend, e.Op)
}

func (e *BackendError) Unwrap() error { return e.Err }

func (e *BackendError) Is(target error) bool { return target == ErrBackend }
