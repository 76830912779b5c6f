// Package assets 在排版开始前加载图片等外部资源，并把像素尺寸换算为 pt。
//
// 排版阶段不做任何 I/O：图片在构建内容模型时解析完毕，以固定宽高参与测量。
package assets

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"

	"github.com/ByLCY/platen/errs"
)

// DefaultDPI 是未指定分辨率时使用的像素密度，72 DPI 下 1 像素等于 1pt。
const DefaultDPI = 72.0

// Image 是解码后的图片及其自然尺寸（pt）。
type Image struct {
	Path   string
	Format string
	Width  float64
	Height float64
	Pixels image.Image
}

// Loader 从目录或 fs.FS 读取图片。同一路径只解码一次，可在多个文档构建之间共享。
type Loader struct {
	// FS 非空时相对路径从 FS 读取，否则相对 BaseDir 读取。
	FS      fs.FS
	BaseDir string
	DPI     float64

	mu    sync.Mutex
	cache map[string]Image
}

// NewLoader 创建以 baseDir 为根目录的加载器。
func NewLoader(baseDir string) *Loader {
	return &Loader{BaseDir: baseDir, DPI: DefaultDPI}
}

// LoadImage 读取并解码图片。文件不存在时返回的 *errs.AssetError 同时满足 errors.Is(err, errs.ErrNotFound)。
func (l *Loader) LoadImage(path string) (Image, error) {
	if path == "" {
		return Image{}, &errs.AssetError{Path: path, Err: fmt.Errorf("%w: 图片路径为空", errs.ErrNotFound)}
	}
	l.mu.Lock()
	if img, ok := l.cache[path]; ok {
		l.mu.Unlock()
		return img, nil
	}
	l.mu.Unlock()

	data, err := l.read(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			err = fmt.Errorf("%w: %v", errs.ErrNotFound, err)
		}
		return Image{}, &errs.AssetError{Path: path, Err: err}
	}
	pixels, format, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return Image{}, &errs.AssetError{Path: path, Err: fmt.Errorf("解码图片失败: %w", err)}
	}

	dpi := l.DPI
	if dpi <= 0 {
		dpi = DefaultDPI
	}
	b := pixels.Bounds()
	img := Image{
		Path:   path,
		Format: format,
		Width:  float64(b.Dx()) * 72 / dpi,
		Height: float64(b.Dy()) * 72 / dpi,
		Pixels: pixels,
	}

	l.mu.Lock()
	if l.cache == nil {
		l.cache = map[string]Image{}
	}
	l.cache[path] = img
	l.mu.Unlock()
	return img, nil
}

func (l *Loader) read(path string) ([]byte, error) {
	if filepath.IsAbs(path) {
		return os.ReadFile(path)
	}
	if l.FS != nil {
		return fs.ReadFile(l.FS, filepath.ToSlash(path))
	}
	return os.ReadFile(filepath.Join(l.BaseDir, path))
}

// Fit 按比例缩放图片，使其宽度为 width；width 或 height 只给出一个时保持宽高比。
func (img Image) Fit(width, height float64) (float64, float64) {
	switch {
	case width > 0 && height > 0:
		return width, height
	case width > 0 && img.Width > 0:
		return width, img.Height * width / img.Width
	case height > 0 && img.Height > 0:
		return img.Width * height / img.Height, height
	default:
		return img.Width, img.Height
	}
}
