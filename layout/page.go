package layout

import (
	"fmt"
	"strings"

	"github.com/ByLCY/platen/errs"
)

// pagePresets 以 pt 为单位的纸张尺寸（纵向）。
var pagePresets = map[string][2]float64{
	"LETTER": {612, 792},
	"LEGAL":  {612, 1008},
	"A4":     {595.28, 841.89},
	"A5":     {419.53, 595.28},
}

// PageSize 返回预设纸张的宽高（pt），landscape 为 true 时交换宽高。
func PageSize(name string, landscape bool) (float64, float64, error) {
	base, ok := pagePresets[strings.ToUpper(strings.TrimSpace(name))]
	if !ok {
		return 0, 0, fmt.Errorf("%w: 暂不支持的纸张尺寸：%s", errs.ErrConfiguration, name)
	}
	if landscape {
		return base[1], base[0], nil
	}
	return base[0], base[1], nil
}

// ParseMargins 按 CSS 的简写规则解析 1 到 4 个边距值：
// 1 个值用于四边；2 个值依次为上下、左右；3 个值依次为上、左右、下；4 个值依次为上、右、下、左。
func ParseMargins(values []string) (Margins, error) {
	vals := make([]float64, 0, len(values))
	for _, v := range values {
		f, err := ParseLength(v)
		if err != nil {
			return Margins{}, err
		}
		vals = append(vals, f)
	}
	switch len(vals) {
	case 1:
		v := vals[0]
		return Margins{Top: v, Right: v, Bottom: v, Left: v}, nil
	case 2:
		return Margins{Top: vals[0], Right: vals[1], Bottom: vals[0], Left: vals[1]}, nil
	case 3:
		return Margins{Top: vals[0], Right: vals[1], Bottom: vals[2], Left: vals[1]}, nil
	case 4:
		return Margins{Top: vals[0], Right: vals[1], Bottom: vals[2], Left: vals[3]}, nil
	default:
		return Margins{}, fmt.Errorf("%w: 边距需要 1 到 4 个值，实际 %d 个", errs.ErrConfiguration, len(vals))
	}
}
