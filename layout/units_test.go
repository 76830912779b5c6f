package layout

import (
	"errors"
	"math"
	"testing"

	"github.com/ByLCY/platen/errs"
)

// TestPtMmRoundTrip 验证 pt↔mm 换算的往返精度（允许极小的浮点误差）。
func TestPtMmRoundTrip(t *testing.T) {
	samples := []float64{0, 0.001, 1, 12, 14.4, 72, 96, 144, 1000}
	for _, pt := range samples {
		mm := pt * PtToMm
		back := mm * MmToPt
		if diff := math.Abs(back - pt); diff > 1e-9 {
			t.Fatalf("pt→mm→pt 往返误差过大: in=%gpt mm=%g back=%g diff=%g", pt, mm, back, diff)
		}
	}
}

// TestParseLength 覆盖常见单位到 pt 的转换。
func TestParseLength(t *testing.T) {
	cases := []struct {
		in   string
		want float64
	}{
		{"72", 72},
		{"12pt", 12},
		{"1in", 72},
		{"0.75in", 54},
		{"25.4mm", 72},
		{"2.54cm", 72},
		{" 10 PT ", 10},
	}
	for _, tc := range cases {
		got, err := ParseLength(tc.in)
		if err != nil {
			t.Fatalf("解析 %q 失败: %v", tc.in, err)
		}
		if math.Abs(got-tc.want) > 1e-9 {
			t.Fatalf("解析 %q 期望 %gpt，实际 %g", tc.in, tc.want, got)
		}
	}

	for _, bad := range []string{"", "abc", "12px", "50%"} {
		if _, err := ParseLength(bad); !errors.Is(err, errs.ErrConfiguration) {
			t.Fatalf("解析 %q 应返回配置错误，实际 %v", bad, err)
		}
	}
}

// TestParseDimensionPercent 验证百分比相对参考长度解析。
func TestParseDimensionPercent(t *testing.T) {
	got, err := ParseDimension("25%", 400)
	if err != nil {
		t.Fatalf("解析百分比失败: %v", err)
	}
	if got != 100 {
		t.Fatalf("25%% of 400 期望 100，实际 %g", got)
	}
}

// TestLeadingResolve 验证行距解析：倍数与绝对值两种语义。
func TestLeadingResolve(t *testing.T) {
	factor, err := ParseLeading("1.25x")
	if err != nil {
		t.Fatalf("解析倍数行距失败: %v", err)
	}
	if got := factor.Resolve(12); math.Abs(got-15) > 1e-9 {
		t.Fatalf("1.25x 行距期望 15pt，实际 %g", got)
	}

	abs, err := ParseLeading("6mm")
	if err != nil {
		t.Fatalf("解析绝对行距失败: %v", err)
	}
	if got, want := abs.Resolve(12), 6*MmToPt; math.Abs(got-want) > 1e-9 {
		t.Fatalf("6mm 行距期望 %g，实际 %g", want, got)
	}

	if _, err := ParseLeading("0x"); err == nil {
		t.Fatalf("0x 行距应当报错")
	}
}

func TestPageSizePresets(t *testing.T) {
	w, h, err := PageSize("letter", false)
	if err != nil || w != 612 || h != 792 {
		t.Fatalf("letter 尺寸错误: %g×%g err=%v", w, h, err)
	}
	w, h, err = PageSize("A4", true)
	if err != nil || w != 841.89 || h != 595.28 {
		t.Fatalf("A4 横向尺寸错误: %g×%g err=%v", w, h, err)
	}
	if _, _, err := PageSize("B5", false); !errors.Is(err, errs.ErrConfiguration) {
		t.Fatalf("未知纸张应返回配置错误，实际 %v", err)
	}
}

// TestParseMarginsShorthand 覆盖 1 到 4 个值的简写规则。
func TestParseMarginsShorthand(t *testing.T) {
	cases := []struct {
		in   []string
		want Margins
	}{
		{[]string{"1in"}, Margins{72, 72, 72, 72}},
		{[]string{"10", "20"}, Margins{10, 20, 10, 20}},
		{[]string{"10", "20", "30"}, Margins{10, 20, 30, 20}},
		{[]string{"10", "20", "30", "40"}, Margins{10, 20, 30, 40}},
	}
	for _, tc := range cases {
		got, err := ParseMargins(tc.in)
		if err != nil {
			t.Fatalf("解析 %v 失败: %v", tc.in, err)
		}
		if got != tc.want {
			t.Fatalf("解析 %v 期望 %+v，实际 %+v", tc.in, tc.want, got)
		}
	}
	if _, err := ParseMargins(nil); err == nil {
		t.Fatalf("空边距应报错")
	}
}
