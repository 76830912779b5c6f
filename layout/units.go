package layout

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/ByLCY/platen/errs"
)

// This file defines unit-safe types and helpers for lengths and leading.
// Layout works in PDF points; other units only appear at the input boundary.

// Unit represents the original unit of a length value as written by the author.
type Unit int

const (
	UnitNone Unit = iota // unit-less numbers, treated as points
	UnitPT               // points
	UnitMM               // millimeters
	UnitCM               // centimeters
	UnitIN               // inches
	UnitPercent          // relative to a reference length
)

// Conversion constants between pt and mm.
const (
	PtToMm = 25.4 / 72
	MmToPt = 72 / 25.4
)

func (u Unit) String() string {
	switch u {
	case UnitPT:
		return "pt"
	case UnitMM:
		return "mm"
	case UnitCM:
		return "cm"
	case UnitIN:
		return "in"
	case UnitPercent:
		return "%"
	default:
		return ""
	}
}

// Length preserves a numeric value with its unit.
type Length struct {
	Value float64 `json:"value"`
	Unit  Unit    `json:"unit"`
}

func (l Length) IsZero() bool { return l.Value == 0 }

// PT converts the length to points. Percentages resolve against reference.
func (l Length) PT(reference float64) float64 {
	switch l.Unit {
	case UnitMM:
		return l.Value * MmToPt
	case UnitCM:
		return l.Value * 10 * MmToPt
	case UnitIN:
		return l.Value * 72
	case UnitPercent:
		return reference * l.Value / 100
	default:
		return l.Value
	}
}

// MM converts an absolute length to millimeters.
func (l Length) MM() float64 { return l.PT(0) * PtToMm }

var unitSuffixes = []struct {
	s string
	u Unit
}{{"mm", UnitMM}, {"cm", UnitCM}, {"in", UnitIN}, {"pt", UnitPT}, {"%", UnitPercent}}

// ParseLengthValue parses strings such as "72", "0.75in", "20mm" or "50%".
func ParseLengthValue(value string) (Length, error) {
	v := strings.ToLower(strings.TrimSpace(value))
	if v == "" {
		return Length{}, fmt.Errorf("%w: 长度为空", errs.ErrConfiguration)
	}
	unit := UnitNone
	num := v
	for _, suf := range unitSuffixes {
		if strings.HasSuffix(v, suf.s) {
			unit = suf.u
			num = strings.TrimSpace(strings.TrimSuffix(v, suf.s))
			break
		}
	}
	f, err := strconv.ParseFloat(num, 64)
	if err != nil {
		return Length{}, fmt.Errorf("%w: 无法解析长度 %q", errs.ErrConfiguration, value)
	}
	return Length{Value: f, Unit: unit}, nil
}

// ParseLength parses an absolute length and returns it in points.
func ParseLength(value string) (float64, error) {
	l, err := ParseLengthValue(value)
	if err != nil {
		return 0, err
	}
	if l.Unit == UnitPercent {
		return 0, fmt.Errorf("%w: 此处不允许百分比长度 %q", errs.ErrConfiguration, value)
	}
	return l.PT(0), nil
}

// ParseDimension parses a length that may be a percentage of reference, in points.
func ParseDimension(value string, reference float64) (float64, error) {
	l, err := ParseLengthValue(value)
	if err != nil {
		return 0, err
	}
	return l.PT(reference), nil
}

// LeadingKind distinguishes factor-based vs absolute leading.
type LeadingKind int

const (
	LeadingFactor LeadingKind = iota
	LeadingAbsolute
)

// LeadingSpec preserves author intent: either a factor (e.g. 1.2x) or an absolute length (e.g. 14pt).
type LeadingSpec struct {
	Kind   LeadingKind `json:"kind"`
	Factor float64     `json:"factor,omitempty"`
	Len    Length      `json:"len,omitempty"`
}

// ParseLeading accepts "1.25x" factors and absolute lengths.
func ParseLeading(value string) (LeadingSpec, error) {
	v := strings.ToLower(strings.TrimSpace(value))
	if strings.HasSuffix(v, "x") {
		f, err := strconv.ParseFloat(strings.TrimSuffix(v, "x"), 64)
		if err != nil || f <= 0 {
			return LeadingSpec{}, fmt.Errorf("%w: 无法解析行距倍数 %q", errs.ErrConfiguration, value)
		}
		return LeadingSpec{Kind: LeadingFactor, Factor: f}, nil
	}
	l, err := ParseLengthValue(v)
	if err != nil {
		return LeadingSpec{}, err
	}
	if l.Unit == UnitPercent {
		return LeadingSpec{Kind: LeadingFactor, Factor: l.Value / 100}, nil
	}
	return LeadingSpec{Kind: LeadingAbsolute, Len: l}, nil
}

// Resolve computes the leading in points for the given font size.
func (s LeadingSpec) Resolve(sizePt float64) float64 {
	switch s.Kind {
	case LeadingAbsolute:
		return s.Len.PT(0)
	default:
		if s.Factor <= 0 {
			return sizePt * 1.2
		}
		return sizePt * s.Factor
	}
}
