package style

import (
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ByLCY/platen/errs"
)

func body() Style {
	s := Base("Body")
	s.SizePt = 11
	s.LeadingPt = 16
	s.Alignment = AlignJustify
	s.SpaceAfter = 8
	return s
}

func TestRegisterAndResolve(t *testing.T) {
	r := NewRegistry()
	require.NoError(t, r.Register(body()))

	got, err := r.Resolve("Body")
	require.NoError(t, err)
	assert.Equal(t, 11.0, got.SizePt)
	assert.Equal(t, 16.0, got.Leading())
	assert.Equal(t, AlignJustify, got.Alignment)
}

func TestRegisterDuplicate(t *testing.T) {
	r := NewRegistry()
	require.NoError(t, r.Register(body()))

	err := r.Register(body())
	var dup *errs.DuplicateStyleError
	require.ErrorAs(t, err, &dup)
	assert.Equal(t, "Body", dup.Name)
	assert.ErrorIs(t, err, errs.ErrConfiguration)
}

func TestResolveUnknownHasNoFallback(t *testing.T) {
	r := NewRegistry()
	require.NoError(t, r.Register(body()))

	_, err := r.Resolve("Heading")
	var unknown *errs.UnknownStyleError
	require.ErrorAs(t, err, &unknown)
	assert.Equal(t, "Heading", unknown.Name)
}

func TestExtendCopiesParent(t *testing.T) {
	r := NewRegistry()
	require.NoError(t, r.Register(body()))
	require.NoError(t, r.Extend("Bullet", "Body", func(s *Style) {
		s.LeftIndent = 18
		s.LeadingPt = 15
		s.Alignment = AlignLeft
	}))

	b, err := r.Resolve("Bullet")
	require.NoError(t, err)
	assert.Equal(t, "Bullet", b.Name)
	assert.Equal(t, 11.0, b.SizePt)
	assert.Equal(t, 18.0, b.LeftIndent)
	assert.Equal(t, AlignLeft, b.Alignment)

	parent, err := r.Resolve("Body")
	require.NoError(t, err)
	assert.Equal(t, AlignJustify, parent.Alignment, "派生样式不应修改父样式")

	err = r.Extend("Orphan", "Missing", nil)
	assert.ErrorIs(t, err, errs.ErrConfiguration)
}

func TestLeadingDefaultsToFactor(t *testing.T) {
	s := Base("Foot")
	s.SizePt = 9
	assert.InDelta(t, 10.8, s.Leading(), 1e-9)
}

func TestFreezeRejectsRegistration(t *testing.T) {
	r := NewRegistry()
	require.NoError(t, r.Register(body()))
	r.Freeze()
	assert.True(t, r.Frozen())

	err := r.Register(Base("Late"))
	assert.ErrorIs(t, err, errs.ErrRegistryFrozen)

	clone := r.Clone()
	assert.False(t, clone.Frozen())
	require.NoError(t, clone.Register(Base("Late")))
	_, err = r.Resolve("Late")
	assert.Error(t, err, "克隆后的注册不应影响原注册表")
}

func TestRegisterAllResolvesInheritanceInAnyOrder(t *testing.T) {
	r := NewRegistry()
	defs := []Definition{
		{Name: "SubHead", Extends: "SectHead", Apply: func(s *Style) error {
			s.SizePt = 13
			s.LeadingPt = 17
			return nil
		}},
		{Name: "SectHead", Apply: func(s *Style) error {
			s.SizePt = 20
			s.LeadingPt = 26
			s.Weight = WeightBold
			s.Color = MustColor("#1e3a5f")
			return nil
		}},
	}
	require.NoError(t, r.RegisterAll(defs))

	sub, err := r.Resolve("SubHead")
	require.NoError(t, err)
	assert.Equal(t, WeightBold, sub.Weight)
	assert.Equal(t, 13.0, sub.SizePt)
	assert.Equal(t, "#1e3a5f", sub.Color.Hex())
	assert.Equal(t, []string{"SectHead", "SubHead"}, r.Names())
}

func TestRegisterAllDetectsCycle(t *testing.T) {
	r := NewRegistry()
	err := r.RegisterAll([]Definition{
		{Name: "A", Extends: "B"},
		{Name: "B", Extends: "A"},
	})
	require.Error(t, err)
	assert.True(t, errors.Is(err, errs.ErrConfiguration))
	assert.Empty(t, r.Names())
}

func TestConcurrentResolveOnFrozenRegistry(t *testing.T) {
	r := NewRegistry()
	require.NoError(t, r.Register(body()))
	r.Freeze()

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				s, err := r.Resolve("Body")
				if err != nil || s.SizePt != 11 {
					t.Errorf("并发解析结果不一致: %+v %v", s, err)
					return
				}
			}
		}()
	}
	wg.Wait()
}

func TestParseColor(t *testing.T) {
	c, err := ParseColor("#0a1628")
	require.NoError(t, err)
	assert.Equal(t, RGB(0x0a, 0x16, 0x28), c)

	c, err = ParseColor("#fff")
	require.NoError(t, err)
	assert.Equal(t, White, c)

	c, err = ParseColor("#b3b3b34d")
	require.NoError(t, err)
	assert.Equal(t, uint8(0x4d), c.A)
	assert.Equal(t, "#b3b3b34d", c.Hex())

	_, err = ParseColor("#12345")
	assert.Error(t, err)
	_, err = ParseColor("#zzzzzz")
	assert.Error(t, err)
}

func TestParseAlignmentAndWeight(t *testing.T) {
	a, err := ParseAlignment("end")
	require.NoError(t, err)
	assert.Equal(t, AlignRight, a)
	_, err = ParseAlignment("diagonal")
	assert.Error(t, err)

	w, err := ParseWeight("700")
	require.NoError(t, err)
	assert.Equal(t, WeightBold, w)
}
