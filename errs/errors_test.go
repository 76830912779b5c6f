package errs

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCategories(t *testing.T) {
	cases := []struct {
		err  error
		want error
	}{
		{&DuplicateStyleError{Name: "Body"}, ErrConfiguration},
		{&UnknownStyleError{Name: "Body"}, ErrConfiguration},
		{&ColumnWidthOverflowError{Total: 600, Available: 500}, ErrConfiguration},
		{&TableShapeError{Row: 2, Cells: 4, Columns: 3}, ErrConfiguration},
		{&InvalidBlockError{Kind: "box", Reason: "pagebreak"}, ErrConfiguration},
		{&BlockTooTallError{Index: 1, Kind: "box", Height: 900, Available: 700}, ErrLayout},
		{&UnsplittableRowError{Index: 3, Row: 7, Height: 800, Available: 700}, ErrLayout},
		{&AssetError{Path: "cover.png", Err: ErrNotFound}, ErrAsset},
		{&BackendError{Backend: "canvas", Op: "Render", Err: errors.New("boom")}, ErrBackend},
	}
	for _, tc := range cases {
		wrapped := fmt.Errorf("构建文档失败: %w", tc.err)
		assert.ErrorIs(t, wrapped, tc.want, tc.err.Error())
		assert.NotEmpty(t, tc.err.Error())
	}
}

func TestLayoutErrorsAreNotConfiguration(t *testing.T) {
	err := error(&BlockTooTallError{Index: 0, Kind: "spacer", Height: 1000, Available: 700})
	assert.False(t, errors.Is(err, ErrConfiguration))
	assert.False(t, errors.Is(err, ErrAsset))
}

func TestAssetErrorUnwrapsCause(t *testing.T) {
	err := fmt.Errorf("compile: %w", &AssetError{Path: "missing.png", Err: ErrNotFound})
	require.ErrorIs(t, err, ErrNotFound)

	var assetErr *AssetError
	require.ErrorAs(t, err, &assetErr)
	assert.Equal(t, "missing.png", assetErr.Path)
}

func TestBackendErrorMessage(t *testing.T) {
	err := &BackendError{Backend: "fpdf", Op: "Output", Err: errors.New("disk full")}
	assert.Equal(t, "fpdf.Output: disk full", err.Error())
	assert.Equal(t, "fpdf.Output: unknown error", (&BackendError{Backend: "fpdf", Op: "Output"}).Error())
}
