package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRenderMarkdown(t *testing.T) {
	t.Run("Empty", func(t *testing.T) {
		out, err := RenderMarkdown("   ")
		require.NoError(t, err)
		assert.Empty(t, out)
	})

	t.Run("HeadingAndParagraph", func(t *testing.T) {
		out, err := RenderMarkdown("# Hello\n\nBook a **demo** today.")
		require.NoError(t, err)
		assert.Contains(t, out, "<h1>Hello</h1>")
		assert.Contains(t, out, "<strong>demo</strong>")
	})

	t.Run("HardWraps", func(t *testing.T) {
		out, err := RenderMarkdown("line one\nline two")
		require.NoError(t, err)
		assert.Contains(t, out, "<br>")
	})
}

func TestTotalPagesMarkdown(t *testing.T) {
	tests := []struct {
		total   int64
		perPage int
		want    int
	}{
		{0, 20, 0},
		{1, 20, 1},
		{20, 20, 1},
		{21, 20, 2},
		{5, 0, 0},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, TotalPages(tt.total, tt.perPage))
	}
}
