package formatter

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRenderTable_AlignsColumns(t *testing.T) {
	out := RenderTable(
		[]string{"VERSION", "TITLE"},
		[][]string{
			{"v1", "Mainline"},
			{"v1.1", "Summer carve"},
		},
	)

	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	require.Len(t, lines, 4) // header, separator, two rows

	assert.Contains(t, lines[0], "VERSION")
	assert.Contains(t, lines[1], "─")
	assert.Contains(t, lines[2], "Mainline")

	// The second column starts at the same offset in every row.
	assert.Equal(t, strings.Index(lines[2], "Mainline"), strings.Index(lines[3], "Summer"))
}

func TestRenderTable_Empty(t *testing.T) {
	assert.Equal(t, "", RenderTable(nil, nil))
}
