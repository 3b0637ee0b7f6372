package diff

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const original = `Line one stays.
Line two stays.
Line three changes.
Line four stays.
Line five stays.`

const working = `Line one stays.
Line two stays.
Line three changed a lot.
Line four stays.
Line five stays.`

func TestCompareIdenticalInputs(t *testing.T) {
	table, err := Compare(original, original)
	require.NoError(t, err)
	assert.False(t, table.HasChanges())
	assert.Empty(t, table.Rows, "identical inputs collapse to no diff groups")
}

func TestCompareBlankSide(t *testing.T) {
	_, err := Compare("", working)
	assert.ErrorIs(t, err, ErrInsufficientInput)

	_, err = Compare(original, "   \n\t ")
	assert.ErrorIs(t, err, ErrInsufficientInput)
}

func TestCompareMarksChangedLines(t *testing.T) {
	table, err := Compare(original, working)
	require.NoError(t, err)
	assert.True(t, table.HasChanges())

	var replaced *Row
	for i := range table.Rows {
		if table.Rows[i].Op == OpReplace {
			replaced = &table.Rows[i]
			break
		}
	}
	require.NotNil(t, replaced)
	assert.Equal(t, "Line three changes.", replaced.Left)
	assert.Equal(t, "Line three changed a lot.", replaced.Right)
	assert.Equal(t, 3, replaced.LeftNo)
	assert.Equal(t, 3, replaced.RightNo)
}

func TestCompareNormalizesBeforeDiffing(t *testing.T) {
	// Markup-only differences disappear after normalization.
	table, err := Compare(`a \textbf{bold} word`, "a bold word")
	require.NoError(t, err)
	assert.False(t, table.HasChanges())
}

func TestCompareDeterministic(t *testing.T) {
	first, err := Compare(original, working)
	require.NoError(t, err)
	second, err := Compare(original, working)
	require.NoError(t, err)
	assert.Equal(t, first.Rows, second.Rows)
}

func TestTableHTML(t *testing.T) {
	table, err := Compare(original, working)
	require.NoError(t, err)

	html := table.HTML()
	assert.Contains(t, html, "class='diff_chg'")
	assert.Contains(t, html, "Line three changes.")
	assert.Contains(t, html, "Line three changed a lot.")
	assert.Contains(t, html, "<th colspan='2'>Original</th>")
}

func TestCompareHTMLPlaceholder(t *testing.T) {
	html := CompareHTML("", "only one side")
	assert.Equal(t, "<p><em>Provide both original and working documents to view the diff.</em></p>", html)
}

func TestCompareInsertAndDelete(t *testing.T) {
	table, err := Compare("alpha\nbeta\ngamma", "alpha\ngamma")
	require.NoError(t, err)

	var sawDelete bool
	for _, row := range table.Rows {
		if row.Op == OpDelete {
			sawDelete = true
			assert.Equal(t, "beta", row.Left)
			assert.Zero(t, row.RightNo)
		}
	}
	assert.True(t, sawDelete)
}
