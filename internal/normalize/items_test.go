package normalize

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseItemsJSONArray(t *testing.T) {
	items, err := ParseItems(`["a","b","c"]`, 5)
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b", "c"}, items)
}

func TestParseItemsTruncatesToCount(t *testing.T) {
	items, err := ParseItems(`["a","b","c","d"]`, 3)
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b", "c"}, items)
}

func TestParseItemsFindsArrayInsideChatter(t *testing.T) {
	raw := "Here are your posts:\n[\"first post\", \"second post\"]\nEnjoy!"
	items, err := ParseItems(raw, 4)
	require.NoError(t, err)
	assert.Equal(t, []string{"first post", "second post"}, items)
}

func TestParseItemsIgnoresReasoningBlock(t *testing.T) {
	raw := "<think>[not, the, answer]</think>[\"real one\"]"
	items, err := ParseItems(raw, 2)
	require.NoError(t, err)
	assert.Equal(t, []string{"real one"}, items)
}

func TestParseItemsNumberedListFallback(t *testing.T) {
	raw := "1. Monday: new roast drops\n2. Tuesday: meet the growers\n3. Friday: latte art contest"
	items, err := ParseItems(raw, 10)
	require.NoError(t, err)
	assert.Equal(t, []string{
		"Monday: new roast drops",
		"Tuesday: meet the growers",
		"Friday: latte art contest",
	}, items)
}

func TestParseItemsParagraphFallback(t *testing.T) {
	raw := "First idea spans\ntwo lines.\n\nSecond idea."
	items, err := ParseItems(raw, 10)
	require.NoError(t, err)
	assert.Equal(t, []string{"First idea spans\ntwo lines.", "Second idea."}, items)
}

func TestParseItemsRejectsNonStringElements(t *testing.T) {
	// Array parse fails, but the heuristic still segments the raw text.
	items, err := ParseItems(`[1, 2, 3]`, 3)
	require.NoError(t, err)
	require.Len(t, items, 1)
}

func TestParseItemsEmptyReply(t *testing.T) {
	_, err := ParseItems("   \n  ", 3)
	var perr *ParseError
	assert.ErrorAs(t, err, &perr)
}

func TestParseItemsDropsBlankStrings(t *testing.T) {
	items, err := ParseItems(`["a", "  ", "b"]`, 5)
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, items)
}
