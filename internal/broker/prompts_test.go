package broker

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBuildInitialItemsPrompt(t *testing.T) {
	p := buildInitialItemsPrompt(InitialItemsRequest{
		Prompt:        "new espresso blend",
		AuxiliaryText: "Single origin, tasting notes of cherry.",
		Tone:          "playful",
		Count:         4,
	})
	assert.Contains(t, p, "exactly 4")
	assert.Contains(t, p, "playful tone")
	assert.Contains(t, p, "new espresso blend")
	assert.Contains(t, p, "tasting notes of cherry")
	assert.Contains(t, p, "JSON array")
}

func TestBuildAdaptPromptKnownPlatform(t *testing.T) {
	p := buildAdaptPrompt(AdaptItemRequest{
		ItemID:   "i1",
		Platform: "LinkedIn",
		Text:     "We just launched.",
	})
	assert.Contains(t, p, "LinkedIn")
	assert.Contains(t, p, platformGuidance["linkedin"])
	assert.Contains(t, p, "We just launched.")
}

func TestBuildAdaptPromptUnknownPlatformFallsBack(t *testing.T) {
	p := buildAdaptPrompt(AdaptItemRequest{
		ItemID:   "i1",
		Platform: "mastodon",
		Text:     "post",
	})
	assert.Contains(t, p, genericGuidance)
}

func TestBuildSuggestPrompt(t *testing.T) {
	p := buildSuggestPrompt("Holiday Gift Guide")
	assert.Contains(t, p, `"Holiday Gift Guide"`)
	assert.Contains(t, p, "instruction")
}
