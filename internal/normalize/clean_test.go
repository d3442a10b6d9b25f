package normalize

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCleanStripsReasoningBlock(t *testing.T) {
	in := "<think>\nthe user wants a post about coffee\n</think>\nTry our new winter roast today."
	assert.Equal(t, "Try our new winter roast today.", Clean(in))
}

func TestCleanDropsUnterminatedReasoning(t *testing.T) {
	assert.Equal(t, "Done.", Clean("Done.<think>hmm, maybe I should"))
}

func TestCleanStripsTurnTokens(t *testing.T) {
	in := "Fresh drop alert!<|im_end|>\n<|endoftext|>"
	assert.Equal(t, "Fresh drop alert!", Clean(in))
}

func TestCleanStripsPreambleLine(t *testing.T) {
	in := "Sure, here's a post for you:\nOur beans, your mornings. ☕"
	assert.Equal(t, "Our beans, your mornings. ☕", Clean(in))
}

func TestCleanStripsSingleLinePreamble(t *testing.T) {
	in := "Here's a prompt: write three posts about our winter menu"
	assert.Equal(t, "write three posts about our winter menu", Clean(in))
}

func TestCleanKeepsContentThatMerelyStartsWithFillerWord(t *testing.T) {
	in := "Here's why it matters.\nEvery cup funds a local grower."
	assert.Equal(t, in, Clean(in))
}

func TestCleanUnwrapsFencedAnswer(t *testing.T) {
	in := "```text\nA latte a day keeps the meetings at bay.\n```"
	assert.Equal(t, "A latte a day keeps the meetings at bay.", Clean(in))
}

func TestCleanFencedJSONScalar(t *testing.T) {
	// A suggest-prompt style reply wrapped in a fence and JSON quoting.
	in := "```json\n[\"x\"]\n```"
	assert.Equal(t, "x", Clean(in))
}

func TestCleanDoesNotUnwrapPartialFence(t *testing.T) {
	in := "Use this:\n```\ncode\n```\nand then deploy."
	assert.Equal(t, "Use this:\n```\ncode\n```\nand then deploy.", Clean(in))
}

func TestCleanStripsDecoration(t *testing.T) {
	assert.Equal(t, "Bold claims, better coffee", Clean(`**"Bold claims, better coffee"**`))
}

func TestCleanIdempotent(t *testing.T) {
	inputs := []string{
		"<think>reasoning</think>Sure, here's your post:\n**\"Great coffee.\"**<|im_end|>",
		"```json\n[\"x\"]\n```",
		"plain text stays plain",
		"   padded   ",
		"",
		"Here's a prompt: short and sweet",
		// A fence hiding a preamble: unwrapping exposes filler that an
		// earlier step must still strip.
		"```\nHere is the post: great content\n```",
		"```text\nSure, here's your post:\n**\"Great coffee.\"**\n```",
	}
	for _, in := range inputs {
		once := Clean(in)
		assert.Equal(t, once, Clean(once), "pipeline not idempotent for %q", in)
	}
}

func TestCleanStripsPreambleInsideFence(t *testing.T) {
	assert.Equal(t, "great content", Clean("```\nHere is the post: great content\n```"))
}

func TestCleanWholePipelineOrder(t *testing.T) {
	in := "<think>plan</think><|im_start|>Certainly! Here are your options:\n```text\n*Roast of the week*\n```<|im_end|>"
	assert.Equal(t, "Roast of the week", Clean(in))
}
