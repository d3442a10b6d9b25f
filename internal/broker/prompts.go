package broker

import (
	"fmt"
	"strings"
)

// chatSystemPrompt is prepended to every chat turn's history.
const chatSystemPrompt = "You are the SteadySocial studio assistant. You help a small business " +
	"plan, draft, and refine social media content. Be concise and practical; " +
	"when asked for post text, reply with the post text only."

// platformGuidance holds per-platform adaptation constraints. Keys are
// lowercase platform names as sent by the studio.
var platformGuidance = map[string]string{
	"x":         "Keep it under 280 characters. Punchy, no hashtag spam (one or two at most).",
	"twitter":   "Keep it under 280 characters. Punchy, no hashtag spam (one or two at most).",
	"linkedin":  "Professional register, first person, up to three short paragraphs. No more than one emoji.",
	"instagram": "Lead with a hook line, add two to five relevant hashtags at the end. Emoji welcome.",
	"facebook":  "Conversational, one or two short paragraphs, end with a question or call to action.",
	"threads":   "Casual and under 500 characters. Hashtags optional.",
}

const genericGuidance = "Keep it short, engaging, and ready to publish as-is."

func buildInitialItemsPrompt(req InitialItemsRequest) string {
	var b strings.Builder

	fmt.Fprintf(&b, "You write social media posts for a small business. Generate exactly %d distinct, ready-to-publish posts", req.Count)
	if req.Tone != "" {
		fmt.Fprintf(&b, " in a %s tone", req.Tone)
	}
	b.WriteString(".\n")

	if req.Prompt != "" {
		fmt.Fprintf(&b, "Topic: %s\n", req.Prompt)
	}
	if req.AuxiliaryText != "" {
		fmt.Fprintf(&b, "Source material to draw from:\n%s\n", req.AuxiliaryText)
	}

	fmt.Fprintf(&b, "Respond with only a JSON array of exactly %d strings, one post per element. No commentary, no markdown fences.", req.Count)
	return b.String()
}

func buildAdaptPrompt(req AdaptItemRequest) string {
	guidance, ok := platformGuidance[strings.ToLower(req.Platform)]
	if !ok {
		guidance = genericGuidance
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Rewrite the following social media post for %s.\n", req.Platform)
	fmt.Fprintf(&b, "Platform constraints: %s\n", guidance)
	if req.Tone != "" {
		fmt.Fprintf(&b, "Tone: %s\n", req.Tone)
	}
	if req.Prompt != "" {
		fmt.Fprintf(&b, "The content is about: %s\n", req.Prompt)
	}
	if req.AuxiliaryText != "" {
		fmt.Fprintf(&b, "Additional source material:\n%s\n", req.AuxiliaryText)
	}
	fmt.Fprintf(&b, "\nOriginal post:\n%s\n\n", req.Text)
	b.WriteString("Respond with only the adapted post text. No quotes, no commentary.")
	return b.String()
}

func buildSuggestPrompt(title string) string {
	return fmt.Sprintf("A content canvas is titled %q. Write a single one-sentence instruction that could be "+
		"given to a copywriter to generate social media posts for this canvas. "+
		"Respond with only the instruction text.", title)
}
