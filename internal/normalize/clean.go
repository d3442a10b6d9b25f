// Package normalize turns raw model output into the values the canvas
// operations promise: a cleaned single string or a bounded list of post
// texts. Everything here is pure and stateless.
package normalize

import (
	"strings"
)

// turnTokens are chat-template boundary tokens that small local models leak
// into their output.
var turnTokens = []string{
	"<|im_start|>",
	"<|im_end|>",
	"<|endoftext|>",
	"<|eot_id|>",
	"<end_of_turn>",
	"</s>",
	"<eos>",
}

// fillerPrefixes are conversational lead-ins the model likes to open with.
// A first line starting with one of these and ending in a colon is preamble,
// not content.
var fillerPrefixes = []string{
	"sure",
	"certainly",
	"of course",
	"okay",
	"got it",
	"absolutely",
	"here is",
	"here are",
	"here's",
}

// decorationCutset holds stray punctuation the model wraps answers in:
// markdown emphasis, quotes, backticks, and the brackets left over when a
// JSON-ish scalar answer arrives where plain text was asked for.
const decorationCutset = "*_\"'`“”‘’[]"

// Clean runs the single-string normalization pipeline to a fixpoint.
// Unwrapping a fence can expose a preamble or decoration handled by an
// earlier step, so one pass is not enough; every step only deletes text,
// which guarantees the loop terminates.
func Clean(s string) string {
	for {
		next := cleanOnce(s)
		if next == s {
			return next
		}
		s = next
	}
}

// cleanOnce applies the pipeline steps once, in order.
func cleanOnce(s string) string {
	s = StripReasoning(s)
	s = stripTurnTokens(s)
	s = stripPreamble(s)
	s = unwrapFence(s)
	s = strings.Trim(s, decorationCutset+" \t\r\n")
	return strings.TrimSpace(s)
}

// StripReasoning removes <think>...</think> style blocks. An unterminated
// opening tag swallows everything after it — a reply cut off mid-reasoning
// carries no usable content.
func StripReasoning(s string) string {
	for _, pair := range [][2]string{
		{"<think>", "</think>"},
		{"<thinking>", "</thinking>"},
	} {
		for {
			start := strings.Index(s, pair[0])
			if start < 0 {
				break
			}
			rel := strings.Index(s[start:], pair[1])
			if rel < 0 {
				s = s[:start]
				break
			}
			s = s[:start] + s[start+rel+len(pair[1]):]
		}
	}
	return s
}

func stripTurnTokens(s string) string {
	for _, tok := range turnTokens {
		s = strings.ReplaceAll(s, tok, "")
	}
	return s
}

// stripPreamble drops a leading filler line ("Sure, here's your post:").
// It only fires when something non-empty remains afterwards.
func stripPreamble(s string) string {
	t := strings.TrimLeft(s, " \t\r\n")
	line, rest, multiline := strings.Cut(t, "\n")
	trimmedLine := strings.TrimSpace(line)
	lower := strings.ToLower(trimmedLine)

	matched := false
	for _, p := range fillerPrefixes {
		if strings.HasPrefix(lower, p) {
			matched = true
			break
		}
	}
	if !matched {
		return s
	}

	if strings.HasSuffix(trimmedLine, ":") && multiline && strings.TrimSpace(rest) != "" {
		return rest
	}
	if !multiline {
		// Single line like "Here's a prompt: write about winter coffee drinks".
		if idx := strings.Index(trimmedLine, ":"); idx >= 0 && strings.TrimSpace(trimmedLine[idx+1:]) != "" {
			return trimmedLine[idx+1:]
		}
	}
	return s
}

// unwrapFence unwraps a reply that is exactly one fenced code block,
// dropping the info string ("json", "text") on the opening fence.
func unwrapFence(s string) string {
	t := strings.TrimSpace(s)
	if !strings.HasPrefix(t, "```") || !strings.HasSuffix(t, "```") || len(t) < 6 {
		return s
	}
	if strings.Count(t, "```") != 2 {
		return s
	}
	inner := strings.TrimSuffix(strings.TrimPrefix(t, "```"), "```")
	if nl := strings.Index(inner, "\n"); nl >= 0 && isFenceInfo(strings.TrimSpace(inner[:nl])) {
		inner = inner[nl+1:]
	}
	return inner
}

// isFenceInfo reports whether s looks like a fence language tag rather than
// content ("json", "md", "" — short, no spaces, alphanumeric).
func isFenceInfo(s string) bool {
	if s == "" {
		return true
	}
	if len(s) > 12 {
		return false
	}
	for _, r := range s {
		isAlnum := r >= 'a' && r <= 'z' || r >= 'A' && r <= 'Z' || r >= '0' && r <= '9'
		if !isAlnum && r != '+' && r != '-' && r != '#' {
			return false
		}
	}
	return true
}
