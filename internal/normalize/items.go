package normalize

import (
	"encoding/json"
	"fmt"
	"strings"
)

// ParseError means the engine replied successfully but the reply could not
// be shaped into what the operation promised.
type ParseError struct {
	Reason string
}

func (e *ParseError) Error() string {
	return "parse model reply: " + e.Reason
}

// ParseItems extracts at most count post texts from a raw model reply.
// The contract asks the model for a JSON array of strings; when that fails,
// a heuristic list split runs before giving up.
func ParseItems(raw string, count int) ([]string, error) {
	if count < 1 {
		count = 1
	}

	s := stripTurnTokens(StripReasoning(raw))

	items, err := parseJSONStringArray(s)
	if err != nil {
		items = splitListHeuristic(s)
	}
	if len(items) == 0 {
		return nil, &ParseError{Reason: "no JSON string array and no list-like text found"}
	}
	if len(items) > count {
		items = items[:count]
	}
	return items, nil
}

// parseJSONStringArray locates the JSON array between the first '[' and the
// last ']' and requires every element to be a string.
func parseJSONStringArray(s string) ([]string, error) {
	start := strings.Index(s, "[")
	end := strings.LastIndex(s, "]")
	if start < 0 || end <= start {
		return nil, fmt.Errorf("no JSON array found")
	}

	var elems []any
	if err := json.Unmarshal([]byte(s[start:end+1]), &elems); err != nil {
		return nil, fmt.Errorf("unmarshal array: %w", err)
	}

	items := make([]string, 0, len(elems))
	for i, e := range elems {
		str, ok := e.(string)
		if !ok {
			return nil, fmt.Errorf("element %d is not a string", i)
		}
		if str = strings.TrimSpace(str); str != "" {
			items = append(items, str)
		}
	}
	return items, nil
}

// splitListHeuristic falls back to segmenting the reply into paragraph-like
// chunks: a numbered list if one is present, blank-line-separated paragraphs
// otherwise.
func splitListHeuristic(s string) []string {
	if items := splitNumbered(s); len(items) > 1 {
		return items
	}
	return splitParagraphs(s)
}

func splitNumbered(s string) []string {
	var items []string
	var cur strings.Builder

	flush := func() {
		if text := strings.TrimSpace(cur.String()); text != "" {
			items = append(items, text)
		}
		cur.Reset()
	}

	started := false
	for _, line := range strings.Split(s, "\n") {
		if rest, ok := cutListMarker(line); ok {
			flush()
			started = true
			cur.WriteString(rest)
			continue
		}
		if started {
			cur.WriteString("\n")
			cur.WriteString(line)
		}
	}
	flush()
	return items
}

// cutListMarker strips a leading "1." / "2)" / "- " marker from a line.
func cutListMarker(line string) (string, bool) {
	t := strings.TrimSpace(line)
	if strings.HasPrefix(t, "- ") || strings.HasPrefix(t, "* ") {
		return t[2:], true
	}
	i := 0
	for i < len(t) && t[i] >= '0' && t[i] <= '9' {
		i++
	}
	if i == 0 || i >= len(t) {
		return "", false
	}
	if t[i] != '.' && t[i] != ')' {
		return "", false
	}
	return strings.TrimSpace(t[i+1:]), true
}

func splitParagraphs(s string) []string {
	var items []string
	for _, block := range strings.Split(s, "\n\n") {
		block = strings.Trim(block, decorationCutset+" \t\r\n")
		if block != "" {
			items = append(items, block)
		}
	}
	return items
}
