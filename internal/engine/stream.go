package engine

import (
	"bufio"
	"encoding/json"
	"io"
	"strings"

	"github.com/kiddoHope/steadysocial-sub000/pkg/api"
)

// parseSSE reads an SSE stream from llama-server and sends text deltas to
// events. It closes the channel when the stream ends or errors.
func parseSSE(r io.Reader, events chan<- StreamEvent) {
	defer close(events)

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	for scanner.Scan() {
		line := scanner.Text()
		if !strings.HasPrefix(line, "data: ") {
			continue
		}
		data := strings.TrimPrefix(line, "data: ")

		if data == "[DONE]" {
			events <- StreamEvent{Done: true}
			return
		}

		var chunk api.ChatCompletionChunk
		if err := json.Unmarshal([]byte(data), &chunk); err != nil {
			events <- StreamEvent{Err: err}
			return
		}
		for _, choice := range chunk.Choices {
			if choice.Delta.Content != "" {
				events <- StreamEvent{Delta: choice.Delta.Content}
			}
		}
	}

	if err := scanner.Err(); err != nil {
		events <- StreamEvent{Err: err}
		return
	}
	// Stream ended without [DONE]; treat it as a normal end of turn.
	events <- StreamEvent{Done: true}
}
