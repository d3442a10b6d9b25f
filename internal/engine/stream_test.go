package engine

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func collect(t *testing.T, sse string) ([]string, bool, error) {
	t.Helper()
	events := make(chan StreamEvent)
	go parseSSE(strings.NewReader(sse), events)

	var deltas []string
	var done bool
	var err error
	for ev := range events {
		switch {
		case ev.Err != nil:
			err = ev.Err
		case ev.Done:
			done = true
		default:
			deltas = append(deltas, ev.Delta)
		}
	}
	return deltas, done, err
}

func TestParseSSEDeltas(t *testing.T) {
	sse := "data: {\"choices\":[{\"delta\":{\"content\":\"Hel\"}}]}\n" +
		"data: {\"choices\":[{\"delta\":{\"content\":\"lo\"}}]}\n" +
		"data: [DONE]\n"

	deltas, done, err := collect(t, sse)
	require.NoError(t, err)
	assert.True(t, done)
	assert.Equal(t, []string{"Hel", "lo"}, deltas)
}

func TestParseSSESkipsNonDataLines(t *testing.T) {
	sse := ": keepalive\n\ndata: {\"choices\":[{\"delta\":{\"content\":\"x\"}}]}\n\ndata: [DONE]\n"

	deltas, done, err := collect(t, sse)
	require.NoError(t, err)
	assert.True(t, done)
	assert.Equal(t, []string{"x"}, deltas)
}

func TestParseSSEEmptyDeltasDropped(t *testing.T) {
	sse := "data: {\"choices\":[{\"delta\":{\"role\":\"assistant\"}}]}\n" +
		"data: {\"choices\":[{\"delta\":{\"content\":\"ok\"}}]}\n" +
		"data: [DONE]\n"

	deltas, _, err := collect(t, sse)
	require.NoError(t, err)
	assert.Equal(t, []string{"ok"}, deltas)
}

func TestParseSSEMalformedChunk(t *testing.T) {
	sse := "data: {not json}\n"

	deltas, done, err := collect(t, sse)
	assert.Error(t, err)
	assert.False(t, done)
	assert.Empty(t, deltas)
}

func TestParseSSEEOFWithoutDoneMarker(t *testing.T) {
	sse := "data: {\"choices\":[{\"delta\":{\"content\":\"tail\"}}]}\n"

	deltas, done, err := collect(t, sse)
	require.NoError(t, err)
	assert.True(t, done)
	assert.Equal(t, []string{"tail"}, deltas)
}
