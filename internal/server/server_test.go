package server

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"hash/fnv"
	"math"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kiddoHope/steadysocial-sub000/internal/broker"
	"github.com/kiddoHope/steadysocial-sub000/internal/config"
	"github.com/kiddoHope/steadysocial-sub000/internal/host"
	"github.com/kiddoHope/steadysocial-sub000/internal/memory"
	"github.com/kiddoHope/steadysocial-sub000/pkg/api"
)

// scriptedHost answers each command with canned events, standing in for a
// live engine behind the broker.
type scriptedHost struct {
	events chan host.Event
	reply  func(cmd host.Command) []host.Event
}

func newScriptedHost(reply func(cmd host.Command) []host.Event) *scriptedHost {
	return &scriptedHost{events: make(chan host.Event, 64), reply: reply}
}

func (h *scriptedHost) Send(cmd host.Command) error {
	if h.reply != nil {
		for _, ev := range h.reply(cmd) {
			h.events <- ev
		}
	}
	return nil
}

func (h *scriptedHost) Events() <-chan host.Event {
	return h.events
}

func testEmbed(ctx context.Context, text string) ([]float32, error) {
	vec := make([]float32, 32)
	h := fnv.New64a()
	h.Write([]byte(text))
	seed := h.Sum64()
	var sum float64
	for i := range vec {
		vec[i] = float32((seed^uint64(i)*0x9E3779B97F4A7C15)%1000) / 1000.0
		sum += float64(vec[i]) * float64(vec[i])
	}
	norm := float32(math.Sqrt(sum))
	for i := range vec {
		vec[i] /= norm
	}
	return vec, nil
}

func newTestServer(t *testing.T, reply func(cmd host.Command) []host.Event) (*httptest.Server, memory.Store) {
	t.Helper()

	sh := newScriptedHost(reply)
	b := broker.New(sh)
	sh.events <- host.InitDoneEvent{Message: "model ready", Model: "test-model"}
	require.Eventually(t, b.Ready, time.Second, time.Millisecond)

	store, err := memory.NewChromemStoreInMemory(testEmbed)
	require.NoError(t, err)

	cfg := config.DefaultConfig()
	srv := New(cfg, b, store)
	ts := httptest.NewServer(srv.http.Handler)
	t.Cleanup(ts.Close)
	return ts, store
}

func postJSON(t *testing.T, url string, body any) *http.Response {
	t.Helper()
	data, err := json.Marshal(body)
	require.NoError(t, err)
	resp, err := http.Post(url, "application/json", bytes.NewReader(data))
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func decode[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	var v T
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&v))
	return v
}

// echoText answers any generate-text command with the given raw reply.
func echoText(raw string) func(cmd host.Command) []host.Event {
	return func(cmd host.Command) []host.Event {
		if gt, ok := cmd.(host.GenerateTextCommand); ok {
			return []host.Event{host.TextResultEvent{RequestID: gt.RequestID, Tag: gt.Tag, Text: raw}}
		}
		return nil
	}
}

func TestHealthEndpoint(t *testing.T) {
	ts, _ := newTestServer(t, nil)

	resp, err := http.Get(ts.URL + "/health")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestStatusEndpoint(t *testing.T) {
	ts, _ := newTestServer(t, nil)

	resp, err := http.Get(ts.URL + "/v1/status")
	require.NoError(t, err)
	defer resp.Body.Close()

	status := decode[api.StatusResponse](t, resp)
	assert.True(t, status.Ready)
	assert.Equal(t, "test-model", status.Model)
}

func TestCanvasItemsEndpoint(t *testing.T) {
	ts, store := newTestServer(t, echoText(`["First post", "Second post"]`))

	resp := postJSON(t, ts.URL+"/v1/canvas/items", api.CanvasItemsRequest{Prompt: "coffee", Count: 2})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	body := decode[api.CanvasItemsResponse](t, resp)
	assert.Equal(t, []string{"First post", "Second post"}, body.Items)

	// Generation was recorded to history.
	assert.Equal(t, 1, store.Count())
}

func TestCanvasItemsInvalid(t *testing.T) {
	ts, _ := newTestServer(t, nil)

	resp := postJSON(t, ts.URL+"/v1/canvas/items", api.CanvasItemsRequest{Count: 2})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestAdaptEndpoint(t *testing.T) {
	ts, _ := newTestServer(t, echoText("Rewritten for the platform."))

	resp := postJSON(t, ts.URL+"/v1/canvas/adapt", api.AdaptItemRequest{
		ItemID:   "item-1",
		Platform: "linkedin",
		Text:     "original",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	body := decode[api.AdaptItemResponse](t, resp)
	assert.Equal(t, "item-1", body.ItemID)
	assert.Equal(t, "Rewritten for the platform.", body.Text)
}

func TestSuggestEndpoint(t *testing.T) {
	ts, _ := newTestServer(t, echoText("Write posts about the winter sale."))

	resp := postJSON(t, ts.URL+"/v1/canvas/suggest", api.SuggestPromptRequest{Title: "Winter Sale"})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	body := decode[api.SuggestPromptResponse](t, resp)
	assert.Equal(t, "Write posts about the winter sale.", body.Prompt)
}

func TestEngineFaultMapsToBadGateway(t *testing.T) {
	ts, _ := newTestServer(t, func(cmd host.Command) []host.Event {
		if gt, ok := cmd.(host.GenerateTextCommand); ok {
			return []host.Event{host.FaultEvent{RequestID: gt.RequestID, Message: "generation failed"}}
		}
		return nil
	})

	resp := postJSON(t, ts.URL+"/v1/canvas/suggest", api.SuggestPromptRequest{Title: "Anything"})
	assert.Equal(t, http.StatusBadGateway, resp.StatusCode)

	body := decode[api.ErrorResponse](t, resp)
	assert.Equal(t, "engine_fault", body.Error.Type)
}

func TestNotReadyMapsToServiceUnavailable(t *testing.T) {
	sh := newScriptedHost(nil)
	b := broker.New(sh)
	srv := New(config.DefaultConfig(), b, nil)
	ts := httptest.NewServer(srv.http.Handler)
	defer ts.Close()

	resp := postJSON(t, ts.URL+"/v1/canvas/items", api.CanvasItemsRequest{Prompt: "coffee", Count: 2})
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
}

func TestChatEndpoint(t *testing.T) {
	ts, _ := newTestServer(t, func(cmd host.Command) []host.Event {
		if gc, ok := cmd.(host.GenerateChatCommand); ok {
			return []host.Event{
				host.ChatChunkEvent{RequestID: gc.RequestID, Delta: "Hello"},
				host.ChatCompleteEvent{RequestID: gc.RequestID, Text: "Hello there"},
			}
		}
		return nil
	})

	resp := postJSON(t, ts.URL+"/v1/chat", api.ChatRequest{Message: "hi"})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	body := decode[api.ChatResponse](t, resp)
	assert.Equal(t, "Hello there", body.Text)
}

func TestChatStreamingEndpoint(t *testing.T) {
	ts, _ := newTestServer(t, func(cmd host.Command) []host.Event {
		if gc, ok := cmd.(host.GenerateChatCommand); ok {
			return []host.Event{
				host.ChatChunkEvent{RequestID: gc.RequestID, Delta: "Hel"},
				host.ChatChunkEvent{RequestID: gc.RequestID, Delta: "lo"},
				host.ChatCompleteEvent{RequestID: gc.RequestID, Text: "Hello"},
			}
		}
		return nil
	})

	resp := postJSON(t, ts.URL+"/v1/chat", api.ChatRequest{Message: "hi", Stream: true})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, resp.Header.Get("Content-Type"), "text/event-stream")

	var deltas []string
	var finalText string
	sawDone := false
	scanner := bufio.NewScanner(resp.Body)
	for scanner.Scan() {
		line := scanner.Text()
		if !strings.HasPrefix(line, "data: ") {
			continue
		}
		var ev struct {
			Delta string `json:"delta"`
			Text  string `json:"text"`
			Done  bool   `json:"done"`
		}
		require.NoError(t, json.Unmarshal([]byte(strings.TrimPrefix(line, "data: ")), &ev))
		if ev.Done {
			sawDone = true
			finalText = ev.Text
			break
		}
		deltas = append(deltas, ev.Delta)
	}

	assert.True(t, sawDone)
	assert.Equal(t, "Hello", finalText)
	assert.Equal(t, "Hello", strings.Join(deltas, ""))
}

func TestMemoryEndpoints(t *testing.T) {
	ts, _ := newTestServer(t, nil)

	stored := postJSON(t, ts.URL+"/v1/memory/store", api.MemoryStoreRequest{
		Kind:   memory.KindChat,
		Prompt: "draft a post",
		Output: "Here is a draft.",
	})
	require.Equal(t, http.StatusOK, stored.StatusCode)
	id := decode[api.MemoryStoreResponse](t, stored).ID
	require.NotEmpty(t, id)

	listResp, err := http.Get(ts.URL + "/v1/memory/list")
	require.NoError(t, err)
	defer listResp.Body.Close()
	list := decode[api.MemoryListResponse](t, listResp)
	assert.Equal(t, 1, list.Total)
	require.Len(t, list.Entries, 1)
	assert.Equal(t, "draft a post", list.Entries[0].Prompt)

	req, err := http.NewRequest(http.MethodDelete, ts.URL+"/v1/memory/"+id, nil)
	require.NoError(t, err)
	delResp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer delResp.Body.Close()
	assert.Equal(t, http.StatusOK, delResp.StatusCode)

	countResp, err := http.Get(ts.URL + "/v1/memory/count")
	require.NoError(t, err)
	defer countResp.Body.Close()
	count := decode[api.MemoryCountResponse](t, countResp)
	assert.Equal(t, 0, count.Count)
}

func TestExtractEndpointRejectsBadURL(t *testing.T) {
	ts, _ := newTestServer(t, nil)

	resp := postJSON(t, ts.URL+"/v1/extract", api.ExtractRequest{URL: "not-a-url"})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestCORSPreflight(t *testing.T) {
	ts, _ := newTestServer(t, nil)

	req, err := http.NewRequest(http.MethodOptions, ts.URL+"/v1/status", nil)
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "*", resp.Header.Get("Access-Control-Allow-Origin"))
}
