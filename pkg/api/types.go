package api

import (
	"time"
)

// Message represents a role-tagged chat message.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// ChatCompletionRequest matches the OpenAI chat completions request schema
// served by llama-server.
type ChatCompletionRequest struct {
	Model       string    `json:"model,omitempty"`
	Messages    []Message `json:"messages"`
	Temperature *float64  `json:"temperature,omitempty"`
	TopP        *float64  `json:"top_p,omitempty"`
	MaxTokens   *int      `json:"max_tokens,omitempty"`
	Stream      bool      `json:"stream,omitempty"`
	Stop        []string  `json:"stop,omitempty"`
}

// ChatCompletionResponse matches the OpenAI chat completions response schema.
type ChatCompletionResponse struct {
	ID      string   `json:"id"`
	Object  string   `json:"object"`
	Created int64    `json:"created"`
	Model   string   `json:"model"`
	Choices []Choice `json:"choices"`
	Usage   *Usage   `json:"usage,omitempty"`
}

// Choice is a single completion choice.
type Choice struct {
	Index        int     `json:"index"`
	Message      Message `json:"message"`
	FinishReason string  `json:"finish_reason"`
}

// ChatCompletionChunk is a streaming SSE chunk.
type ChatCompletionChunk struct {
	ID      string        `json:"id"`
	Object  string        `json:"object"`
	Created int64         `json:"created"`
	Model   string        `json:"model"`
	Choices []ChunkChoice `json:"choices"`
}

// ChunkChoice is a single choice within a streaming chunk.
type ChunkChoice struct {
	Index        int          `json:"index"`
	Delta        MessageDelta `json:"delta"`
	FinishReason *string      `json:"finish_reason"`
}

// MessageDelta is the incremental content in a streaming chunk.
type MessageDelta struct {
	Role    string `json:"role,omitempty"`
	Content string `json:"content,omitempty"`
}

// Usage contains token usage information.
type Usage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

// ErrorResponse is the standard error response.
type ErrorResponse struct {
	Error ErrorDetail `json:"error"`
}

// ErrorDetail contains error information.
type ErrorDetail struct {
	Message string `json:"message"`
	Type    string `json:"type"`
	Code    string `json:"code,omitempty"`
}

// Embedding API types

// EmbeddingRequest is the request for POST /v1/embeddings.
type EmbeddingRequest struct {
	Input string `json:"input"`
	Model string `json:"model,omitempty"`
}

// EmbeddingResponse is the response for POST /v1/embeddings.
type EmbeddingResponse struct {
	Data []EmbeddingData `json:"data"`
}

// EmbeddingData contains a single embedding vector.
type EmbeddingData struct {
	Embedding []float32 `json:"embedding"`
	Index     int       `json:"index"`
}

// Canvas API types — the surface the studio front end calls.

// CanvasItemsRequest is the request for POST /v1/canvas/items.
type CanvasItemsRequest struct {
	Prompt        string `json:"prompt"`
	AuxiliaryText string `json:"auxiliary_text,omitempty"`
	Tone          string `json:"tone,omitempty"`
	Count         int    `json:"count"`
}

// CanvasItemsResponse is the response for POST /v1/canvas/items.
type CanvasItemsResponse struct {
	Items []string `json:"items"`
}

// AdaptItemRequest is the request for POST /v1/canvas/adapt.
type AdaptItemRequest struct {
	ItemID        string `json:"item_id"`
	Text          string `json:"text"`
	Platform      string `json:"platform"`
	Tone          string `json:"tone,omitempty"`
	Prompt        string `json:"prompt,omitempty"`
	AuxiliaryText string `json:"auxiliary_text,omitempty"`
}

// AdaptItemResponse is the response for POST /v1/canvas/adapt.
type AdaptItemResponse struct {
	ItemID   string `json:"item_id"`
	Platform string `json:"platform"`
	Text     string `json:"text"`
}

// SuggestPromptRequest is the request for POST /v1/canvas/suggest.
type SuggestPromptRequest struct {
	Title string `json:"title"`
}

// SuggestPromptResponse is the response for POST /v1/canvas/suggest.
type SuggestPromptResponse struct {
	Prompt string `json:"prompt"`
}

// ChatRequest is the request for POST /v1/chat.
type ChatRequest struct {
	Message string    `json:"message"`
	History []Message `json:"history,omitempty"`
	Stream  bool      `json:"stream,omitempty"`
}

// ChatResponse is the non-streaming response for POST /v1/chat.
type ChatResponse struct {
	Text string `json:"text"`
}

// StatusResponse is the response for GET /v1/status.
type StatusResponse struct {
	Ready     bool   `json:"ready"`
	Model     string `json:"model,omitempty"`
	Progress  string `json:"progress,omitempty"`
	LastError string `json:"last_error,omitempty"`
}

// Extract API types

// ExtractRequest is the request for POST /v1/extract.
type ExtractRequest struct {
	URL string `json:"url"`
}

// ExtractResponse is the response for POST /v1/extract.
type ExtractResponse struct {
	Title string `json:"title"`
	Text  string `json:"text"`
}

// Memory API types

// MemoryEntry represents a single stored generation.
type MemoryEntry struct {
	ID        string    `json:"id"`
	Kind      string    `json:"kind"`
	Prompt    string    `json:"prompt"`
	Output    string    `json:"output"`
	Timestamp time.Time `json:"timestamp"`
	CanvasID  string    `json:"canvas_id,omitempty"`
}

// MemorySearchResult is a memory entry with associated scores.
type MemorySearchResult struct {
	Entry         MemoryEntry `json:"entry"`
	SemanticScore float32     `json:"semantic_score"`
	KeywordScore  float32     `json:"keyword_score"`
	CombinedScore float32     `json:"combined_score"`
}

// MemorySearchRequest is the request for POST /v1/memory/search.
type MemorySearchRequest struct {
	Query string `json:"query"`
	Limit int    `json:"limit,omitempty"`
}

// MemorySearchResponse is the response for POST /v1/memory/search.
type MemorySearchResponse struct {
	Results []MemorySearchResult `json:"results"`
}

// MemoryStoreRequest is the request for POST /v1/memory/store.
type MemoryStoreRequest struct {
	Kind     string `json:"kind"`
	Prompt   string `json:"prompt"`
	Output   string `json:"output"`
	CanvasID string `json:"canvas_id,omitempty"`
}

// MemoryStoreResponse is the response for POST /v1/memory/store.
type MemoryStoreResponse struct {
	ID string `json:"id"`
}

// MemoryListResponse is the response for GET /v1/memory/list.
type MemoryListResponse struct {
	Entries []MemoryEntry `json:"entries"`
	Total   int           `json:"total"`
}

// MemoryCountResponse is the response for GET /v1/memory/count.
type MemoryCountResponse struct {
	Count int `json:"count"`
}
