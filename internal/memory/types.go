package memory

import (
	"context"
	"time"
)

// Kind classifies what produced a history entry.
const (
	KindInitialItems = "initial-items"
	KindAdapt        = "adapt"
	KindSuggest      = "suggest"
	KindChat         = "chat"
)

// Entry is one recorded generation: the prompt that was sent and the
// output that came back.
type Entry struct {
	ID        string
	Kind      string
	Prompt    string
	Output    string
	Timestamp time.Time
	CanvasID  string
}

// Content returns the combined text used for embedding and search.
func (e *Entry) Content() string {
	return "Prompt: " + e.Prompt + "\nOutput: " + e.Output
}

// SearchResult is an entry with its hybrid search scores.
type SearchResult struct {
	Entry         Entry
	SemanticScore float32
	KeywordScore  float32
	CombinedScore float32
}

// Store persists generation history with hybrid semantic+keyword search.
type Store interface {
	Add(ctx context.Context, entry Entry) error
	Search(ctx context.Context, query string, limit int) ([]SearchResult, error)
	List(ctx context.Context, limit int) ([]Entry, error)
	Delete(ctx context.Context, id string) error
	Clear(ctx context.Context) error
	Count() int
	Close() error
}
