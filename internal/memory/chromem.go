package memory

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/philippgille/chromem-go"
)

// semanticWeight and keywordWeight blend vector similarity with plain word
// overlap. Short marketing copy embeds poorly on its own, so exact keyword
// hits get a real say.
const (
	semanticWeight = 0.7
	keywordWeight  = 0.3
)

// ChromemStore implements Store on chromem-go. A JSON index file alongside
// the vector data carries the full entries, since chromem metadata only
// round-trips strings.
type ChromemStore struct {
	db         *chromem.DB
	collection *chromem.Collection
	entries    map[string]Entry
	mu         sync.RWMutex
	persistDir string // empty for in-memory
}

// NewChromemStore opens or creates a persistent store under persistDir.
func NewChromemStore(persistDir string, embed EmbedFunc) (*ChromemStore, error) {
	db, err := chromem.NewPersistentDB(persistDir, false)
	if err != nil {
		return nil, fmt.Errorf("open history store: %w", err)
	}

	col, err := db.GetOrCreateCollection("history", nil, chromem.EmbeddingFunc(embed))
	if err != nil {
		return nil, fmt.Errorf("open history collection: %w", err)
	}

	s := &ChromemStore{
		db:         db,
		collection: col,
		entries:    make(map[string]Entry),
		persistDir: persistDir,
	}
	// Index may not exist yet on first run.
	_ = s.loadIndex()
	return s, nil
}

// NewChromemStoreInMemory creates a volatile store, used in tests and when
// persistence is disabled.
func NewChromemStoreInMemory(embed EmbedFunc) (*ChromemStore, error) {
	db := chromem.NewDB()
	col, err := db.GetOrCreateCollection("history", nil, chromem.EmbeddingFunc(embed))
	if err != nil {
		return nil, fmt.Errorf("open history collection: %w", err)
	}
	return &ChromemStore{
		db:         db,
		collection: col,
		entries:    make(map[string]Entry),
	}, nil
}

func (s *ChromemStore) Add(ctx context.Context, entry Entry) error {
	if entry.ID == "" {
		entry.ID = uuid.New().String()
	}
	if entry.Timestamp.IsZero() {
		entry.Timestamp = time.Now()
	}

	doc := chromem.Document{
		ID:      entry.ID,
		Content: entry.Content(),
		Metadata: map[string]string{
			"kind":      entry.Kind,
			"prompt":    entry.Prompt,
			"output":    entry.Output,
			"timestamp": entry.Timestamp.Format(time.RFC3339),
			"canvas_id": entry.CanvasID,
		},
	}
	if err := s.collection.AddDocument(ctx, doc); err != nil {
		return fmt.Errorf("add history entry: %w", err)
	}

	s.mu.Lock()
	s.entries[entry.ID] = entry
	s.mu.Unlock()

	s.saveIndex()
	return nil
}

func (s *ChromemStore) Search(ctx context.Context, query string, limit int) ([]SearchResult, error) {
	if limit <= 0 {
		limit = 5
	}

	count := s.collection.Count()
	if count == 0 {
		return nil, nil
	}
	if limit > count {
		limit = count
	}

	results, err := s.collection.Query(ctx, query, limit, nil, nil)
	if err != nil {
		return nil, fmt.Errorf("query history: %w", err)
	}

	queryWords := extractWords(query)
	out := make([]SearchResult, 0, len(results))
	for _, r := range results {
		kw := keywordScore(queryWords, r.Content)
		out = append(out, SearchResult{
			Entry:         s.entryFromResult(r),
			SemanticScore: r.Similarity,
			KeywordScore:  kw,
			CombinedScore: semanticWeight*r.Similarity + keywordWeight*kw,
		})
	}

	sort.Slice(out, func(i, j int) bool {
		return out[i].CombinedScore > out[j].CombinedScore
	})
	return out, nil
}

// List returns entries newest first.
func (s *ChromemStore) List(ctx context.Context, limit int) ([]Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entries := make([]Entry, 0, len(s.entries))
	for _, e := range s.entries {
		entries = append(entries, e)
	}
	sort.Slice(entries, func(i, j int) bool {
		return entries[i].Timestamp.After(entries[j].Timestamp)
	})
	if limit > 0 && len(entries) > limit {
		entries = entries[:limit]
	}
	return entries, nil
}

func (s *ChromemStore) Delete(ctx context.Context, id string) error {
	if err := s.collection.Delete(ctx, nil, nil, id); err != nil {
		return fmt.Errorf("delete history entry: %w", err)
	}

	s.mu.Lock()
	delete(s.entries, id)
	s.mu.Unlock()

	s.saveIndex()
	return nil
}

func (s *ChromemStore) Clear(ctx context.Context) error {
	s.mu.Lock()
	ids := make([]string, 0, len(s.entries))
	for id := range s.entries {
		ids = append(ids, id)
	}
	s.entries = make(map[string]Entry)
	s.mu.Unlock()

	if len(ids) > 0 {
		if err := s.collection.Delete(ctx, nil, nil, ids...); err != nil {
			return fmt.Errorf("clear history: %w", err)
		}
	}

	s.saveIndex()
	return nil
}

func (s *ChromemStore) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}

func (s *ChromemStore) Close() error {
	return nil
}

// entryFromResult prefers the in-memory entry and falls back to metadata.
func (s *ChromemStore) entryFromResult(r chromem.Result) Entry {
	s.mu.RLock()
	e, ok := s.entries[r.ID]
	s.mu.RUnlock()
	if ok {
		return e
	}

	ts, _ := time.Parse(time.RFC3339, r.Metadata["timestamp"])
	return Entry{
		ID:        r.ID,
		Kind:      r.Metadata["kind"],
		Prompt:    r.Metadata["prompt"],
		Output:    r.Metadata["output"],
		Timestamp: ts,
		CanvasID:  r.Metadata["canvas_id"],
	}
}

func (s *ChromemStore) indexPath() string {
	if s.persistDir == "" {
		return ""
	}
	return filepath.Join(s.persistDir, "history_index.json")
}

func (s *ChromemStore) saveIndex() {
	path := s.indexPath()
	if path == "" {
		return
	}

	s.mu.RLock()
	data, err := json.Marshal(s.entries)
	s.mu.RUnlock()
	if err != nil {
		return
	}
	os.WriteFile(path, data, 0644)
}

func (s *ChromemStore) loadIndex() error {
	path := s.indexPath()
	if path == "" {
		return nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	return json.Unmarshal(data, &s.entries)
}

// extractWords returns lowercased words of length >= 3.
func extractWords(text string) []string {
	fields := strings.Fields(strings.ToLower(text))
	words := make([]string, 0, len(fields))
	for _, w := range fields {
		if len(w) >= 3 {
			words = append(words, w)
		}
	}
	return words
}

// keywordScore is the fraction of query words present in content.
func keywordScore(queryWords []string, content string) float32 {
	if len(queryWords) == 0 {
		return 0
	}
	lower := strings.ToLower(content)
	matches := 0
	for _, w := range queryWords {
		if strings.Contains(lower, w) {
			matches++
		}
	}
	return float32(matches) / float32(len(queryWords))
}
