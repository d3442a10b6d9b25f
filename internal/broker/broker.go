// Package broker correlates canvas generation operations with execution
// host events. It owns the only correlation table in the system: every
// request is registered before dispatch and settled exactly once, from the
// single goroutine that consumes host events.
package broker

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/segmentio/ksuid"

	"github.com/kiddoHope/steadysocial-sub000/internal/host"
	"github.com/kiddoHope/steadysocial-sub000/internal/normalize"
	"github.com/kiddoHope/steadysocial-sub000/pkg/api"
)

// keyInitialItems is the single-flight correlation key for idea generation:
// the studio only ever shows one "fill my canvas" spinner at a time.
const keyInitialItems = "initial-items"

const defaultChatBuffer = 64

// Host is the command/event surface the broker needs from the execution
// host. Tests substitute a scripted double.
type Host interface {
	Send(host.Command) error
	Events() <-chan host.Event
}

// Broker translates canvas operations into host commands and settles them
// from host events.
type Broker struct {
	host       Host
	table      *table
	timeout    time.Duration
	chatBuffer int

	mu       sync.RWMutex
	ready    bool
	model    string
	progress string
	lastErr  string
	lastRaw  string

	done chan struct{}
}

// Option configures a Broker.
type Option func(*Broker)

// WithRequestTimeout bounds how long any single request may stay pending.
// On expiry the broker fails the request locally and tells the host to
// cancel; zero disables the timeout.
func WithRequestTimeout(d time.Duration) Option {
	return func(b *Broker) { b.timeout = d }
}

// WithChatBuffer sets the fragment channel capacity for chat streams.
func WithChatBuffer(n int) Option {
	return func(b *Broker) { b.chatBuffer = n }
}

// New creates a Broker and starts consuming host events.
func New(h Host, opts ...Option) *Broker {
	b := &Broker{
		host:       h,
		table:      newTable(),
		chatBuffer: defaultChatBuffer,
		done:       make(chan struct{}),
	}
	for _, opt := range opts {
		opt(b)
	}
	go b.loop()
	return b
}

// InitModel asks the host to load a model. Readiness is observed through
// Ready and Progress as lifecycle events arrive.
func (b *Broker) InitModel(model string) error {
	return b.host.Send(host.InitCommand{Model: model})
}

// Ready reports whether the engine can serve generation requests.
func (b *Broker) Ready() bool {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.ready
}

// Model returns the loaded model's name, empty until ready.
func (b *Broker) Model() string {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.model
}

// Progress returns the latest human-readable lifecycle progress text.
func (b *Broker) Progress() string {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.progress
}

// LastError returns the most recent failure text, for display.
func (b *Broker) LastError() string {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.lastErr
}

// LastRaw returns the most recent raw engine reply, before normalization.
// Debug only.
func (b *Broker) LastRaw() string {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.lastRaw
}

// PendingCount returns the number of unsettled requests.
func (b *Broker) PendingCount() int {
	return b.table.len()
}

// InitialItemsRequest are the inputs for idea generation.
type InitialItemsRequest struct {
	Prompt        string
	AuxiliaryText string
	Tone          string
	Count         int
}

// GenerateInitialItems asks the engine for at most req.Count ready-to-publish
// posts. The result never exceeds req.Count.
func (b *Broker) GenerateInitialItems(ctx context.Context, req InitialItemsRequest) ([]string, error) {
	if strings.TrimSpace(req.Prompt) == "" && strings.TrimSpace(req.AuxiliaryText) == "" {
		return nil, fmt.Errorf("%w: a prompt or auxiliary text is required", ErrInvalidInput)
	}
	if req.Count < 1 {
		req.Count = 3
	}

	p := &pending{
		id:     keyInitialItems,
		tag:    host.TagInitialItems,
		count:  req.Count,
		result: make(chan outcome, 1),
	}
	o, err := b.dispatch(ctx, p, host.GenerateTextCommand{
		RequestID: p.id,
		Tag:       host.TagInitialItems,
		Prompt:    buildInitialItemsPrompt(req),
	})
	if err != nil {
		return nil, err
	}
	if o.err != nil {
		return nil, o.err
	}
	return o.items, nil
}

// AdaptItem rewrites one canvas item for a target platform. Concurrent
// adaptations for different (item, platform) pairs run independently; a
// duplicate in-flight pair is rejected rather than silently re-keyed.
func (b *Broker) AdaptItem(ctx context.Context, req AdaptItemRequest) (string, error) {
	if req.ItemID == "" || req.Platform == "" {
		return "", fmt.Errorf("%w: item id and platform are required", ErrInvalidInput)
	}
	if strings.TrimSpace(req.Text) == "" {
		return "", fmt.Errorf("%w: original text is required", ErrInvalidInput)
	}

	p := &pending{
		id:     adaptKey(req.ItemID, req.Platform),
		tag:    host.TagAdaptItem,
		result: make(chan outcome, 1),
	}
	o, err := b.dispatch(ctx, p, host.GenerateTextCommand{
		RequestID: p.id,
		Tag:       host.TagAdaptItem,
		Prompt:    buildAdaptPrompt(req),
	})
	if err != nil {
		return "", err
	}
	return o.text, o.err
}

// AdaptItemRequest are the inputs for platform adaptation.
type AdaptItemRequest struct {
	ItemID        string
	Text          string
	Platform      string
	Tone          string
	Prompt        string
	AuxiliaryText string
}

// SuggestPrompt turns a canvas title into a generation prompt usable with
// GenerateInitialItems.
func (b *Broker) SuggestPrompt(ctx context.Context, title string) (string, error) {
	if strings.TrimSpace(title) == "" {
		return "", fmt.Errorf("%w: title is required", ErrInvalidInput)
	}

	p := &pending{
		id:     "suggest:" + title,
		tag:    host.TagSuggestPrompt,
		result: make(chan outcome, 1),
	}
	o, err := b.dispatch(ctx, p, host.GenerateTextCommand{
		RequestID: p.id,
		Tag:       host.TagSuggestPrompt,
		Prompt:    buildSuggestPrompt(title),
	})
	if err != nil {
		return "", err
	}
	return o.text, o.err
}

// Chat starts a streaming chat turn and returns immediately. Each turn gets
// a fresh generated id, so overlapping turns never collide.
func (b *Broker) Chat(ctx context.Context, message string, history []api.Message) (*ChatStream, error) {
	if !b.Ready() {
		return nil, ErrNotReady
	}
	if strings.TrimSpace(message) == "" {
		return nil, fmt.Errorf("%w: message is required", ErrInvalidInput)
	}

	id := "chat-" + ksuid.New().String()
	stream := newChatStream(id, b.chatBuffer)
	p := &pending{id: id, stream: stream}

	if err := b.register(p); err != nil {
		return nil, err
	}

	messages := make([]api.Message, 0, len(history)+2)
	messages = append(messages, api.Message{Role: "system", Content: chatSystemPrompt})
	messages = append(messages, history...)
	messages = append(messages, api.Message{Role: "user", Content: message})

	if err := b.host.Send(host.GenerateChatCommand{RequestID: id, Messages: messages}); err != nil {
		b.unregister(p)
		return nil, &EngineError{Message: err.Error()}
	}
	return stream, nil
}

// ChatText is the callback-flavored convenience over Chat: fragments go to
// onFragment as they arrive, and the returned string is the authoritative
// full reply.
func (b *Broker) ChatText(ctx context.Context, message string, history []api.Message, onFragment func(string)) (string, error) {
	stream, err := b.Chat(ctx, message, history)
	if err != nil {
		return "", err
	}

	for {
		select {
		case frag, ok := <-stream.Fragments():
			if !ok {
				return stream.Wait(ctx)
			}
			if onFragment != nil {
				onFragment(frag)
			}
		case <-ctx.Done():
			b.Cancel(stream.RequestID())
			return "", ctx.Err()
		}
	}
}

// Cancel drops a pending request without settling its caller and tells the
// host to abort the generation. Chat streams are failed with
// context.Canceled so their consumers unblock.
func (b *Broker) Cancel(id string) {
	p, ok := b.table.take(id)
	if !ok {
		return
	}
	p.stopTimer()
	b.host.Send(host.CancelCommand{RequestID: id})
	if p.stream != nil {
		p.stream.finish("", context.Canceled)
	}
}

// register inserts the entry and arms its timeout. Insert happens before
// dispatch so a reply can never find an unregistered id.
func (b *Broker) register(p *pending) error {
	if err := b.table.insert(p); err != nil {
		return err
	}
	if b.timeout > 0 {
		p.timer = time.AfterFunc(b.timeout, func() { b.expire(p.id) })
	}
	return nil
}

func (b *Broker) unregister(p *pending) {
	b.table.take(p.id)
	p.stopTimer()
}

// dispatch runs a blocking text operation end to end.
func (b *Broker) dispatch(ctx context.Context, p *pending, cmd host.Command) (outcome, error) {
	if !b.Ready() {
		return outcome{}, ErrNotReady
	}
	if err := b.register(p); err != nil {
		return outcome{}, err
	}
	if err := b.host.Send(cmd); err != nil {
		b.unregister(p)
		return outcome{}, &EngineError{Message: err.Error()}
	}

	select {
	case o := <-p.result:
		return o, nil
	case <-ctx.Done():
		b.Cancel(p.id)
		return outcome{}, ctx.Err()
	}
}

// expire fails a request locally after the configured timeout; the host may
// or may not manage to abort the underlying generation.
func (b *Broker) expire(id string) {
	p, ok := b.table.take(id)
	if !ok {
		return
	}
	log.Warn().Str("request", id).Dur("timeout", b.timeout).Msg("request timed out")
	b.host.Send(host.CancelCommand{RequestID: id})
	p.settle(outcome{err: ErrTimedOut})
}

// loop is the single consumer of host events. All settlement happens here,
// one event at a time.
func (b *Broker) loop() {
	defer close(b.done)

	for ev := range b.host.Events() {
		switch e := ev.(type) {
		case host.ProgressEvent:
			b.setProgress(e.Text)

		case host.InitDoneEvent:
			b.mu.Lock()
			b.ready = true
			b.model = e.Model
			b.progress = e.Message
			b.lastErr = ""
			b.mu.Unlock()
			log.Info().Str("model", e.Model).Msg("engine ready")

		case host.TextResultEvent:
			b.setLastRaw(e.Text)
			p, ok := b.table.take(e.RequestID)
			if !ok {
				log.Debug().Str("request", e.RequestID).Msg("result for unknown request dropped")
				continue
			}
			p.settle(b.normalizeResult(p, e.Text))

		case host.ChatChunkEvent:
			if p, ok := b.table.get(e.RequestID); ok && p.stream != nil {
				p.stream.push(e.Delta)
			}

		case host.ChatCompleteEvent:
			b.setLastRaw(e.Text)
			if p, ok := b.table.take(e.RequestID); ok {
				// Fragments stream raw; only the settled final text is
				// normalized. Their concatenation matches the host's raw
				// final, not the cleaned one.
				p.settle(outcome{text: normalize.Clean(e.Text)})
			}

		case host.FaultEvent:
			b.handleFault(e)
		}
	}
}

func (b *Broker) handleFault(e host.FaultEvent) {
	if !e.Fatal() {
		if p, ok := b.table.take(e.RequestID); ok {
			b.setLastError(e.Message)
			p.settle(outcome{err: &EngineError{Message: e.Message}})
		}
		return
	}

	b.mu.Lock()
	b.ready = false
	b.lastErr = e.Message
	b.mu.Unlock()

	swept := b.table.sweep()
	log.Error().Str("fault", e.Message).Int("pending", len(swept)).Msg("fatal engine fault, rejecting all pending requests")

	err := &EngineError{Message: e.Message}
	for _, p := range swept {
		p.settle(outcome{err: err})
	}
}

// normalizeResult shapes a raw text result per the operation's contract.
func (b *Broker) normalizeResult(p *pending, raw string) outcome {
	switch p.tag {
	case host.TagInitialItems:
		items, err := normalize.ParseItems(raw, p.count)
		if err != nil {
			b.setLastError(err.Error())
			return outcome{err: err}
		}
		return outcome{items: items}
	default:
		return outcome{text: normalize.Clean(raw)}
	}
}

func (b *Broker) setProgress(text string) {
	b.mu.Lock()
	b.progress = text
	b.mu.Unlock()
}

func (b *Broker) setLastRaw(text string) {
	b.mu.Lock()
	b.lastRaw = text
	b.mu.Unlock()
}

func (b *Broker) setLastError(text string) {
	b.mu.Lock()
	b.lastErr = text
	b.mu.Unlock()
}

// adaptKey builds the composite correlation key for adaptation requests.
func adaptKey(itemID, platform string) string {
	return "adapt:" + itemID + ":" + strings.ToLower(platform)
}
