package broker

import (
	"context"
	"sync"
)

// ChatStream is a live chat turn. Fragments arrive on a channel as the model
// produces them; Wait returns the authoritative full text, normalized. The
// fragments are a raw UX optimization, not the contract — a slow consumer
// may miss some, and the cleaned final text from Wait is what must be
// displayed and stored.
type ChatStream struct {
	id string

	// mu orders push against finish: settlement can come from the event
	// loop, a timeout timer, or Cancel, and the fragments channel must not
	// be closed under a concurrent push.
	mu        sync.Mutex
	settled   bool
	fragments chan string

	done chan struct{}
	text string
	err  error
}

func newChatStream(id string, buffer int) *ChatStream {
	return &ChatStream{
		id:        id,
		fragments: make(chan string, buffer),
		done:      make(chan struct{}),
	}
}

// RequestID returns the correlation id of this turn, usable with Cancel.
func (s *ChatStream) RequestID() string {
	return s.id
}

// Fragments returns the incremental text channel. It is closed when the
// turn settles, successfully or not.
func (s *ChatStream) Fragments() <-chan string {
	return s.fragments
}

// Wait blocks until the turn settles and returns the full reply text.
func (s *ChatStream) Wait(ctx context.Context) (string, error) {
	select {
	case <-s.done:
		return s.text, s.err
	case <-ctx.Done():
		return "", ctx.Err()
	}
}

// push delivers one fragment without ever blocking the broker's event loop.
// A fragment racing a settlement is dropped.
func (s *ChatStream) push(delta string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.settled {
		return
	}
	select {
	case s.fragments <- delta:
	default:
	}
}

// finish settles the stream exactly once.
func (s *ChatStream) finish(text string, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.settled {
		return
	}
	s.settled = true
	s.text = text
	s.err = err
	close(s.fragments)
	close(s.done)
}
