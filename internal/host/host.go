// Package host owns the inference engine and isolates it from callers.
// Communication happens only through typed commands in and typed events
// out; nothing inside the host is shared with the caller's goroutines.
package host

import (
	"context"
	"errors"
	"strings"
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/kiddoHope/steadysocial-sub000/internal/engine"
	"github.com/kiddoHope/steadysocial-sub000/pkg/api"
)

// ErrClosed is returned by Send after the host shuts down.
var ErrClosed = errors.New("host closed")

const (
	commandBuffer = 16
	eventBuffer   = 64
	genQueue      = 32
)

// Host runs the engine behind a command/event boundary. Generation commands
// are serialized through a single worker because the engine executes one
// generation at a time; Cancel is handled out-of-band on the receive loop so
// an in-flight generation can be aborted.
type Host struct {
	eng engine.Engine

	commands chan Command
	events   chan Event
	genc     chan Command

	closed    chan struct{}
	closeOnce sync.Once
	wg        sync.WaitGroup

	mu      sync.Mutex
	state   State
	cancels map[string]context.CancelFunc
}

// New creates a Host around the given engine. Call Start before Send.
func New(eng engine.Engine) *Host {
	return &Host{
		eng:      eng,
		commands: make(chan Command, commandBuffer),
		events:   make(chan Event, eventBuffer),
		genc:     make(chan Command, genQueue),
		closed:   make(chan struct{}),
		cancels:  make(map[string]context.CancelFunc),
	}
}

// Start launches the host's receive loop and generation worker.
func (h *Host) Start() {
	h.wg.Add(2)
	go h.run()
	go h.generate()
	go func() {
		h.wg.Wait()
		close(h.events)
	}()
}

// Send delivers a command to the host.
func (h *Host) Send(cmd Command) error {
	select {
	case <-h.closed:
		return ErrClosed
	default:
	}
	select {
	case h.commands <- cmd:
		return nil
	case <-h.closed:
		return ErrClosed
	}
}

// Events returns the host's event stream. It is closed after Close.
func (h *Host) Events() <-chan Event {
	return h.events
}

// State returns the current lifecycle state.
func (h *Host) State() State {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.state
}

// Close shuts the host down and closes the engine. In-flight generations
// are cancelled.
func (h *Host) Close() {
	h.closeOnce.Do(func() {
		close(h.closed)
		h.mu.Lock()
		for _, cancel := range h.cancels {
			cancel()
		}
		h.mu.Unlock()
		h.eng.Close()
	})
}

func (h *Host) setState(s State) {
	h.mu.Lock()
	h.state = s
	h.mu.Unlock()
}

// emit delivers an event unless the host is shutting down.
func (h *Host) emit(ev Event) {
	select {
	case h.events <- ev:
	case <-h.closed:
	}
}

// run is the command receive loop. It also watches for the engine dying out
// from under us, which is the one genuinely broker-fatal condition.
func (h *Host) run() {
	defer h.wg.Done()

	var engineDead bool
	for {
		exited := h.eng.Exited()
		if engineDead {
			exited = nil
		}

		select {
		case <-h.closed:
			return

		case <-exited:
			engineDead = true
			if stopper, ok := h.eng.(interface{ WasStopped() bool }); ok && stopper.WasStopped() {
				continue
			}
			h.setState(StateFailed)
			log.Error().Msg("engine process exited unexpectedly")
			h.emit(FaultEvent{Message: "engine process exited unexpectedly"})

		case cmd := <-h.commands:
			log.Debug().Str("command", cmd.Type()).Msg("host received command")
			switch c := cmd.(type) {
			case InitCommand:
				h.handleInit(c)
			case CancelCommand:
				h.cancelRequest(c.RequestID)
			case GenerateTextCommand:
				h.enqueue(cmd, c.RequestID)
			case GenerateChatCommand:
				h.enqueue(cmd, c.RequestID)
			}
		}
	}
}

// enqueue hands a generation command to the worker, failing it immediately
// when the engine is not ready to serve.
func (h *Host) enqueue(cmd Command, requestID string) {
	if h.State() != StateReady {
		h.emit(FaultEvent{RequestID: requestID, Message: "engine not ready"})
		return
	}
	select {
	case h.genc <- cmd:
	case <-h.closed:
	}
}

// handleInit loads the model. It runs on the receive loop: nothing else can
// be in flight before the engine is Ready, so blocking here is fine.
func (h *Host) handleInit(c InitCommand) {
	switch h.State() {
	case StateLoading, StateReady:
		return
	}
	h.setState(StateLoading)

	err := h.eng.Load(context.Background(), c.Model, func(msg string) {
		h.emit(ProgressEvent{Text: msg})
	})
	if err != nil {
		h.setState(StateFailed)
		h.emit(FaultEvent{Message: "load model: " + err.Error()})
		return
	}

	h.setState(StateReady)
	h.emit(InitDoneEvent{
		Message: "model " + h.eng.ModelName() + " ready",
		Model:   h.eng.ModelName(),
	})
}

func (h *Host) registerCancel(id string, cancel context.CancelFunc) {
	h.mu.Lock()
	h.cancels[id] = cancel
	h.mu.Unlock()
}

func (h *Host) unregisterCancel(id string) {
	h.mu.Lock()
	delete(h.cancels, id)
	h.mu.Unlock()
}

func (h *Host) cancelRequest(id string) {
	h.mu.Lock()
	cancel, ok := h.cancels[id]
	h.mu.Unlock()
	if ok {
		cancel()
	}
}

// generate is the single worker draining queued generation commands.
func (h *Host) generate() {
	defer h.wg.Done()

	for {
		select {
		case <-h.closed:
			return
		case cmd := <-h.genc:
			switch c := cmd.(type) {
			case GenerateTextCommand:
				h.generateText(c)
			case GenerateChatCommand:
				h.generateChat(c)
			}
		}
	}
}

func (h *Host) generateText(c GenerateTextCommand) {
	ctx, cancel := context.WithCancel(context.Background())
	h.registerCancel(c.RequestID, cancel)
	defer func() {
		h.unregisterCancel(c.RequestID)
		cancel()
	}()

	text, err := h.eng.Complete(ctx, []api.Message{{Role: "user", Content: c.Prompt}})
	if err != nil {
		h.emit(FaultEvent{RequestID: c.RequestID, Message: faultMessage(ctx, err)})
		return
	}
	h.emit(TextResultEvent{RequestID: c.RequestID, Tag: c.Tag, Text: text})
}

func (h *Host) generateChat(c GenerateChatCommand) {
	ctx, cancel := context.WithCancel(context.Background())
	h.registerCancel(c.RequestID, cancel)
	defer func() {
		h.unregisterCancel(c.RequestID)
		cancel()
	}()

	stream, err := h.eng.Stream(ctx, c.Messages)
	if err != nil {
		h.emit(FaultEvent{RequestID: c.RequestID, Message: faultMessage(ctx, err)})
		return
	}

	var full strings.Builder
	for ev := range stream {
		switch {
		case ev.Err != nil:
			h.emit(FaultEvent{RequestID: c.RequestID, Message: faultMessage(ctx, ev.Err)})
			// Drain so the engine's producer goroutine can finish.
			for range stream {
			}
			return
		case ev.Done:
		default:
			full.WriteString(ev.Delta)
			h.emit(ChatChunkEvent{RequestID: c.RequestID, Delta: ev.Delta})
		}
	}

	h.emit(ChatCompleteEvent{RequestID: c.RequestID, Text: full.String()})
}

// faultMessage prefers a clear "canceled" message when the request context
// was cancelled under the error.
func faultMessage(ctx context.Context, err error) string {
	if ctx.Err() != nil {
		return "generation canceled"
	}
	return err.Error()
}
