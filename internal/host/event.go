package host

// Event is a message emitted by the execution host.
type Event interface {
	// Type is the wire name of the event, used for logging.
	Type() string
}

// ProgressEvent carries human-readable model loading progress.
type ProgressEvent struct {
	Text string
}

func (ProgressEvent) Type() string { return "progress" }

// InitDoneEvent signals the engine reached Ready.
type InitDoneEvent struct {
	Message string
	Model   string
}

func (InitDoneEvent) Type() string { return "init-done" }

// TextResultEvent is the terminal event of a GenerateTextCommand.
type TextResultEvent struct {
	RequestID string
	Tag       OperationTag
	Text      string
}

func (TextResultEvent) Type() string { return "text-result" }

// ChatChunkEvent is one incremental fragment of a streaming chat reply.
type ChatChunkEvent struct {
	RequestID string
	Delta     string
}

func (ChatChunkEvent) Type() string { return "chat-chunk" }

// ChatCompleteEvent is the terminal event of a GenerateChatCommand; Text is
// the authoritative full reply, regardless of what the chunks added up to.
type ChatCompleteEvent struct {
	RequestID string
	Text      string
}

func (ChatCompleteEvent) Type() string { return "chat-complete" }

// FaultEvent reports a failure. A fault carrying a RequestID is local to
// that request; a fault without one means the engine itself is gone and
// everything pending must fail.
type FaultEvent struct {
	RequestID string
	Message   string
}

func (FaultEvent) Type() string { return "error" }

// Fatal reports whether the fault poisons every pending request.
func (e FaultEvent) Fatal() bool { return e.RequestID == "" }
