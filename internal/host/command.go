package host

import (
	"github.com/kiddoHope/steadysocial-sub000/pkg/api"
)

// OperationTag identifies which canvas operation a text generation belongs
// to; it is echoed back on the terminal event so the broker can pick the
// right normalizer.
type OperationTag string

const (
	TagInitialItems  OperationTag = "initialCanvasItems"
	TagAdaptItem     OperationTag = "adaptCanvasItem"
	TagSuggestPrompt OperationTag = "suggestPrompt"
)

// Command is a message sent into the execution host.
type Command interface {
	// Type is the wire name of the command, used for logging.
	Type() string
}

// InitCommand asks the host to load a model.
type InitCommand struct {
	Model string
}

func (InitCommand) Type() string { return "init" }

// GenerateTextCommand runs a single-shot generation. The RequestID is echoed
// on the terminal TextResultEvent or on a request-local FaultEvent.
type GenerateTextCommand struct {
	RequestID string
	Tag       OperationTag
	Prompt    string
}

func (GenerateTextCommand) Type() string { return "generate-text" }

// GenerateChatCommand runs a streaming chat generation.
type GenerateChatCommand struct {
	RequestID string
	Messages  []api.Message
}

func (GenerateChatCommand) Type() string { return "generate-chat" }

// CancelCommand aborts an in-flight generation. The host is free to ignore
// it if the request already completed.
type CancelCommand struct {
	RequestID string
}

func (CancelCommand) Type() string { return "cancel" }
