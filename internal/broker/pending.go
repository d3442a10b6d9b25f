package broker

import (
	"time"

	"github.com/kiddoHope/steadysocial-sub000/internal/host"
)

// outcome is the settled value of a pending request. Exactly one of the
// value fields is meaningful, selected by the operation tag.
type outcome struct {
	text  string
	items []string
	err   error
}

// pending is one outstanding request awaiting a terminal host event. It is
// owned by the correlation table; once removed it is settled exactly once.
type pending struct {
	id    string
	tag   host.OperationTag
	count int // bound for initial-items results

	// result receives the outcome for blocking operations (buffered 1).
	result chan outcome

	// stream is set instead of result for chat turns.
	stream *ChatStream

	timer *time.Timer
}

// settle delivers the outcome. Callers must hold the only reference, i.e.
// the entry must already be removed from the table.
func (p *pending) settle(o outcome) {
	p.stopTimer()
	if p.stream != nil {
		p.stream.finish(o.text, o.err)
		return
	}
	p.result <- o
}

func (p *pending) stopTimer() {
	if p.timer != nil {
		p.timer.Stop()
	}
}
