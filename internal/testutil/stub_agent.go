package testutil

import (
	"context"

	"github.com/hupe1980/memorymesh/core"
)

var _ core.Conversable = (*StubAgent)(nil)

// Received captures one delivery observed by a StubAgent's original receive.
type Received struct {
	Message      core.AgentMessage
	Sender       core.Named
	RequestReply bool
	Silent       bool
}

// StubAgent is a minimal conversable agent. Its original receive entry point
// records deliveries and returns Err.
type StubAgent struct {
	name     string
	receive  core.ReceiveFunc
	Received []Received
	Err      error
}

// NewStubAgent creates a stub agent with a recording receive function.
func NewStubAgent(name string) *StubAgent {
	a := &StubAgent{name: name}
	a.receive = func(_ context.Context, msg core.AgentMessage, sender core.Named, requestReply, silent bool) error {
		a.Received = append(a.Received, Received{Message: msg, Sender: sender, RequestReply: requestReply, Silent: silent})
		return a.Err
	}
	return a
}

func (a *StubAgent) Name() string { return a.name }
func (a *StubAgent) ReceiveFunc() core.ReceiveFunc { return a.receive }
func (a *StubAgent) SetReceiveFunc(fn core.ReceiveFunc) { a.receive = fn }

// Receive delivers a message through the currently installed receive function.
func (a *StubAgent) Receive(ctx context.Context, msg core.AgentMessage, sender core.Named) error {
	return a.receive(ctx, msg, sender, true, false)
}

// Sender is a bare named participant.
type Sender string

// Name implements core.Named.
func (s Sender) Name() string { return string(s) }
