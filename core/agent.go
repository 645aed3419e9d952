package core

import "context"

// Named is implemented by anything that exposes a display name (agents,
// senders, participants).
type Named interface {
	Name() string
}

// ReceiveFunc is the message-receive entry point of a conversable agent.
type ReceiveFunc func(ctx context.Context, msg AgentMessage, sender Named, requestReply, silent bool) error

// Conversable is a multi-agent runtime participant whose receive entry point
// can be replaced at registration time. Hooks wrap the current ReceiveFunc
// and install the wrapper via SetReceiveFunc.
type Conversable interface {
	Named
	ReceiveFunc() ReceiveFunc
	SetReceiveFunc(fn ReceiveFunc)
}
