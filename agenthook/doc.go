// Package agenthook records inter-agent conversations of a multi-agent
// runtime in a core.Backend.
//
// RegisterWithAgent wraps an agent's receive entry point with an interceptor:
// every inbound message is buffered locally and stored as a memory of its
// sender, then handed unchanged to the original receive function. Messages
// that mention an escalation keyword are additionally stored as escalation
// records.
package agenthook
