package core

import "context"

// ChainMemory is the memory contract consumed by conversational chains: a
// chain loads memory variables before each call and saves the turn after it.
type ChainMemory interface {
	MemoryVariables() []string
	LoadMemoryVariables(ctx context.Context, inputs map[string]any) (map[string]any, error)
	SaveContext(ctx context.Context, inputs, outputs map[string]any) error
	Clear(ctx context.Context) error
}

// ChatMemory is the buffer contract consumed by chat engines. Engines put
// every message as it is produced and read context back with Get.
type ChatMemory interface {
	Get(ctx context.Context, input string) (string, error)
	Put(ctx context.Context, msg Message) error
	Reset()
	TokenLimit() int
}
