// Package conversation adapts a core.Backend to the load / save / clear memory
// contract of conversational chains.
//
// Before each chain call, Load reads the user's query from the configured
// input key and returns backend context under the configured memory key,
// either as a single system message or as a raw string. After the call, Save
// forwards the completed human / AI turn to the backend. AsChainMemory exposes
// the adapter through core.ChainMemory.
package conversation
