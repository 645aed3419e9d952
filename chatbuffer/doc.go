// Package chatbuffer adapts a core.Backend to the memory buffer contract of
// chat engines. A Buffer keeps the session's ordered chat history locally and
// persists every completed user / assistant pair to the backend. AsChatMemory
// exposes the buffer through core.ChatMemory, pairing each assistant message
// with the user message buffered right before it.
package chatbuffer
