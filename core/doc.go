// Package core provides the foundational contracts and value types shared by
// every MemoryMesh adapter. It defines:
//
//   - Backend (the remote or local memory service every adapter forwards to)
//   - Facts, search results and memory records returned by a Backend
//   - Chat messages and tagged inter-agent messages
//   - Host capability interfaces (ChainMemory, ChatMemory, Conversable)
//
// The package keeps implementation concerns (HTTP transport, persistence,
// ranking, framework specific adapters) out of scope, exposing small
// interfaces so adapters and backends can evolve independently.
package core
