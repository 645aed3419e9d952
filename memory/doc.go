// Package memory contains local core.Backend implementations and the ranking
// they share. The backend contract and result types reside in the core
// package; select an implementation (the in‑memory store below, the SQLite
// store in memory/sqlite, or the HTTP client package) at wiring time.
//
// Ranking is term based by default. Supplying an Embedder (for example
// memory/openai) switches stored records to cosine similarity ranking.
package memory
