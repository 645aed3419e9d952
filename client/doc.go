// Package client implements core.Backend against the hosted memory service
// over JSON/HTTP.
//
// A Client is scoped to one user (or session / crew) identifier and one API
// key. Every call is a single blocking request: no retries, no backoff, no
// caching. Non-2xx responses surface as *APIError.
//
//	c, err := client.New("user-123", os.Getenv("MEMPHORA_API_KEY"))
//	ctxText, err := c.GetContext(ctx, "favourite drinks", 10)
package client
