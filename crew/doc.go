// Package crew adapts a core.Backend to multi-agent crews: each agent gets a
// namespaced memory handle, and the crew shares one group-level memory that
// every agent can read.
//
//	c := crew.New(backend, "my-crew")
//	researcher := c.ForAgent("researcher")
//	_, _ = researcher.Store(ctx, "found three sources", nil)
//	_, _ = c.StoreShared(ctx, "deadline is friday", nil)
//	res, _ := researcher.SearchCrew(ctx, "deadline", 10)
package crew
