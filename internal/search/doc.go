// Package search fetches DuckDuckGo lite result pages and turns them into
// search results.
//
// A Fetcher sends one HTTP GET per attempt. Each attempt takes the next
// endpoint from a proxy.Ring (or connects directly when the ring is empty),
// builds a fresh transport for it and waits a jittered backoff before the
// next attempt when it fails. Nothing, not even cookies, is carried from one
// attempt to the next.
//
// # Usage
//
//	ring, _ := proxy.LoadFile("proxies.txt")
//	fetcher := search.New(search.WithRing(ring), search.WithLogger(logger))
//
//	results, err := fetcher.Search(ctx, model.NewSearchQuery("golang generics",
//	    model.WithRegion("us-en"),
//	    model.WithTimeRange(model.TimeRangeWeek),
//	))
//	var fetchErr *search.FetchError
//	if errors.As(err, &fetchErr) {
//	    logger.Error("search failed", "attempts", fetchErr.Attempts, "error", fetchErr.Last)
//	}
//
// # Request
//
// Every request carries the q parameter. The kl (region) and df (time range)
// parameters are only sent when the query sets them. The header set returned
// by DefaultHeaders is applied to every request.
package search
