// Package batch runs several independent searches concurrently.
//
// Each query is an ordinary sequential search with its own retries. The
// Processor only bounds how many of them run at the same time, using
// errgroup.SetLimit. A failed search does not stop the batch; its error
// is recorded in the query's report.
//
//	processor := batch.NewProcessor(fetcher, batch.WithConcurrency(4))
//	reports, err := processor.Process(ctx, queries)
//
// Reports are returned in the order of the input queries.
package batch
