// Package async runs functions in goroutines and collects their results
// through typed futures.
//
//	futures := make([]*async.Future[struct{}], 0, len(emails))
//	for _, email := range emails {
//		futures = append(futures, async.Async(ctx, email, notify))
//	}
//	errs := async.Settle(futures...)
package async
