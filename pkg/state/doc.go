// Package state holds the request-state containers of one operator session.
//
// A container mirrors a slice of remote data and the lifecycle of the
// requests that feed it. Every asynchronous action moves through
// idle -> pending -> fulfilled|rejected, and the response of a fulfilled
// action is spliced directly into the held data. There is no retry, no
// invalidation and no conflict resolution: the last response wins.
//
// # Containers
//
//   - ProductStore: the catalog mirror (one page of products, pagination
//     offsets, the product being viewed, loading and error flags)
//   - AuthStore: the operator identity (token, profile, loading and error flags)
//
// Both are safe for concurrent use. Network calls are made without holding
// the lock; only the reductions are serialised.
package state
