// Package httputil provides infrastructure shared by the HTTP-backed
// clients in this module:
//
//   - [Cache]: file-based response caching with TTL expiry
//   - [Retry]: automatic retry with exponential backoff
//
// The model client uses [Cache] to avoid re-paying generation latency
// for prompts and explanations it has already answered, and [Retry] to
// ride out transient provider failures.
//
// Cache keys should be namespaced per concern (e.g. "explain:",
// "generate:") to avoid collisions. Use [Cache.Namespace] for that.
package httputil
