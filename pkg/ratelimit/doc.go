// Package ratelimit provides request pacing for the portal client.
//
// The downloader issues every request sequentially, so the limiter's job is
// politeness rather than burst control: it keeps page fetches and file
// downloads under a configured requests-per-minute ceiling.
//
// All limiters implement the Limiter interface:
//   - Allow() bool - Check if a request is allowed
//   - Wait() - Block until a request is allowed
//   - Reset() - Reset the limiter state
//
// Usage:
//
//	// 60 requests per minute
//	limiter := ratelimit.NewTokenBucket(60, time.Minute)
//
//	// Block until allowed, then proceed with the request
//	limiter.Wait()
package ratelimit
