// Package httputil provides HTTP utilities for the PlantUML server client.
//
// # Retry
//
// [Retry] wraps HTTP requests with automatic retry for transient failures:
//
//   - Network errors
//   - 5xx server errors
//   - 429 rate limit responses
//
// Wrap transient failures in [RetryableError] so Retry knows to attempt the
// operation again; all other errors abort immediately. Rendering servers are
// frequently rate-limited public instances, so every image fetch goes
// through this path.
//
// It uses exponential backoff between attempts:
//
//	err := httputil.RetryWithBackoff(ctx, func() error {
//	    return fetchImage(url)
//	})
//
// # Configuration
//
// Default settings are suitable for most rendering servers:
//
//   - Max attempts: 3
//   - Base backoff: 1 second (doubling each retry)
package httputil
