// Package retry retries transient Kidplan request failures with
// exponential backoff.
//
// Typed errors from pkg/errors decide whether a failure is worth another
// attempt: network, rate-limit and server errors are retried, everything
// else fails immediately.
//
//	err := retry.Do(ctx, func() error {
//		return client.fetch(ctx, url)
//	}, retry.DefaultConfig())
package retry
