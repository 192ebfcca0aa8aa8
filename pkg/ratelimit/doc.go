// Package ratelimit paces requests sent to Kidplan.
//
// A Limiter spreads requests over a per-minute budget using a token bucket
// from golang.org/x/time/rate. Sleep provides the cancellable courtesy pause
// taken before every picture download.
package ratelimit
