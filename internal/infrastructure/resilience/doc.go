/*
Package resilience provides the circuit breaker that guards outbound fetches.

A Breaker starts closed. Failures counted by Settings.IsFailure feed
ReadyToTrip; once it trips, calls fail fast with ErrCircuitOpen until
Timeout passes. The breaker then lets MaxRequests trial calls through
(half-open) and closes again after that many consecutive successes.

	Closed --[trip]--> Open --[timeout]--> Half-Open --[successes]--> Closed
	                     ^                     |
	                     +-----[failure]-------+

Group keeps one breaker per key (the fetcher uses the URL origin).

	status, err := resilience.Call(b, func() (int, error) {
		return fetch(ctx)
	})
*/
package resilience
