// Package retry retries connection establishment on transient failures with
// exponential backoff.
//
//	r := retry.New(retry.DefaultPolicy(), retry.IsTransientConnectError)
//	err := r.Do(ctx, func(ctx context.Context) error {
//	    return pool.Ping(ctx)
//	})
//
// Scripts are never retried: a failed script aborts its phase.
package retry
