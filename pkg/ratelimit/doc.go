// Package ratelimit paces requests against the Battle.net API.
//
// Implementations of Pacer:
//
// Staggered:
//   - task i waits Step*i before its first request
//   - used for concurrent fan-out (mounts, toys, titles)
//   - wrap with Batch so the delay counts from the batch start, not from
//     when a task got a worker slot
//
// Fixed:
//   - every task waits the same Delay
//   - used for sequential loops (pets, mythic seasons)
//
// TokenRate:
//   - shared golang.org/x/time/rate bucket
//   - holds a steady request rate no matter how many tasks run at once
//
// Usage:
//
//	pacer := ratelimit.Batch(ratelimit.Staggered{Step: 250 * time.Millisecond})
//	if err := pacer.Wait(ctx, i); err != nil {
//	    return err
//	}
package ratelimit
