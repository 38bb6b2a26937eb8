// Package retry runs an operation repeatedly until it succeeds or a bound
// is reached.
//
// Features:
//   - exponential, linear and constant backoff strategies
//   - jitter on the growing strategies
//   - cancellation through Config.Context
//   - pluggable retry predicates (DefaultRetryIf, RetryUnlessCanceled)
//
// Wowhead page fetches use a fixed schedule:
//
//	html, err := retry.DoWithResult(func() (string, error) {
//		return fetch(ctx, url)
//	}, &retry.Config{
//		MaxAttempts: 5,
//		Backoff:     &retry.ConstantBackoff{Delay: 100 * time.Millisecond},
//		RetryIf:     retry.RetryUnlessCanceled,
//		Context:     ctx,
//	})
//
// When all attempts fail the returned error wraps both ErrMaxAttempts and
// the last failure.
package retry
