// Package resource limits what a payload load may consume.
//
// The Controller governs three resources:
//
//   - Memory: a budget for raw payload bytes held at once (fail-fast)
//   - Concurrency: the number of tables fetched and decoded in parallel
//   - IO: a token bucket on bytes read from blob storage
//
// # Usage
//
//	rc := resource.NewController(resource.Config{
//	    MaxConcurrentLoads: 4,
//	    IOLimitBytesPerSec: 50 << 20,
//	})
//
//	if err := rc.AcquireLoad(ctx); err != nil {
//	    return err
//	}
//	defer rc.ReleaseLoad()
//
//	data, err := rc.ReadBlob(ctx, blob)
//
// All methods are safe for concurrent use, and a nil *Controller imposes no
// limits.
package resource
