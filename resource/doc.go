// Package resource implements the memory budget for entity storage.
//
// Every sequence and every dense tag block reserves its bytes up front.
// Reservation is non-blocking: when a hard limit is configured and would be
// exceeded, Reserve fails with core.ErrAllocationFailure and the caller
// returns that error instead of a partially built structure.
//
//	rc := resource.NewController(resource.Config{
//	    MemoryLimitBytes: 1 << 30, // 1GB limit
//	})
//	if err := rc.Reserve(n); err != nil {
//	    return err
//	}
//	defer rc.ReleaseMemory(n)
//
// All methods handle a nil Controller gracefully - they become no-ops.
package resource
