package engine

import (
	"log/slog"
	"math"
	"sync"
)

// Unary intrinsic identifiers. The id indexes the process-wide dispatch
// table registered by AcquireTarget.
const (
	intrSqrt = iota
	intrExp
	intrLog
	intrAbs
	intrFloor
	numIntrinsics
)

// target is the process-wide backend state: the intrinsic dispatch table
// shared by every engine in the process. It is registered exactly once and
// reference-counted so teardown is explicit rather than implicit global
// mutation.
var target struct {
	mu         sync.Mutex
	refs       int
	intrinsics [numIntrinsics]func(float64) float64
}

// AcquireTarget registers the process-wide target state if this is the first
// holder and increments the reference count. Idempotent and safe for
// concurrent use. Every engine acquires the target at construction and
// releases it on Close.
func AcquireTarget() {
	target.mu.Lock()
	defer target.mu.Unlock()

	if target.refs == 0 {
		target.intrinsics[intrSqrt] = math.Sqrt
		target.intrinsics[intrExp] = math.Exp
		target.intrinsics[intrLog] = math.Log
		target.intrinsics[intrAbs] = math.Abs
		target.intrinsics[intrFloor] = math.Floor
		slog.Debug("target registered", "intrinsics", numIntrinsics)
	}
	target.refs++
}

// ReleaseTarget decrements the reference count and tears the dispatch table
// down when the last holder releases. Releasing an unacquired target is a
// programming error and panics.
func ReleaseTarget() {
	target.mu.Lock()
	defer target.mu.Unlock()

	if target.refs == 0 {
		panic("engine: ReleaseTarget without matching AcquireTarget")
	}
	target.refs--
	if target.refs == 0 {
		target.intrinsics = [numIntrinsics]func(float64) float64{}
		slog.Debug("target released")
	}
}

// TargetRefs returns the current holder count. Used for testing and
// diagnostics.
func TargetRefs() int {
	target.mu.Lock()
	defer target.mu.Unlock()
	return target.refs
}

// intrinsic applies the unary intrinsic with the given id to x in float64
// and narrows back to float32, matching the evaluator's 32-bit value
// representation.
func intrinsic(id uint32, x float32) float32 {
	return float32(target.intrinsics[id](float64(x)))
}
