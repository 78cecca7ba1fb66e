// Package scheduler runs long traversals cooperatively.
//
// RunChunked walks a positional source one item at a time on a Host. After
// every full batch it checks how long the current tick has been running and,
// once the time budget is spent, hands the rest of the work back to the host
// as a new tick. Items are visited in strictly increasing order and resume at
// the exact position where the previous tick stopped.
//
// Cancellation is cooperative. A caller-supplied predicate is consulted at the
// start of every tick and before completion; a cancelled job never calls its
// completion callback. JobCounter and Render implement the common pattern of
// invalidating an older pass when a newer one starts.
//
// Two hosts are provided: LoopHost, a single-goroutine event loop paced by an
// optional frame interval, and ManualHost, a queue with a controllable clock
// for deterministic tests.
package scheduler
