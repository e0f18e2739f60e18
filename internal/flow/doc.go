// Package flow runs small, statically declared step graphs over a typed
// state value.
//
// A flow starts at the step named "start" and finishes at "end". A step
// with one successor hands its state on. A step with several successors
// fans out: every branch gets its own copy of the state and the branches run
// concurrently until they converge on a join step, which receives the branch
// results as Inputs and builds the state that continues from there. The join
// starts from the zero state, so anything it wants to keep must be copied
// from its inputs explicitly.
package flow
