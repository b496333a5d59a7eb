// Package dynamo provides the primitives shared by every layer of the
// deformable-body simulator.
//
//   - [Points]: an ordered point buffer with validity and reduction helpers
//   - domain errors ([ErrGeometry], [ErrDuplicateName], [ErrUnknownObject], ...)
//     and the [Error] wrapper that attaches an operation and entity name
//   - [ParallelFor]: chunked fan-out used by the solvers
//
// # Errors
//
// All composition errors wrap one of the sentinels so callers can branch
// with errors.Is:
//
//	_, err := sc.AddObject("floor", reps, cfg)
//	if errors.Is(err, dynamo.ErrDuplicateName) {
//	    // pick another name
//	}
package dynamo
