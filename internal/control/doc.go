// Package control drives simulated objects from external pose streams.
//
// A [Binding] links a [PoseSource] to one object of a scene. Pose samples
// are written with [Binding.UpdateFromExternalPose] from any goroutine and
// consumed by the next simulation step as a target, never as a direct mesh
// overwrite:
//
//   - [ModeTarget]: the rest shape, rotated and translated by the pose, is
//     the position goal of the object
//   - [ModeForce]: a vector [PID] on the centroid error yields an
//     external acceleration
//
// Scripted sources stand in for tracking hardware:
//
//   - [StaticSource]: a pose set by hand
//   - [CircleSource]: a point circling in the xy plane
//
// # Usage
//
//	b, _ := sc.Attach("tool", control.NewCircleSource(1, 0.5))
//	go control.Poll(ctx, b.Source(), b, 20*time.Millisecond)
package control
