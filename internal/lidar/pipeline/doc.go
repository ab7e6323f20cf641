// Package pipeline drives the per-frame viewer flow.
//
// A Listener receives raw sensor buffers on the simulator's delivery
// goroutine, decodes them one at a time and publishes each result to a
// lidar.FrameStore. A Loop advances the world, hands the latest point set to
// a Renderer and optionally records snapshots through a RecordPolicy. A
// Session acquires the simulator resources and releases them in a fixed
// order on every exit path.
package pipeline
