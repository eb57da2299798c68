// Package jobs implements background tasks that run independently of
// HTTP request handling.
//
// Jobs follow a common lifecycle: Start launches the loop on its own
// goroutine, Stop closes the stop channel and waits for the loop to
// drain, and RunOnce executes a single pass for manual triggering or
// tests.
package jobs
