// Package job runs a recurring background job on a fixed interval.
//
// A Scheduler owns one goroutine that waits on a ticker from an injected
// clockwork.Clock and calls the job on every tick. It moves from Idle to
// Running on Start and to Stopped on Stop; a stopped scheduler cannot be
// restarted. Job failures and panics are logged and never end the loop.
package job
