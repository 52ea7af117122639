// Package task provides deferred execution of small units of work.
//
// A Scheduler runs a Task once a delay has elapsed without blocking the
// caller, and returns a Handle that can cancel the task while it is still
// pending. TimerScheduler uses real timers; ManualScheduler is stepped by
// an explicit clock for deterministic tests.
package task
