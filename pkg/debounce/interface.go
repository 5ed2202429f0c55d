package debounce

// Debouncer holds at most one pending task. Each Trigger supersedes the previous one.
type Debouncer interface {
	// Trigger cancels any pending task and schedules fn to run after the quiet interval.
	Trigger(fn func())
	// Cancel drops the pending task, if any.
	Cancel()
	// Pending reports whether a task is scheduled and has not started.
	Pending() bool
}
