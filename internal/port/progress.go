package port

// ProgressFunc receives completion signals from long-running batch
// operations: done units finished out of total. It may be called from
// multiple goroutines. A nil ProgressFunc is valid and disables reporting;
// its absence never affects results.
type ProgressFunc func(done, total int)
