// Package orchestration runs one or more integration strategies for a job,
// streams their progress to a reporter and checks that their results agree.
// Presentation stays behind the ProgressReporter and ResultPresenter
// interfaces so the CLI, the TUI and tests can share the same flow.
package orchestration
