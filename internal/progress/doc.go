// Package progress carries integration progress from workers to whatever is
// displaying it. Workers report completed index counts to a Tracker, which
// turns them into fractional updates; observers fan those updates out to
// channels, loggers or nothing at all.
package progress
