// Package timewindow decides whether an instant falls inside an active
// time window. It provides two independent predicate engines: a
// recurrence evaluator for repeating windows (daily, weekly, monthly,
// yearly, with optional end-date or occurrence-count bounds, evaluated
// in a fixed-offset recurrence time zone) and a five-field crontab
// matcher. Both are pure functions of a settings record and a
// timestamp; neither reads the system clock or holds state, so they
// are safe for concurrent use.
package timewindow
