// Package stats keeps aggregated scheduling counters for a simulation run.
// Counters are derived from the changes the kernel reports after each
// operation and can be observed through a callback or a context-carried
// tracker.
package stats
