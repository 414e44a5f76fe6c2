// Package tracing integrates OpenTelemetry with the kernel simulator. Every
// runtime operation runs in a span so a scheduling session can be replayed in
// any OpenTelemetry back-end. Keeping instrumentation here lets callers that do
// not need tracing leave the global provider untouched.
package tracing
