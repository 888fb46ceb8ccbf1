/*
Package observability provides tools for monitoring the formstate engine.

It turns the engine's lifecycle hooks into structured log lines (LoggingHooks)
and Prometheus metrics (Metrics), and merges several hook sets into one
(Combine).
*/
package observability
