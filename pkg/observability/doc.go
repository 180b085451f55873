/*
Package observability exposes Prometheus metrics for annotation sessions and apply runs.

Metrics are fed through the engine's change notifications, so the core never depends on a
metrics library: install Metrics.Hooks alongside any other hooks with domain.ComposeHooks.
*/
package observability
