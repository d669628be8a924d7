// Package telemetry emits SkillScout business and health metrics.
//
// Handlers never talk to a metrics backend directly. They receive a *Metrics
// value and call small domain helpers (Questions.Viewed, Admin.Operation,
// Evaluation.Failure, System.DatabaseOperation, ...) which translate the event
// into one or more Emit calls on the shared Emitter.
//
// Emit is best-effort: it never returns an error and never panics. Invalid
// input, backend failures and backend panics are logged as warnings and the
// call returns normally, so monitoring cannot affect the request that
// triggered it.
//
// Submissions reach a backend through the Submitter interface. New selects
// CloudWatch, an OpenTelemetry exporter (Prometheus or OTLP/HTTP) or a
// log-only dry run from Config.
package telemetry
