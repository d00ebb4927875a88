// Package metrics provides observability hooks for distribution runs.
//
// Components receive a Recorder through dependency injection. The default is
// NoopRecorder, so callers never nil-check:
//
//	runner := pipeline.NewRunner(cfg, tc) // records to NoopRecorder
//	runner.WithRecorder(metrics.NewPrometheusRecorder(reg))
//
// The CLI has no long-lived process to scrape, so the Prometheus registry is
// exported after each run in text exposition format (WriteTextfile), suitable
// for the node-exporter textfile collector.
package metrics
