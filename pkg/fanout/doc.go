// Package fanout runs one query against many targets concurrently.
//
// A run has two phases. All targets are resolved and connected first; if any
// target fails to connect, every opened pool is released and nothing is
// queried. Then each connected target streams its result set independently,
// handing normalized rows to a shared emitter as soon as they are decoded.
// A failing target never cancels its siblings; the first observed failure is
// returned once every target has finished, and every failure is logged.
package fanout
