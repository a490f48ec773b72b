// Package pipeline orchestrates one batch: validate the directory, discover
// matching files, fan them out to a bounded pool of converters, and collect
// every outcome in enumeration order. It also hosts the cleanup operation,
// which shares discovery with the batch runner.
//
// A single item's failure never aborts a batch. The exceptions are
// environment-level: a missing transcoder binary or a canceled context stop
// further dispatch, and items never dispatched are recorded as failures so
// that Successes + Failures always equals the number of files discovered.
package pipeline
