// Package pipeline orchestrates the crawl workflow for one or more seeds.
//
// A crawl is a sequence of steps (resolve, crawl, exif, finalize,
// persist) executed against a Job that carries the per-seed state. The
// BatchProcessor runs the same pipeline over multiple seeds with a
// bounded level of concurrency.
//
// Design decision: steps handle context cancellation themselves instead
// of the pipeline stopping at the first Done check. An interrupted crawl
// still needs its finalize and persist steps so partial findings are not
// lost.
package pipeline
