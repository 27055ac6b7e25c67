// Package database provides SQLite-based persistence for crawl runs.
//
// Every completed crawl is stored as a run row plus one row per finding,
// so past results can be listed and re-exported without crawling again.
//
// Design decision: We use modernc.org/sqlite (pure Go) rather than
// mattn/go-sqlite3 to avoid cgo, which keeps cross-compilation trivial.
package database
