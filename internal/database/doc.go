// Package database provides SQLite-based storage for uidiff.
//
// This package implements the HistoryDB, which stores every saved
// comparison together with its diff report, so that score trends of a
// screen can be reviewed across builds.
//
// SQLite (via modernc.org/sqlite) keeps the history in a single CGO-free
// file next to the other uidiff data, and WAL mode lets `uidiff history`
// read while a batch run is writing.
package database
