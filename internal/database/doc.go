// Package database provides SQLite-based run history for cooccur.
//
// HistoryDB records every collection run (which category, which evidence
// source, normal or offline mode, matrix shape and collection metadata)
// and every analysis run (how many rows and columns were dropped, the
// score method, K, the outcome and the full run record as JSON).
//
// Design decision: We use SQLite (via modernc.org/sqlite) because the
// history is a single local file, the CGO-free driver cross-compiles
// cleanly, and WAL mode keeps reads cheap while a batch is writing.
package database
