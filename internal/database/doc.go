// Package database provides the SQLite run history for bizreport.
//
// When analysis runs are recorded, HistoryDB stores one row per analysed
// file: the declared and actual business counts, a few breakdown figures
// and the report footer. Recording is opt-in; the data files themselves are
// never written.
//
// Design decision: We use SQLite (via modernc.org/sqlite) because:
// 1. The database is a single file under the XDG data directory
// 2. CGO-free implementation allows easy cross-compilation
// 3. WAL mode keeps reads cheap while a run is being recorded
package database
