// Package history records batch runs and single checks so they can be
// listed, inspected and pruned later.
//
// Two Store implementations exist. MemoryStore keeps runs in process memory.
// SQLiteStore persists them through database/sql with either the cgo driver
// ("sqlite3", github.com/mattn/go-sqlite3) or the pure Go driver ("sqlite",
// modernc.org/sqlite):
//
//	store, err := history.Open(cfg.History, logger)
//	if err != nil {
//	    return err
//	}
//	if store != nil {
//	    defer store.Close()
//	}
//
// Pruner deletes runs older than the retention period and Scheduler runs it
// on a cron schedule.
package history
