// Package jobs runs batch checks over workbooks and triggers them.
//
// Runner reads a sheet, runs it through the batch processor and writes the
// result workbook, either between local files (RunFile) or between remote
// prefixes (RunLatestRemote, RunRemoteKey). Watcher triggers RunFile for
// sheets dropped into an inbox directory; Scheduler triggers
// RunLatestRemote on a cron schedule.
package jobs
