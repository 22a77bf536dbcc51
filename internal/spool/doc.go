// Package spool uploads record files dropped into a directory.
//
// A Watcher scans its directory for .json and .csv files, writes each one
// to a dataset, and records the outcome in a ledger file kept in the same
// directory. fsnotify events trigger a debounced rescan, so files are picked
// up shortly after they are written. A file is sent again only when its
// size or modification time changes.
package spool
