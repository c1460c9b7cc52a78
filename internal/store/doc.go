// Package store keeps a SQLite log of generation runs.
//
// A build id hashes the document hash, the script hash and the tool
// version, so regenerating an unchanged document with the same tool writes
// nothing new. Builds are ordered by seq, assigned on insert; wall time is
// never recorded.
//
// The connection runs in WAL mode with synchronous=NORMAL, a five second
// busy timeout and foreign keys enforced. Schema changes are numbered
// migrations tracked in PRAGMA user_version.
package store
