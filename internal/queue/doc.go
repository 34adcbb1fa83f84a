// Package queue persists subtitle jobs in SQLite and exposes helpers for
// driving their lifecycle.
//
// The Store manages database connections, schema initialization, and the
// PENDING -> PROCESSING -> COMPLETED|FAILED transitions used by the batch
// scheduler. Claim performs the atomic pending->processing transition so a
// job can never be picked up by two sweeps. Terminal states are only left
// via an explicit user-initiated retry.
//
// The database is treated as transient storage for in-flight jobs rather
// than a long-term archive. Schema changes bump the version in schema.go;
// users clear the database to adopt the new schema.
package queue
