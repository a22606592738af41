// Package database provides connection management, a bounded connection pool,
// idempotent schema migrations, foreign key handling, SQL data seeding,
// configuration types, logging, and health checks for the student wellbeing
// store, built on top of Bun and SQLite.
package database
