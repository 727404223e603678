// Package postgres contains the PostgreSQL implementations of the Event Log
// and of the checkpoint.Store, using the pgx driver.
//
// Use RunMigrations to create the tables these components need.
package postgres
