// Package database configures the connection handle, hands out transactional
// sessions, and keeps the registry of tables created at startup. It is built
// on Bun over database/sql with MySQL as the default dialect.
package database
