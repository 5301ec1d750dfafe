// Package database provides connection management for the two named
// backends, schema migrations, driver error classification, query hooks,
// health checks, and related utilities built on top of Bun.
package database
