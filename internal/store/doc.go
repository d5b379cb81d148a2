// Package store defines the persistence interfaces for users, teams, projects,
// tasks and notifications, plus the shared store errors. Implementations live
// in internal/platform/postgres.
package store
