// Package database opens the configured document or relational store.
package database

import "context"

// Store is the lifecycle surface shared by both back-ends.
type Store interface {
	Name() string
	HealthCheck(ctx context.Context) error
	Close(ctx context.Context) error
}

var (
	_ Store = (*DB)(nil)
	_ Store = (*Mongo)(nil)
)
