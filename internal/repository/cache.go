package repository

import (
	"context"
	"database/sql"
	"sync"
)

// StatementCache keeps one prepared statement per query string for the
// lifetime of a repository.
type StatementCache struct {
	mu         sync.RWMutex
	statements map[string]*sql.Stmt
	db         *sql.DB
}

// NewStatementCache creates an empty cache bound to db
func NewStatementCache(db *sql.DB) *StatementCache {
	return &StatementCache{
		statements: make(map[string]*sql.Stmt),
		db:         db,
	}
}

// Get returns the cached statement for query, preparing it on first use.
func (c *StatementCache) Get(ctx context.Context, query string) (*sql.Stmt, error) {
	c.mu.RLock()
	stmt, ok := c.statements[query]
	c.mu.RUnlock()
	if ok {
		return stmt, nil
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	// Another caller may have prepared it while we waited for the lock
	if stmt, ok := c.statements[query]; ok {
		return stmt, nil
	}

	stmt, err := c.db.PrepareContext(ctx, query)
	if err != nil {
		return nil, err
	}
	c.statements[query] = stmt
	return stmt, nil
}

// Close closes every cached statement and empties the cache.
// The last close error, if any, is returned.
func (c *StatementCache) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	var lastErr error
	for _, stmt := range c.statements {
		if err := stmt.Close(); err != nil {
			lastErr = err
		}
	}
	c.statements = make(map[string]*sql.Stmt)
	return lastErr
}
