package postgres

import (
	"github.com/lib/pq"
)

// Postgres implements model.Model on the relational store.
type Postgres struct{}

var postgresStore = &Postgres{}

func GetStore() *Postgres {
	return postgresStore
}

const errorCodeUniqueViolation = "23505"

func isUniqueViolationError(err error) bool {
	pqErr, ok := err.(*pq.Error)
	return ok && pqErr.Code == errorCodeUniqueViolation
}

const (
	defaultListLimit = 50
	maxListLimit     = 500
)

func sanitizeLimit(limit int) int {
	if limit <= 0 {
		return defaultListLimit
	}
	if limit > maxListLimit {
		return maxListLimit
	}
	return limit
}
