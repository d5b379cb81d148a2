package store

import (
	"github.com/jmoiron/sqlx"
)

// DBTX abstracts the database access layer. It is implemented by both
// *sqlx.DB and *sqlx.Tx so stores can run inside or outside a transaction.
type DBTX interface {
	sqlx.ExtContext
}
