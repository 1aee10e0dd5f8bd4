package repositories

import (
	"context"
	"database/sql"
	"fmt"
)

// withTx runs fn inside a transaction. The transaction is rolled back
// on any error out of fn, so a failed multi-step mutation leaves every
// position and archival flag as it was.
func withTx(ctx context.Context, db *sql.DB, fn func(tx *sql.Tx) error) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("error starting transaction: %v", err)
	}
	defer tx.Rollback()

	if err := fn(tx); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("error committing transaction: %v", err)
	}
	return nil
}
