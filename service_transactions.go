package stagekit

import (
	"context"
	"fmt"

	"github.com/fernandezvara/dbkit"
)

// Transaction executes a function within a database transaction with
// automatic commit/rollback. The callback receives the transactional handle
// and must use it for every statement that should participate. If the
// function returns an error, the transaction is rolled back; otherwise it
// is committed. Nested calls run on savepoints.
//
// Example:
//
//	err := service.Transaction(ctx, func(tx dbkit.IDB) error {
//	    if _, err := tx.NewInsert().Model(&venue).Exec(ctx); err != nil {
//	        return err // This will cause a rollback
//	    }
//	    return nil // This will cause a commit
//	})
func (s *Service) Transaction(ctx context.Context, fn func(tx dbkit.IDB) error) error {
	// Already in a transaction: run on a savepoint.
	if tx, ok := s.db.(*dbkit.Tx); ok {
		return tx.Transaction(ctx, func(tx *dbkit.Tx) error {
			return fn(tx)
		})
	}

	if db, ok := s.db.(*dbkit.DBKit); ok {
		return db.Transaction(ctx, func(tx *dbkit.Tx) error {
			return fn(tx)
		})
	}

	return fmt.Errorf("transaction support requires a dbkit.DBKit or dbkit.Tx instance")
}

// TransactionWithOptions executes a function within a database transaction
// with custom options (isolation level, read-only, ...). Options are
// ignored when already inside a transaction, which nests on a savepoint.
func (s *Service) TransactionWithOptions(ctx context.Context, opts dbkit.TxOptions, fn func(tx dbkit.IDB) error) error {
	if tx, ok := s.db.(*dbkit.Tx); ok {
		return tx.Transaction(ctx, func(tx *dbkit.Tx) error {
			return fn(tx)
		})
	}

	if db, ok := s.db.(*dbkit.DBKit); ok {
		return db.TransactionWithOptions(ctx, opts, func(tx *dbkit.Tx) error {
			return fn(tx)
		})
	}

	return fmt.Errorf("transaction support requires a dbkit.DBKit or dbkit.Tx instance")
}

// ReadOnlyTransaction executes a function within a read-only transaction.
// Useful for multi-query reads that want a consistent snapshot.
func (s *Service) ReadOnlyTransaction(ctx context.Context, fn func(tx dbkit.IDB) error) error {
	return s.TransactionWithOptions(ctx, dbkit.ReadOnlyTxOptions(), fn)
}
