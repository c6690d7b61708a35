package xcontext

import (
	"context"

	"gorm.io/gorm"
)

type dbTransaction struct {
	tx          *gorm.DB
	done        bool
	afterCommit []func()
}

// nestedTransaction is stored when WithDBTransaction is called on a context
// which already owns a running transaction.
type nestedTransaction struct {
	parent    *dbTransaction
	committed bool
}

func runningTransaction(ctx context.Context) *dbTransaction {
	switch t := ctx.Value(dbTxKey{}).(type) {
	case *dbTransaction:
		if !t.done {
			return t
		}
	case *nestedTransaction:
		if !t.parent.done {
			return t.parent
		}
	}

	return nil
}

// DB returns the running transaction of the context if it exists, otherwise
// the root database.
func DB(ctx context.Context) *gorm.DB {
	if t := runningTransaction(ctx); t != nil {
		return t.tx
	}

	db, ok := ctx.Value(dbKey{}).(*gorm.DB)
	if !ok {
		return nil
	}

	return db.WithContext(ctx)
}

// WithDBTransaction begins a transaction. Nested calls join the outer
// transaction, only the outermost owner really commits it.
func WithDBTransaction(ctx context.Context) context.Context {
	if t := runningTransaction(ctx); t != nil {
		return context.WithValue(ctx, dbTxKey{}, &nestedTransaction{parent: t})
	}

	return context.WithValue(ctx, dbTxKey{}, &dbTransaction{tx: DB(ctx).Begin()})
}

func WithCommitDBTransaction(ctx context.Context) error {
	switch t := ctx.Value(dbTxKey{}).(type) {
	case *dbTransaction:
		if t.done {
			return nil
		}

		t.done = true
		if err := t.tx.Commit().Error; err != nil {
			return err
		}

		for _, fn := range t.afterCommit {
			fn()
		}
		t.afterCommit = nil
	case *nestedTransaction:
		t.committed = true
	}

	return nil
}

// WithRollbackDBTransaction is safe to defer right after WithDBTransaction, it
// does nothing once the transaction was committed. An uncommitted nested
// transaction aborts the outer one.
func WithRollbackDBTransaction(ctx context.Context) {
	switch t := ctx.Value(dbTxKey{}).(type) {
	case *dbTransaction:
		if t.done {
			return
		}

		t.done = true
		t.tx.Rollback()
	case *nestedTransaction:
		if t.committed || t.parent.done {
			return
		}

		t.parent.done = true
		t.parent.tx.Rollback()
	}
}

// AfterCommit runs fn once the outermost running transaction is committed, or
// right away if no transaction is running. fn is dropped on rollback.
func AfterCommit(ctx context.Context, fn func()) {
	if t := runningTransaction(ctx); t != nil {
		t.afterCommit = append(t.afterCommit, fn)
		return
	}

	fn()
}
