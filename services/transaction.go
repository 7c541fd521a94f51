package services

import (
	"context"
	"errors"

	"github.com/upb/student-records/repositories"
)

// WithTransaction runs fn inside a transaction opened by txMgr. fn receives
// the transaction's context so repository calls made with it join the
// transaction. Errors that are not already domain errors come back as
// ErrTransactionFailed wrapping the cause.
func WithTransaction(ctx context.Context, txMgr repositories.TransactionManager, fn func(ctx context.Context, tx repositories.Transaction) error) error {
	err := txMgr.InTransaction(ctx, fn)
	if err == nil {
		return nil
	}

	var domainErr *DomainError
	if errors.As(err, &domainErr) {
		return err
	}
	return ErrTransactionFailed.Wrap(err)
}
