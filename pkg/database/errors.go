package database

import (
	"context"
	"database/sql"
	stderrors "errors"

	"github.com/lib/pq"
	"github.com/tfc-warehouse/putaway-backend/pkg/errors"
)

// Postgres error codes the transfer path cares about.
const (
	codeLockNotAvailable     = "55P03"
	codeQueryCanceled        = "57014"
	codeSerializationFailure = "40001"
	codeDeadlockDetected     = "40P01"
)

// MapSQLError converts a store-level error to an AppError. Lock-wait
// exhaustion and deadlocks map to Contention, statement timeouts to Timeout,
// everything else to SystemError. sql.ErrNoRows is NOT handled here - the
// repositories translate it per lookup.
func MapSQLError(err error) *errors.AppError {
	if err == nil {
		return nil
	}

	var pqErr *pq.Error
	if stderrors.As(err, &pqErr) {
		switch string(pqErr.Code) {
		case codeLockNotAvailable, codeDeadlockDetected, codeSerializationFailure:
			return errors.Contention(err)
		case codeQueryCanceled:
			return errors.Timeout(err)
		}
	}

	if stderrors.Is(err, context.DeadlineExceeded) {
		return errors.Timeout(err)
	}

	return errors.System(err)
}

// IsNoRows reports whether err is the driver's empty-result sentinel.
func IsNoRows(err error) bool {
	return stderrors.Is(err, sql.ErrNoRows)
}
