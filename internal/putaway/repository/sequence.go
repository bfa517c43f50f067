package repository

import (
	"context"

	"github.com/jmoiron/sqlx"

	"github.com/tfc-warehouse/putaway-backend/pkg/database"
	"github.com/tfc-warehouse/putaway-backend/pkg/errors"
)

// SequenceRepository allocates document numbers from the Seqnum table.
type SequenceRepository struct {
	db *database.DB
}

// NewSequenceRepository creates a new sequence repository
func NewSequenceRepository(db *database.DB) *SequenceRepository {
	return &SequenceRepository{db: db}
}

// Next increments the named counter and returns the post-increment value.
// The UPDATE takes the row lock, so concurrent allocations serialize here;
// the caller must run this inside its own transaction so a rollback undoes
// the bump. Allocate late - the counter row is hot.
func (r *SequenceRepository) Next(ctx context.Context, tx *sqlx.Tx, name string) (int64, error) {
	var next int64
	query := `UPDATE Seqnum SET SeqNum = SeqNum + 1 WHERE SeqName = $1 RETURNING SeqNum`

	if err := tx.QueryRowContext(ctx, query, name).Scan(&next); err != nil {
		if database.IsNoRows(err) {
			return 0, errors.InvariantViolation("sequence " + name + " not found")
		}
		return 0, database.MapSQLError(err)
	}
	return next, nil
}
