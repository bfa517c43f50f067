package repository

import (
	"context"

	"github.com/tfc-warehouse/putaway-backend/pkg/database"
)

// RemarkOption is one approved transfer annotation.
type RemarkOption struct {
	ID   int    `db:"id" json:"id"`
	Name string `db:"remark_name" json:"name"`
}

// RemarkRepository reads the putawaylist catalog.
type RemarkRepository struct {
	db *database.DB
}

// NewRemarkRepository creates a new remark repository
func NewRemarkRepository(db *database.DB) *RemarkRepository {
	return &RemarkRepository{db: db}
}

// ListActive returns the active remarks ordered by id.
func (r *RemarkRepository) ListActive(ctx context.Context) ([]*RemarkOption, error) {
	var rows []*RemarkOption
	query := `SELECT id, remark_name FROM putawaylist WHERE is_active = 1 ORDER BY id`

	if err := r.db.SelectContext(ctx, &rows, query); err != nil {
		return nil, database.MapSQLError(err)
	}
	return rows, nil
}
