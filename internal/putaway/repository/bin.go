package repository

import (
	"context"

	"github.com/jmoiron/sqlx"

	"github.com/tfc-warehouse/putaway-backend/pkg/database"
)

// BinSummary is one bin-master row for the pickers.
type BinSummary struct {
	Location    string  `db:"location" json:"location"`
	BinNo       string  `db:"bin_no" json:"bin_no"`
	Description string  `db:"description" json:"description"`
	Aisle       string  `db:"aisle" json:"aisle"`
	Row         string  `db:"bin_row" json:"row"`
	Rack        string  `db:"rack" json:"rack"`
	LotStatus   *string `db:"lot_status" json:"lot_status,omitempty"`
}

// BinRepository reads the BINMaster table.
type BinRepository struct {
	db *database.DB
}

// NewBinRepository creates a new bin repository
func NewBinRepository(db *database.DB) *BinRepository {
	return &BinRepository{db: db}
}

// Exists reports whether the bin is defined for the location. q may be the
// pool or an open transaction.
func (r *BinRepository) Exists(ctx context.Context, q sqlx.QueryerContext, location, binNo string) (bool, error) {
	var count int
	query := `SELECT COUNT(*) FROM BINMaster WHERE Location = $1 AND BinNo = $2`

	if err := sqlx.GetContext(ctx, q, &count, query, location, binNo); err != nil {
		return false, database.MapSQLError(err)
	}
	return count > 0, nil
}

// Search lists bins, optionally filtered, paginated. When a lot context is
// given the result carries the lot's status at each bin so the picker can
// show consolidation targets.
func (r *BinRepository) Search(ctx context.Context, search string, page, limit int, lotNo, itemKey, location string) ([]*BinSummary, int64, error) {
	offset := (page - 1) * limit
	hasLotContext := lotNo != "" && itemKey != "" && location != ""

	var total int64
	if search != "" {
		pattern := "%" + search + "%"
		countQuery := `
			SELECT COUNT(*) FROM BINMaster
			WHERE BinNo LIKE $1 OR Location LIKE $1 OR Description LIKE $1`
		if err := r.db.GetContext(ctx, &total, countQuery, pattern); err != nil {
			return nil, 0, database.MapSQLError(err)
		}
	} else {
		if err := r.db.GetContext(ctx, &total, `SELECT COUNT(*) FROM BINMaster`); err != nil {
			return nil, 0, database.MapSQLError(err)
		}
	}

	var rows []*BinSummary
	var err error

	switch {
	case hasLotContext && search != "":
		query := `
			SELECT b.Location AS location, b.BinNo AS bin_no, b.Description AS description,
			       b.aisle AS aisle, b.row AS bin_row, b.rack AS rack, l.LotStatus AS lot_status
			FROM BINMaster b
			LEFT JOIN LotMaster l ON
				l.LotNo = $1 AND l.ItemKey = $2 AND l.LocationKey = $3 AND l.BinNo = b.BinNo
			WHERE b.BinNo LIKE $4 OR b.Location LIKE $4 OR b.Description LIKE $4
			ORDER BY b.RecDate DESC
			OFFSET $5 LIMIT $6`
		err = r.db.SelectContext(ctx, &rows, query, lotNo, itemKey, location, "%"+search+"%", offset, limit)
	case hasLotContext:
		query := `
			SELECT b.Location AS location, b.BinNo AS bin_no, b.Description AS description,
			       b.aisle AS aisle, b.row AS bin_row, b.rack AS rack, l.LotStatus AS lot_status
			FROM BINMaster b
			LEFT JOIN LotMaster l ON
				l.LotNo = $1 AND l.ItemKey = $2 AND l.LocationKey = $3 AND l.BinNo = b.BinNo
			ORDER BY b.RecDate DESC
			OFFSET $4 LIMIT $5`
		err = r.db.SelectContext(ctx, &rows, query, lotNo, itemKey, location, offset, limit)
	case search != "":
		query := `
			SELECT Location AS location, BinNo AS bin_no, Description AS description,
			       aisle AS aisle, row AS bin_row, rack AS rack, NULL AS lot_status
			FROM BINMaster
			WHERE BinNo LIKE $1 OR Location LIKE $1 OR Description LIKE $1
			ORDER BY RecDate DESC
			OFFSET $2 LIMIT $3`
		err = r.db.SelectContext(ctx, &rows, query, "%"+search+"%", offset, limit)
	default:
		query := `
			SELECT Location AS location, BinNo AS bin_no, Description AS description,
			       aisle AS aisle, row AS bin_row, rack AS rack, NULL AS lot_status
			FROM BINMaster
			ORDER BY RecDate DESC
			OFFSET $1 LIMIT $2`
		err = r.db.SelectContext(ctx, &rows, query, offset, limit)
	}
	if err != nil {
		return nil, 0, database.MapSQLError(err)
	}
	return rows, total, nil
}
