package repository

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"

	"github.com/tfc-warehouse/putaway-backend/pkg/database"
	"github.com/tfc-warehouse/putaway-backend/pkg/errors"
)

// LotKey identifies one LotMaster row.
type LotKey struct {
	ItemKey  string
	Location string
	LotNo    string
	BinNo    string
}

// LotRow mirrors the LotMaster columns the engine touches.
type LotRow struct {
	LotNo          string          `db:"lot_no"`
	ItemKey        string          `db:"item_key"`
	Location       string          `db:"location_key"`
	BinNo          string          `db:"bin_no"`
	VendorKey      string          `db:"vendor_key"`
	VendorLotNo    string          `db:"vendor_lot_no"`
	DateReceived   time.Time       `db:"date_received"`
	DateExpiry     time.Time       `db:"date_expiry"`
	LotStatus      string          `db:"lot_status"`
	QtyOnHand      decimal.Decimal `db:"qty_on_hand"`
	QtyCommitSales decimal.Decimal `db:"qty_commit_sales"`
	QtyReceived    decimal.Decimal `db:"qty_received"`
}

// LotDetail is a lot row joined to its item master entry, for the pickers.
type LotDetail struct {
	LotRow
	ItemDescription string `db:"item_description"`
	StockUOM        string `db:"stock_uom"`
}

const lotColumns = `
	LotNo AS lot_no, ItemKey AS item_key, LocationKey AS location_key,
	BinNo AS bin_no, VendorKey AS vendor_key, VendorLotNo AS vendor_lot_no,
	DateReceived AS date_received, DateExpiry AS date_expiry,
	LotStatus AS lot_status, QtyOnHand AS qty_on_hand,
	QtyCommitSales AS qty_commit_sales, QtyReceived AS qty_received`

// Qualified variant for queries joining INMAST.
const lotColumnsJoined = `
	l.LotNo AS lot_no, l.ItemKey AS item_key, l.LocationKey AS location_key,
	l.BinNo AS bin_no, l.VendorKey AS vendor_key, l.VendorLotNo AS vendor_lot_no,
	l.DateReceived AS date_received, l.DateExpiry AS date_expiry,
	l.LotStatus AS lot_status, l.QtyOnHand AS qty_on_hand,
	l.QtyCommitSales AS qty_commit_sales, l.QtyReceived AS qty_received`

// LotRepository handles LotMaster persistence
type LotRepository struct {
	db *database.DB
}

// NewLotRepository creates a new lot repository
func NewLotRepository(db *database.DB) *LotRepository {
	return &LotRepository{db: db}
}

// Get reads a lot row without locking it. Snapshot reads only; writers must
// use GetForUpdate inside their transaction.
func (r *LotRepository) Get(ctx context.Context, key LotKey) (*LotRow, error) {
	var row LotRow
	query := `SELECT ` + lotColumns + `
		FROM LotMaster
		WHERE LotNo = $1 AND ItemKey = $2 AND LocationKey = $3 AND BinNo = $4`

	if err := r.db.GetContext(ctx, &row, query, key.LotNo, key.ItemKey, key.Location, key.BinNo); err != nil {
		if database.IsNoRows(err) {
			return nil, errors.LotNotFound(key.LotNo, key.BinNo)
		}
		return nil, database.MapSQLError(err)
	}
	return &row, nil
}

// GetForUpdate reads a lot row under FOR UPDATE, serializing concurrent
// transfers on the same source row for the life of tx.
func (r *LotRepository) GetForUpdate(ctx context.Context, tx *sqlx.Tx, key LotKey) (*LotRow, error) {
	var row LotRow
	query := `SELECT ` + lotColumns + `
		FROM LotMaster
		WHERE LotNo = $1 AND ItemKey = $2 AND LocationKey = $3 AND BinNo = $4
		FOR UPDATE`

	if err := tx.GetContext(ctx, &row, query, key.LotNo, key.ItemKey, key.Location, key.BinNo); err != nil {
		if database.IsNoRows(err) {
			return nil, errors.LotNotFound(key.LotNo, key.BinNo)
		}
		return nil, database.MapSQLError(err)
	}
	return &row, nil
}

// AddCommitSales applies a signed delta to QtyCommitSales on the locked row
// and stamps the row with the transfer document. The caller holds the row
// lock from GetForUpdate.
func (r *LotRepository) AddCommitSales(ctx context.Context, tx *sqlx.Tx, key LotKey, delta decimal.Decimal, documentNo string, tranType int, userID string, now time.Time) error {
	query := `
		UPDATE LotMaster
		SET QtyCommitSales = QtyCommitSales + $1,
		    DocumentNo = $2, TransactionType = $3, RecUserId = $4, Recdate = $5
		WHERE LotNo = $6 AND ItemKey = $7 AND LocationKey = $8 AND BinNo = $9`

	result, err := tx.ExecContext(ctx, query,
		delta, documentNo, tranType, userID, now,
		key.LotNo, key.ItemKey, key.Location, key.BinNo,
	)
	if err != nil {
		return database.MapSQLError(err)
	}

	affected, _ := result.RowsAffected()
	if affected == 0 {
		return errors.LotNotFound(key.LotNo, key.BinNo)
	}
	return nil
}

// Status returns the lot status at a bin and whether the row exists.
func (r *LotRepository) Status(ctx context.Context, tx *sqlx.Tx, key LotKey) (string, bool, error) {
	var status string
	query := `SELECT LotStatus AS lot_status
		FROM LotMaster
		WHERE LotNo = $1 AND ItemKey = $2 AND LocationKey = $3 AND BinNo = $4`

	if err := tx.GetContext(ctx, &status, query, key.LotNo, key.ItemKey, key.Location, key.BinNo); err != nil {
		if database.IsNoRows(err) {
			return "", false, nil
		}
		return "", false, database.MapSQLError(err)
	}
	return status, true, nil
}

// FindByLotNo returns every bin holding the lot with on-hand stock, joined
// to the item master for the scanner display.
func (r *LotRepository) FindByLotNo(ctx context.Context, lotNo string) ([]*LotDetail, error) {
	var rows []*LotDetail
	query := `
		SELECT ` + lotColumnsJoined + `,
		       i.Desc1 AS item_description, i.Stockuomcode AS stock_uom
		FROM LotMaster l
		JOIN INMAST i ON l.ItemKey = i.Itemkey
		WHERE l.LotNo = $1 AND l.QtyOnHand > 0
		ORDER BY l.BinNo`

	if err := r.db.SelectContext(ctx, &rows, query, lotNo); err != nil {
		return nil, database.MapSQLError(err)
	}
	if len(rows) == 0 {
		return nil, errors.LotNotFound(lotNo, "")
	}
	return rows, nil
}

// SearchLots lists lots with on-hand stock, optionally filtered, paginated.
func (r *LotRepository) SearchLots(ctx context.Context, search string, page, limit int) ([]*LotDetail, int64, error) {
	offset := (page - 1) * limit

	var total int64
	var rows []*LotDetail

	if search != "" {
		pattern := "%" + search + "%"

		countQuery := `
			SELECT COUNT(*)
			FROM LotMaster l
			JOIN INMAST i ON l.ItemKey = i.Itemkey
			WHERE l.QtyOnHand > 0
			  AND (l.LotNo LIKE $1 OR i.Desc1 LIKE $1 OR l.ItemKey LIKE $1 OR l.BinNo LIKE $1)`
		if err := r.db.GetContext(ctx, &total, countQuery, pattern); err != nil {
			return nil, 0, database.MapSQLError(err)
		}

		query := `
			SELECT ` + lotColumnsJoined + `,
			       i.Desc1 AS item_description, i.Stockuomcode AS stock_uom
			FROM LotMaster l
			JOIN INMAST i ON l.ItemKey = i.Itemkey
			WHERE l.QtyOnHand > 0
			  AND (l.LotNo LIKE $1 OR i.Desc1 LIKE $1 OR l.ItemKey LIKE $1 OR l.BinNo LIKE $1)
			ORDER BY l.LotNo
			OFFSET $2 LIMIT $3`
		if err := r.db.SelectContext(ctx, &rows, query, pattern, offset, limit); err != nil {
			return nil, 0, database.MapSQLError(err)
		}
		return rows, total, nil
	}

	countQuery := `SELECT COUNT(*) FROM LotMaster WHERE QtyOnHand > 0`
	if err := r.db.GetContext(ctx, &total, countQuery); err != nil {
		return nil, 0, database.MapSQLError(err)
	}

	query := `
		SELECT ` + lotColumnsJoined + `,
		       i.Desc1 AS item_description, i.Stockuomcode AS stock_uom
		FROM LotMaster l
		JOIN INMAST i ON l.ItemKey = i.Itemkey
		WHERE l.QtyOnHand > 0
		ORDER BY l.LotNo DESC
		OFFSET $1 LIMIT $2`
	if err := r.db.SelectContext(ctx, &rows, query, offset, limit); err != nil {
		return nil, 0, database.MapSQLError(err)
	}
	return rows, total, nil
}
