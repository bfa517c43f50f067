package repository

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"

	"github.com/tfc-warehouse/putaway-backend/pkg/database"
)

// BinTransferRecord is the transfer log row backing receipt reprints. The
// remark lands in User1 and the reference in User5, as the legacy report
// expects.
type BinTransferRecord struct {
	ItemKey     string
	Location    string
	LotNo       string
	BinNoFrom   string
	BinNoTo     string
	LotTranNo   int64
	QtyOnHand   decimal.Decimal
	TransferQty decimal.Decimal
	UserID      string
	RecordedAt  time.Time
	Remarks     string
	Referenced  string
}

// BinTransferRepository writes the BinTransfer log.
type BinTransferRepository struct {
	db *database.DB
}

// NewBinTransferRepository creates a new bin transfer repository
func NewBinTransferRepository(db *database.DB) *BinTransferRepository {
	return &BinTransferRepository{db: db}
}

// Insert appends the log row inside the caller's transaction.
func (r *BinTransferRepository) Insert(ctx context.Context, tx *sqlx.Tx, rec *BinTransferRecord) error {
	query := `
		INSERT INTO BinTransfer (
			ItemKey, Location, LotNo, BinNoFrom, BinNoTo,
			LotTranNo, QtyOnHand, TransferQty, InTransID,
			RecUserID, RecDate, ContainerNo, User1, User5
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, 0, $9, $10, '0', $11, $12)`

	_, err := tx.ExecContext(ctx, query,
		rec.ItemKey, rec.Location, rec.LotNo, rec.BinNoFrom, rec.BinNoTo,
		rec.LotTranNo, rec.QtyOnHand, rec.TransferQty,
		rec.UserID, rec.RecordedAt, rec.Remarks, rec.Referenced,
	)
	if err != nil {
		return database.MapSQLError(err)
	}
	return nil
}
