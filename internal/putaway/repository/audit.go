package repository

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"

	"github.com/tfc-warehouse/putaway-backend/pkg/database"
	"github.com/tfc-warehouse/putaway-backend/pkg/errors"
)

// Transaction types the engine writes.
const (
	TranTypeAdjPositive = 8 // destination leg
	TranTypeAdjNegative = 9 // source leg
)

// pendingOutboundTypes are the transaction types the commitment computation
// treats as outbound while Processed is still N or P.
const pendingOutboundTypes = `(2,3,5,7,9,10,12,16,17,20,21)`

// LegKind tags the two audit-row variants.
type LegKind int

const (
	LegIssue   LegKind = iota // type 9, issue columns
	LegReceipt                // type 8, receipt columns
)

// AuditLeg is one side of a transfer's paired audit rows. Which columns are
// populated depends on Kind; Write is the single entry point for both.
type AuditLeg struct {
	Kind         LegKind
	LotNo        string
	ItemKey      string
	Location     string
	BinNo        string
	DocumentNo   string
	LineNo       int
	Qty          decimal.Decimal
	VendorKey    string
	VendorLotNo  string
	DateReceived time.Time
	DateExpiry   time.Time
	UserID       string
	RecordedAt   time.Time
}

// PendingTransaction is one pending outbound row, shaped for the
// committed-path picker.
type PendingTransaction struct {
	LotTranNo       int64           `db:"lot_tran_no" json:"lot_tran_no"`
	LotNo           string          `db:"lot_no" json:"lot_no"`
	BinNo           string          `db:"bin_no" json:"bin_no"`
	DocNo           string          `db:"doc_no" json:"doc_no"`
	LineNo          int             `db:"line_no" json:"line_no"`
	Qty             decimal.Decimal `db:"qty" json:"qty"`
	TransactionType int             `db:"transaction_type" json:"transaction_type"`
	TypeName        string          `db:"type_name" json:"type_name"`
	RecordedAt      time.Time       `db:"recorded_at" json:"recorded_at"`
	Processed       string          `db:"processed" json:"processed"`
}

// AuditRepository writes and reads LotTransaction rows. Writes are
// append-only: the engine never updates or deletes an audit row; the batch
// job owns the Processed lifecycle.
type AuditRepository struct {
	db *database.DB
}

// NewAuditRepository creates a new audit repository
func NewAuditRepository(db *database.DB) *AuditRepository {
	return &AuditRepository{db: db}
}

// Write appends one audit leg inside the caller's transaction. The issue leg
// returns its LotTranNo for the transfer log row; the receipt leg returns 0.
// Column set and sentinels (Processed='N', CustomerKey='', DateQuarantine
// NULL) are fixed by the downstream batch processor.
func (r *AuditRepository) Write(ctx context.Context, tx *sqlx.Tx, leg *AuditLeg) (int64, error) {
	switch leg.Kind {
	case LegIssue:
		query := `
			INSERT INTO LotTransaction (
				LotNo, ItemKey, LocationKey, TransactionType,
				IssueDocNo, IssueDocLineNo, IssueDate, QtyIssued,
				BinNo, RecUserid, RecDate, Processed,
				DateReceived, DateExpiry, Vendorkey, VendorlotNo,
				CustomerKey, TempQty, QtyForLotAssignment, QtyUsed
			) VALUES ($1, $2, $3, 9, $4, $5, $6, $7, $8, $9, $10, 'N',
			          $11, $12, $13, $14, '', 0, 0, 0)
			RETURNING LotTranNo`

		var lotTranNo int64
		err := tx.QueryRowContext(ctx, query,
			leg.LotNo, leg.ItemKey, leg.Location,
			leg.DocumentNo, leg.LineNo, leg.RecordedAt, leg.Qty,
			leg.BinNo, leg.UserID, leg.RecordedAt,
			leg.DateReceived, leg.DateExpiry, leg.VendorKey, leg.VendorLotNo,
		).Scan(&lotTranNo)
		if err != nil {
			return 0, database.MapSQLError(err)
		}
		return lotTranNo, nil

	case LegReceipt:
		query := `
			INSERT INTO LotTransaction (
				LotNo, ItemKey, LocationKey, TransactionType,
				ReceiptDocNo, ReceiptDocLineNo, QtyReceived,
				BinNo, RecUserid, RecDate, Processed,
				DateReceived, DateExpiry, Vendorkey, VendorlotNo,
				CustomerKey, TempQty, QtyForLotAssignment, QtyUsed, DateQuarantine
			) VALUES ($1, $2, $3, 8, $4, $5, $6, $7, $8, $9, 'N',
			          $10, $11, $12, $13, '', 0, 0, 0, NULL)`

		_, err := tx.ExecContext(ctx, query,
			leg.LotNo, leg.ItemKey, leg.Location,
			leg.DocumentNo, leg.LineNo, leg.Qty,
			leg.BinNo, leg.UserID, leg.RecordedAt,
			leg.DateReceived, leg.DateExpiry, leg.VendorKey, leg.VendorLotNo,
		)
		if err != nil {
			return 0, database.MapSQLError(err)
		}
		return 0, nil
	}

	return 0, errors.InvariantViolation("unknown audit leg kind")
}

// typeNameCase renders the legacy human-readable names for the picker.
const typeNameCase = `
	(CASE TransactionType
	   WHEN 1  THEN 'Purchase Receipt'
	   WHEN 2  THEN 'Purchase Return'
	   WHEN 3  THEN 'Sales Issue'
	   WHEN 4  THEN 'Sales Return'
	   WHEN 5  THEN 'Mfg. Issue'
	   WHEN 6  THEN 'Mfg. Return'
	   WHEN 7  THEN 'Inventory Transfer'
	   WHEN 8  THEN 'Inventory Adj. Positive'
	   WHEN 9  THEN 'Inventory Adj. Negative'
	   WHEN 10 THEN 'Damaged'
	   WHEN 11 THEN 'Warehouse Move In'
	   WHEN 12 THEN 'Warehouse Move Out'
	   WHEN 14 THEN 'Physical Count'
	   WHEN 15 THEN 'Transfer In'
	   WHEN 16 THEN 'Transfer Out'
	   WHEN 17 THEN 'Move'
	   WHEN 18 THEN 'Mfg. Receipt'
	   WHEN 21 THEN 'Sales Provisional'
	   ELSE 'Unknown'
	 END)`

// ListPendingOutbound returns the active outbound rows for a lot and bin,
// LotTransaction UNION QCLotTransaction, newest first.
func (r *AuditRepository) ListPendingOutbound(ctx context.Context, lotNo, binNo string) ([]*PendingTransaction, error) {
	query := `
		SELECT LotTranNo AS lot_tran_no, LotNo AS lot_no, BinNo AS bin_no,
		       IssueDocNo AS doc_no, IssueDocLineNo AS line_no, QtyIssued AS qty,
		       TransactionType AS transaction_type, ` + typeNameCase + ` AS type_name,
		       RecDate AS recorded_at, Processed AS processed
		FROM LotTransaction
		WHERE Processed IN ('N','P')
		  AND TransactionType IN ` + pendingOutboundTypes + `
		  AND LotNo = $1 AND BinNo = $2
		UNION ALL
		SELECT LotTranNo AS lot_tran_no, LotNo AS lot_no, BinNo AS bin_no,
		       IssueDocNo AS doc_no, IssueDocLineNo AS line_no, QtyIssued AS qty,
		       TransactionType AS transaction_type, ` + typeNameCase + ` AS type_name,
		       RecDate AS recorded_at, Processed AS processed
		FROM QCLotTransaction
		WHERE Processed IN ('N','P')
		  AND TransactionType IN ` + pendingOutboundTypes + `
		  AND LotNo = $1 AND BinNo = $2
		ORDER BY recorded_at DESC`

	var rows []*PendingTransaction
	if err := r.db.SelectContext(ctx, &rows, query, lotNo, binNo); err != nil {
		return nil, database.MapSQLError(err)
	}
	return rows, nil
}

// SumPendingOutbound sums the active outbound quantities for a lot row key
// over both audit streams. q may be the pool or an open transaction.
func (r *AuditRepository) SumPendingOutbound(ctx context.Context, q sqlx.QueryerContext, key LotKey) (decimal.Decimal, error) {
	query := `
		SELECT COALESCE(SUM(qty), 0) FROM (
			SELECT QtyIssued AS qty
			FROM LotTransaction
			WHERE Processed IN ('N','P')
			  AND TransactionType IN ` + pendingOutboundTypes + `
			  AND LotNo = $1 AND ItemKey = $2 AND LocationKey = $3 AND BinNo = $4
			UNION ALL
			SELECT QtyIssued AS qty
			FROM QCLotTransaction
			WHERE Processed IN ('N','P')
			  AND TransactionType IN ` + pendingOutboundTypes + `
			  AND LotNo = $1 AND ItemKey = $2 AND LocationKey = $3 AND BinNo = $4
		) pending`

	var sum decimal.Decimal
	if err := sqlx.GetContext(ctx, q, &sum, query, key.LotNo, key.ItemKey, key.Location, key.BinNo); err != nil {
		return decimal.Zero, database.MapSQLError(err)
	}
	return sum, nil
}

// GetPendingByTranNos fetches specific pending rows on the source bin for
// committed-path subset validation. Rows already advanced past P are not
// returned.
func (r *AuditRepository) GetPendingByTranNos(ctx context.Context, tx *sqlx.Tx, lotNo, binNo string, tranNos []int64) ([]*PendingTransaction, error) {
	if len(tranNos) == 0 {
		return nil, nil
	}

	query, args, err := sqlx.In(`
		SELECT LotTranNo AS lot_tran_no, LotNo AS lot_no, BinNo AS bin_no,
		       IssueDocNo AS doc_no, IssueDocLineNo AS line_no, QtyIssued AS qty,
		       TransactionType AS transaction_type, `+typeNameCase+` AS type_name,
		       RecDate AS recorded_at, Processed AS processed
		FROM LotTransaction
		WHERE Processed IN ('N','P')
		  AND TransactionType IN `+pendingOutboundTypes+`
		  AND LotNo = ? AND BinNo = ? AND LotTranNo IN (?)`,
		lotNo, binNo, tranNos)
	if err != nil {
		return nil, errors.System(err)
	}

	var rows []*PendingTransaction
	if err := tx.SelectContext(ctx, &rows, tx.Rebind(query), args...); err != nil {
		return nil, database.MapSQLError(err)
	}
	return rows, nil
}
