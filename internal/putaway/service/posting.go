package service

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"

	"github.com/tfc-warehouse/putaway-backend/internal/putaway/repository"
)

// Movement is one transfer's worth of audit writes.
type Movement struct {
	DocumentNo string
	Source     *repository.LotRow
	BinTo      string
	Qty        decimal.Decimal
	UserID     string
	RecordedAt time.Time
}

// Poster writes a movement's paired audit legs. The default implementation
// leaves on-hand posting to the batch job; a direct-posting mode that also
// adjusts QtyOnHand and finalizes the rows can replace it behind this
// boundary.
type Poster interface {
	Post(ctx context.Context, tx *sqlx.Tx, mv *Movement) (issueTranNo int64, err error)
}

// auditPoster appends the type 9/8 pair and nothing else.
type auditPoster struct {
	audits *repository.AuditRepository
}

func (p *auditPoster) Post(ctx context.Context, tx *sqlx.Tx, mv *Movement) (int64, error) {
	issue := &repository.AuditLeg{
		Kind:         repository.LegIssue,
		LotNo:        mv.Source.LotNo,
		ItemKey:      mv.Source.ItemKey,
		Location:     mv.Source.Location,
		BinNo:        mv.Source.BinNo,
		DocumentNo:   mv.DocumentNo,
		LineNo:       1,
		Qty:          mv.Qty,
		VendorKey:    mv.Source.VendorKey,
		VendorLotNo:  mv.Source.VendorLotNo,
		DateReceived: mv.Source.DateReceived,
		DateExpiry:   mv.Source.DateExpiry,
		UserID:       mv.UserID,
		RecordedAt:   mv.RecordedAt,
	}

	issueTranNo, err := p.audits.Write(ctx, tx, issue)
	if err != nil {
		return 0, err
	}

	receipt := &repository.AuditLeg{
		Kind:         repository.LegReceipt,
		LotNo:        mv.Source.LotNo,
		ItemKey:      mv.Source.ItemKey,
		Location:     mv.Source.Location,
		BinNo:        mv.BinTo,
		DocumentNo:   mv.DocumentNo,
		LineNo:       1,
		Qty:          mv.Qty,
		VendorKey:    mv.Source.VendorKey,
		VendorLotNo:  mv.Source.VendorLotNo,
		DateReceived: mv.Source.DateReceived,
		DateExpiry:   mv.Source.DateExpiry,
		UserID:       mv.UserID,
		RecordedAt:   mv.RecordedAt,
	}

	if _, err := p.audits.Write(ctx, tx, receipt); err != nil {
		return 0, err
	}

	return issueTranNo, nil
}
