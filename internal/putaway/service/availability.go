package service

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/tfc-warehouse/putaway-backend/internal/putaway/repository"
	"github.com/tfc-warehouse/putaway-backend/pkg/errors"
)

// Availability computes the snapshot for one lot row: available is
// on_hand - committed_sales from the row itself; pending_commit is the
// legacy recomputation over active outbound audit rows, returned so callers
// can spot drift between the two accountings.
func (s *Service) Availability(ctx context.Context, itemKey, location, lotNo, binNo string) (*AvailabilityView, error) {
	key := repository.LotKey{ItemKey: itemKey, Location: location, LotNo: lotNo, BinNo: binNo}

	row, err := s.lots.Get(ctx, key)
	if err != nil {
		return nil, err
	}

	pending, err := s.audits.SumPendingOutbound(ctx, s.db, key)
	if err != nil {
		return nil, err
	}

	return s.buildAvailability(row, pending)
}

func (s *Service) buildAvailability(row *repository.LotRow, pending decimal.Decimal) (*AvailabilityView, error) {
	available := row.QtyOnHand.Sub(row.QtyCommitSales)
	if available.IsNegative() {
		s.logger.Error().
			Str("lot_no", row.LotNo).
			Str("bin_no", row.BinNo).
			Str("on_hand", row.QtyOnHand.String()).
			Str("committed_sales", row.QtyCommitSales.String()).
			Msg("negative availability on lot row")
		return nil, errors.InvariantViolation("lot row has negative availability")
	}

	return &AvailabilityView{
		LotNo:          row.LotNo,
		ItemKey:        row.ItemKey,
		Location:       row.Location,
		BinNo:          row.BinNo,
		LotStatus:      row.LotStatus,
		OnHand:         row.QtyOnHand,
		CommittedSales: row.QtyCommitSales,
		Available:      available,
		PendingCommit:  pending,
	}, nil
}
