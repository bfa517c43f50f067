package service

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"

	"github.com/tfc-warehouse/putaway-backend/internal/putaway/repository"
	"github.com/tfc-warehouse/putaway-backend/pkg/errors"
)

// TransferCommitted executes the committed path: stock already reserved by
// pending outbound transactions on the source bin moves to the destination,
// releasing the source reservation. The original pending rows stay untouched;
// the re-homing is expressed by the new paired rows and the commitment delta.
func (s *Service) TransferCommitted(ctx context.Context, req *CommittedTransferRequest) (*TransferResult, error) {
	req.Trim()
	if err := validateQty(req.TransferQty); err != nil {
		return nil, err
	}

	var (
		result *TransferResult
		event  *TransferEvent
	)

	err := s.db.TransferTransaction(ctx, func(tx *sqlx.Tx) error {
		if err := s.gate(ctx, tx, &req.TransferRequest); err != nil {
			return err
		}

		source, err := s.lots.GetForUpdate(ctx, tx, req.key())
		if err != nil {
			return err
		}

		committed := source.QtyCommitSales
		qty := req.TransferQty

		switch {
		case qty.GreaterThan(committed.Add(qtyTolerance)):
			return errors.InsufficientCommitted(qty.String(), committed.String())

		case withinTolerance(qty, committed):
			// Full consume: use the exact committed figure so the
			// reservation lands on zero.
			qty = committed

		default:
			// Partial consume needs an explicit selection that adds up.
			if err := s.verifySelection(ctx, tx, req, qty); err != nil {
				return err
			}
		}

		now := time.Now()
		userID := truncateUserID(req.UserID)

		doc, err := s.allocateDocumentNo(ctx, tx)
		if err != nil {
			return err
		}

		if err := s.lots.AddCommitSales(ctx, tx, req.key(), qty.Neg(), doc,
			repository.TranTypeAdjNegative, userID, now); err != nil {
			return err
		}

		destStatus, destExists, err := s.lots.Status(ctx, tx, repository.LotKey{
			ItemKey: req.ItemKey, Location: req.Location, LotNo: req.LotNo, BinNo: req.BinTo,
		})
		if err != nil {
			return err
		}
		if !destExists {
			destStatus = source.LotStatus
		}

		issueTranNo, err := s.poster.Post(ctx, tx, &Movement{
			DocumentNo: doc,
			Source:     source,
			BinTo:      req.BinTo,
			Qty:        qty,
			UserID:     userID,
			RecordedAt: now,
		})
		if err != nil {
			return err
		}

		if err := s.transfers.Insert(ctx, tx, &repository.BinTransferRecord{
			ItemKey:     req.ItemKey,
			Location:    req.Location,
			LotNo:       req.LotNo,
			BinNoFrom:   req.BinFrom,
			BinNoTo:     req.BinTo,
			LotTranNo:   issueTranNo,
			QtyOnHand:   source.QtyOnHand,
			TransferQty: qty,
			UserID:      userID,
			RecordedAt:  now,
			Remarks:     req.Remarks,
			Referenced:  req.Referenced,
		}); err != nil {
			return err
		}

		result = s.buildResult(doc, now, source, destStatus, qty, &req.TransferRequest)
		event = &TransferEvent{
			DocumentNo:  doc,
			LotNo:       req.LotNo,
			ItemKey:     req.ItemKey,
			Location:    req.Location,
			BinFrom:     req.BinFrom,
			BinTo:       req.BinTo,
			TransferQty: qty,
			UserID:      req.UserID,
			Committed:   true,
			Timestamp:   now,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.publish(ctx, event)
	return result, nil
}

// verifySelection checks that the named pending rows exist on the source bin
// and that their issued quantities sum to exactly the requested quantity.
func (s *Service) verifySelection(ctx context.Context, tx *sqlx.Tx, req *CommittedTransferRequest, qty decimal.Decimal) error {
	if len(req.LotTranNos) == 0 {
		return errors.SelectionMismatch("partial committed transfer requires a selection of pending transactions")
	}

	rows, err := s.audits.GetPendingByTranNos(ctx, tx, req.LotNo, req.BinFrom, req.LotTranNos)
	if err != nil {
		return err
	}
	if len(rows) != len(req.LotTranNos) {
		return errors.SelectionMismatch("selection includes transactions that are not pending on the source bin")
	}

	sum := decimal.Zero
	for _, row := range rows {
		sum = sum.Add(row.Qty)
	}
	if !withinTolerance(sum, qty) {
		return errors.SelectionMismatch(
			"selected transactions sum to " + sum.String() + ", requested " + qty.String())
	}
	return nil
}

// ListPendingForLotBin returns the pending outbound transactions the
// committed-path picker offers for selection.
func (s *Service) ListPendingForLotBin(ctx context.Context, lotNo, binNo string) ([]*repository.PendingTransaction, error) {
	return s.audits.ListPendingOutbound(ctx, lotNo, binNo)
}
