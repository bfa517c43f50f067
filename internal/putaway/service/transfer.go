package service

import (
	"context"
	"net/http"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"

	"github.com/tfc-warehouse/putaway-backend/internal/putaway/repository"
	"github.com/tfc-warehouse/putaway-backend/pkg/errors"
	"github.com/tfc-warehouse/putaway-backend/pkg/httputil"
)

// Transfer executes the free-quantity path: reserve qty on the source
// commitment and append the paired audit rows. On-hand is untouched; the
// batch job posts it from the audit stream.
func (s *Service) Transfer(ctx context.Context, req *TransferRequest) (*TransferResult, error) {
	req.Trim()
	if err := validateQty(req.TransferQty); err != nil {
		return nil, err
	}

	var (
		result *TransferResult
		event  *TransferEvent
	)

	err := s.db.TransferTransaction(ctx, func(tx *sqlx.Tx) error {
		if err := s.gate(ctx, tx, req); err != nil {
			return err
		}

		source, err := s.lots.GetForUpdate(ctx, tx, req.key())
		if err != nil {
			return err
		}

		available := source.QtyOnHand.Sub(source.QtyCommitSales)
		if available.IsNegative() {
			s.logInvariant(ctx, source)
			return errors.InvariantViolation("lot row has negative availability")
		}

		if req.TransferQty.GreaterThan(available.Add(qtyTolerance)) {
			return errors.InsufficientQuantity(req.TransferQty.String(), available.String())
		}

		// A request within tolerance of the whole availability transfers
		// exactly what is there, so no microscopic residual blocks the
		// batch job's source cleanup.
		qty := req.TransferQty
		if qty.Add(qtyTolerance).GreaterThanOrEqual(available) {
			qty = available
		}

		now := time.Now()
		userID := truncateUserID(req.UserID)

		doc, err := s.allocateDocumentNo(ctx, tx)
		if err != nil {
			return err
		}

		if err := s.lots.AddCommitSales(ctx, tx, req.key(), qty, doc,
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
			// Destination row does not exist yet; the batch job creates it
			// when posting the receipt leg.
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

		result = s.buildResult(doc, now, source, destStatus, qty, req)
		event = &TransferEvent{
			DocumentNo:  doc,
			LotNo:       req.LotNo,
			ItemKey:     req.ItemKey,
			Location:    req.Location,
			BinFrom:     req.BinFrom,
			BinTo:       req.BinTo,
			TransferQty: qty,
			UserID:      req.UserID,
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

func (s *Service) buildResult(doc string, now time.Time, source *repository.LotRow, destStatus string, qty decimal.Decimal, req *TransferRequest) *TransferResult {
	return &TransferResult{
		Success:              true,
		DocumentNo:           doc,
		Message:              "transfer completed",
		Timestamp:            now,
		SourceLotStatus:      source.LotStatus,
		DestinationLotStatus: destStatus,
		Receipt:              BuildReceipt(doc, now, source, destStatus, qty, req),
	}
}

// publish emits the post-commit event. Best effort: the transfer already
// committed, so failures are logged, never surfaced.
func (s *Service) publish(ctx context.Context, ev *TransferEvent) {
	if s.events == nil || ev == nil {
		return
	}
	s.events.TransferCompleted(ctx, ev)
}

func (s *Service) logInvariant(ctx context.Context, row *repository.LotRow) {
	s.logger.Error().
		Str("correlation_id", httputil.GetCorrelationID(ctx)).
		Str("lot_no", row.LotNo).
		Str("bin_no", row.BinNo).
		Str("on_hand", row.QtyOnHand.String()).
		Str("committed_sales", row.QtyCommitSales.String()).
		Msg("negative availability under lock")
}

// validateQty enforces the wire contract: positive and at most three
// fractional digits.
func validateQty(qty decimal.Decimal) error {
	if !qty.IsPositive() {
		return errors.New(errors.KindValidation, "transfer quantity must be greater than 0", http.StatusBadRequest)
	}
	if !qty.Equal(qty.Round(3)) {
		return errors.New(errors.KindValidation, "transfer quantity supports at most 3 decimal places", http.StatusBadRequest)
	}
	return nil
}
