package service

import (
	"context"

	"github.com/jmoiron/sqlx"

	"github.com/tfc-warehouse/putaway-backend/pkg/errors"
)

// gate runs the ordered precondition checks. First failure wins. The source
// lot row itself is checked by the caller's locked read, which the ordering
// places last anyway.
func (s *Service) gate(ctx context.Context, q sqlx.QueryerContext, req *TransferRequest) error {
	// 1. Destination bin present and distinct from source.
	if req.BinTo == "" {
		return errors.InvalidBin(req.BinTo, req.Location, "destination bin is empty")
	}
	if req.BinTo == req.BinFrom {
		return errors.InvalidBin(req.BinTo, req.Location, "source and destination bins are the same")
	}

	// 2. Destination bin defined for the location.
	exists, err := s.bins.Exists(ctx, q, req.Location, req.BinTo)
	if err != nil {
		return err
	}
	if !exists {
		return errors.InvalidBin(req.BinTo, req.Location, "bin not defined for location")
	}

	// 3. Inventory freeze.
	frozen, err := s.params.IsInventoryFrozen(ctx, q)
	if err != nil {
		return err
	}
	if frozen {
		return errors.InventoryFrozen()
	}

	// 4. Physical count.
	counting, err := s.params.PhysicalCountInProgress(ctx, q, req.ItemKey, req.Location)
	if err != nil {
		return err
	}
	if counting {
		return errors.PhysicalCountInProgress(req.ItemKey, req.Location)
	}

	// 5. Item switches.
	flags, err := s.params.ItemTransferFlags(ctx, q, req.ItemKey)
	if err != nil {
		return err
	}
	if !flags.SerialLotTracked {
		return errors.NotTransferrable(req.ItemKey, "item is not serial-lot tracked")
	}
	if !flags.MultiBinEnabled {
		return errors.NotTransferrable(req.ItemKey, "item is not multi-bin enabled")
	}

	return nil
}

// ValidateBin answers the standalone bin check used by the destination
// picker.
func (s *Service) ValidateBin(ctx context.Context, location, binNo string) (*BinValidation, error) {
	exists, err := s.bins.Exists(ctx, s.db, location, binNo)
	if err != nil {
		return nil, err
	}

	if !exists {
		return &BinValidation{
			IsValid: false,
			Message: "bin " + binNo + " is not defined for location " + location,
		}, nil
	}
	return &BinValidation{IsValid: true, Message: "bin is valid"}, nil
}
