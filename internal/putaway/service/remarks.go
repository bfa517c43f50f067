package service

import (
	"context"

	"github.com/tfc-warehouse/putaway-backend/internal/putaway/repository"
)

// ListRemarks returns the approved transfer annotations, active only,
// ordered by id. The caller picks at most one name; empty is valid.
func (s *Service) ListRemarks(ctx context.Context) ([]*repository.RemarkOption, error) {
	return s.remarks.ListActive(ctx)
}

// FindLot returns the scanner's lot detail view.
func (s *Service) FindLot(ctx context.Context, lotNo string) ([]*repository.LotDetail, error) {
	return s.lots.FindByLotNo(ctx, lotNo)
}

// SearchLots returns the paginated lot picker view.
func (s *Service) SearchLots(ctx context.Context, search string, page, limit int) ([]*repository.LotDetail, int64, error) {
	return s.lots.SearchLots(ctx, search, page, limit)
}

// SearchBins returns the paginated bin picker view.
func (s *Service) SearchBins(ctx context.Context, search string, page, limit int, lotNo, itemKey, location string) ([]*repository.BinSummary, int64, error) {
	return s.bins.Search(ctx, search, page, limit, lotNo, itemKey, location)
}
