package service

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
)

// btSeries is the document series for bin transfers.
const btSeries = "BT"

// allocateDocumentNo takes the next BT sequence value inside tx and formats
// it. Called as late as possible - the counter row is the hottest lock in
// the system.
func (s *Service) allocateDocumentNo(ctx context.Context, tx *sqlx.Tx) (string, error) {
	n, err := s.seqs.Next(ctx, tx, btSeries)
	if err != nil {
		return "", err
	}
	return FormatDocumentNo(n), nil
}

// FormatDocumentNo renders a BT document number.
func FormatDocumentNo(n int64) string {
	return fmt.Sprintf("BT-%08d", n)
}
