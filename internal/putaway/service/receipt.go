package service

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/tfc-warehouse/putaway-backend/internal/putaway/repository"
)

// receiptDateLayout is the legacy DD-MM-YY receipt date format.
const receiptDateLayout = "02-01-06"

// BuildReceipt assembles the printable receipt payload from a committed
// transfer. Pure; rendering and printing are external.
func BuildReceipt(doc string, now time.Time, source *repository.LotRow, destStatus string, qty decimal.Decimal, req *TransferRequest) *Receipt {
	status := source.LotStatus
	if destStatus != "" && destStatus != source.LotStatus {
		status = source.LotStatus + " - " + destStatus
	}

	return &Receipt{
		DocumentNo:  doc,
		ItemKey:     req.ItemKey,
		Location:    req.Location,
		BinFrom:     req.BinFrom,
		BinTo:       req.BinTo,
		LotNo:       req.LotNo,
		QtyOnHand:   source.QtyOnHand.StringFixed(3),
		TransferQty: qty.StringFixed(3),
		LotStatus:   status,
		Date:        now.Format(receiptDateLayout),
		Remarks:     req.Remarks,
		Referenced:  req.Referenced,
	}
}
