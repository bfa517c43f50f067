package service

import (
	"context"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/tfc-warehouse/putaway-backend/internal/putaway/repository"
)

// TransferRequest is the wire contract for the free-quantity path.
type TransferRequest struct {
	LotNo       string          `json:"lot_no" validate:"required,max=30"`
	ItemKey     string          `json:"item_key" validate:"required,max=30"`
	Location    string          `json:"location" validate:"required,max=10"`
	BinFrom     string          `json:"bin_from" validate:"required,max=20"`
	BinTo       string          `json:"bin_to" validate:"required,max=20"`
	TransferQty decimal.Decimal `json:"transfer_qty"`
	UserID      string          `json:"user_id" validate:"required"`
	Remarks     string          `json:"remarks,omitempty"`
	Referenced  string          `json:"referenced,omitempty"`
}

// Trim normalizes every string field in place.
func (r *TransferRequest) Trim() {
	r.LotNo = strings.TrimSpace(r.LotNo)
	r.ItemKey = strings.TrimSpace(r.ItemKey)
	r.Location = strings.TrimSpace(r.Location)
	r.BinFrom = strings.TrimSpace(r.BinFrom)
	r.BinTo = strings.TrimSpace(r.BinTo)
	r.UserID = strings.TrimSpace(r.UserID)
	r.Remarks = strings.TrimSpace(r.Remarks)
	r.Referenced = strings.TrimSpace(r.Referenced)
}

// CommittedTransferRequest is the wire contract for the committed path. The
// caller either consumes the full commitment or names the pending rows whose
// issued quantities make up the transfer.
type CommittedTransferRequest struct {
	TransferRequest
	FullCommit bool    `json:"full_commit"`
	LotTranNos []int64 `json:"lot_tran_nos,omitempty"`
}

// TransferResult is the wire result of a successful transfer.
type TransferResult struct {
	Success              bool      `json:"success"`
	DocumentNo           string    `json:"document_no"`
	Message              string    `json:"message"`
	Timestamp            time.Time `json:"timestamp"`
	SourceLotStatus      string    `json:"source_lot_status"`
	DestinationLotStatus string    `json:"destination_lot_status"`
	Receipt              *Receipt  `json:"receipt,omitempty"`
}

// Receipt is the printable transfer receipt payload. Rendering is external.
type Receipt struct {
	DocumentNo  string `json:"document_no"`
	ItemKey     string `json:"item_key"`
	Location    string `json:"location"`
	BinFrom     string `json:"bin_from"`
	BinTo       string `json:"bin_to"`
	LotNo       string `json:"lot_no"`
	QtyOnHand   string `json:"qty_on_hand"`
	TransferQty string `json:"transfer_qty"`
	LotStatus   string `json:"lot_status"`
	Date        string `json:"date"`
	Remarks     string `json:"remarks"`
	Referenced  string `json:"referenced"`
}

// AvailabilityView is the availability snapshot for one lot row.
type AvailabilityView struct {
	LotNo          string          `json:"lot_no"`
	ItemKey        string          `json:"item_key"`
	Location       string          `json:"location"`
	BinNo          string          `json:"bin_no"`
	LotStatus      string          `json:"lot_status"`
	OnHand         decimal.Decimal `json:"on_hand"`
	CommittedSales decimal.Decimal `json:"committed_sales"`
	Available      decimal.Decimal `json:"available"`
	PendingCommit  decimal.Decimal `json:"pending_commit"`
}

// BinValidation is the validateBin response.
type BinValidation struct {
	IsValid bool   `json:"is_valid"`
	Message string `json:"message"`
}

// TransferEvent is what the publisher emits after a successful commit.
type TransferEvent struct {
	DocumentNo  string          `json:"document_no"`
	LotNo       string          `json:"lot_no"`
	ItemKey     string          `json:"item_key"`
	Location    string          `json:"location"`
	BinFrom     string          `json:"bin_from"`
	BinTo       string          `json:"bin_to"`
	TransferQty decimal.Decimal `json:"transfer_qty"`
	UserID      string          `json:"user_id"`
	Committed   bool            `json:"committed"`
	Timestamp   time.Time       `json:"timestamp"`
}

// EventSink receives post-commit transfer notifications.
type EventSink interface {
	TransferCompleted(ctx context.Context, ev *TransferEvent)
}

func (r *TransferRequest) key() repository.LotKey {
	return repository.LotKey{
		ItemKey:  r.ItemKey,
		Location: r.Location,
		LotNo:    r.LotNo,
		BinNo:    r.BinFrom,
	}
}
