package service_test

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/tfc-warehouse/putaway-backend/internal/putaway/repository"
	"github.com/tfc-warehouse/putaway-backend/internal/putaway/service"
)

func TestBuildReceipt(t *testing.T) {
	source := &repository.LotRow{
		LotNo:          "2600107-1",
		ItemKey:        "INBC1403",
		Location:       "TFC1",
		BinNo:          "K0802-4B",
		LotStatus:      "B",
		QtyOnHand:      decimal.RequireFromString("975"),
		QtyCommitSales: decimal.RequireFromString("50"),
	}
	req := baseRequest("500")
	when := time.Date(2026, 8, 5, 14, 30, 0, 0, time.UTC)

	t.Run("statuses agree", func(t *testing.T) {
		r := service.BuildReceipt("BT-00001234", when, source, "B",
			decimal.RequireFromString("500"), req)

		assert.Equal(t, "BT-00001234", r.DocumentNo)
		assert.Equal(t, "B", r.LotStatus)
		assert.Equal(t, "500.000", r.TransferQty)
		assert.Equal(t, "975.000", r.QtyOnHand)
		assert.Equal(t, "05-08-26", r.Date)
		assert.Equal(t, "Restock", r.Remarks)
		assert.Equal(t, "MO-118", r.Referenced)
	})

	t.Run("statuses differ", func(t *testing.T) {
		r := service.BuildReceipt("BT-00001234", when, source, "C",
			decimal.RequireFromString("500"), req)

		assert.Equal(t, "B - C", r.LotStatus)
	})

	t.Run("quantity rendered to three decimals", func(t *testing.T) {
		r := service.BuildReceipt("BT-00001234", when, source, "B",
			decimal.RequireFromString("12.5"), req)

		assert.Equal(t, "12.500", r.TransferQty)
	})
}

func TestFormatDocumentNo(t *testing.T) {
	assert.Equal(t, "BT-00000001", service.FormatDocumentNo(1))
	assert.Equal(t, "BT-00001234", service.FormatDocumentNo(1234))
	assert.Equal(t, "BT-99999999", service.FormatDocumentNo(99999999))
}
