package repository

import (
	"context"
	"strings"

	"github.com/jmoiron/sqlx"

	"github.com/tfc-warehouse/putaway-backend/pkg/database"
	"github.com/tfc-warehouse/putaway-backend/pkg/errors"
)

// ItemFlags carries the item-master switches the gate checks.
type ItemFlags struct {
	SerialLotTracked bool
	MultiBinEnabled  bool
}

// ParamRepository reads the system parameter store, the physical-count
// flags and the item-master transfer switches.
type ParamRepository struct {
	db *database.DB
}

// NewParamRepository creates a new param repository
func NewParamRepository(db *database.DB) *ParamRepository {
	return &ParamRepository{db: db}
}

// IsInventoryFrozen reports the Freeze_Inventory flag. A missing parameter
// row means not frozen.
func (r *ParamRepository) IsInventoryFrozen(ctx context.Context, q sqlx.QueryerContext) (bool, error) {
	var value string
	query := `SELECT ParmValue FROM SystemParm WHERE ParmKey = 'Freeze_Inventory'`

	if err := sqlx.GetContext(ctx, q, &value, query); err != nil {
		if database.IsNoRows(err) {
			return false, nil
		}
		return false, database.MapSQLError(err)
	}

	switch strings.ToUpper(strings.TrimSpace(value)) {
	case "Y", "YES", "1", "TRUE":
		return true, nil
	}
	return false, nil
}

// PhysicalCountInProgress reports whether an open count covers the item at
// the location.
func (r *ParamRepository) PhysicalCountInProgress(ctx context.Context, q sqlx.QueryerContext, itemKey, location string) (bool, error) {
	var count int
	query := `
		SELECT COUNT(*) FROM PhysicalCount
		WHERE ItemKey = $1 AND Location = $2 AND Status IN ('N','I')`

	if err := sqlx.GetContext(ctx, q, &count, query, itemKey, location); err != nil {
		return false, database.MapSQLError(err)
	}
	return count > 0, nil
}

// ItemTransferFlags reads the item-master switches. An unknown item is not
// transferrable.
func (r *ParamRepository) ItemTransferFlags(ctx context.Context, q sqlx.QueryerContext, itemKey string) (*ItemFlags, error) {
	var row struct {
		SerLot     string `db:"ser_lot"`
		BinControl string `db:"bin_control"`
	}
	query := `SELECT Serlot AS ser_lot, Binctl AS bin_control FROM INMAST WHERE Itemkey = $1`

	if err := sqlx.GetContext(ctx, q, &row, query, itemKey); err != nil {
		if database.IsNoRows(err) {
			return nil, errors.NotTransferrable(itemKey, "item not found in item master")
		}
		return nil, database.MapSQLError(err)
	}

	return &ItemFlags{
		SerialLotTracked: strings.EqualFold(strings.TrimSpace(row.SerLot), "Y"),
		MultiBinEnabled:  strings.EqualFold(strings.TrimSpace(row.BinControl), "Y"),
	}, nil
}
