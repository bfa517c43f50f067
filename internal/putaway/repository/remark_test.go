package repository_test

import (
	"context"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tfc-warehouse/putaway-backend/internal/putaway/repository"
	"github.com/tfc-warehouse/putaway-backend/pkg/testutil"
)

func TestListActiveRemarks(t *testing.T) {
	m := testutil.NewMockDB(t)
	defer m.Close()

	repo := repository.NewRemarkRepository(m.DB)

	m.ExpectQuery("FROM putawaylist").
		WillReturnRows(sqlmock.NewRows([]string{"id", "remark_name"}).
			AddRow(1, "Restock").
			AddRow(3, "QC Hold Release"))

	remarks, err := repo.ListActive(context.Background())
	require.NoError(t, err)
	require.Len(t, remarks, 2)

	assert.Equal(t, 1, remarks[0].ID)
	assert.Equal(t, "Restock", remarks[0].Name)
	assert.Equal(t, "QC Hold Release", remarks[1].Name)
}

func TestItemTransferFlags(t *testing.T) {
	m := testutil.NewMockDB(t)
	defer m.Close()

	repo := repository.NewParamRepository(m.DB)

	m.ExpectQuery("FROM INMAST").
		WithArgs("INBC1403").
		WillReturnRows(sqlmock.NewRows([]string{"ser_lot", "bin_control"}).AddRow("Y", "N"))

	flags, err := repo.ItemTransferFlags(context.Background(), m.DB, "INBC1403")
	require.NoError(t, err)
	assert.True(t, flags.SerialLotTracked)
	assert.False(t, flags.MultiBinEnabled)
}

func TestIsInventoryFrozen(t *testing.T) {
	m := testutil.NewMockDB(t)
	defer m.Close()

	repo := repository.NewParamRepository(m.DB)

	cases := []struct {
		name   string
		value  *string
		frozen bool
	}{
		{"flag set", strPtr("Y"), true},
		{"flag numeric", strPtr("1"), true},
		{"flag off", strPtr("N"), false},
		{"no parameter row", nil, false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rows := sqlmock.NewRows([]string{"parmvalue"})
			if tc.value != nil {
				rows.AddRow(*tc.value)
			}
			m.ExpectQuery("FROM SystemParm").WillReturnRows(rows)

			frozen, err := repo.IsInventoryFrozen(context.Background(), m.DB)
			require.NoError(t, err)
			assert.Equal(t, tc.frozen, frozen)
		})
	}
}

func strPtr(s string) *string {
	return &s
}
