package service_test

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tfc-warehouse/putaway-backend/internal/putaway/repository"
	"github.com/tfc-warehouse/putaway-backend/internal/putaway/service"
	"github.com/tfc-warehouse/putaway-backend/pkg/errors"
	"github.com/tfc-warehouse/putaway-backend/pkg/logger"
	"github.com/tfc-warehouse/putaway-backend/pkg/testutil"
)

func newTestService(t *testing.T) (*service.Service, *testutil.MockDB) {
	m := testutil.NewMockDB(t)
	log := logger.New("test", "development")

	svc := service.New(m.DB,
		repository.NewLotRepository(m.DB),
		repository.NewBinRepository(m.DB),
		repository.NewAuditRepository(m.DB),
		repository.NewSequenceRepository(m.DB),
		repository.NewParamRepository(m.DB),
		repository.NewRemarkRepository(m.DB),
		repository.NewBinTransferRepository(m.DB),
		nil, log)
	return svc, m
}

var lotColumns = []string{
	"lot_no", "item_key", "location_key", "bin_no", "vendor_key", "vendor_lot_no",
	"date_received", "date_expiry", "lot_status", "qty_on_hand", "qty_commit_sales", "qty_received",
}

func sourceLotRows(onHand, commitSales string) *sqlmock.Rows {
	received := time.Date(2025, 11, 3, 0, 0, 0, 0, time.UTC)
	expiry := time.Date(2027, 11, 3, 0, 0, 0, 0, time.UTC)
	return sqlmock.NewRows(lotColumns).
		AddRow("2600107-1", "INBC1403", "TFC1", "K0802-4B", "V-0051", "VL-2600107",
			received, expiry, "P", onHand, commitSales, onHand)
}

func baseRequest(qty string) *service.TransferRequest {
	return &service.TransferRequest{
		LotNo:       "2600107-1",
		ItemKey:     "INBC1403",
		Location:    "TFC1",
		BinFrom:     "K0802-4B",
		BinTo:       "WHKON1",
		TransferQty: decimal.RequireFromString(qty),
		UserID:      "DECHAWAT",
		Remarks:     "Restock",
		Referenced:  "MO-118",
	}
}

func expectTxOpen(m *testutil.MockDB) {
	m.Mock.ExpectBegin()
	m.ExpectExec("SET LOCAL lock_timeout").WillReturnResult(sqlmock.NewResult(0, 0))
	m.ExpectExec("SET LOCAL statement_timeout").WillReturnResult(sqlmock.NewResult(0, 0))
}

func expectGatePass(m *testutil.MockDB) {
	m.ExpectQuery("SELECT COUNT(*) FROM BINMaster").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))
	m.ExpectQuery("SELECT ParmValue FROM SystemParm").
		WillReturnRows(sqlmock.NewRows([]string{"parmvalue"}))
	m.ExpectQuery("SELECT COUNT(*) FROM PhysicalCount").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))
	m.ExpectQuery("SELECT Serlot AS ser_lot").
		WillReturnRows(sqlmock.NewRows([]string{"ser_lot", "bin_control"}).AddRow("Y", "Y"))
}

func expectWriteLegs(m *testutil.MockDB, issueTranNo int64) {
	m.ExpectQuery("INSERT INTO LotTransaction").
		WillReturnRows(sqlmock.NewRows([]string{"lottranno"}).AddRow(issueTranNo))
	m.ExpectExec("INSERT INTO LotTransaction").
		WillReturnResult(sqlmock.NewResult(0, 1))
	m.ExpectExec("INSERT INTO BinTransfer").
		WillReturnResult(sqlmock.NewResult(0, 1))
}

func TestTransfer_Success(t *testing.T) {
	svc, m := newTestService(t)
	defer m.Close()

	expectTxOpen(m)
	expectGatePass(m)
	m.ExpectQuery("FOR UPDATE").WillReturnRows(sourceLotRows("975", "50"))
	m.ExpectQuery("UPDATE Seqnum SET SeqNum = SeqNum + 1").
		WillReturnRows(sqlmock.NewRows([]string{"seqnum"}).AddRow(1234))
	m.Mock.ExpectExec("UPDATE LotMaster").
		WithArgs("500", "BT-00001234", 9, "DECHAWAT", sqlmock.AnyArg(),
			"2600107-1", "INBC1403", "TFC1", "K0802-4B").
		WillReturnResult(sqlmock.NewResult(0, 1))
	m.ExpectQuery("SELECT LotStatus").
		WillReturnRows(sqlmock.NewRows([]string{"lot_status"}))
	expectWriteLegs(m, 7001)
	m.Mock.ExpectCommit()

	result, err := svc.Transfer(context.Background(), baseRequest("500"))
	require.NoError(t, err)

	assert.Equal(t, "BT-00001234", result.DocumentNo)
	assert.True(t, result.Success)
	assert.Equal(t, "P", result.SourceLotStatus)
	assert.Equal(t, "P", result.DestinationLotStatus)
	require.NotNil(t, result.Receipt)
	assert.Equal(t, "500.000", result.Receipt.TransferQty)
	assert.Equal(t, "975.000", result.Receipt.QtyOnHand)
	assert.Equal(t, "P", result.Receipt.LotStatus)

	m.ExpectationsMet(t)
}

func TestTransfer_DestinationStatusDiffers(t *testing.T) {
	svc, m := newTestService(t)
	defer m.Close()

	expectTxOpen(m)
	expectGatePass(m)
	m.ExpectQuery("FOR UPDATE").WillReturnRows(sourceLotRows("975", "50"))
	m.ExpectQuery("UPDATE Seqnum SET SeqNum = SeqNum + 1").
		WillReturnRows(sqlmock.NewRows([]string{"seqnum"}).AddRow(1235))
	m.Mock.ExpectExec("UPDATE LotMaster").WillReturnResult(sqlmock.NewResult(0, 1))
	m.ExpectQuery("SELECT LotStatus").
		WillReturnRows(sqlmock.NewRows([]string{"lot_status"}).AddRow("C"))
	expectWriteLegs(m, 7002)
	m.Mock.ExpectCommit()

	result, err := svc.Transfer(context.Background(), baseRequest("500"))
	require.NoError(t, err)

	assert.Equal(t, "P", result.SourceLotStatus)
	assert.Equal(t, "C", result.DestinationLotStatus)
	assert.Equal(t, "P - C", result.Receipt.LotStatus)
}

func TestTransfer_InsufficientQuantity(t *testing.T) {
	svc, m := newTestService(t)
	defer m.Close()

	expectTxOpen(m)
	expectGatePass(m)
	m.ExpectQuery("FOR UPDATE").WillReturnRows(sourceLotRows("975", "50"))
	m.Mock.ExpectRollback()

	_, err := svc.Transfer(context.Background(), baseRequest("950"))
	require.Error(t, err)

	var appErr *errors.AppError
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, errors.KindInsufficientQuantity, appErr.Kind)
	assert.Equal(t, "950", appErr.Context["requested"])
	assert.Equal(t, "925", appErr.Context["available"])

	m.ExpectationsMet(t)
}

func TestTransfer_SameBinRejected(t *testing.T) {
	svc, m := newTestService(t)
	defer m.Close()

	expectTxOpen(m)
	m.Mock.ExpectRollback()

	req := baseRequest("100")
	req.BinTo = "K0802-4B"

	_, err := svc.Transfer(context.Background(), req)
	require.Error(t, err)

	var appErr *errors.AppError
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, errors.KindInvalidBin, appErr.Kind)

	m.ExpectationsMet(t)
}

func TestTransfer_UnknownDestinationBin(t *testing.T) {
	svc, m := newTestService(t)
	defer m.Close()

	expectTxOpen(m)
	m.ExpectQuery("SELECT COUNT(*) FROM BINMaster").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))
	m.Mock.ExpectRollback()

	_, err := svc.Transfer(context.Background(), baseRequest("100"))
	require.Error(t, err)

	var appErr *errors.AppError
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, errors.KindInvalidBin, appErr.Kind)
}

func TestTransfer_InventoryFrozen(t *testing.T) {
	svc, m := newTestService(t)
	defer m.Close()

	expectTxOpen(m)
	m.ExpectQuery("SELECT COUNT(*) FROM BINMaster").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))
	m.ExpectQuery("SELECT ParmValue FROM SystemParm").
		WillReturnRows(sqlmock.NewRows([]string{"parmvalue"}).AddRow("Y"))
	m.Mock.ExpectRollback()

	_, err := svc.Transfer(context.Background(), baseRequest("100"))
	require.Error(t, err)

	var appErr *errors.AppError
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, errors.KindInventoryFrozen, appErr.Kind)
}

func TestTransfer_PhysicalCountInProgress(t *testing.T) {
	svc, m := newTestService(t)
	defer m.Close()

	expectTxOpen(m)
	m.ExpectQuery("SELECT COUNT(*) FROM BINMaster").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))
	m.ExpectQuery("SELECT ParmValue FROM SystemParm").
		WillReturnRows(sqlmock.NewRows([]string{"parmvalue"}))
	m.ExpectQuery("SELECT COUNT(*) FROM PhysicalCount").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))
	m.Mock.ExpectRollback()

	_, err := svc.Transfer(context.Background(), baseRequest("100"))
	require.Error(t, err)

	var appErr *errors.AppError
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, errors.KindPhysicalCountInProgress, appErr.Kind)
}

func TestTransfer_NotTransferrable(t *testing.T) {
	svc, m := newTestService(t)
	defer m.Close()

	expectTxOpen(m)
	m.ExpectQuery("SELECT COUNT(*) FROM BINMaster").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))
	m.ExpectQuery("SELECT ParmValue FROM SystemParm").
		WillReturnRows(sqlmock.NewRows([]string{"parmvalue"}))
	m.ExpectQuery("SELECT COUNT(*) FROM PhysicalCount").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))
	m.ExpectQuery("SELECT Serlot AS ser_lot").
		WillReturnRows(sqlmock.NewRows([]string{"ser_lot", "bin_control"}).AddRow("Y", "N"))
	m.Mock.ExpectRollback()

	_, err := svc.Transfer(context.Background(), baseRequest("100"))
	require.Error(t, err)

	var appErr *errors.AppError
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, errors.KindNotTransferrable, appErr.Kind)
}

func TestTransfer_LotNotFound(t *testing.T) {
	svc, m := newTestService(t)
	defer m.Close()

	expectTxOpen(m)
	expectGatePass(m)
	m.ExpectQuery("FOR UPDATE").WillReturnRows(sqlmock.NewRows(lotColumns))
	m.Mock.ExpectRollback()

	_, err := svc.Transfer(context.Background(), baseRequest("100"))
	require.Error(t, err)

	var appErr *errors.AppError
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, errors.KindLotNotFound, appErr.Kind)
}

func TestTransfer_NegativeAvailabilityUnderLock(t *testing.T) {
	svc, m := newTestService(t)
	defer m.Close()

	expectTxOpen(m)
	expectGatePass(m)
	m.ExpectQuery("FOR UPDATE").WillReturnRows(sourceLotRows("40", "50"))
	m.Mock.ExpectRollback()

	_, err := svc.Transfer(context.Background(), baseRequest("10"))
	require.Error(t, err)

	var appErr *errors.AppError
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, errors.KindInvariantViolation, appErr.Kind)
}

func TestTransfer_QtyValidation(t *testing.T) {
	svc, m := newTestService(t)
	defer m.Close()

	// Rejected before any store access.
	cases := []struct {
		name string
		qty  string
	}{
		{"zero", "0"},
		{"negative", "-5"},
		{"four decimals", "10.0001"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.Transfer(context.Background(), baseRequest(tc.qty))
			require.Error(t, err)

			var appErr *errors.AppError
			require.True(t, errors.As(err, &appErr))
			assert.Equal(t, errors.KindValidation, appErr.Kind)
		})
	}

	m.ExpectationsMet(t)
}

func TestTransfer_ExactAvailableSucceeds(t *testing.T) {
	svc, m := newTestService(t)
	defer m.Close()

	expectTxOpen(m)
	expectGatePass(m)
	m.ExpectQuery("FOR UPDATE").WillReturnRows(sourceLotRows("975", "50"))
	m.ExpectQuery("UPDATE Seqnum SET SeqNum = SeqNum + 1").
		WillReturnRows(sqlmock.NewRows([]string{"seqnum"}).AddRow(1236))
	m.Mock.ExpectExec("UPDATE LotMaster").WillReturnResult(sqlmock.NewResult(0, 1))
	m.ExpectQuery("SELECT LotStatus").
		WillReturnRows(sqlmock.NewRows([]string{"lot_status"}))
	expectWriteLegs(m, 7003)
	m.Mock.ExpectCommit()

	result, err := svc.Transfer(context.Background(), baseRequest("925"))
	require.NoError(t, err)
	assert.Equal(t, "925.000", result.Receipt.TransferQty)
}

func TestTransfer_WithinToleranceSnapsToAvailable(t *testing.T) {
	svc, m := newTestService(t)
	defer m.Close()

	// Available is 924.9995; a request of 925 exceeds it by less than the
	// 0.001 tolerance, so the transfer snaps to the exact availability.
	expectTxOpen(m)
	expectGatePass(m)
	m.ExpectQuery("FOR UPDATE").WillReturnRows(sourceLotRows("974.9995", "50"))
	m.ExpectQuery("UPDATE Seqnum SET SeqNum = SeqNum + 1").
		WillReturnRows(sqlmock.NewRows([]string{"seqnum"}).AddRow(1237))
	m.Mock.ExpectExec("UPDATE LotMaster").
		WithArgs("924.9995", sqlmock.AnyArg(), 9, "DECHAWAT", sqlmock.AnyArg(),
			"2600107-1", "INBC1403", "TFC1", "K0802-4B").
		WillReturnResult(sqlmock.NewResult(0, 1))
	m.ExpectQuery("SELECT LotStatus").
		WillReturnRows(sqlmock.NewRows([]string{"lot_status"}))
	expectWriteLegs(m, 7004)
	m.Mock.ExpectCommit()

	_, err := svc.Transfer(context.Background(), baseRequest("925"))
	require.NoError(t, err)

	m.ExpectationsMet(t)
}

func TestTransfer_BeyondToleranceFails(t *testing.T) {
	svc, m := newTestService(t)
	defer m.Close()

	expectTxOpen(m)
	expectGatePass(m)
	m.ExpectQuery("FOR UPDATE").WillReturnRows(sourceLotRows("975", "50"))
	m.Mock.ExpectRollback()

	_, err := svc.Transfer(context.Background(), baseRequest("925.01"))
	require.Error(t, err)

	var appErr *errors.AppError
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, errors.KindInsufficientQuantity, appErr.Kind)
}

func TestTransfer_RollbackOnAuditFailure(t *testing.T) {
	svc, m := newTestService(t)
	defer m.Close()

	// Commitment already bumped; a failing audit insert must roll the whole
	// transaction back, counter included.
	expectTxOpen(m)
	expectGatePass(m)
	m.ExpectQuery("FOR UPDATE").WillReturnRows(sourceLotRows("975", "50"))
	m.ExpectQuery("UPDATE Seqnum SET SeqNum = SeqNum + 1").
		WillReturnRows(sqlmock.NewRows([]string{"seqnum"}).AddRow(1238))
	m.Mock.ExpectExec("UPDATE LotMaster").WillReturnResult(sqlmock.NewResult(0, 1))
	m.ExpectQuery("SELECT LotStatus").
		WillReturnRows(sqlmock.NewRows([]string{"lot_status"}))
	m.ExpectQuery("INSERT INTO LotTransaction").
		WillReturnError(assert.AnError)
	m.Mock.ExpectRollback()

	_, err := svc.Transfer(context.Background(), baseRequest("500"))
	require.Error(t, err)

	var appErr *errors.AppError
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, errors.KindSystemError, appErr.Kind)

	m.ExpectationsMet(t)
}

func TestTransfer_UserIDTruncatedToLegacyWidth(t *testing.T) {
	svc, m := newTestService(t)
	defer m.Close()

	expectTxOpen(m)
	expectGatePass(m)
	m.ExpectQuery("FOR UPDATE").WillReturnRows(sourceLotRows("975", "50"))
	m.ExpectQuery("UPDATE Seqnum SET SeqNum = SeqNum + 1").
		WillReturnRows(sqlmock.NewRows([]string{"seqnum"}).AddRow(1239))
	m.Mock.ExpectExec("UPDATE LotMaster").
		WithArgs(sqlmock.AnyArg(), sqlmock.AnyArg(), 9, "SOMCHAIP", sqlmock.AnyArg(),
			"2600107-1", "INBC1403", "TFC1", "K0802-4B").
		WillReturnResult(sqlmock.NewResult(0, 1))
	m.ExpectQuery("SELECT LotStatus").
		WillReturnRows(sqlmock.NewRows([]string{"lot_status"}))
	expectWriteLegs(m, 7005)
	m.Mock.ExpectCommit()

	req := baseRequest("500")
	req.UserID = "SOMCHAIPONG"

	_, err := svc.Transfer(context.Background(), req)
	require.NoError(t, err)

	m.ExpectationsMet(t)
}

func TestTransfer_SerializedConcurrentOutcome(t *testing.T) {
	// Two transfers of 500 against 900 available. The row lock serializes
	// them: the first commits, the second re-reads the bumped commitment and
	// fails. Document numbers stay strictly monotonic; the loser burns none.
	svc, m := newTestService(t)
	defer m.Close()

	expectTxOpen(m)
	expectGatePass(m)
	m.ExpectQuery("FOR UPDATE").WillReturnRows(sourceLotRows("975", "75"))
	m.ExpectQuery("UPDATE Seqnum SET SeqNum = SeqNum + 1").
		WillReturnRows(sqlmock.NewRows([]string{"seqnum"}).AddRow(3000))
	m.Mock.ExpectExec("UPDATE LotMaster").WillReturnResult(sqlmock.NewResult(0, 1))
	m.ExpectQuery("SELECT LotStatus").
		WillReturnRows(sqlmock.NewRows([]string{"lot_status"}))
	expectWriteLegs(m, 7300)
	m.Mock.ExpectCommit()

	first, err := svc.Transfer(context.Background(), baseRequest("500"))
	require.NoError(t, err)
	assert.Equal(t, "BT-00003000", first.DocumentNo)

	// Second writer observes committed_sales already raised to 575.
	expectTxOpen(m)
	expectGatePass(m)
	m.ExpectQuery("FOR UPDATE").WillReturnRows(sourceLotRows("975", "575"))
	m.Mock.ExpectRollback()

	_, err = svc.Transfer(context.Background(), baseRequest("500"))
	require.Error(t, err)

	var appErr *errors.AppError
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, errors.KindInsufficientQuantity, appErr.Kind)
	assert.Equal(t, "400", appErr.Context["available"])

	m.ExpectationsMet(t)
}
