package service

import (
	"github.com/shopspring/decimal"

	"github.com/tfc-warehouse/putaway-backend/internal/putaway/repository"
	"github.com/tfc-warehouse/putaway-backend/pkg/database"
	"github.com/tfc-warehouse/putaway-backend/pkg/logger"
)

// qtyTolerance absorbs floating-point noise from the scanner clients.
// Differences below a milligram are treated as equal.
var qtyTolerance = decimal.NewFromFloat(0.001)

// legacyUserIDLen is the width of the RecUserId columns.
const legacyUserIDLen = 8

// Service is the transfer engine. All mutations run inside a single
// repeatable-read transaction per request; there is no background work.
type Service struct {
	db        *database.DB
	lots      *repository.LotRepository
	bins      *repository.BinRepository
	audits    *repository.AuditRepository
	seqs      *repository.SequenceRepository
	params    *repository.ParamRepository
	remarks   *repository.RemarkRepository
	transfers *repository.BinTransferRepository
	poster    Poster
	events    EventSink
	logger    *logger.Logger
}

// New creates a new putaway service. events may be nil when no broker is
// configured (tests, maintenance tooling).
func New(
	db *database.DB,
	lots *repository.LotRepository,
	bins *repository.BinRepository,
	audits *repository.AuditRepository,
	seqs *repository.SequenceRepository,
	params *repository.ParamRepository,
	remarks *repository.RemarkRepository,
	transfers *repository.BinTransferRepository,
	events EventSink,
	log *logger.Logger,
) *Service {
	s := &Service{
		db:        db,
		lots:      lots,
		bins:      bins,
		audits:    audits,
		seqs:      seqs,
		params:    params,
		remarks:   remarks,
		transfers: transfers,
		events:    events,
		logger:    log.WithComponent("putaway-service"),
	}
	s.poster = &auditPoster{audits: audits}
	return s
}

// truncateUserID fits a directory account name into the legacy column.
func truncateUserID(userID string) string {
	if len(userID) > legacyUserIDLen {
		return userID[:legacyUserIDLen]
	}
	return userID
}

// withinTolerance reports |a-b| < qtyTolerance.
func withinTolerance(a, b decimal.Decimal) bool {
	return a.Sub(b).Abs().LessThan(qtyTolerance)
}
